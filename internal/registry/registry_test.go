package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/planweave/internal/node"
	"github.com/vk/planweave/internal/params"
)

func TestWithdraw(t *testing.T) {
	t.Run("factory builds a fresh node", func(t *testing.T) {
		lib := New()
		RegisterBuiltins(lib)

		built, err := lib.Withdraw([]string{"worker"}, "alpha", nil, nil)
		require.NoError(t, err)
		worker, ok := built.(*node.Worker)
		require.True(t, ok)
		assert.Equal(t, "alpha", worker.Name())
	})

	t.Run("instance shadows factory", func(t *testing.T) {
		lib := New()
		RegisterBuiltins(lib)
		seeded := node.NewWorker("seeded", nil, node.NewTask("child", nil, nil))
		lib.Deposit("worker", seeded)

		built, err := lib.Withdraw([]string{"worker"}, "alpha", nil, nil)
		require.NoError(t, err)
		worker, ok := built.(*node.Worker)
		require.True(t, ok)
		assert.Equal(t, "seeded", worker.Name())
		assert.Len(t, worker.Children(), 1)
	})

	t.Run("instance withdrawal clones", func(t *testing.T) {
		lib := New()
		seeded := node.NewWorker("seeded", nil)
		lib.Deposit("seeded", seeded)

		built, err := lib.Withdraw([]string{"seeded"}, "seeded", nil, nil)
		require.NoError(t, err)
		built.(*node.Worker).Append(node.NewTask("extra", nil, nil))
		assert.Empty(t, seeded.Children(), "stored instance must not be mutated")
	})

	t.Run("lookup chain falls through", func(t *testing.T) {
		lib := New()
		RegisterBuiltins(lib)

		built, err := lib.Withdraw([]string{"parser", "contest", "manager"}, "parser", nil, nil)
		require.NoError(t, err)
		_, ok := built.(*node.Manager)
		assert.True(t, ok)
	})

	t.Run("unknown key errors", func(t *testing.T) {
		lib := New()
		_, err := lib.Withdraw([]string{"ghost"}, "ghost", nil, nil)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("overrides land in the parameter bag", func(t *testing.T) {
		lib := New()
		RegisterBuiltins(lib)

		built, err := lib.Withdraw([]string{"task"}, "alpha", params.New("alpha"), map[string]any{"depth": 3})
		require.NoError(t, err)
		carrier := built.(node.ParamCarrier)
		assert.Equal(t, 3, carrier.Params().Contents["depth"])
	})
}

func TestCriteriaAndTechniques(t *testing.T) {
	lib := New()
	lib.RegisterCriteria(node.NewKeyCriteria("Accuracy", "accuracy"))

	c, ok := lib.Criteria("accuracy")
	require.True(t, ok)
	assert.Equal(t, "Accuracy", c.Name())

	_, ok = lib.Technique("ghost")
	assert.False(t, ok)
}

func TestContainsAndKeys(t *testing.T) {
	lib := New()
	RegisterBuiltins(lib)
	lib.Deposit("custom", node.NewWorker("custom", nil))

	assert.True(t, lib.Contains("worker"))
	assert.True(t, lib.Contains("custom"))
	assert.False(t, lib.Contains("ghost"))
	assert.Contains(t, lib.Keys(), "custom")
	assert.Contains(t, lib.Keys(), "manager")
}

func TestSnake(t *testing.T) {
	tests := map[string]string{
		"CoolProject":  "cool_project",
		"cool_project": "cool_project",
		"Parser":       "parser",
		"already":      "already",
	}
	for in, want := range tests {
		assert.Equal(t, want, Snake(in), "Snake(%q)", in)
	}
}

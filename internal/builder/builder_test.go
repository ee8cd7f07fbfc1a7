package builder

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/planweave/internal/node"
	"github.com/vk/planweave/internal/project"
	"github.com/vk/planweave/internal/registry"
	"github.com/vk/planweave/internal/settings"
	"github.com/vk/planweave/internal/testutil"
)

func newLibrary() *registry.Library {
	lib := registry.New()
	registry.RegisterBuiltins(lib)
	return lib
}

func TestBuildProjectSettings(t *testing.T) {
	proj := project.New(testutil.ProjectSettings())
	wf, err := New(newLibrary()).Build(context.Background(), proj)
	require.NoError(t, err)

	t.Run("top level chains the managers", func(t *testing.T) {
		assert.Equal(t, []string{"reviewer"}, wf.Graph.Roots())
		assert.Equal(t, []string{"parser"}, wf.Graph.Descendants("reviewer"))
		assert.Equal(t, []string{"munger"}, wf.Graph.Descendants("parser_judge"))
		assert.Equal(t, []string{"munger_judge"}, wf.Graph.Endpoints())
	})

	t.Run("contest expands the technique permutations", func(t *testing.T) {
		branches := wf.Graph.Descendants("parser")
		assert.Len(t, branches, 6, "2 divide x 3 extract techniques")
		for _, branch := range branches {
			assert.Equal(t, []string{"parser_judge"}, wf.Graph.Descendants(branch))
		}
	})

	t.Run("survey expands the technique permutations", func(t *testing.T) {
		assert.Len(t, wf.Graph.Descendants("munger"), 4, "2 search x 2 destroy techniques")
	})

	t.Run("branch workers hold one step per position", func(t *testing.T) {
		branch, ok := wf.Nodes["parser_1"].(*node.Worker)
		require.True(t, ok)
		require.Len(t, branch.Children(), 2)
		assert.Equal(t, "divide", branch.Children()[0].Name())
		assert.Equal(t, "extract", branch.Children()[1].Name())
	})

	t.Run("judges are attached at convergence", func(t *testing.T) {
		_, ok := wf.Judges["parser_judge"].(*node.Contest)
		assert.True(t, ok)
		_, ok = wf.Judges["munger_judge"].(*node.Survey)
		assert.True(t, ok)
	})

	t.Run("serial manager keeps children internal", func(t *testing.T) {
		reviewer, ok := wf.Nodes["reviewer"].(*node.Worker)
		require.True(t, ok)
		assert.Len(t, reviewer.Children(), 2)
		assert.NotContains(t, wf.Graph.Nodes(), "scan")
	})

	t.Run("detached parameters reach the step", func(t *testing.T) {
		branch := wf.Nodes["parser_1"].(*node.Worker)
		divide := branch.Children()[0].(*node.Step)
		assert.Equal(t, true, divide.Params().Implementation["replace_strings"])
	})
}

func TestBuildStudyDesign(t *testing.T) {
	s := settings.FromMap(map[string]map[string]any{
		"trial": {"trial_managers": []any{"vetting"}},
		"vetting": {
			"vetting_design":  "study",
			"vetting_steps":   []any{"poke"},
			"poke_techniques": []any{"left", "right"},
			"judge":           "validation",
			"threshold":       0.5,
			"criteria":        "score",
		},
	})
	proj := project.New(s)
	wf, err := New(newLibrary()).Build(context.Background(), proj)
	require.NoError(t, err)
	_, ok := wf.Judges["vetting_judge"].(*node.Validation)
	assert.True(t, ok)
}

func TestBuildErrors(t *testing.T) {
	t.Run("empty outline", func(t *testing.T) {
		proj := project.New(settings.FromMap(map[string]map[string]any{}))
		_, err := New(newLibrary()).Build(context.Background(), proj)
		require.Error(t, err)
	})

	t.Run("branching node without steps", func(t *testing.T) {
		s := settings.FromMap(map[string]map[string]any{
			"trial":   {"trial_managers": []any{"vetting"}},
			"vetting": {"vetting_design": "contest"},
		})
		_, err := New(newLibrary()).Build(context.Background(), project.New(s))
		require.Error(t, err)
	})

	t.Run("step without techniques", func(t *testing.T) {
		s := settings.FromMap(map[string]map[string]any{
			"trial": {"trial_managers": []any{"vetting"}},
			"vetting": {
				"vetting_design": "contest",
				"vetting_steps":  []any{"poke"},
			},
		})
		_, err := New(newLibrary()).Build(context.Background(), project.New(s))
		require.Error(t, err)
	})
}

func TestCartesian(t *testing.T) {
	combos := cartesian([][]string{{"a", "b"}, {"x", "y", "z"}})
	require.Len(t, combos, 6)
	assert.Equal(t, []string{"a", "x"}, combos[0])
	assert.Equal(t, []string{"a", "y"}, combos[1])
	assert.Equal(t, []string{"b", "z"}, combos[5])
}

func TestDepositedInstanceWins(t *testing.T) {
	lib := newLibrary()
	custom := node.NewWorker("custom_reviewer", nil)
	lib.Deposit("reviewer", custom)

	proj := project.New(testutil.ProjectSettings())
	wf, err := New(lib).Build(context.Background(), proj)
	require.NoError(t, err)
	assert.Equal(t, "custom_reviewer", wf.Nodes["reviewer"].Name())
}

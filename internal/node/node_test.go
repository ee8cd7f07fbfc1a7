package node

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/planweave/internal/params"
	"github.com/vk/planweave/internal/project"
	"github.com/vk/planweave/internal/settings"
)

func newProject(t *testing.T) *project.Project {
	t.Helper()
	return project.New(settings.FromMap(map[string]map[string]any{
		"demo":  {"demo_workers": []any{"omega"}},
		"omega": {},
	}))
}

// appendTrace returns a technique that records its name in the project.
func appendTrace(name string) TechniqueFunc {
	return func(_ context.Context, proj *project.Project, _ map[string]any) error {
		var trace []any
		if raw, ok := proj.Get("trace"); ok {
			trace = raw.([]any)
		}
		proj.Set("trace", append(trace, name))
		return nil
	}
}

func setScore(score float64) TechniqueFunc {
	return func(_ context.Context, proj *project.Project, _ map[string]any) error {
		proj.Set("score", score)
		return nil
	}
}

func TestTask(t *testing.T) {
	t.Run("applies algorithm with finalized args", func(t *testing.T) {
		var got map[string]any
		p := params.New("double")
		p.Defaults = map[string]any{"factor": 2}
		task := NewTask("double", p, func(_ context.Context, _ *project.Project, args map[string]any) error {
			got = args
			return nil
		})
		_, err := task.Execute(context.Background(), newProject(t))
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"factor": 2}, got)
	})

	t.Run("nil algorithm passes through", func(t *testing.T) {
		task := NewTask("noop", nil, nil)
		proj := newProject(t)
		result, err := task.Execute(context.Background(), proj)
		require.NoError(t, err)
		assert.Same(t, proj, result)
	})

	t.Run("algorithm failure propagates", func(t *testing.T) {
		boom := errors.New("boom")
		task := NewTask("fail", nil, func(context.Context, *project.Project, map[string]any) error {
			return boom
		})
		_, err := task.Execute(context.Background(), newProject(t))
		require.Error(t, err)
		assert.ErrorIs(t, err, boom)
	})
}

func TestStepOverlaysTechniqueParameters(t *testing.T) {
	var got map[string]any
	tp := params.New("slice")
	tp.Defaults = map[string]any{"depth": 1, "mode": "fast"}
	technique := NewTechnique("slice", tp, func(_ context.Context, _ *project.Project, args map[string]any) error {
		got = args
		return nil
	})

	sp := params.New("divide")
	sp.Defaults = map[string]any{"depth": 5}
	step := NewStep("divide", sp, technique)

	_, err := step.Execute(context.Background(), newProject(t))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"depth": 5, "mode": "fast"}, got)
}

func TestStepWithoutTechnique(t *testing.T) {
	step := NewStep("empty", nil, nil)
	proj := newProject(t)
	result, err := step.Execute(context.Background(), proj)
	require.NoError(t, err)
	assert.Same(t, proj, result)
}

func TestWorkerRunsChildrenInOrder(t *testing.T) {
	worker := NewWorker("serial", nil,
		NewTask("first", nil, appendTrace("first")),
		NewTask("second", nil, appendTrace("second")),
		NewTask("third", nil, appendTrace("third")),
	)
	result, err := worker.Execute(context.Background(), newProject(t))
	require.NoError(t, err)
	trace, _ := result.Get("trace")
	assert.Equal(t, []any{"first", "second", "third"}, trace)
}

func TestWorkerStopsOnFailure(t *testing.T) {
	boom := errors.New("boom")
	worker := NewWorker("serial", nil,
		NewTask("first", nil, appendTrace("first")),
		NewTask("fail", nil, func(context.Context, *project.Project, map[string]any) error { return boom }),
		NewTask("third", nil, appendTrace("third")),
	)
	_, err := worker.Execute(context.Background(), newProject(t))
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}

func TestManagerReducesWithContest(t *testing.T) {
	manager := NewManager("compete", nil, NewContest("judge", NewKeyCriteria("score", "score")),
		NewWorker("low", nil, NewTask("low", nil, setScore(0.2))),
		NewWorker("high", nil, NewTask("high", nil, setScore(0.9))),
		NewWorker("mid", nil, NewTask("mid", nil, setScore(0.5))),
	)
	result, err := manager.Execute(context.Background(), newProject(t))
	require.NoError(t, err)
	score, _ := result.Get("score")
	assert.Equal(t, 0.9, score)
}

func TestManagerBranchIsolation(t *testing.T) {
	// Each branch mutates the same key; without per-branch copies the last
	// writer would leak into every candidate.
	manager := NewManager("isolated", nil, NewContest("judge", NewKeyCriteria("score", "score")),
		NewWorker("a", nil, NewTask("a", nil, setScore(1))),
		NewWorker("b", nil, NewTask("b", nil, setScore(2))),
	)
	proj := newProject(t)
	result, err := manager.Execute(context.Background(), proj)
	require.NoError(t, err)
	score, _ := result.Get("score")
	assert.Equal(t, float64(2), score)
	_, ok := proj.Get("score")
	assert.False(t, ok, "parent project must stay untouched")
}

func TestManagerParallel(t *testing.T) {
	manager := NewManager("parallel", nil, NewContest("judge", NewKeyCriteria("score", "score")),
		NewWorker("a", nil, NewTask("a", nil, setScore(0.1))),
		NewWorker("b", nil, NewTask("b", nil, setScore(0.8))),
		NewWorker("c", nil, NewTask("c", nil, setScore(0.4))),
	)
	proj := newProject(t)
	proj.Parallelize = true
	result, err := manager.Execute(context.Background(), proj)
	require.NoError(t, err)
	score, _ := result.Get("score")
	assert.Equal(t, 0.8, score)
}

func TestManagerWithoutJudgeKeepsFirstBranch(t *testing.T) {
	manager := NewManager("plain", nil, nil,
		NewWorker("a", nil, NewTask("a", nil, setScore(1))),
		NewWorker("b", nil, NewTask("b", nil, setScore(2))),
	)
	result, err := manager.Execute(context.Background(), newProject(t))
	require.NoError(t, err)
	score, _ := result.Get("score")
	assert.Equal(t, float64(1), score)
}

func TestManagerWithoutBranchesPassesThrough(t *testing.T) {
	manager := NewManager("empty", nil, nil)
	proj := newProject(t)
	result, err := manager.Execute(context.Background(), proj)
	require.NoError(t, err)
	assert.Same(t, proj, result)
}

func TestCloneIsIndependent(t *testing.T) {
	worker := NewWorker("serial", nil, NewTask("first", nil, nil))
	dup := worker.Clone().(*Worker)
	dup.Append(NewTask("extra", nil, nil))
	assert.Len(t, worker.Children(), 1)
	assert.Len(t, dup.Children(), 2)
}

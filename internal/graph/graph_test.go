package graph

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// diamond builds a -> b -> d and a -> c -> d.
func diamond(t *testing.T) *Graph {
	t.Helper()
	g, err := FromAdjacency(map[string][]string{
		"a": {"b", "c"},
		"b": {"d"},
		"c": {"d"},
		"d": {},
	})
	require.NoError(t, err)
	return g
}

func TestConnect(t *testing.T) {
	t.Run("rejects self-referential edge", func(t *testing.T) {
		g := New()
		err := g.Connect("a", "a")
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidEdge)
	})

	t.Run("rejects edge closing a cycle", func(t *testing.T) {
		g := New()
		require.NoError(t, g.Connect("a", "b"))
		require.NoError(t, g.Connect("b", "c"))
		err := g.Connect("c", "a")
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrCycle)
	})

	t.Run("creates absent endpoints", func(t *testing.T) {
		g := New()
		require.NoError(t, g.Connect("a", "b"))
		assert.True(t, g.Contains("a"))
		assert.True(t, g.Contains("b"))
		assert.Equal(t, []string{"b"}, g.Descendants("a"))
	})
}

func TestAdd(t *testing.T) {
	t.Run("wires ancestors and descendants", func(t *testing.T) {
		g := New()
		require.NoError(t, g.Add("a", nil, nil))
		require.NoError(t, g.Add("c", nil, nil))
		require.NoError(t, g.Add("b", []string{"a"}, []string{"c"}))
		assert.Equal(t, []string{"b"}, g.Descendants("a"))
		assert.Equal(t, []string{"c"}, g.Descendants("b"))
	})

	t.Run("rejects unknown ancestor", func(t *testing.T) {
		g := New()
		err := g.Add("b", []string{"ghost"}, nil)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrMissingNode)
	})

	t.Run("rejects unknown descendant", func(t *testing.T) {
		g := New()
		err := g.Add("b", nil, []string{"ghost"})
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrMissingNode)
	})
}

func TestWalk(t *testing.T) {
	g := diamond(t)

	t.Run("enumerates all simple paths", func(t *testing.T) {
		paths := g.Walk("a", "d")
		want := [][]string{{"a", "b", "d"}, {"a", "c", "d"}}
		assert.Equal(t, want, paths)
	})

	t.Run("start equals stop", func(t *testing.T) {
		assert.Equal(t, [][]string{{"a"}}, g.Walk("a", "a"))
	})

	t.Run("absent start returns nil", func(t *testing.T) {
		assert.Nil(t, g.Walk("ghost", "d"))
	})

	t.Run("unreachable stop returns nil", func(t *testing.T) {
		assert.Nil(t, g.Walk("d", "a"))
	})
}

func TestRootsAndEndpoints(t *testing.T) {
	g := diamond(t)
	assert.Equal(t, []string{"a"}, g.Roots())
	assert.Equal(t, []string{"d"}, g.Endpoints())
	assert.Equal(t, [][]string{{"a", "b", "d"}, {"a", "c", "d"}}, g.Paths())
}

func TestDelete(t *testing.T) {
	g := diamond(t)
	require.NoError(t, g.Delete("b"))
	assert.False(t, g.Contains("b"))
	assert.Equal(t, []string{"c"}, g.Descendants("a"))

	err := g.Delete("ghost")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingNode)
}

func TestDisconnect(t *testing.T) {
	g := diamond(t)
	require.NoError(t, g.Disconnect("a", "b"))
	assert.Equal(t, []string{"c"}, g.Descendants("a"))

	// Absent edge is a no-op.
	require.NoError(t, g.Disconnect("a", "b"))

	err := g.Disconnect("ghost", "b")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingNode)
}

func TestMerge(t *testing.T) {
	g, err := FromAdjacency(map[string][]string{"a": {"b"}, "b": {}})
	require.NoError(t, err)
	other, err := FromAdjacency(map[string][]string{"b": {"c"}, "c": {}})
	require.NoError(t, err)

	require.NoError(t, g.Merge(other))
	want := map[string][]string{"a": {"b"}, "b": {"c"}, "c": {}}
	if diff := cmp.Diff(want, g.Adjacency()); diff != "" {
		t.Errorf("merged adjacency mismatch (-want +got):\n%s", diff)
	}
}

func TestMergeCycle(t *testing.T) {
	g, err := FromAdjacency(map[string][]string{"a": {"b"}, "b": {}})
	require.NoError(t, err)
	other, err := FromAdjacency(map[string][]string{"b": {"a"}, "a": {}})
	require.NoError(t, err)

	err = g.Merge(other)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCycle)

	// A rejected union must not leak edges into g.
	want := map[string][]string{"a": {"b"}, "b": {}}
	if diff := cmp.Diff(want, g.Adjacency()); diff != "" {
		t.Errorf("adjacency changed after rejected merge (-want +got):\n%s", diff)
	}
}

func TestAppend(t *testing.T) {
	g, err := FromPipeline([]string{"a", "b"})
	require.NoError(t, err)
	other, err := FromPipeline([]string{"c", "d"})
	require.NoError(t, err)

	require.NoError(t, g.Append(other))
	assert.Equal(t, []string{"c"}, g.Descendants("b"))
	assert.Equal(t, []string{"a"}, g.Roots())
	assert.Equal(t, []string{"d"}, g.Endpoints())
}

func TestPrepend(t *testing.T) {
	g, err := FromPipeline([]string{"c", "d"})
	require.NoError(t, err)
	other, err := FromPipeline([]string{"a", "b"})
	require.NoError(t, err)

	require.NoError(t, g.Prepend(other))
	assert.Equal(t, []string{"c"}, g.Descendants("b"))
	assert.Equal(t, []string{"a"}, g.Roots())
}

func TestSubset(t *testing.T) {
	g := diamond(t)

	t.Run("include keeps only listed nodes", func(t *testing.T) {
		sub, err := g.Subset([]string{"a", "b", "d"}, nil)
		require.NoError(t, err)
		want := map[string][]string{"a": {"b"}, "b": {"d"}, "d": {}}
		if diff := cmp.Diff(want, sub.Adjacency()); diff != "" {
			t.Errorf("subset mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("exclude drops listed nodes", func(t *testing.T) {
		sub, err := g.Subset(nil, []string{"c"})
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b", "d"}, sub.Nodes())
	})

	t.Run("requires include or exclude", func(t *testing.T) {
		_, err := g.Subset(nil, nil)
		require.Error(t, err)
	})

	t.Run("does not alias the original", func(t *testing.T) {
		sub, err := g.Subset(nil, []string{"c"})
		require.NoError(t, err)
		require.NoError(t, sub.Connect("d", "e"))
		assert.False(t, g.Contains("e"))
	})
}

func TestClone(t *testing.T) {
	g := diamond(t)
	dup := g.Clone()
	require.NoError(t, dup.Connect("d", "e"))
	assert.False(t, g.Contains("e"))
	assert.Equal(t, 4, g.Len())
	assert.Equal(t, 5, dup.Len())
}

func TestAncestors(t *testing.T) {
	g := diamond(t)
	assert.Equal(t, []string{"b", "c"}, g.Ancestors("d"))
	assert.Empty(t, g.Ancestors("a"))
}

package bfs_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/pathrec/bfs"
	"github.com/katalvlaran/pathrec/core"
)

// cell builds in→{a,b}→out plus a dangling branch a→aux.
func cell(t *testing.T) *core.Graph {
	t.Helper()
	g := core.NewGraph()
	for _, e := range [][2]string{{"in", "a"}, {"in", "b"}, {"a", "out"}, {"b", "out"}, {"a", "aux"}} {
		_, err := g.AddEdge(e[0], e[1])
		require.NoError(t, err)
	}
	return g
}

// TestBFS_Errors verifies that invalid inputs and options are rejected.
func TestBFS_Errors(t *testing.T) {
	_, err := bfs.BFS(nil, "A")
	assert.ErrorIs(t, err, bfs.ErrGraphNil)

	g := core.NewGraph()
	_, err = bfs.BFS(g, "missing")
	assert.ErrorIs(t, err, bfs.ErrStartVertexNotFound)

	require.NoError(t, g.AddVertex("A"))
	_, err = bfs.BFS(g, "A", bfs.WithMaxDepth(-1))
	assert.ErrorIs(t, err, bfs.ErrOptionViolation)
	_, err = bfs.BFS(g, "A", bfs.WithDirection(bfs.Direction(7)))
	assert.ErrorIs(t, err, bfs.ErrOptionViolation)
}

func TestBFS_Downstream(t *testing.T) {
	res, err := bfs.BFS(cell(t), "in")
	require.NoError(t, err)

	assert.Equal(t, []string{"in", "a", "b", "aux", "out"}, res.Order)
	assert.Equal(t, map[string]int{"in": 0, "a": 1, "b": 1, "aux": 2, "out": 2}, res.Depth)

	path, err := res.PathTo("out")
	require.NoError(t, err)
	assert.Equal(t, []string{"in", "a", "out"}, path)
}

func TestBFS_Upstream(t *testing.T) {
	res, err := bfs.BFS(cell(t), "out", bfs.WithDirection(bfs.Upstream))
	require.NoError(t, err)

	assert.Equal(t, []string{"out", "a", "b", "in"}, res.Order)
	assert.False(t, res.Reached("aux"))
	_, err = res.PathTo("aux")
	assert.Error(t, err)
}

func TestBFS_MaxDepthAndFilter(t *testing.T) {
	res, err := bfs.BFS(cell(t), "in", bfs.WithMaxDepth(1))
	require.NoError(t, err)
	assert.Equal(t, []string{"in", "a", "b"}, res.Order)

	res, err = bfs.BFS(cell(t), "in", bfs.WithFilterNeighbor(func(_, nbr string) bool { return nbr != "a" }))
	require.NoError(t, err)
	assert.Equal(t, []string{"in", "b", "out"}, res.Order)
}

func TestBFS_OnVisitAbortsAndCancel(t *testing.T) {
	stop := errors.New("stop")
	_, err := bfs.BFS(cell(t), "in", bfs.WithOnVisit(func(id string, _ int) error {
		if id == "b" {
			return stop
		}
		return nil
	}))
	assert.ErrorIs(t, err, stop)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = bfs.BFS(cell(t), "in", bfs.WithContext(ctx))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestUnreachable(t *testing.T) {
	g := cell(t)
	dead, err := bfs.Unreachable(g, "out")
	require.NoError(t, err)
	assert.Equal(t, []string{"aux"}, dead)

	dead, err = bfs.Unreachable(g, "in")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "aux", "b", "out"}, dead)

	_, err = bfs.Unreachable(g, "zz")
	assert.ErrorIs(t, err, bfs.ErrStartVertexNotFound)
}

// TestUnreachable_KeepsCallerOptions: options passed with spare capacity
// must not have their backing array overwritten.
func TestUnreachable_KeepsCallerOptions(t *testing.T) {
	g := cell(t)
	backing := []bfs.Option{bfs.WithMaxDepth(8), bfs.WithDirection(bfs.Downstream)}
	opts := backing[:1]

	dead, err := bfs.Unreachable(g, "out", opts...)
	require.NoError(t, err)
	assert.Equal(t, []string{"aux"}, dead)

	// still Downstream: nothing lies past the sink
	res, err := bfs.BFS(g, "out", backing...)
	require.NoError(t, err)
	assert.Equal(t, []string{"out"}, res.Order)
}

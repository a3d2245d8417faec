package hss

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gonum.org/v1/gonum/mat"

	"github.com/hssmat/hss/cluster"
)

func TestConfig_Validate(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())

	bad := Config{Tol: -1, Leafsize: 4}
	require.Error(t, bad.Validate())

	bad = Config{Tol: 1e-9, Leafsize: 0}
	require.Error(t, bad.Validate())
}

func TestDefaultConfig_IsAPlainValueNotASingleton(t *testing.T) {
	a := DefaultConfig()
	a.Tol = 42
	b := DefaultConfig()
	assert.NotEqual(t, a.Tol, b.Tol)
	assert.Equal(t, 1e-9, b.Tol)
}

func TestNode_LeafShapeAndRanks(t *testing.T) {
	n := &Node{
		Row: cluster.Range{Lo: 0, Hi: 3},
		Col: cluster.Range{Lo: 0, Hi: 2},
		D:   mat.NewDense(4, 3, nil),
		U:   mat.NewDense(4, 2, nil),
		V:   mat.NewDense(3, 1, nil),
	}
	assert.True(t, n.IsLeaf())
	rows, cols := n.Shape()
	assert.Equal(t, 4, rows)
	assert.Equal(t, 3, cols)
	assert.Equal(t, 2, n.URank())
	assert.Equal(t, 1, n.VRank())
}

func TestNode_BranchRanksComeFromRW(t *testing.T) {
	n := &Node{
		Row:    cluster.Range{Lo: 0, Hi: 7},
		Col:    cluster.Range{Lo: 0, Hi: 7},
		Child1: &Node{Row: cluster.Range{Lo: 0, Hi: 3}, Col: cluster.Range{Lo: 0, Hi: 3}},
		Child2: &Node{Row: cluster.Range{Lo: 4, Hi: 7}, Col: cluster.Range{Lo: 4, Hi: 7}},
		R1:     mat.NewDense(2, 3, nil),
		W1:     mat.NewDense(2, 4, nil),
	}
	assert.False(t, n.IsLeaf())
	assert.Equal(t, 3, n.URank())
	assert.Equal(t, 4, n.VRank())
}

func TestNode_RootHasZeroRank(t *testing.T) {
	n := &Node{
		Row:    cluster.Range{Lo: 0, Hi: 7},
		Col:    cluster.Range{Lo: 0, Hi: 7},
		Root:   true,
		Child1: &Node{},
		Child2: &Node{},
	}
	assert.Equal(t, 0, n.URank())
	assert.Equal(t, 0, n.VRank())
}

func TestCollectStats_LeafOnlyTree(t *testing.T) {
	n := &Node{
		Row: cluster.Range{Lo: 0, Hi: 3},
		Col: cluster.Range{Lo: 0, Hi: 3},
		D:   mat.NewDense(4, 4, nil),
		U:   mat.NewDense(4, 2, nil),
		V:   mat.NewDense(4, 2, nil),
	}
	s := CollectStats(n)
	assert.Equal(t, 0, s.Depth)
	assert.Equal(t, 1, s.LeafCount)
	assert.Equal(t, 0, s.BranchCount)
	assert.Equal(t, 2, s.MaxURank)
	assert.Equal(t, 2, s.MaxVRank)
}

func TestCollectStats_BranchAggregatesMaxRankAndDepth(t *testing.T) {
	leaf1 := &Node{Row: cluster.Range{Lo: 0, Hi: 1}, Col: cluster.Range{Lo: 0, Hi: 1}, D: mat.NewDense(2, 2, nil), U: mat.NewDense(2, 1, nil), V: mat.NewDense(2, 3, nil)}
	leaf2 := &Node{Row: cluster.Range{Lo: 2, Hi: 3}, Col: cluster.Range{Lo: 2, Hi: 3}, D: mat.NewDense(2, 2, nil), U: mat.NewDense(2, 2, nil), V: mat.NewDense(2, 1, nil)}
	root := &Node{
		Row: cluster.Range{Lo: 0, Hi: 3}, Col: cluster.Range{Lo: 0, Hi: 3},
		Root: true, Child1: leaf1, Child2: leaf2,
	}
	s := CollectStats(root)
	assert.Equal(t, 1, s.Depth)
	assert.Equal(t, 2, s.LeafCount)
	assert.Equal(t, 1, s.BranchCount)
	assert.Equal(t, 2, s.MaxURank) // leaf2's U
	assert.Equal(t, 3, s.MaxVRank) // leaf1's V
}

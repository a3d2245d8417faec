package hss

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/hssmat/hss/cluster"
)

// cauchyMatrix builds the n x n kernel 1/(1+|i-j|): smooth off-diagonal
// decay, the textbook example of a matrix whose off-diagonal blocks are
// numerically low rank (S1 of the testable scenarios).
func cauchyMatrix(n int) *mat.Dense {
	a := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			d := i - j
			if d < 0 {
				d = -d
			}
			a.Set(i, j, 1/float64(1+d))
		}
	}
	return a
}

// squareTrees builds identical row/col cluster trees over [0, n-1].
func squareTrees(t *testing.T, n, leafsize int) (*cluster.Tree, *cluster.Tree) {
	t.Helper()
	rowTree, err := cluster.Bisection(cluster.Range{Lo: 0, Hi: n - 1}, leafsize)
	require.NoError(t, err)
	colTree, err := cluster.Bisection(cluster.Range{Lo: 0, Hi: n - 1}, leafsize)
	require.NoError(t, err)
	return rowTree, colTree
}

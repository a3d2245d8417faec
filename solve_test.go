package hss

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gonum.org/v1/gonum/mat"

	"github.com/hssmat/hss/internal/linalg"
)

// diagonallyDominant builds an n x n matrix whose off-diagonal blocks decay
// like the Cauchy kernel but whose diagonal is boosted so the dense leaf and
// root solves stay well-conditioned (S4 of the testable scenarios).
func diagonallyDominant(n int) *mat.Dense {
	a := cauchyMatrix(n)
	for i := 0; i < n; i++ {
		a.Set(i, i, a.At(i, i)+float64(n))
	}
	return a
}

// TestSolve_MatchesDenseSolve checks hss.Solve(A, b) reproduces a dense
// Gaussian-elimination solve to near the compression tolerance.
func TestSolve_MatchesDenseSolve(t *testing.T) {
	n := 32
	a := diagonallyDominant(n)
	root := compressForTest(t, a, 4)
	b := randomVector(n, 11, 12)

	x, err := Solve(context.Background(), root, b)
	require.NoError(t, err)

	var residual mat.Dense
	residual.Mul(a, x)
	residual.Sub(&residual, b)
	relResidual := mat.Norm(&residual, 2) / mat.Norm(b, 2)
	assert.Less(t, relResidual, 1e-6)
}

// TestSolve_MultipleRHSConsistency checks that solving with several
// right-hand sides batched into one call matches solving each individually
// (S3's multiple-RHS consistency, mirrored for Solve).
func TestSolve_MultipleRHSConsistency(t *testing.T) {
	n := 24
	a := diagonallyDominant(n)
	root := compressForTest(t, a, 4)

	b1 := randomVector(n, 21, 22)
	b2 := randomVector(n, 23, 24)
	bBatch := mat.NewDense(n, 2, nil)
	bBatch.SetCol(0, mat.Col(nil, 0, b1))
	bBatch.SetCol(1, mat.Col(nil, 0, b2))

	xBatch, err := Solve(context.Background(), root, bBatch)
	require.NoError(t, err)
	x1, err := Solve(context.Background(), root, b1)
	require.NoError(t, err)
	x2, err := Solve(context.Background(), root, b2)
	require.NoError(t, err)

	for i := 0; i < n; i++ {
		assert.InDelta(t, x1.At(i, 0), xBatch.At(i, 0), 1e-5)
		assert.InDelta(t, x2.At(i, 0), xBatch.At(i, 1), 1e-5)
	}
}

func TestSolve_RejectsNonSquare(t *testing.T) {
	n := 8
	a := diagonallyDominant(n)
	rowTree, colTree := squareTrees(t, n, 2)
	root, err := Compress(context.Background(), a, rowTree, colTree, DefaultConfig())
	require.NoError(t, err)
	root.Col.Hi-- // make it look non-square without re-compressing

	_, err = Solve(context.Background(), root, randomVector(n, 1, 1))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestSolve_RejectsRHSDimensionMismatch(t *testing.T) {
	n := 8
	a := diagonallyDominant(n)
	root := compressForTest(t, a, 2)
	badB := mat.NewDense(n+1, 1, nil)
	_, err := Solve(context.Background(), root, badB)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestSolve_LeafOnlyTreeIsPlainDenseSolve(t *testing.T) {
	n := 4
	a := diagonallyDominant(n)
	root := compressForTest(t, a, n) // single leaf
	b := randomVector(n, 31, 32)

	x, err := Solve(context.Background(), root, b)
	require.NoError(t, err)

	want, err := linalg.Gesv(a, b)
	require.NoError(t, err)
	assert.True(t, mat.EqualApprox(want, x, 1e-9))
}

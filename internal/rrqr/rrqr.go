// Package rrqr implements rank-revealing QR: column-
// pivoted Householder QR with early termination once the trailing pivot
// norm falls below an absolute or relative tolerance. Unlike the dense
// primitives behind internal/linalg, column-pivoted truncated QR is one of
// the hard-core components this module owns, so the Householder
// reflections are computed directly rather than delegated to a facade.
package rrqr

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/hssmat/hss/internal/errs"
)

// Result is the outcome of a rank-revealing QR call.
type Result struct {
	// Q has orthonormal columns, shape (m, K).
	Q *mat.Dense
	// R is upper triangular with K rows, shape (K, n).
	R *mat.Dense
	// Perm is the column permutation applied to A before factoring:
	// A[:, Perm] = Q * R (up to the truncation residual).
	Perm []int
	// K is the revealed rank, 0 <= K <= min(rows(A), cols(A)).
	K int
}

// Factor computes the rank-revealing QR of a, truncating as soon as the
// trailing pivot column norm is no larger than tol (absolute) or
// tol*||A|| (relative, reltol true; ||A|| approximated by A's largest
// initial column norm).
//
// Factor never fails numerically: pathological full-rank input simply
// yields K == min(rows, cols). It rejects NaN/Inf entries and a negative
// tolerance with an invalid_argument error.
func Factor(a *mat.Dense, tol float64, reltol bool) (*Result, error) {
	if tol < 0 || math.IsNaN(tol) || math.IsInf(tol, 0) {
		return nil, errs.InvalidArg("rrqr: invalid tolerance %v", tol)
	}
	m, n := a.Dims()
	for i := 0; i < m; i++ {
		for j := 0; j < n; j++ {
			v := a.At(i, j)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, errs.InvalidArg("rrqr: input contains NaN/Inf at (%d,%d)", i, j)
			}
		}
	}

	perm := make([]int, n)
	for j := range perm {
		perm[j] = j
	}
	if m == 0 || n == 0 {
		return &Result{Q: mat.NewDense(m, 0, nil), R: mat.NewDense(0, n, nil), Perm: perm, K: 0}, nil
	}

	r := mat.DenseCopyOf(a)
	q := identity(m)

	colNorm := make([]float64, n)
	for j := 0; j < n; j++ {
		colNorm[j] = colNorm2(r, 0, m, j)
	}

	maxDim := min(m, n)
	threshold := tol
	if reltol {
		largest := 0.0
		for _, c := range colNorm {
			if c > largest {
				largest = c
			}
		}
		threshold = tol * largest
	}

	k := 0
	for t := 0; t < maxDim; t++ {
		// Pick the remaining column with the largest norm (tie: smaller
		// index, i.e. the first one found, per "pick the smaller rank" /
		// deterministic tie-break).
		best := t
		for j := t + 1; j < n; j++ {
			if colNorm[j] > colNorm[best] {
				best = j
			}
		}
		if colNorm[best] <= threshold {
			break
		}
		if best != t {
			swapColumns(r, t, best)
			perm[t], perm[best] = perm[best], perm[t]
			colNorm[t], colNorm[best] = colNorm[best], colNorm[t]
		}

		applyHouseholder(r, q, t, m, n)
		k = t + 1

		// Recompute trailing column norms (no downdate formula; simplicity
		// over speed is acceptable for this module's scope).
		for j := t + 1; j < n; j++ {
			colNorm[j] = colNorm2(r, t+1, m, j)
		}
	}

	qOut := mat.NewDense(m, k, nil)
	for i := 0; i < m; i++ {
		for j := 0; j < k; j++ {
			qOut.Set(i, j, q.At(i, j))
		}
	}
	rOut := mat.NewDense(k, n, nil)
	for i := 0; i < k; i++ {
		for j := 0; j < n; j++ {
			if j >= i {
				rOut.Set(i, j, r.At(i, j))
			}
		}
	}

	return &Result{Q: qOut, R: rOut, Perm: perm, K: k}, nil
}

func identity(n int) *mat.Dense {
	d := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		d.Set(i, i, 1)
	}
	return d
}

func colNorm2(m *mat.Dense, rowStart, rowEnd, col int) float64 {
	sum := 0.0
	for i := rowStart; i < rowEnd; i++ {
		v := m.At(i, col)
		sum += v * v
	}
	return math.Sqrt(sum)
}

func swapColumns(m *mat.Dense, a, b int) {
	rows, _ := m.Dims()
	for i := 0; i < rows; i++ {
		va, vb := m.At(i, a), m.At(i, b)
		m.Set(i, a, vb)
		m.Set(i, b, va)
	}
}

// applyHouseholder zeroes R[t+1:m, t] by reflecting R[t:m, t:n] on the left
// with a Householder matrix H, and accumulates H into Q by updating
// Q[:, t:m] := Q[:, t:m] * H (Q stays m x m; only columns from t onward are
// touched since H only acts on rows t..m-1 of the reflected operand).
func applyHouseholder(r, q *mat.Dense, t, m, n int) {
	vlen := m - t
	v := make([]float64, vlen)
	for i := 0; i < vlen; i++ {
		v[i] = r.At(t+i, t)
	}

	normX := 0.0
	for _, x := range v {
		normX += x * x
	}
	normX = math.Sqrt(normX)
	if normX == 0 {
		return
	}
	alpha := -normX
	if v[0] < 0 {
		alpha = normX
	}
	v[0] -= alpha

	vnorm2 := 0.0
	for _, x := range v {
		vnorm2 += x * x
	}
	if vnorm2 == 0 {
		return
	}

	// R[t:m, t:n] -= (2/vnorm2) * v * (v^T * R[t:m, t:n])
	for j := t; j < n; j++ {
		dot := 0.0
		for i := 0; i < vlen; i++ {
			dot += v[i] * r.At(t+i, j)
		}
		coeff := 2 * dot / vnorm2
		for i := 0; i < vlen; i++ {
			r.Set(t+i, j, r.At(t+i, j)-coeff*v[i])
		}
	}

	// Q[:, t:m] -= (2/vnorm2) * (Q[:, t:m] * v) * v^T
	rows, _ := q.Dims()
	for i := 0; i < rows; i++ {
		dot := 0.0
		for jj := 0; jj < vlen; jj++ {
			dot += q.At(i, t+jj) * v[jj]
		}
		coeff := 2 * dot / vnorm2
		for jj := 0; jj < vlen; jj++ {
			q.Set(i, t+jj, q.At(i, t+jj)-coeff*v[jj])
		}
	}
}

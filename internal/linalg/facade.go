// Package linalg is the dense linear-algebra facade this module's tree
// operations are built on (geqlf, gelqf, ormql, ormlq, trsm, gemm, gesv).
// Dense factorization and solve are explicitly out of scope for this module
// to implement by hand; this package only composes gonum.org/v1/gonum/mat's
// own decomposition types, grounded on gonum's own LAPACK-facing source.
//
// gonum's mat package has no built-in QL decomposition, so Geqlf is derived
// from mat.QR via the standard row/column-reversal identity: QL(A) is
// obtained by reversing both the rows and the columns of A, taking its QR
// factorization, then reversing both axes of Q and of R. This only uses gonum's own QR Householder
// implementation — no hand-rolled reflection math — consistent with "Non-
// goals: ... dense linear-algebra primitives".
package linalg

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/hssmat/hss/internal/errs"
)

// Side selects which side of C an orthogonal or triangular factor is
// applied to.
type Side int

const (
	Left Side = iota
	Right
)

// Trans selects whether a factor is applied transposed (adjoint, since
// everything here is real).
type Trans int

const (
	NoTrans Trans = iota
	TransT
)

// QL holds a full QL factorization: A = Q * L, Q m×m orthogonal, L m×n with
// its nonzero (lower-triangular) content in the bottom min(m,n) rows — e.g.
// for a tall A (m>n), L's top m-n rows are zero and L's bottom n rows form a
// genuine n×n lower-triangular block. Q is kept full-size (not the thin
// m×min(m,n) economy form) because the ULV solve needs to rotate every row
// of a conformant matrix, not just project onto A's column space.
type QL struct {
	q *mat.Dense
	l *mat.Dense
}

// Geqlf computes the QL factorization of a. a is not modified.
func Geqlf(a *mat.Dense) *QL {
	m, n := a.Dims()

	// Reverse both the rows and the columns of a.
	flipped := mat.NewDense(m, n, nil)
	for i := 0; i < m; i++ {
		for j := 0; j < n; j++ {
			flipped.Set(i, j, a.At(m-1-i, n-1-j))
		}
	}

	var qr mat.QR
	qr.Factorize(flipped)

	qFlipped := mat.NewDense(m, m, nil)
	qr.QTo(qFlipped)
	rFlipped := mat.NewDense(m, n, nil)
	qr.RTo(rFlipped)

	// Un-flip: reverse both axes of Q, and reverse both axes of R to
	// turn its upper-triangular shape into L's lower-triangular shape.
	q := mat.NewDense(m, m, nil)
	for i := 0; i < m; i++ {
		for j := 0; j < m; j++ {
			q.Set(i, j, qFlipped.At(m-1-i, m-1-j))
		}
	}
	l := mat.NewDense(m, n, nil)
	for i := 0; i < m; i++ {
		for j := 0; j < n; j++ {
			l.Set(i, j, rFlipped.At(m-1-i, n-1-j))
		}
	}

	return &QL{q: q, l: l}
}

// Q returns (a copy of) the orthonormal factor.
func (f *QL) Q() *mat.Dense { return mat.DenseCopyOf(f.q) }

// L returns (a copy of) the lower-triangular factor.
func (f *QL) L() *mat.Dense { return mat.DenseCopyOf(f.l) }

// Apply multiplies c by Q (or Qᵀ), on the given side, in place.
func (f *QL) Apply(side Side, trans Trans, c *mat.Dense) {
	applyOrthogonal(f.q, side, trans, c)
}

// LQ holds a full LQ factorization: A = L * Q, Q n×n orthogonal, L m×n with
// its nonzero (lower-triangular) content in the left min(m,n) columns. As
// with QL, Q is kept full-size so it can rotate any n-row operand, not just
// act as an economy-size basis for A's row space.
type LQ struct {
	l *mat.Dense
	q *mat.Dense
}

// Gelqf computes the LQ factorization of a.
func Gelqf(a *mat.Dense) *LQ {
	var lq mat.LQ
	lq.Factorize(a)

	m, n := a.Dims()
	l := mat.NewDense(m, n, nil)
	lq.LTo(l)
	q := mat.NewDense(n, n, nil)
	lq.QTo(q)
	return &LQ{l: l, q: q}
}

// L returns (a copy of) the lower-triangular factor.
func (f *LQ) L() *mat.Dense { return mat.DenseCopyOf(f.l) }

// Q returns (a copy of) the orthonormal factor.
func (f *LQ) Q() *mat.Dense { return mat.DenseCopyOf(f.q) }

// Apply multiplies c by Q (or Qᵀ), on the given side, in place.
func (f *LQ) Apply(side Side, trans Trans, c *mat.Dense) {
	applyOrthogonal(f.q, side, trans, c)
}

// applyOrthogonal computes c := op(q) * c (side==Left) or c := c * op(q)
// (side==Right), where op is transpose iff trans==TransT, and writes the
// result back into c.
func applyOrthogonal(q *mat.Dense, side Side, trans Trans, c *mat.Dense) {
	op := mat.Matrix(q)
	if trans == TransT {
		op = q.T()
	}
	out := new(mat.Dense)
	if side == Left {
		out.Mul(op, c)
	} else {
		out.Mul(c, op)
	}
	c.Copy(out)
}

// TriKind distinguishes upper- from lower-triangular operands for Trsm.
type TriKind int

const (
	Lower TriKind = iota
	Upper
)

// Diag distinguishes a unit-diagonal triangular operand (diagonal assumed
// 1, never read) from a general one.
type Diag int

const (
	NonUnit Diag = iota
	UnitDiag
)

// Trsm solves op(T) * X = alpha * B (side==Left) or X * op(T) = alpha * B
// (side==Right) for X, where T is triangular, and returns X.
func Trsm(side Side, kind TriKind, trans Trans, diag Diag, alpha float64, t *mat.Dense, b *mat.Dense) (*mat.Dense, error) {
	n, _ := t.Dims()
	gonumKind := mat.Lower
	if kind == Upper {
		gonumKind = mat.Upper
	}
	tri := mat.NewTriDense(n, gonumKind, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if (kind == Lower && j > i) || (kind == Upper && j < i) {
				continue
			}
			v := t.At(i, j)
			if diag == UnitDiag && i == j {
				v = 1
			}
			tri.SetTri(i, j, v)
		}
	}

	scaled := new(mat.Dense)
	scaled.Scale(alpha, b)

	x := new(mat.Dense)
	op := mat.Matrix(tri)
	if trans == TransT {
		op = tri.T()
	}
	if side == Left {
		if err := x.Solve(op, scaled); err != nil {
			return nil, errs.NumFailure("triangular solve: %v", err)
		}
	} else {
		// X * op(T) = S  <=>  op(T)^T * X^T = S^T
		var xt mat.Dense
		if err := xt.Solve(op.T(), scaled.T()); err != nil {
			return nil, errs.NumFailure("triangular solve: %v", err)
		}
		x.Copy(xt.T())
	}
	return x, nil
}

// Gemm computes alpha*op(a)*op(b) + beta*c and returns the result. c may be nil, meaning beta is ignored.
func Gemm(alpha float64, a *mat.Dense, transA Trans, b *mat.Dense, transB Trans, beta float64, c *mat.Dense) *mat.Dense {
	opA := mat.Matrix(a)
	if transA == TransT {
		opA = a.T()
	}
	opB := mat.Matrix(b)
	if transB == TransT {
		opB = b.T()
	}
	raw := new(mat.Dense)
	raw.Mul(opA, opB)
	scaled := new(mat.Dense)
	scaled.Scale(alpha, raw)
	if c == nil || beta == 0 {
		return scaled
	}
	out := new(mat.Dense)
	out.Scale(beta, c)
	out.Add(out, scaled)
	return out
}

// Gesv solves the square system A*X = B with a dense LU factorization and
// returns X. It raises a numerical_failure-kind error if A is
// (numerically) singular.
func Gesv(a *mat.Dense, b *mat.Dense) (*mat.Dense, error) {
	m, n := a.Dims()
	if m != n {
		return nil, errs.DimMismatch("gesv: A must be square, got %d x %d", m, n)
	}
	var lu mat.LU
	lu.Factorize(a)
	if cond := lu.Cond(); math.IsInf(cond, 1) || math.IsNaN(cond) {
		return nil, errs.NumFailure("gesv: singular %d x %d matrix", m, n)
	}
	x := new(mat.Dense)
	if err := lu.SolveTo(x, false, b); err != nil {
		return nil, errs.NumFailure("gesv: %v", err)
	}
	return x, nil
}

package hss

import (
	"context"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"gonum.org/v1/gonum/mat"

	"github.com/hssmat/hss/cluster"
	"github.com/hssmat/hss/internal/errs"
	"github.com/hssmat/hss/internal/linalg"
	"github.com/hssmat/hss/internal/matutil"
	"github.com/hssmat/hss/internal/recur"
)

var solveTracer = otel.Tracer("github.com/hssmat/hss")

// Solve computes x such that hss*x ≈ b, via the hierarchical ULV reduction
//: a bottom-up sweep collapses each node's off-diagonal coupling into
// a small dense "remainder" system, a dense solve resolves the remainder
// that survives to the root, and a top-down sweep un-rotates every locally
// resolved piece back into the original coordinate basis.
func Solve(ctx context.Context, root *Node, b *mat.Dense) (x *mat.Dense, err error) {
	ctx, span := solveTracer.Start(ctx, "hss.Solve")
	defer span.End()
	solveID := uuid.NewString()
	span.SetAttributes(attribute.String("hss.solve_id", solveID))

	_, p := b.Dims()
	done := logCall(ctx, "hss.Solve", "solve_id", solveID, "n", root.Row.Len(), "rhs_cols", p)
	defer func() {
		outcome := "ok"
		if err != nil {
			outcome = "error"
		}
		recordSolve(ctx, outcome)
		done(&err)
	}()

	if root.Row.Len() != root.Col.Len() {
		err = errs.DimMismatch("solve: hss is not square (%d rows, %d cols)", root.Row.Len(), root.Col.Len())
		return nil, err
	}
	n := root.Row.Len()
	br, _ := b.Dims()
	if br != n {
		err = errs.DimMismatch("solve: b has %d rows, hss expects %d", br, n)
		return nil, err
	}

	if root.IsLeaf() {
		x, err = linalg.Gesv(root.D, b)
		return x, err
	}

	buf := matutil.Zeros(n, p)
	rctx := recur.NewContext(recur.DefaultWorkers())

	type branchResult struct {
		out  reduceOut
		u    *mat.Dense
		fact *factNode
		err  error
	}
	h := recur.Spawn(rctx, func(childCtx *recur.Context) (branchResult, error) {
		out, u, fact, err := reduceSubtree(childCtx, root.Child1, b, buf)
		return branchResult{out, u, fact, err}, nil
	})
	out2, u2, fact2, err := reduceSubtree(rctx.Child(), root.Child2, b, buf)
	if err != nil {
		return nil, err
	}
	res1, _ := h.Fetch()
	if res1.err != nil {
		return nil, res1.err
	}
	out1, u1, fact1 := res1.out, res1.u, res1.fact

	if err := checkNotSingleSidedElimination(out1.Cols, out2.Cols); err != nil {
		return nil, err
	}

	D, bm, cols := mergeReduced(out1, out2, root.B12, root.B21, u1, u2)
	xlocal, err := linalg.Gesv(D, bm)
	if err != nil {
		return nil, err
	}
	matutil.ScatterRows(buf, cols, xlocal)

	topDown(&factNode{child1: fact1, child2: fact2}, buf)
	return buf, nil
}

// reduceSubtree recursively reduces one HSS subtree, writing every locally
// solved coordinate into buf as it goes and returning the remainder that
// must be merged with its sibling by the caller.
func reduceSubtree(ctx *recur.Context, node *Node, bFull, buf *mat.Dense) (reduceOut, *mat.Dense, *factNode, error) {
	if node.IsLeaf() {
		cols := identityCols(node.Row)
		_, p := bFull.Dims()
		bLocal := matutil.Slice(bFull, node.Row.Lo, node.Row.Hi+1, 0, p)
		return reduceNode(node.D, node.U, node.V, bLocal, cols, buf)
	}

	type childResult struct {
		out  reduceOut
		u    *mat.Dense
		fact *factNode
		err  error
	}
	h := recur.Spawn(ctx, func(childCtx *recur.Context) (childResult, error) {
		out, u, fact, err := reduceSubtree(childCtx, node.Child1, bFull, buf)
		return childResult{out, u, fact, err}, nil
	})
	out2, u2, fact2, err := reduceSubtree(ctx.Child(), node.Child2, bFull, buf)
	if err != nil {
		return reduceOut{}, nil, nil, err
	}
	res1, _ := h.Fetch()
	if res1.err != nil {
		return reduceOut{}, nil, nil, res1.err
	}
	out1, u1, fact1 := res1.out, res1.u, res1.fact

	if err := checkNotSingleSidedElimination(out1.Cols, out2.Cols); err != nil {
		return reduceOut{}, nil, nil, err
	}

	Dm, bm, cols := mergeReduced(out1, out2, node.B12, node.B21, u1, u2)
	Um := matutil.VConcat(
		linalg.Gemm(1, out1.UOut, linalg.NoTrans, node.R1, linalg.NoTrans, 0, nil),
		linalg.Gemm(1, out2.UOut, linalg.NoTrans, node.R2, linalg.NoTrans, 0, nil),
	)
	Vm := matutil.VConcat(
		linalg.Gemm(1, out1.VOut, linalg.NoTrans, node.W1, linalg.NoTrans, 0, nil),
		linalg.Gemm(1, out2.VOut, linalg.NoTrans, node.W2, linalg.NoTrans, 0, nil),
	)

	out, u, fn, err := reduceNode(Dm, Um, Vm, bm, cols, buf)
	if err != nil {
		return reduceOut{}, nil, nil, err
	}
	// Carry the children's already-solved contributions up through W1/W2, so
	// u holds Vᵀ times every coordinate this subtree has solved so far.
	u = linalg.Gemm(1, node.W1, linalg.TransT, u1, linalg.NoTrans, 1, u)
	u = linalg.Gemm(1, node.W2, linalg.TransT, u2, linalg.NoTrans, 1, u)
	fn.child1, fn.child2 = fact1, fact2
	return out, u, fn, nil
}

// checkNotSingleSidedElimination raises not_implemented for the edge case
// where one sibling's remainder vanishes while the other's doesn't: there
// is nothing left to pair its off-diagonal coupling against.
func checkNotSingleSidedElimination(cols1, cols2 []int) error {
	if (len(cols1) == 0) != (len(cols2) == 0) {
		return errs.NotImpl("solve: one child fully eliminated while its sibling was not")
	}
	return nil
}

// mergeReduced assembles two siblings' remainders into the dense block,
// right-hand side, and column list their parent reduces next. Both the root's final merge and every interior branch's
// merge before its own reduceNode call share this exact assembly.
func mergeReduced(out1, out2 reduceOut, B12, B21, u1, u2 *mat.Dense) (D, b *mat.Dense, cols []int) {
	off12 := linalg.Gemm(1, linalg.Gemm(1, out1.UOut, linalg.NoTrans, B12, linalg.NoTrans, 0, nil), linalg.NoTrans, out2.VOut, linalg.TransT, 0, nil)
	off21 := linalg.Gemm(1, linalg.Gemm(1, out2.UOut, linalg.NoTrans, B21, linalg.NoTrans, 0, nil), linalg.NoTrans, out1.VOut, linalg.TransT, 0, nil)
	D = matutil.VConcat(
		matutil.HConcat(out1.DOut, off12),
		matutil.HConcat(off21, out2.DOut),
	)

	corr1 := linalg.Gemm(1, out1.UOut, linalg.NoTrans, linalg.Gemm(1, B12, linalg.NoTrans, u2, linalg.NoTrans, 0, nil), linalg.NoTrans, 0, nil)
	corr2 := linalg.Gemm(1, out2.UOut, linalg.NoTrans, linalg.Gemm(1, B21, linalg.NoTrans, u1, linalg.NoTrans, 0, nil), linalg.NoTrans, 0, nil)
	b = matutil.VConcat(matutil.Sub(out1.BOut, corr1), matutil.Sub(out2.BOut, corr2))

	cols = matutil.ConcatInts(out1.Cols, out2.Cols)
	return D, b, cols
}

// reduceOut is the "remainder" a node hands to its parent after the
// bottom-up reduction step: everything not yet triangularized, in the rotated
// basis the node's own LQ step introduced.
type reduceOut struct {
	DOut, UOut, VOut, BOut *mat.Dense
	Cols                   []int
}

// reduceNode performs one node's QL/LQ reduction, shared
// verbatim between a leaf's own (D,U,V,b) and a branch's just-merged
// (D,U,V,b). D and b are m-row; U is m×k, V is m×rv. cols names the m global
// indices this call owns, in the same row order as D/b/U/V.
func reduceNode(D, U, V, b *mat.Dense, cols []int, buf *mat.Dense) (reduceOut, *mat.Dense, *factNode, error) {
	m, k := U.Dims()
	_, rv := V.Dims()
	_, p := b.Dims()

	if m == 0 {
		return reduceOut{DOut: D, UOut: U, VOut: V, BOut: b, Cols: cols}, matutil.Zeros(rv, p), &factNode{}, nil
	}
	if k >= m {
		// Oversized generator: nothing can be triangularized at this level.
		return reduceOut{DOut: D, UOut: U, VOut: V, BOut: b, Cols: cols}, matutil.Zeros(rv, p), &factNode{}, nil
	}
	nk := m - k

	// Step 2: QL of U; rotate D and b by Q1ᵀ from the left. Skipped when U
	// has no columns — there is nothing to zero out, Q1 is the identity.
	D1, b1 := D, b
	var uTail *mat.Dense
	if k == 0 {
		uTail = matutil.Zeros(0, 0)
	} else {
		ql := linalg.Geqlf(U)
		D1 = mat.DenseCopyOf(D)
		ql.Apply(linalg.Left, linalg.TransT, D1)
		b1 = mat.DenseCopyOf(b)
		ql.Apply(linalg.Left, linalg.TransT, b1)
		uTail = matutil.RowSlice(ql.L(), nk, m)
	}

	dTop := matutil.RowSlice(D1, 0, nk)
	dBot := matutil.RowSlice(D1, nk, m)
	bTop := matutil.RowSlice(b1, 0, nk)
	bBot := matutil.RowSlice(b1, nk, m)

	// Step 3: LQ of the top nk rows of the rotated D. The leading nk×nk
	// triangle is locally solvable; Q2 is the change of basis that made it
	// so, and drives both step 4 and the eventual top-down un-rotation.
	lq := linalg.Gelqf(dTop)
	l1 := matutil.Slice(lq.L(), 0, nk, 0, nk)
	q2 := lq.Q()

	// Step 4: rotate the bottom k rows of D by Q2ᵀ from the right; rotate V
	// by Q2 from the left.
	l2 := linalg.Gemm(1, dBot, linalg.NoTrans, q2, linalg.TransT, 0, nil)
	var vRot *mat.Dense
	if rv > 0 {
		vRot = linalg.Gemm(1, q2, linalg.NoTrans, V, linalg.NoTrans, 0, nil)
	} else {
		vRot = matutil.Zeros(m, 0)
	}

	// Step 5: triangular-solve for the locally resolved coordinates, then
	// fold their contribution into the deferred rows' right-hand side.
	z, err := linalg.Trsm(linalg.Left, linalg.Lower, linalg.NoTrans, linalg.NonUnit, 1, l1, bTop)
	if err != nil {
		return reduceOut{}, nil, nil, err
	}
	bBotNew := matutil.Sub(bBot, linalg.Gemm(1, matutil.ColSlice(l2, 0, nk), linalg.NoTrans, z, linalg.NoTrans, 0, nil))
	dOut := matutil.ColSlice(l2, nk, m)

	var vOut, uOut *mat.Dense
	if rv > 0 {
		vOut = matutil.RowSlice(vRot, nk, m)
		vTop := matutil.RowSlice(vRot, 0, nk)
		uOut = linalg.Gemm(1, vTop, linalg.TransT, z, linalg.NoTrans, 0, nil)
	} else {
		vOut = matutil.Zeros(k, 0)
		uOut = matutil.Zeros(0, p)
	}

	colsTop := append([]int(nil), cols[:nk]...)
	colsBot := append([]int(nil), cols[nk:]...)

	// Step 6: save the resolved coordinates; record the rotation that must
	// be undone over them once every ancestor above has undone its own.
	matutil.ScatterRows(buf, colsTop, z)
	fn := &factNode{q: q2, cols: append([]int(nil), cols...)}

	out := reduceOut{DOut: dOut, UOut: uTail, VOut: vOut, BOut: bBotNew, Cols: colsBot}
	return out, uOut, fn, nil
}

// identityCols returns the global indices [r.Lo, r.Hi] in order, the initial
// "cols" a leaf hands into its own reduction.
func identityCols(r cluster.Range) []int {
	cols := make([]int, r.Len())
	for i := range cols {
		cols[i] = r.Lo + i
	}
	return cols
}

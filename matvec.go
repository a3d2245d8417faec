package hss

import (
	"context"

	"go.opentelemetry.io/otel"
	"gonum.org/v1/gonum/mat"

	"github.com/hssmat/hss/internal/errs"
	"github.com/hssmat/hss/internal/linalg"
	"github.com/hssmat/hss/internal/matutil"
	"github.com/hssmat/hss/internal/recur"
)

var matvecTracer = otel.Tracer("github.com/hssmat/hss")

// upState is the upward sweep's per-node result: the contracted
// right-hand side Vᵀx for this node's column range, retained alongside the
// children's own states so the downward sweep can revisit them without
// mutating the (read-only) HSS tree itself.
type upState struct {
	node         *Node
	gV           *mat.Dense // nil at the root, which has no V of its own
	child1, child2 *upState
}

// MatVec computes y = hss*x. x has cols(hss) rows and any number of
// columns; y has rows(hss) rows and the same number of columns.
func MatVec(ctx context.Context, root *Node, x *mat.Dense) (y *mat.Dense, err error) {
	ctx, span := matvecTracer.Start(ctx, "hss.MatVec")
	defer span.End()

	n := root.Col.Len()
	xr, p := x.Dims()
	done := logCall(ctx, "hss.MatVec", "rows", root.Row.Len(), "cols", n, "rhs_cols", p)
	defer func() { done(&err) }()

	if xr != n {
		err = errs.DimMismatch("matvec: x has %d rows, hss expects %d", xr, n)
		return nil, err
	}

	rctx := recur.NewContext(recur.DefaultWorkers())

	if root.IsLeaf() {
		y = linalg.Gemm(1, root.D, linalg.NoTrans, x, linalg.NoTrans, 0, nil)
		return y, nil
	}

	var up *upState
	up, err = upwardPass(rctx, root, x)
	if err != nil {
		return nil, err
	}

	y = matutil.Zeros(root.Row.Len(), p)
	if err = downwardPass(rctx, up, x, y, nil); err != nil {
		return nil, err
	}
	return y, nil
}

func upwardPass(ctx *recur.Context, node *Node, x *mat.Dense) (*upState, error) {
	_, p := x.Dims()
	if node.IsLeaf() {
		xLeaf := matutil.Slice(x, node.Col.Lo, node.Col.Hi+1, 0, p)
		gV := linalg.Gemm(1, node.V, linalg.TransT, xLeaf, linalg.NoTrans, 0, nil)
		return &upState{node: node, gV: gV}, nil
	}

	type result struct {
		st  *upState
		err error
	}
	h := recur.Spawn(ctx, func(childCtx *recur.Context) (result, error) {
		st, err := upwardPass(childCtx, node.Child1, x)
		return result{st, err}, nil
	})
	up2, err := upwardPass(ctx.Child(), node.Child2, x)
	if err != nil {
		return nil, err
	}
	res, _ := h.Fetch()
	if res.err != nil {
		return nil, res.err
	}
	up1 := res.st

	var gV *mat.Dense
	if !node.Root {
		gV = linalg.Gemm(1, node.W1, linalg.TransT, up1.gV, linalg.NoTrans, 0, nil)
		gV = linalg.Gemm(1, node.W2, linalg.TransT, up2.gV, linalg.NoTrans, 1, gV)
	}
	return &upState{node: node, gV: gV, child1: up1, child2: up2}, nil
}

func downwardPass(ctx *recur.Context, st *upState, x, y *mat.Dense, fU *mat.Dense) error {
	node := st.node
	_, p := x.Dims()

	if node.IsLeaf() {
		xLeaf := matutil.Slice(x, node.Col.Lo, node.Col.Hi+1, 0, p)
		yLeaf := linalg.Gemm(1, node.D, linalg.NoTrans, xLeaf, linalg.NoTrans, 0, nil)
		if fU != nil {
			yLeaf = linalg.Gemm(1, node.U, linalg.NoTrans, fU, linalg.NoTrans, 1, yLeaf)
		}
		writeRows(y, node.Row.Lo, yLeaf)
		return nil
	}

	var fU1, fU2 *mat.Dense
	fU1 = linalg.Gemm(1, node.B12, linalg.NoTrans, st.child2.gV, linalg.NoTrans, 0, nil)
	fU2 = linalg.Gemm(1, node.B21, linalg.NoTrans, st.child1.gV, linalg.NoTrans, 0, nil)
	if !node.Root && fU != nil {
		fU1 = linalg.Gemm(1, node.R1, linalg.NoTrans, fU, linalg.NoTrans, 1, fU1)
		fU2 = linalg.Gemm(1, node.R2, linalg.NoTrans, fU, linalg.NoTrans, 1, fU2)
	}

	type result struct{ err error }
	h := recur.Spawn(ctx, func(childCtx *recur.Context) (result, error) {
		return result{downwardPass(childCtx, st.child1, x, y, fU1)}, nil
	})
	err2 := downwardPass(ctx.Child(), st.child2, x, y, fU2)
	res, _ := h.Fetch()
	if res.err != nil {
		return res.err
	}
	return err2
}

// writeRows copies src into y starting at row offset rowLo. Child subtrees
// write disjoint row ranges, so concurrent calls from siblings never race
// writing into y.
func writeRows(y *mat.Dense, rowLo int, src *mat.Dense) {
	r, c := src.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			y.Set(rowLo+i, j, src.At(i, j))
		}
	}
}

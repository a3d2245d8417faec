package hss

import (
	"gonum.org/v1/gonum/mat"

	"github.com/hssmat/hss/internal/linalg"
	"github.com/hssmat/hss/internal/matutil"
)

// Full materializes the dense matrix an HSS tree represents. It is a
// test/inspection helper, not a production code path: it recursively
// re-expands every implicit generator, which defeats the whole point of the
// HSS representation's storage savings.
func Full(node *Node) *mat.Dense {
	if node.IsLeaf() {
		return mat.DenseCopyOf(node.D)
	}

	d1 := Full(node.Child1)
	d2 := Full(node.Child2)
	u1 := materializeU(node.Child1)
	v1 := materializeV(node.Child1)
	u2 := materializeU(node.Child2)
	v2 := materializeV(node.Child2)

	off12 := linalg.Gemm(1, linalg.Gemm(1, u1, linalg.NoTrans, node.B12, linalg.NoTrans, 0, nil), linalg.NoTrans, v2, linalg.TransT, 0, nil)
	off21 := linalg.Gemm(1, linalg.Gemm(1, u2, linalg.NoTrans, node.B21, linalg.NoTrans, 0, nil), linalg.NoTrans, v1, linalg.TransT, 0, nil)

	top := matutil.HConcat(d1, off12)
	bottom := matutil.HConcat(off21, d2)
	return matutil.VConcat(top, bottom)
}

// materializeU reconstructs a non-root node's implicit left generator by
// composing its children's generators through R1/R2, bottoming out at a
// leaf's concretely-stored U.
func materializeU(node *Node) *mat.Dense {
	if node.IsLeaf() {
		return node.U
	}
	u1 := materializeU(node.Child1)
	u2 := materializeU(node.Child2)
	top := linalg.Gemm(1, u1, linalg.NoTrans, node.R1, linalg.NoTrans, 0, nil)
	bottom := linalg.Gemm(1, u2, linalg.NoTrans, node.R2, linalg.NoTrans, 0, nil)
	return matutil.VConcat(top, bottom)
}

// materializeV is materializeU's column-generator analog, via W1/W2.
func materializeV(node *Node) *mat.Dense {
	if node.IsLeaf() {
		return node.V
	}
	v1 := materializeV(node.Child1)
	v2 := materializeV(node.Child2)
	top := linalg.Gemm(1, v1, linalg.NoTrans, node.W1, linalg.NoTrans, 0, nil)
	bottom := linalg.Gemm(1, v2, linalg.NoTrans, node.W2, linalg.NoTrans, 0, nil)
	return matutil.VConcat(top, bottom)
}

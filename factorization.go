package hss

import (
	"gonum.org/v1/gonum/mat"

	"github.com/hssmat/hss/internal/matutil"
)

// factNode mirrors the HSS tree during a solve: one node per HSS node
// visited by the bottom-up reduction, kept as a structure of its own rather
// than fields bolted onto Node, so the input tree stays untouched.
//
// q is the orthogonal factor from this node's own LQ reduction, applied
// during the top-down sweep to un-rotate the solution coordinates this node
// resolved locally. It is nil when the node's block couldn't be reduced at
// all (oversized generator) — there is nothing to undo, but the node is
// still linked into the tree so its children remain reachable.
type factNode struct {
	q              *mat.Dense
	cols           []int
	child1, child2 *factNode
}

// topDown walks fn in pre-order, applying each node's stored rotation to the
// global solution buffer before descending. Pre-order is required:
// an ancestor's rotation mixes coordinates that a descendant resolved, so
// the descendant's own un-rotation is only valid once the ancestor's has
// already been undone.
func topDown(fn *factNode, buf *mat.Dense) {
	if fn == nil {
		return
	}
	if fn.q != nil && len(fn.cols) > 0 {
		slice := matutil.GatherRows(buf, fn.cols)
		rotated := new(mat.Dense)
		rotated.Mul(fn.q.T(), slice)
		matutil.ScatterRows(buf, fn.cols, rotated)
	}
	topDown(fn.child1, buf)
	topDown(fn.child2, buf)
}

// Package hss implements Hierarchically Semiseparable matrices: a
// data-sparse representation of a dense matrix whose off-diagonal blocks
// admit low numerical rank, built over a pair of binary cluster trees
//. This file defines the tree's node type and the compression
// configuration.
package hss

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/hssmat/hss/cluster"
	"github.com/hssmat/hss/internal/errs"
)

// Node is one node of an HSS tree: a tagged union of a leaf (dense block
// plus generators) and a branch (two children, translation operators, and
// coupling blocks). Both forms carry the shared Row/Col/Root metadata.
//
// A Node's non-root generators are never materialized on the node itself;
// ancestors compose them lazily from R/W. Only the compression routine that
// built a node keeps the U/V it used to compute that node's B blocks, which
// is why Leaf nodes store U/V directly: they have no ancestor-composed form.
type Node struct {
	Row, Col cluster.Range
	Root     bool

	// Leaf fields. D is the dense diagonal block (m,n); U (m,ru) and V
	// (n,rv) are this leaf's generators, produced by the parent's RRQR call
	// during compression.
	D, U, V *mat.Dense

	// Branch fields. Child1/Child2 are nil iff this is a leaf.
	Child1, Child2 *Node
	// Sz1, Sz2 cache each child's (rows, cols) shape.
	Sz1, Sz2 [2]int
	// B12 is (ru(Child1), rv(Child2)); B21 is (ru(Child2), rv(Child1)).
	B12, B21 *mat.Dense
	// R1, R2 map Child1/Child2's implicit U into this node's U:
	// U = [U1 R1; U2 R2]. Nil at the root (no ancestor needs this node's U).
	R1, R2 *mat.Dense
	// W1, W2 do the same for V: V = [V1 W1; V2 W2]. Nil at the root.
	W1, W2 *mat.Dense
}

// IsLeaf reports whether n has no children.
func (n *Node) IsLeaf() bool { return n.Child1 == nil && n.Child2 == nil }

// Shape returns the (rows, cols) of the submatrix n covers.
func (n *Node) Shape() (m, n2 int) {
	return n.Row.Len(), n.Col.Len()
}

// URank returns the width of this node's left generator: for a leaf, the
// stored U's column count; for a non-root branch, the width of its R1/R2
// (since U itself is implicit); 0 at the root, which has no U.
func (n *Node) URank() int {
	switch {
	case n.IsLeaf():
		_, ru := n.U.Dims()
		return ru
	case n.Root:
		return 0
	default:
		_, ru := n.R1.Dims()
		return ru
	}
}

// VRank is URank's analog for the right generator / W1/W2.
func (n *Node) VRank() int {
	switch {
	case n.IsLeaf():
		_, rv := n.V.Dims()
		return rv
	case n.Root:
		return 0
	default:
		_, rv := n.W1.Dims()
		return rv
	}
}

func (n *Node) String() string {
	m, c := n.Shape()
	if n.IsLeaf() {
		return fmt.Sprintf("leaf(rows=%s,cols=%s,shape=%dx%d)", n.Row, n.Col, m, c)
	}
	return fmt.Sprintf("branch(rows=%s,cols=%s,shape=%dx%d)", n.Row, n.Col, m, c)
}

// Config is a compression configuration. The zero value is invalid;
// use DefaultConfig or construct explicitly and call Validate.
type Config struct {
	// Tol is the nonnegative truncation threshold passed to every RRQR call
	// within one compression.
	Tol float64
	// Reltol, when true, makes each RRQR call scale Tol by the largest
	// column norm of the block it factors; Tol is not scaled by a singular
	// value, nor by one maximum shared across the whole compression. When
	// false, Tol is absolute.
	Reltol bool
	// Leafsize bounds cluster-tree leaf range length; must be positive.
	Leafsize int
	// Kestimate is an optional initial sampling rank for adaptive
	// compression. The direct compressor in this module does not use it;
	// it is carried in Config only so callers building on a future
	// randomized-compression variant don't need a breaking change.
	Kestimate int
}

// DefaultConfig returns an application-owned default.
func DefaultConfig() Config {
	return Config{Tol: 1e-9, Reltol: true, Leafsize: 64}
}

// Validate checks Config's fields for internal consistency.
func (c Config) Validate() error {
	if c.Tol < 0 {
		return errs.InvalidArg("tol must be nonnegative, got %v", c.Tol)
	}
	if c.Leafsize <= 0 {
		return errs.InvalidArg("leafsize must be positive, got %d", c.Leafsize)
	}
	return nil
}

// Stats summarizes the shape of a compressed HSS tree, useful for
// diagnostics and for the S5/S6 testable properties that assert
// specific off-diagonal ranks.
type Stats struct {
	Depth      int
	LeafCount  int
	BranchCount int
	MaxURank   int
	MaxVRank   int
}

// CollectStats walks root and summarizes it.
func CollectStats(root *Node) Stats {
	var s Stats
	var walk func(n *Node, depth int)
	walk = func(n *Node, depth int) {
		if n == nil {
			return
		}
		if depth > s.Depth {
			s.Depth = depth
		}
		if n.IsLeaf() {
			s.LeafCount++
		} else {
			s.BranchCount++
		}
		if r := n.URank(); r > s.MaxURank {
			s.MaxURank = r
		}
		if r := n.VRank(); r > s.MaxVRank {
			s.MaxVRank = r
		}
		walk(n.Child1, depth+1)
		walk(n.Child2, depth+1)
	}
	walk(root, 0)
	return s
}

package hss

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"gonum.org/v1/gonum/mat"

	"github.com/hssmat/hss/cluster"
	"github.com/hssmat/hss/internal/errs"
	"github.com/hssmat/hss/internal/linalg"
	"github.com/hssmat/hss/internal/matutil"
	"github.com/hssmat/hss/internal/recur"
	"github.com/hssmat/hss/internal/rrqr"
	"github.com/hssmat/hss/pkg/logging"
)

var compressTracer = otel.Tracer("github.com/hssmat/hss")

// Compress performs the direct, top-down HSS compression of a dense matrix
// over a pair of cluster trees. rowTree and colTree must have
// identical branching structure and must cover exactly a's row and column
// extents, both starting at index 0; any mismatch raises dimension_mismatch.
func Compress(ctx context.Context, a *mat.Dense, rowTree, colTree *cluster.Tree, cfg Config) (*Node, error) {
	ctx, span := compressTracer.Start(ctx, "hss.Compress")
	defer span.End()

	m, n := a.Dims()
	done := logCall(ctx, "hss.Compress", "rows", m, "cols", n, "tol", cfg.Tol, "reltol", cfg.Reltol, "leafsize", cfg.Leafsize)
	start := time.Now()
	var err error
	defer func() {
		recordCompress(ctx, time.Since(start))
		done(&err)
	}()

	if err = cfg.Validate(); err != nil {
		return nil, err
	}
	if rowTree.Range.Lo != 0 || rowTree.Range.Hi != m-1 {
		err = errs.DimMismatch("row tree covers %s, matrix has %d rows", rowTree.Range, m)
		return nil, err
	}
	if colTree.Range.Lo != 0 || colTree.Range.Hi != n-1 {
		err = errs.DimMismatch("col tree covers %s, matrix has %d cols", colTree.Range, n)
		return nil, err
	}
	if err = checkStructuralMatch(rowTree, colTree); err != nil {
		return nil, err
	}

	rctx := recur.NewContext(recur.DefaultWorkers())
	var node *Node
	node, _, _, err = compressNode(rctx, a, rowTree, colTree, matutil.Zeros(m, 0), matutil.Zeros(n, 0), cfg, true)
	return node, err
}

// checkStructuralMatch verifies two cluster trees branch identically, so
// that a row-tree node and the corresponding column-tree node are always
// both leaves or both branches.
func checkStructuralMatch(a, b *cluster.Tree) error {
	if a.IsLeaf() != b.IsLeaf() {
		return errs.DimMismatch("row/col cluster trees diverge at %s / %s", a.Range, b.Range)
	}
	if a.IsLeaf() {
		return nil
	}
	if err := checkStructuralMatch(a.Left, b.Left); err != nil {
		return err
	}
	return checkStructuralMatch(a.Right, b.Right)
}

// compressNode recurses over one pair of corresponding row/col cluster-tree
// nodes, returning the HSS node built for that pair together with the
// generators (U, V) that this node exposes to its parent (nil for the root,
// which has no parent to consume them).
//
// hiRow is the block whose column space a node's own U must subsume: the
// horizontal stack of everything outside this node's row*col scope that an
// ancestor has already assembled; it carries m rows (this node's row count)
// and is widened at each level down with the immediate cross-sibling block.
// hiCol is its column-side analog, carrying n rows.
func compressNode(ctx *recur.Context, a *mat.Dense, rowT, colT *cluster.Tree, hiRow, hiCol *mat.Dense, cfg Config, isRoot bool) (*Node, *mat.Dense, *mat.Dense, error) {
	if rowT.IsLeaf() {
		d := matutil.Slice(a, rowT.Range.Lo, rowT.Range.Hi+1, colT.Range.Lo, colT.Range.Hi+1)
		node := &Node{Row: rowT.Range, Col: colT.Range, Root: isRoot, D: d}
		if isRoot {
			return node, nil, nil, nil
		}
		u, err := generatorFrom(hiRow, cfg)
		if err != nil {
			return nil, nil, nil, err
		}
		v, err := generatorFrom(hiCol, cfg)
		if err != nil {
			return nil, nil, nil, err
		}
		node.U, node.V = u, v
		return node, u, v, nil
	}

	r1, r2 := rowT.Left.Range, rowT.Right.Range
	c1, c2 := colT.Left.Range, colT.Right.Range
	m1, n1 := r1.Len(), c1.Len()

	a12 := matutil.Slice(a, r1.Lo, r1.Hi+1, c2.Lo, c2.Hi+1)
	a21 := matutil.Slice(a, r2.Lo, r2.Hi+1, c1.Lo, c1.Hi+1)

	hiRow1 := matutil.HConcat(a12, matutil.RowSlice(hiRow, 0, m1))
	hiRow2 := matutil.HConcat(a21, matutil.RowSlice(hiRow, m1, m1+r2.Len()))
	hiCol1 := matutil.HConcat(matutil.TransposeCopy(a21), matutil.RowSlice(hiCol, 0, n1))
	hiCol2 := matutil.HConcat(matutil.TransposeCopy(a12), matutil.RowSlice(hiCol, n1, n1+c2.Len()))

	type childOut struct {
		node *Node
		u, v *mat.Dense
		err  error
	}

	left := recur.Spawn(ctx, func(childCtx *recur.Context) (childOut, error) {
		n, u, v, err := compressNode(childCtx, a, rowT.Left, colT.Left, hiRow1, hiCol1, cfg, false)
		return childOut{n, u, v, err}, nil
	})
	child2, u2, v2, err := compressNode(ctx.Child(), a, rowT.Right, colT.Right, hiRow2, hiCol2, cfg, false)
	if err != nil {
		return nil, nil, nil, err
	}

	leftRes, _ := left.Fetch()
	if leftRes.err != nil {
		return nil, nil, nil, leftRes.err
	}
	child1, u1, v1 := leftRes.node, leftRes.u, leftRes.v

	node := &Node{
		Row: rowT.Range, Col: colT.Range, Root: isRoot,
		Child1: child1, Child2: child2,
		Sz1: [2]int{m1, n1}, Sz2: [2]int{r2.Len(), c2.Len()},
	}

	node.B12 = linalg.Gemm(1, linalg.Gemm(1, u1, linalg.TransT, a12, linalg.NoTrans, 0, nil), linalg.NoTrans, v2, linalg.NoTrans, 0, nil)
	node.B21 = linalg.Gemm(1, linalg.Gemm(1, u2, linalg.TransT, a21, linalg.NoTrans, 0, nil), linalg.NoTrans, v1, linalg.NoTrans, 0, nil)

	if isRoot {
		return node, nil, nil, nil
	}

	u, err := generatorFrom(hiRow, cfg)
	if err != nil {
		return nil, nil, nil, err
	}
	v, err := generatorFrom(hiCol, cfg)
	if err != nil {
		return nil, nil, nil, err
	}

	node.R1 = linalg.Gemm(1, u1, linalg.TransT, matutil.RowSlice(u, 0, m1), linalg.NoTrans, 0, nil)
	node.R2 = linalg.Gemm(1, u2, linalg.TransT, matutil.RowSlice(u, m1, m1+r2.Len()), linalg.NoTrans, 0, nil)
	node.W1 = linalg.Gemm(1, v1, linalg.TransT, matutil.RowSlice(v, 0, n1), linalg.NoTrans, 0, nil)
	node.W2 = linalg.Gemm(1, v2, linalg.TransT, matutil.RowSlice(v, n1, n1+c2.Len()), linalg.NoTrans, 0, nil)

	return node, u, v, nil
}

// generatorFrom RRQR-compresses a stacked off-diagonal block into an
// orthonormal basis. Tie-break "pick the smaller rank" is
// exactly RRQR's own termination rule, so no extra logic is needed here.
func generatorFrom(stacked *mat.Dense, cfg Config) (*mat.Dense, error) {
	res, err := rrqr.Factor(stacked, cfg.Tol, cfg.Reltol)
	if err != nil {
		return nil, err
	}
	m, n := stacked.Dims()
	recordRank(context.Background(), res.K)
	if full := min(m, n); full > 0 && res.K >= full {
		logging.Default().Warn("rank saturation: generator reached full rank, no compression achieved",
			"rows", m, "cols", n, "rank", res.K)
	}
	return res.Q, nil
}

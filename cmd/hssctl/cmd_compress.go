package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/hssmat/hss"
	"github.com/hssmat/hss/cluster"
)

// buildTrees constructs identical row/column cluster trees over [0, n-1]
// (square HSS inputs only, matching the solve path's own requirement).
func buildTrees(n, leafsize int) (*cluster.Tree, *cluster.Tree, error) {
	rowTree, err := cluster.Bisection(cluster.Range{Lo: 0, Hi: n - 1}, leafsize)
	if err != nil {
		return nil, nil, fmt.Errorf("row cluster tree: %w", err)
	}
	colTree, err := cluster.Bisection(cluster.Range{Lo: 0, Hi: n - 1}, leafsize)
	if err != nil {
		return nil, nil, fmt.Errorf("col cluster tree: %w", err)
	}
	return rowTree, colTree, nil
}

func runCompress(cmd *cobra.Command, args []string) error {
	f, err := loadFixture(fixturePath)
	if err != nil {
		return err
	}
	a := f.denseMatrix()
	m, _ := a.Dims()
	rowTree, colTree, err := buildTrees(m, f.Leafsize)
	if err != nil {
		return err
	}

	ctx := hss.WithLogger(context.Background(), log)
	start := time.Now()
	root, err := hss.Compress(ctx, a, rowTree, colTree, f.config())
	if err != nil {
		return fmt.Errorf("compress: %w", err)
	}
	elapsed := time.Since(start)

	stats := hss.CollectStats(root)
	fmt.Fprintf(os.Stdout, "compressed %dx%d in %s\n", m, m, elapsed)
	fmt.Fprintf(os.Stdout, "  depth=%d leaves=%d branches=%d max_u_rank=%d max_v_rank=%d\n",
		stats.Depth, stats.LeafCount, stats.BranchCount, stats.MaxURank, stats.MaxVRank)
	return nil
}

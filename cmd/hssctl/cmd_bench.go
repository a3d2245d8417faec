package main

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/hssmat/hss"
)

// benchResult is one size's timing/rank readout, collected under a mutex
// since the sizes run concurrently (bounded by errgroup.Group.SetLimit).
type benchResult struct {
	size                          int
	compressMs, matvecMs, solveMs int64
	maxURank, maxVRank            int
}

func runBench(cmd *cobra.Command, args []string) error {
	sizes, err := cmd.Flags().GetIntSlice("sizes")
	if err != nil {
		return err
	}
	workers, err := cmd.Flags().GetInt("workers")
	if err != nil {
		return err
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	f, err := loadFixture(fixturePath)
	if err != nil {
		return err
	}

	ctx := hss.WithLogger(context.Background(), log)

	var mu sync.Mutex
	results := make([]benchResult, 0, len(sizes))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, size := range sizes {
		size := size
		g.Go(func() error {
			res, err := benchOne(gCtx, f, size)
			if err != nil {
				return fmt.Errorf("size %d: %w", size, err)
			}
			mu.Lock()
			results = append(results, res)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	sort.Slice(results, func(i, j int) bool { return results[i].size < results[j].size })
	fmt.Fprintf(os.Stdout, "%8s %12s %12s %12s %10s %10s\n", "size", "compress_ms", "matvec_ms", "solve_ms", "u_rank", "v_rank")
	for _, r := range results {
		fmt.Fprintf(os.Stdout, "%8d %12d %12d %12d %10d %10d\n",
			r.size, r.compressMs, r.matvecMs, r.solveMs, r.maxURank, r.maxVRank)
	}
	return nil
}

// benchOne synthesizes a size x size Cauchy-like matrix and a right-hand
// side seeded from f's Seed, then times compress/matvec/solve against them
// using f's configuration.
func benchOne(ctx context.Context, f *fixture, size int) (benchResult, error) {
	sized := *f
	sized.Size = size
	sized.Matrix = nil
	a := sized.denseMatrix()
	b := sized.rhsMatrix(size)

	rowTree, colTree, err := buildTrees(size, sized.Leafsize)
	if err != nil {
		return benchResult{}, err
	}

	t0 := time.Now()
	root, err := hss.Compress(ctx, a, rowTree, colTree, sized.config())
	if err != nil {
		return benchResult{}, fmt.Errorf("compress: %w", err)
	}
	compressMs := time.Since(t0).Milliseconds()

	t1 := time.Now()
	if _, err := hss.MatVec(ctx, root, b); err != nil {
		return benchResult{}, fmt.Errorf("matvec: %w", err)
	}
	matvecMs := time.Since(t1).Milliseconds()

	t2 := time.Now()
	if _, err := hss.Solve(ctx, root, b); err != nil {
		return benchResult{}, fmt.Errorf("solve: %w", err)
	}
	solveMs := time.Since(t2).Milliseconds()

	stats := hss.CollectStats(root)
	return benchResult{
		size:       size,
		compressMs: compressMs,
		matvecMs:   matvecMs,
		solveMs:    solveMs,
		maxURank:   stats.MaxURank,
		maxVRank:   stats.MaxVRank,
	}, nil
}

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/mat"

	"github.com/hssmat/hss"
)

func runSolve(cmd *cobra.Command, args []string) error {
	f, err := loadFixture(fixturePath)
	if err != nil {
		return err
	}
	a := f.denseMatrix()
	m, _ := a.Dims()
	b := f.rhsMatrix(m)

	rowTree, colTree, err := buildTrees(m, f.Leafsize)
	if err != nil {
		return err
	}

	ctx := hss.WithLogger(context.Background(), log)
	root, err := hss.Compress(ctx, a, rowTree, colTree, f.config())
	if err != nil {
		return fmt.Errorf("compress: %w", err)
	}

	start := time.Now()
	x, err := hss.Solve(ctx, root, b)
	elapsed := time.Since(start)
	if err != nil {
		var kind hss.Kind
		if k, ok := hss.ErrorKind(err); ok {
			kind = k
		}
		if errors.Is(err, hss.ErrNotImplemented) {
			fmt.Fprintf(os.Stderr, "solve: not implemented (kind=%v): %v\n", kind, err)
			return err
		}
		return fmt.Errorf("solve: %w", err)
	}

	var residual mat.Dense
	residual.Mul(a, x)
	residual.Sub(&residual, b)
	relResidual := mat.Norm(&residual, 2) / mat.Norm(b, 2)

	fmt.Fprintf(os.Stdout, "solve %dx%d in %s, relative residual = %.3e\n", m, m, elapsed, relResidual)
	return nil
}

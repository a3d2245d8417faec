package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/mat"

	"github.com/hssmat/hss"
)

func runMatVec(cmd *cobra.Command, args []string) error {
	f, err := loadFixture(fixturePath)
	if err != nil {
		return err
	}
	a := f.denseMatrix()
	m, _ := a.Dims()
	x := f.rhsMatrix(m)

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
	y, err := hss.MatVec(ctx, root, x)
	if err != nil {
		return fmt.Errorf("matvec: %w", err)
	}
	elapsed := time.Since(start)

	var want mat.Dense
	want.Mul(a, x)
	var diff mat.Dense
	diff.Sub(&want, y)
	relErr := mat.Norm(&diff, 2) / mat.Norm(&want, 2)

	fmt.Fprintf(os.Stdout, "matvec %dx%d in %s, relative error vs dense = %.3e\n", m, m, elapsed, relErr)
	return nil
}

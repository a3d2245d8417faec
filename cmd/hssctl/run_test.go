package main

import (
	"context"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

// withFixture points the global fixturePath at a freshly written YAML file
// for the duration of the test, restoring the previous value on cleanup —
// runCompress/runMatVec/runSolve/runBench all read fixturePath as a package
// global rather than taking it as an argument.
func withFixture(t *testing.T, contents string) {
	t.Helper()
	prev := fixturePath
	fixturePath = writeFixtureFile(t, contents)
	t.Cleanup(func() { fixturePath = prev })
}

func TestRunCompress_SucceedsOnSyntheticFixture(t *testing.T) {
	withFixture(t, "size: 8\nseed: 1\nleafsize: 2\n")
	require.NoError(t, runCompress(compressCmd, nil))
}

func TestRunMatVec_SucceedsOnSyntheticFixture(t *testing.T) {
	withFixture(t, "size: 8\nseed: 1\nleafsize: 2\n")
	require.NoError(t, runMatVec(matvecCmd, nil))
}

func TestRunSolve_SucceedsOnSyntheticFixture(t *testing.T) {
	withFixture(t, "size: 8\nseed: 1\nleafsize: 2\ntol: 1e-12\n")
	require.NoError(t, runSolve(solveCmd, nil))
}

func TestRunCompress_PropagatesMissingFixtureError(t *testing.T) {
	prev := fixturePath
	fixturePath = "/nonexistent/path/to/fixture.yaml"
	t.Cleanup(func() { fixturePath = prev })
	require.Error(t, runCompress(compressCmd, nil))
}

// benchCommandWithFlags builds a standalone command carrying the same
// "sizes"/"workers" flags benchCmd registers in init(), so the test can pick
// small sizes without disturbing the package-level benchCmd the other tests
// in this package inspect for its documented defaults.
func benchCommandWithFlags(sizes []int, workers int) *cobra.Command {
	c := &cobra.Command{Use: "bench"}
	c.Flags().IntSlice("sizes", sizes, "")
	c.Flags().Int("workers", workers, "")
	return c
}

func TestRunBench_SucceedsAcrossSmallSizes(t *testing.T) {
	withFixture(t, "size: 4\nseed: 7\nleafsize: 2\n")
	c := benchCommandWithFlags([]int{4, 8}, 2)
	require.NoError(t, runBench(c, nil))
}

// benchOne is exercised directly too, since runBench fans it out across a
// worker pool and a failure inside one size shouldn't get lost in the mix.
func TestBenchOne_ReturnsTimingAndRankStats(t *testing.T) {
	f := &fixture{Seed: 3, Leafsize: 2, Tol: 1e-9}
	res, err := benchOne(context.Background(), f, 8)
	require.NoError(t, err)
	require.Equal(t, 8, res.size)
}

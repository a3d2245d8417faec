package main

import (
	"github.com/spf13/cobra"
)

var (
	fixturePath string

	rootCmd = &cobra.Command{
		Use:   "hssctl",
		Short: "Drive the hss hierarchically semiseparable matrix library",
		Long: `hssctl compresses, applies, and solves hierarchically semiseparable
matrices described by a YAML fixture, printing timing, rank, and accuracy
statistics for each run.`,
	}

	compressCmd = &cobra.Command{
		Use:   "compress",
		Short: "Compress a dense matrix into an HSS tree and report its statistics",
		RunE:  runCompress,
	}

	matvecCmd = &cobra.Command{
		Use:   "matvec",
		Short: "Compress a matrix and apply it to a right-hand side",
		RunE:  runMatVec,
	}

	solveCmd = &cobra.Command{
		Use:   "solve",
		Short: "Compress a matrix and solve a linear system against it",
		RunE:  runSolve,
	}

	benchCmd = &cobra.Command{
		Use:   "bench",
		Short: "Benchmark compress/matvec/solve across a range of synthetic sizes",
		RunE:  runBench,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&fixturePath, "fixture", "f", "fixture.yaml", "path to a YAML matrix fixture")

	benchCmd.Flags().IntSlice("sizes", []int{64, 128, 256}, "matrix sizes to benchmark")
	benchCmd.Flags().Int("workers", 0, "worker pool size for the benchmark driver (0 = GOMAXPROCS)")

	rootCmd.AddCommand(compressCmd)
	rootCmd.AddCommand(matvecCmd)
	rootCmd.AddCommand(solveCmd)
	rootCmd.AddCommand(benchCmd)
}

package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCmd_HasAllFourSubcommands(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["compress"])
	assert.True(t, names["matvec"])
	assert.True(t, names["solve"])
	assert.True(t, names["bench"])
}

func TestRootCmd_FixtureFlagDefault(t *testing.T) {
	f := rootCmd.PersistentFlags().Lookup("fixture")
	require.NotNil(t, f)
	assert.Equal(t, "fixture.yaml", f.DefValue)
	assert.Equal(t, "f", f.Shorthand)
}

func TestBenchCmd_SizesAndWorkersFlags(t *testing.T) {
	sizes, err := benchCmd.Flags().GetIntSlice("sizes")
	require.NoError(t, err)
	assert.Equal(t, []int{64, 128, 256}, sizes)

	workers, err := benchCmd.Flags().GetInt("workers")
	require.NoError(t, err)
	assert.Equal(t, 0, workers)
}

func TestCommands_RunEIsWired(t *testing.T) {
	assert.NotNil(t, compressCmd.RunE)
	assert.NotNil(t, matvecCmd.RunE)
	assert.NotNil(t, solveCmd.RunE)
	assert.NotNil(t, benchCmd.RunE)
}

package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSetupTelemetry_InstallsProvidersAndShutsDownCleanly(t *testing.T) {
	var traceOut, metricsOut bytes.Buffer

	tel, err := setupTelemetry(&traceOut, &metricsOut)
	require.NoError(t, err)
	require.NotNil(t, tel.tracerProvider)
	require.NotNil(t, tel.meterProvider)
	require.NotNil(t, tel.registry)

	require.NoError(t, tel.shutdown(context.Background()))
}

// TestTelemetry_GatherSucceedsAfterShutdown checks that shutdown succeeds
// with the writers setupTelemetry was given and that the registry can still
// be gathered afterwards. It does not inspect what was written to
// metricsOut.
func TestTelemetry_GatherSucceedsAfterShutdown(t *testing.T) {
	var traceOut, metricsOut bytes.Buffer

	tel, err := setupTelemetry(&traceOut, &metricsOut)
	require.NoError(t, err)
	require.NoError(t, tel.shutdown(context.Background()))

	// Gather is idempotent and deterministic regardless of whether any
	// instrument recorded a value yet, so this must not error even though
	// metricsOut may end up empty for an unused meter.
	_, err = tel.registry.Gather()
	require.NoError(t, err)
}

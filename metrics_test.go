package hss

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

// TestRecordHelpers_ReachTheInstalledMeterProvider installs a manual reader
// as the global meter provider and checks that recordCompress/recordRank/
// recordSolve actually produce readings on it, not just that they don't
// panic against the no-op default.
func TestRecordHelpers_ReachTheInstalledMeterProvider(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	prevMeter := meter
	meter = provider.Meter("github.com/hssmat/hss")
	t.Cleanup(func() { meter = prevMeter })
	initInstruments(t)

	recordCompress(context.Background(), 7*time.Millisecond)
	recordRank(context.Background(), 3)
	recordSolve(context.Background(), "ok")

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	require.NotEmpty(t, rm.ScopeMetrics)

	names := map[string]bool{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			names[m.Name] = true
		}
	}
	assert.True(t, names["hss.compress.duration_ms"])
	assert.True(t, names["hss.offdiagonal_rank"])
	assert.True(t, names["hss.solve.count"])
}

// initInstruments rebuilds the package-level instrument vars against
// whatever meter is currently installed, mirroring how metrics.go's var
// block binds them at package init against the otel global meter.
func initInstruments(t *testing.T) {
	t.Helper()
	var err error
	compressDuration, err = meter.Float64Histogram("hss.compress.duration_ms")
	require.NoError(t, err)
	offDiagonalRank, err = meter.Int64Histogram("hss.offdiagonal_rank")
	require.NoError(t, err)
	solveCount, err = meter.Int64Counter("hss.solve.count")
	require.NoError(t, err)
}

package hss

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var meter = otel.Meter("github.com/hssmat/hss")

// Metric instruments shared by Compress and Solve. They record
// through whatever metric.MeterProvider the caller has installed globally;
// with none installed they're the no-op default, so a library caller who
// never sets one up pays nothing beyond the call itself.
var (
	compressDuration, _ = meter.Float64Histogram(
		"hss.compress.duration_ms",
		metric.WithDescription("wall time of one Compress call, in milliseconds"),
		metric.WithUnit("ms"),
	)
	offDiagonalRank, _ = meter.Int64Histogram(
		"hss.offdiagonal_rank",
		metric.WithDescription("revealed rank of an off-diagonal generator produced during compression"),
	)
	solveCount, _ = meter.Int64Counter(
		"hss.solve.count",
		metric.WithDescription("number of Solve calls, by outcome"),
	)
)

// recordCompress records one Compress call's wall time.
func recordCompress(ctx context.Context, elapsed time.Duration) {
	compressDuration.Record(ctx, float64(elapsed.Milliseconds()))
}

// recordRank records one generator's revealed rank.
func recordRank(ctx context.Context, rank int) {
	offDiagonalRank.Record(ctx, int64(rank))
}

// recordSolve records one Solve call's outcome ("ok" or "error").
func recordSolve(ctx context.Context, outcome string) {
	solveCount.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

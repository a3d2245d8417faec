package main

import (
	"context"
	"fmt"
	"io"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"go.opentelemetry.io/otel"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// telemetry bundles the tracer/meter providers hssctl installs globally for
// the duration of one command: spans go through the stdout trace exporter
// to the writer passed to setupTelemetry (main passes stderr), never to a
// network collector, and metrics accumulate in a Prometheus registry that's
// gathered and printed once on shutdown rather than served over HTTP.
type telemetry struct {
	tracerProvider *sdktrace.TracerProvider
	meterProvider  *sdkmetric.MeterProvider
	registry       *promclient.Registry
	out            io.Writer
}

// setupTelemetry wires the tracing and metrics providers hssctl runs with,
// writing span output to traceOut and printing the metrics snapshot to
// metricsOut on shutdown.
func setupTelemetry(traceOut, metricsOut io.Writer) (*telemetry, error) {
	traceExp, err := stdouttrace.New(stdouttrace.WithWriter(traceOut), stdouttrace.WithoutTimestamps())
	if err != nil {
		return nil, fmt.Errorf("stdout trace exporter: %w", err)
	}
	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(traceExp))
	otel.SetTracerProvider(tp)

	metricExp, err := otelprom.New()
	if err != nil {
		return nil, fmt.Errorf("prometheus metric exporter: %w", err)
	}
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(metricExp))
	otel.SetMeterProvider(mp)

	reg := promclient.NewRegistry()
	if err := reg.Register(metricExp); err != nil {
		return nil, fmt.Errorf("register prometheus collector: %w", err)
	}

	return &telemetry{tracerProvider: tp, meterProvider: mp, registry: reg, out: metricsOut}, nil
}

// shutdown flushes spans, gathers every registered metric family, and prints
// them in Prometheus text exposition format — a snapshot dump, not a served
// endpoint — hssctl never serves metrics over the wire.
func (t *telemetry) shutdown(ctx context.Context) error {
	defer t.tracerProvider.Shutdown(ctx)
	defer t.meterProvider.Shutdown(ctx)

	families, err := t.registry.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	enc := expfmt.NewEncoder(t.out, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return fmt.Errorf("encode metrics: %w", err)
		}
	}
	return nil
}

// Package telemetry wires the pipeline's phase-level observability (spec.md
// §5's additional ambient requirement in SPEC_FULL.md §5): an OpenTelemetry
// span plus a Prometheus histogram observation around each pipeline phase.
//
// Both are no-op by default, consistent with spec.md §5 ("no shared mutable
// state across instances"): the tracer is whatever TracerProvider
// go.opentelemetry.io/otel's global registry currently holds (a no-op
// provider until a host process calls otel.SetTracerProvider), and the
// Prometheus histogram is created but never registered with a Registerer
// unless Init is called, so observing it costs only an in-memory update.
//
// Grounded on jinterlante1206-AleutianLocal's services/trace/dag executor,
// which opens a span and records a histogram around each DAG node's run the
// same way this package does around each pipeline phase.
package telemetry

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/quarto-dev/q2-sub015/pipeline"

var phaseLatency = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: "q2c",
		Subsystem: "pipeline",
		Name:      "phase_duration_seconds",
		Help:      "Duration of each q2c pipeline phase (build, postprocess, write).",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"phase"},
)

// Init registers the pipeline's Prometheus collectors with reg. Calling
// Init is optional: a process that never calls it still runs the pipeline
// normally, it just has nothing to scrape. Safe to call more than once with
// the same reg (the already-registered error is swallowed); any other
// registration error from reg is returned rather than panicking.
func Init(reg prometheus.Registerer) error {
	if reg == nil {
		return nil
	}
	if err := reg.Register(phaseLatency); err != nil {
		if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return nil
		}
		return err
	}
	return nil
}

func tracer() trace.Tracer {
	return otel.Tracer(instrumentationName)
}

// Phase opens a span named "pipeline."+name, runs fn, records fn's duration
// on the phase_duration_seconds histogram under that phase name, and marks
// the span as errored if fn returns a non-nil error.
func Phase(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	ctx, span := tracer().Start(ctx, "pipeline."+name, trace.WithAttributes(
		attribute.String("q2c.phase", name),
	))
	defer span.End()

	start := time.Now()
	err := fn(ctx)
	phaseLatency.WithLabelValues(name).Observe(time.Since(start).Seconds())

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

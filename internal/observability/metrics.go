package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// meterName is the instrumentation scope name used for all catalog metrics.
const meterName = "github.com/cory-johannsen/pogodata"

// Metrics holds the OpenTelemetry instruments recorded by the fetch client
// and the catalog refresh controller. All methods are nil-safe so callers may
// pass a nil *Metrics when metrics are not wanted.
type Metrics struct {
	// Rebuilds counts catalog builds. Attribute "status" is "ok" or "error".
	Rebuilds metric.Int64Counter
	// RebuildDuration tracks wall time of catalog builds in seconds.
	RebuildDuration metric.Float64Histogram
	// FetchAttempts counts remote fetch attempts. Attribute "status" is "ok"
	// or "error".
	FetchAttempts metric.Int64Counter
	// Entities records the size of each entity list after a successful build.
	// Attribute "kind" names the list.
	Entities metric.Int64Gauge
}

var buildBuckets = []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 300}

// NewMetrics creates every instrument from the given provider.
//
// Precondition: mp must be non-nil.
// Postcondition: Returns a fully initialised *Metrics or the first instrument
// creation error.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.Rebuilds, err = m.Int64Counter("pogodata.catalog.rebuilds",
		metric.WithDescription("Catalog rebuilds by outcome."),
	); err != nil {
		return nil, err
	}
	if met.RebuildDuration, err = m.Float64Histogram("pogodata.catalog.rebuild.duration",
		metric.WithDescription("Wall time of a catalog rebuild."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(buildBuckets...),
	); err != nil {
		return nil, err
	}
	if met.FetchAttempts, err = m.Int64Counter("pogodata.fetch.attempts",
		metric.WithDescription("Remote resource fetch attempts by outcome."),
	); err != nil {
		return nil, err
	}
	if met.Entities, err = m.Int64Gauge("pogodata.catalog.entities",
		metric.WithDescription("Entities per kind in the published snapshot."),
	); err != nil {
		return nil, err
	}
	return met, nil
}

// NopMetrics returns instruments backed by the no-op provider.
func NopMetrics() *Metrics {
	met, err := NewMetrics(noop.NewMeterProvider())
	if err != nil {
		// The no-op provider never fails instrument creation.
		panic(err)
	}
	return met
}

func status(err error) attribute.KeyValue {
	if err != nil {
		return attribute.String("status", "error")
	}
	return attribute.String("status", "ok")
}

// RecordRebuild records the outcome and duration of one catalog build.
func (m *Metrics) RecordRebuild(ctx context.Context, elapsed time.Duration, err error) {
	if m == nil {
		return
	}
	m.Rebuilds.Add(ctx, 1, metric.WithAttributes(status(err)))
	m.RebuildDuration.Record(ctx, elapsed.Seconds(), metric.WithAttributes(status(err)))
}

// RecordFetch records one remote fetch attempt.
func (m *Metrics) RecordFetch(ctx context.Context, err error) {
	if m == nil {
		return
	}
	m.FetchAttempts.Add(ctx, 1, metric.WithAttributes(status(err)))
}

// RecordEntities records the size of the named entity list.
func (m *Metrics) RecordEntities(ctx context.Context, kind string, n int) {
	if m == nil {
		return
	}
	m.Entities.Record(ctx, int64(n), metric.WithAttributes(attribute.String("kind", kind)))
}

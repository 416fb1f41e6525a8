// Package observe holds the metric instruments for lexicheck and the
// provider setup that exposes them to Prometheus.
//
// Tests should build their own [Metrics] with [NewMetrics] over a
// ManualReader-backed provider instead of using [DefaultMetrics].
package observe

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/hazyhaar/lexicheck"

// Verdict sources, recorded as the "source" attribute of lexicheck.validations.
const (
	SourceExact    = "exact"
	SourceLocal    = "local"
	SourceRemote   = "remote"
	SourceFallback = "fallback"
	SourceJudge    = "judge"
)

// Remote failure kinds, recorded as the "kind" attribute of lexicheck.remote.errors.
const (
	ErrorRateLimited = "rate_limited"
	ErrorStatus      = "status"
	ErrorTransport   = "transport"
)

// Metrics holds every instrument the service records to.
type Metrics struct {
	// Validations counts verdicts by outcome (accepted|rejected) and source.
	Validations metric.Int64Counter

	// LocalStages counts local acceptances by the stage that accepted.
	LocalStages metric.Int64Counter

	// RemoteErrors counts failed remote round trips by kind.
	RemoteErrors metric.Int64Counter

	// RemoteDuration tracks remote validator and judge latency.
	RemoteDuration metric.Float64Histogram

	// QuotaDenied counts requests refused by the usage limiter.
	QuotaDenied metric.Int64Counter

	// HTTPRequestDuration tracks API latency by method and route.
	HTTPRequestDuration metric.Float64Histogram
}

// remote validators answer in hundreds of milliseconds to a few seconds.
var latencyBuckets = []float64{
	0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10,
}

// NewMetrics creates the instruments on mp.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.Validations, err = m.Int64Counter("lexicheck.validations",
		metric.WithDescription("Answer verdicts by outcome and source."),
	); err != nil {
		return nil, err
	}
	if met.LocalStages, err = m.Int64Counter("lexicheck.local.stage",
		metric.WithDescription("Local acceptances by matching stage."),
	); err != nil {
		return nil, err
	}
	if met.RemoteErrors, err = m.Int64Counter("lexicheck.remote.errors",
		metric.WithDescription("Failed remote validations by kind."),
	); err != nil {
		return nil, err
	}
	if met.RemoteDuration, err = m.Float64Histogram("lexicheck.remote.duration",
		metric.WithDescription("Latency of remote semantic validation."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.QuotaDenied, err = m.Int64Counter("lexicheck.quota.denied",
		metric.WithDescription("Requests refused because the caller's quota was spent."),
	); err != nil {
		return nil, err
	}
	if met.HTTPRequestDuration, err = m.Float64Histogram("lexicheck.http.request.duration",
		metric.WithDescription("HTTP request latency by method and route."),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}
	return met, nil
}

var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns a package-level Metrics built on the global
// MeterProvider. It is a no-op until InitProvider has run.
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		var err error
		defaultMetrics, err = NewMetrics(otel.GetMeterProvider())
		if err != nil {
			panic("observe: default metrics: " + err.Error())
		}
	})
	return defaultMetrics
}

// RecordValidation counts one verdict.
func (m *Metrics) RecordValidation(ctx context.Context, accepted bool, source string) {
	outcome := "rejected"
	if accepted {
		outcome = "accepted"
	}
	m.Validations.Add(ctx, 1, metric.WithAttributes(
		attribute.String("outcome", outcome),
		attribute.String("source", source),
	))
}

// RecordLocalStage counts one local acceptance.
func (m *Metrics) RecordLocalStage(ctx context.Context, stage string) {
	m.LocalStages.Add(ctx, 1, metric.WithAttributes(attribute.String("stage", stage)))
}

// RecordRemoteError counts one failed remote round trip.
func (m *Metrics) RecordRemoteError(ctx context.Context, kind string) {
	m.RemoteErrors.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
}

// RecordRemoteDuration records the latency of one remote round trip.
func (m *Metrics) RecordRemoteDuration(ctx context.Context, d time.Duration) {
	m.RemoteDuration.Record(ctx, d.Seconds())
}

// RecordQuotaDenied counts one refused request.
func (m *Metrics) RecordQuotaDenied(ctx context.Context, usageType string) {
	m.QuotaDenied.Add(ctx, 1, metric.WithAttributes(attribute.String("usage_type", usageType)))
}

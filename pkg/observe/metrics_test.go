package observe

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func newTestMetrics(t *testing.T) (*Metrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	m, err := NewMetrics(mp)
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}
	return m, reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect: %v", err)
	}
	return rm
}

func findMetric(rm metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for _, sm := range rm.ScopeMetrics {
		for i := range sm.Metrics {
			if sm.Metrics[i].Name == name {
				return &sm.Metrics[i]
			}
		}
	}
	return nil
}

// sumWhere returns the counter value of the data point carrying key=value.
func sumWhere(t *testing.T, rm metricdata.ResourceMetrics, name, key, value string) int64 {
	t.Helper()
	met := findMetric(rm, name)
	if met == nil {
		t.Fatalf("metric %q not found", name)
	}
	sum, ok := met.Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("metric %q is not a sum", name)
	}
	var total int64
	for _, dp := range sum.DataPoints {
		if v, ok := dp.Attributes.Value(attribute.Key(key)); ok && v.AsString() == value {
			total += dp.Value
		}
	}
	return total
}

func TestRecordValidation(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.RecordValidation(ctx, true, SourceExact)
	m.RecordValidation(ctx, true, SourceLocal)
	m.RecordValidation(ctx, false, SourceFallback)

	rm := collect(t, reader)
	if got := sumWhere(t, rm, "lexicheck.validations", "outcome", "accepted"); got != 2 {
		t.Errorf("accepted = %d, want 2", got)
	}
	if got := sumWhere(t, rm, "lexicheck.validations", "source", SourceFallback); got != 1 {
		t.Errorf("fallback = %d, want 1", got)
	}
}

func TestRecordCounters(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.RecordLocalStage(ctx, "typo")
	m.RecordLocalStage(ctx, "typo")
	m.RecordRemoteError(ctx, ErrorRateLimited)
	m.RecordQuotaDenied(ctx, "validation")

	rm := collect(t, reader)
	if got := sumWhere(t, rm, "lexicheck.local.stage", "stage", "typo"); got != 2 {
		t.Errorf("typo stage = %d, want 2", got)
	}
	if got := sumWhere(t, rm, "lexicheck.remote.errors", "kind", ErrorRateLimited); got != 1 {
		t.Errorf("rate limited = %d, want 1", got)
	}
	if got := sumWhere(t, rm, "lexicheck.quota.denied", "usage_type", "validation"); got != 1 {
		t.Errorf("quota denied = %d, want 1", got)
	}
}

func TestRemoteDuration(t *testing.T) {
	m, reader := newTestMetrics(t)
	m.RecordRemoteDuration(context.Background(), 300*time.Millisecond)

	met := findMetric(collect(t, reader), "lexicheck.remote.duration")
	if met == nil {
		t.Fatal("metric not found")
	}
	hist, ok := met.Data.(metricdata.Histogram[float64])
	if !ok {
		t.Fatal("metric is not a histogram")
	}
	if len(hist.DataPoints) != 1 || hist.DataPoints[0].Count != 1 {
		t.Errorf("data points = %+v, want one sample", hist.DataPoints)
	}
}

func TestMiddleware_RecordsRoute(t *testing.T) {
	m, reader := newTestMetrics(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/things/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	h := Middleware(m, logger)(mux)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/things/42", nil))
	if rr.Code != http.StatusTeapot {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusTeapot)
	}

	met := findMetric(collect(t, reader), "lexicheck.http.request.duration")
	if met == nil {
		t.Fatal("metric not found")
	}
	hist := met.Data.(metricdata.Histogram[float64])
	if len(hist.DataPoints) != 1 {
		t.Fatalf("data points = %d, want 1", len(hist.DataPoints))
	}
	route, _ := hist.DataPoints[0].Attributes.Value("route")
	if route.AsString() != "GET /v1/things/{id}" {
		t.Errorf("route = %q, want the mux pattern", route.AsString())
	}
}

func TestMiddleware_KeepsFlusher(t *testing.T) {
	m, _ := newTestMetrics(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	var flushable, unwrapped bool
	h := Middleware(m, logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f, ok := w.(http.Flusher)
		flushable = ok
		if ok {
			f.Flush()
		}
		unwrapped = http.NewResponseController(w).Flush() == nil
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/events", nil))
	if !flushable {
		t.Error("wrapped writer does not implement http.Flusher")
	}
	if !unwrapped {
		t.Error("ResponseController cannot flush through the wrapper")
	}
	if !rr.Flushed {
		t.Error("flush not forwarded to the underlying writer")
	}
}

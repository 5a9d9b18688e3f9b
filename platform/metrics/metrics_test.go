package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
)

func TestObserveGeocodeQuery(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := New(reg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	c.ObserveGeocodeQuery("specific", "hit", 150*time.Millisecond)
	c.ObserveGeocodeQuery("specific", "empty", 50*time.Millisecond)
	c.ObserveResolution("specific")

	if got := testutil.ToFloat64(c.GeocodeQueries.WithLabelValues("specific", "hit")); got != 1 {
		t.Fatalf("geocode_queries_total{hit} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.GeocodeResolutions.WithLabelValues("specific")); got != 1 {
		t.Fatalf("geocode_resolutions_total = %v, want 1", got)
	}
	if count := histogramSampleCount(t, reg, "geocode_query_duration_seconds"); count != 2 {
		t.Fatalf("geocode_query_duration_seconds sample_count = %d, want 2", count)
	}
}

func TestNewReusesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := New(reg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	second, err := New(reg)
	if err != nil {
		t.Fatalf("second New: %v", err)
	}
	if first.GeocodeQueries != second.GeocodeQueries {
		t.Fatal("expected the existing counter vec to be reused")
	}
}

func TestNilCollectorIsNoop(t *testing.T) {
	var c *Collector
	c.ObserveGeocodeQuery("broad", "error", time.Second)
	c.ObserveResolution("exhausted")
	c.ObserveThrottleWait(time.Second)
	c.ObservePhoneFallback("AQ")
}

func TestMiddlewareAndHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	reg := prometheus.NewRegistry()
	c, err := New(reg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	engine := gin.New()
	engine.Use(c.Middleware())
	engine.GET("/api/generate", func(ctx *gin.Context) { ctx.Status(http.StatusOK) })
	engine.GET("/metrics", gin.WrapH(c.Handler()))

	engine.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/generate?country=US", nil))

	if got := testutil.ToFloat64(c.HTTPRequests.WithLabelValues("GET", "/api/generate", "200")); got != 1 {
		t.Fatalf("http_requests_total = %v, want 1", got)
	}

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if !strings.Contains(rec.Body.String(), "http_requests_total") {
		t.Fatalf("expected exposition to include http_requests_total, got:\n%s", rec.Body.String())
	}
}

func histogramSampleCount(t *testing.T, reg *prometheus.Registry, name string) uint64 {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	var total uint64
	for _, mf := range families {
		if mf.GetName() != name || mf.GetType() != dto.MetricType_HISTOGRAM {
			continue
		}
		for _, m := range mf.GetMetric() {
			total += m.GetHistogram().GetSampleCount()
		}
	}
	return total
}

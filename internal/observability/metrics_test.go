package observability

import (
	"bytes"
	"database/sql"
	"strings"
	"testing"
	"time"

	"github.com/yungbote/greenscape-backend/internal/pkg/pointers"
)

func TestNewMetricsDisabledIsNilSafe(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: false})
	if m != nil {
		t.Fatalf("expected nil metrics when disabled")
	}
	m.ObserveAPI("GET", "/x", 200, time.Millisecond)
	m.ObserveRecommendation(10, 2, time.Millisecond, true)
	m.IncFeedback(nil)
	m.IncCatalogCache("hit")
	m.AddCatalogImport(1, 0)
	m.APIInflightAdd(1)
	if err := m.WritePrometheus(&bytes.Buffer{}); err != nil {
		t.Fatalf("WritePrometheus on nil: %v", err)
	}
}

func TestMetricsExposition(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true})
	m.ObserveAPI("POST", "/api/recommendations", 200, 30*time.Millisecond)
	m.ObserveAPI("POST", "/api/recommendations", 200, 20*time.Millisecond)
	m.ObserveRecommendation(120, 0, 5*time.Millisecond, false)
	m.IncFeedback(pointers.Int(4))
	m.IncCatalogCache("miss")
	m.recordDBStats(sql.DBStats{OpenConnections: 3, InUse: 1})

	if got := m.apiRequests.Value("POST", "/api/recommendations", "200"); got != 2 {
		t.Fatalf("api requests: got %v", got)
	}
	if got := m.apiLatency.Count("POST", "/api/recommendations"); got != 2 {
		t.Fatalf("api latency count: got %d", got)
	}
	if got := m.recommendations.Value("empty"); got != 1 {
		t.Fatalf("recommendations empty: got %v", got)
	}
	if got := m.requestLogFailure.Value(); got != 1 {
		t.Fatalf("log failures: got %v", got)
	}
	if got := m.dbStats.Value("open_connections"); got != 3 {
		t.Fatalf("db stats: got %v", got)
	}

	var buf bytes.Buffer
	if err := m.WritePrometheus(&buf); err != nil {
		t.Fatalf("WritePrometheus: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"# TYPE gs_api_requests_total counter",
		`gs_api_requests_total{method="POST",route="/api/recommendations",status="200"} 2`,
		`gs_api_request_duration_seconds_bucket{method="POST",route="/api/recommendations",le="+Inf"} 2`,
		`gs_feedback_total{rating="4"} 1`,
		`gs_catalog_cache_total{result="miss"} 1`,
		`gs_recommendation_plants_evaluated_bucket{le="250"} 1`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("exposition missing %q:\n%s", want, out)
		}
	}
}

func TestLabelHelpers(t *testing.T) {
	if got := labelString([]string{"a", "b"}, []string{`x"y`}); got != `{a="x\"y",b="unknown"}` {
		t.Fatalf("labelString: %s", got)
	}
	if got := withLe("", "0.5"); got != `{le="0.5"}` {
		t.Fatalf("withLe empty: %s", got)
	}
	if got := withLe(`{a="1"}`, "+Inf"); got != `{a="1",le="+Inf"}` {
		t.Fatalf("withLe: %s", got)
	}
}

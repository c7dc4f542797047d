package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
)

const testCatalog = `
plants:
  - name: Echinacea purpurea
    common_name: Purple Coneflower
    category: Perennial
    sun_requirements: Full Sun
    water_needs: Low
    hardiness_zone: "3-9"
    native: true
    deer_resistant: true
  - name: Hosta plantaginea
    common_name: August Lily
    category: Perennial
    sun_requirements: Full Shade
    water_needs: Medium
    hardiness_zone: "3-9"
  - name: Broken Range
    height_min: 30
    height_max: 10
`

func testConfig(t *testing.T) *Config {
	t.Helper()
	cfg := &Config{Version: "test"}
	cfg.Server.LogMode = "test"
	cfg.Server.BindAddr = "127.0.0.1"
	cfg.Server.Port = "0"
	cfg.Database.Driver = "sqlite"
	cfg.Database.SQLitePath = filepath.Join(t.TempDir(), "greenscape.db")
	cfg.Recommend = RecommendConfig{
		DefaultMaxResults: 10,
		MaxResultsCap:     100,
		DefaultMinScore:   0.3,
		HistoryLimitCap:   100,
		AdjacentScore:     0.5,
		UnknownScore:      0.5,
	}
	cfg.Metrics.Enabled = true
	cfg.Metrics.ScrapeIntervalSeconds = 10
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	return cfg
}

func TestLoadCatalogDryRunWritesNothing(t *testing.T) {
	cfg := testConfig(t)
	summary, err := LoadCatalog(context.Background(), cfg, strings.NewReader(testCatalog), true)
	if err != nil {
		t.Fatalf("LoadCatalog: %v", err)
	}
	if summary.Received != 3 || summary.Upserted != 0 || len(summary.Rejected) != 1 {
		t.Fatalf("unexpected dry-run summary: %+v", summary)
	}
	if summary.Rejected[0].Name != "Broken Range" {
		t.Fatalf("expected Broken Range to be rejected, got %+v", summary.Rejected)
	}
}

func TestAppServesImportedCatalog(t *testing.T) {
	cfg := testConfig(t)
	summary, err := LoadCatalog(context.Background(), cfg, strings.NewReader(testCatalog), false)
	if err != nil {
		t.Fatalf("LoadCatalog: %v", err)
	}
	if summary.Upserted != 2 || len(summary.Rejected) != 1 {
		t.Fatalf("unexpected import summary: %+v", summary)
	}

	application, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer application.Close()

	w := httptest.NewRecorder()
	application.Router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readycheck", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("readycheck: status=%d body=%s", w.Code, w.Body.String())
	}

	body := `{"criteria":{"sun_exposure":"Full Sun","deer_resistant_required":true},"min_score":0}`
	req := httptest.NewRequest(http.MethodPost, "/api/recommendations", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Session-Id", "app-test")
	w = httptest.NewRecorder()
	application.Router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("recommend: status=%d body=%s", w.Code, w.Body.String())
	}
	var res struct {
		Recommendations []struct {
			Plant struct {
				Name string `json:"name"`
			} `json:"plant"`
		} `json:"recommendations"`
		RequestID       *uint `json:"request_id"`
		PlantsEvaluated int   `json:"plants_evaluated"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if res.PlantsEvaluated != 2 || len(res.Recommendations) != 1 || res.Recommendations[0].Plant.Name != "Echinacea purpurea" {
		t.Fatalf("unexpected recommendations: %s", w.Body.String())
	}
	if res.RequestID == nil {
		t.Fatalf("expected the request to be logged")
	}

	w = httptest.NewRecorder()
	application.Router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "gs_recommendations_total") {
		t.Fatalf("metrics: status=%d body=%s", w.Code, w.Body.String())
	}
}

func TestNewEngineAppliesWeightOverrides(t *testing.T) {
	cfg := RecommendConfig{AdjacentScore: 0.5, UnknownScore: 0.5, Weights: map[string]float64{"sun_exposure": 0}}
	if newEngine(cfg) == nil {
		t.Fatalf("expected an engine")
	}
}

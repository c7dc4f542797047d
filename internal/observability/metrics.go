package observability

import (
	"context"
	"database/sql"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/greenscape-backend/internal/platform/logger"
)

type MetricsConfig struct {
	Enabled bool
	// Addr serves /metrics on a dedicated listener. Empty mounts it on the API router only.
	Addr           string
	ScrapeInterval time.Duration
}

type Metrics struct {
	apiRequests *CounterVec
	apiLatency  *HistogramVec
	apiInflight *GaugeVec

	recommendations   *CounterVec
	recommendLatency  *HistogramVec
	plantsEvaluated   *HistogramVec
	resultsReturned   *HistogramVec
	requestLogFailure *CounterVec
	feedback          *CounterVec
	catalogCache      *CounterVec
	catalogImports    *CounterVec

	dbStats *GaugeVec
	redis   *GaugeVec

	scrapeInterval time.Duration
	all            []collector
}

// NewMetrics returns nil when metrics are disabled; every method is nil-safe.
func NewMetrics(cfg MetricsConfig) *Metrics {
	if !cfg.Enabled {
		return nil
	}
	interval := cfg.ScrapeInterval
	if interval <= 0 {
		interval = 10 * time.Second
	}
	m := &Metrics{
		apiRequests: NewCounterVec("gs_api_requests_total", "Total API requests by method/route/status.", []string{"method", "route", "status"}),
		apiLatency: NewHistogramVec(
			"gs_api_request_duration_seconds",
			"API request latency in seconds by method/route.",
			[]string{"method", "route"},
			[]float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		),
		apiInflight:       NewGaugeVec("gs_api_inflight_requests", "In-flight API requests.", nil),
		recommendations:   NewCounterVec("gs_recommendations_total", "Recommendation runs by outcome.", []string{"outcome"}),
		recommendLatency:  NewHistogramVec("gs_recommendation_duration_seconds", "Time spent scoring the catalog.", nil, []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1}),
		plantsEvaluated:   NewHistogramVec("gs_recommendation_plants_evaluated", "Catalog size per recommendation run.", nil, []float64{10, 50, 100, 250, 500, 1000, 5000}),
		resultsReturned:   NewHistogramVec("gs_recommendation_results", "Plants returned per recommendation run.", nil, []float64{0, 1, 3, 5, 10, 20, 50}),
		requestLogFailure: NewCounterVec("gs_recommendation_log_failures_total", "Recommendation runs whose log write failed.", nil),
		feedback:          NewCounterVec("gs_feedback_total", "Feedback submissions by rating.", []string{"rating"}),
		catalogCache:      NewCounterVec("gs_catalog_cache_total", "Catalog cache lookups by result.", []string{"result"}),
		catalogImports:    NewCounterVec("gs_catalog_import_plants_total", "Plants processed by catalog imports.", []string{"status"}),
		dbStats:           NewGaugeVec("gs_db_pool", "database/sql pool statistics.", []string{"stat"}),
		redis:             NewGaugeVec("gs_redis", "Redis reachability and ping latency.", []string{"stat"}),
		scrapeInterval:    interval,
	}
	m.all = []collector{
		m.apiRequests, m.apiLatency, m.apiInflight,
		m.recommendations, m.recommendLatency, m.plantsEvaluated, m.resultsReturned,
		m.requestLogFailure, m.feedback, m.catalogCache, m.catalogImports,
		m.dbStats, m.redis,
	}
	return m
}

func (m *Metrics) StartServer(ctx context.Context, log *logger.Logger, addr string) {
	if m == nil {
		return
	}
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           http.HandlerFunc(m.WriteHTTP),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_ = srv.Shutdown(shutdownCtx)
		cancel()
	}()
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			if log != nil {
				log.Error("metrics server failed", "error", err, "addr", addr)
			}
		}
	}()
}

func (m *Metrics) WriteHTTP(w http.ResponseWriter, r *http.Request) {
	if m == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	_ = m.WritePrometheus(w)
}

func (m *Metrics) WritePrometheus(w io.Writer) error {
	if m == nil {
		return nil
	}
	for _, c := range m.all {
		if err := c.WritePrometheus(w); err != nil {
			return err
		}
	}
	return nil
}

func (m *Metrics) ObserveAPI(method, route string, status int, dur time.Duration) {
	if m == nil {
		return
	}
	if method == "" {
		method = "UNKNOWN"
	}
	if route == "" {
		route = "unknown"
	}
	m.apiRequests.Inc(method, route, strconv.Itoa(status))
	m.apiLatency.Observe(dur.Seconds(), method, route)
}

func (m *Metrics) APIInflightAdd(delta float64) {
	if m == nil {
		return
	}
	m.apiInflight.Add(delta)
}

// ObserveRecommendation records one scoring run. outcome is "ok" or "empty".
func (m *Metrics) ObserveRecommendation(evaluated, returned int, dur time.Duration, logged bool) {
	if m == nil {
		return
	}
	outcome := "ok"
	if returned == 0 {
		outcome = "empty"
	}
	m.recommendations.Inc(outcome)
	m.recommendLatency.Observe(dur.Seconds())
	m.plantsEvaluated.Observe(float64(evaluated))
	m.resultsReturned.Observe(float64(returned))
	if !logged {
		m.requestLogFailure.Inc()
	}
}

func (m *Metrics) IncFeedback(rating *int) {
	if m == nil {
		return
	}
	label := "none"
	if rating != nil {
		label = strconv.Itoa(*rating)
	}
	m.feedback.Inc(label)
}

// IncCatalogCache records "hit", "miss", "error" or "disabled".
func (m *Metrics) IncCatalogCache(result string) {
	if m == nil {
		return
	}
	m.catalogCache.Inc(result)
}

func (m *Metrics) AddCatalogImport(upserted, rejected int) {
	if m == nil {
		return
	}
	m.catalogImports.Add(float64(upserted), "upserted")
	m.catalogImports.Add(float64(rejected), "rejected")
}

// StartDBCollector samples pool statistics until ctx is done.
func (m *Metrics) StartDBCollector(ctx context.Context, log *logger.Logger, db *sql.DB) {
	if m == nil || db == nil {
		return
	}
	go m.every(ctx, func() {
		m.recordDBStats(db.Stats())
	})
}

func (m *Metrics) recordDBStats(stats sql.DBStats) {
	m.dbStats.Set(float64(stats.OpenConnections), "open_connections")
	m.dbStats.Set(float64(stats.InUse), "in_use")
	m.dbStats.Set(float64(stats.Idle), "idle")
	m.dbStats.Set(float64(stats.WaitCount), "wait_count")
	m.dbStats.Set(stats.WaitDuration.Seconds(), "wait_duration_seconds")
	m.dbStats.Set(float64(stats.MaxOpenConnections), "max_open_connections")
}

// StartRedisCollector pings the shared client; a nil client is a no-op.
func (m *Metrics) StartRedisCollector(ctx context.Context, log *logger.Logger, rdb *goredis.Client) {
	if m == nil || rdb == nil {
		return
	}
	go m.every(ctx, func() {
		start := time.Now()
		if err := rdb.Ping(ctx).Err(); err != nil {
			m.redis.Set(0, "up")
			if log != nil && ctx.Err() == nil {
				log.Warn("metrics: redis ping failed", "error", err)
			}
			return
		}
		m.redis.Set(1, "up")
		m.redis.Set(time.Since(start).Seconds(), "ping_seconds")
	})
}

func (m *Metrics) every(ctx context.Context, fn func()) {
	ticker := time.NewTicker(m.scrapeInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fn()
		}
	}
}

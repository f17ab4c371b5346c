package observability

import (
	"context"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/yungbote/transfermarket-backend/internal/platform/envutil"
	"github.com/yungbote/transfermarket-backend/internal/platform/logger"
)

type Metrics struct {
	apiRequests *CounterVec
	apiLatency  *HistogramVec
	apiInflight *Gauge
	apiReqTotal *Counter
	apiReqError *Counter

	aggregateOps       *HistogramVec
	aggregateConflicts *CounterVec
	aggregateRetries   *CounterVec

	purchases       *CounterVec
	purchaseLatency *HistogramVec
	listings        *CounterVec
	valueGrowth     *CounterVec
	eventsPublished *CounterVec
	feedClients     *Gauge

	pgStats   *GaugeVec
	redisUp   *Gauge
	redisPing *Gauge
}

// Counter is a CounterVec without labels.
type Counter = CounterVec

func NewCounter(name, help string) *Counter {
	return NewCounterVec(name, help, nil)
}

var (
	initOnce sync.Once
	instance *Metrics
)

func Enabled() bool {
	return envutil.Bool("METRICS_ENABLED", false)
}

func Current() *Metrics {
	return instance
}

func scrapeInterval() time.Duration {
	return envutil.Seconds("METRICS_SCRAPE_INTERVAL_SECONDS", 10)
}

// Init returns the process metrics, or nil when METRICS_ENABLED is off.
// Every method is safe to call on a nil *Metrics.
func Init(log *logger.Logger) *Metrics {
	if !Enabled() {
		return nil
	}
	initOnce.Do(func() {
		instance = newMetrics()
		if log != nil {
			log.Info("Observability metrics enabled")
		}
	})
	return instance
}

func newMetrics() *Metrics {
	return &Metrics{
		apiRequests: NewCounterVec("tm_api_requests_total", "Total API requests by method/route/status.", []string{"method", "route", "status"}),
		apiLatency: NewHistogramVec(
			"tm_api_request_duration_seconds",
			"API request latency in seconds by method/route/status.",
			[]string{"method", "route", "status"},
			[]float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		),
		apiInflight: NewGauge("tm_api_inflight_requests", "In-flight API requests."),
		apiReqTotal: NewCounter("tm_api_requests_total_all", "Total API requests (all)."),
		apiReqError: NewCounter("tm_api_requests_error_total", "Total API requests with 5xx status."),

		aggregateOps: NewHistogramVec(
			"tm_aggregate_operation_duration_seconds",
			"Aggregate write duration by operation/status.",
			[]string{"op", "status"},
			[]float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 5},
		),
		aggregateConflicts: NewCounterVec("tm_aggregate_conflicts_total", "Aggregate writes rejected by a concurrency guard.", []string{"op"}),
		aggregateRetries:   NewCounterVec("tm_aggregate_retries_total", "Aggregate writes failed with a retryable error.", []string{"op"}),

		purchases: NewCounterVec("tm_purchases_total", "Purchase attempts by outcome code.", []string{"outcome"}),
		purchaseLatency: NewHistogramVec(
			"tm_purchase_duration_seconds",
			"Purchase transaction duration by outcome code.",
			[]string{"outcome"},
			[]float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		),
		listings:        NewCounterVec("tm_listing_operations_total", "Listing operations by action/outcome.", []string{"action", "outcome"}),
		valueGrowth:     NewCounterVec("tm_value_growth_total", "Player value growth runs by runner/status.", []string{"runner", "status"}),
		eventsPublished: NewCounterVec("tm_events_published_total", "Committed events published to the feed by status.", []string{"status"}),
		feedClients:     NewGauge("tm_feed_clients", "Connected websocket feed clients."),

		pgStats:   NewGaugeVec("tm_postgres_pool", "Postgres connection pool stats.", []string{"stat"}),
		redisUp:   NewGauge("tm_redis_up", "Redis reachable (1) or not (0)."),
		redisPing: NewGauge("tm_redis_ping_seconds", "Redis ping latency in seconds."),
	}
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

type promWriter interface {
	WritePrometheus(w io.Writer) error
}

func (m *Metrics) WritePrometheus(w io.Writer) error {
	if m == nil {
		return nil
	}
	for _, c := range []promWriter{
		m.apiRequests, m.apiLatency, m.apiInflight, m.apiReqTotal, m.apiReqError,
		m.aggregateOps, m.aggregateConflicts, m.aggregateRetries,
		m.purchases, m.purchaseLatency, m.listings, m.valueGrowth, m.eventsPublished, m.feedClients,
		m.pgStats, m.redisUp, m.redisPing,
	} {
		if err := c.WritePrometheus(w); err != nil {
			return err
		}
	}
	return nil
}

func (m *Metrics) ObserveAPI(method, route, status string, dur time.Duration) {
	if m == nil {
		return
	}
	if method == "" {
		method = "UNKNOWN"
	}
	if route == "" {
		route = "unknown"
	}
	if status == "" {
		status = "0"
	}
	m.apiRequests.Inc(method, route, status)
	m.apiLatency.Observe(dur.Seconds(), method, route, status)
	m.apiReqTotal.Inc()
	if isServerErrorStatus(status) {
		m.apiReqError.Inc()
	}
}

func (m *Metrics) ApiInflightInc() {
	if m == nil {
		return
	}
	m.apiInflight.Inc()
}

func (m *Metrics) ApiInflightDec() {
	if m == nil {
		return
	}
	m.apiInflight.Dec()
}

func (m *Metrics) ObserveAggregateOperation(op, status string, dur time.Duration) {
	if m == nil {
		return
	}
	if op == "" {
		op = "unknown"
	}
	if status == "" {
		status = "unknown"
	}
	m.aggregateOps.Observe(dur.Seconds(), op, status)
}

func (m *Metrics) IncAggregateConflict(op string) {
	if m == nil {
		return
	}
	m.aggregateConflicts.Inc(op)
}

func (m *Metrics) IncAggregateRetry(op string) {
	if m == nil {
		return
	}
	m.aggregateRetries.Inc(op)
}

// ObservePurchase records one purchase attempt. outcome is "success" or an error code.
func (m *Metrics) ObservePurchase(outcome string, dur time.Duration) {
	if m == nil {
		return
	}
	if outcome == "" {
		outcome = "unknown"
	}
	m.purchases.Inc(outcome)
	m.purchaseLatency.Observe(dur.Seconds(), outcome)
}

func (m *Metrics) IncListing(action, outcome string) {
	if m == nil {
		return
	}
	m.listings.Inc(action, outcome)
}

func (m *Metrics) IncValueGrowth(runner, status string) {
	if m == nil {
		return
	}
	m.valueGrowth.Inc(runner, status)
}

func (m *Metrics) IncEventsPublished(status string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.eventsPublished.Add(float64(n), status)
}

func (m *Metrics) SetFeedClients(n int) {
	if m == nil {
		return
	}
	m.feedClients.Set(float64(n))
}

func (m *Metrics) StartPostgresCollector(ctx context.Context, log *logger.Logger, db *gorm.DB) {
	if m == nil || db == nil {
		return
	}
	interval := scrapeInterval()
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				sqlDB, err := db.DB()
				if err != nil {
					if log != nil {
						log.Warn("metrics: postgres stats unavailable", "error", err)
					}
					continue
				}
				stats := sqlDB.Stats()
				m.pgStats.Set(float64(stats.OpenConnections), "open_connections")
				m.pgStats.Set(float64(stats.InUse), "in_use")
				m.pgStats.Set(float64(stats.Idle), "idle")
				m.pgStats.Set(float64(stats.WaitCount), "wait_count")
				m.pgStats.Set(stats.WaitDuration.Seconds(), "wait_duration_seconds")
				m.pgStats.Set(float64(stats.MaxOpenConnections), "max_open_connections")
			}
		}
	}()
}

// StartRedisCollector pings rdb on the scrape interval. The caller owns rdb.
func (m *Metrics) StartRedisCollector(ctx context.Context, log *logger.Logger, rdb *redis.Client) {
	if m == nil || rdb == nil {
		return
	}
	interval := scrapeInterval()
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				start := time.Now()
				if err := rdb.Ping(ctx).Err(); err != nil {
					m.redisUp.Set(0)
					if log != nil {
						log.Warn("metrics: redis ping failed", "error", err)
					}
					continue
				}
				m.redisUp.Set(1)
				m.redisPing.Set(time.Since(start).Seconds())
			}
		}
	}()
}

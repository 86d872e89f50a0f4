// Package metrics owns the Prometheus collectors exposed on /metrics.
package metrics

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry *prometheus.Registry

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	httpInflight        *prometheus.GaugeVec

	stockRejections  prometheus.Counter
	priceAdjustments *prometheus.CounterVec
}

// New registers every collector on reg. A nil registry gets a fresh one so
// tests never share state through the global default.
func New(reg *prometheus.Registry) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	m := &Metrics{
		registry: reg,
		httpRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests processed",
		}, []string{"method", "path", "status"}),
		httpRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"}),
		httpInflight: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "http_inflight_requests",
			Help: "In-flight requests by method",
		}, []string{"method"}),
		stockRejections: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "inventario_stock_decrement_rejections_total",
			Help: "Stock decrements rejected for insufficient stock",
		}),
		priceAdjustments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "inventario_price_adjustments_total",
			Help: "Per-product price adjustments by result",
		}, []string{"result"}),
	}

	cs := []prometheus.Collector{
		m.httpRequestsTotal,
		m.httpRequestDuration,
		m.httpInflight,
		m.stockRejections,
		m.priceAdjustments,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	}
	for _, c := range cs {
		if err := registerCollector(reg, c); err != nil {
			return nil, err
		}
	}

	return m, nil
}

// WatchDB exposes the connection pool statistics of db.
func (m *Metrics) WatchDB(db *sql.DB) error {
	return registerCollector(m.registry, newDBStatsCollector(db))
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RequestStarted runs before routing, so the gauge is keyed by method only.
func (m *Metrics) RequestStarted(method string) {
	m.httpInflight.WithLabelValues(method).Inc()
}

func (m *Metrics) RequestFinished(method, path string, status int, elapsed time.Duration) {
	m.httpInflight.WithLabelValues(method).Dec()
	m.httpRequestDuration.WithLabelValues(method, path).Observe(elapsed.Seconds())
	m.httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
}

func (m *Metrics) StockRejected() {
	m.stockRejections.Inc()
}

func (m *Metrics) PriceAdjusted(result string) {
	m.priceAdjustments.WithLabelValues(result).Inc()
}

// registerCollector ignores collectors that are already registered.
func registerCollector(reg prometheus.Registerer, c prometheus.Collector) error {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			return nil
		}
		return err
	}
	return nil
}

type dbStatsCollector struct {
	db *sql.DB

	openDesc     *prometheus.Desc
	inUseDesc    *prometheus.Desc
	idleDesc     *prometheus.Desc
	waitDesc     *prometheus.Desc
	waitTimeDesc *prometheus.Desc
}

func newDBStatsCollector(db *sql.DB) *dbStatsCollector {
	return &dbStatsCollector{
		db:           db,
		openDesc:     prometheus.NewDesc("db_open_connections", "Established connections, in use and idle", nil, nil),
		inUseDesc:    prometheus.NewDesc("db_in_use_connections", "Connections currently in use", nil, nil),
		idleDesc:     prometheus.NewDesc("db_idle_connections", "Idle connections", nil, nil),
		waitDesc:     prometheus.NewDesc("db_wait_count_total", "Connections waited for", nil, nil),
		waitTimeDesc: prometheus.NewDesc("db_wait_duration_seconds_total", "Time blocked waiting for a connection", nil, nil),
	}
}

func (c *dbStatsCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.openDesc
	ch <- c.inUseDesc
	ch <- c.idleDesc
	ch <- c.waitDesc
	ch <- c.waitTimeDesc
}

func (c *dbStatsCollector) Collect(ch chan<- prometheus.Metric) {
	s := c.db.Stats()
	ch <- prometheus.MustNewConstMetric(c.openDesc, prometheus.GaugeValue, float64(s.OpenConnections))
	ch <- prometheus.MustNewConstMetric(c.inUseDesc, prometheus.GaugeValue, float64(s.InUse))
	ch <- prometheus.MustNewConstMetric(c.idleDesc, prometheus.GaugeValue, float64(s.Idle))
	ch <- prometheus.MustNewConstMetric(c.waitDesc, prometheus.CounterValue, float64(s.WaitCount))
	ch <- prometheus.MustNewConstMetric(c.waitTimeDesc, prometheus.CounterValue, s.WaitDuration.Seconds())
}

// Package metrics はPrometheusメトリクスと /metrics ハンドラーを提供します。
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "screenshot"

// Metrics は専用の Registry に登録されたコレクターを保持します。
// グローバルな DefaultRegisterer を使わないため、テストごとに作り直せます。
type Metrics struct {
	registry       *prometheus.Registry
	authOutcomes   *prometheus.CounterVec
	requestsTotal  *prometheus.CounterVec
	requestLatency *prometheus.HistogramVec
}

// New はコレクターを生成して登録します。
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		authOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "auth",
			Name:      "outcomes_total",
			Help:      "Authentication outcomes by flow and result.",
		}, []string{"flow", "result"}),
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Number of HTTP requests per route.",
		}, []string{"code", "method", "route"}),
		requestLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
	m.registry.MustRegister(
		m.authOutcomes,
		m.requestsTotal,
		m.requestLatency,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveAuth は認証フローの結果を1件記録します。
func (m *Metrics) ObserveAuth(flow, result string) {
	m.authOutcomes.WithLabelValues(flow, result).Inc()
}

// Instrumentation はリクエスト数とレイテンシを記録するミドルウェアです。
// ルート未登録のパスは "unmatched" にまとめます。
func (m *Metrics) Instrumentation() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path == "/metrics" {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		code := strconv.Itoa(c.Writer.Status())
		m.requestsTotal.WithLabelValues(code, c.Request.Method, route).Inc()
		m.requestLatency.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// Handler は /metrics 用のハンドラーを返します。
func (m *Metrics) Handler() gin.HandlerFunc {
	h := promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
	return gin.WrapH(h)
}

// Registry はテストや追加コレクター用に Registry を返します。
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

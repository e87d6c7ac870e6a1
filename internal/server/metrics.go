// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/pdiddy/article-library/internal/library"
)

// metrics holds the server's Prometheus collectors. Each Server gets its
// own registry so multiple instances can coexist in one process.
type metrics struct {
	registry *prometheus.Registry

	requests   *prometheus.CounterVec
	syncPasses prometheus.Counter
	syncOps    *prometheus.CounterVec
}

func newMetrics(lib *library.Library) *metrics {
	m := &metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "article_library_requests_total",
				Help: "HTTP requests served, by method and status.",
			},
			[]string{"method", "status"},
		),
		syncPasses: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "article_library_sync_passes_total",
				Help: "Completed synchronization passes.",
			},
		),
		syncOps: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "article_library_sync_operations_total",
				Help: "Pending operations processed during sync, by outcome.",
			},
			[]string{"outcome"},
		),
	}

	m.registry.MustRegister(m.requests, m.syncPasses, m.syncOps)
	m.registry.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "article_library_cached_articles",
			Help: "Articles currently held in the local cache.",
		},
		func() float64 { return float64(lib.Status().Cached) },
	))
	m.registry.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "article_library_pending_operations",
			Help: "Mutations recorded offline and awaiting replay.",
		},
		func() float64 { return float64(lib.Status().Pending) },
	))
	m.registry.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "article_library_offline",
			Help: "1 while the client operates in offline mode.",
		},
		func() float64 {
			if lib.Status().Offline {
				return 1
			}
			return 0
		},
	))
	return m
}

// count is the request-counting middleware.
func (m *metrics) count(c *gin.Context) {
	c.Next()
	m.requests.WithLabelValues(c.Request.Method, statusLabel(c.Writer.Status())).Inc()
}

func statusLabel(code int) string {
	switch {
	case code < 300:
		return "2xx"
	case code < 400:
		return "3xx"
	case code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}

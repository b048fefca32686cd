// Package metrics holds the Prometheus collectors exposed on /metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RecordsWritten counts attendance rows stored, by flow (manual, assisted).
	RecordsWritten = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "attendance",
		Name:      "records_written_total",
		Help:      "Attendance records stored, by flow.",
	}, []string{"flow"})

	// AssistedDuplicates counts assisted marks rejected because the period was already recorded.
	AssistedDuplicates = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "attendance",
		Name:      "assisted_duplicates_total",
		Help:      "Assisted marks rejected as already recorded.",
	})

	// Exports counts report downloads by format.
	Exports = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "attendance",
		Name:      "exports_total",
		Help:      "Attendance reports exported, by format.",
	}, []string{"format"})

	// AdminGrants counts grant and revoke operations by outcome.
	AdminGrants = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "attendance",
		Name:      "admin_grant_operations_total",
		Help:      "Admin grant operations, by operation and outcome.",
	}, []string{"op", "outcome"})

	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "attendance",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by route and status.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
)

// GinMiddleware observes request latency labelled by the matched route template.
func GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		httpDuration.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}

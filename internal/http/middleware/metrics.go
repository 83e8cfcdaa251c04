// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file exposes Prometheus instrumentation for HTTP traffic. Metrics()
// measures request counts, latencies, in-flight concurrency and response
// sizes, labelled by:
//
//   - method: HTTP method verb
//   - path:   the registered Gin route (e.g. /user/2); falls back to the raw
//     URL path when no route matched
//   - status: numeric status code as a string
//
// Failures are answered with status 200, so classified errors get their own
// counter (governance_errors_total) labelled by the matching rule and code.
// Overload rejections are counted per versioned path.
package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	httpReqs = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	// Status is omitted to keep the histogram cardinality low.
	httpLat = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	httpInflight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_inflight",
			Help: "Current number of in-flight HTTP requests.",
		},
	)

	httpRespSize = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "http_response_size_bytes",
			Help: "Size of HTTP responses in bytes.",
			Buckets: []float64{
				64, 128, 256, 512, 1 << 10, 2 << 10, 5 << 10,
				10 << 10, 50 << 10, 100 << 10, 500 << 10, 1 << 20,
			},
		},
		[]string{"method", "path"},
	)

	classifiedErrs = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "governance_errors_total",
			Help: "Request failures by classification rule and error code.",
		},
		[]string{"rule", "code"},
	)

	overloadRejects = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "governance_overload_rejections_total",
			Help: "Requests rejected by overload protection, by versioned path.",
		},
		[]string{"path"},
	)
)

func init() {
	prometheus.MustRegister(httpReqs, httpLat, httpInflight, httpRespSize, classifiedErrs, overloadRejects)
}

// ObserveFailure counts one classified failure.
func ObserveFailure(rule string, code int) {
	classifiedErrs.WithLabelValues(rule, strconv.Itoa(code)).Inc()
}

// Metrics returns a Gin middleware that instruments requests with Prometheus.
//
//	r.Use(middleware.Metrics())
//	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		httpInflight.Inc()
		defer httpInflight.Dec()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		method := c.Request.Method

		httpReqs.WithLabelValues(method, path, strconv.Itoa(c.Writer.Status())).Inc()
		httpLat.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
		// Hijacked connections report -1.
		if size := c.Writer.Size(); size >= 0 {
			httpRespSize.WithLabelValues(method, path).Observe(float64(size))
		}
	}
}

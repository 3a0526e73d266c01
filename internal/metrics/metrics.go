package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "http_requests_total", Help: "Total HTTP requests"},
		[]string{"route", "method", "status"},
	)
	ReqDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Request duration seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)
	InFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{Name: "http_in_flight_requests", Help: "In-flight HTTP requests"},
	)
	RollupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "bootcamp_rollups_total", Help: "Bootcamp aggregate recomputations"},
		[]string{"field", "outcome"},
	)
	MailTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "mail_sent_total", Help: "Outgoing mail attempts"},
		[]string{"outcome"},
	)
)

var registerOnce sync.Once

// MustRegister registers the collectors with the default registry once.
func MustRegister() {
	registerOnce.Do(func() {
		prometheus.MustRegister(RequestsTotal, ReqDuration, InFlight, RollupsTotal, MailTotal)
	})
}

// Middleware records count, latency and in-flight requests per route template.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		InFlight.Inc()
		start := time.Now()
		c.Next()
		InFlight.Dec()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		RequestsTotal.WithLabelValues(route, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
		ReqDuration.WithLabelValues(route, c.Request.Method).Observe(time.Since(start).Seconds())
	}
}

func Handler() http.Handler { return promhttp.Handler() }

func Outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

package metrics_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/tazhibayda/bootcamp-service/internal/metrics"
)

func TestMiddlewareCountsByRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(metrics.Middleware())
	r.GET("/api/v1/bootcamps/:id", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	before := testutil.ToFloat64(metrics.RequestsTotal.WithLabelValues("/api/v1/bootcamps/:id", "GET", "404"))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/bootcamps/abc", nil))
	after := testutil.ToFloat64(metrics.RequestsTotal.WithLabelValues("/api/v1/bootcamps/:id", "GET", "404"))

	assert.Equal(t, before+1, after)
	assert.Equal(t, 0.0, testutil.ToFloat64(metrics.InFlight))
}

func TestMustRegisterIdempotent(t *testing.T) {
	metrics.MustRegister()
	metrics.MustRegister()
}

func TestOutcome(t *testing.T) {
	assert.Equal(t, "ok", metrics.Outcome(nil))
	assert.Equal(t, "error", metrics.Outcome(errors.New("x")))
}

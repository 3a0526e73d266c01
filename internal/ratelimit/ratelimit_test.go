package ratelimit_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tazhibayda/bootcamp-service/internal/apperr"
	"github.com/tazhibayda/bootcamp-service/internal/ratelimit"
)

func TestMemoryCounterFixedWindow(t *testing.T) {
	clk := clock.NewMock()
	m := ratelimit.NewMemory(clk)
	ctx := context.Background()

	for i := int64(1); i <= 3; i++ {
		n, _, err := m.Incr(ctx, "k", time.Minute)
		require.NoError(t, err)
		assert.Equal(t, i, n)
	}
	n, _, _ := m.Incr(ctx, "other", time.Minute)
	assert.Equal(t, int64(1), n, "keys are independent")

	clk.Add(time.Minute)
	n, reset, _ := m.Incr(ctx, "k", time.Minute)
	assert.Equal(t, int64(1), n, "window resets on expiry")
	assert.Equal(t, clk.Now().Add(time.Minute), reset)
}

type failing struct{}

func (failing) Incr(context.Context, string, time.Duration) (int64, time.Time, error) {
	return 0, time.Time{}, errors.New("redis down")
}

func router(ctr ratelimit.Counter, rule ratelimit.Rule) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Next()
		if len(c.Errors) > 0 {
			if ae, ok := apperr.As(c.Errors.Last().Err); ok {
				c.JSON(ae.Status(), gin.H{"success": false, "error": ae.Message})
			}
		}
	})
	r.Use(ratelimit.Middleware(ctr, rule, zap.NewNop()))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func TestMiddlewareRejectsOverLimit(t *testing.T) {
	r := router(ratelimit.NewMemory(clock.NewMock()), ratelimit.Rule{Name: "t", Max: 2, Window: time.Hour})

	codes := []int{}
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		r.ServeHTTP(w, req)
		codes = append(codes, w.Code)
		if i == 2 {
			assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
		}
	}
	assert.Equal(t, []int{200, 200, 429}, codes)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code, "other clients unaffected")
}

func TestMiddlewareFailsOpen(t *testing.T) {
	r := router(failing{}, ratelimit.Rule{Name: "t", Max: 1, Window: time.Hour})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"
)

func newLimitedRouter(cfg RateLimiterConfig) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(NewRateLimiter(cfg).RateLimit())
	r.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})
	return r
}

func doPing(r *gin.Engine, remoteAddr string) int {
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.RemoteAddr = remoteAddr
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w.Code
}

func TestRateLimitAppliesPerClient(t *testing.T) {
	r := newLimitedRouter(RateLimiterConfig{Rate: rate.Limit(0.001), Burst: 1})

	assert.Equal(t, http.StatusOK, doPing(r, "10.0.0.1:4000"))
	assert.Equal(t, http.StatusTooManyRequests, doPing(r, "10.0.0.1:4000"),
		"second request from the same client exceeds its burst")
	assert.Equal(t, http.StatusOK, doPing(r, "10.0.0.2:4000"),
		"a different client has its own bucket")
}

func TestRateLimitAllowsWithinBurst(t *testing.T) {
	r := newLimitedRouter(RateLimiterConfig{Rate: rate.Limit(0.001), Burst: 3})

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, doPing(r, "10.0.0.3:4000"))
	}
	assert.Equal(t, http.StatusTooManyRequests, doPing(r, "10.0.0.3:4000"))
}

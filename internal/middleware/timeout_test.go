package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestTimeoutLetsFastRequestsThrough(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Timeout(TimeoutConfig{Duration: time.Second}))
	r.GET("/fast", func(c *gin.Context) {
		c.String(http.StatusOK, "done")
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/fast", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "done", w.Body.String())
}

func TestTimeoutDiscardsLateHandlerWrites(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Timeout(TimeoutConfig{Duration: 30 * time.Millisecond}))

	release := make(chan struct{})
	wrote := make(chan struct{})
	r.GET("/slow", func(c *gin.Context) {
		<-release
		c.String(http.StatusOK, "late payload")
		close(wrote)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/slow", nil))

	assert.Equal(t, http.StatusGatewayTimeout, w.Code)
	assert.Contains(t, w.Body.String(), "request timeout")

	close(release)
	<-wrote
	assert.NotContains(t, w.Body.String(), "late payload",
		"writes after the deadline reply are discarded")
}

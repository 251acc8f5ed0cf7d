package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// TimeoutConfig represents timeout middleware configuration
type TimeoutConfig struct {
	Duration time.Duration
}

// timeoutWriter drops handler writes that arrive after the deadline reply
// has been sent. A late handler on this service may still be holding a
// candidate password, so its output must never land on a response the
// client already received an answer for.
type timeoutWriter struct {
	gin.ResponseWriter
	mu       sync.Mutex
	timedOut bool
}

func (w *timeoutWriter) WriteHeader(code int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timedOut {
		return
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *timeoutWriter) Write(b []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timedOut {
		return len(b), nil
	}
	return w.ResponseWriter.Write(b)
}

func (w *timeoutWriter) WriteString(s string) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timedOut {
		return len(s), nil
	}
	return w.ResponseWriter.WriteString(s)
}

// expire marks the writer timed out and sends the deadline reply in the
// same critical section, so an in-flight handler write cannot interleave.
func (w *timeoutWriter) expire(body []byte) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.timedOut = true
	w.ResponseWriter.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.ResponseWriter.WriteHeader(http.StatusGatewayTimeout)
	w.ResponseWriter.Write(body) //nolint:errcheck
}

// Timeout aborts requests exceeding the configured duration with 504.
func Timeout(config TimeoutConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), config.Duration)
		defer cancel()

		tw := &timeoutWriter{ResponseWriter: c.Writer}
		c.Writer = tw
		c.Request = c.Request.WithContext(ctx)

		done := make(chan struct{})
		go func() {
			c.Next()
			close(done)
		}()

		select {
		case <-done:
		case <-ctx.Done():
			if ctx.Err() != context.DeadlineExceeded {
				return
			}
			c.Abort()
			body, _ := json.Marshal(ErrorResponse{
				Code:    http.StatusGatewayTimeout,
				Message: "request timeout",
				TraceID: c.GetString(ContextRequestID),
			})
			tw.expire(body)
		}
	}
}

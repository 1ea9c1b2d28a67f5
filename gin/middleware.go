package gin

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/fwojciec/llmfetch"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestIDHeader carries the request id in requests and responses.
const RequestIDHeader = "X-Request-ID"

const requestIDKey = "request_id"

// requestID reuses the caller's request id or generates one.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

// logRequests logs each request after it completes.
func (s *Server) logRequests() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		attrs := []any{
			slog.String("request_id", c.GetString(requestIDKey)),
			slog.Int("status", c.Writer.Status()),
			slog.String("method", c.Request.Method),
			slog.String("path", path),
			slog.String("ip", c.ClientIP()),
			slog.Duration("latency", time.Since(start)),
			slog.Int("body_size", c.Writer.Size()),
		}
		s.Logger.Info("http request", attrs...)

		for _, e := range c.Errors {
			s.Logger.Error("request error",
				slog.String("request_id", c.GetString(requestIDKey)),
				slog.String("error", e.Error()),
			)
		}
	}
}

// recoverPanics turns a handler panic into a 500 response.
func (s *Server) recoverPanics() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				s.Logger.Error("panic in handler",
					slog.String("request_id", c.GetString(requestIDKey)),
					slog.String("panic", fmt.Sprint(r)),
				)
				renderError(c, llmfetch.Errorf(llmfetch.EINTERNAL, "panic: %v", r))
				c.Abort()
			}
		}()
		c.Next()
	}
}

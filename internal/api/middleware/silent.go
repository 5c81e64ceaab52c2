package middleware

import (
	"errors"
	"log/slog"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
)

// SilentLogger logs requests but ignores "broken pipe" errors caused by
// listeners skipping around a stream.
func SilentLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		for _, e := range c.Errors {
			if errors.Is(e.Err, syscall.EPIPE) || errors.Is(e.Err, syscall.ECONNRESET) {
				return
			}
		}

		// Query strings may carry tokens, so only the path is logged
		slog.Info("request",
			"status", c.Writer.Status(),
			"latency", time.Since(start),
			"client", c.ClientIP(),
			"method", c.Request.Method,
			"path", path,
		)
	}
}

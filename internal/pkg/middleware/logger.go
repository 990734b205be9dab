package middleware

import (
	"bytes"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nekogravitycat/car-rental-backend/internal/pkg/logger"
	"go.uber.org/zap"
)

const maxLoggedBody = 64 << 10

// RequestLogger writes one log line per request. Failed requests also carry
// the request body with sensitive fields masked.
func RequestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		var body []byte
		if c.Request.Body != nil && isJSON(c) {
			body, _ = io.ReadAll(io.LimitReader(c.Request.Body, maxLoggedBody))
			c.Request.Body = io.NopCloser(io.MultiReader(bytes.NewReader(body), c.Request.Body))
		}

		c.Next()

		status := c.Writer.Status()
		fields := []zap.Field{
			zap.String("request_id", GetRequestID(c)),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}

		failed := status >= http.StatusInternalServerError || len(c.Errors) > 0
		if failed {
			if redacted := logger.RedactJSON(body); redacted != nil {
				fields = append(fields, zap.Any("body", redacted))
			}
			if len(c.Errors) > 0 {
				fields = append(fields, zap.Strings("errors", c.Errors.Errors()))
			}
		}

		switch {
		case status >= http.StatusInternalServerError:
			log.Error("request failed", fields...)
		case failed || status >= http.StatusBadRequest:
			log.Warn("request rejected", fields...)
		default:
			log.Info("request", fields...)
		}
	}
}

func isJSON(c *gin.Context) bool {
	return c.ContentType() == gin.MIMEJSON
}

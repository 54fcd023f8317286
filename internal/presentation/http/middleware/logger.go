package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/hisab-api/internal/presentation/http/dto/response"
	"github.com/sirupsen/logrus"
)

// LoggerMiddleware creates a structured request logging middleware
func LoggerMiddleware(log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Generate request ID if not present
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set(response.RequestIDKey, requestID)
		c.Header("X-Request-ID", requestID)

		start := time.Now()
		path := c.Request.URL.Path
		if raw := c.Request.URL.RawQuery; raw != "" {
			q := c.Request.URL.Query()
			if q.Has("access_token") {
				q.Set("access_token", "redacted")
				raw = q.Encode()
			}
			path = path + "?" + raw
		}

		c.Next()

		fields := logrus.Fields{
			"request_id": requestID,
			"method":     c.Request.Method,
			"status":     c.Writer.Status(),
			"latency_ms": time.Since(start).Milliseconds(),
			"client_ip":  c.ClientIP(),
			"path":       path,
		}
		if sess := GetSession(c); sess != nil {
			fields["account_id"] = sess.AccountID
		}
		entry := log.WithFields(fields)

		for _, e := range c.Errors {
			entry.WithError(e.Err).Error("request error")
		}
		switch status := c.Writer.Status(); {
		case status >= 500:
			entry.Error("request failed")
		case status >= 400:
			entry.Warn("request rejected")
		default:
			entry.Info("request")
		}
	}
}

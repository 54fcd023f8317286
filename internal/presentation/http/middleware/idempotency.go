package middleware

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/hisab-api/internal/domain/entity"
	"github.com/sangkips/hisab-api/internal/domain/repository"
	"github.com/sangkips/hisab-api/internal/infrastructure/lock"
	"github.com/sangkips/hisab-api/internal/presentation/http/dto/response"
	"github.com/sirupsen/logrus"
)

const (
	// IdempotencyKeyHeader is the HTTP header for idempotency keys
	IdempotencyKeyHeader = "Idempotency-Key"
	// IdempotencyKeyTTL is how long keys are valid
	IdempotencyKeyTTL = 24 * time.Hour
	// IdempotencyLockTTL bounds how long an in-flight key blocks its retries
	IdempotencyLockTTL = time.Minute
	// maxIdempotencyKeyLength matches the key column
	maxIdempotencyKeyLength = 255
)

// IdempotencyConfig holds configuration for the idempotency middleware
type IdempotencyConfig struct {
	Repo repository.IdempotencyRepository
	// Locker serialises requests sharing a key. Defaults to a process-local locker.
	Locker lock.Locker
	Log    logrus.FieldLogger
	// Required rejects requests without a key.
	Required bool
}

// responseWriter wraps gin.ResponseWriter to capture the response body
type responseWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w responseWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// Idempotency replays the stored response for a repeated Idempotency-Key so a
// retried submission is not applied twice. Only successful responses are stored.
func Idempotency(config IdempotencyConfig) gin.HandlerFunc {
	if config.Locker == nil {
		config.Locker = lock.NewLocalLocker()
	}
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodPost && c.Request.Method != http.MethodPut && c.Request.Method != http.MethodPatch {
			c.Next()
			return
		}

		key := c.GetHeader(IdempotencyKeyHeader)
		if key == "" {
			if config.Required {
				response.BadRequest(c, "Idempotency-Key header is required for this request")
				c.Abort()
				return
			}
			c.Next()
			return
		}
		if len(key) > maxIdempotencyKeyLength {
			response.BadRequest(c, "Idempotency-Key is too long")
			c.Abort()
			return
		}

		sess := GetSession(c)
		if sess == nil {
			response.Unauthorized(c, "User not authenticated")
			c.Abort()
			return
		}

		l, err := config.Locker.Obtain(c.Request.Context(), idempotencyLockKey(sess.AccountID.String(), key), IdempotencyLockTTL)
		if err != nil {
			if errors.Is(err, lock.ErrNotObtained) {
				response.Conflict(c, "A request with this Idempotency-Key is still in progress")
			} else {
				config.Log.WithField("account_id", sess.AccountID).WithError(err).Error("failed to lock idempotency key")
				response.InternalServerError(c, "Failed to check idempotency key")
			}
			c.Abort()
			return
		}
		defer func() {
			if err := l.Release(context.Background()); err != nil {
				config.Log.WithField("account_id", sess.AccountID).WithError(err).Warn("failed to release idempotency lock")
			}
		}()

		existing, err := config.Repo.GetByKey(c.Request.Context(), sess.AccountID, key)
		if err != nil {
			config.Log.WithField("account_id", sess.AccountID).WithError(err).Error("failed to check idempotency key")
			response.InternalServerError(c, "Failed to check idempotency key")
			c.Abort()
			return
		}

		if existing != nil && !existing.IsExpired() {
			if existing.Endpoint != endpoint(c) {
				response.Conflict(c, "Idempotency-Key was already used for a different request")
				c.Abort()
				return
			}
			c.Header("X-Idempotency-Replayed", "true")
			c.Data(existing.ResponseCode, "application/json; charset=utf-8", []byte(existing.ResponseBody))
			c.Abort()
			return
		}

		blw := &responseWriter{body: bytes.NewBufferString(""), ResponseWriter: c.Writer}
		c.Writer = blw

		c.Next()

		if status := c.Writer.Status(); status < 200 || status >= 300 {
			return
		}
		ikey := &entity.IdempotencyKey{
			Key:          key,
			UserID:       sess.AccountID,
			Endpoint:     endpoint(c),
			ResponseCode: c.Writer.Status(),
			ResponseBody: blw.body.String(),
			ExpiresAt:    time.Now().Add(IdempotencyKeyTTL),
		}
		if err := config.Repo.Create(c.Request.Context(), ikey); err != nil {
			config.Log.WithFields(logrus.Fields{
				"account_id": sess.AccountID,
				"endpoint":   ikey.Endpoint,
			}).WithError(err).Warn("failed to store idempotency key")
		}
	}
}

func idempotencyLockKey(accountID, key string) string {
	return "idem:" + accountID + ":" + key
}

func endpoint(c *gin.Context) string {
	return c.Request.Method + " " + c.FullPath()
}

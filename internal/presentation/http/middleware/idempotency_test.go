package middleware

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/hisab-api/internal/domain/account"
	"github.com/sangkips/hisab-api/internal/domain/entity"
	"github.com/sangkips/hisab-api/internal/infrastructure/lock"
	"github.com/sirupsen/logrus"
)

type memIdempotencyRepo struct {
	mu   sync.Mutex
	keys map[string]*entity.IdempotencyKey
	fail error
}

func newMemIdempotencyRepo() *memIdempotencyRepo {
	return &memIdempotencyRepo{keys: map[string]*entity.IdempotencyKey{}}
}

func (r *memIdempotencyRepo) GetByKey(ctx context.Context, accountID uuid.UUID, key string) (*entity.IdempotencyKey, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return nil, r.fail
	}
	return r.keys[accountID.String()+"/"+key], nil
}

func (r *memIdempotencyRepo) Create(ctx context.Context, k *entity.IdempotencyKey) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.keys[k.UserID.String()+"/"+k.Key] = k
	return nil
}

func (r *memIdempotencyRepo) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	return 0, nil
}

func init() {
	gin.SetMode(gin.TestMode)
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// withSession stands in for AuthMiddleware
func withSession(sess *account.Session) gin.HandlerFunc {
	return func(c *gin.Context) {
		if sess != nil {
			c.Set(SessionKey, sess)
		}
		c.Next()
	}
}

func idempotentRouter(repo *memIdempotencyRepo, sess *account.Session, calls *int, status int) *gin.Engine {
	r := gin.New()
	r.Use(withSession(sess))
	r.POST("/transactions", Idempotency(IdempotencyConfig{Repo: repo, Log: quietLogger(), Required: true}), func(c *gin.Context) {
		*calls++
		c.JSON(status, gin.H{"call": *calls})
	})
	r.POST("/other", Idempotency(IdempotencyConfig{Repo: repo, Log: quietLogger()}), func(c *gin.Context) {
		*calls++
		c.JSON(http.StatusCreated, gin.H{"call": *calls})
	})
	return r
}

func post(r http.Handler, path, key string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(`{}`))
	if key != "" {
		req.Header.Set(IdempotencyKeyHeader, key)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestIdempotencyReplaysStoredResponse(t *testing.T) {
	repo := newMemIdempotencyRepo()
	sess := account.NewSession(uuid.New(), "a@example.com")
	calls := 0
	r := idempotentRouter(repo, sess, &calls, http.StatusCreated)

	first := post(r, "/transactions", "k-1")
	second := post(r, "/transactions", "k-1")

	if calls != 1 {
		t.Fatalf("handler ran %d times, want 1", calls)
	}
	if second.Code != http.StatusCreated || second.Body.String() != first.Body.String() {
		t.Errorf("replay = %d %s, want %d %s", second.Code, second.Body, first.Code, first.Body)
	}
	if second.Header().Get("X-Idempotency-Replayed") != "true" {
		t.Error("replayed response should be marked")
	}
}

func TestIdempotencyKeysArePerAccount(t *testing.T) {
	repo := newMemIdempotencyRepo()
	calls := 0
	post(idempotentRouter(repo, account.NewSession(uuid.New(), "a@example.com"), &calls, http.StatusCreated), "/transactions", "shared")
	post(idempotentRouter(repo, account.NewSession(uuid.New(), "b@example.com"), &calls, http.StatusCreated), "/transactions", "shared")

	if calls != 2 {
		t.Errorf("handler ran %d times, want 2", calls)
	}
}

func TestIdempotencyRequiredKey(t *testing.T) {
	calls := 0
	r := idempotentRouter(newMemIdempotencyRepo(), account.NewSession(uuid.New(), "a@example.com"), &calls, http.StatusCreated)

	if w := post(r, "/transactions", ""); w.Code != http.StatusBadRequest {
		t.Errorf("missing key: status = %d, want 400", w.Code)
	}
	if w := post(r, "/transactions", strings.Repeat("x", 300)); w.Code != http.StatusBadRequest {
		t.Errorf("long key: status = %d, want 400", w.Code)
	}
	if w := post(r, "/other", ""); w.Code != http.StatusCreated {
		t.Errorf("optional key: status = %d, want 201", w.Code)
	}
	if calls != 1 {
		t.Errorf("handler ran %d times, want 1", calls)
	}
}

func TestIdempotencyDoesNotStoreFailures(t *testing.T) {
	repo := newMemIdempotencyRepo()
	calls := 0
	r := idempotentRouter(repo, account.NewSession(uuid.New(), "a@example.com"), &calls, http.StatusConflict)

	post(r, "/transactions", "k-1")
	post(r, "/transactions", "k-1")
	if calls != 2 {
		t.Errorf("failed requests should be retried, handler ran %d times", calls)
	}
}

func TestIdempotencyKeyReusedOnOtherEndpoint(t *testing.T) {
	repo := newMemIdempotencyRepo()
	calls := 0
	r := idempotentRouter(repo, account.NewSession(uuid.New(), "a@example.com"), &calls, http.StatusCreated)

	post(r, "/transactions", "k-1")
	if w := post(r, "/other", "k-1"); w.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", w.Code)
	}
}

func TestIdempotencyStoreFailure(t *testing.T) {
	repo := newMemIdempotencyRepo()
	repo.fail = errors.New("db down")
	calls := 0
	r := idempotentRouter(repo, account.NewSession(uuid.New(), "a@example.com"), &calls, http.StatusCreated)

	if w := post(r, "/transactions", "k-1"); w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}
	if calls != 0 {
		t.Error("handler must not run when the key cannot be checked")
	}
}

func TestIdempotencyNeedsSession(t *testing.T) {
	calls := 0
	r := idempotentRouter(newMemIdempotencyRepo(), nil, &calls, http.StatusCreated)
	if w := post(r, "/transactions", "k-1"); w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestIdempotencyKeyInFlight(t *testing.T) {
	repo := newMemIdempotencyRepo()
	sess := account.NewSession(uuid.New(), "a@example.com")
	entered := make(chan struct{})
	release := make(chan struct{})
	calls := 0

	r := gin.New()
	r.Use(withSession(sess))
	r.POST("/transactions", Idempotency(IdempotencyConfig{Repo: repo, Locker: lock.NewLocalLocker(), Log: quietLogger(), Required: true}), func(c *gin.Context) {
		calls++
		if calls == 1 {
			close(entered)
			<-release
		}
		c.JSON(http.StatusCreated, gin.H{"call": calls})
	})

	done := make(chan *httptest.ResponseRecorder)
	go func() { done <- post(r, "/transactions", "k-1") }()
	<-entered

	if w := post(r, "/transactions", "k-1"); w.Code != http.StatusConflict {
		t.Errorf("retry while in flight: status = %d, want 409", w.Code)
	}
	if w := post(r, "/transactions", "k-2"); w.Code != http.StatusCreated {
		t.Errorf("other key: status = %d, want 201", w.Code)
	}

	close(release)
	first := <-done
	if first.Code != http.StatusCreated {
		t.Fatalf("first: status = %d", first.Code)
	}
	replay := post(r, "/transactions", "k-1")
	if replay.Body.String() != first.Body.String() || replay.Header().Get("X-Idempotency-Replayed") != "true" {
		t.Errorf("after completion got %d %s, want replay of %s", replay.Code, replay.Body, first.Body)
	}
	if calls != 2 {
		t.Errorf("handler ran %d times, want 2", calls)
	}
}

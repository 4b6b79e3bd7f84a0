package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"serotonyl.ru/edu-engagement/internal/common"
)

type fakeMembers map[int64]bool

func (f fakeMembers) IsMember(_ context.Context, userID int64) (bool, error) {
	if userID == 500 {
		return false, errors.New("db down")
	}
	return f[userID], nil
}

func newTestRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID(), Recovery())
	r.Use(handlers...)
	r.GET("/ping", func(c *gin.Context) {
		id, _ := UserID(c)
		c.String(http.StatusOK, strconv.FormatInt(id, 10))
	})
	r.GET("/panic", func(c *gin.Context) { panic("boom") })
	return r
}

func do(r http.Handler, path string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestIdentity(t *testing.T) {
	r := newTestRouter(Identity(fakeMembers{7: true}))

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"not a number", "abc", http.StatusUnauthorized},
		{"negative", "-3", http.StatusUnauthorized},
		{"unknown user", "8", http.StatusNotFound},
		{"db failure", "500", http.StatusInternalServerError},
		{"known user", "7", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			headers := map[string]string{}
			if tt.header != "" {
				headers[HeaderUserID] = tt.header
			}
			w := do(r, "/ping", headers)
			assert.Equal(t, tt.status, w.Code)
		})
	}

	w := do(r, "/ping", map[string]string{HeaderUserID: "7"})
	assert.Equal(t, "7", w.Body.String())
}

func TestRequestIDGeneratedAndEchoed(t *testing.T) {
	r := newTestRouter()

	w := do(r, "/ping", nil)
	_, err := uuid.Parse(w.Header().Get(HeaderRequestID))
	require.NoError(t, err)

	given := uuid.NewString()
	w = do(r, "/ping", map[string]string{HeaderRequestID: given})
	assert.Equal(t, given, w.Header().Get(HeaderRequestID))
}

func TestRecoveryReturns500(t *testing.T) {
	r := newTestRouter()
	w := do(r, "/panic", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestRequireToken(t *testing.T) {
	r := newTestRouter(RequireToken(func(_, token string) error {
		if token != "s3cret" {
			return common.ErrForbidden
		}
		return nil
	}))

	assert.Equal(t, http.StatusUnauthorized, do(r, "/ping", nil).Code)
	assert.Equal(t, http.StatusForbidden, do(r, "/ping", map[string]string{HeaderServiceToken: "nope"}).Code)
	assert.Equal(t, http.StatusOK, do(r, "/ping", map[string]string{HeaderServiceToken: "s3cret"}).Code)
}

func TestRateLimiterSlidingWindow(t *testing.T) {
	rl := NewRateLimiter(2, time.Minute)
	defer rl.Close()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	assert.True(t, rl.Allow(1))
	assert.True(t, rl.Allow(1))
	assert.False(t, rl.Allow(1))
	assert.True(t, rl.Allow(2), "лимит считается отдельно для каждого пользователя")

	now = now.Add(61 * time.Second)
	assert.True(t, rl.Allow(1))
}

func TestRateLimiterMiddleware(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)
	defer rl.Close()
	r := newTestRouter(Identity(fakeMembers{7: true}), rl.Middleware())

	headers := map[string]string{HeaderUserID: "7"}
	assert.Equal(t, http.StatusOK, do(r, "/ping", headers).Code)
	assert.Equal(t, http.StatusTooManyRequests, do(r, "/ping", headers).Code)
}

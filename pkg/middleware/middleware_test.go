package middleware_test

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"twitterconnect/internal/metrics"
	"twitterconnect/pkg/claims"
	"twitterconnect/pkg/middleware"
	"twitterconnect/pkg/session"
)

var (
	logger   = slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	issuedAt = time.Date(2024, time.March, 14, 10, 0, 0, 0, time.UTC)
)

func protected(t *testing.T, m *session.Manager) (http.Handler, *bool) {
	called := false
	h := middleware.CheckJWT(m, logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		c, ok := claims.FromContext(r.Context())
		require.True(t, ok)
		_, _ = w.Write([]byte(c.ID))
	}))
	return h, &called
}

func TestCheckJWT(t *testing.T) {
	issuer := session.NewManager("secret", session.DefaultTTL).WithClock(func() time.Time { return issuedAt })
	valid, err := issuer.Issue("42")
	require.NoError(t, err)

	forged, err := session.NewManager("other", session.DefaultTTL).
		WithClock(func() time.Time { return issuedAt }).Issue("42")
	require.NoError(t, err)

	tests := []struct {
		name       string
		token      string
		checkedAt  time.Duration
		wantStatus int
	}{
		{name: "valid", token: valid, checkedAt: time.Minute, wantStatus: http.StatusOK},
		{name: "valid at 119 minutes", token: valid, checkedAt: 119 * time.Minute, wantStatus: http.StatusOK},
		{name: "expired at 121 minutes", token: valid, checkedAt: 121 * time.Minute, wantStatus: http.StatusUnauthorized},
		{name: "missing", token: "", wantStatus: http.StatusUnauthorized},
		{name: "malformed", token: "not.a.jwt", wantStatus: http.StatusUnauthorized},
		{name: "wrong key", token: forged, checkedAt: time.Minute, wantStatus: http.StatusUnauthorized},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			m := issuer.WithClock(func() time.Time { return issuedAt.Add(test.checkedAt) })
			h, called := protected(t, m)

			r := httptest.NewRequest(http.MethodGet, "/tweets", nil)
			if test.token != "" {
				r.Header.Set(session.Header, test.token)
			}
			w := httptest.NewRecorder()

			h.ServeHTTP(w, r)

			assert.Equal(t, test.wantStatus, w.Code)
			if test.wantStatus == http.StatusOK {
				assert.True(t, *called)
				assert.Equal(t, "42", w.Body.String())
			} else {
				assert.False(t, *called)
				assert.JSONEq(t, `{"message":"unauthorized"}`, w.Body.String())
			}
		})
	}
}

func TestCheckJWTIgnoresAuthorizationHeader(t *testing.T) {
	m := session.NewManager("secret", session.DefaultTTL)
	token, err := m.Issue("42")
	require.NoError(t, err)

	h, called := protected(t, m)

	r := httptest.NewRequest(http.MethodGet, "/tweets", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()

	h.ServeHTTP(w, r)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.False(t, *called)
}

func TestPanic(t *testing.T) {
	h := middleware.Panic(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "Internal server error")
}

func TestAccessLog(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, nil))

	m := session.NewManager("secret", session.DefaultTTL)
	token, err := m.Issue("42")
	require.NoError(t, err)

	var seenID string
	inner := middleware.CheckJWT(m, log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenID = middleware.RequestID(r.Context())
		w.WriteHeader(http.StatusAccepted)
	}))
	h := middleware.AccessLog(log, metrics.Nop{})(inner)

	t.Run("generates request id and logs user", func(t *testing.T) {
		buf.Reset()
		r := httptest.NewRequest(http.MethodPost, "/disconnect", nil)
		r.Header.Set(session.Header, token)
		w := httptest.NewRecorder()

		h.ServeHTTP(w, r)

		assert.Equal(t, http.StatusAccepted, w.Code)
		assert.NotEmpty(t, seenID)
		assert.Equal(t, seenID, w.Header().Get(middleware.RequestIDHeader))
		assert.Contains(t, buf.String(), "msg=http_request")
		assert.Contains(t, buf.String(), "status=202")
		assert.Contains(t, buf.String(), "user_id=42")
	})

	t.Run("keeps caller request id", func(t *testing.T) {
		buf.Reset()
		r := httptest.NewRequest(http.MethodPost, "/disconnect", nil)
		r.Header.Set(middleware.RequestIDHeader, "req-1")
		w := httptest.NewRecorder()

		h.ServeHTTP(w, r)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "req-1", w.Header().Get(middleware.RequestIDHeader))
		assert.Contains(t, buf.String(), "level=WARN")
		assert.Contains(t, buf.String(), "request_id=req-1")
		assert.NotContains(t, buf.String(), "user_id=")
	})
}

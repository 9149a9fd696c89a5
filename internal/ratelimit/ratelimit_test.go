package ratelimit

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/johnie/joina/internal/logging"
)

func testPolicy() Policy {
	return Policy{Limit: 3, Window: 15 * time.Minute}
}

func discardLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestMemoryStore_Windowing(t *testing.T) {
	s := NewMemoryStore(15 * time.Minute)
	p := testPolicy()
	now := time.Now()

	// First three requests in the window are admitted.
	for i := 1; i <= 3; i++ {
		entry, ok, err := s.Take(context.Background(), "1.2.3.4", p, now)
		require.NoError(t, err)
		assert.True(t, ok, "request %d should be admitted", i)
		assert.Equal(t, i, entry.Count)
	}

	// Fourth within the window is rejected and does not increment.
	entry, ok, err := s.Take(context.Background(), "1.2.3.4", p, now.Add(time.Minute))
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 3, entry.Count)
	assert.True(t, entry.ResetAt.After(now))

	// At the window boundary the counter starts fresh.
	entry, ok, err = s.Take(context.Background(), "1.2.3.4", p, entry.ResetAt)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1, entry.Count)
}

func TestMemoryStore_IdentitiesAreIndependent(t *testing.T) {
	s := NewMemoryStore(15 * time.Minute)
	p := Policy{Limit: 1, Window: time.Minute}
	now := time.Now()

	_, ok, _ := s.Take(context.Background(), "a", p, now)
	assert.True(t, ok)
	_, ok, _ = s.Take(context.Background(), "a", p, now)
	assert.False(t, ok)
	_, ok, _ = s.Take(context.Background(), "b", p, now)
	assert.True(t, ok)
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name  string
		setup func(r *http.Request)
		want  string
	}{
		{
			name:  "x-forwarded-for first entry",
			setup: func(r *http.Request) { r.Header.Set("X-Forwarded-For", "10.0.0.1, 10.0.0.2") },
			want:  "10.0.0.1",
		},
		{
			name:  "x-real-ip",
			setup: func(r *http.Request) { r.Header.Set("X-Real-IP", "10.0.0.3") },
			want:  "10.0.0.3",
		},
		{
			name:  "remote addr with port",
			setup: func(r *http.Request) { r.RemoteAddr = "192.168.1.5:51234" },
			want:  "192.168.1.5",
		},
		{
			name:  "ipv6 remote addr with port",
			setup: func(r *http.Request) { r.RemoteAddr = "[2001:db8::1]:51234" },
			want:  "2001:db8::1",
		},
		{
			name:  "bare ipv6 remote addr",
			setup: func(r *http.Request) { r.RemoteAddr = "2001:db8::1" },
			want:  "2001:db8::1",
		},
		{
			name:  "no identity",
			setup: func(r *http.Request) { r.RemoteAddr = "" },
			want:  UnknownIdentity,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/api/upload", nil)
			r.RemoteAddr = ""
			tc.setup(r)
			assert.Equal(t, tc.want, ClientIP(r))
		})
	}
}

func TestMiddleware_AdmitsAndSetsHeaders(t *testing.T) {
	s := NewMemoryStore(15 * time.Minute)
	h := Middleware(s, testPolicy(), discardLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/upload", nil)
	req.RemoteAddr = "1.2.3.4:9999"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "3", rec.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "2", rec.Header().Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, rec.Header().Get("X-RateLimit-Reset"))
}

func TestMiddleware_RejectsOverLimit(t *testing.T) {
	s := NewMemoryStore(15 * time.Minute)
	p := testPolicy()
	called := 0
	h := Middleware(s, p, discardLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called++
		w.WriteHeader(http.StatusNoContent)
	}))

	for i := 0; i < p.Limit; i++ {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/upload", nil)
		req.RemoteAddr = "1.2.3.4:9999"
		h.ServeHTTP(rec, req)
		require.Equal(t, http.StatusNoContent, rec.Code)
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/upload", nil)
	req.RemoteAddr = "1.2.3.4:9999"
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, p.Limit, called, "handler must not run when rejected")
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))

	retryAfter, err := strconv.Atoi(rec.Header().Get("Retry-After"))
	require.NoError(t, err)
	assert.Greater(t, retryAfter, 0)
	assert.Contains(t, rec.Body.String(), MsgTooManyRequests)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")
}

type failingStore struct{}

func (failingStore) Take(context.Context, string, Policy, time.Time) (Entry, bool, error) {
	return Entry{}, false, errors.New("store down")
}

func TestMiddleware_FailsOpenOnStoreError(t *testing.T) {
	called := false
	h := Middleware(failingStore{}, testPolicy(), discardLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/upload", nil))
	assert.True(t, called)
}

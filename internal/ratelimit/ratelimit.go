// Package ratelimit gates the upload endpoint with a fixed-window counter
// per client identity. It is an abuse deterrent, not a security boundary:
// slight over/undercounting under concurrency is acceptable, and a failing
// backing store fails open.
package ratelimit

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/johnie/joina/internal/jsonapi"
	"github.com/johnie/joina/internal/logging"
)

// MsgTooManyRequests is the Swedish 429 detail shown to clients.
const MsgTooManyRequests = "För många förfrågningar. Försök igen om några minuter."

// UnknownIdentity is used when no client address can be determined.
const UnknownIdentity = "unknown"

// Policy is a fixed-window admission policy.
type Policy struct {
	Limit  int
	Window time.Duration
}

// DefaultPolicy: 3 submissions per 15 minutes per client identity.
func DefaultPolicy() Policy {
	return Policy{Limit: 3, Window: 15 * time.Minute}
}

// Entry is the per-identity counter state after accounting for a request.
type Entry struct {
	Count   int
	ResetAt time.Time
}

// Store tracks per-identity counters with lazy window expiry.
type Store interface {
	// Take accounts one request for identity at the given time and
	// reports whether it is admitted under the policy. Implementations
	// (re)initialize the window when absent or expired.
	Take(ctx context.Context, identity string, p Policy, now time.Time) (Entry, bool, error)
}

// ClientIP extracts the client identity from a request: X-Forwarded-For
// first entry, then X-Real-IP, then RemoteAddr without the port.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if i := strings.IndexAny(xff, ", "); i >= 0 {
			return xff[:i]
		}
		return xff
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	addr := r.RemoteAddr
	if addr == "" {
		return UnknownIdentity
	}
	// a bare IPv6 address has colons but no port, so a string split on
	// ":" would truncate it
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	return addr
}

// Middleware wraps a handler with fixed-window rate limiting. Admitted
// requests carry X-RateLimit-* headers; rejected ones get a 429 with a
// Retry-After hint. A store failure admits the request (fail open).
func Middleware(store Store, p Policy, log logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			now := time.Now()
			identity := ClientIP(r)

			entry, admitted, err := store.Take(r.Context(), identity, p, now)
			if err != nil {
				log.Error(r.Context(), "rate limit store failure, admitting request", "error", err)
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(p.Limit))
			remaining := p.Limit - entry.Count
			if remaining < 0 {
				remaining = 0
			}
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(entry.ResetAt.Unix(), 10))

			if !admitted {
				retryAfter := int64(entry.ResetAt.Sub(now).Seconds())
				if entry.ResetAt.Sub(now)%time.Second != 0 {
					retryAfter++
				}
				if retryAfter < 1 {
					retryAfter = 1
				}
				w.Header().Set("Retry-After", fmt.Sprintf("%d", retryAfter))
				jsonapi.WriteError(w, http.StatusTooManyRequests,
					jsonapi.NewError(http.StatusTooManyRequests, "Too Many Requests", MsgTooManyRequests))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

package api

import (
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/okian/cvscreen/pkg/metrics"
)

// exemptClients are never limited.
var exemptClients = map[string]struct{}{
	"127.0.0.1": {},
	"::1":       {},
	"localhost": {},
	"unknown":   {},
}

// pruneEvery is how often idle clients are dropped from the limiter.
const pruneEvery = time.Minute

// RateLimiter allows at most maxCalls per sliding window and client IP.
type RateLimiter struct {
	mu        sync.Mutex
	calls     map[string][]time.Time
	maxCalls  int
	window    time.Duration
	proxies   ProxyList
	lastPrune time.Time
	now       func() time.Time
}

// LimiterOption configures a RateLimiter.
type LimiterOption func(*RateLimiter)

// WithTrustedProxies makes the limiter believe forwarding headers set by proxies.
func WithTrustedProxies(p ProxyList) LimiterOption {
	return func(l *RateLimiter) {
		l.proxies = p
	}
}

// NewRateLimiter creates a limiter. A non-positive maxCalls disables it.
func NewRateLimiter(maxCalls int, window time.Duration, opts ...LimiterOption) *RateLimiter {
	l := &RateLimiter{
		calls:    make(map[string][]time.Time),
		maxCalls: maxCalls,
		window:   window,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Allow records a call from client when it fits the window. It returns
// whether the call is allowed and how many calls the client made in the window.
func (l *RateLimiter) Allow(client string) (bool, int) {
	if l.maxCalls <= 0 {
		return true, 0
	}
	if _, ok := exemptClients[client]; ok {
		return true, 0
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	cutoff := now.Add(-l.window)
	if now.Sub(l.lastPrune) >= pruneEvery {
		l.pruneLocked(cutoff)
		l.lastPrune = now
	}
	recent := l.calls[client][:0]
	for _, t := range l.calls[client] {
		if t.After(cutoff) {
			recent = append(recent, t)
		}
	}
	if len(recent) >= l.maxCalls {
		l.calls[client] = recent
		return false, len(recent)
	}
	l.calls[client] = append(recent, now)
	return true, len(recent) + 1
}

// pruneLocked forgets clients whose last call is older than cutoff.
func (l *RateLimiter) pruneLocked(cutoff time.Time) {
	for client, times := range l.calls {
		if len(times) == 0 || !times[len(times)-1].After(cutoff) {
			delete(l.calls, client)
		}
	}
}

// Remaining returns how many calls client has left in the current window.
func (l *RateLimiter) Remaining(client string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	cutoff := l.now().Add(-l.window)
	made := 0
	for _, t := range l.calls[client] {
		if t.After(cutoff) {
			made++
		}
	}
	return max(0, l.maxCalls-made)
}

type rateLimitResponse struct {
	Error     string `json:"error"`
	Message   string `json:"message"`
	CallsMade int    `json:"calls_made"`
	MaxCalls  int    `json:"max_calls"`
}

// Middleware rejects over-limit calls with 429.
func (l *RateLimiter) Middleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			next(w, r)
			return
		}
		ok, made := l.Allow(l.proxies.ClientIP(r))
		if !ok {
			metrics.RecordRateLimited()
			w.Header().Set("Retry-After", strconv.Itoa(int(l.window.Seconds())))
			writeJSON(w, http.StatusTooManyRequests, rateLimitResponse{
				Error:     "Rate limit exceeded",
				Message:   fmt.Sprintf("You have reached the limit of %d analyses per %s. Please try again later.", l.maxCalls, l.window),
				CallsMade: made,
				MaxCalls:  l.maxCalls,
			})
			return
		}
		next(w, r)
	}
}

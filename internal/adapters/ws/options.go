package ws

import (
	"net/http"
	"time"

	"github.com/okian/cvscreen/pkg/logger"
)

// Option applies a configuration option to the Hub.
type Option func(*Hub)

// WithMaxQueued bounds the messages kept for a session with no connection.
func WithMaxQueued(n int) Option {
	return func(h *Hub) {
		if n > 0 {
			h.maxQueued = n
		}
	}
}

// WithQueueTTL sets how long messages wait for a session that never connects.
func WithQueueTTL(d time.Duration) Option {
	return func(h *Hub) {
		if d > 0 {
			h.queueTTL = d
		}
	}
}

// WithMaxQueuedSessions bounds how many unconnected sessions keep a queue.
// The least recently used queue is dropped first.
func WithMaxQueuedSessions(n int) Option {
	return func(h *Hub) {
		if n > 0 {
			h.maxQueuedSessions = n
		}
	}
}

// WithAllowedOrigins restricts the Origin header of upgrade requests. "*" or
// an empty list allows any origin.
func WithAllowedOrigins(origins []string) Option {
	return func(h *Hub) {
		allowed := make(map[string]struct{}, len(origins))
		for _, o := range origins {
			if o == "*" {
				return
			}
			allowed[o] = struct{}{}
		}
		if len(allowed) == 0 {
			return
		}
		h.upgrader.CheckOrigin = func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true
			}
			_, ok := allowed[origin]
			return ok
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(h *Hub) {
		if l != nil {
			h.logger = l
		}
	}
}

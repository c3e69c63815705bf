package ws

import "time"

// SetClock replaces the hub's clock.
func SetClock(h *Hub, now func() time.Time) {
	h.mu.Lock()
	h.now = now
	h.mu.Unlock()
}

// QueuedSessions counts the sessions holding queued messages.
func QueuedSessions(h *Hub) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.queued)
}

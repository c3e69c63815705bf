package api

import (
	"errors"
	"net/http"
	"strings"
)

// SocketHandler authorizes and hands WebSocket requests to the hub.
type SocketHandler struct {
	sockets Sockets
	tokens  *Tokens
}

// NewSocketHandler creates a new socket handler. A nil tokens service keeps
// the monitor socket closed.
func NewSocketHandler(sockets Sockets, tokens *Tokens) *SocketHandler {
	return &SocketHandler{sockets: sockets, tokens: tokens}
}

// HandleSession handles GET /ws/analysis?session_id=S.
func (h *SocketHandler) HandleSession(w http.ResponseWriter, r *http.Request) {
	const op = "api.ws_session"
	if h.sockets == nil {
		http.NotFound(w, r)
		return
	}
	sessionID := strings.TrimSpace(r.URL.Query().Get("session_id"))
	if sessionID == "" {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, errMissing("session_id")))
		return
	}
	h.sockets.ServeSession(w, r, sessionID)
}

// HandleMonitor handles GET /ws/monitor?admin_token=T.
func (h *SocketHandler) HandleMonitor(w http.ResponseWriter, r *http.Request) {
	const op = "api.ws_monitor"
	if h.sockets == nil {
		http.NotFound(w, r)
		return
	}
	if h.tokens == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized", WrapKind(op, ErrUnauthorized, errors.New("monitor is not configured")))
		return
	}
	if _, err := h.tokens.Validate(r.URL.Query().Get("admin_token")); err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	h.sockets.ServeMonitor(w, r)
}

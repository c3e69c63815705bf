// Package ws pushes analysis progress to browsers over WebSocket.
package ws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/okian/cvscreen/pkg/logger"
	"github.com/okian/cvscreen/pkg/metrics"
)

const (
	defaultMaxQueued         = 100
	defaultMaxQueuedSessions = 10_000
	defaultQueueTTL          = 30 * time.Minute
	sweepEvery               = time.Minute
	writeTimeout             = 10 * time.Second
	readLimit                = 64 << 10
)

type client struct {
	id          string
	session     string
	conn        *websocket.Conn
	writeMu     sync.Mutex
	connectedAt time.Time
	lastPing    time.Time
}

func (c *client) write(v any) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		return err
	}
	return c.conn.WriteJSON(v)
}

// pending holds the messages of a session nobody is connected to.
type pending struct {
	messages []Message
	touched  time.Time
}

// Hub tracks connections per analysis session. Messages for a session with no
// open connection are queued and flushed when one connects. Queues untouched
// for longer than the TTL are dropped.
type Hub struct {
	mu                sync.Mutex
	sessions          map[string]map[*client]struct{}
	queued            map[string]*pending
	maxQueued         int
	maxQueuedSessions int
	queueTTL          time.Duration
	lastSweep         time.Time
	now               func() time.Time
	closed            bool

	upgrader websocket.Upgrader
	validate *validator.Validate
	logger   logger.Logger
}

// NewHub creates a hub.
func NewHub(opts ...Option) *Hub {
	h := &Hub{
		sessions:  make(map[string]map[*client]struct{}),
		queued:            make(map[string]*pending),
		maxQueued:         defaultMaxQueued,
		maxQueuedSessions: defaultMaxQueuedSessions,
		queueTTL:          defaultQueueTTL,
		now:               time.Now,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		validate: validator.New(),
		logger:   logger.Get().Named("ws"),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// ServeSession upgrades the request and serves one session connection until
// the client goes away.
func (h *Hub) ServeSession(w http.ResponseWriter, r *http.Request, sessionID string) {
	ctx := r.Context()
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn(ctx, "websocket upgrade failed", logger.Error(err))
		return
	}
	conn.SetReadLimit(readLimit)

	c := &client{id: uuid.NewString(), session: sessionID, conn: conn, connectedAt: time.Now(), lastPing: time.Now()}
	backlog, err := h.register(c)
	if err != nil {
		_ = conn.Close()
		return
	}
	defer h.unregister(c)

	h.logger.Info(ctx, "websocket connected", logger.String("session_id", sessionID), logger.String("connection_id", c.id))
	if err := c.write(Message{
		Type:      TypeConnectionEstablished,
		SessionID: sessionID,
		Timestamp: time.Now().UTC(),
		Data:      map[string]any{"connection_id": c.id},
	}); err != nil {
		return
	}
	for _, m := range backlog {
		if err := c.write(m); err != nil {
			return
		}
		metrics.RecordWebSocketMessage(m.Type, "sent")
	}

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return
		}
		if err := h.handleClientMessage(c, raw); err != nil {
			return
		}
	}
}

func (h *Hub) handleClientMessage(c *client, raw []byte) error {
	var msg clientMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		return c.write(Message{Type: TypeError, Timestamp: time.Now().UTC(), Data: map[string]any{"error": "Invalid JSON format"}})
	}
	switch msg.Type {
	case TypePing:
		h.mu.Lock()
		c.lastPing = time.Now()
		h.mu.Unlock()
		return c.write(Message{Type: TypePong, SessionID: c.session, Timestamp: time.Now().UTC()})
	default:
		return c.write(Message{
			Type:      TypeError,
			Timestamp: time.Now().UTC(),
			Data:      map[string]any{"error": fmt.Sprintf("Unknown message type: %s", msg.Type)},
		})
	}
}

func (h *Hub) register(c *client) ([]Message, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil, ErrClosed
	}
	if h.sessions[c.session] == nil {
		h.sessions[c.session] = make(map[*client]struct{})
	}
	h.sessions[c.session][c] = struct{}{}
	var backlog []Message
	if q := h.queued[c.session]; q != nil {
		backlog = q.messages
	}
	delete(h.queued, c.session)
	metrics.UpdateWebSocketConnections(h.connectionsLocked())
	return backlog, nil
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	if conns, ok := h.sessions[c.session]; ok {
		delete(conns, c)
		if len(conns) == 0 {
			delete(h.sessions, c.session)
		}
	}
	metrics.UpdateWebSocketConnections(h.connectionsLocked())
	h.mu.Unlock()
	_ = c.conn.Close()
}

func (h *Hub) connectionsLocked() int {
	n := 0
	for _, conns := range h.sessions {
		n += len(conns)
	}
	return n
}

// Broadcast sends msg to every connection of the session, or queues it when
// none is open. The oldest queued message is dropped when the queue is full.
func (h *Hub) Broadcast(ctx context.Context, sessionID string, msg Message) {
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now().UTC()
	}
	msg.SessionID = sessionID

	h.mu.Lock()
	conns := h.sessions[sessionID]
	if len(conns) == 0 {
		h.enqueueLocked(sessionID, msg)
		h.mu.Unlock()
		metrics.RecordWebSocketMessage(msg.Type, "queued")
		return
	}
	targets := make([]*client, 0, len(conns))
	for c := range conns {
		targets = append(targets, c)
	}
	h.mu.Unlock()

	for _, c := range targets {
		if err := c.write(msg); err != nil {
			h.logger.Warn(ctx, "dropping websocket connection", logger.String("connection_id", c.id), logger.Error(err))
			h.unregister(c)
			continue
		}
		metrics.RecordWebSocketMessage(msg.Type, "sent")
	}
}

func (h *Hub) enqueueLocked(sessionID string, msg Message) {
	now := h.now()
	if now.Sub(h.lastSweep) >= sweepEvery {
		h.sweepLocked(now)
		h.lastSweep = now
	}
	q := h.queued[sessionID]
	if q == nil {
		if len(h.queued) >= h.maxQueuedSessions {
			h.evictStalestLocked()
		}
		q = &pending{}
		h.queued[sessionID] = q
	}
	q.messages = append(q.messages, msg)
	if len(q.messages) > h.maxQueued {
		q.messages = q.messages[len(q.messages)-h.maxQueued:]
	}
	q.touched = now
}

// sweepLocked drops queues nobody collected within the TTL.
func (h *Hub) sweepLocked(now time.Time) {
	for id, q := range h.queued {
		if now.Sub(q.touched) > h.queueTTL {
			delete(h.queued, id)
			dropped(q, "expired")
		}
	}
}

func (h *Hub) evictStalestLocked() {
	var (
		oldest string
		at     time.Time
	)
	for id, q := range h.queued {
		if oldest == "" || q.touched.Before(at) {
			oldest, at = id, q.touched
		}
	}
	if oldest != "" {
		dropped(h.queued[oldest], "evicted")
		delete(h.queued, oldest)
	}
}

func dropped(q *pending, reason string) {
	for _, m := range q.messages {
		metrics.RecordWebSocketMessage(m.Type, reason)
	}
}

// SendProcessUpdate validates u and broadcasts it as a process_update message.
func (h *Hub) SendProcessUpdate(ctx context.Context, sessionID string, u ProcessUpdate) error {
	if u.StepID == "" {
		u.StepID = uuid.NewString()
	}
	if err := h.validate.Struct(u); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fmt.Errorf("%w: validation error: %s - %s", ErrInvalidUpdate, verrs[0].Field(), verrs[0].Tag())
		}
		return fmt.Errorf("%w: %v", ErrInvalidUpdate, err)
	}
	h.Broadcast(ctx, sessionID, Message{
		Type: TypeProcessUpdate,
		Data: map[string]any{
			"step_id":               u.StepID,
			"step_name":             u.StepName,
			"status":                string(u.Status),
			"confidence":            u.Confidence,
			"explanation":           u.Explanation,
			"details":               u.Details,
			"requires_intervention": u.RequiresIntervention,
			"intervention_type":     u.InterventionType,
		},
	})
	return nil
}

// SessionInfo describes one session.
func (h *Hub) SessionInfo(sessionID string) SessionInfo {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.sessionInfoLocked(sessionID)
}

func (h *Hub) sessionInfoLocked(sessionID string) SessionInfo {
	n := len(h.sessions[sessionID])
	return SessionInfo{
		SessionID:       sessionID,
		Active:          n > 0,
		ConnectionCount: n,
		QueuedMessages:  h.queuedLenLocked(sessionID),
	}
}

func (h *Hub) queuedLenLocked(sessionID string) int {
	if q := h.queued[sessionID]; q != nil {
		return len(q.messages)
	}
	return 0
}

// Sessions lists the sessions with an open connection, sorted.
func (h *Hub) Sessions() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]string, 0, len(h.sessions))
	for s := range h.sessions {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// Connections returns the number of open connections.
func (h *Hub) Connections() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.connectionsLocked()
}

func (h *Hub) sessionList() Message {
	h.mu.Lock()
	defer h.mu.Unlock()
	names := make([]string, 0, len(h.sessions))
	for s := range h.sessions {
		names = append(names, s)
	}
	sort.Strings(names)
	infos := make([]SessionInfo, len(names))
	for i, s := range names {
		infos[i] = h.sessionInfoLocked(s)
	}
	return Message{Type: TypeSessionList, Timestamp: time.Now().UTC(), Data: map[string]any{"sessions": infos}}
}

// ServeMonitor upgrades the request and sends the session list on connect and
// on every "refresh" text message. Authorization is the caller's job.
func (h *Hub) ServeMonitor(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn(r.Context(), "monitor upgrade failed", logger.Error(err))
		return
	}
	defer conn.Close()
	conn.SetReadLimit(readLimit)

	c := &client{id: uuid.NewString(), conn: conn}
	if err := c.write(h.sessionList()); err != nil {
		return
	}
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return
		}
		if string(raw) == "refresh" {
			if err := c.write(h.sessionList()); err != nil {
				return
			}
		}
	}
}

// Close disconnects every client and rejects new ones.
func (h *Hub) Close() error {
	h.mu.Lock()
	h.closed = true
	var all []*client
	for _, conns := range h.sessions {
		for c := range conns {
			all = append(all, c)
		}
	}
	h.mu.Unlock()

	for _, c := range all {
		c.writeMu.Lock()
		_ = c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"), time.Now().Add(time.Second))
		c.writeMu.Unlock()
		_ = c.conn.Close()
	}
	return nil
}

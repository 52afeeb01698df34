package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"camerpulse/internal/chat/repository"
	"camerpulse/internal/chat/service"
	"camerpulse/internal/common"
	"camerpulse/internal/config"
	"camerpulse/internal/ratelimit"
	"camerpulse/internal/realtime"
)

const (
	writeWait     = 10 * time.Second
	pongWait      = 60 * time.Second
	pingPeriod    = 30 * time.Second
	maxFrameBytes = 64 << 10
	sendBuffer    = 64
	frameTimeout  = 10 * time.Second
)

// ConversationSession is the conversation state behind one websocket.
type ConversationSession interface {
	Open(conversationID string) error
	Send(ctx context.Context, content string) error
	Keystroke(ctx context.Context) error
	Close()
}

// SessionFactory mounts a fresh session for a connection. Snapshots and
// failures are pushed to listener.
type SessionFactory func(userID string, listener service.ViewListener) ConversationSession

// ViewSessions backs each connection with a ConversationView and its own
// typing tracker.
func ViewSessions(
	cfg *config.Config,
	sync service.MessageSync,
	receipts service.ReadReceipts,
	monitor *service.TypingMonitor,
	typing repository.TypingRepository,
	feed realtime.Feed,
	logger *slog.Logger,
) SessionFactory {
	return func(userID string, listener service.ViewListener) ConversationSession {
		return service.NewConversationView(userID, service.ViewDeps{
			Sync:     sync,
			Receipts: receipts,
			Monitor:  monitor,
			Tracker:  service.NewTypingTracker(typing, feed, userID, cfg.Chat, logger),
			Feed:     feed,
			Merge:    cfg.Chat.IncrementalMerge,
			Logger:   logger,
		}, listener)
	}
}

type inboundFrame struct {
	Type           string `json:"type"`
	ConversationID string `json:"conversation_id,omitempty"`
	Content        string `json:"content,omitempty"`
}

type outboundFrame struct {
	Type     string            `json:"type"`
	Snapshot *service.Snapshot `json:"snapshot,omitempty"`
	Message  string            `json:"message,omitempty"`
	Code     string            `json:"code,omitempty"`
	Error    string            `json:"error,omitempty"`
}

// WSHandler serves /ws: one ConversationView per connection, driven by
// open/send/keystroke/close frames.
type WSHandler struct {
	upgrader   websocket.Upgrader
	sync       service.MessageSync
	feed       realtime.Feed
	newSession SessionFactory
	limits     Limiters
	logger     *slog.Logger
}

func NewWSHandler(sync service.MessageSync, feed realtime.Feed, newSession SessionFactory, limits Limiters, logger *slog.Logger) *WSHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &WSHandler{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// bearer tokens gate the endpoint, not cookies
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		sync:       sync,
		feed:       feed,
		newSession: newSession,
		limits:     limits,
		logger:     logger,
	}
}

func (h *WSHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	userID, ok := common.UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "authorization required"})
		return
	}

	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the response.
		h.logger.Warn("websocket upgrade failed", "user_id", userID, "error", err)
		return
	}

	conn := newConnection(userID, ws, h.logger)
	conn.start()

	session := h.newSession(userID, conn)
	toasts, err := h.feed.Subscribe(realtime.UserSubject(userID), conn.onUserEvent)
	if err != nil {
		h.logger.Warn("toast subscription failed", "user_id", userID, "error", err)
	}

	h.logger.Info("websocket session opened", "user_id", userID, "conn_id", conn.id)
	defer func() {
		if toasts != nil {
			_ = toasts.Unsubscribe()
		}
		session.Close()
		conn.close(websocket.CloseNormalClosure, "session closed")
		h.logger.Info("websocket session closed", "user_id", userID, "conn_id", conn.id)
	}()

	ws.SetReadLimit(maxFrameBytes)
	_ = ws.SetReadDeadline(time.Now().Add(pongWait))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived) {
				h.logger.Debug("websocket read failed", "user_id", userID, "error", err)
			}
			return
		}

		var frame inboundFrame
		if err := json.Unmarshal(data, &frame); err != nil {
			conn.sendError(fmt.Errorf("invalid frame: %w", common.ErrValidation))
			continue
		}

		switch frame.Type {
		case "open":
			h.handleOpen(r.Context(), conn, session, frame)
		case "send":
			h.handleSend(r.Context(), conn, session, frame)
		case "keystroke":
			h.handleKeystroke(r.Context(), conn, session)
		case "close":
			return
		default:
			conn.sendError(fmt.Errorf("unknown frame type %q: %w", frame.Type, common.ErrValidation))
		}
	}
}

func (h *WSHandler) handleOpen(ctx context.Context, conn *connection, session ConversationSession, frame inboundFrame) {
	ctx, cancel := context.WithTimeout(ctx, frameTimeout)
	defer cancel()

	if err := h.sync.CheckAccess(ctx, conn.userID, frame.ConversationID); err != nil {
		conn.sendError(err)
		return
	}
	if err := session.Open(frame.ConversationID); err != nil {
		conn.sendError(err)
	}
}

func (h *WSHandler) handleSend(ctx context.Context, conn *connection, session ConversationSession, frame inboundFrame) {
	if !allow(h.limits.Send, conn.userID) {
		conn.send(outboundFrame{Type: "error", Code: "rate_limited", Error: "rate limit exceeded"})
		return
	}

	ctx, cancel := context.WithTimeout(ctx, frameTimeout)
	defer cancel()

	if err := session.Send(ctx, frame.Content); err != nil {
		conn.sendError(err)
	}
}

func (h *WSHandler) handleKeystroke(ctx context.Context, conn *connection, session ConversationSession) {
	// keystrokes are lossy, over-limit ones are dropped silently
	if !allow(h.limits.Keystroke, conn.userID) {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, frameTimeout)
	defer cancel()

	if err := session.Keystroke(ctx); err != nil {
		conn.sendError(err)
	}
}

func allow(store *ratelimit.LimiterStore, userID string) bool {
	return store == nil || store.Allow("user:"+userID)
}

// connection coordinates outbound writes through a buffered channel. A slow
// client that fills the buffer is disconnected.
type connection struct {
	id     string
	userID string
	ws     *websocket.Conn
	logger *slog.Logger

	outbox chan []byte
	done   chan struct{}
	once   sync.Once
}

func newConnection(userID string, ws *websocket.Conn, logger *slog.Logger) *connection {
	return &connection{
		id:     uuid.NewString(),
		userID: userID,
		ws:     ws,
		logger: logger,
		outbox: make(chan []byte, sendBuffer),
		done:   make(chan struct{}),
	}
}

func (c *connection) start() {
	go c.writeLoop()
}

func (c *connection) OnSnapshot(s service.Snapshot) {
	c.send(outboundFrame{Type: "snapshot", Snapshot: &s})
}

func (c *connection) OnError(err error) {
	c.sendError(err)
}

func (c *connection) onUserEvent(ev realtime.Event) {
	if ev.Type != realtime.EventToast {
		return
	}
	c.send(outboundFrame{Type: "toast", Message: ev.Text})
}

func (c *connection) sendError(err error) {
	code, message := describeError(err)
	c.send(outboundFrame{Type: "error", Code: code, Error: message})
}

func (c *connection) send(frame outboundFrame) {
	payload, err := json.Marshal(frame)
	if err != nil {
		c.logger.Error("failed to encode frame", "type", frame.Type, "error", err)
		return
	}

	select {
	case <-c.done:
	case c.outbox <- payload:
	default:
		c.logger.Warn("websocket send buffer full", "conn_id", c.id)
		c.close(websocket.CloseGoingAway, "send buffer full")
	}
}

func (c *connection) close(code int, reason string) {
	c.once.Do(func() {
		close(c.done)
		_ = c.ws.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason), time.Now().Add(writeWait))
		_ = c.ws.Close()
	})
}

func (c *connection) writeLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case payload := <-c.outbox:
			if err := c.write(websocket.TextMessage, payload); err != nil {
				c.close(websocket.CloseAbnormalClosure, "write failed")
				return
			}
		case <-ticker.C:
			if err := c.write(websocket.PingMessage, nil); err != nil {
				c.close(websocket.CloseAbnormalClosure, "ping failed")
				return
			}
		}
	}
}

func (c *connection) write(messageType int, payload []byte) error {
	if err := c.ws.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.ws.WriteMessage(messageType, payload)
}

// describeError turns a service error into a frame code and a message fit
// for the user.
func describeError(err error) (string, string) {
	switch {
	case errors.Is(err, common.ErrValidation):
		return "validation", err.Error()
	case errors.Is(err, common.ErrNotFound), errors.Is(err, common.ErrPermission):
		return "not_found", "conversation not found"
	case errors.Is(err, common.ErrTransient):
		return "transient", "network error, please try again"
	case errors.Is(err, service.ErrViewClosed):
		return "closed", err.Error()
	default:
		return "internal", "something went wrong"
	}
}

package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"

	"github.com/jwebster45206/quest-engine/internal/metrics"
	"github.com/jwebster45206/quest-engine/internal/services/events"
	"github.com/jwebster45206/quest-engine/internal/session"
)

const (
	socketWriteWait    = 5 * time.Second
	socketPingInterval = 30 * time.Second
	socketReadLimit    = 4096
)

// Socket message types sent alongside forwarded progression events.
const (
	SocketConnected     = "connected"
	SocketEventAccepted = "event.accepted"
	SocketError         = "error"
)

// SocketMessage is a reply written by the socket handler itself.
// Progression events are forwarded as published (events.Event).
type SocketMessage struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

// SocketHandler is a two-way WebSocket for game clients: it forwards
// progression events like /v1/stream and accepts {"event": "..."} messages,
// applied as if POSTed to /v1/events.
//
//	GET /v1/ws
type SocketHandler struct {
	redisClient *redis.Client
	session     *session.Session
	metrics     *metrics.Metrics
	logger      *slog.Logger
	upgrader    websocket.Upgrader
	ping        time.Duration
}

func NewSocketHandler(redisClient *redis.Client, s *session.Session, logger *slog.Logger) *SocketHandler {
	return &SocketHandler{
		redisClient: redisClient,
		session:     s,
		logger:      logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		ping: socketPingInterval,
	}
}

// WithMetrics counts events raised over the socket. Returns the handler for
// chaining.
func (h *SocketHandler) WithMetrics(m *metrics.Metrics) *SocketHandler {
	h.metrics = m
	return h
}

func (h *SocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Only GET is supported.")
		return
	}

	channel := events.Channel(h.session.ID())
	pubsub := h.redisClient.Subscribe(r.Context(), channel)
	defer func() {
		if err := pubsub.Close(); err != nil {
			h.logger.Error("Failed to close pubsub", "error", err)
		}
	}()
	if _, err := pubsub.Receive(r.Context()); err != nil {
		h.logger.Error("Failed to subscribe", "error", err, "channel", channel)
		writeError(w, h.logger, http.StatusServiceUnavailable, "Event stream unavailable")
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied to the client.
		h.logger.Warn("WebSocket upgrade failed", "error", err)
		return
	}
	defer func() {
		_ = conn.Close()
	}()

	h.logger.Info("WebSocket connection established",
		"session_id", h.session.ID().String(),
		"remote_addr", r.RemoteAddr)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	replies := make(chan SocketMessage, 8)
	go h.readLoop(ctx, cancel, conn, replies)

	if err := h.writeJSON(conn, SocketMessage{
		Type: SocketConnected,
		Data: map[string]string{"session_id": h.session.ID().String()},
	}); err != nil {
		return
	}

	msgChan := pubsub.Channel()
	pingTicker := time.NewTicker(h.ping)
	defer pingTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			h.logger.Info("WebSocket client disconnected",
				"session_id", h.session.ID().String())
			return

		case msg, ok := <-msgChan:
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(socketWriteWait))
			if err := conn.WriteMessage(websocket.TextMessage, []byte(msg.Payload)); err != nil {
				h.logger.Debug("Failed to forward event", "error", err)
				return
			}

		case reply := <-replies:
			if err := h.writeJSON(conn, reply); err != nil {
				return
			}

		case <-pingTicker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(socketWriteWait)); err != nil {
				h.logger.Debug("Ping failed", "error", err)
				return
			}
		}
	}
}

// readLoop applies incoming events until the client goes away. It never
// writes to conn; replies go through the writer loop.
func (h *SocketHandler) readLoop(ctx context.Context, cancel context.CancelFunc, conn *websocket.Conn, replies chan<- SocketMessage) {
	defer cancel()
	conn.SetReadLimit(socketReadLimit)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.logger.Warn("WebSocket read failed", "error", err)
			}
			return
		}

		reply := h.raise(ctx, data)
		select {
		case replies <- reply:
		case <-ctx.Done():
			return
		}
	}
}

func (h *SocketHandler) raise(ctx context.Context, data []byte) SocketMessage {
	var req RaiseEventRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return SocketMessage{Type: SocketError, Data: "Invalid message"}
	}
	req.Event = strings.TrimSpace(req.Event)
	if req.Event == "" {
		return SocketMessage{Type: SocketError, Data: "event is required"}
	}

	err := h.session.RaiseEvent(ctx, req.Event)
	if h.metrics != nil {
		h.metrics.RecordEvent(metrics.SourceSocket)
	}
	if err != nil {
		h.logger.Error("Failed to persist progress after event", "error", err, "event", req.Event)
		return SocketMessage{Type: SocketError, Data: "Event applied but progress was not saved"}
	}

	h.logger.Info("Significant event raised over socket", "event", req.Event)
	return SocketMessage{Type: SocketEventAccepted, Data: map[string]string{"event": req.Event}}
}

func (h *SocketHandler) writeJSON(conn *websocket.Conn, msg SocketMessage) error {
	_ = conn.SetWriteDeadline(time.Now().Add(socketWriteWait))
	if err := conn.WriteJSON(msg); err != nil {
		h.logger.Debug("Failed to write socket message", "error", err, "type", msg.Type)
		return err
	}
	return nil
}

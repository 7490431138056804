package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"popchat/contract"
	"popchat/domain"
	"popchat/domain/event"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second

	maxFrameSize = 64 * 1024
)

// Handler upgrades HTTP requests to WebSocket connections and bridges
// them to the coordinator. Each connection gets a fresh ConnectionID, a
// dedicated sink, and a write pump; the handler itself holds no room
// state.
type Handler struct {
	log              *slog.Logger
	coordinator      contract.ICoordinator
	upgrader         websocket.Upgrader
	validate         *validator.Validate
	bufferSize       int
	maxContentLength int

	mu    sync.Mutex
	conns map[*websocket.Conn]struct{}
}

func NewHandler(log *slog.Logger, coordinator contract.ICoordinator,
	bufferSize, maxContentLength int) *Handler {
	return &Handler{
		log:         log,
		coordinator: coordinator,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Anonymous drop-in rooms are open by design; there is no
			// origin allow-list to enforce.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		validate:         validator.New(),
		bufferSize:       bufferSize,
		maxContentLength: maxContentLength,
		conns:            make(map[*websocket.Conn]struct{}),
	}
}

// ServeHTTP handles one connection for its whole lifetime and returns
// when the client goes away. Disconnection is translated into exactly
// one Disconnect call, which acts as the implicit leave.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("WebSocket upgrade failed", "error", err)
		return
	}

	connID := domain.ConnectionID(uuid.NewString())
	sink := NewSink(h.bufferSize)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	h.track(conn)
	h.coordinator.Connect(connID, sink)
	defer func() {
		h.coordinator.Disconnect(context.WithoutCancel(ctx), connID)
		h.untrack(conn)
		_ = conn.Close()
	}()

	go h.writePump(ctx, conn, sink)
	h.readLoop(ctx, conn, connID, sink)
}

// readLoop decodes inbound envelopes and dispatches them until the
// connection dies. Malformed frames earn the sender an error event but
// never kill the connection.
func (h *Handler) readLoop(ctx context.Context, conn *websocket.Conn, connID domain.ConnectionID, sink *Sink) {
	conn.SetReadLimit(maxFrameSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure) {
				h.log.Warn("Unexpected WebSocket error", "error", err)
			}
			return
		}

		var env Envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			h.reject(ctx, sink, "Invalid payload")
			continue
		}
		h.dispatch(ctx, connID, sink, env)
	}
}

func (h *Handler) dispatch(ctx context.Context, connID domain.ConnectionID, sink *Sink, env Envelope) {
	switch env.Event {
	case createRoomEvent:
		h.coordinator.CreateRoom(ctx, connID)

	case joinRoomEvent:
		payload, ok := h.roomPayload(ctx, sink, env.Data)
		if !ok {
			return
		}
		h.coordinator.JoinRoom(ctx, connID, payload.RoomKey)

	case sendMessageEvent:
		var payload SendPayload
		if err := json.Unmarshal(env.Data, &payload); err != nil {
			h.reject(ctx, sink, "Invalid payload")
			return
		}
		if err := h.validate.Struct(payload); err != nil {
			h.reject(ctx, sink, "Invalid payload")
			return
		}
		if len(payload.Message) > h.maxContentLength {
			h.reject(ctx, sink, "Message too long")
			return
		}
		h.coordinator.SendMessage(ctx, connID, payload.RoomKey, payload.Message, payload.ReplyTo)

	case typingEvent, stopTypingEvent:
		// Typing is best-effort: malformed payloads are dropped without
		// feedback, exactly like stale ones.
		var payload RoomPayload
		if err := json.Unmarshal(env.Data, &payload); err != nil {
			return
		}
		h.coordinator.Typing(ctx, connID, payload.RoomKey, env.Event == stopTypingEvent)

	case closeRoomEvent:
		payload, ok := h.roomPayload(ctx, sink, env.Data)
		if !ok {
			return
		}
		h.coordinator.CloseRoom(ctx, connID, payload.RoomKey)

	default:
		h.reject(ctx, sink, "Unknown event")
	}
}

// roomPayload decodes and validates a {roomKey} payload. A key that
// cannot possibly name a room is reported the same way as a missing one.
func (h *Handler) roomPayload(ctx context.Context, sink *Sink, data json.RawMessage) (RoomPayload, bool) {
	var payload RoomPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		h.reject(ctx, sink, "Invalid payload")
		return RoomPayload{}, false
	}
	if err := h.validate.Struct(payload); err != nil {
		h.reject(ctx, sink, "Room not found")
		return RoomPayload{}, false
	}
	return payload, true
}

// reject pushes an error event through the connection's own sink so it
// is serialized with the rest of the outbound traffic.
func (h *Handler) reject(ctx context.Context, sink *Sink, message string) {
	_ = sink.Consume(ctx, event.Error{Message: message})
}

// writePump serializes all writes to the connection: outbound events
// from the sink plus keepalive pings.
func (h *Handler) writePump(ctx context.Context, conn *websocket.Conn, sink *Sink) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case e := <-sink.Events():
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(OutboundEnvelope{Event: e.EventType(), Data: e}); err != nil {
				h.log.Debug("Write failed, dropping connection", "error", err)
				_ = conn.Close()
				return
			}

		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				_ = conn.Close()
				return
			}
		}
	}
}

func (h *Handler) track(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns[conn] = struct{}{}
}

func (h *Handler) untrack(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.conns, conn)
}

// CloseAll tears down every live connection during shutdown. Each read
// loop then unwinds through its normal disconnect path.
func (h *Handler) CloseAll() {
	h.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(h.conns))
	for conn := range h.conns {
		conns = append(conns, conn)
	}
	h.mu.Unlock()

	for _, conn := range conns {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
			time.Now().Add(writeWait))
		_ = conn.Close()
	}
	h.log.Info("Closed client connections", "count", len(conns))
}

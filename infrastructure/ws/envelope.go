package ws

import (
	"encoding/json"

	"popchat/domain/event"
)

// Client event names accepted on the wire.
const (
	createRoomEvent  = "createRoom"
	joinRoomEvent    = "joinRoom"
	sendMessageEvent = "sendMessage"
	typingEvent      = "typing"
	stopTypingEvent  = "stopTyping"
	closeRoomEvent   = "closeRoom"
)

// Envelope is the inbound frame: {"event": "...", "data": {...}}.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// OutboundEnvelope mirrors the inbound shape for server events.
type OutboundEnvelope struct {
	Event event.Type        `json:"event"`
	Data  event.DomainEvent `json:"data"`
}

// RoomPayload addresses an existing room (join, typing, close).
type RoomPayload struct {
	RoomKey string `json:"roomKey" validate:"required,len=6,numeric"`
}

// SendPayload carries a chat message. ReplyTo is an opaque reference and
// is forwarded as-is.
type SendPayload struct {
	RoomKey string `json:"roomKey" validate:"required,len=6,numeric"`
	Message string `json:"message" validate:"required"`
	ReplyTo string `json:"replyTo" validate:"omitempty,max=128"`
}

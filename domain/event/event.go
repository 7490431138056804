// Package event defines the outbound events broadcast to room members.
// Event payloads are JSON-tagged because they go on the wire verbatim.
package event

import "time"

type Type string

const (
	RoomCreatedType    Type = "roomCreated"
	RoomJoinedType     Type = "roomJoined"
	ErrorType          Type = "error"
	UserJoinedType     Type = "userJoined"
	NewMessageType     Type = "newMessage"
	UserTypingType     Type = "userTyping"
	UserStopTypingType Type = "userStopTyping"
	UserLeftType       Type = "userLeft"
	AdminChangedType   Type = "adminChanged"
	RoomClosedType     Type = "roomClosed"
)

type DomainEvent interface {
	EventType() Type
}

// RoomCreated is sent to the creator only.
type RoomCreated struct {
	RoomKey   string `json:"roomKey"`
	Username  string `json:"username"`
	IsAdmin   bool   `json:"isAdmin"`
	UserCount int    `json:"userCount"`
}

// RoomJoined is sent to the joiner only and carries the full bounded
// history in insertion order.
type RoomJoined struct {
	RoomKey   string       `json:"roomKey"`
	Username  string       `json:"username"`
	IsAdmin   bool         `json:"isAdmin"`
	UserCount int          `json:"userCount"`
	Messages  []NewMessage `json:"messages"`
}

// Error is sent to the invoking connection only, never broadcast.
type Error struct {
	Message string `json:"message"`
}

type UserJoined struct {
	Username  string    `json:"username"`
	Timestamp time.Time `json:"timestamp"`
	UserCount int       `json:"userCount"`
}

// NewMessage is broadcast to everyone in the room, sender included.
// ReplyTo is forwarded verbatim even when it matches no stored message.
type NewMessage struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	ReplyTo   string    `json:"replyTo,omitempty"`
}

type UserTyping struct {
	Username string `json:"username"`
}

type UserStopTyping struct {
	Username string `json:"username"`
}

type UserLeft struct {
	Username  string    `json:"username"`
	Timestamp time.Time `json:"timestamp"`
	UserCount int       `json:"userCount"`
}

type AdminChanged struct {
	NewAdminID string `json:"newAdminId"`
	Message    string `json:"message"`
}

type RoomClosed struct {
	Message string `json:"message"`
}

func (RoomCreated) EventType() Type    { return RoomCreatedType }
func (RoomJoined) EventType() Type     { return RoomJoinedType }
func (Error) EventType() Type          { return ErrorType }
func (UserJoined) EventType() Type     { return UserJoinedType }
func (NewMessage) EventType() Type     { return NewMessageType }
func (UserTyping) EventType() Type     { return UserTypingType }
func (UserStopTyping) EventType() Type { return UserStopTypingType }
func (UserLeft) EventType() Type       { return UserLeftType }
func (AdminChanged) EventType() Type   { return AdminChangedType }
func (RoomClosed) EventType() Type     { return RoomClosedType }

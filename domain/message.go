package domain

import (
	"time"

	"github.com/google/uuid"
)

// Message represents an immutable chat event stored in a room's history.
// ReplyTo is an opaque reference to a prior message id; it is stored and
// broadcast verbatim and never validated against the history.
type Message struct {
	ID        uuid.UUID
	Author    string
	Content   string
	ReplyTo   string
	CreatedAt time.Time
}

func NewMessage(author, content, replyTo string) Message {
	return Message{
		ID:        uuid.New(),
		Author:    author,
		Content:   content,
		ReplyTo:   replyTo,
		CreatedAt: time.Now().UTC(),
	}
}

// Package ws is the WebSocket transport: it upgrades connections, feeds
// inbound envelopes to the coordinator, and pumps outbound events back.
package ws

import (
	"context"

	"popchat/domain/event"
)

// Sink is one connection's outbound buffer.
// Consume is called by the gateway; the connection's write pump drains
// the channel. A full buffer drops the event rather than stalling the
// broadcast; delivery is best-effort.
type Sink struct {
	events chan event.DomainEvent
}

func NewSink(bufferSize int) *Sink {
	return &Sink{events: make(chan event.DomainEvent, bufferSize)}
}

func (s *Sink) Consume(ctx context.Context, e event.DomainEvent) error {
	select {
	case s.events <- e:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}

func (s *Sink) Events() <-chan event.DomainEvent {
	return s.events
}

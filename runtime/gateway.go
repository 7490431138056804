package runtime

import (
	"context"
	"log/slog"
	"time"

	"popchat/contract"
	"popchat/domain"
	"popchat/domain/event"
)

// Gateway is the routing facade between registry outcomes and live
// connections. It holds no room state; callers pass the membership
// snapshot their operation produced. Delivery is best-effort with a
// per-sink timeout so one slow connection cannot stall a broadcast.
type Gateway struct {
	log         *slog.Logger
	sessions    *Sessions
	sinkTimeout time.Duration
}

func NewGateway(log *slog.Logger, sessions *Sessions, sinkTimeout time.Duration) *Gateway {
	return &Gateway{log: log, sessions: sessions, sinkTimeout: sinkTimeout}
}

// EmitTo delivers an event to a single connection.
func (g *Gateway) EmitTo(ctx context.Context, conn domain.ConnectionID, e event.DomainEvent) {
	sink, ok := g.sessions.Get(conn)
	if !ok {
		g.log.Debug("Dropping event for gone connection", "type", e.EventType())
		return
	}
	g.consume(ctx, sink, e)
}

// EmitToConns fans an event out to the given membership snapshot.
func (g *Gateway) EmitToConns(ctx context.Context, conns []domain.ConnectionID, e event.DomainEvent) {
	for _, sink := range g.sessions.SinksFor(conns) {
		g.consume(ctx, sink, e)
	}
}

func (g *Gateway) consume(ctx context.Context, sink contract.EventSink, e event.DomainEvent) {
	deliverCtx, cancel := context.WithTimeout(ctx, g.sinkTimeout)
	defer cancel()
	if err := sink.Consume(deliverCtx, e); err != nil {
		g.log.Warn("Sink delivery failed", "type", e.EventType(), "error", err)
	}
}

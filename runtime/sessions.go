// Package runtime coordinates rooms, sessions, and event propagation.
// It orchestrates the system without containing business logic or domain rules.
package runtime

import (
	"sync"

	"popchat/contract"
	"popchat/domain"
)

// Sessions is the directory of live connections. Each connection owns
// exactly one sink for its lifetime; membership in rooms is tracked by
// the room registry, so a connection's sink is managed in a single place.
type Sessions struct {
	mu    sync.RWMutex
	sinks map[domain.ConnectionID]contract.EventSink
}

func NewSessions() *Sessions {
	return &Sessions{sinks: make(map[domain.ConnectionID]contract.EventSink)}
}

// Subscribe registers the connection's outbound channel.
func (s *Sessions) Subscribe(conn domain.ConnectionID, sink contract.EventSink) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sinks[conn] = sink
}

// Unsubscribe drops the connection. Safe to call twice; the second call
// is a no-op.
func (s *Sessions) Unsubscribe(conn domain.ConnectionID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sinks, conn)
}

func (s *Sessions) Get(conn domain.ConnectionID) (contract.EventSink, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sink, ok := s.sinks[conn]
	return sink, ok
}

// SinksFor resolves connections into live sinks, skipping connections
// that disappeared since the caller took its snapshot.
func (s *Sessions) SinksFor(conns []domain.ConnectionID) []contract.EventSink {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var active []contract.EventSink
	for _, conn := range conns {
		if sink, ok := s.sinks[conn]; ok {
			active = append(active, sink)
		}
	}
	return active
}

func (s *Sessions) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sinks)
}

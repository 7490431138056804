// Package observability aggregates service gauges for the heartbeat log
// and the debug endpoint.
package observability

import (
	"runtime"
	"sync/atomic"
	"time"
)

// Stats is a point-in-time snapshot of the service.
type Stats struct {
	ActiveRooms       int    `json:"active_rooms"`
	ActiveConnections int64  `json:"active_connections"`
	RoomsCreated      uint64 `json:"rooms_created"`
	RoomsClosed       uint64 `json:"rooms_closed"`
	MessagesBroadcast uint64 `json:"messages_broadcast"`
	AllocMemMb        uint64 `json:"alloc_mem_mb"`
	NumGC             uint32 `json:"num_gc"`
	UptimeSeconds     int64  `json:"uptime_seconds"`
}

// Monitor holds atomic counters updated on the hot path; reading a
// snapshot never blocks an operation.
type Monitor struct {
	started           time.Time
	roomsCreated      atomic.Uint64
	roomsClosed       atomic.Uint64
	messagesBroadcast atomic.Uint64
	connections       atomic.Int64
}

func NewMonitor() *Monitor {
	return &Monitor{started: time.Now().UTC()}
}

func (m *Monitor) RoomCreated()      { m.roomsCreated.Add(1) }
func (m *Monitor) RoomRemoved()      { m.roomsClosed.Add(1) }
func (m *Monitor) MessageBroadcast() { m.messagesBroadcast.Add(1) }
func (m *Monitor) ConnectionOpened() { m.connections.Add(1) }
func (m *Monitor) ConnectionClosed() { m.connections.Add(-1) }

// Snapshot merges the counters with Go memory stats. The active room
// count comes from the registry, which owns that truth.
func (m *Monitor) Snapshot(activeRooms int) Stats {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	return Stats{
		ActiveRooms:       activeRooms,
		ActiveConnections: m.connections.Load(),
		RoomsCreated:      m.roomsCreated.Load(),
		RoomsClosed:       m.roomsClosed.Load(),
		MessagesBroadcast: m.messagesBroadcast.Load(),
		AllocMemMb:        mem.Alloc / 1024 / 1024,
		NumGC:             mem.NumGC,
		UptimeSeconds:     int64(time.Since(m.started).Seconds()),
	}
}

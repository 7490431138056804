package observability

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMonitor_Counters(t *testing.T) {
	req := require.New(t)
	monitor := NewMonitor()

	monitor.RoomCreated()
	monitor.RoomCreated()
	monitor.RoomRemoved()
	monitor.MessageBroadcast()
	monitor.ConnectionOpened()
	monitor.ConnectionOpened()
	monitor.ConnectionClosed()

	stats := monitor.Snapshot(1)

	req.Equal(1, stats.ActiveRooms)
	req.Equal(int64(1), stats.ActiveConnections)
	req.Equal(uint64(2), stats.RoomsCreated)
	req.Equal(uint64(1), stats.RoomsClosed)
	req.Equal(uint64(1), stats.MessagesBroadcast)
	req.GreaterOrEqual(stats.UptimeSeconds, int64(0))
}

package workers

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/shirou/gopsutil/process"

	"popchat/observability"
)

// RoomCounter is the slice of the registry the heartbeat needs.
type RoomCounter interface {
	ActiveRooms() int
}

// HeartbeatWorker periodically logs service gauges together with the
// process's own RSS/CPU so a drifting room count or a leak shows up in
// the logs without any external tooling.
type HeartbeatWorker struct {
	log      *slog.Logger
	monitor  *observability.Monitor
	rooms    RoomCounter
	interval time.Duration
}

func NewHeartbeatWorker(log *slog.Logger, monitor *observability.Monitor,
	rooms RoomCounter, interval time.Duration) *HeartbeatWorker {
	return &HeartbeatWorker{log: log, monitor: monitor, rooms: rooms, interval: interval}
}

func (w *HeartbeatWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Stopping heartbeat worker")
			return ctx.Err()
		case <-ticker.C:
			rss, cpu, status, err := selfStats(p)
			if err != nil {
				w.log.Error("Failed to collect self stats", "err", err)
				continue
			}

			stats := w.monitor.Snapshot(w.rooms.ActiveRooms())
			w.log.Info("Service heartbeat",
				"rooms", stats.ActiveRooms,
				"connections", stats.ActiveConnections,
				"rooms_created", stats.RoomsCreated,
				"rooms_closed", stats.RoomsClosed,
				"messages", stats.MessagesBroadcast,
				"alloc_mb", stats.AllocMemMb,
				"num_gc", stats.NumGC,
				"rss_bytes", rss,
				"cpu_percent", cpu,
				"pid_status", status,
			)
		}
	}
}

// selfStats retrieves technical metrics (Memory, CPU, and OS Status) for the given process.
func selfStats(p *process.Process) (uint64, float64, string, error) {
	memInfo, err := p.MemoryInfo()
	if err != nil {
		return 0, 0, "", err
	}

	cpuPercent, err := p.CPUPercent()
	if err != nil {
		return 0, 0, "", err
	}

	status, err := p.Status()
	if err != nil {
		return 0, 0, "", err
	}
	return memInfo.RSS, cpuPercent, status, nil
}

package internal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// StatsProvider returns the payload served on /debug/stats.
type StatsProvider func() map[string]any

// DebugServer exposes /healthz and /debug/stats on a private port. Room
// keys appear in the stats, so this listener must never be public.
type DebugServer struct {
	log    *slog.Logger
	server *http.Server
}

func NewDebugServer(log *slog.Logger, port int, stats StatsProvider) *DebugServer {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "ok")
	})

	mux.HandleFunc("/debug/stats", func(w http.ResponseWriter, _ *http.Request) {
		payload := map[string]any{}
		if stats != nil {
			payload = stats()
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			log.Error("Failed to encode debug stats", "error", err)
		}
	})

	return &DebugServer{
		log: log,
		server: &http.Server{
			Addr:    fmt.Sprintf("0.0.0.0:%d", port),
			Handler: mux,
		},
	}
}

// Run serves until the context is canceled, then shuts down gracefully.
// It satisfies the Worker contract so the supervisor owns its lifecycle.
func (d *DebugServer) Run(ctx context.Context) error {
	errChan := make(chan error, 1)
	go func() {
		d.log.Info("Starting debug server", "address", d.server.Addr)
		if err := d.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = d.server.Shutdown(shutdownCtx)
		return nil
	case err := <-errChan:
		return err
	}
}

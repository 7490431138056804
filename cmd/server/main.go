package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"

	"popchat/infrastructure/ws"
	"popchat/internal"
	"popchat/observability"
	"popchat/runtime"
	"popchat/runtime/workers"
)

// Exit codes to provide meaningful status to the operating system or service manager (e.g., systemd).
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

func main() {
	// The main function acts as a thin wrapper.
	// Its only responsibility is to call run() and handle the OS exit code.
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Server terminated with error: %v\n", err)
	}
	os.Exit(code)
}

// run initializes all components, manages the server lifecycle, and centralizes error reporting.
// Returning instead of calling os.Exit directly lets every defer fire and
// keeps the wiring testable.
func run() (int, error) {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}
	port := config.ResolvePort(os.Args[1:])

	logger := logs.GetLoggerFromString(config.LogLevel)

	// 2. Context & Signals
	// NotifyContext captures OS signals and cancels the context to trigger a shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Core wiring
	monitor := observability.NewMonitor()
	registry := runtime.NewRegistry(logger)
	sessions := runtime.NewSessions()
	gateway := runtime.NewGateway(logger, sessions, config.SinkTimeout)
	coordinator := runtime.NewCoordinator(logger, registry, sessions, gateway, monitor)
	handler := ws.NewHandler(logger, coordinator, config.ConnectionBufferSize, config.MaxContentLength)

	// 4. Supervised background workers
	statsProvider := func() map[string]any {
		return map[string]any{
			"stats": monitor.Snapshot(registry.ActiveRooms()),
			"rooms": registry.Rooms(),
		}
	}
	sup := workers.NewSupervisor(logger, config.RestartInterval)
	sup.Add(
		workers.NewHeartbeatWorker(logger, monitor, registry, config.MetricInterval),
		internal.NewDebugServer(logger, config.DebugPort, statsProvider),
	)
	go sup.Run(ctx)

	// 5. HTTP server exposing the WebSocket endpoint
	mux := http.NewServeMux()
	mux.Handle("/ws", handler)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "ok")
	})

	address := fmt.Sprintf("%s:%d", config.Host, port)
	server := &http.Server{Addr: address, Handler: mux}

	errChan := make(chan error, 1)
	go func() {
		logger.Info("Starting chat server", "address", address, "at", time.Now().UTC())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	// 6. Wait for Stop or Error
	// The execution blocks here until either a signal is received or the server crashes.
	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	case err := <-errChan:
		return exitRuntime, err
	}

	// 7. Final Cleanup (Graceful Shutdown)
	// Stop accepting upgrades first, then push close frames to live
	// clients so each connection unwinds through its disconnect path.
	logger.Info("Shutting down gracefully...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("HTTP shutdown incomplete", "error", err)
	}
	handler.CloseAll()
	sup.Stop()
	logger.Info("Program stopped cleanly")

	return exitOK, nil
}

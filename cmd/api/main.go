package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spacesedan/brandpulse/config"
	"github.com/spacesedan/brandpulse/internal/jobs"
	"github.com/spacesedan/brandpulse/internal/logging"
	"github.com/spacesedan/brandpulse/internal/pipeline"
	"github.com/spacesedan/brandpulse/internal/server"
)

func main() {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "dev"
	}
	config.LoadEnv(env)

	cfg, err := config.Load()
	logging.InitLogger(cfg.LogLevel)
	if err != nil {
		slog.Error("[API] Invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps, err := pipeline.Build(ctx, cfg)
	if err != nil {
		slog.Error("[API] Failed to initialize dependencies", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer deps.Close()

	manager := jobs.NewManager(deps.JobStore, deps.Pipeline.Run)
	srv := server.NewServer(cfg.Server, cfg.Limits, deps.Store, manager, deps.Health)

	go func() {
		slog.Info("[API] Starting HTTP server", slog.String("addr", srv.Addr()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("[API] HTTP server error", slog.String("error", err.Error()))
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("[API] Shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("[API] HTTP server shutdown error", slog.String("error", err.Error()))
	}

	// jobs are not cancellable; give running ones the shutdown window to finish
	done := make(chan struct{})
	go func() {
		manager.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-shutdownCtx.Done():
		slog.Warn("[API] Exiting with jobs still running")
	}

	slog.Info("[API] Shutdown complete")
}

package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"thirdcoast.systems/cutroom/cmd/web/auth"
	"thirdcoast.systems/cutroom/cmd/web/internal/editors"
	"thirdcoast.systems/cutroom/cmd/web/internal/web"
	"thirdcoast.systems/cutroom/internal/backend"
	"thirdcoast.systems/cutroom/internal/config"
	"thirdcoast.systems/cutroom/internal/editor"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	slog.Info("Starting web service")

	conf, err := config.LoadConfig(ctx)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	client := backend.NewClient(conf.BackendURL, backend.WithUploadTimeout(conf.UploadTimeout))
	delays := editor.Delays{
		Settings: conf.Debounce.Settings,
		Filter:   conf.Debounce.Filter,
		Scrub:    conf.Debounce.Scrub,
		Seek:     conf.Debounce.Seek,
	}

	registry := editors.NewRegistry(func(id string) *editor.Coordinator {
		return editor.New(client, editor.Options{
			Delays: delays,
			Logger: slog.Default().With("editor_id", id),
		})
	}, conf.SessionIdleTimeout)
	go registry.Run(ctx, time.Minute)

	// Initialize session manager
	sessionMgr := auth.NewSessionManager(conf.SessionSecret, 7*24*time.Hour)

	e, err := web.NewWebserver(ctx, sessionMgr, registry, conf.UploadLimit())
	if err != nil {
		slog.Error("failed to create webserver", "error", err)
		os.Exit(1)
	}

	addr := ":" + strconv.Itoa(conf.WebServerPort)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = e.Shutdown(shutdownCtx)
	}()

	slog.Info("Listening", "addr", addr, "backend", client.BaseURL())
	if err := e.Start(addr); err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		// Echo returns an error on Shutdown; treat it as normal if context is done.
		if ctx.Err() != nil {
			return
		}
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

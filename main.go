package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/aaronzipp/grimoire/internal/config"
	"github.com/aaronzipp/grimoire/internal/game"
	"github.com/aaronzipp/grimoire/internal/handlers"
	"github.com/aaronzipp/grimoire/internal/history"
	"github.com/aaronzipp/grimoire/internal/logger"
	"github.com/aaronzipp/grimoire/internal/script"
	"github.com/aaronzipp/grimoire/internal/service"
	"github.com/aaronzipp/grimoire/internal/sse"
	"github.com/aaronzipp/grimoire/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		l := zerolog.New(os.Stderr).With().Timestamp().Logger()
		l.Fatal().Err(err).Msg("load config")
	}
	log := logger.New(cfg.LogLevel, cfg.LogPretty)

	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func run(cfg config.Config, log zerolog.Logger) error {
	scripts, err := script.LoadBuiltin()
	if err != nil {
		return err
	}
	if !scripts.SetDefault(cfg.DefaultScript) {
		log.Warn().Str("script_id", cfg.DefaultScript).Msg("unknown default script, keeping built-in default")
	}
	log.Info().Int("scripts", len(scripts.List())).Msg("loaded scripts")

	archive, err := history.Open(cfg.HistoryDBPath)
	if err != nil {
		return err
	}
	defer archive.Close()

	rooms := store.NewRoomStore()
	hub := sse.NewHub(log, cfg.BroadcastTimeout)
	svc := service.New(rooms, game.NewEngine(scripts), hub, archive, log)
	hub.SetSource(svc)

	// Streams watch their request context, so cancelling the base context ends them on shutdown.
	baseCtx, cancelBase := context.WithCancel(context.Background())
	defer cancelBase()
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handlers.New(svc, hub, log, cfg.PublicBaseURL).Routes(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return baseCtx },
	}
	srv.RegisterOnShutdown(cancelBase)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errs := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.Addr).Str("public_url", cfg.PublicBaseURL).Msg("server starting")
		errs <- srv.ListenAndServe()
	}()

	select {
	case err := <-errs:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info().Int("rooms", rooms.Len()).Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}

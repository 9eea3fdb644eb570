package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	router "github.com/meetwire/rtms/internal/adapters/http"
	"github.com/meetwire/rtms/internal/adapters/media"
	signaling "github.com/meetwire/rtms/internal/adapters/signal"
	"github.com/meetwire/rtms/internal/adapters/ws"
	"github.com/meetwire/rtms/internal/app"
	"github.com/meetwire/rtms/internal/config"
	"github.com/meetwire/rtms/internal/core"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Initialize zerolog global logger early so config.Load can use it.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	// Human-friendly output for terminal; in production you may want JSON only.
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	if cfg.Mode == "debug" {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	dialer := &ws.GorillaDialer{
		HandshakeTimeout: cfg.HandshakeTimeout,
		ReadLimit:        cfg.ReadLimit,
	}
	sinks := logSinks()

	sigMgr := &signaling.Manager{
		Dialer:   dialer,
		Sinks:    sinks,
		ClientID: cfg.ClientID,
		Secret:   cfg.ClientSecret,
	}
	medMgr := &media.Manager{
		Dialer:   dialer,
		Sinks:    sinks,
		ClientID: cfg.ClientID,
		Secret:   cfg.ClientSecret,
	}

	reg := app.NewRegistry()
	orch := app.NewOrchestrator(ctx, reg, sigMgr, medMgr)
	if cfg.ReconnectDelay > 0 {
		orch.ReconnectDelay = cfg.ReconnectDelay
	}
	sigMgr.Hooks = orch
	medMgr.Hooks = orch

	r := router.SetupRouter(cfg, orch, reg)
	addr := fmt.Sprintf(":%d", cfg.Port)

	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("rtms receiver started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")
	orch.ShutdownAll()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited gracefully")
}

// logSinks wires the default observability-only consumers. Real deployments
// replace these with whatever stores or forwards the streams.
func logSinks() *core.Sinks {
	return &core.Sinks{
		OnAudio: func(f core.MediaFrame) {
			log.Debug().Str("module", "sink").Str("user", string(f.Sender.ID)).Int("bytes", len(f.Data)).Msg("audio frame")
		},
		OnVideo: func(f core.MediaFrame) {
			log.Debug().Str("module", "sink").Str("user", string(f.Sender.ID)).Int("bytes", len(f.Data)).Msg("video frame")
		},
		OnScreenShare: func(f core.MediaFrame) {
			log.Debug().Str("module", "sink").Str("user", string(f.Sender.ID)).Int("bytes", len(f.Data)).Msg("screen share frame")
		},
		OnTranscript: func(m core.TextMessage) {
			log.Info().Str("module", "sink").Str("user", m.Sender.Name).Str("text", m.Text).Msg("transcript")
		},
		OnChat: func(m core.TextMessage) {
			log.Info().Str("module", "sink").Str("user", m.Sender.Name).Str("text", m.Text).Msg("chat")
		},
		OnEvent: func(kind int, detail []byte) {
			log.Info().Str("module", "sink").Int("kind", kind).Msg("auxiliary event")
		},
	}
}

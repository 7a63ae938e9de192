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

	router "github.com/campuschat/campuschat/internal/adapters/http"
	wssignal "github.com/campuschat/campuschat/internal/adapters/signal"
	"github.com/campuschat/campuschat/internal/app"
	"github.com/campuschat/campuschat/internal/auth"
	"github.com/campuschat/campuschat/internal/config"
	"github.com/campuschat/campuschat/internal/storage"
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
	if cfg.Secret == "" {
		log.Warn().Msg("secret not set; tokens are signed with an empty key")
	}

	store, err := storage.Open(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open storage")
	}
	defer store.Close()

	tokens := auth.NewManager(cfg.Secret, cfg.TokenTTL)

	reg := app.NewRegistry()
	hub := app.NewRouter(reg, store)
	presence := app.NewPresence(reg, store)
	calls := app.NewBroker(reg)
	go calls.Run(ctx, cfg.CallTTL, cfg.CallSweep)

	ws := &wssignal.Controller{
		Registry:   reg,
		Router:     hub,
		Presence:   presence,
		Calls:      calls,
		Verifier:   tokens,
		Directory:  store,
		Limiter:    wssignal.NewMessageRateLimiter(cfg.MsgLimit, cfg.MsgWindow),
		ReadLimit:  cfg.ReadLimit,
		PingPeriod: cfg.PingPeriod,
	}

	handlers := &router.Handlers{
		Store:     store,
		Auth:      tokens,
		Hub:       hub,
		UploadDir: cfg.UploadDir,
	}

	r := router.SetupRouter(ctx, cfg, handlers, ws)
	addr := fmt.Sprintf(":%d", cfg.Port)

	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("campuschat server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited gracefully")
}

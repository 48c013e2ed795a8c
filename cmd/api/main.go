package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/freeeve/repertoire/internal/config"
	"github.com/freeeve/repertoire/internal/httpapi"
	"github.com/freeeve/repertoire/internal/logx"
	"github.com/freeeve/repertoire/internal/metrics"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		logger := logx.NewLogger("info")
		logger.Fatal().Err(err).Msg("load config")
	}

	var (
		addr     = flag.String("addr", cfg.Addr, "listen address")
		tmpDir   = flag.String("tmp-dir", os.TempDir(), "directory for staged uploads")
		logLevel = flag.String("log-level", cfg.LogLevel, "debug, info, warn or error")
	)
	flag.Parse()
	cfg.Addr = *addr

	logger := logx.NewLogger(*logLevel).With().Str("instance", uuid.NewString()).Logger()

	srv := newServer(cfg, logger, metrics.NewManager(), *tmpDir)

	go func() {
		logger.Info().
			Str("addr", srv.Addr).
			Int("depth", cfg.Depth).
			Int("max_upload_mb", cfg.MaxUploadMB).
			Msg("api listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("api server")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("http server shutdown error")
	}
	logger.Info().Msg("shutdown complete")
}

func newServer(cfg *config.Config, logger zerolog.Logger, m *metrics.Manager, tmpDir string) *http.Server {
	return &http.Server{
		Addr:         cfg.Addr,
		Handler:      httpapi.NewRouter(logger, cfg, m, tmpDir),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

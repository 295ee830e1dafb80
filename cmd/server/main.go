// Command server runs the newsletter HTTP API together with the background
// issue delivery worker. All dependencies are wired here at startup; nothing
// is shared through globals.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/abd0-omar/newzletter/internal/config"
	httpapi "github.com/abd0-omar/newzletter/internal/http"
	"github.com/abd0-omar/newzletter/internal/mailer/resend"
	"github.com/abd0-omar/newzletter/internal/observability"
	"github.com/abd0-omar/newzletter/internal/repo"
	"github.com/abd0-omar/newzletter/internal/worker"
)

// version is stamped at build time via -ldflags.
var version = "dev"

func main() {
	// Local development convenience; a missing .env is not an error.
	_ = godotenv.Load()

	cfg := config.MustLoad()
	setupLogging(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, version)
	if err != nil {
		log.Fatal().Err(err).Msg("otel setup failed")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownOTel(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("otel shutdown failed")
		}
	}()

	db, err := repo.OpenSQLite(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("db_path", cfg.DBPath).Msg("open database failed")
	}
	if err := repo.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("migrate database failed")
	}

	sender := resend.New(resend.Config{
		APIKey:      cfg.Email.ResendAPIKey,
		SenderEmail: cfg.Email.SenderEmail,
		SenderName:  cfg.Email.SenderName,
	})

	w := worker.New(db, sender, log.With().Str("component", "delivery_worker").Logger())
	w.IdleInterval = cfg.Worker.IdleInterval
	w.RetryInterval = cfg.Worker.RetryInterval
	go w.Run(ctx)

	gin.SetMode(cfg.GinMode)
	r := gin.New()
	httpapi.RegisterRoutes(r, db, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http server shutdown failed")
	}
}

// setupLogging configures the global zerolog logger from the loaded config.
func setupLogging(cfg config.Config) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339Nano
	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}

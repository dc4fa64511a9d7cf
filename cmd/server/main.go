package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/rajkumar-hr-ps/webhook-poc/internal/apidocs"
	"github.com/rajkumar-hr-ps/webhook-poc/internal/config"
	"github.com/rajkumar-hr-ps/webhook-poc/internal/database"
	"github.com/rajkumar-hr-ps/webhook-poc/internal/logger"
	"github.com/rajkumar-hr-ps/webhook-poc/internal/repo"
	"github.com/rajkumar-hr-ps/webhook-poc/internal/server"
	"github.com/rajkumar-hr-ps/webhook-poc/internal/service"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.LogLevel, cfg.IsLocal())
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	if !cfg.IsLocal() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.StoreDriver).Msg("open store")
	}
	defer store.Close()

	docs, err := apidocs.Load(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("load api docs")
	}

	webhooks := service.NewWebhookService(store, log.With().Str("component", "webhook").Logger())
	records := service.NewRecordService(store, log.With().Str("component", "records").Logger())
	srv := server.New(cfg, log, webhooks, records, docs).HTTPServer()

	done := make(chan struct{})
	go func() {
		defer close(done)
		<-ctx.Done()
		log.Info().Msg("shutting down gracefully, press Ctrl+C again to force")
		stop()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("server forced to shutdown")
		}
	}()

	log.Info().Str("addr", srv.Addr).Str("store", cfg.StoreDriver).Msg("webhook server listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("http server error")
	}

	<-done
	log.Info().Msg("graceful shutdown complete")
}

func openStore(ctx context.Context, cfg config.Config, log zerolog.Logger) (repo.Store, error) {
	if cfg.StoreDriver != config.StorePostgres {
		return repo.NewMemoryStore(), nil
	}
	if err := database.Migrate(cfg.DB, log); err != nil {
		return nil, err
	}
	db, err := database.New(ctx, cfg.DB, log)
	if err != nil {
		return nil, err
	}
	return repo.NewPostgresStore(db), nil
}

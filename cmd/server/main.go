// Command server runs the profile review API.
//
// Startup order: environment, config, logging, tracing, database, photo
// storage, AI client, HTTP router, then the listener with graceful shutdown.
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

	_ "github.com/rizzlab/go-review-backend/docs"
	"github.com/rizzlab/go-review-backend/internal/ai"
	"github.com/rizzlab/go-review-backend/internal/config"
	httpapi "github.com/rizzlab/go-review-backend/internal/http"
	"github.com/rizzlab/go-review-backend/internal/observability"
	"github.com/rizzlab/go-review-backend/internal/repo"
	"github.com/rizzlab/go-review-backend/internal/services"
	"github.com/rizzlab/go-review-backend/internal/storage"
	"github.com/rizzlab/go-review-backend/internal/sysutil"
)

// version is stamped at build time via -ldflags.
var version = "dev"

// @title           RizzLab Review API
// @version         1.0
// @description     Community-reviewed dating profiles: versioned profiles, reviewer preferences, matching, reviews, a weekly leaderboard, and AI coaching.
// @BasePath        /api/v1
//
// @securityDefinitions.apikey BearerAuth
// @in   header
// @name Authorization
func main() {
	// .env is optional; real environments set variables directly.
	_ = godotenv.Load()

	cfg := config.MustLoad()
	sysutil.SetLogLevel(cfg.LogLevel)
	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
	gin.SetMode(cfg.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, version)
	if err != nil {
		log.Fatal().Err(err).Msg("otel setup failed")
	}
	defer func() {
		cctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownOTel(cctx); err != nil {
			log.Warn().Err(err).Msg("otel shutdown failed")
		}
	}()

	db, err := repo.OpenSQLite(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("database open failed")
	}
	if err := repo.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("database migration failed")
	}

	var photos storage.PhotoStore
	if cfg.S3.Bucket != "" {
		photos = storage.NewS3Store(cfg.S3.Region, cfg.S3.Bucket, cfg.S3.AccessKey, cfg.S3.SecretKey)
	} else {
		log.Warn().Msg("S3_BUCKET not set, photo uploads will fail")
	}

	var generator services.TextGenerator
	if cfg.AI.GeminiAPIKey != "" {
		client, err := ai.NewGeminiClient(ctx, cfg.AI.GeminiAPIKey, cfg.AI.GeminiModel)
		if err != nil {
			log.Fatal().Err(err).Msg("gemini client setup failed")
		}
		defer client.Close()
		generator = client
	} else {
		log.Warn().Msg("GEMINI_API_KEY not set, AI analysis disabled")
	}

	engine := gin.New()
	httpapi.RegisterRoutes(engine, db, photos, generator, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           engine,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Str("version", version).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}

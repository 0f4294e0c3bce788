package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/noteloft/noteloft-server/internal/api"
	"github.com/noteloft/noteloft-server/internal/auth"
	"github.com/noteloft/noteloft-server/internal/config"
	"github.com/noteloft/noteloft-server/internal/platform/logger"
	"github.com/noteloft/noteloft-server/internal/secrets"
	"github.com/noteloft/noteloft-server/internal/store"
	"github.com/noteloft/noteloft-server/internal/store/postgres"
	"github.com/noteloft/noteloft-server/internal/store/sqlite"
)

func main() {
	log := logger.New("noteloft-service")

	cfg, err := config.New()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	log.Info().
		Str("environment", string(cfg.Environment)).
		Str("db_driver", cfg.DBDriver).
		Int("http_port", cfg.HTTPPort).
		Msg("noteloft service starting")

	// -------- Storage --------
	var db *sql.DB
	var st store.Store
	switch cfg.DBDriver {
	case "postgres":
		db, err = postgres.Open(cfg.PostgresDSN)
		if err != nil {
			log.Fatal().Err(err).Msg("postgres unavailable")
		}
		if err := postgres.Migrate(db); err != nil {
			log.Fatal().Err(err).Msg("postgres migration failed")
		}
		st = postgres.New(db)
	case "sqlite":
		db, err = sqlite.Open(cfg.SQLitePath)
		if err != nil {
			log.Fatal().Err(err).Msg("sqlite unavailable")
		}
		if err := sqlite.Migrate(db); err != nil {
			log.Fatal().Err(err).Msg("sqlite migration failed")
		}
		st = sqlite.New(db)
	default:
		log.Fatal().Str("db_driver", cfg.DBDriver).Msg("unsupported DB driver")
	}

	// -------- Vault encryption key --------
	// Production refuses to start without a key; elsewhere an ephemeral key is
	// generated so local setups work, at the cost of vault entries becoming
	// unreadable across restarts.
	encKey := cfg.EncryptionKey
	if encKey == "" {
		if cfg.IsProduction() {
			log.Fatal().Msg("NOTELOFT_ENCRYPTION_KEY is required in production")
		}
		encKey, err = secrets.GenerateKey()
		if err != nil {
			log.Fatal().Err(err).Msg("failed to generate ephemeral encryption key")
		}
		log.Warn().Msg("NOTELOFT_ENCRYPTION_KEY not set; using an ephemeral key, vault entries will not survive a restart")
	}
	enc, err := secrets.New(encKey)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid encryption key")
	}

	// -------- Sessions --------
	jwtSecret := cfg.JWTSecret
	if jwtSecret == "" {
		log.Warn().Msg("NOTELOFT_JWT_SECRET not set; using an ephemeral secret, sessions will not survive a restart")
		jwtSecret, err = secrets.GenerateKey()
		if err != nil {
			log.Fatal().Err(err).Msg("failed to generate ephemeral JWT secret")
		}
	}
	sessions := auth.NewSessions(jwtSecret, time.Duration(cfg.SessionTTLMinutes)*time.Minute)

	// -------- Router & server --------
	router := api.NewRouter(st, sessions, enc, db, log)
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Int("port", cfg.HTTPPort).Msg("HTTP server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")
	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}
	log.Info().Msg("server exited")
}

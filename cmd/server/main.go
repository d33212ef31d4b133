package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/danushadhitya/file-manager/internal/api"
	"github.com/danushadhitya/file-manager/internal/api/handlers"
	"github.com/danushadhitya/file-manager/internal/api/middleware"
	"github.com/danushadhitya/file-manager/internal/config"
	"github.com/danushadhitya/file-manager/internal/logging"
	"github.com/danushadhitya/file-manager/internal/registry"
	"github.com/danushadhitya/file-manager/internal/repositories"
	"github.com/danushadhitya/file-manager/internal/sweeper"
)

// @title File Manager API
// @version 1.0
// @description Stores uploaded files in an S3-compatible bucket and tracks their metadata in Postgres.
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-KEY
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger, err := logging.New(cfg.Environment)
	if err != nil {
		log.Fatalf("Could not build logger: %v", err)
	}
	defer logger.Sync()

	db, err := repositories.NewDatabase(cfg.DBURL)
	if err != nil {
		logger.Fatal("database setup failed", zap.Error(err))
	}
	fileRepo := repositories.NewFileRepository(db)
	objects := repositories.NewObjectStorage(cfg.S3)

	reg := registry.New(objects, fileRepo, registry.Options{
		MaxUploadSize: cfg.MaxUploadSize,
		PresignTTL:    cfg.PresignTTL,
	}, logger)

	var auth middleware.Authorizer = middleware.NewStaticKeyAuthorizer(cfg.APIKey)
	if cfg.AuthMode == "jwt" {
		auth = middleware.NewJWTAuthorizer(cfg.JWTSecret)
	}

	if cfg.SweepInterval > 0 {
		sw := sweeper.New(objects, fileRepo, sweeper.Options{}, logger)
		go sw.RunEvery(context.Background(), cfg.SweepInterval)
	}

	handler := api.SetupRouter(handlers.NewFileHandler(reg, logger), auth, cfg.CorsConfig, logger)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Port),
		Handler: handler,
		// Timeouts prevent resource exhaustion from slow clients
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	logger.Info("starting file-manager server", zap.String("port", cfg.Port))

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

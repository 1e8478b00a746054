package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/pnedelko/user-service/internal/config"
	"github.com/pnedelko/user-service/internal/db"
	"github.com/pnedelko/user-service/internal/httpserver"
	"github.com/pnedelko/user-service/internal/logging"
	"github.com/pnedelko/user-service/internal/middleware"
	"github.com/pnedelko/user-service/internal/mykafka"
	"github.com/pnedelko/user-service/internal/notify"
	"github.com/pnedelko/user-service/internal/repo"
	"github.com/pnedelko/user-service/internal/search"
	"github.com/pnedelko/user-service/internal/service"
	"github.com/pnedelko/user-service/internal/storage"
)

func main() {
	cfg := config.Load()
	config.MustNonEmptyBytes(cfg.JWTSecret, "JWT_SECRET")
	config.MustNonEmpty(cfg.DatabaseURL, "DATABASE_URL")

	logger := logging.New(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	database, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("database init: %v", err)
	}

	producer := mykafka.NewProducer(cfg.KafkaBrokers)

	esClient, err := search.NewClient(cfg.ESURL, cfg.ESUser, cfg.ESPassword)
	if err != nil {
		log.Fatalf("elasticsearch init: %v", err)
	}

	store, err := storage.New(ctx, storage.Options{
		Region:       cfg.S3Region,
		AccessKey:    cfg.S3AccessKey,
		SecretKey:    cfg.S3SecretKey,
		Bucket:       cfg.S3Bucket,
		BaseEndpoint: cfg.S3BaseEndpoint,
		Folder:       cfg.StorageFolder,
	})
	if err != nil {
		log.Fatalf("object storage init: %v", err)
	}

	gormRepo := &repo.GormRepo{DB: database}

	tokenSvc := &service.TokenService{
		Repo:       gormRepo,
		Secret:     cfg.JWTSecret,
		AccessTTL:  cfg.AccessTokenTTL,
		RefreshTTL: cfg.RefreshTokenTTL,
	}
	authSvc := &service.AuthService{
		Repo:             gormRepo,
		Tokens:           tokenSvc,
		Notify:           &notify.KafkaNotifier{Producer: producer, Topic: cfg.NotificationTopic},
		FrontendEndpoint: cfg.FrontendEndpoint,
		ResetCodeTTL:     cfg.ResetCodeTTL,
	}
	userSvc := &service.UserService{
		Repo:    gormRepo,
		Indexer: &search.UserIndexer{ES: esClient, Index: cfg.ESIndex},
	}

	if cfg.AdminPassword != "" {
		if err := userSvc.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
			log.Fatalf("admin seed: %v", err)
		}
	}

	e := echo.New()
	e.HideBanner = true
	e.Pre(echomw.RemoveTrailingSlash())
	e.Use(echomw.Recover(), echomw.RequestID(), middleware.RequestLogger(logger))

	deps := httpserver.Deps{
		AuthHandler:   &httpserver.AuthHTTP{Svc: authSvc},
		UserHandler:   &httpserver.UserHTTP{Svc: userSvc, ES: esClient, ESIndex: cfg.ESIndex},
		UploadHandler: &httpserver.UploadHTTP{Storage: store},
		Guard:         &middleware.TokenGuard{Tokens: tokenSvc, Repo: gormRepo},
	}
	httpserver.Register(e, &deps)

	go pruneRevoked(ctx, gormRepo, logger)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("http server error: %v", err)
			stop()
		}
	}()
	logger.Info("server started", "port", cfg.ServerPort)

	<-ctx.Done()
	log.Println("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}

	if sqlDB, err := database.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Printf("db close error: %v", err)
		}
	} else {
		log.Printf("db() error: %v", err)
	}

	if err := producer.Close(); err != nil {
		log.Printf("kafka close error: %v", err)
	}

	log.Println("shutdown complete")
}

// pruneRevoked drops revocation records whose tokens expired; they no
// longer affect validation either way.
func pruneRevoked(ctx context.Context, r *repo.GormRepo, logger *slog.Logger) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := r.PruneRevoked(ctx, time.Now().UTC())
			if err != nil {
				logger.Error("revocation prune failed", "error", err)
				continue
			}
			if n > 0 {
				logger.Info("revocation records pruned", "count", n)
			}
		}
	}
}

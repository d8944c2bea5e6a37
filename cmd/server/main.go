package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	redisv9 "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"screenshot_backend/internal/app/config"
	"screenshot_backend/internal/app/di"
	"screenshot_backend/internal/app/router"
	authadapters "screenshot_backend/internal/feature/auth/adapters"
	authentity "screenshot_backend/internal/feature/auth/domain/entity"
	authhandler "screenshot_backend/internal/feature/auth/transport/handler"
	authusecase "screenshot_backend/internal/feature/auth/usecase"
	profileadapters "screenshot_backend/internal/feature/profile/adapters"
	profilehandler "screenshot_backend/internal/feature/profile/transport/handler"
	profileusecase "screenshot_backend/internal/feature/profile/usecase"
	"screenshot_backend/internal/feature/screenshot/adapters/gemini"
	"screenshot_backend/internal/feature/screenshot/adapters/vision"
	screenshotentity "screenshot_backend/internal/feature/screenshot/domain/entity"
	screenshothandler "screenshot_backend/internal/feature/screenshot/transport/handler"
	screenshotusecase "screenshot_backend/internal/feature/screenshot/usecase"
	platformdb "screenshot_backend/internal/platform/db"
	infrahttp "screenshot_backend/internal/platform/http"
	platformhandler "screenshot_backend/internal/platform/http/handler"
	jwtmw "screenshot_backend/internal/platform/jwt"
	"screenshot_backend/internal/platform/metrics"
	platformredis "screenshot_backend/internal/platform/redis"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.Load()
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// db
	db, err := platformdb.ConnectWithRetry(platformdb.BuildDSN(cfg.DB), cfg.DBConnectTimeout, platformdb.PostgresOpener)
	if err != nil {
		return err
	}
	defer closeDB(db)
	if cfg.RunMigrations {
		if err := platformdb.Migrate(db, &authentity.User{}, &authentity.Profile{}, &screenshotentity.Analysis{}); err != nil {
			return err
		}
	}

	// Redis（任意）
	var rdb *redisv9.Client
	if cfg.Redis.Host == "" {
		slog.Warn("REDIS_HOST is not set. Running without cache.")
	} else if tmp, err := platformredis.NewRedisClient(ctx, cfg.Redis); err != nil {
		slog.Warn("Redis unavailable. Running without cache.", "error", err)
	} else {
		rdb = tmp
		defer func() {
			if err := rdb.Close(); err != nil {
				slog.Error("Failed to close Redis client", "error", err)
			}
		}()
	}

	// JWT_SECRETチェック
	if cfg.JWTSecret == "" {
		slog.Warn("JWT_SECRET is not set. Logins will fail until a strong secret is configured.")
	}

	m := metrics.New()
	publisher := di.NewEventPublisher(cfg.KafkaBroker, cfg.KafkaTopic)
	defer func() {
		if err := publisher.Close(); err != nil {
			slog.Error("Failed to close Kafka writer", "error", err)
		}
	}()

	// Repository
	userRepo := authadapters.NewUserGorm(db)
	profileRepo := profileadapters.NewProfileGorm(db)
	analysisRepo := di.NewAnalysisRepository(db, rdb, cfg.AnalysisCacheTTL)

	// Usecase
	verifier := di.NewIdentityVerifier(ctx, cfg.GoogleClientID, infrahttp.NewHTTPClient(cfg.GoogleVerifyTimeout))
	authUC := authusecase.NewAuthUsecase(userRepo, verifier, jwtmw.NewGenerator(cfg.JWTSecret, cfg.JWTExpiration),
		authusecase.WithVerifyTimeout(cfg.GoogleVerifyTimeout),
		authusecase.WithEventPublisher(publisher),
	)
	profileUC := profileusecase.NewProfileUsecase(profileRepo)
	analysisUC := screenshotusecase.NewAnalysisUsecase(analysisRepo)

	// Handler
	handlers := router.Handlers{
		Auth:     authhandler.NewAuthHandler(authUC, m),
		Profile:  profilehandler.NewProfileHandler(profileUC),
		Analysis: screenshothandler.NewAnalysisHandler(analysisUC),
		Health:   platformhandler.Health(healthChecks(db, rdb)),
		Metrics:  m,
	}
	if cfg.CaptionEnabled {
		captionH, closeCaption, err := newCaptionHandler(ctx, cfg)
		if err != nil {
			slog.Warn("Caption backends unavailable. /caption is disabled.", "error", err)
		} else {
			handlers.Caption = captionH
			defer closeCaption()
		}
	}

	// ルータ生成
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router.NewRouter(handlers, cfg.JWTSecret),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func newCaptionHandler(ctx context.Context, cfg config.Config) (*screenshothandler.CaptionHandler, func(), error) {
	labeler, err := vision.NewVisionLabeler(ctx)
	if err != nil {
		return nil, nil, err
	}
	describer, err := gemini.NewGeminiDescriber(ctx, cfg.GeminiModel)
	if err != nil {
		_ = labeler.Close()
		return nil, nil, err
	}
	archiver := di.NewArchiver(ctx, cfg.Minio)
	uc := screenshotusecase.NewCaptionUsecase(labeler, describer, archiver)

	closeFn := func() {
		if err := labeler.Close(); err != nil {
			slog.Error("Failed to close vision client", "error", err)
		}
	}
	return screenshothandler.NewCaptionHandler(uc), closeFn, nil
}

func healthChecks(db *gorm.DB, rdb *redisv9.Client) map[string]platformhandler.Check {
	checks := map[string]platformhandler.Check{
		"db": func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}
	if rdb != nil {
		checks["redis"] = func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		}
	}
	return checks
}

func closeDB(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		return
	}
	if err := sqlDB.Close(); err != nil {
		slog.Error("Failed to close database", "error", err)
	}
}

// Package config は環境変数（と任意の .env ファイル）からアプリケーション設定を読み込みます。
package config

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"screenshot_backend/internal/platform/db"
	"screenshot_backend/internal/platform/redis"
	"screenshot_backend/internal/platform/storage"
)

// Config holds all service configuration.
type Config struct {
	Port string

	DB               db.Config
	DBConnectTimeout time.Duration
	RunMigrations    bool

	JWTSecret     string
	JWTExpiration time.Duration

	Redis            redis.Config
	AnalysisCacheTTL time.Duration

	GoogleClientID      string
	GoogleVerifyTimeout time.Duration

	CaptionEnabled bool
	GeminiModel    string

	Minio storage.Config

	KafkaBroker string
	KafkaTopic  string
}

// Load は .env があれば読み込み（既存の環境変数は上書きしない）、設定を組み立てます。
func Load() Config {
	loadDotEnv(".env")

	return Config{
		Port: getenv("PORT", "8080"),

		DB:               db.LoadConfigFromEnv(),
		DBConnectTimeout: getduration("DB_CONNECT_TIMEOUT", 30*time.Second),
		RunMigrations:    getbool("RUN_MIGRATIONS", true),

		JWTSecret:     os.Getenv("JWT_SECRET"),
		JWTExpiration: getduration("JWT_EXPIRATION", 24*time.Hour),

		Redis: redis.Config{
			Host:     os.Getenv("REDIS_HOST"),
			Port:     getenv("REDIS_PORT", "6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
		},
		AnalysisCacheTTL: getduration("ANALYSIS_CACHE_TTL", 10*time.Minute),

		GoogleClientID:      os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleVerifyTimeout: getduration("GOOGLE_VERIFY_TIMEOUT", 5*time.Second),

		CaptionEnabled: getbool("CAPTION_ENABLED", false),
		GeminiModel:    os.Getenv("GEMINI_MODEL"),

		Minio: storage.Config{
			Endpoint:  os.Getenv("MINIO_ENDPOINT"),
			AccessKey: os.Getenv("MINIO_ACCESS_KEY"),
			SecretKey: os.Getenv("MINIO_SECRET_KEY"),
			Bucket:    getenv("MINIO_BUCKET", "screenshots"),
			UseSSL:    getbool("MINIO_USE_SSL", false),
		},

		KafkaBroker: os.Getenv("KAFKA_BROKER"),
		KafkaTopic:  getenv("KAFKA_TOPIC", "account-events"),
	}
}

func loadDotEnv(path string) {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return
		}
		slog.Warn("failed to load env file", "path", path, "error", err)
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getduration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		slog.Warn("invalid duration, using default", "key", key, "value", v, "default", fallback)
		return fallback
	}
	return d
}

func getbool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		slog.Warn("invalid bool, using default", "key", key, "value", v, "default", fallback)
		return fallback
	}
	return b
}

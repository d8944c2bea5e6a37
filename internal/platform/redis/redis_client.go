// Package redis はアプリケーション用の go-redis クライアントを生成します。
package redis

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const pingTimeout = 3 * time.Second

// Config はRedis接続設定です。Host が空の場合は Redis を使用しません。
type Config struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// Addr は host:port を返します。
func (c Config) Addr() string {
	port := c.Port
	if port == "" {
		port = "6379"
	}
	return c.Host + ":" + port
}

// NewRedisClient はクライアントを生成し、PINGで接続を確認します。
func NewRedisClient(ctx context.Context, cfg Config) (*redis.Client, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("redis host is not configured")
	}
	addr := cfg.Addr()
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// 接続確認
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		slog.Error("Redis connection failed", "address", addr, "error", err)
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}

	slog.Info("Redis connection successful", "address", addr)
	return rdb, nil
}

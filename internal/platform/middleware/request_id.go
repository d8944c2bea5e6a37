// Package middleware はルーター全体に適用するginミドルウェアを提供します。
package middleware

import (
	"log/slog"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestIDHeader はリクエストIDを受け渡すHTTPヘッダーです。
const RequestIDHeader = "X-Request-ID"

const requestIDKey = "request_id"

// RequestID はリクエストIDをコンテキストとレスポンスヘッダーに設定します。
// クライアントが送ったIDがあればそれを使い、なければUUIDを生成します。
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(RequestIDHeader))
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

// RequestIDFrom returns the request id set by RequestID, or "".
func RequestIDFrom(c *gin.Context) string {
	return c.GetString(requestIDKey)
}

// RequestLogger はリクエストごとにステータスと処理時間をログ出力します。5xxはErrorで出力します。
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		attrs := []any{
			"method", c.Request.Method,
			"route", route,
			"status", status,
			"duration_ms", time.Since(start).Milliseconds(),
			"remote_addr", c.ClientIP(),
			"request_id", RequestIDFrom(c),
		}
		if status >= 500 {
			slog.Error("request failed", attrs...)
			return
		}
		slog.Info("request handled", attrs...)
	}
}

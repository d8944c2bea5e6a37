// Package router はginエンジンとルーティングを組み立てます。
package router

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	authhandler "screenshot_backend/internal/feature/auth/transport/handler"
	profilehandler "screenshot_backend/internal/feature/profile/transport/handler"
	screenshothandler "screenshot_backend/internal/feature/screenshot/transport/handler"
	platformhandler "screenshot_backend/internal/platform/http/handler"
	jwtmw "screenshot_backend/internal/platform/jwt"
	"screenshot_backend/internal/platform/metrics"
	"screenshot_backend/internal/platform/middleware"
)

// Handlers はルーターに登録するハンドラー群です。Caption が nil の場合 /caption は登録しません。
type Handlers struct {
	Auth     *authhandler.AuthHandler
	Profile  *profilehandler.ProfileHandler
	Analysis *screenshothandler.AnalysisHandler
	Caption  *screenshothandler.CaptionHandler
	Health   gin.HandlerFunc
	Metrics  *metrics.Metrics
}

// corsConfig はモバイルアプリとWebからの呼び出しを許可します。プリフライトは 200 を返します。
func corsConfig() cors.Config {
	return cors.Config{
		AllowAllOrigins:           true,
		AllowMethods:              []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowHeaders:              []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:             []string{middleware.RequestIDHeader},
		OptionsResponseStatusCode: http.StatusOK,
	}
}

func NewRouter(h Handlers, jwtSecret string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger())
	// CORS: すべてのオリジンを許可
	r.Use(cors.New(corsConfig()))
	if h.Metrics != nil {
		r.Use(h.Metrics.Instrumentation())
		r.GET("/metrics", h.Metrics.Handler())
	}

	// Origin なしの OPTIONS も 200 で空のレスポンスを返す
	r.OPTIONS("/*path", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	// 認証不要
	// 導通確認用
	health := h.Health
	if health == nil {
		health = platformhandler.Health(nil)
	}
	r.GET("/healthz", health)
	r.HEAD("/healthz", health)

	// 新規ユーザー登録（空のプロフィールも作成）
	r.POST("/register", h.Auth.Register)
	// ログイン（JWT 発行）
	r.POST("/login", h.Auth.Login)
	// Googleサインイン
	r.POST("/google-login", h.Auth.GoogleLogin)

	// スクリーンショット解析結果
	r.POST("/analyze", h.Analysis.Save)
	r.GET("/analyze", h.Analysis.Lookup)
	if h.Caption != nil {
		r.POST("/caption", h.Caption.Caption)
	}

	// 認証必須のルート
	// → リクエストヘッダーに JWT が必要になる
	auth := r.Group("/profile")
	auth.Use(jwtmw.AuthRequired(jwtSecret))
	{
		auth.GET("", h.Profile.GetProfile)
		auth.PUT("", h.Profile.UpdateProfile)
	}

	return r
}

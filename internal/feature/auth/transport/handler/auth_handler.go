// Package handler はauthフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"screenshot_backend/internal/feature/auth/domain/entity"
	"screenshot_backend/internal/feature/auth/transport/http/dto"
	"screenshot_backend/internal/feature/auth/usecase"
	"screenshot_backend/internal/platform/middleware"
)

const (
	msgInvalidRequest     = "Invalid request"
	msgInvalidCredentials = "Invalid email or password"
	msgInvalidToken       = "Invalid or unverified Google token"
	msgServerError        = "Server error"
)

// AuthUsecase は認証操作のユースケースを定義します。
// Goの慣例に従い、インターフェースはプロバイダー（usecase）ではなくコンシューマー（handler）が定義します。
type AuthUsecase interface {
	// Register はユーザーと空のプロフィールを作成します。
	Register(ctx context.Context, in usecase.RegisterInput) (*entity.User, error)
	// LoginWithPassword はメールアドレスとパスワードでログインします。
	LoginWithPassword(ctx context.Context, email, password string) (entity.AuthOutcome, error)
	// LoginWithGoogle はGoogleのIDトークンでログインします。
	LoginWithGoogle(ctx context.Context, token string) (entity.AuthOutcome, error)
	// SessionToken は認証済みユーザーのJWTを発行します。
	SessionToken(user *entity.User) (string, error)
}

// OutcomeRecorder counts login and registration results per flow.
type OutcomeRecorder interface {
	ObserveAuth(flow, result string)
}

type nopRecorder struct{}

func (nopRecorder) ObserveAuth(string, string) {}

// AuthHandler は認証操作のHTTPリクエストを処理します。
type AuthHandler struct {
	auth    AuthUsecase
	metrics OutcomeRecorder
}

// NewAuthHandler はAuthHandlerの新しいインスタンスを生成します。
// metrics が nil の場合は計測しません。
func NewAuthHandler(auth AuthUsecase, metrics OutcomeRecorder) *AuthHandler {
	if metrics == nil {
		metrics = nopRecorder{}
	}
	return &AuthHandler{auth: auth, metrics: metrics}
}

// Register はユーザー登録APIエンドポイントを処理します。
// - バリデーションエラー時は400を返却
// - ユーザー名またはメールアドレスの重複時は409を返却
// - 成功時は201を返却
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterReq
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("register validation failed", "error", err, "remote_addr", c.ClientIP(), "request_id", middleware.RequestIDFrom(c))
		h.metrics.ObserveAuth("register", "invalid")
		c.JSON(http.StatusBadRequest, dto.Failure(msgInvalidRequest))
		return
	}

	user, err := h.auth.Register(c.Request.Context(), usecase.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		status, message := registerError(err)
		if status == http.StatusInternalServerError {
			slog.Error("register failed", "error", err, "remote_addr", c.ClientIP(), "request_id", middleware.RequestIDFrom(c))
			h.metrics.ObserveAuth("register", "error")
		} else {
			slog.Warn("register rejected", "error", err, "remote_addr", c.ClientIP(), "request_id", middleware.RequestIDFrom(c))
			h.metrics.ObserveAuth("register", "rejected")
		}
		c.JSON(status, dto.Failure(message))
		return
	}

	slog.Info("user registered", "user_id", user.ID, "remote_addr", c.ClientIP(), "request_id", middleware.RequestIDFrom(c))
	h.metrics.ObserveAuth("register", "created")
	c.JSON(http.StatusCreated, dto.AuthRes{
		Success: true,
		Message: "User registered successfully",
		User:    userRes(user),
	})
}

func registerError(err error) (int, string) {
	switch {
	case errors.Is(err, usecase.ErrUsernameRequired):
		return http.StatusBadRequest, "Username is required"
	case errors.Is(err, usecase.ErrEmailRequired):
		return http.StatusBadRequest, "Email is required"
	case errors.Is(err, usecase.ErrPasswordRequired):
		return http.StatusBadRequest, "Password is required"
	case errors.Is(err, usecase.ErrPasswordTooLong):
		return http.StatusBadRequest, "Password is too long"
	case errors.Is(err, usecase.ErrUsernameTaken):
		return http.StatusConflict, "Username already exists"
	case errors.Is(err, usecase.ErrEmailTaken):
		return http.StatusConflict, "Email already exists"
	case errors.Is(err, usecase.ErrDuplicateUser):
		return http.StatusConflict, "User already exists"
	default:
		return http.StatusInternalServerError, msgServerError
	}
}

// Login はパスワードログインAPIエンドポイントを処理します。
// - バリデーションエラー時は400を返却
// - 認証失敗時は401を返却（メール未登録とパスワード不一致は区別しない）
// - ストア障害時は500を返却
// - 認証成功時はJWTトークン付きで200を返却
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("login validation failed", "error", err, "remote_addr", c.ClientIP(), "request_id", middleware.RequestIDFrom(c))
		h.metrics.ObserveAuth("password", "invalid")
		c.JSON(http.StatusBadRequest, dto.Failure(msgInvalidRequest))
		return
	}

	outcome, err := h.auth.LoginWithPassword(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.serverError(c, "password", "login failed", err)
		return
	}
	h.respond(c, "password", outcome, "Login successful")
}

// GoogleLogin はGoogleのIDトークンによるログインAPIエンドポイントを処理します。
// 初回ログインではアカウントを作成し、同じメールアドレスのパスワードアカウントには紐付けます。
func (h *AuthHandler) GoogleLogin(c *gin.Context) {
	var req dto.GoogleLoginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("google login validation failed", "error", err, "remote_addr", c.ClientIP(), "request_id", middleware.RequestIDFrom(c))
		h.metrics.ObserveAuth("google", "invalid")
		c.JSON(http.StatusBadRequest, dto.Failure("Google token is required"))
		return
	}

	outcome, err := h.auth.LoginWithGoogle(c.Request.Context(), req.GoogleToken)
	if err != nil {
		h.serverError(c, "google", "google login failed", err)
		return
	}

	message := "Login successful"
	switch outcome.Kind {
	case entity.OutcomeCreated:
		message = "Account created"
	case entity.OutcomeLinked:
		message = "Google account linked"
	}
	h.respond(c, "google", outcome, message)
}

// respond は認証結果をHTTPレスポンスに変換します。
func (h *AuthHandler) respond(c *gin.Context, flow string, outcome entity.AuthOutcome, message string) {
	if outcome.IsRejected() {
		slog.Warn("login rejected", "flow", flow, "reason", outcome.Reason, "remote_addr", c.ClientIP(), "request_id", middleware.RequestIDFrom(c))
		h.metrics.ObserveAuth(flow, string(entity.OutcomeRejected))
		switch outcome.Reason {
		case entity.ReasonMalformedRequest:
			c.JSON(http.StatusBadRequest, dto.Failure(msgInvalidRequest))
		case entity.ReasonInvalidToken:
			c.JSON(http.StatusUnauthorized, dto.Failure(msgInvalidToken))
		default:
			c.JSON(http.StatusUnauthorized, dto.Failure(msgInvalidCredentials))
		}
		return
	}

	token, err := h.auth.SessionToken(outcome.User)
	if err != nil {
		h.serverError(c, flow, "session token failed", err)
		return
	}

	slog.Info("user login successful", "flow", flow, "outcome", outcome.Kind, "user_id", outcome.User.ID,
		"remote_addr", c.ClientIP(), "request_id", middleware.RequestIDFrom(c))
	h.metrics.ObserveAuth(flow, string(outcome.Kind))
	c.JSON(http.StatusOK, dto.AuthRes{
		Success: true,
		Message: message,
		Token:   token,
		User:    userRes(outcome.User),
	})
}

// serverError は内部エラーの詳細をクライアントに返さずに500を返します。
func (h *AuthHandler) serverError(c *gin.Context, flow, msg string, err error) {
	attrs := []any{"flow", flow, "error", err, "remote_addr", c.ClientIP(), "request_id", middleware.RequestIDFrom(c)}
	if errors.Is(err, usecase.ErrIntegrityViolation) {
		slog.Error("integrity violation: identity matched more than one user", attrs...)
	} else {
		slog.Error(msg, attrs...)
	}
	h.metrics.ObserveAuth(flow, "error")
	c.JSON(http.StatusInternalServerError, dto.Failure(msgServerError))
}

func userRes(u *entity.User) *dto.UserRes {
	return &dto.UserRes{Email: u.Email, Name: u.Username}
}

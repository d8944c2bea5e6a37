// Package handler はprofileフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"screenshot_backend/internal/feature/profile/transport/http/dto"
	"screenshot_backend/internal/feature/profile/usecase"
	jwtmw "screenshot_backend/internal/platform/jwt"
	"screenshot_backend/internal/platform/middleware"
)

// ProfileUsecase はプロフィール操作のユースケースを定義します。
type ProfileUsecase interface {
	Get(ctx context.Context, userID uint) (*usecase.ProfileView, error)
	Update(ctx context.Context, userID uint, in usecase.UpdateInput) error
}

// ProfileHandler は認証済みユーザーのプロフィールを扱います。jwtmw.AuthRequired の後ろに置きます。
type ProfileHandler struct {
	profile ProfileUsecase
}

// NewProfileHandler はProfileHandlerの新しいインスタンスを生成します。
func NewProfileHandler(profile ProfileUsecase) *ProfileHandler {
	return &ProfileHandler{profile: profile}
}

// GetProfile は GET /profile を処理します。
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	userID, ok := jwtmw.UserIDFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, dto.MessageRes{Message: "Unauthorized"})
		return
	}

	view, err := h.profile.Get(c.Request.Context(), userID)
	if err != nil {
		h.fail(c, "get profile failed", userID, err)
		return
	}

	res := dto.ProfileRes{
		ID:       view.ID,
		Username: view.Username,
		Email:    view.Email,
		Phone:    view.Phone,
		Adresse:  view.Adresse,
	}
	if view.Birthday != nil {
		res.Birthday = view.Birthday.Format(usecase.BirthdayLayout)
	}
	c.JSON(http.StatusOK, res)
}

// UpdateProfile は PUT /profile を処理します。
func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	userID, ok := jwtmw.UserIDFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, dto.MessageRes{Message: "Unauthorized"})
		return
	}

	var req dto.UpdateProfileReq
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("profile update validation failed", "error", err, "remote_addr", c.ClientIP(), "request_id", middleware.RequestIDFrom(c))
		c.JSON(http.StatusBadRequest, dto.MessageRes{Message: "Invalid request"})
		return
	}

	in := usecase.UpdateInput{
		Phone:         req.Phone,
		Adresse:       req.Adresse,
		Birthday:      req.Birthday.Value,
		ClearBirthday: req.Birthday.Present && req.Birthday.Value == nil,
	}
	if err := h.profile.Update(c.Request.Context(), userID, in); err != nil {
		h.fail(c, "update profile failed", userID, err)
		return
	}

	slog.Info("profile updated", "user_id", userID, "request_id", middleware.RequestIDFrom(c))
	c.JSON(http.StatusOK, dto.MessageRes{Success: true, Message: "Profile updated successfully"})
}

func (h *ProfileHandler) fail(c *gin.Context, msg string, userID uint, err error) {
	switch {
	case errors.Is(err, usecase.ErrInvalidBirthday):
		c.JSON(http.StatusBadRequest, dto.MessageRes{Message: "Invalid birthday, expected YYYY-MM-DD"})
	case errors.Is(err, usecase.ErrUserNotFound):
		c.JSON(http.StatusNotFound, dto.MessageRes{Message: "User not found"})
	case errors.Is(err, usecase.ErrProfileNotFound):
		c.JSON(http.StatusNotFound, dto.MessageRes{Message: "Profile not found"})
	default:
		slog.Error(msg, "user_id", userID, "error", err, "remote_addr", c.ClientIP(), "request_id", middleware.RequestIDFrom(c))
		c.JSON(http.StatusInternalServerError, dto.MessageRes{Message: "Server error"})
	}
}

// Package handler はscreenshotフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"screenshot_backend/internal/feature/screenshot/domain/entity"
	"screenshot_backend/internal/feature/screenshot/transport/http/dto"
	"screenshot_backend/internal/feature/screenshot/usecase"
	"screenshot_backend/internal/platform/middleware"
)

// AnalysisUsecase は解析結果の保存と検索のユースケースを定義します。
// Goの慣例に従い、インターフェースは利用者（handler）側で定義します。
type AnalysisUsecase interface {
	Save(ctx context.Context, a entity.Analysis) (*entity.Analysis, bool, error)
	FindByImageURI(ctx context.Context, imageURI string) (*entity.Analysis, error)
	SearchByTag(ctx context.Context, tag string) ([]entity.Analysis, error)
}

// AnalysisHandler は /analyze のHTTPリクエストを処理します。
type AnalysisHandler struct {
	uc AnalysisUsecase
}

// NewAnalysisHandler はAnalysisHandlerの新しいインスタンスを生成します。
func NewAnalysisHandler(uc AnalysisUsecase) *AnalysisHandler {
	return &AnalysisHandler{uc: uc}
}

// Save は解析結果を保存します。同じ imageUri が既にあれば既存の結果を返します。
//
// エンドポイント: POST /analyze
// 新規保存時は 201、既存の場合は 200 を返します。
func (h *AnalysisHandler) Save(c *gin.Context) {
	var req dto.AnalysisReq
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("analysis request validation failed", "error", err, "remote_addr", c.ClientIP(), "request_id", middleware.RequestIDFrom(c))
		c.JSON(http.StatusBadRequest, dto.ErrorRes{Error: "imageUri is required"})
		return
	}

	saved, created, err := h.uc.Save(c.Request.Context(), req.Entity())
	if err != nil {
		if errors.Is(err, usecase.ErrImageURIRequired) {
			c.JSON(http.StatusBadRequest, dto.ErrorRes{Error: "imageUri is required"})
			return
		}
		h.serverError(c, "save analysis failed", err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
		slog.Info("analysis saved", "id", saved.ID, "request_id", middleware.RequestIDFrom(c))
	}
	c.JSON(status, dto.FromEntity(saved))
}

// Lookup は imageUri または tag で解析結果を検索します。
//
// エンドポイント: GET /analyze?imageUri=... | GET /analyze?tag=...
// imageUri が優先されます。
func (h *AnalysisHandler) Lookup(c *gin.Context) {
	if uri, ok := c.GetQuery("imageUri"); ok {
		h.findByImageURI(c, uri)
		return
	}
	if tag, ok := c.GetQuery("tag"); ok {
		h.searchByTag(c, tag)
		return
	}
	c.JSON(http.StatusBadRequest, dto.ErrorRes{Error: "No search parameter provided"})
}

func (h *AnalysisHandler) findByImageURI(c *gin.Context, uri string) {
	a, err := h.uc.FindByImageURI(c.Request.Context(), uri)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, dto.FromEntity(a))
	case errors.Is(err, usecase.ErrAnalysisNotFound), errors.Is(err, usecase.ErrImageURIRequired):
		c.JSON(http.StatusOK, dto.NotAnalyzedRes{AlreadyAnalyzed: false})
	default:
		h.serverError(c, "find analysis failed", err)
	}
}

func (h *AnalysisHandler) searchByTag(c *gin.Context, tag string) {
	results, err := h.uc.SearchByTag(c.Request.Context(), tag)
	if err != nil {
		if errors.Is(err, usecase.ErrTagRequired) {
			c.JSON(http.StatusBadRequest, dto.ErrorRes{Error: "tag is required"})
			return
		}
		h.serverError(c, "search analyses failed", err)
		return
	}

	out := make([]dto.AnalysisRes, 0, len(results))
	for i := range results {
		out = append(out, dto.FromEntity(&results[i]))
	}
	c.JSON(http.StatusOK, out)
}

func (h *AnalysisHandler) serverError(c *gin.Context, msg string, err error) {
	slog.Error(msg, "error", err, "remote_addr", c.ClientIP(), "request_id", middleware.RequestIDFrom(c))
	c.JSON(http.StatusInternalServerError, dto.ErrorRes{Error: "Server error"})
}

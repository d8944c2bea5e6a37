package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"screenshot_backend/internal/feature/screenshot/domain/entity"
	"screenshot_backend/internal/feature/screenshot/transport/http/dto"
	"screenshot_backend/internal/feature/screenshot/usecase"
	"screenshot_backend/internal/platform/middleware"
)

// multipartOverhead はフォームの境界やヘッダー分の余裕です。
const multipartOverhead = 1 << 20

// CaptionUsecase は画像キャプション生成のユースケースを定義します。
type CaptionUsecase interface {
	Caption(ctx context.Context, image []byte) (*entity.Caption, error)
}

// CaptionHandler は /caption のHTTPリクエストを処理します。
type CaptionHandler struct {
	uc CaptionUsecase
}

// NewCaptionHandler はCaptionHandlerの新しいインスタンスを生成します。
func NewCaptionHandler(uc CaptionUsecase) *CaptionHandler {
	return &CaptionHandler{uc: uc}
}

// Caption はアップロードされた画像のキャプションとタグを英語・フランス語で返します。
//
// エンドポイント: POST /caption
// Content-Type: multipart/form-data
// フィールド: image（画像ファイル、最大10MB）
func (h *CaptionHandler) Caption(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, usecase.MaxImageSize+multipartOverhead)

	file, err := c.FormFile("image")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusBadRequest, dto.ErrorRes{Error: "image exceeds 10MB"})
			return
		}
		slog.Warn("画像ファイルの取得に失敗", "error", err, "remote_addr", c.ClientIP(), "request_id", middleware.RequestIDFrom(c))
		c.JSON(http.StatusBadRequest, dto.ErrorRes{Error: "image file is required"})
		return
	}
	if file.Size > usecase.MaxImageSize {
		c.JSON(http.StatusBadRequest, dto.ErrorRes{Error: "image exceeds 10MB"})
		return
	}

	f, err := file.Open()
	if err != nil {
		slog.Error("画像ファイルのオープンに失敗", "error", err)
		c.JSON(http.StatusInternalServerError, dto.ErrorRes{Error: "failed to read image"})
		return
	}
	defer func() {
		if err := f.Close(); err != nil {
			slog.Warn("画像ファイルのクローズに失敗", "error", err)
		}
	}()

	image, err := io.ReadAll(f)
	if err != nil {
		slog.Error("画像データの読み取りに失敗", "error", err)
		c.JSON(http.StatusInternalServerError, dto.ErrorRes{Error: "failed to read image"})
		return
	}

	caption, err := h.uc.Caption(c.Request.Context(), image)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrImageEmpty):
			c.JSON(http.StatusBadRequest, dto.ErrorRes{Error: "image file is empty"})
		case errors.Is(err, usecase.ErrImageTooLarge):
			c.JSON(http.StatusBadRequest, dto.ErrorRes{Error: "image exceeds 10MB"})
		case errors.Is(err, usecase.ErrUnsupportedImage):
			c.JSON(http.StatusBadRequest, dto.ErrorRes{Error: "unsupported image type"})
		case errors.Is(err, usecase.ErrCaptionUnavailable):
			slog.Error("キャプション生成に失敗", "error", err, "request_id", middleware.RequestIDFrom(c))
			c.JSON(http.StatusBadGateway, dto.ErrorRes{Error: "caption failed"})
		default:
			slog.Error("キャプション生成に失敗", "error", err, "request_id", middleware.RequestIDFrom(c))
			c.JSON(http.StatusInternalServerError, dto.ErrorRes{Error: "Server error"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.CaptionRes{
		Caption:   caption.Caption,
		CaptionFR: caption.CaptionFR,
		TagsEN:    caption.TagsEN,
		TagsFR:    caption.TagsFR,
	})
}

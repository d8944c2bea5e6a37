package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"golang.org/x/sync/errgroup"

	"screenshot_backend/internal/feature/screenshot/domain/entity"
)

const (
	// MaxImageSize は画像アップロードの最大サイズ（10MB）です。
	MaxImageSize = 10 * 1024 * 1024
	// MinLabelScore はタグとして採用するラベルの最低スコアです。
	MinLabelScore = 0.5
	// TargetLanguage はキャプションとタグの翻訳先です。
	TargetLanguage = "French"
)

// Labeler は画像からラベルを検出するインターフェースです。
// Goの慣例に従い、インターフェースは利用者（usecase）側で定義します。
type Labeler interface {
	Labels(ctx context.Context, image []byte) ([]entity.Label, error)
}

// Describer は画像の説明文生成と翻訳を行うインターフェースです。
type Describer interface {
	// Describe は画像を英語の1文で説明します。
	Describe(ctx context.Context, image []byte, mimeType string) (string, error)
	// Translate は英語のテキストを language に翻訳します。
	Translate(ctx context.Context, text, language string) (string, error)
}

// Archiver stores uploaded images. Failures never fail a caption request.
type Archiver interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) error
}

// captionUsecase は画像のキャプションとタグを生成します。
type captionUsecase struct {
	labeler   Labeler
	describer Describer
	archiver  Archiver
}

// NewCaptionUsecase はcaptionUsecaseの新しいインスタンスを生成します。archiver は nil でも構いません。
func NewCaptionUsecase(labeler Labeler, describer Describer, archiver Archiver) *captionUsecase {
	return &captionUsecase{labeler: labeler, describer: describer, archiver: archiver}
}

// Caption はラベル検出と説明文生成を並行して実行し、結果をフランス語に翻訳します。
func (u *captionUsecase) Caption(ctx context.Context, image []byte) (*entity.Caption, error) {
	if len(image) == 0 {
		return nil, ErrImageEmpty
	}
	if len(image) > MaxImageSize {
		return nil, fmt.Errorf("%w: %d bytes (max %d)", ErrImageTooLarge, len(image), MaxImageSize)
	}
	mimeType := http.DetectContentType(image)
	if !strings.HasPrefix(mimeType, "image/") {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedImage, mimeType)
	}

	// どちらかが失敗したらもう一方もキャンセルする
	var (
		labels  []entity.Label
		caption string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if labels, err = u.labeler.Labels(gctx, image); err != nil {
			return fmt.Errorf("%w: labels: %w", ErrCaptionUnavailable, err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if caption, err = u.describer.Describe(gctx, image, mimeType); err != nil {
			return fmt.Errorf("%w: describe: %w", ErrCaptionUnavailable, err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := &entity.Caption{
		Caption: strings.TrimSpace(caption),
		TagsEN:  tagsFrom(labels),
	}
	if out.Caption != "" {
		fr, err := u.translate(ctx, out.Caption)
		if err != nil {
			return nil, err
		}
		out.CaptionFR = strings.TrimSpace(fr)
	}
	if out.TagsEN != "" {
		fr, err := u.translate(ctx, out.TagsEN)
		if err != nil {
			return nil, err
		}
		out.TagsFR = entity.JoinTags(entity.SplitTags(fr))
	}

	u.archive(ctx, image, mimeType)
	return out, nil
}

func (u *captionUsecase) translate(ctx context.Context, text string) (string, error) {
	s, err := u.describer.Translate(ctx, text, TargetLanguage)
	if err != nil {
		return "", fmt.Errorf("%w: translate: %w", ErrCaptionUnavailable, err)
	}
	return s, nil
}

func (u *captionUsecase) archive(ctx context.Context, image []byte, mimeType string) {
	if u.archiver == nil {
		return
	}
	key := ArchiveKey(image, mimeType)
	if err := u.archiver.Upload(ctx, key, image, mimeType); err != nil {
		slog.Warn("screenshot archive failed", "key", key, "error", err)
	}
}

// ArchiveKey は画像内容から screenshots/<sha256>.<ext> 形式のオブジェクトキーを返します。
func ArchiveKey(image []byte, mimeType string) string {
	sum := sha256.Sum256(image)
	ext := "bin"
	switch mimeType {
	case "image/png":
		ext = "png"
	case "image/jpeg":
		ext = "jpg"
	case "image/gif":
		ext = "gif"
	case "image/webp":
		ext = "webp"
	case "image/bmp":
		ext = "bmp"
	}
	return "screenshots/" + hex.EncodeToString(sum[:]) + "." + ext
}

func tagsFrom(labels []entity.Label) string {
	names := make([]string, 0, len(labels))
	for _, l := range labels {
		if l.Score >= MinLabelScore {
			names = append(names, l.Description)
		}
	}
	return entity.JoinTags(names)
}

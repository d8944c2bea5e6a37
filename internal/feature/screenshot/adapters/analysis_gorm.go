// Package adapters はscreenshotフィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"screenshot_backend/internal/feature/screenshot/domain/entity"
	"screenshot_backend/internal/feature/screenshot/usecase"
	"screenshot_backend/internal/platform/db"
)

// analysisGorm はAnalysisRepositoryのGORM実装です。
type analysisGorm struct {
	db *gorm.DB
}

var _ usecase.AnalysisRepository = (*analysisGorm)(nil)

// NewAnalysisGorm は指定されたgorm.DB接続でanalysisGormを生成します。
func NewAnalysisGorm(db *gorm.DB) *analysisGorm {
	return &analysisGorm{db: db}
}

// FindByImageURI はImageURIで解析結果を取得します。
func (r *analysisGorm) FindByImageURI(ctx context.Context, imageURI string) (*entity.Analysis, error) {
	var a entity.Analysis
	if err := r.db.WithContext(ctx).Where("image_uri = ?", imageURI).First(&a).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrAnalysisNotFound
		}
		return nil, err
	}
	return &a, nil
}

// SearchByTag は tags または tags_en に部分一致する解析結果を新しい順に返します。
func (r *analysisGorm) SearchByTag(ctx context.Context, tag string) ([]entity.Analysis, error) {
	pattern := "%" + escapeLike(strings.ToLower(tag)) + "%"
	var out []entity.Analysis
	err := r.db.WithContext(ctx).
		Where(`LOWER(tags) LIKE ? ESCAPE '\' OR LOWER(tags_en) LIKE ? ESCAPE '\'`, pattern, pattern).
		Order("creation_time DESC, id DESC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Create は解析結果を保存します。
func (r *analysisGorm) Create(ctx context.Context, a *entity.Analysis) error {
	if a == nil {
		return errors.New("analysis is nil")
	}
	if err := r.db.WithContext(ctx).Create(a).Error; err != nil {
		if db.IsUniqueViolation(err) {
			return fmt.Errorf("%w: %v", usecase.ErrDuplicateAnalysis, err)
		}
		return err
	}
	return nil
}

// escapeLike はLIKEのワイルドカードをエスケープします。
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

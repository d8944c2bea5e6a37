package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"screenshot_backend/internal/feature/screenshot/domain/entity"
)

// AnalysisRepository は解析結果の永続化層を抽象化します。
type AnalysisRepository interface {
	// FindByImageURI は ErrAnalysisNotFound を返すことがあります。
	FindByImageURI(ctx context.Context, imageURI string) (*entity.Analysis, error)
	// SearchByTag は tags または tags_en に tag を含む解析結果を大文字小文字を区別せずに返します。
	SearchByTag(ctx context.Context, tag string) ([]entity.Analysis, error)
	// Create は一意制約違反時に ErrDuplicateAnalysis を返します。
	Create(ctx context.Context, a *entity.Analysis) error
}

// analysisUsecase は解析結果の保存と検索を扱います。
type analysisUsecase struct {
	repo AnalysisRepository
	now  func() time.Time
}

// NewAnalysisUsecase はanalysisUsecaseの新しいインスタンスを生成します。
func NewAnalysisUsecase(repo AnalysisRepository) *analysisUsecase {
	return &analysisUsecase{repo: repo, now: time.Now}
}

// Save は同じ ImageURI の解析結果がなければ保存します。
// 既存の解析結果があればそれを返し、created は false になります。
// 同時に保存された場合も先に保存された行を返します。
func (u *analysisUsecase) Save(ctx context.Context, a entity.Analysis) (*entity.Analysis, bool, error) {
	a.ImageURI = strings.TrimSpace(a.ImageURI)
	if a.ImageURI == "" {
		return nil, false, ErrImageURIRequired
	}

	existing, err := u.repo.FindByImageURI(ctx, a.ImageURI)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, ErrAnalysisNotFound) {
		return nil, false, err
	}

	a.ID = 0
	if a.CreationTime == 0 {
		a.CreationTime = u.now().UnixMilli()
	}
	if err := u.repo.Create(ctx, &a); err != nil {
		if !errors.Is(err, ErrDuplicateAnalysis) {
			return nil, false, err
		}
		existing, err := u.repo.FindByImageURI(ctx, a.ImageURI)
		if err != nil {
			return nil, false, err
		}
		return existing, false, nil
	}
	return &a, true, nil
}

// FindByImageURI は ImageURI に対応する解析結果を返します。
func (u *analysisUsecase) FindByImageURI(ctx context.Context, imageURI string) (*entity.Analysis, error) {
	imageURI = strings.TrimSpace(imageURI)
	if imageURI == "" {
		return nil, ErrImageURIRequired
	}
	return u.repo.FindByImageURI(ctx, imageURI)
}

// SearchByTag はタグで解析結果を検索します。
func (u *analysisUsecase) SearchByTag(ctx context.Context, tag string) ([]entity.Analysis, error) {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return nil, ErrTagRequired
	}
	return u.repo.SearchByTag(ctx, tag)
}

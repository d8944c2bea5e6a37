// Package adapters はprofileフィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"screenshot_backend/internal/feature/auth/domain/entity"
	"screenshot_backend/internal/feature/profile/usecase"
)

// profileGorm はProfileRepositoryのGORM実装です。
type profileGorm struct {
	db *gorm.DB
}

var _ usecase.ProfileRepository = (*profileGorm)(nil)

// NewProfileGorm は指定されたgorm.DB接続でprofileGormを生成します。
func NewProfileGorm(db *gorm.DB) *profileGorm {
	return &profileGorm{db: db}
}

// FindUser はIDでユーザーを取得します。
func (r *profileGorm) FindUser(ctx context.Context, userID uint) (*entity.User, error) {
	var u entity.User
	if err := r.db.WithContext(ctx).First(&u, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

// FindByUserID はユーザーのプロフィールを取得します。
func (r *profileGorm) FindByUserID(ctx context.Context, userID uint) (*entity.Profile, error) {
	var p entity.Profile
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrProfileNotFound
		}
		return nil, err
	}
	return &p, nil
}

// Save はプロフィールの編集可能なカラムを保存します。
func (r *profileGorm) Save(ctx context.Context, p *entity.Profile) error {
	if p == nil || p.ID == 0 {
		return errors.New("profile must be persisted before save")
	}
	res := r.db.WithContext(ctx).Model(p).Select("phone", "birthday", "adresse").Updates(p)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return usecase.ErrProfileNotFound
	}
	return nil
}

// Package adapters はauthフィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"screenshot_backend/internal/feature/auth/domain/entity"
	"screenshot_backend/internal/feature/auth/usecase"
	"screenshot_backend/internal/platform/db"
)

// userGorm はUserRepositoryインターフェースのGORM実装です。
type userGorm struct {
	db *gorm.DB
}

// userGormがUserRepositoryを実装していることをコンパイル時に検証します。
var _ usecase.UserRepository = (*userGorm)(nil)

// NewUserGorm は指定されたgorm.DB接続でuserGormの新しいインスタンスを生成します。
func NewUserGorm(db *gorm.DB) *userGorm {
	return &userGorm{db: db}
}

// Create はユーザーをデータベースに追加します。
// 一意制約に違反した場合、usecase.ErrDuplicateUserを返します。
func (r *userGorm) Create(ctx context.Context, u *entity.User) error {
	if u == nil {
		return errors.New("user is nil")
	}
	if err := r.db.WithContext(ctx).Create(u).Error; err != nil {
		return translate(err)
	}
	return nil
}

// CreateWithProfile はユーザーとプロフィールを同一トランザクションで追加します。
// 外側のトランザクション内で呼ばれた場合はセーブポイントになります。
func (r *userGorm) CreateWithProfile(ctx context.Context, u *entity.User, p *entity.Profile) error {
	if u == nil || p == nil {
		return errors.New("user and profile are required")
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(u).Error; err != nil {
			return translate(err)
		}
		p.UserID = u.ID
		if err := tx.Create(p).Error; err != nil {
			return translate(err)
		}
		return nil
	})
}

// Update はユーザーの全カラムを保存します。
func (r *userGorm) Update(ctx context.Context, u *entity.User) error {
	if u == nil || u.ID == 0 {
		return errors.New("user must be persisted before update")
	}
	if err := r.db.WithContext(ctx).Save(u).Error; err != nil {
		return translate(err)
	}
	return nil
}

// FindByEmail はメールアドレスでユーザーを取得します。
// ユーザーが存在しない場合、usecase.ErrUserNotFoundを返します。
func (r *userGorm) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	var u entity.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

// FindByID はIDでユーザーを取得します。
func (r *userGorm) FindByID(ctx context.Context, id uint) (*entity.User, error) {
	var u entity.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

// FindByIdentity はユーザー名・メールアドレス・Google IDのいずれかに一致するユーザーを取得します。
// 複数行が一致した場合はどれかを選ばず usecase.ErrIntegrityViolation を返します。
// PostgreSQLでは SELECT ... FOR UPDATE で一致行をロックします（SQLiteでは無視されます）。
func (r *userGorm) FindByIdentity(ctx context.Context, q usecase.IdentityQuery) (*entity.User, error) {
	if q.IsEmpty() {
		return nil, errors.New("identity query has no fields")
	}

	var (
		conds []string
		args  []any
	)
	if q.Username != "" {
		conds = append(conds, "username = ?")
		args = append(args, q.Username)
	}
	if q.Email != "" {
		conds = append(conds, "email = ?")
		args = append(args, q.Email)
	}
	if q.GoogleID != "" {
		conds = append(conds, "google_id = ?")
		args = append(args, q.GoogleID)
	}

	var users []entity.User
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where(strings.Join(conds, " OR "), args...).
		Order("id ASC").
		Limit(2).
		Find(&users).Error
	if err != nil {
		return nil, err
	}

	switch len(users) {
	case 0:
		return nil, usecase.ErrUserNotFound
	case 1:
		return &users[0], nil
	default:
		return nil, fmt.Errorf("%w: user ids %d and %d", usecase.ErrIntegrityViolation, users[0].ID, users[1].ID)
	}
}

// Transaction はfnにトランザクションに束縛されたリポジトリを渡して実行します。
func (r *userGorm) Transaction(ctx context.Context, fn func(tx usecase.UserRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&userGorm{db: tx})
	})
}

func translate(err error) error {
	if db.IsUniqueViolation(err) {
		return fmt.Errorf("%w: %v", usecase.ErrDuplicateUser, err)
	}
	return err
}

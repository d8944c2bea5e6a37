package usecase

import (
	"context"

	"screenshot_backend/internal/feature/auth/domain/entity"
)

// IdentityQuery matches a user by any of its non-empty fields.
type IdentityQuery struct {
	Username string
	Email    string
	GoogleID string
}

// IsEmpty reports whether no field is set.
func (q IdentityQuery) IsEmpty() bool {
	return q.Username == "" && q.Email == "" && q.GoogleID == ""
}

// UserRepository はユーザーとプロフィールの永続化層を抽象化します。
// Goの慣例に従い、インターフェースはプロバイダー（adapters）ではなくコンシューマー（usecase）が定義します。
type UserRepository interface {
	// FindByEmail はメールアドレスが完全一致するユーザーを取得します。
	// 存在しない場合は ErrUserNotFound を返します。
	FindByEmail(ctx context.Context, email string) (*entity.User, error)

	// FindByID はIDでユーザーを取得します。存在しない場合は ErrUserNotFound を返します。
	FindByID(ctx context.Context, id uint) (*entity.User, error)

	// FindByIdentity はクエリのいずれかのフィールドに一致するユーザーを取得します。
	// 一致なしは ErrUserNotFound、複数行一致は ErrIntegrityViolation を返します。
	// トランザクション内では一致した行をロックします。
	FindByIdentity(ctx context.Context, q IdentityQuery) (*entity.User, error)

	// Create はユーザーを追加しIDを採番します。一意制約違反は ErrDuplicateUser を返します。
	Create(ctx context.Context, user *entity.User) error

	// CreateWithProfile はユーザーとプロフィールを1つのトランザクションで追加します。
	CreateWithProfile(ctx context.Context, user *entity.User, profile *entity.Profile) error

	// Update は既存ユーザーを保存します。一意制約違反は ErrDuplicateUser を返します。
	Update(ctx context.Context, user *entity.User) error

	// Transaction は fn をトランザクション内で実行します。fn がエラーを返すとロールバックします。
	Transaction(ctx context.Context, fn func(tx UserRepository) error) error
}

// IdentityVerifier はGoogleのIDトークンを検証します。
// 受理できないトークンには ErrInvalidToken を、到達不能やタイムアウトにはそれ以外のエラーを返します。
type IdentityVerifier interface {
	Verify(ctx context.Context, token string) (*entity.Claim, error)
}

// JWTGenerator はセッション用JWTトークン生成のインターフェースを定義します。
type JWTGenerator interface {
	GenerateToken(userID uint, email string) (string, error)
}

// EventPublisher publishes account lifecycle events after commit.
type EventPublisher interface {
	Publish(ctx context.Context, event entity.AccountEvent) error
}

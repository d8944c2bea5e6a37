// Package usecase はauthフィーチャーのビジネスロジックを実装します。
package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"screenshot_backend/internal/feature/auth/domain/entity"
)

const (
	// DefaultVerifyTimeout はIDトークン検証の既定タイムアウトです。
	DefaultVerifyTimeout = 5 * time.Second

	// dummyHash はユーザーが存在しない場合にもbcrypt比較を行うためのハッシュです。
	dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"
)

// RegisterInput is the payload of a password registration.
type RegisterInput struct {
	Username string
	Email    string
	Password string
}

// authUsecase は認証ビジネスロジックを実装します。
type authUsecase struct {
	users         UserRepository
	verifier      IdentityVerifier
	jwtGenerator  JWTGenerator
	events        EventPublisher
	verifyTimeout time.Duration
	hashCost      int
}

// Option configures authUsecase.
type Option func(*authUsecase)

// WithVerifyTimeout sets the upper bound for a single identity verification.
func WithVerifyTimeout(d time.Duration) Option {
	return func(u *authUsecase) {
		if d > 0 {
			u.verifyTimeout = d
		}
	}
}

// WithEventPublisher sets the publisher used for account events.
func WithEventPublisher(p EventPublisher) Option {
	return func(u *authUsecase) { u.events = p }
}

// WithHashCost overrides the bcrypt cost used at registration.
func WithHashCost(cost int) Option {
	return func(u *authUsecase) { u.hashCost = cost }
}

// NewAuthUsecase はauthUsecaseの新しいインスタンスを生成します。
func NewAuthUsecase(users UserRepository, verifier IdentityVerifier, jwtGenerator JWTGenerator, opts ...Option) *authUsecase {
	u := &authUsecase{
		users:         users,
		verifier:      verifier,
		jwtGenerator:  jwtGenerator,
		verifyTimeout: DefaultVerifyTimeout,
		hashCost:      bcrypt.DefaultCost,
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// Register はユーザーと空のプロフィールを1つのトランザクションで作成します。
func (u *authUsecase) Register(ctx context.Context, in RegisterInput) (*entity.User, error) {
	username := strings.TrimSpace(in.Username)
	email := strings.TrimSpace(in.Email)
	switch {
	case username == "":
		return nil, ErrUsernameRequired
	case email == "":
		return nil, ErrEmailRequired
	case in.Password == "":
		return nil, ErrPasswordRequired
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), u.hashCost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return nil, ErrPasswordTooLong
	}
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	user := &entity.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hashed),
		AuthMethod:   entity.AuthMethodPassword,
	}

	err = u.users.Transaction(ctx, func(tx UserRepository) error {
		if _, err := tx.FindByIdentity(ctx, IdentityQuery{Username: username}); err == nil {
			return ErrUsernameTaken
		} else if !errors.Is(err, ErrUserNotFound) {
			return err
		}
		if _, err := tx.FindByEmail(ctx, email); err == nil {
			return ErrEmailTaken
		} else if !errors.Is(err, ErrUserNotFound) {
			return err
		}
		return tx.CreateWithProfile(ctx, user, &entity.Profile{})
	})
	if err != nil {
		return nil, err
	}

	u.publish(ctx, entity.EventUserRegistered, user)
	return user, nil
}

// LoginWithPassword はメールアドレスとパスワードでユーザーを認証します。
// タイミング攻撃を防止するため、ユーザーが存在しない場合でもbcrypt比較を実行します。
// 返されるエラーはストア障害のみで、認証失敗は Rejected として返します。
func (u *authUsecase) LoginWithPassword(ctx context.Context, email, password string) (entity.AuthOutcome, error) {
	if email == "" || password == "" {
		return entity.Rejected(entity.ReasonMalformedRequest), nil
	}

	user, err := u.users.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, ErrUserNotFound) {
		return entity.AuthOutcome{}, fmt.Errorf("failed to find user by email: %w", err)
	}

	passwordHash := dummyHash
	if user != nil && user.HasPassword() {
		passwordHash = user.PasswordHash
	}
	compareErr := bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(password))

	// ユーザー未検出・パスワード未設定・不一致はすべて同じ結果にする
	if user == nil || !user.HasPassword() || compareErr != nil {
		return entity.Rejected(entity.ReasonInvalidCredentials), nil
	}
	return entity.Authenticated(user), nil
}

// SessionToken は認証済みユーザーのセッションJWTを発行します。
func (u *authUsecase) SessionToken(user *entity.User) (string, error) {
	token, err := u.jwtGenerator.GenerateToken(user.ID, user.Email)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return token, nil
}

// publish はイベントを送信します。失敗してもログインや登録の結果は変えません。
func (u *authUsecase) publish(ctx context.Context, t entity.AccountEventType, user *entity.User) {
	if u.events == nil {
		return
	}
	if err := u.events.Publish(ctx, entity.NewAccountEvent(t, user)); err != nil {
		slog.Warn("account event publish failed", "type", t, "user_id", user.ID, "error", err)
	}
}

package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"screenshot_backend/internal/feature/auth/domain/entity"
)

var (
	_ UserRepository = (*memStore)(nil)
	_ UserRepository = memTx{}
	_ UserRepository = (*mockUserRepository)(nil)
)

func hash(t *testing.T, password string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func newTestUsecase(store UserRepository, verifier IdentityVerifier, opts ...Option) *authUsecase {
	opts = append([]Option{WithHashCost(bcrypt.MinCost)}, opts...)
	return NewAuthUsecase(store, verifier, &mockJWTGenerator{}, opts...)
}

func TestAuthUsecase_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("successful registration creates user and empty profile", func(t *testing.T) {
		store := newMemStore()
		events := &recordingPublisher{}
		uc := newTestUsecase(store, &mockVerifier{}, WithEventPublisher(events))

		user, err := uc.Register(ctx, RegisterInput{Username: " ann ", Email: "ann@x.com", Password: "pw1"})

		require.NoError(t, err)
		assert.NotZero(t, user.ID)
		assert.Equal(t, "ann", user.Username)
		assert.Equal(t, entity.AuthMethodPassword, user.AuthMethod)
		assert.Nil(t, user.GoogleID)
		assert.False(t, user.Verified)
		assert.NotEqual(t, "pw1", user.PasswordHash, "password must be hashed")
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("pw1")))

		users, profiles := store.snapshot()
		require.Len(t, users, 1)
		require.Len(t, profiles, 1)
		assert.Equal(t, user.ID, profiles[0].UserID)
		assert.Equal(t, []entity.AccountEventType{entity.EventUserRegistered}, events.Types())
	})

	t.Run("validation errors", func(t *testing.T) {
		tests := []struct {
			name    string
			in      RegisterInput
			wantErr error
		}{
			{"missing username", RegisterInput{Email: "a@x.com", Password: "pw"}, ErrUsernameRequired},
			{"blank username", RegisterInput{Username: "   ", Email: "a@x.com", Password: "pw"}, ErrUsernameRequired},
			{"missing email", RegisterInput{Username: "a", Password: "pw"}, ErrEmailRequired},
			{"missing password", RegisterInput{Username: "a", Email: "a@x.com"}, ErrPasswordRequired},
			{"password too long", RegisterInput{Username: "a", Email: "a@x.com", Password: strings.Repeat("p", 73)}, ErrPasswordTooLong},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				store := newMemStore()
				uc := newTestUsecase(store, &mockVerifier{})

				user, err := uc.Register(ctx, tt.in)

				assert.Nil(t, user)
				assert.ErrorIs(t, err, tt.wantErr)
				users, _ := store.snapshot()
				assert.Empty(t, users)
			})
		}
	})

	t.Run("username already taken", func(t *testing.T) {
		store := newMemStore()
		store.seed(entity.User{Username: "ann", Email: "other@x.com", PasswordHash: "h", AuthMethod: entity.AuthMethodPassword})
		uc := newTestUsecase(store, &mockVerifier{})

		_, err := uc.Register(ctx, RegisterInput{Username: "ann", Email: "ann@x.com", Password: "pw1"})

		assert.ErrorIs(t, err, ErrUsernameTaken)
	})

	t.Run("email already taken", func(t *testing.T) {
		store := newMemStore()
		store.seed(entity.User{Username: "bob", Email: "ann@x.com", PasswordHash: "h", AuthMethod: entity.AuthMethodPassword})
		uc := newTestUsecase(store, &mockVerifier{})

		_, err := uc.Register(ctx, RegisterInput{Username: "ann", Email: "ann@x.com", Password: "pw1"})

		assert.ErrorIs(t, err, ErrEmailTaken)
		_, profiles := store.snapshot()
		assert.Empty(t, profiles, "no profile may exist without its user")
	})

	t.Run("store error is propagated", func(t *testing.T) {
		dbErr := errors.New("connection reset")
		repo := &mockUserRepository{
			CreateWithProfileFunc: func(context.Context, *entity.User, *entity.Profile) error { return dbErr },
		}
		uc := newTestUsecase(repo, &mockVerifier{})

		_, err := uc.Register(ctx, RegisterInput{Username: "ann", Email: "ann@x.com", Password: "pw1"})

		assert.ErrorIs(t, err, dbErr)
	})

	t.Run("event publish failure does not fail registration", func(t *testing.T) {
		uc := newTestUsecase(newMemStore(), &mockVerifier{}, WithEventPublisher(&recordingPublisher{err: errors.New("broker down")}))

		user, err := uc.Register(ctx, RegisterInput{Username: "ann", Email: "ann@x.com", Password: "pw1"})

		assert.NoError(t, err)
		assert.NotNil(t, user)
	})
}

func TestAuthUsecase_LoginWithPassword(t *testing.T) {
	ctx := context.Background()

	newStore := func(t *testing.T) (*memStore, *entity.User) {
		store := newMemStore()
		ann := store.seed(entity.User{Username: "ann", Email: "ann@x.com", PasswordHash: hash(t, "pw1"), AuthMethod: entity.AuthMethodPassword})
		sub := "g-9"
		store.seed(entity.User{Username: "gina", Email: "gina@gmail.com", GoogleID: &sub, Verified: true, AuthMethod: entity.AuthMethodThirdParty})
		return store, ann
	}

	t.Run("correct password authenticates", func(t *testing.T) {
		store, ann := newStore(t)
		uc := newTestUsecase(store, &mockVerifier{})

		outcome, err := uc.LoginWithPassword(ctx, "ann@x.com", "pw1")

		require.NoError(t, err)
		assert.Equal(t, entity.OutcomeAuthenticated, outcome.Kind)
		assert.Equal(t, ann.ID, outcome.User.ID)
	})

	tests := []struct {
		name       string
		email      string
		password   string
		wantReason entity.RejectReason
	}{
		{"wrong password", "ann@x.com", "nope", entity.ReasonInvalidCredentials},
		{"unknown email", "nobody@x.com", "pw1", entity.ReasonInvalidCredentials},
		{"google-only account", "gina@gmail.com", "anything", entity.ReasonInvalidCredentials},
		{"empty email", "", "pw1", entity.ReasonMalformedRequest},
		{"empty password", "ann@x.com", "", entity.ReasonMalformedRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, _ := newStore(t)
			uc := newTestUsecase(store, &mockVerifier{})

			outcome, err := uc.LoginWithPassword(ctx, tt.email, tt.password)

			require.NoError(t, err)
			assert.True(t, outcome.IsRejected())
			assert.Equal(t, tt.wantReason, outcome.Reason)
			assert.Nil(t, outcome.User)
		})
	}

	t.Run("unknown email and wrong password are indistinguishable", func(t *testing.T) {
		store, _ := newStore(t)
		uc := newTestUsecase(store, &mockVerifier{})

		wrong, err := uc.LoginWithPassword(ctx, "ann@x.com", "nope")
		require.NoError(t, err)
		unknown, err := uc.LoginWithPassword(ctx, "nobody@x.com", "nope")
		require.NoError(t, err)

		assert.Equal(t, wrong, unknown)
	})

	t.Run("bcrypt comparison runs for unknown users", func(t *testing.T) {
		// dummyHash must be a valid bcrypt hash, otherwise the comparison returns immediately.
		_, err := bcrypt.Cost([]byte(dummyHash))
		assert.NoError(t, err)
	})

	t.Run("store failure is an error, not a rejection", func(t *testing.T) {
		dbErr := errors.New("database connection error")
		repo := &mockUserRepository{
			FindByEmailFunc: func(context.Context, string) (*entity.User, error) { return nil, dbErr },
		}
		uc := newTestUsecase(repo, &mockVerifier{})

		_, err := uc.LoginWithPassword(ctx, "ann@x.com", "pw1")

		assert.ErrorIs(t, err, dbErr)
	})
}

func TestAuthUsecase_SessionToken(t *testing.T) {
	t.Run("returns generated token", func(t *testing.T) {
		jwtGen := &mockJWTGenerator{GenerateTokenFunc: func(userID uint, email string) (string, error) {
			assert.Equal(t, uint(7), userID)
			assert.Equal(t, "ann@x.com", email)
			return "signed", nil
		}}
		uc := NewAuthUsecase(newMemStore(), &mockVerifier{}, jwtGen)

		token, err := uc.SessionToken(&entity.User{ID: 7, Email: "ann@x.com"})

		assert.NoError(t, err)
		assert.Equal(t, "signed", token)
	})

	t.Run("generator failure", func(t *testing.T) {
		jwtGen := &mockJWTGenerator{GenerateTokenFunc: func(uint, string) (string, error) {
			return "", errors.New("sign failed")
		}}
		uc := NewAuthUsecase(newMemStore(), &mockVerifier{}, jwtGen)

		_, err := uc.SessionToken(&entity.User{ID: 7})

		assert.Error(t, err)
	})
}

package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"screenshot_backend/internal/feature/auth/domain/entity"
)

// BirthdayLayout is the wire format of a birthday.
const BirthdayLayout = "2006-01-02"

// ProfileRepository はユーザーとプロフィールの読み書きを抽象化します。
type ProfileRepository interface {
	// FindUser は ErrUserNotFound を返すことがあります。
	FindUser(ctx context.Context, userID uint) (*entity.User, error)
	// FindByUserID は ErrProfileNotFound を返すことがあります。
	FindByUserID(ctx context.Context, userID uint) (*entity.Profile, error)
	Save(ctx context.Context, profile *entity.Profile) error
}

// ProfileView はユーザーとプロフィールを合わせた読み取り用の値です。
type ProfileView struct {
	ID       uint
	Username string
	Email    string
	Phone    string
	Birthday *time.Time
	Adresse  string
}

// UpdateInput は部分更新の入力です。nilのフィールドは変更しません。
// ClearBirthday が true の場合は誕生日を削除します。
type UpdateInput struct {
	Phone         *string
	Birthday      *string
	ClearBirthday bool
	Adresse       *string
}

// profileUsecase はプロフィールの参照と更新を扱います。
type profileUsecase struct {
	repo ProfileRepository
}

// NewProfileUsecase はprofileUsecaseの新しいインスタンスを生成します。
func NewProfileUsecase(repo ProfileRepository) *profileUsecase {
	return &profileUsecase{repo: repo}
}

// Get はユーザーIDに対応するプロフィールを返します。
func (u *profileUsecase) Get(ctx context.Context, userID uint) (*ProfileView, error) {
	user, err := u.repo.FindUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	p, err := u.repo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &ProfileView{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
		Phone:    p.Phone,
		Birthday: p.Birthday,
		Adresse:  p.Adresse,
	}, nil
}

// Update は指定されたフィールドだけを更新します。
func (u *profileUsecase) Update(ctx context.Context, userID uint, in UpdateInput) error {
	var birthday *time.Time
	if in.Birthday != nil && strings.TrimSpace(*in.Birthday) != "" {
		t, err := time.Parse(BirthdayLayout, strings.TrimSpace(*in.Birthday))
		if err != nil {
			return fmt.Errorf("%w: %q", ErrInvalidBirthday, *in.Birthday)
		}
		birthday = &t
	}

	p, err := u.repo.FindByUserID(ctx, userID)
	if err != nil {
		return err
	}
	if in.Phone != nil {
		p.Phone = strings.TrimSpace(*in.Phone)
	}
	if in.Adresse != nil {
		p.Adresse = strings.TrimSpace(*in.Adresse)
	}
	switch {
	case birthday != nil:
		p.Birthday = birthday
	case in.ClearBirthday || in.Birthday != nil:
		p.Birthday = nil
	}
	return u.repo.Save(ctx, p)
}

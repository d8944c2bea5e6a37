// Package entity defines the domain entities for the auth feature.
package entity

import (
	"strings"
	"time"
	"unicode/utf8"
)

// AuthMethod はユーザーがどの手段で認証できるかを表します。
type AuthMethod string

const (
	// AuthMethodPassword はメールアドレスとパスワードのみで認証するアカウントです。
	AuthMethodPassword AuthMethod = "password"
	// AuthMethodThirdParty はGoogleサインインのみで認証するアカウントです。
	AuthMethodThirdParty AuthMethod = "thirdparty"
	// AuthMethodMixed はパスワードとGoogleサインインの両方で認証できるアカウントです。
	AuthMethodMixed AuthMethod = "mixed"
)

// MaxUsernameLength is the size of the username column, counted in characters.
const MaxUsernameLength = 255

// User represents a registered account.
// Email and GoogleID are unique across all users; GoogleID is NULL until a Google identity is linked.
type User struct {
	// ID is assigned by the store at creation and never changes.
	ID uint `gorm:"primaryKey"`

	// Username is unique. Google-only accounts get the display name or the local part of the email.
	Username string `gorm:"uniqueIndex;size:255;not null"`

	// PasswordHash is the bcrypt hash. Empty for Google-only accounts.
	PasswordHash string `gorm:"column:password;size:255"`

	Email string `gorm:"uniqueIndex;size:255;not null"`

	// GoogleID is the subject of the linked Google identity.
	GoogleID *string `gorm:"column:google_id;uniqueIndex;size:255"`

	Verified bool `gorm:"column:is_verified;not null;default:false"`

	AuthMethod AuthMethod `gorm:"column:auth_method;size:32;not null"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName returns the table name for GORM.
func (User) TableName() string {
	return "users"
}

// HasPassword reports whether the account can log in with a password.
func (u *User) HasPassword() bool {
	return u.PasswordHash != ""
}

// HasGoogleID reports whether a Google identity is linked.
func (u *User) HasGoogleID() bool {
	return u.GoogleID != nil && *u.GoogleID != ""
}

// LinkGoogle はGoogleアカウントを紐付け、認証方式を遷移させます。
// password → mixed、thirdparty と mixed はそのまま維持されます。
func (u *User) LinkGoogle(subject string) {
	u.GoogleID = &subject
	u.Verified = true
	switch u.AuthMethod {
	case AuthMethodThirdParty, AuthMethodMixed:
	default:
		u.AuthMethod = AuthMethodMixed
	}
}

// NewGoogleUser builds a Google-only account from a verified claim.
func NewGoogleUser(c *Claim) *User {
	subject := c.Subject
	return &User{
		Username:   c.DefaultUsername(),
		Email:      c.Email,
		GoogleID:   &subject,
		Verified:   true,
		AuthMethod: AuthMethodThirdParty,
	}
}

// Claim is the verified identity payload returned by the identity verifier.
type Claim struct {
	Subject       string
	Email         string
	Name          string
	EmailVerified bool
}

// DefaultUsername returns the display name, or the local part of the email when no name is present.
// The result is cut to MaxUsernameLength characters.
func (c *Claim) DefaultUsername() string {
	if name := strings.TrimSpace(c.Name); name != "" {
		return TruncateUsername(name, MaxUsernameLength)
	}
	local, _, _ := strings.Cut(c.Email, "@")
	return TruncateUsername(local, MaxUsernameLength)
}

// TruncateUsername cuts s to at most n characters without splitting a multi-byte rune.
func TruncateUsername(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return strings.TrimSpace(string([]rune(s)[:n]))
}

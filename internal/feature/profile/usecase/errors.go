// Package usecase はprofileフィーチャーのビジネスロジックを実装します。
package usecase

import "errors"

var (
	// ErrUserNotFound is returned when the authenticated user no longer exists.
	ErrUserNotFound = errors.New("user not found")

	// ErrProfileNotFound is returned when the user has no profile row.
	ErrProfileNotFound = errors.New("profile not found")

	// ErrInvalidBirthday is returned when a birthday is not formatted as YYYY-MM-DD.
	ErrInvalidBirthday = errors.New("birthday must be formatted as YYYY-MM-DD")
)

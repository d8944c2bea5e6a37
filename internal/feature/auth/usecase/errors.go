// Package usecase implements the business logic for the auth feature.
package usecase

import "errors"

var (
	// ErrUserNotFound is returned when no user matches a lookup.
	ErrUserNotFound = errors.New("user not found")

	// ErrDuplicateUser is returned by the store when an insert or update violates a uniqueness constraint.
	ErrDuplicateUser = errors.New("user already exists")

	// ErrUsernameTaken is returned by registration when the username is already in use.
	ErrUsernameTaken = errors.New("username already exists")

	// ErrEmailTaken is returned by registration when the email is already in use.
	ErrEmailTaken = errors.New("email already exists")

	// ErrUsernameRequired is returned by registration when the username is missing or blank.
	ErrUsernameRequired = errors.New("username is required")

	// ErrEmailRequired is returned by registration when the email is missing or blank.
	ErrEmailRequired = errors.New("email is required")

	// ErrPasswordRequired is returned by registration when the password is empty.
	ErrPasswordRequired = errors.New("password is required")

	// ErrPasswordTooLong is returned by registration when the password exceeds the bcrypt input limit (72 bytes).
	ErrPasswordTooLong = errors.New("password is too long")

	// ErrIntegrityViolation is returned when a lookup that must match at most one row matched several.
	ErrIntegrityViolation = errors.New("integrity violation: lookup matched more than one user")

	// ErrInvalidToken is returned by an IdentityVerifier when the token is not acceptable.
	ErrInvalidToken = errors.New("invalid identity token")

	// ErrVerifierUnavailable wraps failures to reach the identity verifier, including timeouts.
	ErrVerifierUnavailable = errors.New("identity verifier unavailable")
)

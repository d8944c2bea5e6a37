// Package jwtmw はセッション用JWTの発行と検証ミドルウェアを提供します。
package jwtmw

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultExpiration はセッショントークンの既定の有効期間です。
const DefaultExpiration = 24 * time.Hour

// generator はHS256でセッショントークンを署名します。
type generator struct {
	secret     []byte
	expiration time.Duration
	now        func() time.Time
}

// NewGenerator は指定されたシークレットと有効期間でJWTジェネレーターを生成します。
// 有効期間が0以下の場合は DefaultExpiration を使います。
func NewGenerator(secret string, expiration time.Duration) *generator {
	if expiration <= 0 {
		expiration = DefaultExpiration
	}
	return &generator{
		secret:     []byte(secret),
		expiration: expiration,
		now:        time.Now,
	}
}

// GenerateToken は sub にユーザーIDを持つ署名済みトークンを返します。
func (g *generator) GenerateToken(userID uint, email string) (string, error) {
	if len(g.secret) == 0 {
		return "", errors.New("jwt secret is empty")
	}
	now := g.now()
	claims := jwt.MapClaims{
		"sub":   userID,
		"exp":   now.Add(g.expiration).Unix(),
		"iat":   now.Unix(),
		"email": email,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(g.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, nil
}

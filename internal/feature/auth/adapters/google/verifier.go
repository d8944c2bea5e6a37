// Package google はGoogleのIDトークンを検証するIdentityVerifier実装を提供します。
package google

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"

	"google.golang.org/api/idtoken"
	"google.golang.org/api/option"

	"screenshot_backend/internal/feature/auth/domain/entity"
	"screenshot_backend/internal/feature/auth/usecase"
)

// googleIssuers はGoogleが発行するIDトークンの iss として許可する値です。
var googleIssuers = map[string]bool{
	"accounts.google.com":         true,
	"https://accounts.google.com": true,
}

// tokenValidator は idtoken.Validator の検証メソッドです。テストで差し替えます。
type tokenValidator interface {
	Validate(ctx context.Context, idToken string, audience string) (*idtoken.Payload, error)
}

// TokenVerifier はGoogleの公開鍵でIDトークンの署名・有効期限・audienceを検証します。
type TokenVerifier struct {
	validator tokenValidator
	clientID  string
}

// TokenVerifierがIdentityVerifierを実装していることをコンパイル時に検証します。
var _ usecase.IdentityVerifier = (*TokenVerifier)(nil)

// NewTokenVerifier は指定されたOAuthクライアントIDをaudienceとする検証器を生成します。
// 公開鍵の取得には httpClient を使用します。
func NewTokenVerifier(ctx context.Context, clientID string, httpClient *http.Client) (*TokenVerifier, error) {
	if clientID == "" {
		return nil, errors.New("google client id is required")
	}
	v, err := idtoken.NewValidator(ctx, option.WithHTTPClient(certClient(httpClient)))
	if err != nil {
		return nil, fmt.Errorf("failed to create id token validator: %w", err)
	}
	return &TokenVerifier{validator: v, clientID: clientID}, nil
}

// Verify はIDトークンを検証しクレームを返します。
// 受理できないトークンは usecase.ErrInvalidToken を、公開鍵の取得失敗やタイムアウトはそのままのエラーを返します。
func (v *TokenVerifier) Verify(ctx context.Context, token string) (*entity.Claim, error) {
	payload, err := v.validator.Validate(ctx, token, v.clientID)
	if err != nil {
		if isTransient(ctx, err) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", usecase.ErrInvalidToken, err)
	}
	if !googleIssuers[payload.Issuer] {
		return nil, fmt.Errorf("%w: unexpected issuer %q", usecase.ErrInvalidToken, payload.Issuer)
	}

	return &entity.Claim{
		Subject:       payload.Subject,
		Email:         stringClaim(payload.Claims, "email"),
		Name:          stringClaim(payload.Claims, "name"),
		EmailVerified: boolClaim(payload.Claims, "email_verified"),
	}, nil
}

// errCertFetch は公開鍵エンドポイントが2xx以外を返したことを表します。
var errCertFetch = errors.New("google cert endpoint unavailable")

// certStatusTransport は2xx以外の応答をエラーに変換します。
// idtoken はステータス異常を素のエラーで返すため、トークン不正と区別できるようにします。
type certStatusTransport struct {
	base http.RoundTripper
}

func (t certStatusTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, fmt.Errorf("%w: status %d", errCertFetch, resp.StatusCode)
	}
	return resp, nil
}

// certClient は httpClient の設定を保ったまま certStatusTransport を挟んだコピーを返します。
func certClient(httpClient *http.Client) *http.Client {
	c := &http.Client{}
	if httpClient != nil {
		*c = *httpClient
	}
	base := c.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	c.Transport = certStatusTransport{base: base}
	return c
}

func isTransient(ctx context.Context, err error) bool {
	if ctx.Err() != nil || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}
	if errors.Is(err, errCertFetch) || strings.Contains(err.Error(), "unable to retrieve cert") {
		return true
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

func stringClaim(claims map[string]interface{}, key string) string {
	s, _ := claims[key].(string)
	return strings.TrimSpace(s)
}

// boolClaim は真偽値または文字列 "true" のクレームを解釈します。
func boolClaim(claims map[string]interface{}, key string) bool {
	switch v := claims[key].(type) {
	case bool:
		return v
	case string:
		return strings.EqualFold(v, "true")
	default:
		return false
	}
}

// Disabled はGoogleクライアントIDが未設定の場合に使う検証器です。常にエラーを返します。
type Disabled struct{}

var _ usecase.IdentityVerifier = Disabled{}

// ErrNotConfigured is returned by Disabled.
var ErrNotConfigured = errors.New("google sign-in is not configured")

func (Disabled) Verify(context.Context, string) (*entity.Claim, error) {
	return nil, ErrNotConfigured
}

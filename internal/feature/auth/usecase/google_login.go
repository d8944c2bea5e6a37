package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"screenshot_backend/internal/feature/auth/domain/entity"
)

// LoginWithGoogle はGoogleのIDトークンでログインし、必要に応じてアカウントを作成または紐付けします。
//
//   - 一致なし: Googleのみのアカウントを作成 (Created)
//   - 一致したアカウントにGoogle IDなし: 紐付け (Linked)
//   - 同じGoogle IDが紐付け済み: 変更なし (Authenticated)
//   - 別のGoogle IDが紐付け済み: Rejected(invalid_credentials)
//
// 検索から書き込みまでは1つのトランザクションで実行します。同時ログインで作成が競合した場合は
// 一意制約違反を受けて一度だけ検索からやり直し、既存行に対する結果を返します。
func (u *authUsecase) LoginWithGoogle(ctx context.Context, token string) (entity.AuthOutcome, error) {
	if strings.TrimSpace(token) == "" {
		return entity.Rejected(entity.ReasonMalformedRequest), nil
	}

	claim, err := u.verify(ctx, token)
	if err != nil {
		if errors.Is(err, ErrInvalidToken) {
			return entity.Rejected(entity.ReasonInvalidToken), nil
		}
		return entity.AuthOutcome{}, err
	}
	if claim == nil || !claim.EmailVerified || claim.Subject == "" || claim.Email == "" {
		return entity.Rejected(entity.ReasonInvalidToken), nil
	}

	outcome, err := u.resolveGoogle(ctx, claim, false)
	if errors.Is(err, ErrDuplicateUser) {
		// 並行ログインに作成を先取りされた: 今度は既存行が見つかる
		outcome, err = u.resolveGoogle(ctx, claim, true)
	}
	if err != nil {
		return entity.AuthOutcome{}, err
	}

	switch outcome.Kind {
	case entity.OutcomeCreated:
		u.publish(ctx, entity.EventUserCreated, outcome.User)
	case entity.OutcomeLinked:
		u.publish(ctx, entity.EventUserLinked, outcome.User)
	}
	return outcome, nil
}

// verify はタイムアウト付きでIDトークンを検証します。
func (u *authUsecase) verify(ctx context.Context, token string) (*entity.Claim, error) {
	vctx, cancel := context.WithTimeout(ctx, u.verifyTimeout)
	defer cancel()

	claim, err := u.verifier.Verify(vctx, token)
	if err != nil {
		if errors.Is(err, ErrInvalidToken) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrVerifierUnavailable, err)
	}
	return claim, nil
}

// resolveGoogle runs lookup, decision and write in one transaction.
// On retry a still-missing row means the conflict came from the username, so a suffixed one is used.
func (u *authUsecase) resolveGoogle(ctx context.Context, claim *entity.Claim, retry bool) (entity.AuthOutcome, error) {
	var outcome entity.AuthOutcome
	err := u.users.Transaction(ctx, func(tx UserRepository) error {
		user, err := tx.FindByIdentity(ctx, IdentityQuery{Email: claim.Email, GoogleID: claim.Subject})
		if errors.Is(err, ErrUserNotFound) {
			created := entity.NewGoogleUser(claim)
			if retry {
				created.Username = suffixedUsername(created.Username, claim.Subject)
			}
			if err := tx.CreateWithProfile(ctx, created, &entity.Profile{}); err != nil {
				return err
			}
			outcome = entity.Created(created)
			return nil
		}
		if err != nil {
			return err
		}

		switch {
		case !user.HasGoogleID():
			user.LinkGoogle(claim.Subject)
			if err := tx.Update(ctx, user); err != nil {
				return err
			}
			outcome = entity.Linked(user)
		case *user.GoogleID == claim.Subject:
			outcome = entity.Authenticated(user)
		default:
			outcome = entity.Rejected(entity.ReasonInvalidCredentials)
		}
		return nil
	})
	if err != nil {
		return entity.AuthOutcome{}, err
	}
	return outcome, nil
}

func suffixedUsername(base, subject string) string {
	suffix := subject
	if len(suffix) > 8 {
		suffix = suffix[len(suffix)-8:]
	}
	return entity.TruncateUsername(base, entity.MaxUsernameLength-len(suffix)-1) + "-" + suffix
}

package bloombox

import (
	"context"
	"errors"
	"fmt"

	"github.com/MrEthical07/bloombox/internal/stores"
	"github.com/MrEthical07/bloombox/mail"
	"github.com/MrEthical07/bloombox/metrics"
	"github.com/MrEthical07/bloombox/users"
)

// RequestPasswordReset queues a reset link when email is registered. The
// result never reveals whether it is.
func (e *Engine) RequestPasswordReset(ctx context.Context, req EmailRequest) error {
	if e == nil {
		return ErrEngineNotReady
	}
	if err := req.Validate(); err != nil {
		return newInputError(err)
	}

	e.metrics.Inc(metrics.EventResetRequested)

	user, err := e.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return nil
		}
		return mapUserErr(err)
	}

	link, err := e.issueLink(resetPath, linkPurposeReset, user.Email)
	if err != nil {
		return err
	}
	msg, err := mail.PasswordResetEmail(e.config.AppName, user.Email, link, humanDuration(e.config.Links.ResetMaxAge))
	if err != nil {
		return err
	}
	if !e.mailer.Enqueue(ctx, msg) {
		e.log.Error(ctx, "password reset email not queued", "user_uid", user.UID)
	}
	return nil
}

// ConfirmPasswordReset redeems a reset link once and stores the new
// password. A mismatched confirmation is rejected before the link is looked
// at.
func (e *Engine) ConfirmPasswordReset(ctx context.Context, token string, req PasswordResetConfirmRequest) error {
	if e == nil {
		return ErrEngineNotReady
	}
	if req.NewPassword != req.ConfirmPassword {
		return ErrPasswordMismatch
	}
	if err := req.Validate(); err != nil {
		return newInputError(err)
	}

	maxAge := e.config.Links.ResetMaxAge
	email, err := e.openLink(token, linkPurposeReset, maxAge)
	if err != nil {
		return err
	}

	user, err := e.users.GetByEmail(ctx, email)
	if err != nil {
		return mapUserErr(err)
	}

	if err := e.consumed.Consume(ctx, token, maxAge); err != nil {
		if errors.Is(err, stores.ErrAlreadyConsumed) {
			e.metrics.Inc(metrics.EventResetReplay)
			return ErrTokenConsumed
		}
		return fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}

	if err := e.storeNewPassword(ctx, user, req.NewPassword); err != nil {
		if relErr := e.consumed.Release(ctx, token); relErr != nil {
			e.log.Warn(ctx, "reset link release failed", "error", relErr)
		}
		return err
	}

	if err := e.throttle.clearLogin(ctx, user.Email, ""); err != nil {
		e.log.Warn(ctx, "login throttle reset failed", "error", err)
	}

	e.metrics.Inc(metrics.EventResetConfirmed)
	e.log.Info(ctx, "password reset", "user_uid", user.UID)
	return nil
}

func (e *Engine) storeNewPassword(ctx context.Context, user *users.User, pw string) error {
	hash, err := e.hashPassword(ctx, pw)
	if err != nil {
		return mapHashErr(err)
	}
	if _, err := e.users.Update(ctx, user.UID, users.Patch{PasswordHash: &hash}); err != nil {
		return mapUserErr(err)
	}
	return nil
}

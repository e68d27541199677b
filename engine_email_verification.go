package bloombox

import (
	"context"
	"errors"

	"github.com/MrEthical07/bloombox/mail"
	"github.com/MrEthical07/bloombox/metrics"
	"github.com/MrEthical07/bloombox/users"
)

func (e *Engine) sendVerification(ctx context.Context, user *users.User) error {
	link, err := e.issueLink(verifyPath, linkPurposeVerify, user.Email)
	if err != nil {
		return err
	}
	msg, err := mail.VerificationEmail(e.config.AppName, user.Email, user.Username, link)
	if err != nil {
		return err
	}
	if !e.mailer.Enqueue(ctx, msg) {
		return errors.New("mail queue rejected message")
	}
	return nil
}

// VerifyEmail redeems a verification link and marks the account verified.
// Redeeming the same link twice is harmless.
func (e *Engine) VerifyEmail(ctx context.Context, token string) (*users.User, error) {
	if e == nil {
		return nil, ErrEngineNotReady
	}

	email, err := e.openLink(token, linkPurposeVerify, e.config.Links.VerifyMaxAge)
	if err != nil {
		return nil, err
	}

	user, err := e.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, mapUserErr(err)
	}
	if user.IsVerified {
		return user, nil
	}

	verified := true
	user, err = e.users.Update(ctx, user.UID, users.Patch{IsVerified: &verified})
	if err != nil {
		return nil, mapUserErr(err)
	}

	e.metrics.Inc(metrics.EventEmailVerified)
	e.log.Info(ctx, "email verified", "user_uid", user.UID)
	return user, nil
}

// ResendVerification queues a fresh verification link when email belongs to
// an unverified account. The result never reveals whether it does.
func (e *Engine) ResendVerification(ctx context.Context, req EmailRequest) error {
	if e == nil {
		return ErrEngineNotReady
	}
	if err := req.Validate(); err != nil {
		return newInputError(err)
	}

	user, err := e.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return nil
		}
		return mapUserErr(err)
	}
	if user.IsVerified {
		return nil
	}

	if err := e.sendVerification(ctx, user); err != nil {
		e.log.Error(ctx, "verification email not queued", "user_uid", user.UID, "error", err)
	}
	return nil
}

package bloombox

import (
	"context"
	"errors"

	"github.com/MrEthical07/bloombox/metrics"
	"github.com/MrEthical07/bloombox/password"
	"github.com/MrEthical07/bloombox/users"
	validation "github.com/go-ozzo/ozzo-validation"
)

var errSignupRole = errors.New("cannot be chosen at signup")

// Signup registers an unverified account and queues the verification email.
// An existing email yields ErrUserAlreadyExists and writes nothing.
func (e *Engine) Signup(ctx context.Context, req SignupRequest) (*users.User, error) {
	if e == nil {
		return nil, ErrEngineNotReady
	}
	if err := req.Validate(); err != nil {
		return nil, newInputError(err)
	}
	role, err := e.signupRole(req.Role)
	if err != nil {
		return nil, err
	}

	email := normalizeEmail(req.Email)
	exists, err := e.users.Exists(ctx, email)
	if err != nil {
		return nil, mapUserErr(err)
	}
	if exists {
		e.metrics.Inc(metrics.EventSignupDuplicate)
		return nil, ErrUserAlreadyExists
	}

	hash, err := e.hashPassword(ctx, req.Password)
	if err != nil {
		return nil, mapHashErr(err)
	}

	user, err := e.users.Create(ctx, users.NewUser{
		Username:     req.Username,
		Email:        email,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Role:         role,
		PasswordHash: hash,
	})
	if err != nil {
		if errors.Is(err, users.ErrDuplicateEmail) {
			e.metrics.Inc(metrics.EventSignupDuplicate)
		}
		return nil, mapUserErr(err)
	}

	e.metrics.Inc(metrics.EventSignup)
	e.log.Info(ctx, "user signed up", "user_uid", user.UID, "role", user.Role)

	if err := e.sendVerification(ctx, user); err != nil {
		// The account exists; the user can ask for another link.
		e.log.Error(ctx, "verification email not queued", "user_uid", user.UID, "error", err)
	}

	return user, nil
}

// signupRole returns the role a new account gets. Only RoleUser may be
// requested unless Security.AllowSignupRole is set.
func (e *Engine) signupRole(requested string) (string, error) {
	if requested == "" || requested == users.RoleUser {
		return users.RoleUser, nil
	}
	if !e.config.Security.AllowSignupRole {
		e.metrics.Inc(metrics.EventSignupRoleRejected)
		return "", &InputError{Fields: validation.Errors{"role": errSignupRole}}
	}
	return requested, nil
}

func mapHashErr(err error) error {
	switch {
	case errors.Is(err, password.ErrEmptyPassword), errors.Is(err, password.ErrPasswordTooLong):
		return &InputError{Fields: validation.Errors{"password": err}}
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	default:
		return errors.Join(errors.New("password hashing failed"), err)
	}
}

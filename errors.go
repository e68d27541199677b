package bloombox

import (
	"errors"
	"net/http"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
)

var (
	// ErrInvalidToken covers a missing, malformed, expired or revoked bearer token.
	ErrInvalidToken = errors.New("invalid or expired token")
	// ErrAccessTokenRequired is returned when a refresh token is presented where an access token is needed.
	ErrAccessTokenRequired = errors.New("access token required")
	// ErrRefreshTokenRequired is returned when an access token is presented where a refresh token is needed.
	ErrRefreshTokenRequired = errors.New("refresh token required")
	// ErrInsufficientPermission is returned when the caller's role is not allowed.
	ErrInsufficientPermission = errors.New("insufficient permission")
	// ErrAccountNotVerified is returned by role checks for unverified accounts.
	ErrAccountNotVerified = errors.New("account not verified")
	// ErrUserNotFound is returned when the directory has no matching user.
	ErrUserNotFound = errors.New("user not found")
	// ErrUserAlreadyExists is returned by Signup for a registered email.
	ErrUserAlreadyExists = errors.New("user already exists")
	// ErrInvalidCredentials is returned by Login for an unknown email or a wrong password.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrLoginRateLimited is returned after too many failed logins.
	ErrLoginRateLimited = errors.New("login rate limited")
	// ErrRefreshRateLimited is returned when one refresh token is exchanged too often.
	ErrRefreshRateLimited = errors.New("refresh rate limited")
	// ErrTokenExpired is returned for signed links older than their max age.
	ErrTokenExpired = errors.New("token has expired")
	// ErrInvalidSignature is returned for tampered or foreign signed links.
	ErrInvalidSignature = errors.New("invalid token")
	// ErrTokenConsumed is returned when a password reset link is reused.
	ErrTokenConsumed = errors.New("token already used")
	// ErrTokenCreation is returned when a token or link cannot be produced.
	ErrTokenCreation = errors.New("could not create token")
	// ErrTokenDecode is returned when a signed link cannot be decoded for another reason.
	ErrTokenDecode = errors.New("could not decode token")
	// ErrPasswordMismatch is returned when the new password and its confirmation differ.
	ErrPasswordMismatch = errors.New("passwords do not match")
	// ErrInvalidInput is the base for request validation failures. See [InputError].
	ErrInvalidInput = errors.New("invalid input")
	// ErrRevocationUnavailable is returned when the revocation blocklist cannot be read or written.
	ErrRevocationUnavailable = errors.New("revocation backend unavailable")
	// ErrBackendUnavailable is returned when another Redis-backed control (throttle, link ledger) fails.
	ErrBackendUnavailable = errors.New("backend unavailable")
	// ErrEngineNotReady is returned by methods on a nil or unbuilt Engine.
	ErrEngineNotReady = errors.New("engine not initialized")
)

// InputError carries per-field validation messages. It matches ErrInvalidInput
// under errors.Is.
type InputError struct {
	Fields validation.Errors
}

func (e *InputError) Error() string {
	return ErrInvalidInput.Error() + ": " + e.Fields.Error()
}

func (e *InputError) Unwrap() error {
	return ErrInvalidInput
}

// newInputError converts an ozzo-validation result into an *InputError.
// Internal rule errors are returned unchanged.
func newInputError(err error) error {
	if err == nil {
		return nil
	}
	var fields validation.Errors
	if errors.As(err, &fields) {
		return &InputError{Fields: fields}
	}
	if _, ok := err.(validation.InternalError); ok {
		return err
	}
	return &InputError{Fields: validation.Errors{"request": err}}
}

// ErrorDetail is the transport-neutral description of an error.
type ErrorDetail struct {
	Status  int
	Code    string
	Message string
}

var errorTable = []struct {
	err    error
	detail ErrorDetail
}{
	{ErrInvalidToken, ErrorDetail{http.StatusUnauthorized, "invalid_token", "Token is invalid or expired"}},
	{ErrAccessTokenRequired, ErrorDetail{http.StatusUnauthorized, "access_token_required", "Please provide a valid access token"}},
	{ErrRefreshTokenRequired, ErrorDetail{http.StatusForbidden, "refresh_token_required", "Please provide a valid refresh token"}},
	{ErrInsufficientPermission, ErrorDetail{http.StatusForbidden, "insufficient_permissions", "You do not have enough permissions to perform this action"}},
	{ErrAccountNotVerified, ErrorDetail{http.StatusForbidden, "account_not_verified", "Account not verified. Please check your email for the verification link"}},
	{ErrUserNotFound, ErrorDetail{http.StatusNotFound, "user_not_found", "User not found"}},
	{ErrUserAlreadyExists, ErrorDetail{http.StatusForbidden, "user_exists", "User with this email already exists"}},
	{ErrInvalidCredentials, ErrorDetail{http.StatusUnauthorized, "invalid_email_or_password", "Invalid email or password"}},
	{ErrLoginRateLimited, ErrorDetail{http.StatusTooManyRequests, "too_many_attempts", "Too many failed login attempts, try again later"}},
	{ErrRefreshRateLimited, ErrorDetail{http.StatusTooManyRequests, "too_many_attempts", "Too many token refreshes, try again later"}},
	{ErrTokenExpired, ErrorDetail{http.StatusBadRequest, "token_expired", "Token has expired"}},
	{ErrInvalidSignature, ErrorDetail{http.StatusBadRequest, "invalid_signature", "Invalid token"}},
	{ErrTokenConsumed, ErrorDetail{http.StatusBadRequest, "token_already_used", "This link has already been used"}},
	{ErrTokenCreation, ErrorDetail{http.StatusInternalServerError, "token_creation_failed", "Could not create token"}},
	{ErrTokenDecode, ErrorDetail{http.StatusInternalServerError, "token_decode_failed", "Could not decode token"}},
	{ErrPasswordMismatch, ErrorDetail{http.StatusBadRequest, "password_mismatch", "Passwords do not match"}},
	{ErrRevocationUnavailable, ErrorDetail{http.StatusServiceUnavailable, "backend_unavailable", "Service temporarily unavailable"}},
	{ErrBackendUnavailable, ErrorDetail{http.StatusServiceUnavailable, "backend_unavailable", "Service temporarily unavailable"}},
}

var internalErrorDetail = ErrorDetail{http.StatusInternalServerError, "internal_error", "Internal server error"}

// ErrorInfo maps err to an HTTP status, a stable machine-readable code and a
// human message. Unknown errors map to 500 internal_error and never leak
// their text.
func ErrorInfo(err error) ErrorDetail {
	if err == nil {
		return ErrorDetail{Status: http.StatusOK}
	}

	var inputErr *InputError
	if errors.As(err, &inputErr) {
		return ErrorDetail{http.StatusBadRequest, "invalid_input", strings.TrimPrefix(inputErr.Error(), ErrInvalidInput.Error()+": ")}
	}
	if errors.Is(err, ErrInvalidInput) {
		return ErrorDetail{http.StatusBadRequest, "invalid_input", "Invalid request"}
	}

	for _, entry := range errorTable {
		if errors.Is(err, entry.err) {
			return entry.detail
		}
	}
	return internalErrorDetail
}

package community

import "errors"

var (
	ErrInvalidData          = errors.New("invalid data")
	ErrInvalidCredentials   = errors.New("invalid account name or password")
	ErrTooManyLoginFailures = errors.New("too many login failures, back off before retrying")
	ErrDeviceLockout        = errors.New("account temporarily locked")
	ErrTooManyAttempts      = errors.New("login attempt ceiling reached")
	ErrInconsistentSession  = errors.New("session cookies disagree on steam id")
	ErrRSAKey               = errors.New("failed to get rsa key")

	ErrTwoFactorRequired = errors.New("requires two factor code")
	ErrEmailCodeRequired = errors.New("requires email code")
	ErrCaptchaRequired   = errors.New("requires captcha")
)

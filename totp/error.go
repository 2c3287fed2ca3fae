package totp

import "errors"

var ErrInvalidSecret = errors.New("invalid secret: expected non-empty base64")

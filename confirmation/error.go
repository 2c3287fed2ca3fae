package confirmation

import "errors"

var (
	ErrNoConfirmations           = errors.New("no matching confirmation")
	ErrConfirmationsUnknownError = errors.New("unknown error occurered finding confirmations")
	ErrNeedAuth                  = errors.New("confirmations need an authenticated session")
	ErrIdentifierNotFound        = errors.New("unable to find identifier on confirmation details page")
	ErrActionRejected            = errors.New("confirmation action rejected")
	ErrInvalidAction             = errors.New("invalid confirmation action")
	ErrInvalidTarget             = errors.New("invalid confirmation target")
)

package manager

import "errors"

var (
	ErrNoValidSession           = errors.New("there is no valid session for this account")
	ErrRegisteredSessionDiffers = errors.New("the session registered on-chain differs from the requested one")
	ErrAccountIsRequired        = errors.New("the account is required")
	ErrWatchingIsAlreadyStarted = errors.New("the storage is already watched")
)

package services

import "errors"

// Business errors exported for handler status-code mapping.
var (
	ErrForbidden            = errors.New("forbidden")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrAccountLocked        = errors.New("account locked, try again later")
	ErrDefaultAddressDelete = errors.New("cannot delete the default address, set another default first")
)

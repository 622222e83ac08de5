package domain

import "errors"

// Error taxonomy per spec §7. C7 maps these to HTTP status codes; C5
// never leaks store-internal errors past this boundary.
var (
	ErrInsufficientCredits = errors.New("INSUFFICIENT_CREDITS")
	ErrOrderNotFound       = errors.New("ORDER_NOT_FOUND")
	ErrOrderNotActive      = errors.New("ORDER_NOT_ACTIVE")
	ErrOrderFullyPledged   = errors.New("ORDER_FULLY_PLEDGED")
	ErrValidation          = errors.New("VALIDATION")
	ErrUnauthenticated     = errors.New("UNAUTHENTICATED")
	ErrUserNotFound        = errors.New("USER_NOT_FOUND")
)

package errs

import "errors"

var (
	ErrTicketNotFound = errors.New("ticket not found")
	ErrInvalidStatus  = errors.New("invalid ticket status")
	ErrRateLimited    = errors.New("ticket limit exceeded: max 5 per 24 hours")
	ErrSessionBlocked = errors.New("session is blocked")
	ErrEmptyMessage   = errors.New("message or image required")
)

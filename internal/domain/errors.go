package domain

import "errors"

// Error taxonomy shared by every layer. Repositories and services wrap
// these sentinels so callers can match with errors.Is without knowing
// which store produced the failure.
var (
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotFound           = errors.New("not found")
	ErrMeetingEnded       = errors.New("meeting has ended")
	ErrMeetingFull        = errors.New("meeting is full")
	ErrCodeExhausted      = errors.New("meeting code attempts exhausted")
	ErrConflict           = errors.New("conflicting concurrent update")
	ErrStoreUnavailable   = errors.New("store unavailable")
)

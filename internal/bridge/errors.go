package bridge

import "errors"

var (
	ErrUnavailable    = errors.New("bridge unavailable")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrNotFound       = errors.New("not found")
	ErrTokenExpired   = errors.New("token expired")
	ErrMalformedReply = errors.New("malformed bridge reply")
)

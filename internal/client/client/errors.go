package client

import "errors"

var (
	ErrUnavailable  = errors.New("server unavailable")
	ErrUnauthorized = errors.New("unauthorized")
	// ErrRejected covers every other non-2xx answer.
	ErrRejected = errors.New("request rejected")
)

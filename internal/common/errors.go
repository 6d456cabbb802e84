// Package common defines sentinel errors and small helpers shared by the
// client, the server and the admin tool. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors.
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorForbidden    = errors.New("forbidden")

	// Validation errors.
	ErrorValidation    = errors.New("validation error")
	ErrorWrongFormat   = errors.New("wrong format")
	ErrorUnknownRole   = errors.New("unknown role")
	ErrorEmptyPassword = errors.New("empty password")
)

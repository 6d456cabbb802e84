// Package metadata is the client's key/value table. Its main tenant is the
// on-device credential store: the login and password accepted by the server.
package metadata

import (
	"context"
	"errors"
)

// Keys used by the client.
const (
	KeyLogin    = "user_login"
	KeyPassword = "user_password"
)

// ErrNoCredentials is returned by LoadCredentials when no login is stored.
var ErrNoCredentials = errors.New("no stored credentials")

type Repository interface {
	// Get returns (nil, nil) when key is absent.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, keys ...string) error

	SaveCredentials(ctx context.Context, login string, password []byte) error
	LoadCredentials(ctx context.Context) (login string, password []byte, err error)
	ForgetCredentials(ctx context.Context) error
}

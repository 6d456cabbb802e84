// Package services contains application services for the seed classifier client.
// This file defines the authentication service: server-verified login,
// logout and the on-device credential store.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/seedclassifier/internal/client/client"
	"github.com/dmitrijs2005/seedclassifier/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/seedclassifier/internal/client/submit"
	"github.com/dmitrijs2005/seedclassifier/internal/common"
	"github.com/dmitrijs2005/seedclassifier/internal/dbx"
)

// ErrNotLoggedIn is returned when no credentials are stored on this device.
var ErrNotLoggedIn = errors.New("not logged in")

// Remote is the part of the HTTP client the services need.
type Remote interface {
	Health(ctx context.Context) error
	Check(ctx context.Context, creds submit.Credentials) error
}

// AuthService defines authentication operations for the CLI.
//
// Credentials makes it a submit.CredentialProvider.
type AuthService interface {
	Login(ctx context.Context, login string, password []byte) error
	Logout(ctx context.Context) error
	Credentials(ctx context.Context) (submit.Credentials, error)
	CurrentUser(ctx context.Context) (string, error)
	Ping(ctx context.Context) error
}

type authService struct {
	remote Remote
	db     *sql.DB
}

func NewAuthService(remote Remote, db *sql.DB) AuthService {
	return &authService{remote: remote, db: db}
}

// Login verifies login/password with GET /check/ and stores them only when
// the server accepts them. password is wiped before returning.
func (a *authService) Login(ctx context.Context, login string, password []byte) error {
	defer common.WipeByteArray(password)

	if login == "" || len(password) == 0 {
		return common.ErrorValidation
	}

	creds := submit.Credentials{Login: login, Password: string(password)}
	if err := a.remote.Check(ctx, creds); err != nil {
		if errors.Is(err, client.ErrUnauthorized) {
			return err
		}
		return fmt.Errorf("login error: %w", err)
	}

	return dbx.WithTx(ctx, a.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return metadata.NewSQLiteRepository(tx).SaveCredentials(ctx, login, []byte(creds.Password))
	})
}

func (a *authService) Logout(ctx context.Context) error {
	return metadata.NewSQLiteRepository(a.db).ForgetCredentials(ctx)
}

func (a *authService) Credentials(ctx context.Context) (submit.Credentials, error) {
	login, password, err := metadata.NewSQLiteRepository(a.db).LoadCredentials(ctx)
	if errors.Is(err, metadata.ErrNoCredentials) {
		return submit.Credentials{}, ErrNotLoggedIn
	}
	if err != nil {
		return submit.Credentials{}, err
	}
	return submit.Credentials{Login: login, Password: string(password)}, nil
}

func (a *authService) CurrentUser(ctx context.Context) (string, error) {
	login, _, err := metadata.NewSQLiteRepository(a.db).LoadCredentials(ctx)
	if errors.Is(err, metadata.ErrNoCredentials) {
		return "", ErrNotLoggedIn
	}
	return login, err
}

func (a *authService) Ping(ctx context.Context) error {
	return a.remote.Health(ctx)
}

package cli

import (
	"context"
	"errors"
	"log"

	"github.com/dmitrijs2005/seedclassifier/internal/client/client"
	"github.com/dmitrijs2005/seedclassifier/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Login asks for credentials (the login may be given as an argument),
// verifies them with the server and stores them on success.
func (a *App) Login(ctx context.Context, args []string) error {
	var (
		login string
		err   error
	)
	if len(args) > 0 {
		login = args[0]
	} else {
		login, err = getSimpleText(a.reader, "Enter login", a.out)
		if err != nil {
			return err
		}
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.authService.Login(ctx, login, password); err != nil {
		switch {
		case errors.Is(err, client.ErrUnauthorized):
			log.Printf("Login unsuccessful: wrong login or password")
		case errors.Is(err, client.ErrUnavailable):
			log.Printf("Login unsuccessful: server unavailable")
		default:
			log.Printf("Login unsuccessful: %s", err.Error())
		}
		return err
	}

	a.userName = login
	log.Printf("Login successful")
	return nil
}

// Logout forgets the stored credentials. The pending list is kept.
func (a *App) Logout(ctx context.Context, _ []string) error {
	if err := a.authService.Logout(ctx); err != nil {
		return err
	}
	a.userName = ""
	return nil
}

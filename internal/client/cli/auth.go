package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/storykeeper/internal/client/client"
)

// getSimpleText and getPassword are swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

var errNotLoggedIn = errors.New("not logged in, use 'login' first")

func (a *App) readCredentials() (string, string, error) {
	userName, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return "", "", err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return "", "", err
	}
	return userName, password, nil
}

// Register creates an account. It does not log in.
func (a *App) Register(ctx context.Context) error {
	userName, password, err := a.readCredentials()
	if err != nil {
		return err
	}

	if err := a.api.Register(ctx, userName, password); err != nil {
		if errors.Is(err, client.ErrConflict) {
			return fmt.Errorf("username %q is taken", userName)
		}
		return err
	}

	fmt.Fprintln(a.out, "Registered", userName)
	return nil
}

// Login authenticates and keeps the token pair in memory.
func (a *App) Login(ctx context.Context) error {
	userName, password, err := a.readCredentials()
	if err != nil {
		return err
	}

	tokens, err := a.api.Login(ctx, userName, password)
	if err != nil {
		if errors.Is(err, client.ErrUnauthorized) {
			return errors.New("wrong username or password")
		}
		return err
	}

	a.userName = userName
	a.tokens = tokens
	fmt.Fprintf(a.out, "Logged in as %s (session valid for %d minutes)\n", userName, tokens.AccessTokenExpires/60)
	return nil
}

// Logout forgets the tokens. Tokens are stateless, so nothing is sent to
// the server.
func (a *App) Logout(ctx context.Context) error {
	a.userName = ""
	a.tokens = nil
	fmt.Fprintln(a.out, "Logged out")
	return nil
}

// Me asks the server who the current token belongs to.
func (a *App) Me(ctx context.Context) error {
	var name string
	err := a.withToken(ctx, func(token string) error {
		var err error
		name, err = a.api.Me(ctx, token)
		return err
	})
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, "You are", name)
	return nil
}

// withToken runs call with the access token. On a 401 it refreshes the
// access token once and retries; if the refresh fails too the session is
// dropped.
func (a *App) withToken(ctx context.Context, call func(token string) error) error {
	if !a.isLoggedIn() {
		return errNotLoggedIn
	}

	err := call(a.tokens.AccessToken)
	if !errors.Is(err, client.ErrUnauthorized) {
		return err
	}

	fresh, rerr := a.api.Refresh(ctx, a.tokens.RefreshToken)
	if rerr != nil {
		a.userName, a.tokens = "", nil
		return fmt.Errorf("session expired, please log in again: %w", rerr)
	}
	a.tokens = fresh

	return call(a.tokens.AccessToken)
}

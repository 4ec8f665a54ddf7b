// Package services contains server-side business logic. This file implements
// UserService: registration, credential verification, token issuance and
// per-request identity resolution.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/storykeeper/internal/common"
	"github.com/dmitrijs2005/storykeeper/internal/logging"
	"github.com/dmitrijs2005/storykeeper/internal/server/auth"
	"github.com/dmitrijs2005/storykeeper/internal/server/models"
	"github.com/dmitrijs2005/storykeeper/internal/server/repositories/repomanager"
)

// dummyPassword is hashed once at startup; unknown usernames are checked
// against that hash so a failed login costs the same either way.
const dummyPassword = "storykeeper: no such user"

// TokenPair is the result of a successful login or refresh. Expiries are
// lifetimes relative to the moment of issue.
type TokenPair struct {
	AccessToken         string
	AccessTokenExpires  time.Duration
	RefreshToken        string
	RefreshTokenExpires time.Duration
}

// UserService provides the authentication operations.
type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	hasher      *auth.PasswordHasher
	codec       *auth.TokenCodec
	log         logging.Logger
	dummyHash   string
	now         func() time.Time
}

// NewUserService wires a UserService. It fails only if the dummy hash used
// for unknown-user logins cannot be computed.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, hasher *auth.PasswordHasher,
	codec *auth.TokenCodec, log logging.Logger) (*UserService, error) {

	dummy, err := hasher.Hash(dummyPassword)
	if err != nil {
		return nil, fmt.Errorf("precompute dummy hash: %w", err)
	}

	return &UserService{
		db:          db,
		repomanager: m,
		hasher:      hasher,
		codec:       codec,
		log:         log.With("module", "users"),
		dummyHash:   dummy,
		now:         time.Now,
	}, nil
}

// Register creates an account. A taken username yields common.ErrConflict,
// whether it is seen by the lookup or by the store's unique constraint.
// Surrounding whitespace is not part of the username.
func (s *UserService) Register(ctx context.Context, username, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, fmt.Errorf("%w: username and password are required", common.ErrorValidation)
	}

	repo := s.repomanager.Users(s.db)

	_, err := repo.GetUserByLogin(ctx, username)
	switch {
	case err == nil:
		return nil, common.ErrConflict
	case !errors.Is(err, common.ErrorNotFound):
		return nil, fmt.Errorf("%w: lookup user: %w", common.ErrorInternal, err)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		if errors.Is(err, common.ErrorValidation) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", common.ErrorInternal, err)
	}

	user, err := repo.Create(ctx, &models.User{UserName: username, PasswordHash: hash})
	if err != nil {
		if errors.Is(err, common.ErrConflict) {
			return nil, common.ErrConflict
		}
		return nil, fmt.Errorf("%w: create user: %w", common.ErrorInternal, err)
	}

	s.log.Info(ctx, "user registered", "username", user.UserName)
	return user, nil
}

// VerifyLogin checks a username/password pair. Unknown usernames and wrong
// passwords both yield common.ErrInvalidCredentials.
func (s *UserService) VerifyLogin(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.repomanager.Users(s.db).GetUserByLogin(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.hasher.Verify(password, s.dummyHash)
			return nil, common.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("%w: lookup user: %w", common.ErrorInternal, err)
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, common.ErrInvalidCredentials
	}

	return user, nil
}

// Login verifies the credential and issues an access/refresh token pair.
func (s *UserService) Login(ctx context.Context, username, password string) (*TokenPair, error) {
	user, err := s.VerifyLogin(ctx, username, password)
	if err != nil {
		if errors.Is(err, common.ErrInvalidCredentials) {
			s.log.Info(ctx, "login rejected", "username", username)
		}
		return nil, err
	}

	subject := auth.Subject{Username: user.UserName}

	access, _, err := s.codec.IssueAccess(subject)
	if err != nil {
		return nil, fmt.Errorf("%w: issue access token: %w", common.ErrorInternal, err)
	}

	refresh, _, err := s.codec.IssueRefresh(subject)
	if err != nil {
		return nil, fmt.Errorf("%w: issue refresh token: %w", common.ErrorInternal, err)
	}

	s.log.Info(ctx, "user logged in", "username", user.UserName)

	return &TokenPair{
		AccessToken:         access,
		AccessTokenExpires:  s.codec.AccessExpiry(),
		RefreshToken:        refresh,
		RefreshTokenExpires: s.codec.RefreshExpiry(),
	}, nil
}

// Refresh exchanges a refresh token for a new access token. The refresh token
// itself is returned unchanged together with its remaining lifetime.
func (s *UserService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	if refreshToken == "" {
		return nil, common.ErrMissingCredentials
	}

	claims, err := s.decode(ctx, refreshToken, auth.TokenTypeRefresh)
	if err != nil {
		return nil, err
	}

	user, err := s.lookupSubject(ctx, claims)
	if err != nil {
		return nil, err
	}

	access, _, err := s.codec.IssueAccess(auth.Subject{Username: user.UserName})
	if err != nil {
		return nil, fmt.Errorf("%w: issue access token: %w", common.ErrorInternal, err)
	}

	return &TokenPair{
		AccessToken:         access,
		AccessTokenExpires:  s.codec.AccessExpiry(),
		RefreshToken:        refreshToken,
		RefreshTokenExpires: claims.ExpiresAt.Sub(s.now()),
	}, nil
}

// Resolve maps a bearer access token to the account it names.
//
// Outcomes: common.ErrMissingCredentials for an empty token,
// common.ErrInvalidCredentials for anything the codec rejects (expired
// included) or a non-access token, common.ErrAccountNotFound when the named
// account no longer exists.
func (s *UserService) Resolve(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, common.ErrMissingCredentials
	}

	claims, err := s.decode(ctx, token, auth.TokenTypeAccess)
	if err != nil {
		return nil, err
	}

	return s.lookupSubject(ctx, claims)
}

// WhoAmI returns the public view of an already resolved account.
func (s *UserService) WhoAmI(user *models.User) models.UserView {
	return user.View()
}

func (s *UserService) decode(ctx context.Context, token, wantType string) (*auth.Claims, error) {
	claims, err := s.codec.Decode(token)
	if err != nil {
		s.log.Warn(ctx, "token rejected", "reason", err.Error())
		return nil, common.ErrInvalidCredentials
	}
	if claims.TokenType != wantType {
		s.log.Warn(ctx, "token rejected", "reason", "unexpected token type", "type", claims.TokenType)
		return nil, common.ErrInvalidCredentials
	}
	return claims, nil
}

func (s *UserService) lookupSubject(ctx context.Context, claims *auth.Claims) (*models.User, error) {
	user, err := s.repomanager.Users(s.db).GetUserByLogin(ctx, claims.Identity.Username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.log.Warn(ctx, "token names a missing account", "username", claims.Identity.Username)
			return nil, common.ErrAccountNotFound
		}
		return nil, fmt.Errorf("%w: lookup user: %w", common.ErrorInternal, err)
	}
	return user, nil
}

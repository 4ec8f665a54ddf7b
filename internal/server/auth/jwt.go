// Package auth implements the server's credential primitives: bcrypt
// password hashing and the HS256 JWT codec for access and refresh tokens.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/storykeeper/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Token types carried in the "type" claim.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// Subject is the identity payload embedded in every token.
type Subject struct {
	Username string `json:"username"`
}

// Claims holds the registered claims plus the identity payload and the token type.
// The identity travels under "subject" rather than the registered "sub".
type Claims struct {
	jwt.RegisteredClaims
	Identity  Subject `json:"subject"`
	TokenType string  `json:"type"`
}

// TokenCodec issues and decodes signed, time-bounded tokens. It holds no
// mutable state and is safe for concurrent use.
type TokenCodec struct {
	secret        []byte
	accessExpiry  time.Duration
	refreshExpiry time.Duration
	now           func() time.Time
}

// NewTokenCodec returns a codec keyed by secret. An empty secret is an error.
func NewTokenCodec(secret string, accessExpiry, refreshExpiry time.Duration) (*TokenCodec, error) {
	if secret == "" {
		return nil, errors.New("token codec: empty secret")
	}
	return &TokenCodec{
		secret:        []byte(secret),
		accessExpiry:  accessExpiry,
		refreshExpiry: refreshExpiry,
		now:           time.Now,
	}, nil
}

// AccessExpiry is the lifetime of access tokens.
func (c *TokenCodec) AccessExpiry() time.Duration { return c.accessExpiry }

// RefreshExpiry is the lifetime of refresh tokens.
func (c *TokenCodec) RefreshExpiry() time.Duration { return c.refreshExpiry }

// IssueAccess mints an access token for subject and returns it with its expiry.
func (c *TokenCodec) IssueAccess(subject Subject) (string, time.Time, error) {
	return c.issue(subject, TokenTypeAccess, c.accessExpiry)
}

// IssueRefresh mints a refresh token for subject and returns it with its expiry.
func (c *TokenCodec) IssueRefresh(subject Subject) (string, time.Time, error) {
	return c.issue(subject, TokenTypeRefresh, c.refreshExpiry)
}

func (c *TokenCodec) issue(subject Subject, tokenType string, validity time.Duration) (string, time.Time, error) {
	now := c.now()
	expires := now.Add(validity)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
		Identity:  subject,
		TokenType: tokenType,
	})

	tokenString, err := token.SignedString(c.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign %s token: %w", tokenType, err)
	}

	return tokenString, expires, nil
}

// Decode verifies the signature and lifetime of tokenString and returns its
// claims. It fails with common.ErrTokenExpired when the signature is valid
// but the token is past its expiry, and with common.ErrInvalidToken for every
// other problem.
func (c *TokenCodec) Decode(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: %v", common.ErrTokenExpired, err)
		}
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}

	if !token.Valid {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}

// Package models defines server-side data models persisted in the database.
package models

import (
	"time"

	"github.com/google/uuid"
)

// User is a registered account. PasswordHash holds a bcrypt hash and is never
// serialized to clients; use View for responses.
type User struct {
	ID           string
	UserName     string
	PasswordHash string
	CreatedAt    time.Time
}

// UserView is the non-sensitive public shape of an account.
type UserView struct {
	Username string `json:"username"`
}

// View returns the public shape of u.
func (u *User) View() UserView {
	return UserView{Username: u.UserName}
}

// NewUserID returns a fresh time-ordered (v7) identifier together with the
// creation time encoded in it.
func NewUserID() (string, time.Time, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", time.Time{}, err
	}
	return id.String(), CreatedAtFromID(id.String()), nil
}

// CreatedAtFromID recovers the creation time embedded in a v7 identifier.
// Identifiers of other versions, or unparsable ones, yield the zero time.
func CreatedAtFromID(id string) time.Time {
	u, err := uuid.Parse(id)
	if err != nil || u.Version() != 7 {
		return time.Time{}
	}
	sec, nsec := u.Time().UnixTime()
	return time.Unix(sec, nsec).UTC()
}

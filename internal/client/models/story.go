// Package models holds the client-side shapes of API payloads.
package models

import "time"

// Tokens is the token pair returned by login and refresh. Expiries are
// lifetimes in seconds as reported by the server.
type Tokens struct {
	AccessToken         string `json:"access_token"`
	AccessTokenExpires  int64  `json:"access_token_expires"`
	RefreshToken        string `json:"refresh_token"`
	RefreshTokenExpires int64  `json:"refresh_token_expires"`
}

// Story mirrors the server's story representation.
type Story struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Country   *string   `json:"country"`
	Author    string    `json:"author"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// StoryInput is the body sent when creating a story.
type StoryInput struct {
	Title   string  `json:"title"`
	Content string  `json:"content"`
	Country *string `json:"country,omitempty"`
}

// CountryOrDash returns the story's country, or "-" when it has none.
func (s Story) CountryOrDash() string {
	if s.Country == nil {
		return "-"
	}
	return *s.Country
}

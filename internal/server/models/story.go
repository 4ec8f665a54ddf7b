package models

import (
	"bytes"
	"encoding/json"
	"time"
)

// Story is a short narrative record owned by its author (a username).
type Story struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Country   *string   `json:"country"`
	Author    string    `json:"author"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// StoryInput carries the fields accepted when creating a story.
type StoryInput struct {
	Title   string  `json:"title" binding:"required"`
	Content string  `json:"content" binding:"required"`
	Country *string `json:"country"`
}

// StoryPatch carries a partial update; nil fields are left unchanged.
// ClearCountry is set when the JSON body has an explicit "country": null.
type StoryPatch struct {
	Title        *string `json:"title,omitempty"`
	Content      *string `json:"content,omitempty"`
	Country      *string `json:"country,omitempty"`
	ClearCountry bool    `json:"-"`
}

// UnmarshalJSON tells an absent "country" apart from an explicit null.
func (p *StoryPatch) UnmarshalJSON(data []byte) error {
	type plain StoryPatch
	var v plain
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*p = StoryPatch(v)
	if c, ok := raw["country"]; ok && bytes.Equal(bytes.TrimSpace(c), []byte("null")) {
		p.ClearCountry = true
	}
	return nil
}

// Empty reports whether the patch changes nothing.
func (p StoryPatch) Empty() bool {
	return p.Title == nil && p.Content == nil && p.Country == nil && !p.ClearCountry
}

// Apply copies the set fields of p onto s.
func (p StoryPatch) Apply(s *Story) {
	if p.Title != nil {
		s.Title = *p.Title
	}
	if p.Content != nil {
		s.Content = *p.Content
	}
	switch {
	case p.ClearCountry:
		s.Country = nil
	case p.Country != nil:
		s.Country = p.Country
	}
}

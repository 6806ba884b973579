package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNoIdentity is returned when a post carries neither an id nor a url.
	ErrNoIdentity = errors.New("post has neither id nor url")
	// ErrInvalidPost marks a post record missing required fields.
	ErrInvalidPost = errors.New("invalid post data")
)

// PostID is the backend identifier of a post. The backend emits integers,
// older feeds and the sample data use strings; both decode into PostID.
type PostID string

// UnmarshalJSON accepts a JSON number, string or null.
func (id *PostID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("decode post id: %w", err)
		}
		*id = PostID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("decode post id: %w", err)
	}
	*id = PostID(n.String())
	return nil
}

// Post is a news article surfaced from an external feed.
type Post struct {
	ID        PostID   `json:"id,omitempty"`
	Source    string   `json:"source"`
	Platform  string   `json:"platform"`
	URL       string   `json:"url"`
	Title     string   `json:"title,omitempty"`
	Content   string   `json:"content"`
	Summary   string   `json:"summary,omitempty"`
	Tags      []string `json:"tags,omitempty"`
	Timestamp string   `json:"timestamp"`
	Category  string   `json:"category,omitempty"`
	Thumbnail string   `json:"thumbnail,omitempty"`
	Author    string   `json:"author,omitempty"`
}

// Key returns the stable rendering identity of the post: its id, or its url
// when the id is absent.
func (p Post) Key() (string, error) {
	if id := strings.TrimSpace(string(p.ID)); id != "" {
		return id, nil
	}
	if u := strings.TrimSpace(p.URL); u != "" {
		return u, nil
	}
	return "", ErrNoIdentity
}

// Validate reports ErrInvalidPost when a required field is blank.
func (p Post) Validate() error {
	if strings.TrimSpace(p.Source) == "" {
		return fmt.Errorf("%w: missing source", ErrInvalidPost)
	}
	return nil
}

// PersonalizedPost is a post annotated with its relevance to the user's
// preferences. Post points at the caller's element.
type PersonalizedPost struct {
	Post           *Post  `json:"post"`
	RelevanceScore int    `json:"relevance_score"`
	Justification  string `json:"justification"`
}

// Preferences are the user's content preferences as stored by the backend.
// PreferredCategories double as the preferred topics for scoring.
type Preferences struct {
	PreferredSources    []string `json:"preferred_sources"`
	PreferredCategories []string `json:"preferred_categories"`
}

// SavedPost is a bookmarked post.
type SavedPost struct {
	ID      int64  `json:"id"`
	PostID  int64  `json:"post_id"`
	SavedAt string `json:"saved_at"`
	Post    Post   `json:"post"`
}

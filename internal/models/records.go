package models

import "time"

// RSSSource describes a feed configured on the backend.
type RSSSource struct {
	Source      string `json:"source"`
	URL         string `json:"url"`
	Description string `json:"description,omitempty"`
	Category    string `json:"category,omitempty"`
	SourceType  string `json:"source_type,omitempty"`
	Platform    string `json:"platform,omitempty"`
}

// RSSRun is one execution of the backend's RSS scraping pipeline.
type RSSRun struct {
	ID                  int64    `json:"id"`
	StartedAt           string   `json:"started_at"`
	EndedAt             *string  `json:"ended_at"`
	DurationSeconds     *float64 `json:"duration_seconds"`
	NumSourcesTotal     int      `json:"num_sources_total"`
	NumSourcesSkipped   int      `json:"num_sources_skipped"`
	NumSourcesCaptured  int      `json:"num_sources_captured"`
	NumArticlesCaptured int      `json:"num_articles_captured"`
	Status              string   `json:"status"`
	ErrorMessage        *string  `json:"error_message,omitempty"`
}

// Note is a free-form user note.
type Note struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at,omitempty"`
}

// NoteInput is the payload for creating or editing a note.
type NoteInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// ChatRole distinguishes the two sides of an assistant conversation.
type ChatRole string

const (
	RoleUser      ChatRole = "user"
	RoleAssistant ChatRole = "assistant"
)

// ChatMessage is one entry of the assistant conversation.
type ChatMessage struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Role      ChatRole  `json:"role"`
	Timestamp time.Time `json:"timestamp"`
}

// SummaryRequest asks the backend to summarize articles of some sources over
// a date range. Dates are formatted as YYYY-MM-DD.
type SummaryRequest struct {
	Sources   []string `json:"sources"`
	StartDate string   `json:"start_date"`
	EndDate   string   `json:"end_date"`
	Combined  bool     `json:"combined"`
}

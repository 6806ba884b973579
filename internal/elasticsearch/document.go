package elasticsearch

import (
	"fmt"
	"strings"
	"time"

	"github.com/DeafMist/ai-news-dashboard/internal/models"
	"github.com/DeafMist/ai-news-dashboard/internal/processing"
)

// PostDocument is the mirrored representation of a post.
type PostDocument struct {
	ID        string    `json:"id"`
	Source    string    `json:"source"`
	Platform  string    `json:"platform"`
	Title     string    `json:"title"`
	Summary   string    `json:"summary,omitempty"`
	Content   string    `json:"content"`
	URL       string    `json:"url,omitempty"`
	Tags      []string  `json:"tags"`
	Links     []string  `json:"links,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// KeywordRule controls keyword extraction for posts without tags.
type KeywordRule struct {
	Limit     int
	MinLength int
}

// NewPostDocument converts a backend post. Posts without a parseable
// timestamp are stamped with seenAt.
func NewPostDocument(p models.Post, rule KeywordRule, seenAt time.Time) (PostDocument, error) {
	key, err := p.Key()
	if err != nil {
		return PostDocument{}, fmt.Errorf("build document: %w", err)
	}

	content := processing.StripHTML(p.Content)
	title := processing.DisplayTitle(p)

	ts := processing.ParseTimestamp(p.Timestamp)
	if ts.IsZero() {
		ts = seenAt
	}

	tags := make([]string, 0, len(p.Tags))
	for _, tag := range p.Tags {
		if t := strings.TrimSpace(tag); t != "" {
			tags = append(tags, t)
		}
	}
	if len(tags) == 0 {
		tags = processing.ExtractKeywords(title+" "+content, rule.Limit, rule.MinLength)
	}

	return PostDocument{
		ID:        key,
		Source:    strings.TrimSpace(p.Source),
		Platform:  strings.TrimSpace(p.Platform),
		Title:     title,
		Summary:   strings.TrimSpace(p.Summary),
		Content:   content,
		URL:       strings.TrimSpace(p.URL),
		Tags:      tags,
		Links:     processing.ExtractURLs(content),
		Timestamp: ts.UTC(),
	}, nil
}

package feed

import (
	"errors"
	"slices"
	"sort"
	"time"

	"github.com/DeafMist/ai-news-dashboard/internal/models"
	"github.com/DeafMist/ai-news-dashboard/internal/processing"
)

// ErrInvalidPageSize is returned for a non-positive page size.
var ErrInvalidPageSize = errors.New("page size must be positive")

// Query selects a page of the feed. An empty Platform and an empty Sources
// selection both mean "no restriction".
type Query struct {
	Platform string
	Sources  []string
	Page     int
	PageSize int
}

// Page is one page of the filtered feed.
type Page struct {
	Items      []models.Post `json:"items"`
	Page       int           `json:"page"`
	TotalPages int           `json:"total_pages"`
	Total      int           `json:"total"`
}

// SourceOption is an entry of the source filter.
type SourceOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Paginate restricts posts by platform and selected sources and returns the
// requested page. Pages outside [1, TotalPages] are empty.
func Paginate(posts []models.Post, q Query) (Page, error) {
	if q.PageSize <= 0 {
		return Page{}, ErrInvalidPageSize
	}

	filtered := FilterSources(FilterPlatform(posts, q.Platform), q.Sources)
	total := len(filtered)
	totalPages := (total + q.PageSize - 1) / q.PageSize

	page := Page{
		Items:      []models.Post{},
		Page:       q.Page,
		TotalPages: totalPages,
		Total:      total,
	}
	if q.Page < 1 || q.Page > totalPages {
		return page, nil
	}

	start := (q.Page - 1) * q.PageSize
	end := min(start+q.PageSize, total)
	page.Items = filtered[start:end]
	return page, nil
}

// FilterPlatform keeps posts whose platform equals platform exactly.
// An empty platform keeps everything.
func FilterPlatform(posts []models.Post, platform string) []models.Post {
	if platform == "" {
		return posts
	}
	out := make([]models.Post, 0, len(posts))
	for _, p := range posts {
		if p.Platform == platform {
			out = append(out, p)
		}
	}
	return out
}

// FilterSources keeps posts whose source is selected. An empty selection
// keeps everything.
func FilterSources(posts []models.Post, sources []string) []models.Post {
	if len(sources) == 0 {
		return posts
	}
	out := make([]models.Post, 0, len(posts))
	for _, p := range posts {
		if slices.Contains(sources, p.Source) {
			out = append(out, p)
		}
	}
	return out
}

// AvailableSources lists the distinct sources of the platform-restricted
// posts in order of first appearance.
func AvailableSources(posts []models.Post, platform string) []SourceOption {
	seen := make(map[string]struct{})
	out := make([]SourceOption, 0)
	for _, p := range FilterPlatform(posts, platform) {
		if _, ok := seen[p.Source]; ok {
			continue
		}
		seen[p.Source] = struct{}{}
		out = append(out, SourceOption{Value: p.Source, Label: p.Source})
	}
	return out
}

// Recent returns the posts published on the calendar day of now (in now's
// location), newest first. limit <= 0 disables the cap.
func Recent(posts []models.Post, now time.Time, limit int) []models.Post {
	type dated struct {
		post models.Post
		ts   time.Time
	}

	y, m, d := now.Date()
	today := make([]dated, 0)
	for _, p := range posts {
		ts := processing.ParseTimestamp(p.Timestamp)
		if ts.IsZero() {
			continue
		}
		py, pm, pd := ts.In(now.Location()).Date()
		if py == y && pm == m && pd == d {
			today = append(today, dated{post: p, ts: ts})
		}
	}

	sort.SliceStable(today, func(i, j int) bool {
		return today[i].ts.After(today[j].ts)
	})

	if limit > 0 && len(today) > limit {
		today = today[:limit]
	}

	out := make([]models.Post, 0, len(today))
	for _, d := range today {
		out = append(out, d.post)
	}
	return out
}

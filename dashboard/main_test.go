package main

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/DeafMist/ai-news-dashboard/internal/backend"
	"github.com/DeafMist/ai-news-dashboard/internal/models"
	"github.com/DeafMist/ai-news-dashboard/internal/personalize"
)

type stubClient struct {
	posts     []models.Post
	prefs     models.Preferences
	savedPref *models.Preferences
	notes     map[int64]models.Note
	updated   *models.NoteInput
	deleted   []int64
	summary   models.SummaryRequest
	healthErr error
}

func (s *stubClient) Posts(context.Context) ([]models.Post, error) { return s.posts, nil }
func (s *stubClient) Preferences(context.Context) (models.Preferences, error) {
	return s.prefs, nil
}
func (s *stubClient) Saved(context.Context) ([]models.SavedPost, error) {
	return nil, nil
}

func (s *stubClient) SavePost(context.Context, string) error {
	return nil
}

func (s *stubClient) Unsave(context.Context, string) error {
	return nil
}

func (s *stubClient) Chat(context.Context, string) (string, error) {
	return "", nil
}

func (s *stubClient) SavePreferences(_ context.Context, p models.Preferences) error {
	s.savedPref = &p
	return nil
}

func (s *stubClient) Notes(context.Context) ([]models.Note, error) {
	out := make([]models.Note, 0, len(s.notes))
	for _, n := range s.notes {
		out = append(out, n)
	}
	return out, nil
}

func (s *stubClient) Note(_ context.Context, id int64) (models.Note, error) {
	n, ok := s.notes[id]
	if !ok {
		return models.Note{}, backend.ErrNotFound
	}
	return n, nil
}

func (s *stubClient) CreateNote(_ context.Context, in models.NoteInput) (models.Note, error) {
	n := models.Note{ID: int64(len(s.notes) + 1), Title: in.Title, Description: in.Description}
	s.notes[n.ID] = n
	return n, nil
}

func (s *stubClient) UpdateNote(_ context.Context, id int64, in models.NoteInput) (models.Note, error) {
	s.updated = &in
	return models.Note{ID: id, Title: in.Title, Description: in.Description}, nil
}

func (s *stubClient) DeleteNote(_ context.Context, id int64) error {
	s.deleted = append(s.deleted, id)
	return nil
}

func (s *stubClient) RSSSources(context.Context) ([]models.RSSSource, error) {
	return []models.RSSSource{{Source: "OpenAI Blog", URL: "https://openai.com/blog/rss", Platform: "RSS", Category: "Research"}}, nil
}

func (s *stubClient) RSSRuns(context.Context) ([]models.RSSRun, error) {
	d := 12.5
	return []models.RSSRun{{ID: 3, StartedAt: "2025-03-01T10:00:00", Status: "completed", DurationSeconds: &d, NumSourcesTotal: 4, NumSourcesCaptured: 3, NumArticlesCaptured: 17}}, nil
}

func (s *stubClient) TriggerScrape(context.Context) (string, error) {
	return "RSS scraping started", nil
}

func (s *stubClient) Summarize(_ context.Context, req models.SummaryRequest) (string, error) {
	s.summary = req
	return "Three labs shipped models.", nil
}

func (s *stubClient) Health(context.Context) error { return s.healthErr }

func run(t *testing.T, c *stubClient, args ...string) (string, error) {
	t.Helper()
	scorer, err := personalize.New(personalize.DefaultWeights, nil)
	require.NoError(t, err)

	a := &app{client: c, scorer: scorer}
	root := newRootCmd(a)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err = root.Execute()
	return out.String(), err
}

func newStub() *stubClient {
	return &stubClient{notes: map[int64]models.Note{
		1: {ID: 1, Title: "Reading list", Description: "papers", CreatedAt: "2025-03-01"},
	}}
}

func TestFeedCommand(t *testing.T) {
	c := newStub()
	c.posts = []models.Post{
		{ID: "1", Title: "Alpha", Source: "OpenAI Blog", Platform: "RSS"},
		{ID: "2", Title: "Beta", Source: "Meta AI", Platform: "Website"},
	}

	out, err := run(t, c, "feed", "--platform", "Website")
	require.NoError(t, err)
	require.Contains(t, out, "Beta")
	require.NotContains(t, out, "Alpha")
	require.Contains(t, out, "Page 1 of 1 (1 posts)")
}

func TestForYouCommand(t *testing.T) {
	c := newStub()
	c.posts = []models.Post{
		{ID: "1", Title: "Alpha", Source: "A", Tags: []string{"x"}},
		{ID: "2", Title: "Beta", Source: "B"},
	}
	c.prefs = models.Preferences{PreferredSources: []string{"B"}, PreferredCategories: []string{"x"}}

	out, err := run(t, c, "foryou", "--limit", "1")
	require.NoError(t, err)
	require.Contains(t, out, "Beta")
	require.Contains(t, out, "Matches preferred source 'B'.")
	require.NotContains(t, out, "Alpha")
}

func TestNotesCommands(t *testing.T) {
	c := newStub()

	out, err := run(t, c, "notes", "list")
	require.NoError(t, err)
	require.Contains(t, out, "Reading list")

	out, err = run(t, c, "notes", "show", "1")
	require.NoError(t, err)
	require.Contains(t, out, "papers")

	out, err = run(t, c, "notes", "create", "--title", "Ideas")
	require.NoError(t, err)
	require.Contains(t, out, "Created note 2")

	_, err = run(t, c, "notes", "edit", "1", "--description", "more papers")
	require.NoError(t, err)
	require.Equal(t, &models.NoteInput{Title: "Reading list", Description: "more papers"}, c.updated)

	_, err = run(t, c, "notes", "delete", "1")
	require.NoError(t, err)
	require.Equal(t, []int64{1}, c.deleted)

	_, err = run(t, c, "notes", "show", "99")
	require.ErrorIs(t, err, backend.ErrNotFound)

	_, err = run(t, c, "notes", "delete", "abc")
	require.ErrorContains(t, err, "invalid id")
}

func TestRSSCommands(t *testing.T) {
	c := newStub()

	out, err := run(t, c, "sources")
	require.NoError(t, err)
	require.Contains(t, out, "OpenAI Blog")

	out, err = run(t, c, "runs")
	require.NoError(t, err)
	require.Contains(t, out, "12.5s")
	require.Contains(t, out, "3/4")

	out, err = run(t, c, "scrape")
	require.NoError(t, err)
	require.Contains(t, out, "RSS scraping started")
}

func TestPrefsCommands(t *testing.T) {
	c := newStub()

	out, err := run(t, c, "prefs", "show")
	require.NoError(t, err)
	require.Contains(t, out, "Sources: (none)")

	_, err = run(t, c, "prefs", "set", "--sources", "OpenAI Blog,Meta AI", "--topics", "AI Research")
	require.NoError(t, err)
	require.Equal(t, &models.Preferences{
		PreferredSources:    []string{"OpenAI Blog", "Meta AI"},
		PreferredCategories: []string{"AI Research"},
	}, c.savedPref)
}

func TestSummarizeCommand(t *testing.T) {
	c := newStub()

	out, err := run(t, c, "summarize", "--sources", "OpenAI Blog", "--from", "2025-03-01", "--to", "2025-03-07")
	require.NoError(t, err)
	require.Contains(t, out, "Three labs shipped models.")
	require.Equal(t, models.SummaryRequest{
		Sources:   []string{"OpenAI Blog"},
		StartDate: "2025-03-01",
		EndDate:   "2025-03-07",
		Combined:  true,
	}, c.summary)

	_, err = run(t, c, "summarize", "--sources", "x", "--from", "2025-03-07", "--to", "2025-03-01")
	require.ErrorContains(t, err, "before")

	_, err = run(t, c, "summarize", "--from", "March")
	require.ErrorContains(t, err, "--from")
}

func TestHealthCommand(t *testing.T) {
	c := newStub()
	out, err := run(t, c, "health")
	require.NoError(t, err)
	require.Contains(t, out, "backend ok")

	c.healthErr = errors.New("connection refused")
	_, err = run(t, c, "health")
	require.ErrorContains(t, err, "connection refused")
}

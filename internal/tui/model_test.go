package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/DeafMist/ai-news-dashboard/internal/backend"
	"github.com/DeafMist/ai-news-dashboard/internal/models"
	"github.com/DeafMist/ai-news-dashboard/internal/personalize"
)

var now = time.Date(2025, 3, 10, 18, 0, 0, 0, time.UTC)

type stubBackend struct {
	posts    []models.Post
	postsErr error
	prefs    models.Preferences
	prefsErr error
	saved    []models.SavedPost
	savedErr error
	savedIDs []string
	unsaved  []string
	chatErr  error
}

func (s *stubBackend) Posts(context.Context) ([]models.Post, error) { return s.posts, s.postsErr }

func (s *stubBackend) Preferences(context.Context) (models.Preferences, error) {
	return s.prefs, s.prefsErr
}

func (s *stubBackend) Saved(context.Context) ([]models.SavedPost, error) {
	if s.savedErr != nil {
		return nil, s.savedErr
	}
	return s.saved, nil
}

func (s *stubBackend) SavePost(_ context.Context, id string) error {
	s.savedIDs = append(s.savedIDs, id)
	s.saved = append(s.saved, models.SavedPost{ID: int64(len(s.saved) + 1), PostID: 1, Post: models.Post{ID: models.PostID(id), Title: "saved " + id}})
	return nil
}

func (s *stubBackend) Unsave(_ context.Context, id string) error {
	s.unsaved = append(s.unsaved, id)
	s.saved = nil
	return nil
}

func (s *stubBackend) Chat(_ context.Context, q string) (string, error) {
	if s.chatErr != nil {
		return "", s.chatErr
	}
	return "echo: " + q, nil
}

func samplePosts() []models.Post {
	posts := make([]models.Post, 0, 25)
	for i := 0; i < 25; i++ {
		platform, source := "RSS", "OpenAI Blog"
		if i%5 == 0 {
			platform, source = "Website", "Meta AI"
		}
		posts = append(posts, models.Post{
			ID:        models.PostID(fmt.Sprint(i + 1)),
			Title:     fmt.Sprintf("Post %d", i+1),
			Source:    source,
			Platform:  platform,
			Tags:      []string{"AI Research"},
			Timestamp: now.Add(-time.Duration(i) * 30 * time.Minute).Format(time.RFC3339),
		})
	}
	return posts
}

func newModel(t *testing.T, be *stubBackend) Model {
	t.Helper()
	scorer, err := personalize.New(personalize.DefaultWeights, nil)
	require.NoError(t, err)
	return New(be, scorer, Options{PageSize: 10, PersonalizedStep: 5, Now: func() time.Time { return now }})
}

// loaded runs the initial load command and feeds its result back.
func loaded(t *testing.T, be *stubBackend) Model {
	t.Helper()
	m := newModel(t, be)
	msg := m.Init()()
	next, _ := m.Update(msg)
	return next.(Model)
}

func press(m Model, keys ...string) Model {
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "tab":
			msg = tea.KeyMsg{Type: tea.KeyTab}
		case "shift+tab":
			msg = tea.KeyMsg{Type: tea.KeyShiftTab}
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case "down":
			msg = tea.KeyMsg{Type: tea.KeyDown}
		case "space":
			msg = tea.KeyMsg{Type: tea.KeySpace}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		next, _ := m.Update(msg)
		m = next.(Model)
	}
	return m
}

func TestLoadPopulatesViews(t *testing.T) {
	m := loaded(t, &stubBackend{posts: samplePosts()})

	require.False(t, m.loading)
	require.NoError(t, m.err)
	require.Len(t, m.scored, 25)
	require.Contains(t, m.View(), "Post 1")
	require.Contains(t, m.View(), "25 posts loaded")
}

func TestLoadToleratesPreferenceFailure(t *testing.T) {
	m := loaded(t, &stubBackend{posts: samplePosts(), prefsErr: errors.New("down")})
	require.NoError(t, m.err)
	require.Empty(t, m.prefs.PreferredSources)
}

func TestLoadFailureShowsError(t *testing.T) {
	m := loaded(t, &stubBackend{postsErr: errors.New("connection refused")})
	require.Error(t, m.err)
	require.Contains(t, m.View(), "connection refused")
}

func TestTabNavigationWraps(t *testing.T) {
	m := loaded(t, &stubBackend{posts: samplePosts()})
	require.Equal(t, tabRecent, m.tab)

	m = press(m, "tab")
	require.Equal(t, tabFeed, m.tab)
	m = press(m, "shift+tab", "shift+tab")
	require.Equal(t, tabChat, m.tab)
	m = press(m, "tab")
	require.Equal(t, tabRecent, m.tab)
	m = press(m, "4")
	require.Equal(t, tabSaved, m.tab)
}

func TestFeedFiltersAndPages(t *testing.T) {
	m := press(loaded(t, &stubBackend{posts: samplePosts()}), "2")

	page, err := m.feedPage()
	require.NoError(t, err)
	require.Equal(t, 25, page.Total)
	require.Equal(t, 3, page.TotalPages)

	m = press(m, "l", "l", "l")
	require.Equal(t, 3, m.page)
	m = press(m, "h")
	require.Equal(t, 2, m.page)

	// platform cycle: All -> RSS
	m = press(m, "p")
	require.Equal(t, 1, m.page)
	page, err = m.feedPage()
	require.NoError(t, err)
	require.Equal(t, 20, page.Total)
	require.Contains(t, m.View(), "Platform:")

	// back to All and select only Meta AI
	m = press(m, "p", "p")
	require.Equal(t, "", platforms[m.platformIdx])
	m = press(m, "s", "space")
	require.Equal(t, []string{"OpenAI Blog"}, m.selectedSources())
	m = press(m, "space", "s", "space")
	require.Equal(t, []string{"Meta AI"}, m.selectedSources())
	page, err = m.feedPage()
	require.NoError(t, err)
	require.Equal(t, 5, page.Total)

	m = press(m, "c")
	require.Empty(t, m.selectedSources())
}

func TestPlatformChangePrunesSelection(t *testing.T) {
	m := press(loaded(t, &stubBackend{posts: samplePosts()}), "2")
	m = press(m, "space")
	require.Equal(t, []string{"Meta AI"}, m.selectedSources())

	m = press(m, "p")
	require.Empty(t, m.selectedSources())
}

func TestForYouLoadsMore(t *testing.T) {
	be := &stubBackend{
		posts: samplePosts(),
		prefs: models.Preferences{PreferredSources: []string{"Meta AI"}, PreferredCategories: []string{"AI Research"}},
	}
	m := press(loaded(t, be), "3")

	require.Len(t, m.visibleScored(), 5)
	require.Equal(t, 5, m.visibleScored()[0].RelevanceScore)
	require.Equal(t, models.PostID("1"), m.visibleScored()[0].Post.ID)
	require.Contains(t, m.View(), "Showing 5 of 25")

	m = press(m, "m", "m", "m", "m", "m", "m")
	require.Len(t, m.visibleScored(), 25)
}

func TestBookmarkAndRemove(t *testing.T) {
	be := &stubBackend{posts: samplePosts()}
	m := loaded(t, be)

	m = press(m, "down")
	cur, ok := m.currentPost()
	require.True(t, ok)

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("b")})
	require.NotNil(t, cmd)
	next, _ = next.(Model).Update(cmd())
	m = next.(Model)
	require.Equal(t, []string{string(cur.ID)}, be.savedIDs)
	require.Len(t, m.saved, 1)
	require.Contains(t, m.status, "Saved")

	m = press(m, "4")
	next, cmd = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")})
	require.NotNil(t, cmd)
	next, _ = next.(Model).Update(cmd())
	m = next.(Model)
	require.Equal(t, []string{"1"}, be.unsaved)
	require.Empty(t, m.saved)
}

func TestBookmarkKeptWhenRefreshFails(t *testing.T) {
	be := &stubBackend{posts: samplePosts()}
	m := loaded(t, be)
	be.savedErr = errors.New("saved list unavailable")

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("b")})
	require.NotNil(t, cmd)
	next, _ = next.(Model).Update(cmd())
	m = next.(Model)

	require.Equal(t, []string{"1"}, be.savedIDs)
	require.NotContains(t, m.status, "Bookmark failed")
	require.Contains(t, m.status, "Saved: Post 1")
	require.Contains(t, m.status, "refresh failed")
}

func TestReloadClampsFeedPage(t *testing.T) {
	be := &stubBackend{posts: samplePosts()}
	m := press(loaded(t, be), "2", "l", "l")
	require.Equal(t, 3, m.page)

	be.posts = be.posts[:12]
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})
	require.NotNil(t, cmd)
	next, _ = next.(Model).Update(cmd())
	m = next.(Model)

	require.Equal(t, 2, m.page)
	page, err := m.feedPage()
	require.NoError(t, err)
	require.Len(t, page.Items, 2)

	be.posts = nil
	next, cmd = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})
	next, _ = next.(Model).Update(cmd())
	require.Equal(t, 1, next.(Model).page)
}

func TestBookmarkRejectsNonNumericID(t *testing.T) {
	posts := backend.SamplePosts(now)
	m := loaded(t, &stubBackend{posts: posts})

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("b")})
	require.Nil(t, cmd)
	require.Contains(t, next.(Model).status, "cannot be bookmarked")
}

func TestOpenArticle(t *testing.T) {
	posts := []models.Post{{
		ID:        "1",
		Title:     "Agents everywhere",
		Source:    "OpenAI Blog",
		Content:   "<p>Agents <em>shipped</em>.</p>",
		URL:       "https://example.com/agents",
		Timestamp: now.Format(time.RFC3339),
	}}
	m := press(loaded(t, &stubBackend{posts: posts}), "enter")
	require.True(t, m.reading)
	view := m.View()
	require.Contains(t, view, "# Agents everywhere")
	require.Contains(t, view, "Agents shipped.")

	m = press(m, "esc")
	require.False(t, m.reading)
}

func TestChatRepliesAndFallsBackOffline(t *testing.T) {
	be := &stubBackend{posts: samplePosts()}
	m := press(loaded(t, be), "5")
	require.Equal(t, tabChat, m.tab)

	// "q" is typed into the input, not treated as quit
	m = press(m, "q")
	require.Equal(t, "q", m.input.Value())
	m.input.SetValue("what's new?")

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(Model)
	require.True(t, m.waiting)
	require.Empty(t, m.input.Value())
	next, _ = m.Update(cmd())
	m = next.(Model)
	require.Len(t, m.messages, 2)
	require.Equal(t, models.RoleUser, m.messages[0].Role)
	require.Equal(t, "echo: what's new?", m.messages[1].Content)

	be.chatErr = errors.New("offline")
	m.input.SetValue("still there?")
	next, cmd = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	next, _ = next.(Model).Update(cmd())
	m = next.(Model)
	require.Equal(t, backend.OfflineReply, m.messages[3].Content)
	require.True(t, strings.Contains(m.View(), "Assistant"))
}

func TestArticleMarkdown(t *testing.T) {
	md := articleMarkdown(models.Post{
		Content:   "First sentence here. More text.",
		Source:    "Meta AI",
		Author:    "Ada",
		Summary:   "Short summary",
		Tags:      []string{"Open-Source AI"},
		Timestamp: "2025-03-10 08:30:00",
	})
	require.Contains(t, md, "# First sentence here\n")
	require.Contains(t, md, "*Meta AI · by Ada · 2025-03-10 08:30*")
	require.Contains(t, md, "> Short summary")
	require.Contains(t, md, "Tags: Open-Source AI")
	require.NotContains(t, md, "Read the original")
}

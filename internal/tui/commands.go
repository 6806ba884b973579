package tui

import (
	"context"
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"

	"github.com/DeafMist/ai-news-dashboard/internal/models"
)

// Backend is the part of the news backend client the dashboard needs.
type Backend interface {
	Posts(ctx context.Context) ([]models.Post, error)
	Preferences(ctx context.Context) (models.Preferences, error)
	Saved(ctx context.Context) ([]models.SavedPost, error)
	SavePost(ctx context.Context, postID string) error
	Unsave(ctx context.Context, postID string) error
	Chat(ctx context.Context, question string) (string, error)
}

type dataLoadedMsg struct {
	posts []models.Post
	prefs models.Preferences
	saved []models.SavedPost
	err   error
}

// savedChangedMsg reports a bookmark change. err means the change itself
// failed; refreshErr means it went through but the saved list was not reloaded.
type savedChangedMsg struct {
	saved      []models.SavedPost
	status     string
	err        error
	refreshErr error
}

type chatReplyMsg struct {
	reply string
	err   error
}

// loadData fetches posts, preferences and saved posts in parallel. Only a
// posts failure fails the load; the other two degrade to empty values.
func loadData(be Backend, timeout time.Duration, log *slog.Logger) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		var msg dataLoadedMsg
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			posts, err := be.Posts(gctx)
			if err != nil {
				return err
			}
			msg.posts = posts
			return nil
		})
		g.Go(func() error {
			prefs, err := be.Preferences(gctx)
			if err != nil {
				log.Warn("load preferences", slog.Any("err", err))
				return nil
			}
			msg.prefs = prefs
			return nil
		})
		g.Go(func() error {
			saved, err := be.Saved(gctx)
			if err != nil {
				log.Warn("load saved posts", slog.Any("err", err))
				return nil
			}
			msg.saved = saved
			return nil
		})
		msg.err = g.Wait()
		return msg
	}
}

func savePost(be Backend, timeout time.Duration, p models.Post) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		if err := be.SavePost(ctx, string(p.ID)); err != nil {
			return savedChangedMsg{err: err}
		}
		saved, err := be.Saved(ctx)
		return savedChangedMsg{saved: saved, status: "Saved: " + p.Title, refreshErr: err}
	}
}

func unsavePost(be Backend, timeout time.Duration, postID int64, title string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		if err := be.Unsave(ctx, formatID(postID)); err != nil {
			return savedChangedMsg{err: err}
		}
		saved, err := be.Saved(ctx)
		return savedChangedMsg{saved: saved, status: "Removed: " + title, refreshErr: err}
	}
}

func askAssistant(be Backend, timeout time.Duration, question string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		reply, err := be.Chat(ctx, question)
		return chatReplyMsg{reply: reply, err: err}
	}
}

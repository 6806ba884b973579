package backend

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/DeafMist/ai-news-dashboard/internal/models"
)

const (
	snapshotPosts       = "posts"
	snapshotPreferences = "preferences"
	snapshotSaved       = "saved"
)

// Posts fetches every post the backend knows, newest first.
func (c *Client) Posts(ctx context.Context) ([]models.Post, error) {
	var env envelope[[]models.Post]
	err := c.do(ctx, http.MethodGet, "/posts", nil, &env)
	if err == nil {
		err = env.check("/posts")
	}
	if err == nil {
		posts := env.Data
		if posts == nil {
			posts = []models.Post{}
		}
		c.snapshot(snapshotPosts, posts)
		return posts, nil
	}

	var cached []models.Post
	if rerr := c.restore(snapshotPosts, &cached, err); rerr == nil {
		return cached, nil
	}
	if c.sampleFallback {
		c.log.Warn("backend unavailable, serving sample posts", slog.Any("err", err))
		return SamplePosts(c.now()), nil
	}
	return nil, fmt.Errorf("fetch posts: %w", err)
}

// Preferences fetches the user's content preferences.
func (c *Client) Preferences(ctx context.Context) (models.Preferences, error) {
	var prefs models.Preferences
	err := c.do(ctx, http.MethodGet, "/preferences", nil, &prefs)
	if err == nil {
		c.snapshot(snapshotPreferences, prefs)
		return prefs, nil
	}

	var cached models.Preferences
	if rerr := c.restore(snapshotPreferences, &cached, err); rerr == nil {
		return cached, nil
	}
	return models.Preferences{}, fmt.Errorf("fetch preferences: %w", err)
}

// SavePreferences replaces the user's content preferences.
func (c *Client) SavePreferences(ctx context.Context, prefs models.Preferences) error {
	if prefs.PreferredSources == nil {
		prefs.PreferredSources = []string{}
	}
	if prefs.PreferredCategories == nil {
		prefs.PreferredCategories = []string{}
	}
	if err := c.do(ctx, http.MethodPost, "/preferences", prefs, nil); err != nil {
		return fmt.Errorf("save preferences: %w", err)
	}
	c.snapshot(snapshotPreferences, prefs)
	return nil
}

// Saved lists the bookmarked posts.
func (c *Client) Saved(ctx context.Context) ([]models.SavedPost, error) {
	var saved []models.SavedPost
	err := c.do(ctx, http.MethodGet, "/saved", nil, &saved)
	if err == nil {
		if saved == nil {
			saved = []models.SavedPost{}
		}
		c.snapshot(snapshotSaved, saved)
		return saved, nil
	}

	var cached []models.SavedPost
	if rerr := c.restore(snapshotSaved, &cached, err); rerr == nil {
		return cached, nil
	}
	return nil, fmt.Errorf("fetch saved posts: %w", err)
}

// SavePost bookmarks a post.
func (c *Client) SavePost(ctx context.Context, postID string) error {
	body := map[string]any{"post_id": postIDValue(postID)}
	if err := c.do(ctx, http.MethodPost, "/saved", body, nil); err != nil {
		return fmt.Errorf("save post %s: %w", postID, err)
	}
	return nil
}

// Unsave removes a bookmark.
func (c *Client) Unsave(ctx context.Context, postID string) error {
	if err := c.do(ctx, http.MethodDelete, "/saved/"+postID, nil, nil); err != nil {
		return fmt.Errorf("unsave post %s: %w", postID, err)
	}
	return nil
}

// postIDValue sends numeric ids as JSON numbers, the way the backend stores them.
func postIDValue(id string) any {
	if n, err := strconv.ParseInt(id, 10, 64); err == nil {
		return n
	}
	return id
}

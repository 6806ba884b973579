package localcache_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/DeafMist/ai-news-dashboard/internal/localcache"
	"github.com/DeafMist/ai-news-dashboard/internal/models"
)

func TestStoreRoundTrip(t *testing.T) {
	store, err := localcache.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	var missing []models.Post
	_, found, err := store.Get("posts", &missing)
	require.NoError(t, err)
	require.False(t, found)

	posts := []models.Post{{ID: "1", Source: "OpenAI Blog", Tags: []string{"LLM"}}}
	require.NoError(t, store.Put("posts", posts))

	var got []models.Post
	storedAt, found, err := store.Get("posts", &got)
	require.NoError(t, err)
	require.True(t, found)
	require.False(t, storedAt.IsZero())
	require.Equal(t, posts, got)
}

func TestStoreReplacesSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")
	store, err := localcache.Open(path)
	require.NoError(t, err)

	require.NoError(t, store.Put("prefs", models.Preferences{PreferredSources: []string{"a"}}))
	require.NoError(t, store.Put("prefs", models.Preferences{PreferredSources: []string{"b"}}))
	require.NoError(t, store.Close())

	reopened, err := localcache.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { reopened.Close() })

	var prefs models.Preferences
	_, found, err := reopened.Get("prefs", &prefs)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, []string{"b"}, prefs.PreferredSources)
}

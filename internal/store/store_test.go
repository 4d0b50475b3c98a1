package store

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	bolt "go.etcd.io/bbolt"

	"github.com/samvad-hq/newsdeck/internal/domain"
)

func openTemp(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data", "newsdeck.db")
	s, err := Open(path, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s, path
}

func sampleArticle(url string) domain.Article {
	return domain.Article{
		Title:       "Title " + url,
		Description: "Description",
		URL:         url,
		ImageURL:    url + "/img.jpg",
		Source:      domain.Source{Name: "Wire"},
		PublishedAt: time.Date(2024, time.January, 5, 10, 0, 0, 0, time.UTC),
	}
}

func TestToggleSaveAlternatesAndStaysUnique(t *testing.T) {
	s, _ := openTemp(t)
	ctx := context.Background()
	a := sampleArticle("https://example.com/a")

	want := true
	for i := 0; i < 6; i++ {
		state, err := s.ToggleSave(ctx, a)
		require.NoError(t, err)
		assert.Equal(t, want, state.NowSaved, "toggle %d", i)
		want = !want

		saved, err := s.SavedArticles(ctx)
		require.NoError(t, err)
		count := 0
		for _, sa := range saved {
			if sa.URL == a.URL {
				count++
			}
		}
		assert.LessOrEqual(t, count, 1)
	}
}

func TestToggleTwiceRestoresLength(t *testing.T) {
	s, _ := openTemp(t)
	ctx := context.Background()

	_, err := s.ToggleSave(ctx, sampleArticle("https://example.com/keep"))
	require.NoError(t, err)
	before, _ := s.SavedArticles(ctx)

	b := sampleArticle("https://example.com/b")
	_, err = s.ToggleSave(ctx, b)
	require.NoError(t, err)
	_, err = s.ToggleSave(ctx, b)
	require.NoError(t, err)

	after, _ := s.SavedArticles(ctx)
	assert.Equal(t, before, after)
	assert.False(t, s.IsSaved(b.URL))
}

func TestSavedArticlesSurviveReopen(t *testing.T) {
	s, path := openTemp(t)
	ctx := context.Background()
	a := sampleArticle("https://example.com/persist")

	_, err := s.ToggleSave(ctx, a)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	reopened, err := Open(path, nil)
	require.NoError(t, err)
	saved, err := reopened.SavedArticles(ctx)
	require.NoError(t, err)
	require.Len(t, saved, 1)
	assert.Equal(t, a.URL, saved[0].URL)
	assert.True(t, saved[0].PublishedAt.Equal(a.PublishedAt))

	state, err := reopened.ToggleSave(ctx, a)
	require.NoError(t, err)
	assert.False(t, state.NowSaved)
	require.NoError(t, reopened.Close())

	again, err := Open(path, nil)
	require.NoError(t, err)
	defer again.Close()
	assert.False(t, again.IsSaved(a.URL))
}

func TestPersistedShapeMatchesAPI(t *testing.T) {
	s, _ := openTemp(t)
	_, err := s.ToggleSave(context.Background(), sampleArticle("https://example.com/shape"))
	require.NoError(t, err)

	raw, err := s.get(KeySavedArticles)
	require.NoError(t, err)

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	require.Len(t, decoded, 1)
	assert.Equal(t, "https://example.com/shape/img.jpg", decoded[0]["urlToImage"])
	assert.Equal(t, "2024-01-05T10:00:00Z", decoded[0]["publishedAt"])
	assert.Equal(t, map[string]any{"name": "Wire"}, decoded[0]["source"])
}

func TestExternalDuplicatesOnlyFirstMatchRemoved(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dup.db")
	a := sampleArticle("https://example.com/dup")
	payload, err := json.Marshal([]domain.Article{a, a})
	require.NoError(t, err)

	db, err := bolt.Open(path, 0o600, nil)
	require.NoError(t, err)
	require.NoError(t, db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(bucketName))
		if err != nil {
			return err
		}
		return b.Put([]byte(KeySavedArticles), payload)
	}))
	require.NoError(t, db.Close())

	s, err := Open(path, nil)
	require.NoError(t, err)
	defer s.Close()

	state, err := s.ToggleSave(context.Background(), a)
	require.NoError(t, err)
	assert.False(t, state.NowSaved)

	saved, _ := s.SavedArticles(context.Background())
	assert.Len(t, saved, 1)
	assert.True(t, s.IsSaved(a.URL))
}

func TestCorruptSavedListStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corrupt.db")
	db, err := bolt.Open(path, 0o600, nil)
	require.NoError(t, err)
	require.NoError(t, db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(bucketName))
		if err != nil {
			return err
		}
		return b.Put([]byte(KeySavedArticles), []byte("{not json"))
	}))
	require.NoError(t, db.Close())

	s, err := Open(path, nil)
	require.NoError(t, err)
	defer s.Close()

	saved, err := s.SavedArticles(context.Background())
	require.NoError(t, err)
	assert.Empty(t, saved)
}

func TestFailedWriteKeepsMemoryUnchanged(t *testing.T) {
	s, _ := openTemp(t)
	require.NoError(t, s.db.Close())

	_, err := s.ToggleSave(context.Background(), sampleArticle("https://example.com/x"))
	require.Error(t, err)
	assert.False(t, s.IsSaved("https://example.com/x"))
	s.db = nil
}

func TestThemeRoundTrip(t *testing.T) {
	s, path := openTemp(t)
	ctx := context.Background()

	theme, ok, err := s.Theme(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, domain.ThemeLight, theme)

	require.NoError(t, s.SetTheme(ctx, domain.ThemeDark))
	require.NoError(t, s.Close())

	reopened, err := Open(path, nil)
	require.NoError(t, err)
	defer reopened.Close()

	theme, ok, err = reopened.Theme(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, domain.ThemeDark, theme)
}

func TestClosedStore(t *testing.T) {
	s, _ := openTemp(t)
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	_, err := s.SavedArticles(context.Background())
	assert.ErrorIs(t, err, ErrClosed)
	_, err = s.ToggleSave(context.Background(), sampleArticle("u"))
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, s.SetTheme(context.Background(), domain.ThemeDark), ErrClosed)
}

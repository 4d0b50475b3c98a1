package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/samvad-hq/newsdeck/internal/domain"
	"github.com/samvad-hq/newsdeck/internal/logger"
)

const (
	bucketName = "newsdeck"

	// KeySavedArticles holds the JSON-encoded saved article list.
	KeySavedArticles = "savedArticles"
	// KeyTheme holds "light" or "dark".
	KeyTheme = "theme"
)

// ErrClosed is returned by operations on a closed store.
var ErrClosed = errors.New("store is closed")

// Store persists the saved article list and the theme preference in a bbolt
// file. The saved list is loaded once at open and mirrored in memory; every
// mutation rewrites the whole list under one key.
type Store struct {
	mu    sync.Mutex
	db    *bolt.DB
	saved []domain.Article
	log   logger.Logger
}

// Open opens (creating if needed) the bbolt file at path.
func Open(path string, log logger.Logger) (*Store, error) {
	log = logger.Ensure(log)

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create store dir: %w", err)
		}
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open store %s: %w", path, err)
	}

	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketName))
		return err
	}); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create bucket: %w", err)
	}

	s := &Store{db: db, log: log}
	s.saved = s.loadSaved()
	return s, nil
}

// Close releases the underlying file.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// loadSaved reads the persisted list. Missing or corrupt data yields an empty
// list.
func (s *Store) loadSaved() []domain.Article {
	raw, err := s.get(KeySavedArticles)
	if err != nil || raw == nil {
		return nil
	}

	var out []domain.Article
	if err := json.Unmarshal(raw, &out); err != nil {
		s.log.WarnObj("saved articles unreadable, starting empty", "store_corrupt", map[string]any{
			"key":   KeySavedArticles,
			"error": err.Error(),
		})
		return nil
	}
	return out
}

// SavedArticles returns a copy of the saved list in insertion order.
func (s *Store) SavedArticles(ctx context.Context) ([]domain.Article, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil, ErrClosed
	}

	out := make([]domain.Article, len(s.saved))
	copy(out, s.saved)
	return out, nil
}

// IsSaved reports whether an article with url is in the saved list.
func (s *Store) IsSaved(url string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return indexOf(s.saved, url) >= 0
}

// ToggleSave adds the article when its url is absent and removes the first
// entry with that url otherwise. The full list is written back each time; on
// a failed write the in-memory list is left as it was.
func (s *Store) ToggleSave(ctx context.Context, article domain.Article) (domain.SaveState, error) {
	if err := ctx.Err(); err != nil {
		return domain.SaveState{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return domain.SaveState{}, ErrClosed
	}

	next := make([]domain.Article, 0, len(s.saved)+1)
	state := domain.SaveState{}
	if idx := indexOf(s.saved, article.URL); idx < 0 {
		next = append(next, s.saved...)
		next = append(next, article)
		state.NowSaved = true
	} else {
		next = append(next, s.saved[:idx]...)
		next = append(next, s.saved[idx+1:]...)
	}

	payload, err := json.Marshal(next)
	if err != nil {
		return domain.SaveState{}, fmt.Errorf("encode saved articles: %w", err)
	}
	if err := s.put(KeySavedArticles, payload); err != nil {
		return domain.SaveState{}, fmt.Errorf("persist saved articles: %w", err)
	}

	s.saved = next
	s.log.DebugObj("save toggled", "save_toggle", map[string]any{
		"url":       article.URL,
		"now_saved": state.NowSaved,
		"count":     len(next),
	})
	return state, nil
}

// Theme returns the persisted theme and whether one was stored.
func (s *Store) Theme(ctx context.Context) (domain.Theme, bool, error) {
	if err := ctx.Err(); err != nil {
		return domain.ThemeLight, false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return domain.ThemeLight, false, ErrClosed
	}

	raw, err := s.get(KeyTheme)
	if err != nil {
		return domain.ThemeLight, false, err
	}
	if raw == nil {
		return domain.ThemeLight, false, nil
	}
	return domain.ParseTheme(string(raw)), true, nil
}

// SetTheme persists the theme preference.
func (s *Store) SetTheme(ctx context.Context, theme domain.Theme) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return ErrClosed
	}
	if err := s.put(KeyTheme, []byte(theme)); err != nil {
		return fmt.Errorf("persist theme: %w", err)
	}
	return nil
}

func (s *Store) get(key string) ([]byte, error) {
	var out []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketName))
		if b == nil {
			return nil
		}
		if v := b.Get([]byte(key)); v != nil {
			out = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	return out, nil
}

func (s *Store) put(key string, value []byte) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(bucketName))
		if err != nil {
			return err
		}
		return b.Put([]byte(key), value)
	})
}

func indexOf(list []domain.Article, url string) int {
	for i := range list {
		if list[i].URL == url {
			return i
		}
	}
	return -1
}

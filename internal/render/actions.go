package render

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/samvad-hq/newsdeck/internal/domain"
	"github.com/samvad-hq/newsdeck/internal/logger"
	"github.com/samvad-hq/newsdeck/pkg/publishers"
)

const (
	// ToastDuration is how long a save notification stays visible.
	ToastDuration = 3 * time.Second

	ToastSaved   = "Article saved!"
	ToastRemoved = "Article removed!"
)

// Opener opens a URL in a new browsing context.
type Opener interface {
	Open(url string) error
}

// Sharer delivers an article through the platform share capability. It
// returns publishers.ErrShareUnavailable when no capability is configured.
type Sharer interface {
	Share(ctx context.Context, evt publishers.ShareEvent) error
}

// SaveToggler is the subset of the persistence store the card actions need.
type SaveToggler interface {
	ToggleSave(ctx context.Context, article domain.Article) (domain.SaveState, error)
	IsSaved(url string) bool
}

// Toast is a transient notification.
type Toast struct {
	Message string
	Expires time.Time
}

// ShareResult reports how a share was delivered.
type ShareResult struct {
	// Fallback is set when the mail draft was used.
	Fallback bool
	MailURL  string
}

// Actions wires the per-card interactions.
type Actions struct {
	Opener Opener
	Sharer Sharer
	Store  SaveToggler
	Log    logger.Logger
	Now    func() time.Time
}

func (a Actions) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}

// Open opens the card's article.
func (a Actions) Open(card Card) error {
	if a.Opener == nil {
		return errors.New("no url opener configured")
	}
	if err := a.Opener.Open(card.Article.URL); err != nil {
		return fmt.Errorf("open article: %w", err)
	}
	return nil
}

// ToggleSave flips the card's saved state, updates card in place and returns
// the toast to show.
func (a Actions) ToggleSave(ctx context.Context, card *Card) (Toast, error) {
	if a.Store == nil {
		return Toast{}, errors.New("no store configured")
	}
	state, err := a.Store.ToggleSave(ctx, card.Article)
	if err != nil {
		return Toast{}, err
	}
	card.Saved = state.NowSaved

	msg := ToastRemoved
	if state.NowSaved {
		msg = ToastSaved
	}
	return Toast{Message: msg, Expires: a.now().Add(ToastDuration)}, nil
}

// Share tries the share capability and falls back to a mail draft when it is
// unavailable or fails. The fallback never surfaces as an error unless the
// draft itself cannot be opened.
func (a Actions) Share(ctx context.Context, card Card) (ShareResult, error) {
	log := logger.Ensure(a.Log)
	art := card.Article

	if a.Sharer != nil {
		err := a.Sharer.Share(ctx, publishers.ShareEvent{
			Title:    art.Title,
			Text:     art.Description,
			URL:      art.URL,
			Source:   art.Source.Name,
			SharedAt: a.now().UTC(),
		})
		if err == nil {
			return ShareResult{}, nil
		}
		if !errors.Is(err, publishers.ErrShareUnavailable) {
			log.WarnObj("share failed, using mail fallback", "share_error", map[string]any{
				"url":   art.URL,
				"error": err.Error(),
			})
		}
	}

	mail := MailtoURL(art)
	res := ShareResult{Fallback: true, MailURL: mail}
	if a.Opener == nil {
		return res, errors.New("no url opener configured")
	}
	if err := a.Opener.Open(mail); err != nil {
		return res, fmt.Errorf("open mail draft: %w", err)
	}
	return res, nil
}

// MailtoURL composes a pre-filled mail draft for an article.
func MailtoURL(a domain.Article) string {
	body := "Read more: " + a.URL
	if a.Description != "" {
		body = a.Description + "\n\n" + body
	}
	return "mailto:?subject=" + encodeURIComponent(a.Title) + "&body=" + encodeURIComponent(body)
}

// encodeURIComponent escapes s like the browser function of the same name:
// spaces become %20, not '+'.
func encodeURIComponent(s string) string {
	escaped := url.QueryEscape(s)
	escaped = strings.ReplaceAll(escaped, "+", "%20")
	for _, keep := range []string{"!", "'", "(", ")", "*"} {
		escaped = strings.ReplaceAll(escaped, url.QueryEscape(keep), keep)
	}
	return escaped
}

package domain

import (
	"encoding/json"
	"strings"
	"time"
)

// Domain contains core models shared by the fetch, store and render layers.

// UnknownSource is substituted for an article whose source name is absent.
const UnknownSource = "Unknown Source"

// Article is one news item as returned by the news API. Optional fields are
// empty strings when absent. JSON names follow the API so the persisted saved
// list keeps the same shape.
type Article struct {
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	// URL is the saved-list key and is kept exactly as the API sent it.
	URL         string    `json:"url"`
	ImageURL    string    `json:"urlToImage,omitempty"`
	Source      Source    `json:"source"`
	PublishedAt time.Time `json:"publishedAt"`
}

// Source identifies the publication an article came from.
type Source struct {
	Name string `json:"name,omitempty"`
}

// UnmarshalJSON decodes an article, leaving PublishedAt zero when the API
// sends a missing or unparseable timestamp.
func (a *Article) UnmarshalJSON(data []byte) error {
	type plain Article
	var raw struct {
		plain
		PublishedAt json.RawMessage `json:"publishedAt"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*a = Article(raw.plain)
	a.PublishedAt = parsePublishedAt(raw.PublishedAt)
	return nil
}

func parsePublishedAt(raw json.RawMessage) time.Time {
	var s string
	if len(raw) == 0 || json.Unmarshal(raw, &s) != nil {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}
	}
	return t
}

// HasImage reports whether the article carries an image URL.
func (a Article) HasImage() bool {
	return strings.TrimSpace(a.ImageURL) != ""
}

// WithDefaults returns a copy with trimmed display fields and the source
// name defaulted. URL is left untouched.
func (a Article) WithDefaults() Article {
	a.Title = strings.TrimSpace(a.Title)
	a.Description = strings.TrimSpace(a.Description)
	a.ImageURL = strings.TrimSpace(a.ImageURL)
	a.Source.Name = strings.TrimSpace(a.Source.Name)
	if a.Source.Name == "" {
		a.Source.Name = UnknownSource
	}
	return a
}

// SaveState is the outcome of a save toggle.
type SaveState struct {
	NowSaved bool
}

// Theme is the persisted color scheme preference.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// ParseTheme maps a stored value to a Theme. Anything but "dark" is light.
func ParseTheme(raw string) Theme {
	if strings.EqualFold(strings.TrimSpace(raw), string(ThemeDark)) {
		return ThemeDark
	}
	return ThemeLight
}

// Toggle returns the opposite theme.
func (t Theme) Toggle() Theme {
	if t == ThemeDark {
		return ThemeLight
	}
	return ThemeDark
}

// ViewState is the mutually exclusive UI mode.
type ViewState int

const (
	ViewLoading ViewState = iota
	ViewContent
	ViewEmpty
)

func (v ViewState) String() string {
	switch v {
	case ViewLoading:
		return "loading"
	case ViewContent:
		return "content"
	case ViewEmpty:
		return "empty"
	default:
		return "unknown"
	}
}

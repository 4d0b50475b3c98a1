package render

import (
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/samvad-hq/newsdeck/internal/domain"
)

const (
	// NoDescription replaces an absent article description.
	NoDescription = "No description available."

	// DateLayout renders publish dates as "Jan 5, 2024".
	DateLayout = "Jan 2, 2006"

	SaveLabel  = "Save"
	SavedLabel = "Saved"
	SaveIcon   = "☆"
	SavedIcon  = "★"
)

// Card is the display model for one article.
type Card struct {
	Article     domain.Article
	Title       string
	ImageURL    string
	Source      string
	Description string
	Date        string
	Category    string
	Saved       bool
}

// SaveLabel returns the label shown on the save control.
func (c Card) SaveLabel() string {
	if c.Saved {
		return SavedLabel
	}
	return SaveLabel
}

// SaveIcon returns the glyph shown on the save control.
func (c Card) SaveIcon() string {
	if c.Saved {
		return SavedIcon
	}
	return SaveIcon
}

// NewCard maps an article and a category label to a card.
func NewCard(a domain.Article, categoryLabel string, saved bool) Card {
	desc := a.Description
	if strings.TrimSpace(desc) == "" {
		desc = NoDescription
	}
	source := a.Source.Name
	if source == "" {
		source = domain.UnknownSource
	}

	return Card{
		Article:     a,
		Title:       a.Title,
		ImageURL:    a.ImageURL,
		Source:      source,
		Description: desc,
		Date:        FormatDate(a.PublishedAt),
		Category:    Capitalize(categoryLabel),
		Saved:       saved,
	}
}

// Render builds the card list for a fetch result. Articles without an image
// are skipped. isSaved may be nil.
func Render(articles []domain.Article, categoryLabel string, isSaved func(url string) bool) []Card {
	cards := make([]Card, 0, len(articles))
	for _, a := range articles {
		if !a.HasImage() {
			continue
		}
		saved := isSaved != nil && isSaved(a.URL)
		cards = append(cards, NewCard(a, categoryLabel, saved))
	}
	return cards
}

// Refresh recomputes the saved flag of every card.
func Refresh(cards []Card, isSaved func(url string) bool) {
	for i := range cards {
		cards[i].Saved = isSaved != nil && isSaved(cards[i].Article.URL)
	}
}

// FormatDate renders t as "Jan 5, 2024" in t's own offset. The zero time
// renders as an empty string.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateLayout)
}

// Capitalize upper-cases the first letter of s.
func Capitalize(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[size:]
}

package render

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samvad-hq/newsdeck/internal/browser"
	"github.com/samvad-hq/newsdeck/internal/domain"
	"github.com/samvad-hq/newsdeck/pkg/publishers"
)

func article(url, image string) domain.Article {
	return domain.Article{
		Title:       "Title for " + url,
		URL:         url,
		ImageURL:    image,
		Source:      domain.Source{Name: "Wire"},
		PublishedAt: time.Date(2024, time.January, 5, 10, 0, 0, 0, time.UTC),
	}
}

func TestRenderSkipsArticlesWithoutImage(t *testing.T) {
	in := []domain.Article{
		article("https://example.com/1", "https://example.com/1.jpg"),
		article("https://example.com/2", ""),
		article("https://example.com/3", "   "),
		article("https://example.com/4", "https://example.com/4.jpg"),
	}

	cards := Render(in, "general", nil)
	require.Len(t, cards, 2)
	for _, c := range cards {
		assert.NotEmpty(t, c.ImageURL)
	}
	assert.Equal(t, "https://example.com/1", cards[0].Article.URL)
	assert.Equal(t, "https://example.com/4", cards[1].Article.URL)
}

func TestRenderAllImagelessYieldsNoCards(t *testing.T) {
	cards := Render([]domain.Article{article("a", ""), article("b", "")}, "sports", nil)
	assert.Empty(t, cards)
	assert.NotNil(t, cards)
}

func TestNewCardDerivedFields(t *testing.T) {
	a := article("https://example.com/1", "https://example.com/1.jpg")
	a.Source.Name = ""

	c := NewCard(a, "technology", false)
	assert.Equal(t, NoDescription, c.Description)
	assert.Equal(t, "Jan 5, 2024", c.Date)
	assert.Equal(t, "Technology", c.Category)
	assert.Equal(t, domain.UnknownSource, c.Source)
	assert.Equal(t, SaveLabel, c.SaveLabel())
	assert.Equal(t, SaveIcon, c.SaveIcon())

	a.Description = "Body"
	saved := NewCard(a, "technology", true)
	assert.Equal(t, "Body", saved.Description)
	assert.Equal(t, SavedLabel, saved.SaveLabel())
	assert.Equal(t, SavedIcon, saved.SaveIcon())
}

func TestRenderSaveStateComputedFresh(t *testing.T) {
	in := []domain.Article{
		article("https://example.com/1", "i1"),
		article("https://example.com/2", "i2"),
	}
	saved := map[string]bool{"https://example.com/2": true}
	isSaved := func(u string) bool { return saved[u] }

	cards := Render(in, "general", isSaved)
	assert.False(t, cards[0].Saved)
	assert.True(t, cards[1].Saved)

	saved["https://example.com/1"] = true
	delete(saved, "https://example.com/2")
	Refresh(cards, isSaved)
	assert.True(t, cards[0].Saved)
	assert.False(t, cards[1].Saved)
}

func TestFormatDate(t *testing.T) {
	assert.Equal(t, "Dec 31, 2023", FormatDate(time.Date(2023, time.December, 31, 23, 0, 0, 0, time.UTC)))
	assert.Equal(t, "", FormatDate(time.Time{}))
}

func TestCapitalize(t *testing.T) {
	assert.Equal(t, "General", Capitalize("general"))
	assert.Equal(t, "Élan", Capitalize("élan"))
	assert.Equal(t, "", Capitalize(""))
	assert.Equal(t, "Mars rover", Capitalize("mars rover"))
}

func TestMailtoURL(t *testing.T) {
	a := domain.Article{Title: "Rates & more", Description: "Held (again)", URL: "https://example.com/r?id=1"}
	raw := MailtoURL(a)

	assert.True(t, strings.HasPrefix(raw, "mailto:?subject=Rates%20%26%20more&body="))
	assert.NotContains(t, raw, "+")
	assert.Contains(t, raw, "(again)")

	u, err := url.Parse(raw)
	require.NoError(t, err)
	q := u.Query()
	assert.Equal(t, "Rates & more", q.Get("subject"))
	assert.Equal(t, "Held (again)\n\nRead more: https://example.com/r?id=1", q.Get("body"))

	noDesc := MailtoURL(domain.Article{Title: "T", URL: "https://e.com"})
	u, err = url.Parse(noDesc)
	require.NoError(t, err)
	assert.Equal(t, "Read more: https://e.com", u.Query().Get("body"))
}

type memStore struct {
	saved map[string]bool
	err   error
}

func (m *memStore) ToggleSave(_ context.Context, a domain.Article) (domain.SaveState, error) {
	if m.err != nil {
		return domain.SaveState{}, m.err
	}
	if m.saved[a.URL] {
		delete(m.saved, a.URL)
		return domain.SaveState{NowSaved: false}, nil
	}
	m.saved[a.URL] = true
	return domain.SaveState{NowSaved: true}, nil
}

func (m *memStore) IsSaved(u string) bool { return m.saved[u] }

func TestActionsToggleSave(t *testing.T) {
	now := time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)
	st := &memStore{saved: map[string]bool{}}
	acts := Actions{Store: st, Now: func() time.Time { return now }}

	card := NewCard(article("https://example.com/1", "i"), "general", false)

	toast, err := acts.ToggleSave(context.Background(), &card)
	require.NoError(t, err)
	assert.True(t, card.Saved)
	assert.Equal(t, ToastSaved, toast.Message)
	assert.Equal(t, now.Add(ToastDuration), toast.Expires)

	toast, err = acts.ToggleSave(context.Background(), &card)
	require.NoError(t, err)
	assert.False(t, card.Saved)
	assert.Equal(t, ToastRemoved, toast.Message)

	st.err = errors.New("disk full")
	_, err = acts.ToggleSave(context.Background(), &card)
	assert.Error(t, err)
	assert.False(t, card.Saved)
}

func TestActionsOpen(t *testing.T) {
	rec := &browser.Recorder{}
	card := NewCard(article("https://example.com/open", "i"), "general", false)

	require.NoError(t, Actions{Opener: rec}.Open(card))
	assert.Equal(t, []string{"https://example.com/open"}, rec.URLs)

	assert.Error(t, Actions{}.Open(card))
}

type fakeSharer struct {
	err    error
	events []publishers.ShareEvent
}

func (f *fakeSharer) Share(_ context.Context, evt publishers.ShareEvent) error {
	f.events = append(f.events, evt)
	return f.err
}

func TestActionsShareUsesCapability(t *testing.T) {
	rec := &browser.Recorder{}
	sh := &fakeSharer{}
	a := article("https://example.com/s", "i")
	a.Description = "Desc"

	res, err := Actions{Opener: rec, Sharer: sh}.Share(context.Background(), NewCard(a, "general", false))
	require.NoError(t, err)
	assert.False(t, res.Fallback)
	require.Len(t, sh.events, 1)
	assert.Equal(t, "Desc", sh.events[0].Text)
	assert.Equal(t, a.URL, sh.events[0].URL)
	assert.Empty(t, rec.URLs)
}

func TestActionsShareFallsBackToMail(t *testing.T) {
	a := article("https://example.com/s", "i")
	card := NewCard(a, "general", false)

	for name, sharer := range map[string]Sharer{
		"unavailable": &fakeSharer{err: publishers.ErrShareUnavailable},
		"failed":      &fakeSharer{err: errors.New("sns down")},
		"none":        nil,
	} {
		t.Run(name, func(t *testing.T) {
			rec := &browser.Recorder{}
			res, err := Actions{Opener: rec, Sharer: sharer}.Share(context.Background(), card)
			require.NoError(t, err)
			assert.True(t, res.Fallback)
			require.Len(t, rec.URLs, 1)
			assert.Equal(t, MailtoURL(a), rec.URLs[0])
			assert.True(t, strings.HasPrefix(res.MailURL, "mailto:"))
		})
	}
}

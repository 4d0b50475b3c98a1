// Package app holds the view controller: the single owner of UI state and
// the orchestrator of fetch, render and per-card actions.
package app

import (
	"context"
	"errors"
	"strings"

	"github.com/samvad-hq/newsdeck/internal/domain"
	"github.com/samvad-hq/newsdeck/internal/logger"
	"github.com/samvad-hq/newsdeck/internal/render"
	"github.com/samvad-hq/newsdeck/pkg/newsapi"
)

// ThemeStore persists the theme preference.
type ThemeStore interface {
	Theme(ctx context.Context) (domain.Theme, bool, error)
	SetTheme(ctx context.Context, theme domain.Theme) error
}

// Store is everything the controller needs from persistence.
type Store interface {
	render.SaveToggler
	ThemeStore
}

// Request identifies one fetch. Seq increases with every request started.
type Request struct {
	Seq      uint64
	Query    string
	IsSearch bool
}

// Result is the outcome of running a Request.
type Result struct {
	Request  Request
	Articles []domain.Article
	Err      error
}

// State is the complete UI state.
type State struct {
	View           domain.ViewState
	ActiveCategory string
	SearchText     string
	Theme          domain.Theme
	Cards          []render.Card
	// Label is the category label shown on cards.
	Label   string
	Toast   render.Toast
	LastErr error

	seq uint64
}

// Controller drives State. It is not safe for concurrent use; the UI loop
// owns it and only Fetch may run elsewhere.
type Controller struct {
	state           State
	fetcher         newsapi.Fetcher
	store           Store
	actions         render.Actions
	log             logger.Logger
	defaultCategory string
}

// Options wires a Controller.
type Options struct {
	Fetcher         newsapi.Fetcher
	Store           Store
	Opener          render.Opener
	Sharer          render.Sharer
	Log             logger.Logger
	DefaultCategory string
}

// New builds a Controller in the loading state with the light theme.
func New(opts Options) *Controller {
	cat := strings.ToLower(strings.TrimSpace(opts.DefaultCategory))
	if !domain.IsCategory(cat) {
		cat = domain.DefaultCategory
	}
	log := logger.Ensure(opts.Log)
	return &Controller{
		state: State{
			View:  domain.ViewLoading,
			Theme: domain.ThemeLight,
		},
		fetcher: opts.Fetcher,
		store:   opts.Store,
		actions: render.Actions{
			Opener: opts.Opener,
			Sharer: opts.Sharer,
			Store:  opts.Store,
			Log:    log,
		},
		log:             log,
		defaultCategory: cat,
	}
}

// State returns a snapshot of the current state.
func (c *Controller) State() State {
	s := c.state
	s.Cards = append([]render.Card(nil), c.state.Cards...)
	return s
}

// Start applies the persisted theme and begins the default category fetch.
func (c *Controller) Start(ctx context.Context) Request {
	if c.store != nil {
		theme, ok, err := c.store.Theme(ctx)
		switch {
		case err != nil:
			c.log.WarnObj("could not read theme preference", "theme_read_error", map[string]any{"error": err.Error()})
		case ok:
			c.state.Theme = theme
		}
	}
	req, _ := c.SelectCategory(c.defaultCategory)
	return req
}

// SelectCategory clears the search text, activates category and begins a
// headlines fetch. Unknown categories are ignored.
func (c *Controller) SelectCategory(category string) (Request, bool) {
	category = strings.ToLower(strings.TrimSpace(category))
	if !domain.IsCategory(category) {
		return Request{}, false
	}
	c.state.SearchText = ""
	c.state.ActiveCategory = category
	return c.begin(category, false), true
}

// SubmitSearch deactivates the active category and begins a search fetch.
// Whitespace-only text is a no-op.
func (c *Controller) SubmitSearch(text string) (Request, bool) {
	query := strings.TrimSpace(text)
	if query == "" {
		return Request{}, false
	}
	c.state.ActiveCategory = ""
	c.state.SearchText = query
	return c.begin(query, true), true
}

// Reload repeats the current category or search.
func (c *Controller) Reload() (Request, bool) {
	if c.state.ActiveCategory != "" {
		return c.SelectCategory(c.state.ActiveCategory)
	}
	if c.state.SearchText != "" {
		return c.SubmitSearch(c.state.SearchText)
	}
	return c.SelectCategory(c.defaultCategory)
}

// begin enters the loading state. Cards are dropped so card actions cannot
// reach articles that are no longer shown.
func (c *Controller) begin(query string, isSearch bool) Request {
	c.state.seq++
	c.state.View = domain.ViewLoading
	c.state.Cards = nil
	return Request{Seq: c.state.seq, Query: query, IsSearch: isSearch}
}

// Fetch runs req against the news API. It touches no controller state and
// may run off the UI loop.
func (c *Controller) Fetch(ctx context.Context, req Request) Result {
	if c.fetcher == nil {
		return Result{Request: req, Err: errors.New("no news client configured")}
	}
	articles, err := c.fetcher.Fetch(ctx, req.Query, req.IsSearch)
	return Result{Request: req, Articles: articles, Err: err}
}

// Complete applies a fetch result. Results from superseded requests are
// dropped and reported as not applied.
func (c *Controller) Complete(res Result) bool {
	if res.Request.Seq != c.state.seq {
		c.log.DebugObj("dropping stale fetch result", "fetch_stale", map[string]any{
			"seq":    res.Request.Seq,
			"latest": c.state.seq,
		})
		return false
	}

	c.state.LastErr = res.Err
	if res.Err != nil {
		c.log.ErrorObj("error fetching news", "fetch_error", map[string]any{
			"query":     res.Request.Query,
			"is_search": res.Request.IsSearch,
			"error":     res.Err.Error(),
		})
		c.state.Cards = nil
		c.state.View = domain.ViewEmpty
		return true
	}

	c.state.Label = res.Request.Query
	c.state.Cards = render.Render(res.Articles, res.Request.Query, c.isSaved)
	if len(c.state.Cards) == 0 {
		c.state.View = domain.ViewEmpty
	} else {
		c.state.View = domain.ViewContent
	}
	return true
}

// ToggleTheme flips and persists the theme. The in-memory theme changes even
// if persisting fails.
func (c *Controller) ToggleTheme(ctx context.Context) (domain.Theme, error) {
	c.state.Theme = c.state.Theme.Toggle()
	if c.store == nil {
		return c.state.Theme, nil
	}
	if err := c.store.SetTheme(ctx, c.state.Theme); err != nil {
		c.log.WarnObj("could not persist theme", "theme_write_error", map[string]any{"error": err.Error()})
		return c.state.Theme, err
	}
	return c.state.Theme, nil
}

// ToggleSave flips the saved state of the card at idx and sets the toast.
func (c *Controller) ToggleSave(ctx context.Context, idx int) (render.Toast, error) {
	if idx < 0 || idx >= len(c.state.Cards) {
		return render.Toast{}, errors.New("no card at index")
	}
	toast, err := c.actions.ToggleSave(ctx, &c.state.Cards[idx])
	if err != nil {
		c.log.ErrorObj("save toggle failed", "save_error", map[string]any{
			"url":   c.state.Cards[idx].Article.URL,
			"error": err.Error(),
		})
		return render.Toast{}, err
	}
	c.state.Toast = toast
	return toast, nil
}

// ClearToast removes the toast if it is still the one that expired.
func (c *Controller) ClearToast(expired render.Toast) {
	if c.state.Toast == expired {
		c.state.Toast = render.Toast{}
	}
}

// Open opens the card at idx.
func (c *Controller) Open(idx int) error {
	if idx < 0 || idx >= len(c.state.Cards) {
		return errors.New("no card at index")
	}
	return c.actions.Open(c.state.Cards[idx])
}

// Card returns the card at idx.
func (c *Controller) Card(idx int) (render.Card, bool) {
	if idx < 0 || idx >= len(c.state.Cards) {
		return render.Card{}, false
	}
	return c.state.Cards[idx], true
}

// Share shares card through the configured actions. It may run off the UI
// loop; it reads only the card it is given.
func (c *Controller) Share(ctx context.Context, card render.Card) (render.ShareResult, error) {
	return c.actions.Share(ctx, card)
}

func (c *Controller) isSaved(url string) bool {
	if c.store == nil {
		return false
	}
	return c.store.IsSaved(url)
}

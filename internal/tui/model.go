// Package tui is the interactive terminal front end of newsdeck.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/samvad-hq/newsdeck/internal/app"
	"github.com/samvad-hq/newsdeck/internal/domain"
	"github.com/samvad-hq/newsdeck/internal/render"
)

const (
	// Theme indicator glyphs; each points at the theme a toggle switches to.
	lightIndicator = "☾"
	darkIndicator  = "☀"

	emptyMessage = "No articles found. Try another category or search."
	cardHeight   = 7
	minCardWidth = 40
)

type articlesLoadedMsg struct {
	result app.Result
}

type toastExpiredMsg struct {
	toast render.Toast
}

type shareDoneMsg struct {
	result render.ShareResult
	err    error
}

// Model is the bubbletea model wrapping an app.Controller.
type Model struct {
	ctx      context.Context
	ctrl     *app.Controller
	styles   Styles
	input    textinput.Model
	spinner  spinner.Model
	pending  app.Request
	selected int
	offset   int
	width    int
	height   int
	status   string
	now      func() time.Time
}

// New builds the model and starts the first load. ctx bounds every fetch and
// share the model issues.
func New(ctx context.Context, ctrl *app.Controller) Model {
	pending := ctrl.Start(ctx)
	styles := NewStyles(ctrl.State().Theme)

	ti := textinput.New()
	ti.Placeholder = "Search news..."
	ti.Prompt = "/ "
	ti.CharLimit = 256
	ti.Width = 60
	ti.PromptStyle = styles.Prompt

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.Spinner

	return Model{
		ctx:     ctx,
		ctrl:    ctrl,
		styles:  styles,
		input:   ti,
		spinner: sp,
		pending: pending,
		width:   80,
		height:  24,
		now:     time.Now,
	}
}

// Init fetches the default category and starts the spinner.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.fetch(m.pending), m.spinner.Tick)
}

func (m Model) fetch(req app.Request) tea.Cmd {
	ctx, ctrl := m.ctx, m.ctrl
	return func() tea.Msg {
		return articlesLoadedMsg{result: ctrl.Fetch(ctx, req)}
	}
}

func (m Model) expireToast(t render.Toast) tea.Cmd {
	wait := t.Expires.Sub(m.now())
	if wait < 0 {
		wait = 0
	}
	return tea.Tick(wait, func(time.Time) tea.Msg {
		return toastExpiredMsg{toast: t}
	})
}

// Update handles one message.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.input.Width = max(10, msg.Width-6)
		m.clampScroll()
		return m, nil

	case articlesLoadedMsg:
		if m.ctrl.Complete(msg.result) {
			m.selected, m.offset = 0, 0
		}
		return m, nil

	case toastExpiredMsg:
		m.ctrl.ClearToast(msg.toast)
		return m, nil

	case shareDoneMsg:
		switch {
		case msg.err != nil:
			m.status = "Share failed: " + msg.err.Error()
		case msg.result.Fallback:
			m.status = "Opened mail draft"
		default:
			m.status = "Article shared"
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.input.Focused() {
			return m.updateSearch(msg)
		}
		return m.updateBrowse(msg)
	}
	return m, nil
}

func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.input.Blur()
		return m, nil
	case "enter":
		req, ok := m.ctrl.SubmitSearch(m.input.Value())
		if !ok {
			return m, nil
		}
		m.input.Blur()
		m.status = ""
		return m, m.fetch(req)
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key := msg.String(); key {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "/":
		m.input.Focus()
		return m, textinput.Blink

	case "left", "h":
		return m.selectCategory(m.categoryStep(-1))
	case "right", "l":
		return m.selectCategory(m.categoryStep(1))
	case "1", "2", "3", "4", "5", "6", "7":
		return m.selectCategory(domain.Categories[int(key[0]-'1')])

	case "up", "k":
		if m.selected > 0 {
			m.selected--
		}
		m.clampScroll()
	case "down", "j":
		if m.selected < len(m.ctrl.State().Cards)-1 {
			m.selected++
		}
		m.clampScroll()

	case "enter", "o":
		if err := m.ctrl.Open(m.selected); err != nil {
			m.status = err.Error()
		}
	case "s":
		toast, err := m.ctrl.ToggleSave(m.ctx, m.selected)
		if err != nil {
			m.status = "Could not update saved articles"
			return m, nil
		}
		return m, m.expireToast(toast)
	case "x":
		card, ok := m.ctrl.Card(m.selected)
		if !ok {
			return m, nil
		}
		ctx, ctrl := m.ctx, m.ctrl
		return m, func() tea.Msg {
			res, err := ctrl.Share(ctx, card)
			return shareDoneMsg{result: res, err: err}
		}
	case "t":
		theme, err := m.ctrl.ToggleTheme(m.ctx)
		m.applyTheme(theme)
		if err != nil {
			m.status = "Theme not saved"
		}
	case "r":
		req, ok := m.ctrl.Reload()
		if ok {
			m.status = ""
			return m, m.fetch(req)
		}
	}
	return m, nil
}

func (m Model) selectCategory(category string) (tea.Model, tea.Cmd) {
	req, ok := m.ctrl.SelectCategory(category)
	if !ok {
		return m, nil
	}
	m.input.SetValue("")
	m.status = ""
	return m, m.fetch(req)
}

// categoryStep returns the category delta steps away from the active one,
// wrapping around. With no active category it starts from the first.
func (m Model) categoryStep(delta int) string {
	idx := domain.CategoryIndex(m.ctrl.State().ActiveCategory)
	n := len(domain.Categories)
	if idx < 0 {
		if delta > 0 {
			return domain.Categories[0]
		}
		return domain.Categories[n-1]
	}
	return domain.Categories[((idx+delta)%n+n)%n]
}

func (m *Model) applyTheme(theme domain.Theme) {
	m.styles = NewStyles(theme)
	m.input.PromptStyle = m.styles.Prompt
	m.spinner.Style = m.styles.Spinner
}

func (m Model) visibleCards() int {
	return max(1, (m.height-6)/cardHeight)
}

func (m *Model) clampScroll() {
	n := m.visibleCards()
	if m.selected < m.offset {
		m.offset = m.selected
	}
	if m.selected >= m.offset+n {
		m.offset = m.selected - n + 1
	}
	if m.offset < 0 {
		m.offset = 0
	}
}

// View renders the whole screen.
func (m Model) View() string {
	st := m.ctrl.State()
	var b strings.Builder

	b.WriteString(m.styles.Header.Render("newsdeck  " + themeIndicator(st.Theme)))
	b.WriteString("\n")
	b.WriteString(m.renderTabs(st.ActiveCategory))
	b.WriteString("\n")
	if m.input.Focused() || st.SearchText != "" {
		b.WriteString(m.input.View())
		b.WriteString("\n")
	}
	b.WriteString("\n")

	switch st.View {
	case domain.ViewLoading:
		b.WriteString(m.spinner.View() + " Loading...")
	case domain.ViewEmpty:
		b.WriteString(m.styles.Empty.Render(emptyMessage))
	case domain.ViewContent:
		b.WriteString(m.renderCards(st.Cards))
	}
	b.WriteString("\n")
	b.WriteString(m.renderFooter(st))

	return m.styles.App.Render(b.String())
}

func themeIndicator(theme domain.Theme) string {
	if theme == domain.ThemeDark {
		return darkIndicator
	}
	return lightIndicator
}

func (m Model) renderTabs(active string) string {
	tabs := make([]string, 0, len(domain.Categories))
	for _, c := range domain.Categories {
		label := render.Capitalize(c)
		if c == active {
			tabs = append(tabs, m.styles.ActiveTab.Render(label))
			continue
		}
		tabs = append(tabs, m.styles.Tab.Render(label))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) renderCards(cards []render.Card) string {
	width := max(minCardWidth, m.width-4)
	end := min(len(cards), m.offset+m.visibleCards())

	rendered := make([]string, 0, end-m.offset)
	for i := m.offset; i < end; i++ {
		style := m.styles.Card
		if i == m.selected {
			style = m.styles.SelectedCard
		}
		rendered = append(rendered, style.Width(width).Render(m.renderCard(cards[i], width-4)))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rendered...)
}

func (m Model) renderCard(c render.Card, width int) string {
	save := m.styles.Unsaved.Render(c.SaveIcon() + " " + c.SaveLabel())
	if c.Saved {
		save = m.styles.Saved.Render(c.SaveIcon() + " " + c.SaveLabel())
	}
	meta := fmt.Sprintf("%s · %s · %s", c.Source, c.Date, c.Category)

	return strings.Join([]string{
		m.styles.CardTitle.Render(truncate(c.Title, width)),
		m.styles.CardMeta.Render(truncate(meta, width)),
		m.styles.CardBody.Render(truncate(c.Description, width)),
		m.styles.CardImage.Render(truncate(c.ImageURL, width)),
		save,
	}, "\n")
}

func (m Model) renderFooter(st app.State) string {
	var parts []string
	if st.Toast.Message != "" {
		parts = append(parts, m.styles.Toast.Render(st.Toast.Message))
	}
	if m.status != "" {
		parts = append(parts, m.styles.Error.Render(m.status))
	}
	help := "←/→ category · / search · ↑/↓ select · enter open · s save · x share · t theme · r reload · q quit"
	if m.input.Focused() {
		help = "enter search · esc cancel"
	}
	parts = append(parts, m.styles.Footer.Render(help))
	return strings.Join(parts, " ")
}

func truncate(s string, width int) string {
	r := []rune(s)
	if width <= 1 || len(r) <= width {
		return s
	}
	return string(r[:width-1]) + "…"
}

// Run starts the program and blocks until the user quits.
func Run(ctx context.Context, ctrl *app.Controller) error {
	p := tea.NewProgram(New(ctx, ctrl), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/samvad-hq/newsdeck/internal/domain"
)

var (
	lightBackground = lipgloss.Color("#f4f5f6")
	lightForeground = lipgloss.Color("#1a1a2e")
	lightPrimary    = lipgloss.Color("#1d4ed8")
	lightMuted      = lipgloss.Color("#6b7280")
	lightBorder     = lipgloss.Color("#d1d5db")
	lightCard       = lipgloss.Color("#ffffff")

	darkBackground = lipgloss.Color("#121826")
	darkForeground = lipgloss.Color("#e5e7eb")
	darkPrimary    = lipgloss.Color("#60a5fa")
	darkMuted      = lipgloss.Color("#9ca3af")
	darkBorder     = lipgloss.Color("#374151")
	darkCard       = lipgloss.Color("#1f2937")

	savedColor = lipgloss.Color("#f59e0b")
	errorColor = lipgloss.Color("#e53935")
)

// Palette is the color set for one theme.
type Palette struct {
	Background lipgloss.Color
	Foreground lipgloss.Color
	Primary    lipgloss.Color
	Muted      lipgloss.Color
	Border     lipgloss.Color
	Card       lipgloss.Color
	IsDark     bool
}

// PaletteFor returns the palette for theme.
func PaletteFor(theme domain.Theme) Palette {
	if theme == domain.ThemeDark {
		return Palette{
			Background: darkBackground,
			Foreground: darkForeground,
			Primary:    darkPrimary,
			Muted:      darkMuted,
			Border:     darkBorder,
			Card:       darkCard,
			IsDark:     true,
		}
	}
	return Palette{
		Background: lightBackground,
		Foreground: lightForeground,
		Primary:    lightPrimary,
		Muted:      lightMuted,
		Border:     lightBorder,
		Card:       lightCard,
	}
}

// Styles holds every styled component of the reader.
type Styles struct {
	Palette Palette

	App       lipgloss.Style
	Header    lipgloss.Style
	Tab       lipgloss.Style
	ActiveTab lipgloss.Style
	Footer    lipgloss.Style

	Card         lipgloss.Style
	SelectedCard lipgloss.Style
	CardTitle    lipgloss.Style
	CardMeta     lipgloss.Style
	CardBody     lipgloss.Style
	CardImage    lipgloss.Style
	Saved        lipgloss.Style
	Unsaved      lipgloss.Style

	Prompt  lipgloss.Style
	Empty   lipgloss.Style
	Toast   lipgloss.Style
	Error   lipgloss.Style
	Spinner lipgloss.Style
}

// NewStyles builds Styles for theme.
func NewStyles(theme domain.Theme) Styles {
	p := PaletteFor(theme)
	card := lipgloss.NewStyle().
		Background(p.Card).
		Foreground(p.Foreground).
		Padding(0, 1).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(p.Border)

	return Styles{
		Palette: p,

		App: lipgloss.NewStyle().
			Background(p.Background).
			Foreground(p.Foreground),

		Header: lipgloss.NewStyle().
			Background(p.Primary).
			Foreground(lipgloss.Color("#ffffff")).
			Padding(0, 2).
			Bold(true),

		Tab: lipgloss.NewStyle().
			Foreground(p.Muted).
			Padding(0, 1),

		ActiveTab: lipgloss.NewStyle().
			Foreground(p.Primary).
			Padding(0, 1).
			Bold(true).
			Underline(true),

		Footer: lipgloss.NewStyle().
			Foreground(p.Muted).
			Padding(0, 2),

		Card:         card,
		SelectedCard: card.BorderForeground(p.Primary).BorderStyle(lipgloss.ThickBorder()),

		CardTitle: lipgloss.NewStyle().
			Foreground(p.Foreground).
			Bold(true),

		CardMeta: lipgloss.NewStyle().
			Foreground(p.Muted).
			Italic(true),

		CardBody: lipgloss.NewStyle().
			Foreground(p.Foreground),

		CardImage: lipgloss.NewStyle().
			Foreground(p.Muted).
			Faint(true),

		Saved: lipgloss.NewStyle().
			Foreground(savedColor).
			Bold(true),

		Unsaved: lipgloss.NewStyle().
			Foreground(p.Muted),

		Prompt: lipgloss.NewStyle().
			Foreground(p.Primary).
			Bold(true),

		Empty: lipgloss.NewStyle().
			Foreground(p.Muted).
			Padding(1, 2),

		Toast: lipgloss.NewStyle().
			Background(savedColor).
			Foreground(lipgloss.Color("#111111")).
			Padding(0, 1).
			Bold(true),

		Error: lipgloss.NewStyle().
			Foreground(errorColor).
			Bold(true),

		Spinner: lipgloss.NewStyle().
			Foreground(p.Primary),
	}
}

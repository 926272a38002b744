package cli

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// Theme defines the colour palette for terminal reports.
type Theme struct {
	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Muted     lipgloss.Color
	Success   lipgloss.Color
	Warning   lipgloss.Color
	Error     lipgloss.Color
	Border    lipgloss.Color
}

// DefaultTheme returns the default colour theme.
func DefaultTheme() *Theme {
	return &Theme{
		Primary:   lipgloss.Color("#7C3AED"), // Purple
		Secondary: lipgloss.Color("#06B6D4"), // Cyan
		Muted:     lipgloss.Color("#6C7086"), // Medium gray
		Success:   lipgloss.Color("#A6E3A1"), // Green
		Warning:   lipgloss.Color("#F9E2AF"), // Yellow
		Error:     lipgloss.Color("#F38BA8"), // Red
		Border:    lipgloss.Color("#45475A"), // Border gray
	}
}

// Styles contains the lipgloss styles used by report rendering.
type Styles struct {
	Title   lipgloss.Style
	Heading lipgloss.Style
	Label   lipgloss.Style
	Muted   lipgloss.Style
	Pass    lipgloss.Style
	Warn    lipgloss.Style
	Fail    lipgloss.Style
	Box     lipgloss.Style
}

// NewStyles creates styles from a theme. Plain styles carry no colour or
// borders, for pipes and files.
func NewStyles(theme *Theme, plain bool) *Styles {
	if plain {
		s := lipgloss.NewStyle()
		return &Styles{Title: s, Heading: s, Label: s.Width(24), Muted: s, Pass: s, Warn: s, Fail: s, Box: s}
	}
	if theme == nil {
		theme = DefaultTheme()
	}

	return &Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.Primary),

		Heading: lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.Secondary),

		Label: lipgloss.NewStyle().
			Width(24),

		Muted: lipgloss.NewStyle().
			Foreground(theme.Muted),

		Pass: lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.Success),

		Warn: lipgloss.NewStyle().
			Foreground(theme.Warning),

		Fail: lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.Error),

		Box: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(theme.Border).
			Padding(0, 1),
	}
}

// stylesFor picks coloured styles for terminals and plain ones otherwise.
func stylesFor(w io.Writer) *Styles {
	return NewStyles(DefaultTheme(), !isTerminal(w))
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

// Package theme derives terminal styles from chroma syntax highlighting styles.
package theme

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

var (
	ErrInvalidName    = errors.New("invalid theme name")
	ErrRegisterStyles = errors.New("register styles")
)

var Default = New("github")

// Theme holds the lipgloss styles used by ai-rules output.
type Theme struct {
	TitleStyle        lipgloss.Style
	HeaderStyle       lipgloss.Style
	GenericTextStyle  lipgloss.Style
	SelectedStyle     lipgloss.Style
	SubtleStyle       lipgloss.Style
	SuccessStyle      lipgloss.Style
	WarningStyle      lipgloss.Style
	ErrorTextStyle    lipgloss.Style
	ErrorTitleStyle   lipgloss.Style
	ResultTitleStyle  lipgloss.Style
	DiffInsertedStyle lipgloss.Style
	DiffDeletedStyle  lipgloss.Style

	ChromaStyle *chroma.Style
}

// New returns the [Theme] for the named chroma style. Unknown names fall
// back to the chroma fallback style.
func New(theme string) *Theme {
	style := newChromaStyle(theme)

	var (
		genericStyle = lipgloss.NewStyle().
				Foreground(style.lipglossFromToken(chroma.Background))

		titleStyle = lipgloss.NewStyle().
				Foreground(style.lipglossFromTokenBg(chroma.Background)).
				Background(style.lipglossFromToken(chroma.NameTag)).
				Bold(true).
				Padding(0, 1)

		selectedStyle = lipgloss.NewStyle().
				Foreground(style.lipglossFromToken(chroma.NameTag))

		headerStyle = selectedStyle.Bold(true)

		subtleStyle = lipgloss.NewStyle().
				Foreground(style.lipglossFromToken(chroma.Comment))

		successStyle = lipgloss.NewStyle().
				Foreground(style.lipglossFromToken(chroma.String))

		warningStyle = lipgloss.NewStyle().
				Foreground(style.lipglossFromToken(chroma.LiteralNumber))

		errorTextStyle = lipgloss.NewStyle().
				Foreground(style.lipglossFromToken(chroma.GenericDeleted))

		errorTitleStyle = genericStyle.
				Background(style.lipglossFromToken(chroma.GenericDeleted)).
				Bold(true).
				Padding(0, 1)

		resultTitleStyle = genericStyle.
					Background(style.lipglossFromToken(chroma.GenericInserted)).
					Bold(true).
					Padding(0, 1)

		diffInsertedStyle = lipgloss.NewStyle().
					Foreground(style.lipglossFromToken(chroma.GenericInserted))

		diffDeletedStyle = lipgloss.NewStyle().
					Foreground(style.lipglossFromToken(chroma.GenericDeleted))
	)

	return &Theme{
		TitleStyle:        titleStyle,
		HeaderStyle:       headerStyle,
		GenericTextStyle:  genericStyle,
		SelectedStyle:     selectedStyle,
		SubtleStyle:       subtleStyle,
		SuccessStyle:      successStyle,
		WarningStyle:      warningStyle,
		ErrorTextStyle:    errorTextStyle,
		ErrorTitleStyle:   errorTitleStyle,
		ResultTitleStyle:  resultTitleStyle,
		DiffInsertedStyle: diffInsertedStyle,
		DiffDeletedStyle:  diffDeletedStyle,

		ChromaStyle: style.style,
	}
}

// Register adds a custom chroma style that can then be selected by name.
func Register(name string, entries chroma.StyleEntries) error {
	if name == "" {
		return ErrInvalidName
	}

	customTheme, err := chroma.NewStyle(name, entries)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRegisterStyles, err)
	}

	styles.Register(customTheme)

	return nil
}

// Highlight writes src to w with syntax highlighting for the given lexer
// (e.g. "markdown" or "yaml"), using 256 terminal colors.
func (t *Theme) Highlight(w io.Writer, src, lexer string) error {
	l := lexers.Get(lexer)
	if l == nil {
		l = lexers.Fallback
	}

	l = chroma.Coalesce(l)

	it, err := l.Tokenise(nil, src)
	if err != nil {
		return fmt.Errorf("tokenise: %w", err)
	}

	f := formatters.Get("terminal256")
	if f == nil {
		f = formatters.Fallback
	}

	err = f.Format(w, t.ChromaStyle, it)
	if err != nil {
		return fmt.Errorf("format: %w", err)
	}

	return nil
}

// HighlightString is like [Theme.Highlight], but returns the result. If
// highlighting fails, src is returned unmodified.
func (t *Theme) HighlightString(src, lexer string) string {
	b := &bytes.Buffer{}

	err := t.Highlight(b, src, lexer)
	if err != nil {
		return src
	}

	return b.String()
}

type chromaStyle struct {
	style *chroma.Style
}

func newChromaStyle(theme string) chromaStyle {
	s := styles.Get(getStyle(theme))
	if s == nil {
		s = styles.Fallback
	}

	return chromaStyle{
		style: s,
	}
}

func (cs chromaStyle) lipglossFromToken(c chroma.TokenType) lipgloss.Color {
	s := cs.style.Get(c)

	return lipgloss.Color(s.Colour.String()) //nolint:misspell // Chroma naming.
}

func (cs chromaStyle) lipglossFromTokenBg(c chroma.TokenType) lipgloss.Color {
	s := cs.style.Get(c)

	return lipgloss.Color(s.Background.String())
}

func getStyle(style string) string {
	switch style {
	case "dark":
		return "github-dark"
	case "light":
		return "github"
	case "auto", "":
		return getDefaultStyle()
	default:
		return style
	}
}

func getDefaultStyle() string {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return ""
	}
	if termenv.HasDarkBackground() {
		return "github-dark"
	}

	return "github"
}

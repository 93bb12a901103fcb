// Package ui renders slipway's terminal output: styled status lines,
// the launch checklist, key-value summaries, and history tables. All
// animated output goes to stderr so stdout stays scriptable.
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/muesli/termenv"
)

// Palette, by role rather than hue. Kept muted so the output reads well
// on dark and light terminals alike.
var (
	accent  = lipgloss.Color("39")
	ok      = lipgloss.Color("78")
	alert   = lipgloss.Color("203")
	caution = lipgloss.Color("179")
	dim     = lipgloss.Color("245")
	border  = lipgloss.Color("240")
)

var (
	AccentStyle  = lipgloss.NewStyle().Foreground(accent)
	SuccessStyle = lipgloss.NewStyle().Foreground(ok)
	ErrorStyle   = lipgloss.NewStyle().Foreground(alert)
	WarnStyle    = lipgloss.NewStyle().Foreground(caution)
	MutedStyle   = lipgloss.NewStyle().Foreground(dim)
)

// Inline helpers returning styled text without newlines.

func Accent(s string) string  { return AccentStyle.Render(s) }
func Muted(s string) string   { return MutedStyle.Render(s) }
func Success(s string) string { return SuccessStyle.Render(s) }
func Warn(s string) string    { return WarnStyle.Render(s) }

// Link renders a clickable OSC 8 hyperlink in interactive terminals and
// the bare URL everywhere else.
func Link(url string) string {
	if IsNoInteraction() {
		return url
	}
	return termenv.Hyperlink(url, AccentStyle.Render(url))
}

// Single-line message helpers: a styled glyph followed by the message,
// no trailing newline.

func SuccessMsg(format string, a ...any) string { return glyphed(SuccessStyle, "✓", format, a) }
func WarnMsg(format string, a ...any) string    { return glyphed(WarnStyle, "!", format, a) }
func ErrorMsg(format string, a ...any) string   { return glyphed(ErrorStyle, "✗", format, a) }
func InfoMsg(format string, a ...any) string    { return glyphed(AccentStyle, "●", format, a) }

func glyphed(style lipgloss.Style, glyph, format string, a []any) string {
	return style.Render(glyph) + " " + fmt.Sprintf(format, a...)
}

// Pair is one row of a KeyValues summary. Construct with KV.
type Pair struct {
	key   string
	value string
}

func KV(key, value string) Pair {
	return Pair{key: key, value: value}
}

// KeyValues renders pairs as aligned "key:  value" lines, one per pair,
// with a trailing newline.
func KeyValues(indent string, pairs ...Pair) string {
	widest := 0
	for _, p := range pairs {
		if len(p.key) > widest {
			widest = len(p.key)
		}
	}

	var sb strings.Builder
	for _, p := range pairs {
		sb.WriteString(indent)
		sb.WriteString(MutedStyle.Render(p.key + ":"))
		sb.WriteString(strings.Repeat(" ", widest-len(p.key)+2))
		sb.WriteString(p.value)
		sb.WriteString("\n")
	}
	return sb.String()
}

// Table renders headers and rows with rounded borders and a striped
// body.
func Table(headers []string, rows [][]string) string {
	header := lipgloss.NewStyle().Foreground(accent).Bold(true).Padding(0, 1)
	cell := lipgloss.NewStyle().Padding(0, 1)
	stripe := cell.Foreground(dim)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(border)).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return header
			}
			if row%2 == 1 {
				return stripe
			}
			return cell
		}).
		Headers(headers...).
		Rows(rows...)

	return t.String()
}

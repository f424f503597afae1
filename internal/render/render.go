// Package render draws the client's output: tables, status badges, bar
// charts and markdown bodies, or plain JSON for scripts.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
)

// Printer writes either human output or JSON depending on Format.
type Printer struct {
	Out           io.Writer
	Format        Format
	MarkdownStyle string
	Width         int
}

func (p Printer) JSON() bool { return p.Format == FormatJSON }

// Emit writes v as JSON in JSON mode and the text built by human otherwise.
func (p Printer) Emit(v any, human func() (string, error)) error {
	if p.JSON() {
		return WriteJSON(p.Out, v)
	}
	s, err := human()
	if err != nil {
		return err
	}
	_, err = io.WriteString(p.Out, ensureNewline(s))
	return err
}

// Line writes a single human message. It is suppressed in JSON mode.
func (p Printer) Line(format string, args ...any) {
	if p.JSON() {
		return
	}
	fmt.Fprintf(p.Out, format+"\n", args...)
}

func (p Printer) Markdown(body string) (string, error) {
	return Markdown(body, p.MarkdownStyle, p.width())
}

func (p Printer) width() int {
	if p.Width <= 0 {
		return 80
	}
	return p.Width
}

func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func ensureNewline(s string) string {
	if strings.HasSuffix(s, "\n") {
		return s
	}
	return s + "\n"
}

func Title(s string) string { return titleStyle.Render(s) }

func Muted(s string) string { return mutedStyle.Render(s) }

func Error(s string) string { return errorStyle.Render(s) }

// Table renders rows under headers. An empty table renders the placeholder
// instead.
func Table(headers []string, rows [][]string, empty string) string {
	if len(rows) == 0 {
		return mutedStyle.Render(empty)
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(mutedStyle).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	return t.String()
}

// Fields renders label/value pairs of a detail view. Empty values are skipped.
func Fields(pairs ...[2]string) string {
	width := 0
	for _, p := range pairs {
		width = max(width, lipgloss.Width(p[0]))
	}
	var b strings.Builder
	for _, p := range pairs {
		if p[1] == "" {
			continue
		}
		b.WriteString(labelStyle.Width(width + 2).Render(p[0] + ":"))
		b.WriteString(p[1])
		b.WriteString("\n")
	}
	return b.String()
}

// Badge renders a status word in its color.
func Badge(status string) string {
	s := lipgloss.NewStyle().Bold(true)
	if c, ok := badgeColors[strings.ToLower(status)]; ok {
		s = s.Foreground(c)
	}
	return s.Render(strings.ToUpper(status))
}

type Bar struct {
	Label string
	Value int
}

// BarChart draws one horizontal bar per entry, scaled so the largest value
// spans width cells.
func BarChart(title string, bars []Bar, width int) string {
	if width <= 0 {
		width = 30
	}
	labelW, maxV := 0, 0
	for _, b := range bars {
		labelW = max(labelW, lipgloss.Width(b.Label))
		maxV = max(maxV, b.Value)
	}
	var sb strings.Builder
	if title != "" {
		sb.WriteString(titleStyle.Render(title))
		sb.WriteString("\n")
	}
	for _, b := range bars {
		n := 0
		if maxV > 0 {
			n = b.Value * width / maxV
		}
		if b.Value > 0 && n == 0 {
			n = 1
		}
		fmt.Fprintf(&sb, "%-*s %s %d\n", labelW, b.Label, barStyle.Render(strings.Repeat("█", n)), b.Value)
	}
	return sb.String()
}

// Markdown renders body for the terminal. style is a glamour style name or
// path; "auto" picks by terminal background.
func Markdown(body, style string, width int) (string, error) {
	opts := []glamour.TermRendererOption{glamour.WithWordWrap(width)}
	switch style {
	case "", "auto":
		opts = append(opts, glamour.WithAutoStyle())
	default:
		opts = append(opts, glamour.WithStylePath(style))
	}
	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return "", fmt.Errorf("markdown renderer: %w", err)
	}
	out, err := r.Render(body)
	if err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return out, nil
}

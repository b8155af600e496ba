package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var (
	colorBorder = lipgloss.Color("#575653")
	colorText   = lipgloss.Color("#FFFCF0")
	colorMuted  = lipgloss.Color("#6F6E69")
	colorAccent = lipgloss.Color("#3AA99F")
	colorGreen  = lipgloss.Color("#879A39")
	colorRed    = lipgloss.Color("#D14D41")
	colorOrange = lipgloss.Color("#DA702C")
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorText).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(0, 1)

	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(colorAccent).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Foreground(colorText).Padding(0, 1)
	numStyle    = cellStyle.Align(lipgloss.Right)
	labelStyle  = lipgloss.NewStyle().Foreground(colorMuted)
	goodStyle   = lipgloss.NewStyle().Foreground(colorGreen)
	badStyle    = lipgloss.NewStyle().Foreground(colorRed)
	warnStyle   = lipgloss.NewStyle().Foreground(colorOrange)
)

// view is a titled table. Columns listed in numeric are right aligned.
type view struct {
	Title   string
	Headers []string
	Rows    [][]string
	Numeric map[int]bool
	Empty   string
}

func renderTitle(title string) string {
	return titleStyle.Render(title)
}

func renderView(v view) string {
	var b strings.Builder
	if v.Title != "" {
		b.WriteString(headerStyle.Render(v.Title))
		b.WriteString("\n")
	}
	if len(v.Rows) == 0 {
		empty := v.Empty
		if empty == "" {
			empty = "nothing yet"
		}
		b.WriteString(labelStyle.Render("  " + empty))
		b.WriteString("\n")
		return b.String()
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorBorder)).
		Headers(v.Headers...).
		Rows(v.Rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case v.Numeric[col]:
				return numStyle
			default:
				return cellStyle
			}
		})
	b.WriteString(t.Render())
	b.WriteString("\n")
	return b.String()
}

// renderPairs prints aligned "label  value" lines.
func renderPairs(pairs [][2]string) string {
	width := 0
	for _, p := range pairs {
		width = max(width, len(p[0]))
	}
	var b strings.Builder
	for _, p := range pairs {
		fmt.Fprintf(&b, "  %s  %s\n", labelStyle.Render(fmt.Sprintf("%-*s", width, p[0])), p[1])
	}
	return b.String()
}

func printf(w io.Writer, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}

package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/lipgloss"
)

var (
	primaryColor = lipgloss.Color("#D2691E")
	accentColor  = lipgloss.Color("#FFA500")
	mutedColor   = lipgloss.Color("#888888")
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor)

	descStyle = lipgloss.NewStyle().
			Foreground(accentColor).
			Italic(true).
			MarginBottom(1)

	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(accentColor).
			MarginTop(1)

	keyStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			Width(16)

	valueStyle = lipgloss.NewStyle().
			Bold(true)
)

// styledHelpPrinter prints a styled banner, then kong's own help.
func styledHelpPrinter(options kong.HelpOptions, ctx *kong.Context) error {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("toastfx " + version))
	sb.WriteString("\n")
	sb.WriteString(descStyle.Render("Envelope-driven transformer saturation"))
	sb.WriteString("\n")
	fmt.Fprint(ctx.Stdout, sb.String())

	options.Compact = true
	return kong.DefaultHelpPrinter(options, ctx)
}

// report collects key/value rows under a title.
type report struct {
	title string
	rows  [][2]string
}

func (r *report) add(key, format string, args ...any) {
	r.rows = append(r.rows, [2]string{key, fmt.Sprintf(format, args...)})
}

func (r *report) render(w io.Writer) {
	var sb strings.Builder
	sb.WriteString(sectionStyle.Render(r.title))
	sb.WriteString("\n")
	for _, row := range r.rows {
		sb.WriteString("  ")
		sb.WriteString(keyStyle.Render(row[0]))
		sb.WriteString(valueStyle.Render(row[1]))
		sb.WriteString("\n")
	}
	fmt.Fprint(w, sb.String())
}

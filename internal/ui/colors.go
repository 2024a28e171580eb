package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/desertthunder/playtime/internal/models"
	"github.com/desertthunder/playtime/internal/shared"
)

var styles = NewPalette("#7D56F4", "#04B575", "#FF0000", "#FFA500", "#626262")

// struct Palette is a simple stylesheet built with named [lipgloss.Style] fields
type Palette struct {
	title   lipgloss.Style
	ok      lipgloss.Style
	err     lipgloss.Style
	warn    lipgloss.Style
	help    lipgloss.Style
	rank    lipgloss.Style
	minutes lipgloss.Style
}

func NewPalette(t, s, e, w, h string) *Palette {
	return &Palette{
		title:   NewBold(t).MarginBottom(1),
		ok:      NewBold(s),
		err:     NewBold(e),
		warn:    NewStyle(w),
		help:    NewEm(h),
		rank:    NewBold(t).Width(5).Align(lipgloss.Right),
		minutes: NewStyle(s),
	}
}

func NewStyle(fg string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(fg))
}

func NewBold(fg string) lipgloss.Style {
	return NewStyle(fg).Bold(true)
}

func NewEm(fg string) lipgloss.Style {
	return NewStyle(fg).Italic(true)
}

// Title renders s in the heading style.
func Title(s string) string { return styles.title.Render(s) }

// Success renders s in the success style.
func Success(s string) string { return styles.ok.Render(s) }

// Warning renders s in the warning style.
func Warning(s string) string { return styles.warn.Render(s) }

// Error renders s in the error style.
func Error(s string) string { return styles.err.Render(s) }

// Muted renders s in the help style.
func Muted(s string) string { return styles.help.Render(s) }

// RenderReport renders the ranked entries in the text layout, styled for a terminal.
func RenderReport(report *models.Report) string {
	var b strings.Builder

	b.WriteString(Title(fmt.Sprintf("Most listened recordings for %s (%s)", report.User, report.Range)))
	b.WriteString("\n")

	for _, e := range report.Entries {
		fmt.Fprintf(&b, "%s %s - %s\n", styles.rank.Render(fmt.Sprintf("%d.", e.Rank)), e.ArtistName, e.TrackName)
		fmt.Fprintf(&b, "      %s\n", Muted("from "+e.ReleaseName))
		fmt.Fprintf(&b, "      minutes played: %s\n\n", styles.minutes.Render(shared.FormatMinutes(e.ListeningMS)))
	}

	fmt.Fprintf(&b, "%s %s\n", Success("Total minutes:"), shared.FormatMinutes(report.TotalListeningMS))
	if n := len(report.Skipped); n > 0 {
		b.WriteString(Muted(fmt.Sprintf("%d recordings skipped by rule", n)))
		b.WriteString("\n")
	}
	if n := len(report.Unresolvable); n > 0 {
		b.WriteString(Warning(fmt.Sprintf("%d recordings left out: no MusicBrainz id", n)))
		b.WriteString("\n")
	}
	return b.String()
}

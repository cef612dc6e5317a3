package console

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

var (
	// Colors
	TimeColor     = lipgloss.Color("#9CA3AF") // Gray
	TaskColor     = lipgloss.Color("#60A5FA") // Blue
	SuccessColor  = lipgloss.Color("#10B981") // Green
	ErrorColor    = lipgloss.Color("#F87171") // Red
	WarningColor  = lipgloss.Color("#F59E0B") // Amber
	DurationColor = lipgloss.Color("#A78BFA") // Purple
)

// palette is the set of styles bound to one renderer.
type palette struct {
	time     lipgloss.Style
	task     lipgloss.Style
	success  lipgloss.Style
	failure  lipgloss.Style
	warning  lipgloss.Style
	duration lipgloss.Style
	bold     lipgloss.Style
}

func newPalette(r *lipgloss.Renderer, color bool) palette {
	switch {
	case !color:
		r.SetColorProfile(termenv.Ascii)
	case r.ColorProfile() == termenv.Ascii:
		// Forced color on a writer that is not a terminal.
		r.SetColorProfile(termenv.ANSI256)
	}
	return palette{
		time:     r.NewStyle().Foreground(TimeColor),
		task:     r.NewStyle().Foreground(TaskColor),
		success:  r.NewStyle().Foreground(SuccessColor),
		failure:  r.NewStyle().Foreground(ErrorColor).Bold(true),
		warning:  r.NewStyle().Foreground(WarningColor),
		duration: r.NewStyle().Foreground(DurationColor),
		bold:     r.NewStyle().Bold(true),
	}
}

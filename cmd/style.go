package cmd

import (
	"io"
	"os"

	"charm.land/lipgloss/v2"
	"github.com/mattn/go-isatty"
)

var (
	accent  = lipgloss.Color("#8B5CF6")
	dimText = lipgloss.Color("#94A3B8")
	success = lipgloss.Color("#22C55E")
	failure = lipgloss.Color("#F43F5E")
)

// styles renders human-readable output. Only whole lines or trailing cells
// are styled so fixed-width columns keep their alignment.
type styles struct {
	heading lipgloss.Style
	label   lipgloss.Style
	muted   lipgloss.Style
	ok      lipgloss.Style
	fail    lipgloss.Style
}

// stylesFor returns plain styles unless w is a terminal and NO_COLOR is unset.
func stylesFor(w io.Writer) styles {
	if !colorEnabled(w) {
		plain := lipgloss.NewStyle()
		return styles{heading: plain, label: plain, muted: plain, ok: plain, fail: plain}
	}
	return styles{
		heading: lipgloss.NewStyle().Bold(true).Foreground(accent),
		label:   lipgloss.NewStyle().Bold(true),
		muted:   lipgloss.NewStyle().Foreground(dimText),
		ok:      lipgloss.NewStyle().Foreground(success).Bold(true),
		fail:    lipgloss.NewStyle().Foreground(failure).Bold(true),
	}
}

func colorEnabled(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

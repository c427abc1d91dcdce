package qexp

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	labelStyle = lipgloss.NewStyle().Bold(true)
	barStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("63"))
	probStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

/*
Histogram renders the counts as horizontal bars scaled so the most frequent
outcome spans width cells. Styling is skipped when color is false, which is
what the CLI passes when stdout is not a terminal.
*/
func (r *Result) Histogram(width int, color bool) string {
	if width < 1 {
		width = 40
	}

	total := r.Total()
	peak := 0
	for _, n := range r.Counts {
		peak = max(peak, n)
	}

	render := func(style lipgloss.Style, s string) string {
		if !color {
			return s
		}
		return style.Render(s)
	}

	var b strings.Builder
	for _, outcome := range r.Outcomes() {
		n := r.Counts[outcome]

		cells := 0
		if peak > 0 {
			cells = n * width / peak
		}
		if n > 0 && cells == 0 {
			cells = 1
		}

		prob := 0.0
		if total > 0 {
			prob = float64(n) / float64(total)
		}

		fmt.Fprintf(&b, "%s %s %s\n",
			render(labelStyle, outcome),
			render(barStyle, strings.Repeat("#", cells)),
			render(probStyle, fmt.Sprintf("%.3f", prob)),
		)
	}

	return b.String()
}

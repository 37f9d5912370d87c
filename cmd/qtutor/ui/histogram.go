package ui

import (
	"fmt"
	"strings"

	"github.com/strikereaper/qiskit-tutorial/internal/result"
)

const defaultBarWidth = 36

// Histogram renders measurement counts as a horizontal bar chart, the
// shape every qiskit tutorial plots after a run.
type Histogram struct {
	Title    string
	Counts   result.Counts
	BarWidth int // 0 means defaultBarWidth
}

// View renders the histogram. Outcomes are ordered by count, bars are
// scaled to the modal outcome, and the all-zeros string is highlighted
// since the verdict reads off that row.
func (h Histogram) View(styles Styles) string {
	outcomes := h.Counts.Sorted()
	if len(outcomes) == 0 {
		return styles.Muted.Render("(no counts)") + "\n"
	}

	width := h.BarWidth
	if width <= 0 {
		width = defaultBarWidth
	}
	total := h.Counts.Shots()
	max := outcomes[0].Count

	var sb strings.Builder
	if h.Title != "" {
		sb.WriteString(styles.Title.Render(h.Title))
		sb.WriteString("\n")
	}

	bitsWidth := len(outcomes[0].Bits)
	countWidth := len(fmt.Sprintf("%d", max))
	for _, out := range outcomes {
		bar := width * out.Count / max
		if bar == 0 && out.Count > 0 {
			bar = 1
		}
		pct := 100 * float64(out.Count) / float64(total)

		label := fmt.Sprintf("|%-*s>", bitsWidth, out.Bits)
		labelStyle := styles.BarLabel
		if isAllZeros(out.Bits) {
			labelStyle = styles.Success
		}
		sb.WriteString(labelStyle.Render(label))
		sb.WriteString(" ")
		sb.WriteString(styles.Bar.Render(strings.Repeat("█", bar)))
		sb.WriteString(strings.Repeat(" ", width-bar+1))
		sb.WriteString(styles.Muted.Render(fmt.Sprintf("%*d  %5.1f%%", countWidth, out.Count, pct)))
		sb.WriteString("\n")
	}
	return sb.String()
}

func isAllZeros(bits string) bool {
	if bits == "" {
		return false
	}
	return strings.Count(bits, "0") == len(bits)
}

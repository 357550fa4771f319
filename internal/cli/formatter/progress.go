package formatter

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const (
	filledBlock = "█"
	emptyBlock  = "░"
)

// RenderProgress renders a completion bar like [████░░░░]  45%. Green above
// 66%, yellow from 33%, red below.
func RenderProgress(pct float64, width int) string {
	pct = clamp01(pct)
	style := StyleGreen
	if pct < 0.33 {
		style = StyleRed
	} else if pct < 0.66 {
		style = StyleYellow
	}
	return renderBar(pct, width, style)
}

// RenderUtilization renders a budget bar where spending close to or over the
// total is the warning state: red at 90% and above, yellow from 75%.
func RenderUtilization(utilized, total float64, width int) string {
	if total <= 0 {
		return Dim("no budget")
	}
	ratio := utilized / total
	style := StyleGreen
	if ratio >= 0.9 {
		style = StyleRed
	} else if ratio >= 0.75 {
		style = StyleYellow
	}
	bar := renderBar(clamp01(ratio), width, style)
	if ratio > 1 {
		bar += " " + StyleRed.Render("over")
	}
	return bar
}

func renderBar(pct float64, width int, style lipgloss.Style) string {
	if width < 2 {
		width = 2
	}
	filled := min(int(pct*float64(width)), width)
	bar := strings.Repeat(filledBlock, filled) + strings.Repeat(emptyBlock, width-filled)
	return fmt.Sprintf("[%s] %3.0f%%", style.Render(bar), pct*100)
}

func clamp01(v float64) float64 {
	return max(0, min(v, 1))
}

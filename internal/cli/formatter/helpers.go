package formatter

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// RenderBox wraps content in a rounded-border box with an optional title.
func RenderBox(title string, content string) string {
	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorDim).
		PaddingLeft(2).
		PaddingRight(2).
		PaddingTop(1).
		PaddingBottom(1)

	if title != "" {
		return boxStyle.Render(StyleHeader.Render(strings.ToUpper(title)) + "\n\n" + content)
	}
	return boxStyle.Render(content)
}

// FormatINR renders an amount in rupees with Indian digit grouping,
// e.g. 1234567.5 -> "₹12,34,567.50". Whole amounts drop the paise.
func FormatINR(amount float64) string {
	neg := amount < 0
	amount = math.Abs(amount)
	rupees := math.Floor(amount)
	paise := int(math.Round((amount - rupees) * 100))
	if paise == 100 {
		rupees++
		paise = 0
	}

	digits := strconv.FormatFloat(rupees, 'f', 0, 64)
	var grouped string
	if len(digits) <= 3 {
		grouped = digits
	} else {
		head, tail := digits[:len(digits)-3], digits[len(digits)-3:]
		var parts []string
		for len(head) > 2 {
			parts = append([]string{head[len(head)-2:]}, parts...)
			head = head[:len(head)-2]
		}
		if head != "" {
			parts = append([]string{head}, parts...)
		}
		grouped = strings.Join(parts, ",") + "," + tail
	}

	out := "₹" + grouped
	if paise > 0 {
		out += fmt.Sprintf(".%02d", paise)
	}
	if neg {
		out = "-" + out
	}
	return out
}

// FormatCount renders large counts compactly: 950, 12.5K, 3.2L, 1.1Cr.
func FormatCount(v float64) string {
	switch {
	case v >= 1e7:
		return trimZero(v/1e7) + "Cr"
	case v >= 1e5:
		return trimZero(v/1e5) + "L"
	case v >= 1e3:
		return trimZero(v/1e3) + "K"
	default:
		return trimZero(v)
	}
}

func trimZero(v float64) string {
	s := strconv.FormatFloat(v, 'f', 1, 64)
	return strings.TrimSuffix(s, ".0")
}

// HumanDate renders a date or a dim placeholder.
func HumanDate(t *time.Time) string {
	if t == nil || t.IsZero() {
		return Dim("--")
	}
	return t.Format("Jan 2, 2006")
}

// DateRange renders "start → end" with placeholders for open ends.
func DateRange(start, end *time.Time) string {
	if start == nil && end == nil {
		return Dim("--")
	}
	return HumanDate(start) + Dim(" → ") + HumanDate(end)
}

// TruncID returns the first 8 characters of an ID, dimmed.
func TruncID(id string) string {
	if len(id) > 8 {
		id = id[:8]
	}
	return StyleDim.Render(id)
}

// OrDash returns s, or a dim placeholder when s is blank.
func OrDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return Dim("--")
	}
	return s
}

var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// StripANSI removes terminal escape sequences.
func StripANSI(s string) string {
	return ansiPattern.ReplaceAllString(s, "")
}

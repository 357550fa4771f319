package formatter

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// TreeItem is one line of a tree display. Items are given in depth-first
// order; Level 0 items are roots.
type TreeItem struct {
	Title  string
	Level  int
	IsLast bool
	Muted  bool
	Detail string
}

const (
	treeBranch = "├─ "
	treeCorner = "└─ "
	treePipe   = "│  "
	treeBlank  = "   "
)

// RenderTree draws items with box-drawing connectors and right-aligns each
// item's Detail column.
func RenderTree(items []TreeItem) string {
	if len(items) == 0 {
		return ""
	}

	contents := make([]string, len(items))
	width := 0
	// open[d] is true while the ancestor at depth d still has siblings below.
	var open []bool
	for idx, item := range items {
		if len(open) < item.Level+1 {
			open = append(open, make([]bool, item.Level+1-len(open))...)
		}
		var prefix strings.Builder
		for d := 1; d < item.Level; d++ {
			if open[d] {
				prefix.WriteString(treePipe)
			} else {
				prefix.WriteString(treeBlank)
			}
		}
		if item.Level > 0 {
			if item.IsLast {
				prefix.WriteString(treeCorner)
			} else {
				prefix.WriteString(treeBranch)
			}
		}
		open[item.Level] = !item.IsLast

		title := item.Title
		if item.Muted {
			title = Dim(title)
		} else if item.Level == 0 {
			title = Bold(title)
		}
		contents[idx] = StyleDim.Render(prefix.String()) + title
		width = max(width, lipgloss.Width(contents[idx]))
	}

	var b strings.Builder
	for idx, item := range items {
		line := contents[idx]
		if item.Detail != "" {
			pad := width - lipgloss.Width(line)
			line += strings.Repeat(" ", pad) + "  " + StyleBlue.Render(item.Detail)
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}

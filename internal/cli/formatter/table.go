package formatter

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// RenderTable renders a simple aligned table with a header separator line.
// Headers are rendered with the Header style. Columns are padded to the
// maximum width found in each column across both headers and rows.
func RenderTable(headers []string, rows [][]string) string {
	return RenderTableSelected(headers, rows, -1)
}

// RenderTableSelected renders like RenderTable and marks row selected
// with a cursor. A negative selected marks nothing.
func RenderTableSelected(headers []string, rows [][]string, selected int) string {
	if len(headers) == 0 {
		return ""
	}

	cols := len(headers)

	// Visible width, so styled cells align.
	widths := make([]int, cols)
	for i, h := range headers {
		widths[i] = max(widths[i], lipgloss.Width(h))
	}
	for _, row := range rows {
		for i := 0; i < cols && i < len(row); i++ {
			widths[i] = max(widths[i], lipgloss.Width(row[i]))
		}
	}

	const colGap = 2
	gutter := ""
	if selected >= 0 {
		gutter = "  "
	}

	var b strings.Builder

	b.WriteString(gutter)
	for i, h := range headers {
		b.WriteString(StyleHeader.Render(h))
		if i < cols-1 {
			b.WriteString(strings.Repeat(" ", widths[i]-lipgloss.Width(h)+colGap))
		}
	}
	b.WriteString("\n")

	b.WriteString(gutter)
	for i, w := range widths {
		b.WriteString(StyleDim.Render(strings.Repeat("─", w)))
		if i < cols-1 {
			b.WriteString(strings.Repeat(" ", colGap))
		}
	}
	b.WriteString("\n")

	for r, row := range rows {
		if selected >= 0 {
			if r == selected {
				b.WriteString(StyleHeader.Render("▸ "))
			} else {
				b.WriteString("  ")
			}
		}
		for i := 0; i < cols; i++ {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			b.WriteString(cell)
			if i < cols-1 {
				b.WriteString(strings.Repeat(" ", max(widths[i]-lipgloss.Width(cell), 0)+colGap))
			}
		}
		b.WriteString("\n")
	}

	return b.String()
}

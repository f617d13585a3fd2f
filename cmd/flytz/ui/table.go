package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const ellipsis = "…"

// SimpleTable renders static rows with aligned columns. Cells wider than
// MaxCellWidth are cut with an ellipsis; zero means no limit.
type SimpleTable struct {
	Title        string
	Headers      []string
	Rows         [][]string
	MaxCellWidth int
}

// NewSimpleTable creates an empty table.
func NewSimpleTable(title string, headers []string) *SimpleTable {
	return &SimpleTable{Title: title, Headers: headers}
}

// AddRow appends a row. Cells past the header count are not rendered.
func (t *SimpleTable) AddRow(row ...string) {
	t.Rows = append(t.Rows, row)
}

// View renders the table. An empty table renders as "".
func (t *SimpleTable) View(styles Styles) string {
	if len(t.Rows) == 0 {
		return ""
	}

	rows := make([][]string, len(t.Rows))
	for i, row := range t.Rows {
		rows[i] = make([]string, len(t.Headers))
		for j := range t.Headers {
			if j < len(row) {
				rows[i][j] = truncateCell(row[j], t.MaxCellWidth)
			}
		}
	}
	widths := columnWidths(t.Headers, rows)

	var sb strings.Builder
	if t.Title != "" {
		sb.WriteString(styles.Title.Render(t.Title) + "\n")
	}
	sep := styles.Muted.Render("|")
	sb.WriteString(renderRow(styles.Bold.Padding(0, 1), t.Headers, widths, sep))

	rule := len(widths) - 1
	for _, w := range widths {
		rule += w
	}
	sb.WriteString(styles.Muted.Render(strings.Repeat("-", rule)) + "\n")

	cell := styles.Body.Padding(0, 1)
	for _, row := range rows {
		sb.WriteString(renderRow(cell, row, widths, sep))
	}
	return sb.String()
}

// columnWidths is the widest cell per column plus one space of padding on
// each side.
func columnWidths(headers []string, rows [][]string) []int {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i, c := range row {
			if w := lipgloss.Width(c); w > widths[i] {
				widths[i] = w
			}
		}
	}
	for i := range widths {
		widths[i] += 2
	}
	return widths
}

func renderRow(style lipgloss.Style, cells []string, widths []int, sep string) string {
	parts := make([]string, len(widths))
	for i := range widths {
		c := ""
		if i < len(cells) {
			c = cells[i]
		}
		parts[i] = style.Width(widths[i]).Render(c)
	}
	return strings.Join(parts, sep) + "\n"
}

// truncateCell cuts s to max display cells, ending in an ellipsis.
func truncateCell(s string, max int) string {
	if max <= 0 || lipgloss.Width(s) <= max {
		return s
	}
	r := []rune(s)
	for len(r) > 0 && lipgloss.Width(string(r))+1 > max {
		r = r[:len(r)-1]
	}
	return string(r) + ellipsis
}

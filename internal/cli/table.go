package cli

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

// table writes left-aligned columns separated by two spaces.
type table struct {
	headers []string
	rows    [][]string
}

func newTable(headers ...string) *table {
	return &table{headers: headers}
}

// addRow appends a row, padding or truncating it to the header count.
func (t *table) addRow(cells ...string) {
	row := make([]string, len(t.headers))
	copy(row, cells)
	t.rows = append(t.rows, row)
}

func (t *table) render(w io.Writer) error {
	if len(t.headers) == 0 {
		return nil
	}

	widths := make([]int, len(t.headers))
	for i, h := range t.headers {
		widths[i] = utf8.RuneCountInString(h)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			widths[i] = max(widths[i], utf8.RuneCountInString(cell))
		}
	}

	seps := make([]string, len(widths))
	for i, width := range widths {
		seps[i] = strings.Repeat("-", width)
	}

	var b strings.Builder
	writeRow(&b, t.headers, widths)
	writeRow(&b, seps, widths)
	for _, row := range t.rows {
		writeRow(&b, row, widths)
	}
	_, err := fmt.Fprint(w, b.String())
	return err
}

func writeRow(b *strings.Builder, cells []string, widths []int) {
	parts := make([]string, len(cells))
	for i, cell := range cells {
		parts[i] = padRight(cell, widths[i])
	}
	b.WriteString(strings.TrimRight(strings.Join(parts, "  "), " "))
	b.WriteString("\n")
}

// padRight pads s with spaces to width runes. Longer strings are returned unchanged.
func padRight(s string, width int) string {
	n := utf8.RuneCountInString(s)
	if n >= width {
		return s
	}
	return s + strings.Repeat(" ", width-n)
}

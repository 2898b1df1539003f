// Package formatter aligns Markdown tables by display width.
package formatter

import (
	"strings"

	"apdados/pkg/metadata"

	"github.com/mattn/go-runewidth"
)

// FormatMarkdown aligns every pipe table in content so columns line up in a
// monospace view, including wide runes and emoji. A metadata block, when
// present, is re-signed over the aligned body.
func FormatMarkdown(content string) string {
	meta, clean := metadata.Extract(content)

	lines := strings.Split(clean, "\n")

	var (
		formatted []string
		table     []string
	)

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "|") && strings.HasSuffix(trimmed, "|") {
			table = append(table, trimmed)
			continue
		}

		if len(table) > 0 {
			formatted = append(formatted, processTable(table)...)
			table = nil
		}

		formatted = append(formatted, line)
	}

	if len(table) > 0 {
		formatted = append(formatted, processTable(table)...)
	}

	out := strings.Join(formatted, "\n")
	if meta != nil {
		return metadata.Sign(out, *meta)
	}

	return out
}

// EscapeCell makes s safe inside a pipe table cell.
func EscapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)

	return strings.Join(strings.Fields(s), " ")
}

// PadRight pads s with spaces up to width display columns.
func PadRight(s string, width int) string {
	if pad := width - runewidth.StringWidth(s); pad > 0 {
		return s + strings.Repeat(" ", pad)
	}

	return s
}

// splitRow splits a table row on unescaped pipes.
func splitRow(row string) []string {
	row = strings.TrimSpace(row)
	row = strings.TrimPrefix(row, "|")

	if strings.HasSuffix(row, "|") && !strings.HasSuffix(row, `\|`) {
		row = row[:len(row)-1]
	}

	var (
		cells   []string
		current strings.Builder
		escaped bool
	)

	for _, r := range row {
		switch {
		case escaped:
			current.WriteRune(r)
			escaped = false
		case r == '\\':
			current.WriteRune(r)
			escaped = true
		case r == '|':
			cells = append(cells, strings.TrimSpace(current.String()))
			current.Reset()
		default:
			current.WriteRune(r)
		}
	}

	return append(cells, strings.TrimSpace(current.String()))
}

func isSeparator(cells []string) bool {
	for _, cell := range cells {
		if strings.Trim(cell, "-: ") != "" || !strings.Contains(cell, "-") {
			return false
		}
	}

	return len(cells) > 0
}

func processTable(rows []string) []string {
	if len(rows) < 2 {
		return rows
	}

	table := make([][]string, 0, len(rows))
	colCount := 0

	for _, row := range rows {
		cells := splitRow(row)
		if len(cells) > colCount {
			colCount = len(cells)
		}

		table = append(table, cells)
	}

	separatorRow := -1
	if isSeparator(table[1]) {
		separatorRow = 1
	}

	widths := make([]int, colCount)

	for i, row := range table {
		if i == separatorRow {
			continue
		}

		for j, cell := range row {
			if w := runewidth.StringWidth(cell); w > widths[j] {
				widths[j] = w
			}
		}
	}

	for j := range widths {
		if widths[j] < 3 {
			widths[j] = 3
		}
	}

	result := make([]string, 0, len(table))

	for i, row := range table {
		var sb strings.Builder

		sb.WriteString("|")

		for j := 0; j < colCount; j++ {
			sb.WriteString(" ")

			if i == separatorRow {
				sb.WriteString(strings.Repeat("-", widths[j]))
			} else {
				cell := ""
				if j < len(row) {
					cell = row[j]
				}

				sb.WriteString(PadRight(cell, widths[j]))
			}

			sb.WriteString(" |")
		}

		result = append(result, sb.String())
	}

	return result
}

package report

import (
	"fmt"
	"io"
	"strings"

	"apdados/internal/formatter"

	"github.com/mattn/go-runewidth"
)

// RenderConsole prints each table as a box drawn table.
func RenderConsole(w io.Writer, tables []Table) error {
	for _, t := range tables {
		if _, err := fmt.Fprintf(w, "\n%s:\n%s", t.Section.Title, boxTable(t)); err != nil {
			return err
		}
	}

	return nil
}

func boxTable(t Table) string {
	rows := [][2]string{{"Item", "Quantidade"}}
	for _, e := range t.Rows {
		rows = append(rows, [2]string{e.Key, FormatValue(t.Kind, e.Value)})
	}

	var widths [2]int

	for _, row := range rows {
		for i, cell := range row {
			if w := runewidth.StringWidth(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}

	rule := func(left, mid, right string) string {
		return left + strings.Repeat("─", widths[0]+2) + mid + strings.Repeat("─", widths[1]+2) + right + "\n"
	}

	var sb strings.Builder

	sb.WriteString(rule("┌", "┬", "┐"))

	for i, row := range rows {
		sb.WriteString("│ " + formatter.PadRight(row[0], widths[0]) + " │ " + formatter.PadRight(row[1], widths[1]) + " │\n")

		if i == 0 {
			sb.WriteString(rule("├", "┼", "┤"))
		}
	}

	sb.WriteString(rule("└", "┴", "┘"))

	return sb.String()
}

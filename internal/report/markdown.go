package report

import (
	"strings"

	"apdados/internal/formatter"
	"apdados/pkg/metadata"
)

// Default report heading.
const (
	DefaultTitle    = "📊 Relatório de Violações à LGPD"
	DefaultSubtitle = "Dados analisados automaticamente a partir do arquivo JSON."
)

// RenderMarkdown concatenates the tables into one aligned, signed Markdown document.
func RenderMarkdown(title, subtitle string, tables []Table, meta metadata.Metadata) string {
	var sb strings.Builder

	sb.WriteString("# " + title + "\n\n")

	if subtitle != "" {
		sb.WriteString("_" + subtitle + "_\n")
	}

	for _, t := range tables {
		sb.WriteString("\n## " + t.Section.Title + "\n\n")
		sb.WriteString("| Item | Quantidade |\n")
		sb.WriteString("| ---- | ---------- |\n")

		for _, e := range t.Rows {
			sb.WriteString("| " + formatter.EscapeCell(e.Key) + " | " + FormatValue(t.Kind, e.Value) + " |\n")
		}
	}

	return metadata.Sign(formatter.FormatMarkdown(sb.String()), meta)
}

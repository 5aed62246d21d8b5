package render

import (
	"strings"

	"github.com/mrsinham/echoreport/internal/report"
)

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`,
	"*", `\*`,
	"_", `\_`,
	"`", "\\`",
	"[", `\[`,
	"]", `\]`,
)

// escapeMarkdown escapes inline emphasis and link syntax in a value.
func escapeMarkdown(s string) string {
	s = markdownEscaper.Replace(s)
	// Block syntax only matters at the start of a line.
	if s != "" && strings.ContainsRune("#>-+", rune(s[0])) {
		s = `\` + s
	}
	return s
}

// Markdown renders rec as Markdown for on-screen preview.
func Markdown(rec report.Record) string {
	var b strings.Builder

	b.WriteString("# " + rec.Title + "\n\n")
	b.WriteString("*" + generatedLine(rec) + "*\n")

	for _, s := range rec.Sections {
		b.WriteString("\n## " + s.Title + "\n\n")
		for _, e := range s.Entries {
			writeMarkdownEntry(&b, e)
		}
	}

	return b.String()
}

func writeMarkdownEntry(b *strings.Builder, e report.Entry) {
	b.WriteString("- **" + e.Label + ":**")

	// Selected categorical findings become a nested list.
	if len(e.Items) > 0 {
		b.WriteString("\n")
		for _, item := range e.Items {
			b.WriteString("  - " + escapeMarkdown(item) + "\n")
		}
		return
	}

	lines := e.Lines()
	if len(lines) == 1 {
		b.WriteString(" " + escapeMarkdown(lines[0]) + "\n")
		return
	}
	b.WriteString("\n")
	for i, line := range lines {
		b.WriteString("  " + escapeMarkdown(line))
		if i < len(lines)-1 {
			// Hard line break inside the list item.
			b.WriteString("  ")
		}
		b.WriteString("\n")
	}
}

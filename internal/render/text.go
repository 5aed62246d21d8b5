package render

import (
	"strings"

	"github.com/mrsinham/echoreport/internal/report"
)

// continuationIndent prefixes the extra lines of a multiline value.
const continuationIndent = "  "

// PlainText renders rec as line-oriented UTF-8 text: an upper-case title,
// then one "Label: value" line per field under upper-case section headings.
// A multiline value starts on the line after its label, indented.
func PlainText(rec report.Record) string {
	return strings.ToUpper(rec.Title) + "\n" + plainBody(rec)
}

// plainBody is the plain text without its title line.
func plainBody(rec report.Record) string {
	var b strings.Builder

	b.WriteString(generatedLine(rec) + "\n")
	for _, s := range rec.Sections {
		b.WriteString("\n" + strings.ToUpper(s.Title) + "\n")
		for _, e := range s.Entries {
			lines := e.Lines()
			if len(lines) == 1 {
				b.WriteString(e.Label + ": " + lines[0] + "\n")
				continue
			}
			b.WriteString(e.Label + ":\n")
			for _, line := range lines {
				b.WriteString(continuationIndent + line + "\n")
			}
		}
	}

	return b.String()
}

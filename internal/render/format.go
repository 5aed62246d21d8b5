// Package render turns a report.Record into documents.
//
// Every renderer is a pure function of the record. Markdown and plain text
// are produced independently of each other; the PDF is typeset from the
// plain text so the two never disagree.
package render

import (
	"fmt"
	"strings"

	"github.com/mrsinham/echoreport/internal/report"
)

// Format is an output document format.
type Format int

const (
	// FormatText is the line-oriented plain text report.
	FormatText Format = iota
	// FormatMarkdown is the on-screen markup report.
	FormatMarkdown
	// FormatPDF is the paginated document.
	FormatPDF
	// FormatJSON is the record itself, for other tools.
	FormatJSON
	// FormatPNG is a raster preview of the first page.
	FormatPNG
	// FormatDICOM is the PDF wrapped as a DICOM Encapsulated PDF object.
	FormatDICOM
)

// String returns the string representation of a Format.
func (f Format) String() string {
	switch f {
	case FormatText:
		return "text"
	case FormatMarkdown:
		return "markdown"
	case FormatPDF:
		return "pdf"
	case FormatJSON:
		return "json"
	case FormatPNG:
		return "png"
	case FormatDICOM:
		return "dicom"
	default:
		return "unknown"
	}
}

// Extension returns the file extension, without the dot.
func (f Format) Extension() string {
	switch f {
	case FormatText:
		return "txt"
	case FormatMarkdown:
		return "md"
	case FormatPDF:
		return "pdf"
	case FormatJSON:
		return "json"
	case FormatPNG:
		return "png"
	case FormatDICOM:
		return "dcm"
	default:
		return "bin"
	}
}

// ContentType returns the MIME type.
func (f Format) ContentType() string {
	switch f {
	case FormatText:
		return "text/plain; charset=utf-8"
	case FormatMarkdown:
		return "text/markdown; charset=utf-8"
	case FormatPDF:
		return "application/pdf"
	case FormatJSON:
		return "application/json"
	case FormatPNG:
		return "image/png"
	case FormatDICOM:
		return "application/dicom"
	default:
		return "application/octet-stream"
	}
}

// ParseFormat parses a format name or extension (case-insensitive).
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")) {
	case "text", "txt":
		return FormatText, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "pdf":
		return FormatPDF, nil
	case "json":
		return FormatJSON, nil
	case "png", "preview":
		return FormatPNG, nil
	case "dicom", "dcm":
		return FormatDICOM, nil
	default:
		return FormatText, fmt.Errorf("unknown format %q (valid: text, markdown, pdf, json, png, dicom)", s)
	}
}

// Formats returns every format in menu order.
func Formats() []Format {
	return []Format{FormatText, FormatMarkdown, FormatPDF, FormatJSON, FormatPNG, FormatDICOM}
}

// RenderError reports a failure to produce a document. The record and the
// session it came from are unaffected.
type RenderError struct {
	Format Format
	Err    error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render %s: %v", e.Format, e.Err)
}

func (e *RenderError) Unwrap() error {
	return e.Err
}

// Render produces the document bytes of rec in format f.
// FormatDICOM is not handled here: it needs patient identifiers and UIDs and
// is built by the dicom package from the PDF bytes.
func Render(rec report.Record, f Format) ([]byte, error) {
	switch f {
	case FormatText:
		return []byte(PlainText(rec)), nil
	case FormatMarkdown:
		return []byte(Markdown(rec)), nil
	case FormatPDF:
		return PDF(rec)
	case FormatJSON:
		return JSON(rec)
	case FormatPNG:
		return PreviewPNG(rec)
	default:
		return nil, &RenderError{Format: f, Err: fmt.Errorf("format not supported by renderer")}
	}
}

const timestampLayout = "02-01-2006 15:04"

func generatedLine(rec report.Record) string {
	return "Generado: " + rec.GeneratedAt.Format(timestampLayout)
}

package render

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/mrsinham/echoreport/internal/report"
)

// Page layout in millimetres.
const (
	pdfMargin       = 20.0
	pdfLineHeight   = 5.0
	pdfBlankSpacing = 3.0
)

// PDF typesets the plain text of rec as an A4 document.
func PDF(rec report.Record) ([]byte, error) {
	return PDFFromText(rec.Title, plainBody(rec), rec.GeneratedAt)
}

// PDFFromText converts a plain-text document into a paginated PDF with a
// fixed title heading. Each non-blank line becomes a paragraph, blank lines
// become vertical spacing, and upper-case lines without a colon are set as
// section headings. created is stamped as the document creation date.
//
// Text is set in embedded Unicode fonts. A character those fonts cannot draw
// fails the render instead of being replaced.
func PDFFromText(title, text string, created time.Time) (out []byte, err error) {
	// fpdf reports some failures by panicking.
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, &RenderError{Format: FormatPDF, Err: fmt.Errorf("pdf engine: %v", r)}
		}
	}()

	if err := checkGlyphs(title + "\n" + text); err != nil {
		return nil, &RenderError{Format: FormatPDF, Err: err}
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	for _, fs := range fontStyles {
		pdf.AddUTF8FontFromBytes(fontFamily, fs.style, fs.ttf)
	}
	if err := pdf.Error(); err != nil {
		return nil, &RenderError{Format: FormatPDF, Err: fmt.Errorf("load fonts: %w", err)}
	}

	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(true, pdfMargin)
	pdf.SetTitle(title, true)
	pdf.SetCreator("echoreport", true)
	pdf.SetCatalogSort(true)
	if !created.IsZero() {
		pdf.SetCreationDate(created)
	}
	pdf.AliasNbPages("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont(fontFamily, "I", 8)
		pdf.CellFormat(0, 10, fmt.Sprintf("Página %d/{nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})

	pdf.AddPage()
	pdf.SetFont(fontFamily, "B", 14)
	pdf.MultiCell(0, 7, title, "", "C", false)
	pdf.Ln(4)

	for _, line := range strings.Split(strings.TrimRight(text, "\n"), "\n") {
		switch {
		case strings.TrimSpace(line) == "":
			pdf.Ln(pdfBlankSpacing)
		case isHeading(line):
			pdf.SetFont(fontFamily, "B", 11)
			pdf.MultiCell(0, pdfLineHeight+1, line, "", "L", false)
		case strings.HasPrefix(line, continuationIndent):
			pdf.SetFont(fontFamily, "", 10)
			pdf.SetX(pdfMargin + 6)
			pdf.MultiCell(0, pdfLineHeight, strings.TrimSpace(line), "", "L", false)
		default:
			pdf.SetFont(fontFamily, "", 10)
			pdf.MultiCell(0, pdfLineHeight, line, "", "L", false)
		}
	}

	if err := pdf.Error(); err != nil {
		return nil, &RenderError{Format: FormatPDF, Err: err}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, &RenderError{Format: FormatPDF, Err: err}
	}
	return buf.Bytes(), nil
}

// isHeading reports whether a plain-text line is a section heading.
func isHeading(line string) bool {
	if strings.HasPrefix(line, " ") || strings.Contains(line, ":") {
		return false
	}
	return strings.ToUpper(line) == line && strings.ToLower(line) != line
}

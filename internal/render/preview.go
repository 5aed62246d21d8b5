package render

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"github.com/mrsinham/echoreport/internal/report"
)

// Preview page geometry in pixels, roughly A4 at 72 dpi.
const (
	PreviewWidth  = 595
	PreviewHeight = 842
	previewMargin = 36
)

// Preview draws the first page of the plain-text report on a grayscale
// image, in the same font as the PDF. Lines are wrapped to the page width;
// text that does not fit on one page is cut and a marker line is drawn at
// the bottom.
func Preview(rec report.Record) (*image.Gray, error) {
	text := PlainText(rec)
	if err := checkGlyphs(text); err != nil {
		return nil, &RenderError{Format: FormatPNG, Err: err}
	}
	face, err := newPreviewFace()
	if err != nil {
		return nil, &RenderError{Format: FormatPNG, Err: err}
	}
	defer face.Close()

	img := image.NewGray(image.Rect(0, 0, PreviewWidth, PreviewHeight))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	metrics := face.Metrics()
	lineHeight := metrics.Height.Ceil() + 2
	maxWidth := PreviewWidth - 2*previewMargin

	drawer := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.Black),
		Face: face,
	}

	lines := wrapLines(face, text, maxWidth)
	maxLines := (PreviewHeight - 2*previewMargin) / lineHeight

	y := previewMargin + metrics.Ascent.Ceil()
	for i, line := range lines {
		if i == maxLines-1 && len(lines) > maxLines {
			line = fmt.Sprintf("[... %d líneas más]", len(lines)-i)
		}
		drawer.Dot = fixed.P(previewMargin, y)
		drawer.DrawString(line)
		y += lineHeight
		if i == maxLines-1 {
			break
		}
	}

	return img, nil
}

// PreviewPNG encodes Preview(rec) as PNG.
func PreviewPNG(rec report.Record) ([]byte, error) {
	img, err := Preview(rec)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, &RenderError{Format: FormatPNG, Err: err}
	}
	return buf.Bytes(), nil
}

// wrapLines splits text into lines no wider than maxWidth pixels, breaking
// at spaces. Wrapped pieces keep the indentation of their line.
func wrapLines(face font.Face, text string, maxWidth int) []string {
	var out []string
	for _, line := range strings.Split(strings.TrimRight(text, "\n"), "\n") {
		if font.MeasureString(face, line).Ceil() <= maxWidth {
			out = append(out, line)
			continue
		}
		indent := line[:len(line)-len(strings.TrimLeft(line, " "))]
		current := indent
		for _, word := range strings.Fields(line) {
			candidate := current + word
			if current != indent {
				candidate = current + " " + word
			}
			if font.MeasureString(face, candidate).Ceil() > maxWidth && current != indent {
				out = append(out, current)
				current = indent + word
				continue
			}
			current = candidate
		}
		out = append(out, current)
	}
	return out
}

package render

import (
	"fmt"
	"strings"
	"sync"
	"unicode"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
)

// The PDF and the PNG preview are both set in the Go fonts, so they share
// one glyph coverage.
const (
	fontFamily      = "Go"
	previewFontSize = 9
)

var fontStyles = []struct {
	style string
	ttf   []byte
}{
	{"", goregular.TTF},
	{"B", gobold.TTF},
	{"I", goitalic.TTF},
}

// regularFont is safe for concurrent use as long as each caller brings its
// own sfnt.Buffer.
var regularFont = sync.OnceValues(func() (*opentype.Font, error) {
	return opentype.Parse(goregular.TTF)
})

// missingGlyphs returns, once each and in order of appearance, the runes of
// text the Go fonts cannot draw. Control characters are ignored.
func missingGlyphs(text string) ([]rune, error) {
	f, err := regularFont()
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}

	var (
		buf     sfnt.Buffer
		missing []rune
		seen    = make(map[rune]bool)
	)
	for _, r := range text {
		if unicode.IsControl(r) || seen[r] {
			continue
		}
		seen[r] = true
		idx, err := f.GlyphIndex(&buf, r)
		if err != nil {
			return nil, fmt.Errorf("glyph lookup %U: %w", r, err)
		}
		if idx == 0 {
			missing = append(missing, r)
		}
	}
	return missing, nil
}

// checkGlyphs fails when text holds a character that would not be drawn.
func checkGlyphs(text string) error {
	missing, err := missingGlyphs(text)
	if err != nil {
		return err
	}
	if len(missing) == 0 {
		return nil
	}
	chars := make([]string, len(missing))
	for i, r := range missing {
		chars[i] = fmt.Sprintf("%q (%U)", r, r)
	}
	return fmt.Errorf("no glyph for %s", strings.Join(chars, ", "))
}

// newPreviewFace returns a face of the regular Go font. Faces keep glyph
// state, so each render opens its own and closes it.
func newPreviewFace() (font.Face, error) {
	f, err := regularFont()
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	return opentype.NewFace(f, &opentype.FaceOptions{
		Size:    previewFontSize,
		DPI:     72,
		Hinting: font.HintingFull,
	})
}

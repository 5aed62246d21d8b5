package export

import (
	"strings"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// DefaultSlug names artifacts of a report without a patient name.
const DefaultSlug = "paciente"

const maxSlugLength = 40

// Slug turns a patient name into a file-safe token: accents stripped, lower
// case ASCII letters and digits, words joined by "-".
func Slug(name string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, name)
	if err != nil {
		stripped = name
	}

	var words []string
	var current strings.Builder
	flush := func() {
		if current.Len() > 0 {
			words = append(words, current.String())
			current.Reset()
		}
	}
	for _, r := range strings.ToLower(stripped) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			current.WriteRune(r)
			continue
		}
		flush()
	}
	flush()

	slug := strings.Join(words, "-")
	if len(slug) > maxSlugLength {
		slug = strings.TrimRight(slug[:maxSlugLength], "-")
	}
	if slug == "" {
		return DefaultSlug
	}
	return slug
}

// ShortID returns 8 random hex characters.
func ShortID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}

// ArtifactName returns "<slug>_<id>.<ext>".
func ArtifactName(patientName, id, ext string) string {
	return Slug(patientName) + "_" + id + "." + strings.TrimPrefix(ext, ".")
}

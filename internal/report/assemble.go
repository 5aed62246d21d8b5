package report

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/mrsinham/echoreport/internal/fields"
)

// Source is what the assembler reads from. *session.Session satisfies it.
type Source interface {
	Get(section fields.Section, key string, def any) any
	Submitted(section fields.Section) bool
	Revision() uint64
}

// Assemble builds a Record from the current values of src. It never fails:
// every unset field is rendered with its fallback label. The timestamp is a
// parameter so the result depends only on its inputs.
func Assemble(src Source, reg *fields.Registry, at time.Time) Record {
	rec := Record{
		Title:       reg.Title(),
		GeneratedAt: at,
		Revision:    src.Revision(),
	}

	for _, sec := range []fields.Section{fields.SectionPatient, fields.SectionStudy} {
		specs := reg.Fields(sec)
		s := Section{ID: string(sec), Title: sec.Title(), Entries: make([]Entry, 0, len(specs))}
		for _, spec := range specs {
			s.Entries = append(s.Entries, entryFor(spec, src.Get(sec, spec.Key, nil)))
		}
		rec.Sections = append(rec.Sections, s)
	}
	deriveBSA(&rec, src)

	for i, cat := range reg.Categories() {
		s := Section{
			ID:      fmt.Sprintf("%s-%d", fields.SectionFindings, i+1),
			Title:   cat.Name,
			Entries: make([]Entry, 0, len(cat.Keys)),
		}
		for _, key := range cat.Keys {
			spec := reg.Describe(fields.SectionFindings, key)
			s.Entries = append(s.Entries, entryFor(spec, src.Get(fields.SectionFindings, key, nil)))
		}
		rec.Sections = append(rec.Sections, s)
	}

	return rec
}

func entryFor(spec fields.FieldSpec, value any) Entry {
	text, items, fallback := spec.Format(value)
	return Entry{
		Section:   spec.Section,
		Key:       spec.Key,
		Label:     spec.Label,
		Value:     text,
		Items:     items,
		Fallback:  fallback,
		Multiline: spec.Multiline && !fallback,
	}
}

// deriveBSA fills an unset body surface area from weight and height
// (Mosteller formula).
func deriveBSA(rec *Record, src Source) {
	if src.Get(fields.SectionPatient, "bsa", nil) != nil {
		return
	}
	weight, ok := asFloat(src.Get(fields.SectionPatient, "weight", nil))
	if !ok {
		return
	}
	height, ok := asFloat(src.Get(fields.SectionPatient, "height", nil))
	if !ok {
		return
	}

	bsa := math.Round(math.Sqrt(weight*height/3600)*100) / 100
	for i := range rec.Sections[0].Entries {
		e := &rec.Sections[0].Entries[i]
		if e.Key == "bsa" {
			e.Value = strconv.FormatFloat(bsa, 'f', 2, 64) + " m² (calculada)"
			e.Fallback = false
		}
	}
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

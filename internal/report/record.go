// Package report assembles session values into an immutable report record.
package report

import (
	"slices"
	"strings"
	"time"

	"github.com/mrsinham/echoreport/internal/fields"
)

// Record is a snapshot of a session at generation time. Renderers only ever
// read a Record; later session edits never change one.
type Record struct {
	Title       string    `json:"title"`
	GeneratedAt time.Time `json:"generated_at"`
	Revision    uint64    `json:"revision"`
	Sections    []Section `json:"sections"`
}

// Section is a titled group of entries.
type Section struct {
	ID      string  `json:"id"`
	Title   string  `json:"title"`
	Entries []Entry `json:"entries"`
}

// Entry is one formatted field.
type Entry struct {
	Section   fields.Section `json:"section"`
	Key       string         `json:"key"`
	Label     string         `json:"label"`
	Value     string         `json:"value"`
	Items     []string       `json:"items,omitempty"`
	Fallback  bool           `json:"fallback,omitempty"`
	Multiline bool           `json:"multiline,omitempty"`
}

// Lines splits a multiline value into its lines.
func (e Entry) Lines() []string {
	if !e.Multiline {
		return []string{e.Value}
	}
	return strings.Split(e.Value, "\n")
}

// Lookup finds an entry by field.
func (r Record) Lookup(section fields.Section, key string) (Entry, bool) {
	for _, s := range r.Sections {
		for _, e := range s.Entries {
			if e.Section == section && e.Key == key {
				return e, true
			}
		}
	}
	return Entry{}, false
}

// PatientName returns the patient's name, or "" when it was not entered.
func (r Record) PatientName() string {
	e, ok := r.Lookup(fields.SectionPatient, "name")
	if !ok || e.Fallback {
		return ""
	}
	return e.Value
}

// Clone returns a deep copy.
func (r Record) Clone() Record {
	out := r
	out.Sections = make([]Section, len(r.Sections))
	for i, s := range r.Sections {
		s.Entries = slices.Clone(s.Entries)
		for j := range s.Entries {
			s.Entries[j].Items = slices.Clone(s.Entries[j].Items)
		}
		out.Sections[i] = s
	}
	return out
}

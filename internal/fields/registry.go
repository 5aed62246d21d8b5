// Package fields declares the report's form sections and their fields.
//
// Every value the session store accepts and every line a renderer prints is
// described by a FieldSpec: its Spanish label, its kind, the constraints a
// submitted value must satisfy, and the fallback text printed when the field
// was left blank.
package fields

import (
	"fmt"
	"strings"
)

// Section identifies a form section.
type Section string

const (
	// SectionPatient holds patient demographics.
	SectionPatient Section = "patient"
	// SectionStudy holds study logistics (date, equipment, operator).
	SectionStudy Section = "study"
	// SectionFindings holds the echocardiographic findings.
	SectionFindings Section = "findings"
)

// Sections returns the sections in report order.
func Sections() []Section {
	return []Section{SectionPatient, SectionStudy, SectionFindings}
}

// ParseSection parses a section name (case-insensitive).
func ParseSection(s string) (Section, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "patient", "paciente":
		return SectionPatient, nil
	case "study", "estudio":
		return SectionStudy, nil
	case "findings", "hallazgos":
		return SectionFindings, nil
	default:
		return "", fmt.Errorf("unknown section %q (valid: patient, study, findings)", s)
	}
}

// Title returns the Spanish heading of the section.
func (s Section) Title() string {
	switch s {
	case SectionPatient:
		return "Datos del paciente"
	case SectionStudy:
		return "Datos del estudio"
	case SectionFindings:
		return "Hallazgos ecocardiográficos"
	default:
		return string(s)
	}
}

// Kind is the value kind of a field.
type Kind int

const (
	// KindText is free text.
	KindText Kind = iota
	// KindNumber is a bounded numeric measurement.
	KindNumber
	// KindEnum is a single choice from a closed set.
	KindEnum
	// KindMulti is an ordered set of choices from a closed vocabulary.
	KindMulti
	// KindDate is a calendar date.
	KindDate
	// KindTime is a time of day.
	KindTime
)

// String returns the string representation of a Kind.
func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindNumber:
		return "number"
	case KindEnum:
		return "enum"
	case KindMulti:
		return "multi"
	case KindDate:
		return "date"
	case KindTime:
		return "time"
	default:
		return "unknown"
	}
}

// Choice is one allowed value of an enum or multi-select field.
// Value is what the session stores, Label is what reports print.
type Choice struct {
	Value string
	Label string
}

// Fallback labels printed in place of unset values.
const (
	FallbackNotSpecified = "No especificado"
	FallbackNotEvaluated = "No evaluado"
	FallbackNone         = "Ninguno"
)

// FieldSpec describes one declared field.
type FieldSpec struct {
	Section  Section
	Key      string
	Label    string
	Category string // findings category; empty for patient and study fields
	Kind     Kind

	Multiline bool

	// Numeric constraints.
	Min, Max float64
	Integer  bool
	Unit     string

	Choices []Choice

	Fallback string
	Help     string
}

// ID returns "section.key".
func (f FieldSpec) ID() string {
	return string(f.Section) + "." + f.Key
}

// ChoiceLabel returns the display label of an allowed value.
func (f FieldSpec) ChoiceLabel(value string) (string, bool) {
	for _, c := range f.Choices {
		if c.Value == value {
			return c.Label, true
		}
	}
	return "", false
}

// Allowed describes the allowed range or set, for error messages and help.
func (f FieldSpec) Allowed() string {
	switch f.Kind {
	case KindNumber:
		s := fmt.Sprintf("%s–%s", formatNumber(f.Min, f.Integer), formatNumber(f.Max, f.Integer))
		if f.Unit != "" {
			s += " " + f.Unit
		}
		if f.Integer {
			s += ", integer"
		}
		return s
	case KindEnum, KindMulti:
		values := make([]string, len(f.Choices))
		for i, c := range f.Choices {
			values[i] = c.Value
		}
		return strings.Join(values, " | ")
	case KindDate:
		return "YYYY-MM-DD"
	case KindTime:
		return "HH:MM"
	default:
		return "any text"
	}
}

// Category describes one group of findings.
type Category struct {
	Name string
	Keys []string
}

// Registry is the ordered set of declared fields.
type Registry struct {
	title      string
	order      map[Section][]string
	specs      map[Section]map[string]FieldSpec
	categories []Category
}

// NewRegistry builds a registry from field specs, keeping declaration order.
// Unset fallbacks are filled per kind. Duplicate keys are a programming error.
func NewRegistry(title string, specs ...FieldSpec) *Registry {
	r := &Registry{
		title: title,
		order: make(map[Section][]string),
		specs: make(map[Section]map[string]FieldSpec),
	}
	for _, s := range specs {
		if s.Fallback == "" {
			s.Fallback = defaultFallback(s)
		}
		if r.specs[s.Section] == nil {
			r.specs[s.Section] = make(map[string]FieldSpec)
		}
		if _, dup := r.specs[s.Section][s.Key]; dup {
			panic(fmt.Sprintf("fields: duplicate field %s", s.ID()))
		}
		r.specs[s.Section][s.Key] = s
		r.order[s.Section] = append(r.order[s.Section], s.Key)

		if s.Category == "" {
			continue
		}
		if n := len(r.categories); n > 0 && r.categories[n-1].Name == s.Category {
			r.categories[n-1].Keys = append(r.categories[n-1].Keys, s.Key)
		} else {
			r.categories = append(r.categories, Category{Name: s.Category, Keys: []string{s.Key}})
		}
	}
	return r
}

func defaultFallback(s FieldSpec) string {
	switch {
	case s.Kind == KindMulti:
		return FallbackNone
	case s.Section == SectionFindings && s.Kind != KindText:
		return FallbackNotEvaluated
	default:
		return FallbackNotSpecified
	}
}

// Title returns the report title.
func (r *Registry) Title() string {
	return r.title
}

// Describe returns the spec of a declared field.
// It panics on an undeclared field: callers only pass keys they declared.
func (r *Registry) Describe(section Section, key string) FieldSpec {
	spec, ok := r.Lookup(section, key)
	if !ok {
		panic(fmt.Sprintf("fields: undeclared field %s.%s", section, key))
	}
	return spec
}

// Lookup returns the spec of a field and whether it is declared.
func (r *Registry) Lookup(section Section, key string) (FieldSpec, bool) {
	spec, ok := r.specs[section][key]
	return spec, ok
}

// Fields returns the specs of a section in declaration order.
func (r *Registry) Fields(section Section) []FieldSpec {
	keys := r.order[section]
	out := make([]FieldSpec, len(keys))
	for i, k := range keys {
		out[i] = r.specs[section][k]
	}
	return out
}

// Categories returns the findings categories in declaration order.
func (r *Registry) Categories() []Category {
	out := make([]Category, len(r.categories))
	for i, c := range r.categories {
		out[i] = Category{Name: c.Name, Keys: append([]string(nil), c.Keys...)}
	}
	return out
}

// UnknownFieldError reports a key that is not declared in a section.
type UnknownFieldError struct {
	Section    Section
	Key        string
	Suggestion string
}

func (e *UnknownFieldError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("unknown field %q in section %s, did you mean %q?", e.Key, e.Section, e.Suggestion)
	}
	return fmt.Sprintf("unknown field %q in section %s", e.Key, e.Section)
}

// Resolve returns the spec of a field given user input, such as a key from a
// session file. Matching is case-insensitive; unknown keys get a suggestion.
func (r *Registry) Resolve(section Section, key string) (FieldSpec, error) {
	normalized := strings.ToLower(strings.TrimSpace(key))
	if spec, ok := r.specs[section][normalized]; ok {
		return spec, nil
	}
	return FieldSpec{}, &UnknownFieldError{
		Section:    section,
		Key:        key,
		Suggestion: r.closestKey(section, normalized),
	}
}

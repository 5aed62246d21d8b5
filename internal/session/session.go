// Package session holds the values entered during one reporting session.
//
// A Session is owned by a single user and used sequentially; it does no
// locking. Every write goes through the field registry, so whatever the
// session holds is already valid and in canonical form.
package session

import (
	"errors"
	"fmt"
	"slices"

	"github.com/mrsinham/echoreport/internal/fields"
)

// ErrUnknownField is returned when writing a key the registry does not declare.
var ErrUnknownField = errors.New("unknown field")

// Session stores per-section values.
type Session struct {
	reg       *fields.Registry
	values    map[fields.Section]map[string]any
	submitted map[fields.Section]bool
	revision  uint64
}

// New creates an empty session backed by reg.
func New(reg *fields.Registry) *Session {
	s := &Session{reg: reg}
	s.reset()
	return s
}

func (s *Session) reset() {
	s.values = make(map[fields.Section]map[string]any)
	s.submitted = make(map[fields.Section]bool)
	for _, sec := range fields.Sections() {
		s.values[sec] = make(map[string]any)
	}
}

// Registry returns the registry validating this session.
func (s *Session) Registry() *fields.Registry {
	return s.reg
}

// Get returns the stored value or def when unset. It never fails.
func (s *Session) Get(section fields.Section, key string, def any) any {
	v, ok := s.values[section][key]
	if !ok {
		return def
	}
	return cloneValue(v)
}

// Set validates and stores one value. A blank value unsets the field.
// On error the previous value is left unchanged.
func (s *Session) Set(section fields.Section, key string, value any) error {
	spec, err := s.resolve(section, key)
	if err != nil {
		return err
	}
	normalized, err := spec.Normalize(value)
	if err != nil {
		return err
	}
	s.apply(section, spec.Key, normalized)
	s.revision++
	return nil
}

// Merge validates a partial update of a section and applies it atomically:
// if any key fails, nothing is applied and all failures are returned joined.
// Keys absent from partial keep their values. The section is marked submitted.
func (s *Session) Merge(section fields.Section, partial map[string]any) error {
	if _, ok := s.values[section]; !ok {
		return fmt.Errorf("merge: unknown section %q", section)
	}

	keys := make([]string, 0, len(partial))
	for k := range partial {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	staged := make(map[string]any, len(partial))
	var errs []error
	for _, k := range keys {
		spec, err := s.resolve(section, k)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		v, err := spec.Normalize(partial[k])
		if err != nil {
			errs = append(errs, err)
			continue
		}
		staged[spec.Key] = v
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	for k, v := range staged {
		s.apply(section, k, v)
	}
	s.submitted[section] = true
	s.revision++
	return nil
}

// Clear unsets every value of a section and its submitted mark.
func (s *Session) Clear(section fields.Section) {
	s.values[section] = make(map[string]any)
	delete(s.submitted, section)
	s.revision++
}

// Reset clears every section.
func (s *Session) Reset() {
	s.reset()
	s.revision++
}

// Submitted reports whether the section's form was submitted at least once.
func (s *Session) Submitted(section fields.Section) bool {
	return s.submitted[section]
}

// Values returns a copy of the set values of a section.
func (s *Session) Values(section fields.Section) map[string]any {
	out := make(map[string]any, len(s.values[section]))
	for k, v := range s.values[section] {
		out[k] = cloneValue(v)
	}
	return out
}

// Revision increments on every successful change.
func (s *Session) Revision() uint64 {
	return s.revision
}

func (s *Session) resolve(section fields.Section, key string) (fields.FieldSpec, error) {
	spec, err := s.reg.Resolve(section, key)
	if err != nil {
		return fields.FieldSpec{}, fmt.Errorf("%w: %w", ErrUnknownField, err)
	}
	return spec, nil
}

func (s *Session) apply(section fields.Section, key string, value any) {
	if value == nil {
		delete(s.values[section], key)
		return
	}
	s.values[section][key] = value
}

// cloneValue copies slices so callers cannot alias stored state.
func cloneValue(v any) any {
	if items, ok := v.([]string); ok {
		return slices.Clone(items)
	}
	return v
}

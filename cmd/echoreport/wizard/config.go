package wizard

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/mrsinham/echoreport/internal/fields"
)

// SessionFile is the YAML form of a session: one map of field values per
// section, keyed by field key. Submitted lists the sections whose form was
// submitted, so a section submitted with every field blank survives a
// save and reload. A section with values counts as submitted either way.
type SessionFile struct {
	Submitted []fields.Section `yaml:"submitted,omitempty"`
	Patient   map[string]any   `yaml:"patient,omitempty"`
	Study     map[string]any   `yaml:"study,omitempty"`
	Findings  map[string]any   `yaml:"findings,omitempty"`
}

// Section returns the values of a section, nil when absent.
func (f *SessionFile) Section(sec fields.Section) map[string]any {
	switch sec {
	case fields.SectionPatient:
		return f.Patient
	case fields.SectionStudy:
		return f.Study
	case fields.SectionFindings:
		return f.Findings
	}
	return nil
}

// SetSection replaces the values of a section.
func (f *SessionFile) SetSection(sec fields.Section, values map[string]any) {
	switch sec {
	case fields.SectionPatient:
		f.Patient = values
	case fields.SectionStudy:
		f.Study = values
	case fields.SectionFindings:
		f.Findings = values
	}
}

// LoadFromYAML reads a session file.
func LoadFromYAML(path string) (*SessionFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading session file: %w", err)
	}

	var f SessionFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing session file: %w", err)
	}
	return &f, nil
}

// SaveToYAML writes a session file.
func SaveToYAML(f *SessionFile, path string) error {
	data, err := yaml.Marshal(f)
	if err != nil {
		return fmt.Errorf("encoding session file: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing session file: %w", err)
	}
	return nil
}

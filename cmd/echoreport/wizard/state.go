// Package wizard provides an interactive TUI for filling in and exporting an
// intraoperative TEE report.
package wizard

import (
	"github.com/mrsinham/echoreport/internal/fields"
)

// Phase represents the current phase/screen of the wizard.
type Phase int

const (
	PhaseSection Phase = iota
	PhaseSummary
	PhaseSaveSession
)

// Page is one form of the wizard: a whole section, or one findings category.
type Page struct {
	Section  fields.Section
	Category string
	Title    string
	Specs    []fields.FieldSpec
}

// Pages lists the wizard forms in report order: patient, study, then one
// page per findings category.
func Pages(reg *fields.Registry) []Page {
	pages := []Page{
		{Section: fields.SectionPatient, Title: fields.SectionPatient.Title(), Specs: reg.Fields(fields.SectionPatient)},
		{Section: fields.SectionStudy, Title: fields.SectionStudy.Title(), Specs: reg.Fields(fields.SectionStudy)},
	}
	for _, cat := range reg.Categories() {
		p := Page{Section: fields.SectionFindings, Category: cat.Name, Title: cat.Name}
		for _, key := range cat.Keys {
			p.Specs = append(p.Specs, reg.Describe(fields.SectionFindings, key))
		}
		pages = append(pages, p)
	}
	return pages
}

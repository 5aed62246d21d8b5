package help

import (
	"strings"

	"github.com/mrsinham/echoreport/internal/fields"
)

// HelpText contains information about a field
type HelpText struct {
	Title       string
	Description string
	Details     string
}

// kindDescriptions is shown when a field declares no help of its own.
var kindDescriptions = map[fields.Kind]string{
	fields.KindText:   "Texto libre.",
	fields.KindNumber: "Valor numérico.",
	fields.KindEnum:   "Seleccione una opción.",
	fields.KindMulti:  "Seleccione todas las opciones que correspondan (espacio para marcar).",
	fields.KindDate:   "Fecha del calendario.",
	fields.KindTime:   "Hora del día.",
}

// For builds the help text of a field.
func For(spec fields.FieldSpec) HelpText {
	desc := spec.Help
	if desc == "" {
		desc = kindDescriptions[spec.Kind]
	}

	var details []string
	if spec.Kind != fields.KindText {
		details = append(details, "Valores: "+spec.Allowed())
	}
	if spec.Multiline {
		details = append(details, "Admite varias líneas.")
	}
	details = append(details, "Si se deja vacío: "+spec.Fallback)

	return HelpText{
		Title:       strings.ToUpper(spec.Label),
		Description: desc,
		Details:     strings.Join(details, "\n"),
	}
}

// Texts returns the help of every field of reg, keyed by FieldSpec.ID.
func Texts(reg *fields.Registry) map[string]HelpText {
	out := make(map[string]HelpText)
	for _, sec := range fields.Sections() {
		for _, spec := range reg.Fields(sec) {
			out[spec.ID()] = For(spec)
		}
	}
	return out
}

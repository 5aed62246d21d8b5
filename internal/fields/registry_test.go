package fields

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestEcho_SectionsDeclared(t *testing.T) {
	reg := Echo()
	for _, s := range Sections() {
		if len(reg.Fields(s)) == 0 {
			t.Errorf("Expected fields in section %s", s)
		}
	}
	if reg.Title() != ReportTitle {
		t.Errorf("Expected title %q, got %q", ReportTitle, reg.Title())
	}
}

func TestEcho_CategoriesOrder(t *testing.T) {
	want := []string{
		CategoryVentricular,
		CategoryValves,
		CategoryStructures,
		CategoryAdditional,
		CategoryConclusions,
	}
	cats := Echo().Categories()
	if len(cats) != len(want) {
		t.Fatalf("Expected %d categories, got %d", len(want), len(cats))
	}
	for i, c := range cats {
		if c.Name != want[i] {
			t.Errorf("Category %d: expected %q, got %q", i, want[i], c.Name)
		}
	}
}

func TestEcho_CategoriesCoverAllFindings(t *testing.T) {
	reg := Echo()
	inCategory := make(map[string]bool)
	for _, c := range reg.Categories() {
		for _, k := range c.Keys {
			inCategory[k] = true
		}
	}
	for _, f := range reg.Fields(SectionFindings) {
		if !inCategory[f.Key] {
			t.Errorf("Finding %s belongs to no category", f.Key)
		}
	}
}

func TestEcho_ValveKeys(t *testing.T) {
	reg := Echo()
	for _, key := range []string{
		"mitral_insuficiencia", "mitral_estenosis",
		"aortica_insuficiencia", "aortica_estenosis",
		"tricuspide_insuficiencia", "tricuspide_estenosis",
		"pulmonar_insuficiencia", "pulmonar_estenosis",
	} {
		f, ok := reg.Lookup(SectionFindings, key)
		if !ok {
			t.Errorf("Expected %s to be declared", key)
			continue
		}
		if f.Kind != KindEnum {
			t.Errorf("%s: expected enum, got %s", key, f.Kind)
		}
	}
}

func TestEcho_Fallbacks(t *testing.T) {
	reg := Echo()
	tests := []struct {
		section Section
		key     string
		want    string
	}{
		{SectionPatient, "name", FallbackNotSpecified},
		{SectionPatient, "age", FallbackNotSpecified},
		{SectionStudy, "equipment", FallbackNotSpecified},
		{SectionFindings, "lvef", FallbackNotEvaluated},
		{SectionFindings, "gradiente_av", FallbackNotEvaluated},
		{SectionFindings, "cavidades", FallbackNotSpecified},
		{SectionFindings, "hallazgos", FallbackNone},
	}
	for _, tt := range tests {
		got := reg.Describe(tt.section, tt.key).Fallback
		if got != tt.want {
			t.Errorf("%s.%s: expected fallback %q, got %q", tt.section, tt.key, tt.want, got)
		}
	}
}

func TestDescribe_PanicsOnUndeclared(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Expected panic for undeclared field")
		}
	}()
	Echo().Describe(SectionPatient, "shoe_size")
}

func TestNewRegistry_PanicsOnDuplicate(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Expected panic for duplicate field")
		}
	}()
	NewRegistry("x",
		FieldSpec{Section: SectionPatient, Key: "name"},
		FieldSpec{Section: SectionPatient, Key: "name"},
	)
}

func TestResolve(t *testing.T) {
	reg := Echo()

	f, err := reg.Resolve(SectionPatient, " NAME ")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if f.Key != "name" {
		t.Errorf("Expected key name, got %s", f.Key)
	}

	_, err = reg.Resolve(SectionFindings, "mitral_insuficiensia")
	var unknown *UnknownFieldError
	if !errors.As(err, &unknown) {
		t.Fatalf("Expected UnknownFieldError, got %v", err)
	}
	if unknown.Suggestion != "mitral_insuficiencia" {
		t.Errorf("Expected suggestion mitral_insuficiencia, got %q", unknown.Suggestion)
	}

	_, err = reg.Resolve(SectionStudy, "completely_unrelated_key")
	if !errors.As(err, &unknown) {
		t.Fatalf("Expected UnknownFieldError, got %v", err)
	}
	if unknown.Suggestion != "" {
		t.Errorf("Expected no suggestion, got %q", unknown.Suggestion)
	}
}

func TestParseSection(t *testing.T) {
	tests := []struct {
		input   string
		want    Section
		wantErr bool
	}{
		{"patient", SectionPatient, false},
		{"Paciente", SectionPatient, false},
		{"STUDY", SectionStudy, false},
		{"hallazgos", SectionFindings, false},
		{"labs", "", true},
	}
	for _, tt := range tests {
		got, err := ParseSection(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseSection(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseSection(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestLevenshteinDistance(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"abc", "", 3},
		{"", "abc", 3},
		{"lvef", "lvef", 0},
		{"lvef", "lvfe", 2},
		{"aorta", "aortica", 2},
		{"auriculas", "aurículas", 1},
	}
	for _, tt := range tests {
		if got := levenshteinDistance(tt.a, tt.b); got != tt.want {
			t.Errorf("levenshteinDistance(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestNormalize_Number(t *testing.T) {
	age := Echo().Describe(SectionPatient, "age")
	tests := []struct {
		input   any
		want    any
		wantErr bool
	}{
		{54, 54, false},
		{"54", 54, false},
		{54.0, 54, false},
		{0, 0, false},
		{120, 120, false},
		{121, nil, true},
		{-1, nil, true},
		{54.5, nil, true},
		{"abc", nil, true},
		{"", nil, false},
		{true, nil, true},
	}
	for _, tt := range tests {
		got, err := age.Normalize(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("Normalize(%v) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("Normalize(%v) = %v (%T), want %v", tt.input, got, got, tt.want)
		}
	}
}

func TestNormalize_NumberWithUnitAndComma(t *testing.T) {
	grad := Echo().Describe(SectionFindings, "gradiente_av")
	got, err := grad.Normalize("32,5 mmHg")
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if got != 32.5 {
		t.Errorf("Expected 32.5, got %v", got)
	}
}

func TestNormalize_ValidationErrorDetails(t *testing.T) {
	age := Echo().Describe(SectionPatient, "age")
	_, err := age.Normalize(150)

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Expected ValidationError, got %v", err)
	}
	if verr.Section != SectionPatient || verr.Key != "age" {
		t.Errorf("Expected patient.age, got %s.%s", verr.Section, verr.Key)
	}
	if !strings.Contains(verr.Allowed, "0–120") {
		t.Errorf("Expected allowed range in error, got %q", verr.Allowed)
	}
	if !strings.Contains(err.Error(), "Edad") {
		t.Errorf("Expected label in message, got %q", err.Error())
	}
}

func TestNormalize_Enum(t *testing.T) {
	sex := Echo().Describe(SectionPatient, "sex")
	tests := []struct {
		input   any
		want    any
		wantErr bool
	}{
		{"Female", "Female", false},
		{"female", "Female", false},
		{"Femenino", "Female", false},
		{"Masculino", "Male", false},
		{"", nil, false},
		{"Other", nil, true},
		{3, nil, true},
	}
	for _, tt := range tests {
		got, err := sex.Normalize(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("Normalize(%v) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("Normalize(%v) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestNormalize_Multi(t *testing.T) {
	f := Echo().Describe(SectionFindings, "hallazgos")

	got, err := f.Normalize([]any{"aire", "Trombo intracavitario", "aire"})
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	values := got.([]string)
	if len(values) != 2 || values[0] != "aire" || values[1] != "trombo" {
		t.Errorf("Expected [aire trombo], got %v", values)
	}

	got, err = f.Normalize([]string{})
	if err != nil || got != nil {
		t.Errorf("Expected empty selection to be unset, got %v, %v", got, err)
	}

	if _, err := f.Normalize([]string{"unicornio"}); err == nil {
		t.Error("Expected error for value outside vocabulary")
	}
}

func TestNormalize_DateAndTime(t *testing.T) {
	reg := Echo()
	date := reg.Describe(SectionStudy, "date")
	clock := reg.Describe(SectionStudy, "time")

	for _, in := range []any{"2026-03-05", "05-03-2026", "05/03/2026", time.Date(2026, 3, 5, 9, 0, 0, 0, time.UTC)} {
		got, err := date.Normalize(in)
		if err != nil {
			t.Errorf("Normalize(%v) failed: %v", in, err)
			continue
		}
		if got != "2026-03-05" {
			t.Errorf("Normalize(%v) = %v, want 2026-03-05", in, got)
		}
	}
	if _, err := date.Normalize("2026-13-40"); err == nil {
		t.Error("Expected error for invalid date")
	}

	for _, in := range []any{"08:30", "08:30:15", 510} {
		got, err := clock.Normalize(in)
		if err != nil {
			t.Errorf("Normalize(%v) failed: %v", in, err)
			continue
		}
		if got != "08:30" {
			t.Errorf("Normalize(%v) = %v, want 08:30", in, got)
		}
	}
}

func TestNormalize_Text(t *testing.T) {
	reg := Echo()
	name := reg.Describe(SectionPatient, "name")
	mrn := reg.Describe(SectionPatient, "mrn")
	concl := reg.Describe(SectionFindings, "conclusiones")

	if got, _ := name.Normalize("  Ana Diaz \n"); got != "Ana Diaz" {
		t.Errorf("Expected trimmed name, got %q", got)
	}
	if got, _ := name.Normalize("Ana\nDiaz"); got != "Ana Diaz" {
		t.Errorf("Expected single-line name, got %q", got)
	}
	if got, _ := name.Normalize("   "); got != nil {
		t.Errorf("Expected blank to be unset, got %v", got)
	}
	if got, _ := mrn.Normalize(123456); got != "123456" {
		t.Errorf("Expected numeric MRN as text, got %v", got)
	}
	if got, _ := concl.Normalize("línea 1\r\nlínea 2"); got != "línea 1\nlínea 2" {
		t.Errorf("Expected multiline text preserved, got %q", got)
	}
}

func TestFormat(t *testing.T) {
	reg := Echo()
	tests := []struct {
		section Section
		key     string
		value   any
		want    string
		fb      bool
	}{
		{SectionPatient, "age", 54, "54", false},
		{SectionPatient, "sex", "Female", "Femenino", false},
		{SectionPatient, "weight", 72.5, "72.5 kg", false},
		{SectionPatient, "study_date", "2026-03-05", "05-03-2026", false},
		{SectionFindings, "lvef", "Normal (>55%)", "Normal (>55%)", false},
		{SectionFindings, "gradiente_av", 32.0, "32 mmHg", false},
		{SectionFindings, "lvef", nil, FallbackNotEvaluated, true},
		{SectionPatient, "name", nil, FallbackNotSpecified, true},
		{SectionFindings, "hallazgos", nil, FallbackNone, true},
		{SectionFindings, "hallazgos", []string{"trombo", "aire"}, "Trombo intracavitario, Aire intracavitario", false},
	}
	for _, tt := range tests {
		got, _, fb := reg.Describe(tt.section, tt.key).Format(tt.value)
		if got != tt.want {
			t.Errorf("Format(%s.%s, %v) = %q, want %q", tt.section, tt.key, tt.value, got, tt.want)
		}
		if fb != tt.fb {
			t.Errorf("Format(%s.%s, %v) fallback = %v, want %v", tt.section, tt.key, tt.value, fb, tt.fb)
		}
	}
}

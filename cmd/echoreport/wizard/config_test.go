package wizard

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/mrsinham/echoreport/internal/app"
	"github.com/mrsinham/echoreport/internal/export"
	"github.com/mrsinham/echoreport/internal/fields"
	"github.com/mrsinham/echoreport/internal/report"
	"github.com/mrsinham/echoreport/internal/session"
)

func TestLoadFromYAML_ValidSession(t *testing.T) {
	tmpDir := t.TempDir()
	sessionPath := filepath.Join(tmpDir, "sesion.yaml")

	content := `
patient:
  name: "Ana Díaz"
  age: 54
  sex: Female
  weight: 62.5
  height: 165
study:
  date: 2024-03-15
  time: "09:30"
findings:
  lvef: "Normal (>55%)"
  hallazgos:
    - aire
    - trombo
  conclusiones: |
    Función biventricular conservada.
    Sin complicaciones.
`
	if err := os.WriteFile(sessionPath, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write test session: %v", err)
	}

	f, err := LoadFromYAML(sessionPath)
	if err != nil {
		t.Fatalf("LoadFromYAML failed: %v", err)
	}

	if f.Patient["name"] != "Ana Díaz" {
		t.Errorf("Expected name 'Ana Díaz', got %v", f.Patient["name"])
	}
	if f.Patient["age"] != 54 {
		t.Errorf("Expected age 54, got %v (%T)", f.Patient["age"], f.Patient["age"])
	}
	if f.Patient["weight"] != 62.5 {
		t.Errorf("Expected weight 62.5, got %v", f.Patient["weight"])
	}
	if f.Study["date"] != "2024-03-15" {
		t.Errorf("Expected date kept as string, got %v (%T)", f.Study["date"], f.Study["date"])
	}

	s := session.New(fields.Echo())
	for _, sec := range fields.Sections() {
		if err := s.Merge(sec, f.Section(sec)); err != nil {
			t.Fatalf("Merge(%s) failed: %v", sec, err)
		}
	}
	if got := s.Get(fields.SectionFindings, "hallazgos", nil); !reflect.DeepEqual(got, []string{"aire", "trombo"}) {
		t.Errorf("Expected hallazgos [aire trombo], got %v", got)
	}
	if got := s.Get(fields.SectionFindings, "conclusiones", ""); !strings.Contains(got.(string), "\nSin complicaciones.") {
		t.Errorf("Expected multiline conclusions, got %q", got)
	}
}

func TestLoadFromYAML_Errors(t *testing.T) {
	if _, err := LoadFromYAML(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Expected error for missing file")
	}

	path := filepath.Join(t.TempDir(), "broken.yaml")
	if err := os.WriteFile(path, []byte("patient: [unclosed"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFromYAML(path); err == nil {
		t.Error("Expected error for invalid YAML")
	}
}

func TestSaveToYAML_RoundTrip(t *testing.T) {
	reg := fields.Echo()
	s := session.New(reg)
	if err := s.Merge(fields.SectionPatient, map[string]any{"name": "Ana Díaz", "age": 54, "study_date": "15-03-2024"}); err != nil {
		t.Fatal(err)
	}
	if err := s.Merge(fields.SectionFindings, map[string]any{"hallazgos": "aire, trombo", "tapse": "18,5"}); err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "sesion.yaml")
	if err := SaveToYAML(FromSession(s), path); err != nil {
		t.Fatalf("SaveToYAML failed: %v", err)
	}

	loaded, err := LoadFromYAML(path)
	if err != nil {
		t.Fatalf("LoadFromYAML failed: %v", err)
	}
	if loaded.Study != nil {
		t.Errorf("Expected no study section, got %v", loaded.Study)
	}

	restored := session.New(reg)
	for _, sec := range fields.Sections() {
		if err := restored.Merge(sec, loaded.Section(sec)); err != nil {
			t.Fatalf("Merge(%s) failed: %v", sec, err)
		}
		if !reflect.DeepEqual(restored.Values(sec), s.Values(sec)) {
			t.Errorf("Section %s: expected %v, got %v", sec, s.Values(sec), restored.Values(sec))
		}
	}
}

func TestApply_ReportsEverySection(t *testing.T) {
	ctrl := newTestController(t)
	f := &SessionFile{
		Patient:  map[string]any{"age": 300},
		Study:    map[string]any{"institution": "Hospital Central"},
		Findings: map[string]any{"lvf": "Normal (>55%)"},
	}

	err := Apply(context.Background(), ctrl, f)
	if err == nil {
		t.Fatal("Expected errors for the patient and findings sections")
	}
	if !strings.Contains(err.Error(), "age") || !strings.Contains(err.Error(), "lvef") {
		t.Errorf("Expected both failures with a suggestion, got %v", err)
	}
	if got := ctrl.Session().Get(fields.SectionStudy, "institution", ""); got != "Hospital Central" {
		t.Errorf("Expected study section applied, got %v", got)
	}
}

func TestSaveToYAML_KeepsBlankSubmittedSection(t *testing.T) {
	reg := fields.Echo()
	s := session.New(reg)
	if err := s.Merge(fields.SectionPatient, map[string]any{"name": "Ana Díaz"}); err != nil {
		t.Fatal(err)
	}
	// Study form submitted with every field left blank.
	if err := s.Merge(fields.SectionStudy, map[string]any{"institution": ""}); err != nil {
		t.Fatal(err)
	}
	if err := s.Merge(fields.SectionFindings, map[string]any{"lvef": "Normal (>55%)"}); err != nil {
		t.Fatal(err)
	}
	if err := report.PolicyStrict.Check(s); err != nil {
		t.Fatalf("Expected complete session before saving, got %v", err)
	}

	path := filepath.Join(t.TempDir(), "sesion.yaml")
	if err := SaveToYAML(FromSession(s), path); err != nil {
		t.Fatalf("SaveToYAML failed: %v", err)
	}
	loaded, err := LoadFromYAML(path)
	if err != nil {
		t.Fatalf("LoadFromYAML failed: %v", err)
	}
	if loaded.Study != nil {
		t.Errorf("Expected no study values, got %v", loaded.Study)
	}

	exp := export.New(export.NewDirSink(t.TempDir()), zap.NewNop())
	ctrl := app.NewController(session.New(reg), exp, app.WithPolicy(report.PolicyStrict))
	if err := Apply(context.Background(), ctrl, loaded); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	for _, sec := range fields.Sections() {
		if !ctrl.Session().Submitted(sec) {
			t.Errorf("Expected %s submitted after reload", sec)
		}
	}
	if _, err := ctrl.Dispatch(context.Background(), app.GenerateReport{}); err != nil {
		t.Errorf("Expected strict generation after reload, got %v", err)
	}
}

func TestToCommands_SubmittedWithoutValues(t *testing.T) {
	f := &SessionFile{
		Submitted: []fields.Section{fields.SectionStudy},
		Patient:   map[string]any{"name": "Ana Díaz"},
	}

	cmds := ToCommands(f)
	if len(cmds) != 2 {
		t.Fatalf("Expected patient and study commands, got %d", len(cmds))
	}
	study, ok := cmds[1].(app.SubmitSection)
	if !ok || study.Section != fields.SectionStudy {
		t.Fatalf("Expected study submission second, got %#v", cmds[1])
	}
	if study.Values == nil || len(study.Values) != 0 {
		t.Errorf("Expected empty non-nil values, got %#v", study.Values)
	}
}

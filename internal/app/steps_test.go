package app

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"regexp"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/cucumber/godog"
	"go.uber.org/zap"

	"github.com/mrsinham/echoreport/internal/export"
	"github.com/mrsinham/echoreport/internal/fields"
	"github.com/mrsinham/echoreport/internal/render"
	"github.com/mrsinham/echoreport/internal/report"
	"github.com/mrsinham/echoreport/internal/session"
)

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"features"},
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}

// scenarioContext holds state for a single scenario.
type scenarioContext struct {
	tmpDir     string
	session    *session.Session
	exporter   *export.Exporter
	controller *Controller
	lastErr    error
	artifact   *export.Artifact
}

func InitializeScenario(sc *godog.ScenarioContext) {
	tc := &scenarioContext{}

	sc.Before(func(ctx context.Context, _ *godog.Scenario) (context.Context, error) {
		tmpDir, err := os.MkdirTemp("", "echoreport-features-*")
		if err != nil {
			return ctx, err
		}
		tc.tmpDir = tmpDir
		return ctx, nil
	})

	sc.After(func(ctx context.Context, _ *godog.Scenario, _ error) (context.Context, error) {
		if tc.tmpDir != "" {
			_ = os.RemoveAll(tc.tmpDir)
		}
		return ctx, nil
	})

	sc.Step(`^a new reporting session$`, tc.aNewReportingSession)
	sc.Step(`^the generation policy is "([^"]*)"$`, tc.theGenerationPolicyIs)
	sc.Step(`^I submit the "([^"]*)" section with:$`, tc.iSubmitTheSectionWith)
	sc.Step(`^I try to submit the "([^"]*)" section with:$`, tc.iTryToSubmitTheSectionWith)
	sc.Step(`^I generate the report at "([^"]*)"$`, tc.iGenerateTheReportAt)
	sc.Step(`^I try to generate the report$`, tc.iTryToGenerateTheReport)
	sc.Step(`^I export the report as "([^"]*)"$`, tc.iExportTheReportAs)
	sc.Step(`^the plain text has the line "([^"]*)"$`, tc.thePlainTextHasTheLine)
	sc.Step(`^the markdown has the line "([^"]*)"$`, tc.theMarkdownHasTheLine)
	sc.Step(`^the submission fails with a validation error on "([^"]*)"$`, tc.theSubmissionFailsWithAValidationErrorOn)
	sc.Step(`^the session value of "([^"]*)" is "([^"]*)"$`, tc.theSessionValueOfIs)
	sc.Step(`^the artifact name matches "([^"]*)"$`, tc.theArtifactNameMatches)
	sc.Step(`^the artifact contains the line "([^"]*)"$`, tc.theArtifactContainsTheLine)
	sc.Step(`^the artifact is a PDF$`, tc.theArtifactIsAPDF)
	sc.Step(`^the report is stale$`, tc.theReportIsStale)
	sc.Step(`^generation fails because sections are missing$`, tc.generationFailsBecauseSectionsAreMissing)
}

func (tc *scenarioContext) aNewReportingSession() error {
	tc.session = session.New(fields.Echo())
	tc.exporter = export.New(export.NewDirSink(tc.tmpDir), zap.NewNop())
	tc.controller = NewController(tc.session, tc.exporter)
	return nil
}

func (tc *scenarioContext) theGenerationPolicyIs(name string) error {
	p, err := report.ParsePolicy(name)
	if err != nil {
		return err
	}
	tc.controller = NewController(tc.session, tc.exporter, WithPolicy(p))
	return nil
}

func tableValues(table *godog.Table) map[string]any {
	values := make(map[string]any)
	for i, row := range table.Rows {
		if i == 0 {
			continue // header
		}
		values[row.Cells[0].Value] = row.Cells[1].Value
	}
	return values
}

func (tc *scenarioContext) submit(section string, table *godog.Table) error {
	sec, err := fields.ParseSection(section)
	if err != nil {
		return err
	}
	_, err = tc.controller.Dispatch(context.Background(), SubmitSection{Section: sec, Values: tableValues(table)})
	return err
}

func (tc *scenarioContext) iSubmitTheSectionWith(section string, table *godog.Table) error {
	return tc.submit(section, table)
}

func (tc *scenarioContext) iTryToSubmitTheSectionWith(section string, table *godog.Table) error {
	tc.lastErr = tc.submit(section, table)
	return nil
}

func (tc *scenarioContext) iGenerateTheReportAt(ts string) error {
	at, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		return err
	}
	_, err = tc.controller.Dispatch(context.Background(), GenerateReport{At: at})
	return err
}

func (tc *scenarioContext) iTryToGenerateTheReport() error {
	_, tc.lastErr = tc.controller.Dispatch(context.Background(), GenerateReport{})
	return nil
}

func (tc *scenarioContext) iExportTheReportAs(format string) error {
	f, err := render.ParseFormat(format)
	if err != nil {
		return err
	}
	res, err := tc.controller.Dispatch(context.Background(), Export{Format: f})
	if err != nil {
		return err
	}
	tc.artifact = res.Artifact
	return nil
}

func (tc *scenarioContext) record() (report.Record, error) {
	rec, ok := tc.controller.Record()
	if !ok {
		return report.Record{}, fmt.Errorf("no report generated")
	}
	return rec, nil
}

func hasLine(text, line string) bool {
	return slices.Contains(strings.Split(text, "\n"), line)
}

func (tc *scenarioContext) thePlainTextHasTheLine(line string) error {
	rec, err := tc.record()
	if err != nil {
		return err
	}
	if text := render.PlainText(rec); !hasLine(text, line) {
		return fmt.Errorf("line %q not found in:\n%s", line, text)
	}
	return nil
}

func (tc *scenarioContext) theMarkdownHasTheLine(line string) error {
	rec, err := tc.record()
	if err != nil {
		return err
	}
	if md := render.Markdown(rec); !hasLine(md, line) {
		return fmt.Errorf("line %q not found in:\n%s", line, md)
	}
	return nil
}

func (tc *scenarioContext) theSubmissionFailsWithAValidationErrorOn(key string) error {
	var verr *fields.ValidationError
	if !errors.As(tc.lastErr, &verr) {
		return fmt.Errorf("expected validation error, got %v", tc.lastErr)
	}
	if verr.Key != key {
		return fmt.Errorf("expected error on %q, got %q", key, verr.Key)
	}
	return nil
}

func (tc *scenarioContext) theSessionValueOfIs(id, want string) error {
	section, key, ok := strings.Cut(id, ".")
	if !ok {
		return fmt.Errorf("expected section.key, got %q", id)
	}
	sec, err := fields.ParseSection(section)
	if err != nil {
		return err
	}
	if got := fmt.Sprint(tc.session.Get(sec, key, "")); got != want {
		return fmt.Errorf("expected %s = %q, got %q", id, want, got)
	}
	return nil
}

func (tc *scenarioContext) theArtifactNameMatches(pattern string) error {
	if tc.artifact == nil {
		return fmt.Errorf("no artifact exported")
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return err
	}
	if !re.MatchString(tc.artifact.Name) {
		return fmt.Errorf("artifact name %q does not match %s", tc.artifact.Name, pattern)
	}
	return nil
}

func (tc *scenarioContext) theArtifactContainsTheLine(line string) error {
	if tc.artifact == nil {
		return fmt.Errorf("no artifact exported")
	}
	data, err := os.ReadFile(tc.artifact.Location)
	if err != nil {
		return fmt.Errorf("read artifact: %w", err)
	}
	if !hasLine(string(data), line) {
		return fmt.Errorf("line %q not found in artifact %s", line, tc.artifact.Name)
	}
	return nil
}

func (tc *scenarioContext) theArtifactIsAPDF() error {
	if tc.artifact == nil {
		return fmt.Errorf("no artifact exported")
	}
	if !bytes.HasPrefix(tc.artifact.Data, []byte("%PDF-")) {
		return fmt.Errorf("artifact %s is not a PDF", tc.artifact.Name)
	}
	return nil
}

func (tc *scenarioContext) theReportIsStale() error {
	if !tc.controller.Stale() {
		return fmt.Errorf("expected report to be stale")
	}
	return nil
}

func (tc *scenarioContext) generationFailsBecauseSectionsAreMissing() error {
	var incomplete *report.IncompleteError
	if !errors.As(tc.lastErr, &incomplete) {
		return fmt.Errorf("expected incomplete session error, got %v", tc.lastErr)
	}
	return nil
}

package wizard

import (
	"context"
	"errors"
	"maps"
	"slices"

	"github.com/mrsinham/echoreport/internal/app"
	"github.com/mrsinham/echoreport/internal/fields"
	"github.com/mrsinham/echoreport/internal/session"
	"github.com/mrsinham/echoreport/internal/util"
)

// ToCommands converts a session file into one SubmitSection per section
// that has values or is listed as submitted, in report order.
func ToCommands(f *SessionFile) []app.Command {
	var cmds []app.Command
	for _, sec := range fields.Sections() {
		values := f.Section(sec)
		if len(values) == 0 && !slices.Contains(f.Submitted, sec) {
			continue
		}
		values = maps.Clone(values)
		if values == nil {
			values = map[string]any{}
		}
		cmds = append(cmds, app.SubmitSection{Section: sec, Values: values})
	}
	return cmds
}

// Apply submits every section of f through ctrl. Sections are independent:
// a rejected section does not stop the others, and all errors are returned.
func Apply(ctx context.Context, ctrl *app.Controller, f *SessionFile) error {
	var errs []error
	for _, cmd := range ToCommands(f) {
		if _, err := ctrl.Dispatch(ctx, cmd); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// FromSession snapshots the set values and submitted sections of s as a
// session file.
func FromSession(s *session.Session) *SessionFile {
	f := &SessionFile{}
	for _, sec := range fields.Sections() {
		if s.Submitted(sec) {
			f.Submitted = append(f.Submitted, sec)
		}
		if values := s.Values(sec); len(values) > 0 {
			f.SetSection(sec, values)
		}
	}
	return f
}

// FromSample converts generated sample data into a session file.
func FromSample(sample util.Sample) *SessionFile {
	f := &SessionFile{}
	for _, sec := range fields.Sections() {
		if values := sample[sec]; len(values) > 0 {
			f.Submitted = append(f.Submitted, sec)
			f.SetSection(sec, maps.Clone(values))
		}
	}
	return f
}

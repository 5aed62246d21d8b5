// Package app drives a reporting session through explicit commands.
//
// Shells (the terminal wizard, the command line) never touch the session
// directly: they dispatch a Command and get back the updated state and at
// most one artifact.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mrsinham/echoreport/internal/export"
	"github.com/mrsinham/echoreport/internal/fields"
	"github.com/mrsinham/echoreport/internal/render"
	"github.com/mrsinham/echoreport/internal/report"
	"github.com/mrsinham/echoreport/internal/session"
)

// ErrNoReport is returned by Export before any report was generated.
var ErrNoReport = errors.New("no report generated yet")

// Command is one user intent.
type Command interface {
	command()
}

// SubmitSection merges a section form into the session.
type SubmitSection struct {
	Section fields.Section
	Values  map[string]any
}

// GenerateReport assembles a new report. A zero At means now.
type GenerateReport struct {
	At time.Time
}

// Export renders the current report and stores it.
type Export struct {
	Format render.Format
}

// ClearSection unsets every value of a section.
type ClearSection struct {
	Section fields.Section
}

func (SubmitSection) command()  {}
func (GenerateReport) command() {}
func (Export) command()         {}
func (ClearSection) command()   {}

// Result is the state after a command.
type Result struct {
	Record   *report.Record   // current report, nil before the first generation
	Stale    bool             // the session changed after Record was generated
	Artifact *export.Artifact // set by Export, also on persistence failure
}

// Controller owns one session and its latest report.
type Controller struct {
	session  *session.Session
	exporter *export.Exporter
	policy   report.Policy
	log      *zap.Logger
	now      func() time.Time

	record *report.Record
}

// Option configures a Controller.
type Option func(*Controller)

// WithPolicy sets the generation policy (default lenient).
func WithPolicy(p report.Policy) Option {
	return func(c *Controller) { c.policy = p }
}

// WithClock replaces time.Now for GenerateReport without a timestamp.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// WithLogger sets the logger.
func WithLogger(log *zap.Logger) Option {
	return func(c *Controller) { c.log = log }
}

// NewController creates a controller over s that exports through exp.
func NewController(s *session.Session, exp *export.Exporter, opts ...Option) *Controller {
	c := &Controller{
		session:  s,
		exporter: exp,
		policy:   report.PolicyLenient,
		log:      zap.NewNop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Session returns the controlled session, for read access by shells.
func (c *Controller) Session() *session.Session {
	return c.session
}

// Policy returns the generation policy.
func (c *Controller) Policy() report.Policy {
	return c.policy
}

// Record returns a copy of the latest report, if any.
func (c *Controller) Record() (report.Record, bool) {
	if c.record == nil {
		return report.Record{}, false
	}
	return c.record.Clone(), true
}

// Stale reports whether the session changed after the latest generation.
func (c *Controller) Stale() bool {
	return c.record != nil && c.record.Revision != c.session.Revision()
}

// Dispatch runs one command. An error leaves the previous state in place,
// except that an Export persistence failure still returns the artifact bytes.
func (c *Controller) Dispatch(ctx context.Context, cmd Command) (Result, error) {
	var (
		art *export.Artifact
		err error
	)

	switch cmd := cmd.(type) {
	case SubmitSection:
		err = c.submit(cmd)
	case GenerateReport:
		err = c.generate(cmd)
	case Export:
		art, err = c.export(ctx, cmd)
	case ClearSection:
		c.session.Clear(cmd.Section)
		c.log.Info("section cleared", zap.String("section", string(cmd.Section)))
	default:
		err = fmt.Errorf("unsupported command %T", cmd)
	}

	res := c.result()
	res.Artifact = art
	return res, err
}

func (c *Controller) result() Result {
	res := Result{Stale: c.Stale()}
	if c.record != nil {
		rec := c.record.Clone()
		res.Record = &rec
	}
	return res
}

func (c *Controller) submit(cmd SubmitSection) error {
	if err := c.session.Merge(cmd.Section, cmd.Values); err != nil {
		c.log.Warn("section rejected",
			zap.String("section", string(cmd.Section)),
			zap.Error(err),
		)
		return fmt.Errorf("submit %s: %w", cmd.Section, err)
	}
	c.log.Info("section submitted",
		zap.String("section", string(cmd.Section)),
		zap.Int("fields", len(cmd.Values)),
		zap.Uint64("revision", c.session.Revision()),
	)
	return nil
}

func (c *Controller) generate(cmd GenerateReport) error {
	if err := c.policy.Check(c.session); err != nil {
		c.log.Warn("generation refused", zap.Stringer("policy", c.policy), zap.Error(err))
		return err
	}
	at := cmd.At
	if at.IsZero() {
		at = c.now()
	}
	rec := report.Assemble(c.session, c.session.Registry(), at)
	c.record = &rec
	c.log.Info("report generated",
		zap.Time("at", at),
		zap.Uint64("revision", rec.Revision),
	)
	return nil
}

func (c *Controller) export(ctx context.Context, cmd Export) (*export.Artifact, error) {
	if c.record == nil {
		return nil, ErrNoReport
	}
	if c.Stale() {
		c.log.Warn("exporting stale report", zap.Uint64("report_revision", c.record.Revision),
			zap.Uint64("session_revision", c.session.Revision()))
	}
	art, err := c.exporter.Export(ctx, *c.record, cmd.Format)
	if err != nil {
		var perr *export.PersistenceError
		if errors.As(err, &perr) {
			return &art, err
		}
		return nil, err
	}
	return &art, nil
}

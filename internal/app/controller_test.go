package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mrsinham/echoreport/internal/export"
	"github.com/mrsinham/echoreport/internal/fields"
	"github.com/mrsinham/echoreport/internal/render"
	"github.com/mrsinham/echoreport/internal/report"
	"github.com/mrsinham/echoreport/internal/session"
)

var generatedAt = time.Date(2026, 10, 16, 10, 0, 0, 0, time.UTC)

func newController(t *testing.T, opts ...Option) *Controller {
	t.Helper()
	exp := export.New(export.NewDirSink(t.TempDir()), zap.NewNop())
	return NewController(session.New(fields.Echo()), exp, opts...)
}

func TestDispatch_SubmitDoesNotGenerate(t *testing.T) {
	c := newController(t)
	res, err := c.Dispatch(context.Background(), SubmitSection{
		Section: fields.SectionPatient,
		Values:  map[string]any{"name": "Ana Diaz"},
	})
	require.NoError(t, err)
	assert.Nil(t, res.Record)
	assert.Nil(t, res.Artifact)
	assert.Equal(t, "Ana Diaz", c.Session().Get(fields.SectionPatient, "name", nil))
}

func TestDispatch_SubmitInvalid(t *testing.T) {
	c := newController(t)
	_, err := c.Dispatch(context.Background(), SubmitSection{
		Section: fields.SectionPatient,
		Values:  map[string]any{"age": 150},
	})
	var verr *fields.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Nil(t, c.Session().Get(fields.SectionPatient, "age", nil))
}

func TestDispatch_GenerateAndStale(t *testing.T) {
	c := newController(t)
	ctx := context.Background()

	_, err := c.Dispatch(ctx, SubmitSection{Section: fields.SectionPatient, Values: map[string]any{"name": "Ana Diaz"}})
	require.NoError(t, err)

	res, err := c.Dispatch(ctx, GenerateReport{At: generatedAt})
	require.NoError(t, err)
	require.NotNil(t, res.Record)
	assert.False(t, res.Stale)
	assert.Equal(t, "Ana Diaz", res.Record.PatientName())
	assert.True(t, res.Record.GeneratedAt.Equal(generatedAt))

	res, err = c.Dispatch(ctx, SubmitSection{Section: fields.SectionPatient, Values: map[string]any{"name": "Otra"}})
	require.NoError(t, err)
	assert.True(t, res.Stale)
	assert.Equal(t, "Ana Diaz", res.Record.PatientName(), "report must not change until regenerated")

	res, err = c.Dispatch(ctx, GenerateReport{At: generatedAt})
	require.NoError(t, err)
	assert.False(t, res.Stale)
	assert.Equal(t, "Otra", res.Record.PatientName())
}

func TestDispatch_GenerateUsesClock(t *testing.T) {
	c := newController(t, WithClock(func() time.Time { return generatedAt }))
	res, err := c.Dispatch(context.Background(), GenerateReport{})
	require.NoError(t, err)
	assert.True(t, res.Record.GeneratedAt.Equal(generatedAt))
}

func TestDispatch_StrictPolicy(t *testing.T) {
	c := newController(t, WithPolicy(report.PolicyStrict))
	ctx := context.Background()

	_, err := c.Dispatch(ctx, GenerateReport{At: generatedAt})
	var incomplete *report.IncompleteError
	require.ErrorAs(t, err, &incomplete)
	assert.Len(t, incomplete.Missing, 3)

	for _, sec := range fields.Sections() {
		_, err := c.Dispatch(ctx, SubmitSection{Section: sec})
		require.NoError(t, err)
	}
	res, err := c.Dispatch(ctx, GenerateReport{At: generatedAt})
	require.NoError(t, err)
	assert.NotNil(t, res.Record)
}

func TestDispatch_ExportBeforeGenerate(t *testing.T) {
	c := newController(t)
	_, err := c.Dispatch(context.Background(), Export{Format: render.FormatText})
	assert.ErrorIs(t, err, ErrNoReport)
}

func TestDispatch_Export(t *testing.T) {
	c := newController(t)
	ctx := context.Background()

	_, err := c.Dispatch(ctx, SubmitSection{Section: fields.SectionPatient, Values: map[string]any{"name": "Ana Diaz"}})
	require.NoError(t, err)
	_, err = c.Dispatch(ctx, GenerateReport{At: generatedAt})
	require.NoError(t, err)

	res, err := c.Dispatch(ctx, Export{Format: render.FormatPDF})
	require.NoError(t, err)
	require.NotNil(t, res.Artifact)
	assert.Regexp(t, `^ana-diaz_[0-9a-f]{8}\.pdf$`, res.Artifact.Name)
	assert.NotEmpty(t, res.Artifact.Location)
}

type brokenSink struct{}

func (brokenSink) Put(context.Context, string, string, []byte) (string, error) {
	return "", errors.New("read-only file system")
}

func TestDispatch_ExportPersistenceFailureKeepsSession(t *testing.T) {
	c := NewController(session.New(fields.Echo()), export.New(brokenSink{}, zap.NewNop()))
	ctx := context.Background()

	_, err := c.Dispatch(ctx, GenerateReport{At: generatedAt})
	require.NoError(t, err)

	res, err := c.Dispatch(ctx, Export{Format: render.FormatText})
	var perr *export.PersistenceError
	require.ErrorAs(t, err, &perr)
	require.NotNil(t, res.Artifact, "bytes are offered even when storing failed")
	assert.NotEmpty(t, res.Artifact.Data)
	assert.NotNil(t, res.Record)

	_, err = c.Dispatch(ctx, SubmitSection{Section: fields.SectionStudy, Values: map[string]any{"probe": "X7-2t"}})
	assert.NoError(t, err, "session stays usable")
}

func TestDispatch_ClearSection(t *testing.T) {
	c := newController(t)
	ctx := context.Background()
	_, err := c.Dispatch(ctx, SubmitSection{Section: fields.SectionStudy, Values: map[string]any{"probe": "X7-2t"}})
	require.NoError(t, err)

	_, err = c.Dispatch(ctx, ClearSection{Section: fields.SectionStudy})
	require.NoError(t, err)
	assert.Empty(t, c.Session().Values(fields.SectionStudy))
}

func TestRecord_ReturnsCopy(t *testing.T) {
	c := newController(t)
	_, err := c.Dispatch(context.Background(), GenerateReport{At: generatedAt})
	require.NoError(t, err)

	rec, ok := c.Record()
	require.True(t, ok)
	rec.Sections[0].Entries[0].Value = "tampered"

	again, _ := c.Record()
	assert.NotEqual(t, "tampered", again.Sections[0].Entries[0].Value)
}

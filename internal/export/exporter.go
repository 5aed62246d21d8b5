package export

import (
	"bytes"
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/mrsinham/echoreport/internal/dicom"
	"github.com/mrsinham/echoreport/internal/render"
	"github.com/mrsinham/echoreport/internal/report"
)

// nameAttempts bounds retries when a generated name is already taken.
const nameAttempts = 3

// Artifact is one rendered and stored document.
type Artifact struct {
	Name        string
	Format      render.Format
	ContentType string
	Location    string // empty when the artifact could not be stored
	Data        []byte
}

// Exporter renders records and hands the bytes to a Sink.
type Exporter struct {
	sink  Sink
	log   *zap.Logger
	newID func() string
}

// Option configures an Exporter.
type Option func(*Exporter)

// WithIDGenerator replaces ShortID, for reproducible names in tests.
func WithIDGenerator(f func() string) Option {
	return func(e *Exporter) { e.newID = f }
}

// New creates an Exporter writing to sink.
func New(sink Sink, log *zap.Logger, opts ...Option) *Exporter {
	if log == nil {
		log = zap.NewNop()
	}
	e := &Exporter{sink: sink, log: log, newID: ShortID}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Render produces the bytes of rec in format f, including DICOM.
func Render(rec report.Record, f render.Format) ([]byte, error) {
	if f != render.FormatDICOM {
		return render.Render(rec, f)
	}
	pdf, err := render.PDF(rec)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := dicom.EncapsulatePDF(&buf, dicom.NewDocument(rec), pdf); err != nil {
		return nil, &render.RenderError{Format: f, Err: err}
	}
	return buf.Bytes(), nil
}

// Export renders rec and stores it under a unique name.
//
// A render failure returns a *render.RenderError and no artifact. A storage
// failure returns a *PersistenceError together with the artifact bytes, so
// the caller can still offer them for download.
func (e *Exporter) Export(ctx context.Context, rec report.Record, f render.Format) (Artifact, error) {
	data, err := Render(rec, f)
	if err != nil {
		e.log.Error("render failed", zap.Stringer("format", f), zap.Error(err))
		return Artifact{}, err
	}

	art := Artifact{
		Format:      f,
		ContentType: f.ContentType(),
		Data:        data,
	}

	for attempt := 1; ; attempt++ {
		art.Name = ArtifactName(rec.PatientName(), e.newID(), f.Extension())
		art.Location, err = e.sink.Put(ctx, art.Name, art.ContentType, data)
		if err == nil {
			break
		}
		if errors.Is(err, ErrExists) && attempt < nameAttempts {
			e.log.Debug("artifact name taken, retrying", zap.String("name", art.Name))
			continue
		}
		e.log.Error("store artifact failed", zap.String("name", art.Name), zap.Error(err))
		return art, &PersistenceError{Name: art.Name, Err: err}
	}

	e.log.Info("artifact exported",
		zap.String("name", art.Name),
		zap.Stringer("format", f),
		zap.Int("bytes", len(data)),
		zap.String("location", art.Location),
	)
	return art, nil
}

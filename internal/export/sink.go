// Package export writes rendered reports to durable storage.
package export

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrExists is returned when an artifact name is already taken.
var ErrExists = errors.New("artifact already exists")

// Sink stores artifact bytes under a name and returns where they went.
type Sink interface {
	Put(ctx context.Context, name, contentType string, data []byte) (string, error)
}

// PersistenceError reports an artifact that could not be stored. The report
// and the session are unaffected; the bytes can still be offered directly.
type PersistenceError struct {
	Name string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persist %s: %v", e.Name, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// DirSink writes artifacts into a local directory.
type DirSink struct {
	Dir string
}

// NewDirSink returns a sink writing into dir, created on first use.
func NewDirSink(dir string) *DirSink {
	return &DirSink{Dir: dir}
}

// Put writes data to a temporary file in the directory and renames it into
// place, so a reader never sees a partial artifact. The temporary file is
// removed on every failure path. Existing artifacts are never overwritten.
func (s *DirSink) Put(ctx context.Context, name, _ string, data []byte) (location string, err error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if name == "" || filepath.Base(name) != name {
		return "", fmt.Errorf("invalid artifact name %q", name)
	}
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}

	final := filepath.Join(s.Dir, name)
	if _, err := os.Stat(final); err == nil {
		return "", fmt.Errorf("%s: %w", final, ErrExists)
	}

	tmp, err := os.CreateTemp(s.Dir, "."+name+".*.tmp")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return "", fmt.Errorf("write %s: %w", tmp.Name(), err)
	}
	if err = tmp.Sync(); err != nil {
		return "", fmt.Errorf("sync %s: %w", tmp.Name(), err)
	}
	if err = tmp.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w", tmp.Name(), err)
	}
	if err = os.Chmod(tmp.Name(), 0o644); err != nil {
		return "", fmt.Errorf("chmod %s: %w", tmp.Name(), err)
	}
	if err = os.Rename(tmp.Name(), final); err != nil {
		return "", fmt.Errorf("rename into %s: %w", final, err)
	}
	return final, nil
}

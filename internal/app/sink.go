package service

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Sink receives finished charts by file name. A writer that also has an
// Abort method is aborted instead of closed when rendering fails.
type Sink interface {
	Create(name string) (io.WriteCloser, error)
}

type aborter interface {
	Abort() error
}

// DirSink writes charts into a directory. Each file is written under a
// temporary name and renamed into place on Close, so a failed render never
// leaves a truncated PNG behind.
type DirSink struct {
	dir string
}

// NewDirSink creates dir if needed.
func NewDirSink(dir string) (*DirSink, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	return &DirSink{dir: dir}, nil
}

// Dir returns the output directory.
func (d *DirSink) Dir() string { return d.dir }

// Create opens a pending file for name.
func (d *DirSink) Create(name string) (io.WriteCloser, error) {
	final := filepath.Join(d.dir, name)
	tmp := final + "." + uuid.NewString() + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", name, err)
	}
	return &pendingFile{File: f, tmp: tmp, final: final}, nil
}

type pendingFile struct {
	*os.File
	tmp, final string
	failed     bool
}

func (p *pendingFile) Write(b []byte) (int, error) {
	n, err := p.File.Write(b)
	if err != nil {
		p.failed = true
	}
	return n, err
}

// Close renames the file into place, or removes it after a write failure.
func (p *pendingFile) Close() error {
	if err := p.File.Close(); err != nil || p.failed {
		_ = os.Remove(p.tmp)
		if err != nil {
			return fmt.Errorf("close %s: %w", p.final, err)
		}
		return fmt.Errorf("write %s failed", p.final)
	}
	if err := os.Rename(p.tmp, p.final); err != nil {
		_ = os.Remove(p.tmp)
		return fmt.Errorf("move %s into place: %w", p.final, err)
	}
	return nil
}

// Abort removes the pending file without publishing it.
func (p *pendingFile) Abort() error {
	p.failed = true
	_ = p.File.Close()
	return os.Remove(p.tmp)
}

// discard drops w without publishing it.
func discard(w io.WriteCloser) {
	if a, ok := w.(aborter); ok {
		_ = a.Abort()
		return
	}
	_ = w.Close()
}

package filestore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// Local stores files in one directory per Kind.
type Local struct {
	dirs map[Kind]string
}

func NewLocal(dirs map[Kind]string) *Local {
	return &Local{dirs: dirs}
}

func (l *Local) path(kind Kind, name string) (string, error) {
	if err := checkName(name); err != nil {
		return "", err
	}
	dir, ok := l.dirs[kind]
	if !ok || dir == "" {
		return "", fmt.Errorf("no directory configured for %s", kind)
	}
	return filepath.Join(dir, name), nil
}

func (l *Local) Save(ctx context.Context, kind Kind, name string, r io.Reader, contentType string) error {
	p, err := l.path(kind, name)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("creating upload directory: %w", err)
	}

	f, err := os.OpenFile(p, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("creating %s: %w", p, err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(p)
		return fmt.Errorf("writing %s: %w", p, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(p)
		return fmt.Errorf("closing %s: %w", p, err)
	}
	return nil
}

func (l *Local) Open(ctx context.Context, kind Kind, name string) (io.ReadCloser, error) {
	p, err := l.path(kind, name)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotExist
	}
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", p, err)
	}
	return f, nil
}

// Delete removes the file. Removing a file that is already gone is not an error.
func (l *Local) Delete(ctx context.Context, kind Kind, name string) error {
	p, err := l.path(kind, name)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("removing %s: %w", p, err)
	}
	return nil
}

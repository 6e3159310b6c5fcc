package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// DiskStore keeps uploads in a single directory of an afero filesystem.
type DiskStore struct {
	fs  afero.Fs
	dir string
}

// NewDiskStore creates dir if needed and returns a store rooted there.
func NewDiskStore(fs afero.Fs, dir string) (*DiskStore, error) {
	if err := fs.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("mkdir %s: %w", dir, err)
	}
	return &DiskStore{fs: fs, dir: dir}, nil
}

func (s *DiskStore) path(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || name == "." || name == ".." {
		return "", fmt.Errorf("invalid stored file name %q", name)
	}
	return filepath.Join(s.dir, name), nil
}

// Save writes r under name. A partially written file is removed on error.
func (s *DiskStore) Save(_ context.Context, name string, r io.Reader, _ int64, _ string) error {
	p, err := s.path(name)
	if err != nil {
		return err
	}
	if err := afero.WriteReader(s.fs, p, r); err != nil {
		_ = s.fs.Remove(p)
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}

// Open returns a reader for name.
func (s *DiskStore) Open(_ context.Context, name string) (io.ReadCloser, error) {
	p, err := s.path(name)
	if err != nil {
		return nil, err
	}
	f, err := s.fs.Open(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", name, ErrFileNotFound)
		}
		return nil, fmt.Errorf("open %s: %w", name, err)
	}
	return f, nil
}

// Delete removes name.
func (s *DiskStore) Delete(_ context.Context, name string) error {
	p, err := s.path(name)
	if err != nil {
		return err
	}
	if err := s.fs.Remove(p); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%s: %w", name, ErrFileNotFound)
		}
		return fmt.Errorf("remove %s: %w", name, err)
	}
	return nil
}

// Package filestore keeps the place list in a flat text file, one
// name#longitude#latitude record per line.
package filestore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/samirrijal/placeroute/internal/core/domain"
	"github.com/samirrijal/placeroute/internal/core/registry"
)

// PlaceStore implements ports.PlaceStore on an afero filesystem.
type PlaceStore struct {
	fs   afero.Fs
	path string
}

// New creates a store backed by the OS filesystem.
func New(path string) *PlaceStore {
	return NewWithFs(afero.NewOsFs(), path)
}

// NewWithFs creates a store on any afero filesystem.
func NewWithFs(fs afero.Fs, path string) *PlaceStore {
	return &PlaceStore{fs: fs, path: path}
}

// LoadRecords reads every line of the file. Blank lines are kept here and
// dropped by the registry. A missing file yields domain.ErrNotFound.
func (s *PlaceStore) LoadRecords(ctx context.Context) ([]string, error) {
	data, err := afero.ReadFile(s.fs, s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, s.path)
		}
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}
	return registry.SplitRecords(string(data)), nil
}

// SaveRecords writes the records through a temp file and renames it over
// the target so readers never see a partial list.
func (s *PlaceStore) SaveRecords(ctx context.Context, records []string) error {
	dir := filepath.Dir(s.path)
	if err := s.fs.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}

	tmp := s.path + ".tmp"
	if err := afero.WriteFile(s.fs, tmp, []byte(registry.JoinRecords(records)), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := s.fs.Rename(tmp, s.path); err != nil {
		_ = s.fs.Remove(tmp)
		return fmt.Errorf("rename %s: %w", tmp, err)
	}
	return nil
}

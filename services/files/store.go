// Package filesvc stores uploaded homework submissions.
package filesvc

import (
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/afero"

	"github.com/trezcool/shkola/core/homework"
)

// Store keeps files flat under one directory of an afero.Fs.
type Store struct {
	fs afero.Fs
}

var _ homework.FileStore = (*Store)(nil)

// NewStore returns a Store rooted at dir, creating dir when needed.
// Use afero.NewOsFs() in production and afero.NewMemMapFs() in tests.
func NewStore(fs afero.Fs, dir string) (*Store, error) {
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "creating upload dir %s", dir)
	}
	return &Store{fs: afero.NewBasePathFs(fs, dir)}, nil
}

// Save writes r to name, replacing any previous content.
func (s *Store) Save(name string, r io.Reader) error {
	name = homework.SanitizeFilename(name)
	f, err := s.fs.OpenFile(name, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return errors.Wrapf(err, "opening %s", name)
	}
	if _, err = io.Copy(f, r); err != nil {
		_ = f.Close()
		return errors.Wrapf(err, "writing %s", name)
	}
	return errors.Wrapf(f.Close(), "closing %s", name)
}

// Remove deletes name. Missing files are not an error.
func (s *Store) Remove(name string) error {
	err := s.fs.Remove(homework.SanitizeFilename(name))
	if err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, "removing %s", name)
	}
	return nil
}

// Open opens name for reading.
func (s *Store) Open(name string) (afero.File, error) {
	return s.fs.Open(homework.SanitizeFilename(name))
}

// Exists reports whether name is stored.
func (s *Store) Exists(name string) (bool, error) {
	return afero.Exists(s.fs, homework.SanitizeFilename(name))
}

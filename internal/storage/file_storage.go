package storage

import (
	"fmt"
	"os"
	"path"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
)

// FileStorage is the filesystem boundary of a batch: existence checks,
// directory creation and all-or-nothing writes.
type FileStorage struct {
	fs billy.Filesystem
}

// NewFileStorage creates a new FileStorage on top of fs.
func NewFileStorage(fs billy.Filesystem) *FileStorage {
	return &FileStorage{fs: fs}
}

// NewOSFileStorage returns a FileStorage on the host filesystem. Paths passed
// to it are expected to be absolute.
func NewOSFileStorage() *FileStorage {
	return NewFileStorage(osfs.New("/"))
}

// Join joins path elements using the underlying filesystem separator.
func (s *FileStorage) Join(elem ...string) string {
	return s.fs.Join(elem...)
}

// Exists checks whether a file or directory exists at name.
func (s *FileStorage) Exists(name string) (bool, error) {
	_, err := s.fs.Stat(name)
	switch {
	case err == nil:
		return true, nil
	case os.IsNotExist(err):
		return false, nil
	default:
		return false, fmt.Errorf("stat %q: %w", name, err)
	}
}

// MkdirAll creates dir and any missing parents.
func (s *FileStorage) MkdirAll(dir string) error {
	if err := s.fs.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir %q: %w", dir, err)
	}
	return nil
}

// WriteFile writes data to a temporary file next to name and renames it into
// place, so name is either fully written or absent.
func (s *FileStorage) WriteFile(name string, data []byte) error {
	tmp, err := util.TempFile(s.fs, path.Dir(name), "."+path.Base(name)+".tmp-")
	if err != nil {
		return fmt.Errorf("create temporary file: %w", err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		s.fs.Remove(tmp.Name())
		return fmt.Errorf("write temporary file: %w", err)
	}

	if err := tmp.Close(); err != nil {
		s.fs.Remove(tmp.Name())
		return fmt.Errorf("close temporary file: %w", err)
	}

	if err := s.fs.Rename(tmp.Name(), name); err != nil {
		s.fs.Remove(tmp.Name())
		return fmt.Errorf("rename temporary file: %w", err)
	}

	return nil
}

// ReadFile returns the contents of name.
func (s *FileStorage) ReadFile(name string) ([]byte, error) {
	return util.ReadFile(s.fs, name)
}

package filesystem

import (
	"os"

	"yt-mp3-service/domain/media"
)

// Local implements media.Filesystem using the os package
type Local struct {
	dirPerm os.FileMode
}

// NewLocal creates a new local filesystem adapter
func NewLocal() *Local {
	return &Local{dirPerm: 0755}
}

// Exists returns true if the path exists
func (l *Local) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// MkdirAll creates path and any missing parents
func (l *Local) MkdirAll(path string) error {
	return os.MkdirAll(path, l.dirPerm)
}

// ReadFile reads the whole file into memory
func (l *Local) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// Remove deletes a single file
func (l *Local) Remove(path string) error {
	return os.Remove(path)
}

// RemoveAll deletes path and everything below it
func (l *Local) RemoveAll(path string) error {
	return os.RemoveAll(path)
}

// Ensure Local implements media.Filesystem
var _ media.Filesystem = (*Local)(nil)

// Package filesystem provides the operating system implementation of shared.FileSystem.
package filesystem

import (
	"io/fs"
	"os"
	"path/filepath"
)

// OSFileSystem reads and creates paths on the local disk.
type OSFileSystem struct{}

// Stat follows symbolic links; discovery relies on ReadDir entries to see links themselves.
func (OSFileSystem) Stat(path string) (fs.FileInfo, error) { return os.Stat(path) }

// ReadDir returns entries sorted by file name.
func (OSFileSystem) ReadDir(path string) ([]fs.DirEntry, error) { return os.ReadDir(path) }

// EvalSymlinks returns path with every symbolic link resolved.
func (OSFileSystem) EvalSymlinks(path string) (string, error) { return filepath.EvalSymlinks(path) }

// Abs joins relative paths onto the working directory.
func (OSFileSystem) Abs(path string) (string, error) { return filepath.Abs(path) }

// ReadFile returns the whole file.
func (OSFileSystem) ReadFile(path string) ([]byte, error) { return os.ReadFile(path) }

// MkdirAll creates path and any missing parents.
func (OSFileSystem) MkdirAll(path string, permissions fs.FileMode) error {
	return os.MkdirAll(path, permissions)
}

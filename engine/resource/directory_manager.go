package resource

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// ErrFileNotFound is returned when a file cannot be located in any search directory.
var ErrFileNotFound = errors.New("file not found")

type directoryManager struct {
	mu    sync.RWMutex
	paths []string
}

// DirectoryManager resolves relative resource names against an ordered list of search directories.
// Safe for concurrent use; texture decoding resolves paths from worker goroutines.
type DirectoryManager interface {
	// AppendPath adds a search directory. The path is cleaned and duplicates are ignored.
	//
	// Parameters:
	//   - dir: the directory to search
	AppendPath(dir string)

	// Paths returns the search directories in the order they were added.
	//
	// Returns:
	//   - []string: a copy of the search list
	Paths() []string

	// IsInPath reports whether dir is already a search directory.
	//
	// Parameters:
	//   - dir: the directory to check
	//
	// Returns:
	//   - bool: true if the cleaned dir is in the search list
	IsInPath(dir string) bool

	// FindFileInPath resolves name to an existing regular file.
	// Absolute names are returned as is when they exist; relative names are tried against
	// each search directory in order.
	//
	// Parameters:
	//   - name: the file name to resolve
	//
	// Returns:
	//   - string: the resolved path
	//   - error: ErrFileNotFound (wrapped with the name) if no candidate exists
	FindFileInPath(name string) (string, error)
}

var _ DirectoryManager = &directoryManager{}

// NewDirectoryManager creates a DirectoryManager with an optional initial search list.
//
// Parameters:
//   - dirs: initial search directories
//
// Returns:
//   - DirectoryManager: the new manager
func NewDirectoryManager(dirs ...string) DirectoryManager {
	d := &directoryManager{}
	for _, dir := range dirs {
		d.AppendPath(dir)
	}
	return d
}

func (d *directoryManager) AppendPath(dir string) {
	if dir == "" {
		return
	}
	dir = filepath.Clean(dir)

	d.mu.Lock()
	defer d.mu.Unlock()
	for _, p := range d.paths {
		if p == dir {
			return
		}
	}
	d.paths = append(d.paths, dir)
}

func (d *directoryManager) Paths() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]string, len(d.paths))
	copy(out, d.paths)
	return out
}

func (d *directoryManager) IsInPath(dir string) bool {
	dir = filepath.Clean(dir)
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, p := range d.paths {
		if p == dir {
			return true
		}
	}
	return false
}

func (d *directoryManager) FindFileInPath(name string) (string, error) {
	if filepath.IsAbs(name) {
		if isFile(name) {
			return name, nil
		}
		return "", fmt.Errorf("%s: %w", name, ErrFileNotFound)
	}

	for _, dir := range d.Paths() {
		candidate := filepath.Join(dir, name)
		if isFile(candidate) {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%s: %w", name, ErrFileNotFound)
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

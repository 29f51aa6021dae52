package home

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// DefaultDirName is the default name for the healthypdf home directory.
	DefaultDirName = ".healthypdf"

	// ExportsDirName is the subdirectory for saved document copies.
	ExportsDirName = "exports"

	// ThumbnailsDirName is the subdirectory for cached page thumbnails.
	ThumbnailsDirName = "thumbnails"

	// ConfigFileName is the default config file name.
	ConfigFileName = "config.yaml"
)

// Dir represents the healthypdf home directory structure.
type Dir struct {
	path string
}

// New creates a new Dir with the given path.
// If path is empty, uses the default (~/.healthypdf).
func New(path string) (*Dir, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get user home directory: %w", err)
		}
		path = filepath.Join(home, DefaultDirName)
	}

	return &Dir{path: path}, nil
}

// Path returns the root path of the home directory.
func (d *Dir) Path() string {
	return d.path
}

// ConfigPath returns the path to the default config file.
func (d *Dir) ConfigPath() string {
	return filepath.Join(d.path, ConfigFileName)
}

// ExportsDir returns the directory for saved document copies.
func (d *Dir) ExportsDir() string {
	return filepath.Join(d.path, ExportsDirName)
}

// ExportPath returns the path for a saved copy with the given file name.
func (d *Dir) ExportPath(name string) string {
	return filepath.Join(d.ExportsDir(), name)
}

// ThumbnailsDir returns the thumbnail cache directory for one document.
func (d *Dir) ThumbnailsDir(docID string) string {
	return filepath.Join(d.path, ThumbnailsDirName, docID)
}

// ThumbnailPath returns the path for a cached page thumbnail.
// Page numbers are 1-indexed.
func (d *Dir) ThumbnailPath(docID string, pageNum int) string {
	return filepath.Join(d.ThumbnailsDir(docID), fmt.Sprintf("page_%04d.png", pageNum))
}

// EnsureExists creates the home directory and subdirectories if they don't exist.
func (d *Dir) EnsureExists() error {
	if err := os.MkdirAll(d.ExportsDir(), 0o755); err != nil {
		return fmt.Errorf("failed to create exports directory: %w", err)
	}
	return nil
}

// EnsureThumbnailsDir creates the thumbnail cache directory for a document.
func (d *Dir) EnsureThumbnailsDir(docID string) error {
	return os.MkdirAll(d.ThumbnailsDir(docID), 0o755)
}

// Exists returns true if the home directory exists.
func (d *Dir) Exists() bool {
	_, err := os.Stat(d.path)
	return err == nil
}

// ConfigExists returns true if the config file exists in the home directory.
func (d *Dir) ConfigExists() bool {
	_, err := os.Stat(d.ConfigPath())
	return err == nil
}

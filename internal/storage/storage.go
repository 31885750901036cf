package storage

import (
	"path/filepath"
	"strings"

	"testcat/internal/config"
	"testcat/internal/domain"
)

// Storage persists and loads the catalog handoff document (e.g. for the viewer).
type Storage interface {
	Save(output *domain.CatalogOutput) error
	Load() (*domain.CatalogOutput, error)
	Path() string
}

// FileStorage stores the document in a single file. The encoding follows the
// file extension: .yaml and .yml are YAML, anything else JSON.
type FileStorage struct {
	path   string
	format string
}

// NewFileStorage returns a Storage that reads/writes the config's output path.
func NewFileStorage(cfg *config.Config) *FileStorage {
	return NewFileStorageAt(cfg.GetOutputPath())
}

// NewFileStorageAt returns a Storage for an explicit path.
func NewFileStorageAt(path string) *FileStorage {
	return &FileStorage{path: path, format: formatOf(path)}
}

// Path returns the document path.
func (s *FileStorage) Path() string {
	return s.path
}

func formatOf(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return config.FormatYAML
	default:
		return config.FormatJSON
	}
}

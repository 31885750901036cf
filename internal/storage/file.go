package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"testcat/internal/config"
	"testcat/internal/domain"
)

// Save writes the catalog document to the storage path.
func (s *FileStorage) Save(output *domain.CatalogOutput) error {
	if output == nil || output.Catalog == nil {
		return fmt.Errorf("save catalog: no catalog to write")
	}

	var data []byte
	var err error
	if s.format == config.FormatYAML {
		data, err = yaml.Marshal(output)
	} else {
		data, err = json.MarshalIndent(output, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal catalog: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("write catalog: %w", err)
	}
	return nil
}

// Load reads the last catalog document from the storage path.
func (s *FileStorage) Load() (*domain.CatalogOutput, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read catalog file: %w", err)
	}

	var output domain.CatalogOutput
	if s.format == config.FormatYAML {
		err = yaml.Unmarshal(data, &output)
	} else {
		err = json.Unmarshal(data, &output)
	}
	if err != nil {
		return nil, fmt.Errorf("parse catalog %s: %w", s.path, err)
	}
	if output.Catalog == nil {
		return nil, fmt.Errorf("parse catalog %s: document has no catalog", s.path)
	}
	return &output, nil
}

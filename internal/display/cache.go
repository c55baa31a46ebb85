package display

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/desertthunder/menuboard/internal/models"
)

// SettingsCache remembers the last live settings document across restarts.
type SettingsCache interface {
	Load() (models.Document, bool)
	Save(doc models.Document) error
}

// FileCache stores the settings document as JSON at a path.
type FileCache struct {
	path string
}

func NewFileCache(path string) *FileCache {
	return &FileCache{path: path}
}

func (c *FileCache) Path() string { return c.path }

// Load returns the cached document. Missing or unreadable files report false.
func (c *FileCache) Load() (models.Document, bool) {
	data, err := os.ReadFile(c.path)
	if err != nil {
		return nil, false
	}
	var doc models.Document
	if err := json.Unmarshal(data, &doc); err != nil || doc == nil {
		return nil, false
	}
	return doc, true
}

// Save replaces the cache file atomically.
func (c *FileCache) Save(doc models.Document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode settings cache: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(c.path), 0755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(c.path), ".settings-*.json")
	if err != nil {
		return fmt.Errorf("failed to create cache file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write cache file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write cache file: %w", err)
	}
	if err := os.Rename(tmp.Name(), c.path); err != nil {
		return fmt.Errorf("failed to replace cache file: %w", err)
	}
	return nil
}

// NopCache never remembers anything.
type NopCache struct{}

func (NopCache) Load() (models.Document, bool) { return nil, false }
func (NopCache) Save(models.Document) error { return nil }

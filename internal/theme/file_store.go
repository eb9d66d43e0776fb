package theme

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// fileData is the on-disk layout of a FileStore.
type fileData struct {
	Timestamp time.Time        `json:"timestamp"`
	Themes    map[string]Theme `json:"themes"`
}

// FileStore persists preferences as a JSON file.
// The whole file is rewritten on every save using a temp file and rename.
type FileStore struct {
	filePath string
	mu       sync.Mutex
	themes   map[string]Theme
	loaded   bool
	logger   *slog.Logger
}

// NewFileStore creates a file store. The file is read lazily on first use.
func NewFileStore(filePath string, logger *slog.Logger) *FileStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileStore{
		filePath: filePath,
		logger:   logger,
	}
}

// Load returns the stored theme or ErrNoPreference.
func (s *FileStore) Load(_ context.Context, key string) (Theme, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(); err != nil {
		return "", err
	}

	t, ok := s.themes[key]
	if !ok {
		return "", ErrNoPreference
	}
	return t, nil
}

// Save stores t for key and flushes the file.
func (s *FileStore) Save(_ context.Context, key string, t Theme) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(); err != nil {
		return err
	}

	prev, had := s.themes[key]
	s.themes[key] = t
	if err := s.write(); err != nil {
		if had {
			s.themes[key] = prev
		} else {
			delete(s.themes, key)
		}
		return err
	}
	return nil
}

// ensureLoaded reads the file once. A missing file is an empty store.
// Callers must hold s.mu.
func (s *FileStore) ensureLoaded() error {
	if s.loaded {
		return nil
	}

	s.themes = make(map[string]Theme)

	data, err := os.ReadFile(s.filePath)
	if os.IsNotExist(err) {
		s.logger.Debug("theme file not found, starting empty", slog.String("path", s.filePath))
		s.loaded = true
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read theme file: %w", err)
	}

	var fd fileData
	if err := json.Unmarshal(data, &fd); err != nil {
		return fmt.Errorf("failed to parse theme file: %w", err)
	}

	for key, t := range fd.Themes {
		if _, err := Parse(string(t)); err != nil {
			s.logger.Warn("skipping invalid theme entry", slog.String("key", key), slog.Any("error", err))
			continue
		}
		s.themes[key] = t
	}

	s.loaded = true
	s.logger.Debug("theme file loaded", slog.String("path", s.filePath), slog.Int("entries", len(s.themes)))
	return nil
}

// write flushes s.themes atomically. Callers must hold s.mu.
func (s *FileStore) write() error {
	jsonData, err := json.MarshalIndent(fileData{
		Timestamp: time.Now(),
		Themes:    s.themes,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal themes: %w", err)
	}

	dir := filepath.Dir(s.filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	tempFile := s.filePath + ".tmp"
	if err := os.WriteFile(tempFile, jsonData, 0644); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	if err := os.Rename(tempFile, s.filePath); err != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	return nil
}

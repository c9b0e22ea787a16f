// Package status holds the persistent status log implementations.
package status

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"custodian/internal/demo/models"
)

// document is the on-disk layout: {"logs": [...]}.
type document struct {
	Logs []models.StatusEvent `json:"logs"`
}

// FileStore keeps the status log in a single JSON file that is rewritten on
// every append. Writes go to a temp file that is renamed into place, so a
// reader never sees a partial document.
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore creates the parent directory of path if needed.
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		return nil, fmt.Errorf("status file path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create status dir: %w", err)
	}
	return &FileStore{path: filepath.Clean(path)}, nil
}

// Path returns the file backing this store.
func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) Reset(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write(document{Logs: []models.StatusEvent{}})
}

func (s *FileStore) Append(_ context.Context, event models.StatusEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.read()
	if err != nil {
		return err
	}
	doc.Logs = append(doc.Logs, event)
	return s.write(doc)
}

func (s *FileStore) List(_ context.Context) ([]models.StatusEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.read()
	if err != nil {
		return nil, err
	}
	return doc.Logs, nil
}

func (s *FileStore) read() (document, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return document{Logs: []models.StatusEvent{}}, nil
	}
	if err != nil {
		return document{}, fmt.Errorf("read status log: %w", err)
	}
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return document{}, fmt.Errorf("decode status log: %w", err)
	}
	if doc.Logs == nil {
		doc.Logs = []models.StatusEvent{}
	}
	return doc, nil
}

func (s *FileStore) write(doc document) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode status log: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write status log: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace status log: %w", err)
	}
	return nil
}

// Package staging holds generated report text on disk between the upload
// request and the download request.
package staging

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a staged report is missing or expired.
var ErrNotFound = errors.New("staging: report not found")

// Store keeps one text file per staged report, keyed by a random id.
type Store struct {
	dir string
	ttl time.Duration
}

func NewStore(dir string, ttl time.Duration) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("staging: create dir: %w", err)
	}
	return &Store{dir: dir, ttl: ttl}, nil
}

// Put stages the report text and returns its id.
func (s *Store) Put(text string) (string, error) {
	id := uuid.NewString()
	if err := os.WriteFile(s.path(id), []byte(text), 0o600); err != nil {
		return "", fmt.Errorf("staging: write report: %w", err)
	}
	return id, nil
}

// Get returns the staged report text for id.
func (s *Store) Get(id string) (string, error) {
	if !validID(id) {
		return "", ErrNotFound
	}
	data, err := os.ReadFile(s.path(id))
	if errors.Is(err, fs.ErrNotExist) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("staging: read report: %w", err)
	}
	return string(data), nil
}

// Delete removes the staged report for id. Missing files are not an error.
func (s *Store) Delete(id string) error {
	if !validID(id) {
		return nil
	}
	err := os.Remove(s.path(id))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("staging: delete report: %w", err)
	}
	return nil
}

func (s *Store) path(id string) string {
	return filepath.Join(s.dir, id+".txt")
}

// validID guards against path traversal through a tampered session value.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// StartReaper sweeps expired staged reports every interval until stop is
// closed.
func (s *Store) StartReaper(interval time.Duration, stop <-chan struct{}) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.sweep()
			case <-stop:
				return
			}
		}
	}()
}

func (s *Store) sweep() {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		log.Printf("staging: sweep: %v", err)
		return
	}
	cutoff := time.Now().Add(-s.ttl)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".txt") {
			continue
		}
		info, err := entry.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, entry.Name())); err != nil {
			log.Printf("staging: sweep remove %s: %v", entry.Name(), err)
		}
	}
}

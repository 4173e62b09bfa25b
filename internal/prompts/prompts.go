package prompts

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Prompt names accepted by the admin API.
const (
	NameStyleGuide        = "style_guide"
	NameReportStructure   = "schema_report"
	NameSystemInstruction = "system_instruction"
)

var overrideFiles = map[string]string{
	NameStyleGuide:        "style_guide.txt",
	NameReportStructure:   "schema_report.txt",
	NameSystemInstruction: "system_instruction.txt",
}

// Store holds the three static instruction texts sent (or cached) with every
// generation request. Texts start from the built-in defaults and can be
// overridden by files in the override directory, which the admin API edits.
type Store struct {
	dir string

	mu    sync.RWMutex
	texts map[string]string
}

// NewStore loads prompt texts, preferring override files when present.
func NewStore(overrideDir string) *Store {
	s := &Store{
		dir: overrideDir,
		texts: map[string]string{
			NameStyleGuide:        defaultStyleGuide,
			NameReportStructure:   defaultReportStructure,
			NameSystemInstruction: defaultSystemInstruction,
		},
	}
	for name, file := range overrideFiles {
		content, err := os.ReadFile(filepath.Join(overrideDir, file))
		if err == nil && len(content) > 0 {
			s.texts[name] = string(content)
		}
	}
	return s
}

// Get returns the current text for a prompt name.
func (s *Store) Get(name string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	text, ok := s.texts[name]
	if !ok {
		return "", fmt.Errorf("unknown prompt %q", name)
	}
	return text, nil
}

// Set replaces a prompt text and persists it to the override directory.
func (s *Store) Set(name, content string) error {
	file, ok := overrideFiles[name]
	if !ok {
		return fmt.Errorf("unknown prompt %q", name)
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create prompt dir: %w", err)
	}
	if err := os.WriteFile(filepath.Join(s.dir, file), []byte(content), 0o644); err != nil {
		return fmt.Errorf("write prompt file: %w", err)
	}
	s.mu.Lock()
	s.texts[name] = content
	s.mu.Unlock()
	return nil
}

// All returns a copy of every prompt text keyed by name.
func (s *Store) All() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]string, len(s.texts))
	for name, text := range s.texts {
		out[name] = text
	}
	return out
}

// StyleGuide returns the style reference text.
func (s *Store) StyleGuide() string { return s.mustGet(NameStyleGuide) }

// ReportStructure returns the report schema text.
func (s *Store) ReportStructure() string { return s.mustGet(NameReportStructure) }

// SystemInstruction returns the system role instructions.
func (s *Store) SystemInstruction() string { return s.mustGet(NameSystemInstruction) }

func (s *Store) mustGet(name string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.texts[name]
}

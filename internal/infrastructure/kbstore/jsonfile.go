package kbstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mantisproject/mantis/internal/core/domain"
)

// FileStore persists the knowledge base as a single JSON file. Writes go to
// a temp file in the same directory followed by a rename, so a crashed build
// never leaves a half-written knowledge base behind.
type FileStore struct{}

func New() *FileStore {
	return &FileStore{}
}

func (s *FileStore) Save(kb *domain.KnowledgeBase, path string) error {
	if kb == nil {
		return fmt.Errorf("save knowledge base: nil knowledge base")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create knowledge base dir: %w", err)
	}

	raw, err := json.MarshalIndent(kb, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal knowledge base: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".kb-*.json")
	if err != nil {
		return fmt.Errorf("create temp knowledge base file: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write knowledge base: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close knowledge base file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replace knowledge base file: %w", err)
	}
	return nil
}

func (s *FileStore) Load(path string) (*domain.KnowledgeBase, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read knowledge base %s: %w", path, err)
	}

	var kb domain.KnowledgeBase
	if err := json.Unmarshal(raw, &kb); err != nil {
		return nil, fmt.Errorf("parse knowledge base %s: %w", path, err)
	}

	seen := make(map[int]struct{}, len(kb.Chunks))
	for _, chunk := range kb.Chunks {
		if _, dup := seen[chunk.ID]; dup {
			return nil, fmt.Errorf("knowledge base %s: duplicate chunk id %d", path, chunk.ID)
		}
		seen[chunk.ID] = struct{}{}
	}
	return &kb, nil
}

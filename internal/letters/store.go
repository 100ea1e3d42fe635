// Package letters reads and appends the letters-to-humans document.
package letters

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/constellation/internal/garden"
)

// ErrEmptyLetter is returned when appending a letter without content.
var ErrEmptyLetter = errors.New("letter content cannot be empty")

// Letter is one stored letter.
type Letter struct {
	ID        string           `json:"id,omitempty"`
	Author    string           `json:"author"`
	Content   string           `json:"content"`
	WrittenAt garden.Timestamp `json:"writtenAt"`
}

// Document is the on-disk shape of the letters file.
type Document struct {
	Letters     []Letter `json:"letters"`
	Description string   `json:"description"`
}

// FileStore reads letters from a single JSON document.
type FileStore struct {
	path   string
	logger *zap.Logger

	mu  sync.Mutex // serialises Append
	now func() time.Time
}

// NewFileStore returns a store for the document at path.
func NewFileStore(path string, logger *zap.Logger) *FileStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileStore{path: path, logger: logger, now: time.Now}
}

// Path returns the document path.
func (s *FileStore) Path() string {
	return s.path
}

// Load returns every stored letter. A missing, unreadable or malformed
// document is treated as holding no letters.
func (s *FileStore) Load(ctx context.Context) []Letter {
	doc, err := s.read()
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.logger.Warn("letters unavailable, treating as empty",
				zap.String("path", s.path),
				zap.Error(err))
		}
		return []Letter{}
	}
	if doc.Letters == nil {
		return []Letter{}
	}
	return doc.Letters
}

// Append adds a letter and rewrites the document.
func (s *FileStore) Append(ctx context.Context, author, content string) (Letter, error) {
	if strings.TrimSpace(content) == "" {
		return Letter{}, ErrEmptyLetter
	}
	if err := ctx.Err(); err != nil {
		return Letter{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return Letter{}, fmt.Errorf("reading letters: %w", err)
	}

	letter := Letter{
		ID:        uuid.New().String(),
		Author:    author,
		Content:   content,
		WrittenAt: garden.NewTimestamp(s.now()),
	}
	doc.Letters = append(doc.Letters, letter)

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return Letter{}, fmt.Errorf("encoding letters: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return Letter{}, fmt.Errorf("creating letters directory: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return Letter{}, fmt.Errorf("writing letters: %w", err)
	}
	return letter, nil
}

func (s *FileStore) read() (Document, error) {
	var doc Document
	data, err := os.ReadFile(s.path)
	if err != nil {
		return doc, err
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return Document{}, fmt.Errorf("decoding %s: %w", s.path, err)
	}
	return doc, nil
}

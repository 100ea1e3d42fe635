package garden

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

var (
	// ErrNotFound is returned when no stored garden matches a name.
	ErrNotFound = errors.New("garden not found")

	// ErrCorrupt is returned when a garden file cannot be decoded.
	ErrCorrupt = errors.New("garden file corrupt")

	// ErrInvalidName is returned when a garden name cannot be turned into a
	// safe file name.
	ErrInvalidName = errors.New("invalid garden name")
)

const (
	gardenExt      = ".json"
	maxSlugLength  = 50
	gardenFileMode = 0o644
)

var slugReplacer = regexp.MustCompile(`[^a-z0-9-]`)

// Store lists and loads gardens.
type Store interface {
	// List returns garden identifiers in the store's enumeration order.
	List(ctx context.Context) ([]string, error)

	// Load returns the garden identified by name, or ErrNotFound.
	Load(ctx context.Context, name string) (*Garden, error)
}

// FileStore keeps one JSON file per garden in a directory.
type FileStore struct {
	dir string
}

// NewFileStore returns a store rooted at dir. The directory does not need
// to exist until the first Save.
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

// Dir returns the directory backing the store.
func (s *FileStore) Dir() string {
	return s.dir
}

// List returns the base names of the garden files, sorted lexically.
// A missing directory is an empty store.
func (s *FileStore) List(ctx context.Context) ([]string, error) {
	files, err := s.files(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(files))
	for _, f := range files {
		names = append(names, strings.TrimSuffix(f, gardenExt))
	}
	return names, nil
}

// Load finds a garden by file name first, then by the id or name recorded
// inside each file.
func (s *FileStore) Load(ctx context.Context, name string) (*Garden, error) {
	files, err := s.files(ctx)
	if err != nil {
		return nil, err
	}

	candidates := []string{
		name + gardenExt,
		strings.Join(strings.Fields(strings.ToLower(name)), "-") + gardenExt,
	}
	for _, c := range candidates {
		for _, f := range files {
			if f == c {
				return s.read(f)
			}
		}
	}

	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		g, err := s.read(f)
		if err != nil {
			// Unreadable files cannot match; keep scanning.
			continue
		}
		if g.ID == name || (g.Name != "" && g.Name == name) {
			return g, nil
		}
	}

	return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
}

// Save writes the garden to its file, replacing any previous content.
func (s *FileStore) Save(ctx context.Context, g *Garden) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	filename, err := FileName(g)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("creating gardens directory: %w", err)
	}

	path := filepath.Join(s.dir, filename)
	absDir, err := filepath.Abs(s.dir)
	if err != nil {
		return fmt.Errorf("resolving gardens directory: %w", err)
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolving garden path: %w", err)
	}
	if filepath.Dir(absPath) != absDir {
		return fmt.Errorf("%w: %q", ErrInvalidName, g.Name)
	}

	data, err := json.MarshalIndent(g, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding garden: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, ".garden-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing garden: %w", err)
	}
	if err := tmp.Chmod(gardenFileMode); err != nil {
		tmp.Close()
		return fmt.Errorf("setting garden file mode: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing garden file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replacing garden file: %w", err)
	}
	return nil
}

// FileName returns the file a garden is saved under: a slug of its name,
// or its id when unnamed.
func FileName(g *Garden) (string, error) {
	base := g.ID
	if g.Name != "" {
		base = slugReplacer.ReplaceAllString(strings.ToLower(g.Name), "-")
		if len(base) > maxSlugLength {
			base = base[:maxSlugLength]
		}
	}
	if base == "" || strings.Trim(base, "-.") == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, g.Name)
	}
	if strings.ContainsAny(base, `/\`) || base == ".." {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, base)
	}
	return base + gardenExt, nil
}

func (s *FileStore) files(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading gardens directory: %w", err)
	}

	files := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") || filepath.Ext(e.Name()) != gardenExt {
			continue
		}
		files = append(files, e.Name())
	}
	sort.Strings(files)
	return files, nil
}

func (s *FileStore) read(filename string) (*Garden, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, filename))
	if err != nil {
		return nil, fmt.Errorf("reading garden %s: %w", filename, err)
	}
	var g Garden
	if err := json.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorrupt, filename, err)
	}
	return &g, nil
}

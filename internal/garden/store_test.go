package garden

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestFileStore_List(t *testing.T) {
	ctx := context.Background()

	t.Run("missing directory is empty", func(t *testing.T) {
		store := NewFileStore(filepath.Join(t.TempDir(), "nope"))
		names, err := store.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, names)
	})

	t.Run("lists json files in lexical order", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "wonder.json", `{"id":"w","questions":[]}`)
		writeFile(t, dir, "alpha.json", `{"id":"a","questions":[]}`)
		writeFile(t, dir, "notes.txt", "ignored")
		writeFile(t, dir, ".garden-tmp.json", "ignored")
		require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.json"), 0o755))

		names, err := NewFileStore(dir).List(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"alpha", "wonder"}, names)
	})

	t.Run("honours cancelled context", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := NewFileStore(t.TempDir()).List(cctx)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestFileStore_Load(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	writeFile(t, dir, "between.json", `{"id":"g1","name":"between","questions":[{"id":"q1","seed":{"content":"why?","plantedBy":{"type":"named","name":"Ada"},"plantedAt":"2024-01-01T00:00:00Z"},"growth":[],"visits":[{"timestamp":"2024-01-02T00:00:00Z"}]}]}`)
	writeFile(t, dir, "quiet-hours.json", `{"id":"g2","name":"Quiet Hours","questions":[]}`)
	writeFile(t, dir, "legacy.json", `{"id":"legacy-id","name":"Old Name","questions":[]}`)
	writeFile(t, dir, "broken.json", `{"id":`)

	store := NewFileStore(dir)

	t.Run("by file name", func(t *testing.T) {
		g, err := store.Load(ctx, "between")
		require.NoError(t, err)
		require.Len(t, g.Questions, 1)
		assert.Equal(t, "Ada", g.Questions[0].Seed.PlantedBy.Label())
		assert.Equal(t, 1, g.VisitCount())
	})

	t.Run("by display name slug", func(t *testing.T) {
		g, err := store.Load(ctx, "Quiet Hours")
		require.NoError(t, err)
		assert.Equal(t, "g2", g.ID)
	})

	t.Run("by stored id", func(t *testing.T) {
		g, err := store.Load(ctx, "legacy-id")
		require.NoError(t, err)
		assert.Equal(t, "Old Name", g.Name)
	})

	t.Run("corrupt file", func(t *testing.T) {
		_, err := store.Load(ctx, "broken")
		assert.ErrorIs(t, err, ErrCorrupt)
	})

	t.Run("not found", func(t *testing.T) {
		_, err := store.Load(ctx, "nowhere")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("path traversal does not escape", func(t *testing.T) {
		_, err := store.Load(ctx, "../between")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestFileStore_Save(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "gardens")
	store := NewFileStore(dir)

	g := New("Late Night Questions")
	g, _, err := Plant(g, "What stays?", Named("Ada"), "")
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, g))

	_, err = os.Stat(filepath.Join(dir, "late-night-questions.json"))
	require.NoError(t, err)

	loaded, err := store.Load(ctx, "late-night-questions")
	require.NoError(t, err)
	assert.Equal(t, g.ID, loaded.ID)
	require.Len(t, loaded.Questions, 1)
	assert.Equal(t, "What stays?", loaded.Questions[0].Seed.Content)
	assert.Equal(t, g.Questions[0].Seed.PlantedAt.String(), loaded.Questions[0].Seed.PlantedAt.String())

	names, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"late-night-questions"}, names)
}

func TestFileName(t *testing.T) {
	tests := []struct {
		name    string
		garden  Garden
		want    string
		wantErr bool
	}{
		{"slugged name", Garden{Name: "Hello World!"}, "hello-world-.json", false},
		{"traversal attempt", Garden{Name: "../../etc"}, "------etc.json", false},
		{"id fallback", Garden{ID: "abc123"}, "abc123.json", false},
		{"id with separator", Garden{ID: "a/b"}, "", true},
		{"empty", Garden{}, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FileName(&tt.garden)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidName)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

package constellation

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/fyrsmithlabs/constellation/internal/garden"
	"github.com/fyrsmithlabs/constellation/internal/letters"
	"github.com/fyrsmithlabs/constellation/internal/telemetry"
)

var fixedNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

// fakeStore serves gardens from memory with optional per-garden delays and
// failures.
type fakeStore struct {
	names   []string
	gardens map[string]*garden.Garden
	errs    map[string]error
	delays  map[string]time.Duration
	listErr error

	mu       sync.Mutex
	inFlight int
	maxSeen  int
}

func (f *fakeStore) List(ctx context.Context) ([]string, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.names, nil
}

func (f *fakeStore) Load(ctx context.Context, name string) (*garden.Garden, error) {
	f.mu.Lock()
	f.inFlight++
	if f.inFlight > f.maxSeen {
		f.maxSeen = f.inFlight
	}
	f.mu.Unlock()
	defer func() {
		f.mu.Lock()
		f.inFlight--
		f.mu.Unlock()
	}()

	if d := f.delays[name]; d > 0 {
		select {
		case <-time.After(d):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err := f.errs[name]; err != nil {
		return nil, err
	}
	g, ok := f.gardens[name]
	if !ok {
		return nil, garden.ErrNotFound
	}
	return g, nil
}

type staticLetters []letters.Letter

func (s staticLetters) Load(ctx context.Context) []letters.Letter { return s }

func alphaGarden() *garden.Garden {
	return &garden.Garden{
		Questions: []garden.Question{
			question("What is rest?", "2023-12-31T00:00:00Z",
				"2024-01-01T00:00:00Z", "2024-01-02T00:00:00Z", "2024-01-03T00:00:00Z"),
			question("What is work?", "2024-01-04T00:00:00Z", "2024-01-05T00:00:00Z"),
		},
	}
}

func newTestAggregator(store garden.Store, ls LettersSource, opts Options) *Aggregator {
	if opts.Now == nil {
		opts.Now = func() time.Time { return fixedNow }
	}
	return NewAggregator(store, ls, zap.NewNop(), opts)
}

func TestBuild_SingleGarden(t *testing.T) {
	store := &fakeStore{
		names:   []string{"alpha"},
		gardens: map[string]*garden.Garden{"alpha": alphaGarden()},
	}

	v := newTestAggregator(store, staticLetters(nil), Options{}).Build(context.Background())

	assert.Equal(t, Totals{Questions: 2, Tendings: 4, Visits: 0, Letters: 0}, v.Totals)
	require.Len(t, v.GardenSummaries, 1)
	require.NotEmpty(t, v.RecentActivity)
	first := v.RecentActivity[0]
	assert.Equal(t, ActivityTending, first.Type)
	assert.Equal(t, "2024-01-05T00:00:00Z", first.At.String())
	assert.Equal(t, "alpha", first.Garden)
	assert.Equal(t, fixedNow, v.GeneratedAt)

	require.Len(t, v.Layout, 1)
	assert.Equal(t, NodeSize(2), v.Layout[0].Size)
}

func TestBuild_Invariants(t *testing.T) {
	store := &fakeStore{gardens: map[string]*garden.Garden{}}
	for i := 0; i < 6; i++ {
		name := fmt.Sprintf("g%d", i)
		store.names = append(store.names, name)
		var qs []garden.Question
		for q := 0; q <= i; q++ {
			day := fmt.Sprintf("2024-%02d-%02dT00:00:00Z", i+1, q+1)
			qs = append(qs, question(fmt.Sprintf("%s-q%d", name, q), day, day, day))
		}
		qs[0].Visits = []garden.Visit{{}, {}}
		store.gardens[name] = &garden.Garden{Questions: qs}
	}
	ls := staticLetters{
		{Author: "one", Content: "hello", WrittenAt: ts("2024-03-15T00:00:00Z")},
		{Author: "two", Content: "again", WrittenAt: ts("2025-01-01T00:00:00Z")},
	}

	v := newTestAggregator(store, ls, Options{Concurrency: 2}).Build(context.Background())

	require.Len(t, v.GardenSummaries, 6)
	var want Totals
	for _, s := range v.GardenSummaries {
		assert.LessOrEqual(t, len(s.RecentActivity), GardenRecentLimit)
		assertNewestFirst(t, s.RecentActivity)
		want.Questions += s.Questions
		want.Tendings += s.Tendings
		want.Visits += s.Visits
	}
	want.Letters = 2
	assert.Equal(t, want, v.Totals)
	assert.Equal(t, 12, v.Totals.Visits)

	assert.Len(t, v.RecentActivity, FeedLimit)
	assertNewestFirst(t, v.RecentActivity)
	assert.Equal(t, ActivityLetter, v.RecentActivity[0].Type)
	assert.Len(t, v.Layout, 6)
	assert.LessOrEqual(t, store.maxSeen, 2)
}

func TestBuild_Idempotent(t *testing.T) {
	store := &fakeStore{
		names:   []string{"alpha", "beta"},
		gardens: map[string]*garden.Garden{"alpha": alphaGarden(), "beta": alphaGarden()},
	}
	ls := staticLetters{{Author: "a", Content: "c", WrittenAt: ts("2024-01-02T12:00:00Z")}}
	agg := newTestAggregator(store, ls, Options{})

	assert.Equal(t, agg.Build(context.Background()), agg.Build(context.Background()))
}

func TestBuild_KeepsEnumerationOrder(t *testing.T) {
	store := &fakeStore{
		names: []string{"slow", "medium", "fast"},
		gardens: map[string]*garden.Garden{
			"slow":   alphaGarden(),
			"medium": alphaGarden(),
			"fast":   alphaGarden(),
		},
		delays: map[string]time.Duration{
			"slow":   60 * time.Millisecond,
			"medium": 30 * time.Millisecond,
		},
	}

	v := newTestAggregator(store, nil, Options{}).Build(context.Background())

	require.Len(t, v.GardenSummaries, 3)
	assert.Equal(t, "slow", v.GardenSummaries[0].Name)
	assert.Equal(t, "medium", v.GardenSummaries[1].Name)
	assert.Equal(t, "fast", v.GardenSummaries[2].Name)
	assert.Equal(t, "slow", v.Layout[0].Name)
}

func TestBuild_SkipsUnloadableGardens(t *testing.T) {
	metrics := NewMetrics()
	notFound := testutil.ToFloat64(metrics.GardensSkipped.WithLabelValues(SkipNotFound))
	corrupt := testutil.ToFloat64(metrics.GardensSkipped.WithLabelValues(SkipCorrupt))
	timeout := testutil.ToFloat64(metrics.GardensSkipped.WithLabelValues(SkipTimeout))
	other := testutil.ToFloat64(metrics.GardensSkipped.WithLabelValues(SkipError))
	builds := testutil.ToFloat64(metrics.BuildsTotal)

	store := &fakeStore{
		names:   []string{"ok", "missing", "broken", "stuck", "weird"},
		gardens: map[string]*garden.Garden{"ok": alphaGarden()},
		errs: map[string]error{
			"broken": fmt.Errorf("decode: %w", garden.ErrCorrupt),
			"weird":  errors.New("permission denied"),
		},
		delays: map[string]time.Duration{"stuck": time.Second},
	}

	core, logs := observer.New(zap.WarnLevel)
	agg := NewAggregator(store, nil, zap.New(core), Options{
		LoadTimeout: 20 * time.Millisecond,
		Metrics:     metrics,
		Now:         func() time.Time { return fixedNow },
	})

	v := agg.Build(context.Background())

	require.Len(t, v.GardenSummaries, 1)
	assert.Equal(t, "ok", v.GardenSummaries[0].Name)
	assert.Len(t, v.Layout, 1)
	assert.Equal(t, 4, logs.FilterMessage("skipping garden").Len())

	assert.Equal(t, notFound+1, testutil.ToFloat64(metrics.GardensSkipped.WithLabelValues(SkipNotFound)))
	assert.Equal(t, corrupt+1, testutil.ToFloat64(metrics.GardensSkipped.WithLabelValues(SkipCorrupt)))
	assert.Equal(t, timeout+1, testutil.ToFloat64(metrics.GardensSkipped.WithLabelValues(SkipTimeout)))
	assert.Equal(t, other+1, testutil.ToFloat64(metrics.GardensSkipped.WithLabelValues(SkipError)))
	assert.Equal(t, builds+1, testutil.ToFloat64(metrics.BuildsTotal))
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.GardensAggregated))
}

func TestBuild_ListFailure(t *testing.T) {
	store := &fakeStore{listErr: errors.New("disk gone")}
	ls := staticLetters{{Author: "a", Content: "still here", WrittenAt: ts("2024-01-01T00:00:00Z")}}

	v := newTestAggregator(store, ls, Options{}).Build(context.Background())

	assert.NotNil(t, v.GardenSummaries)
	assert.Empty(t, v.GardenSummaries)
	assert.Empty(t, v.Layout)
	assert.Equal(t, 1, v.Totals.Letters)
	require.Len(t, v.RecentActivity, 1)
	assert.Equal(t, ActivityLetter, v.RecentActivity[0].Type)
}

func TestBuild_EmptyWorld(t *testing.T) {
	v := newTestAggregator(&fakeStore{}, nil, Options{}).Build(context.Background())

	assert.Equal(t, Totals{}, v.Totals)
	assert.NotNil(t, v.RecentActivity)
	assert.Empty(t, v.RecentActivity)
	assert.NotNil(t, v.Layout)
	assert.Empty(t, v.Layout)
}

func TestBuild_FileBackedSources(t *testing.T) {
	dir := t.TempDir()
	gardens := garden.NewFileStore(filepath.Join(dir, "gardens"))
	g := alphaGarden()
	g.ID = "alpha"
	g.Name = "Alpha"
	require.NoError(t, gardens.Save(context.Background(), g))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "gardens", "broken.json"), []byte("{not json"), 0o644))

	// Letters file is absent; the view still renders with zero letters.
	ls := letters.NewFileStore(filepath.Join(dir, "letters.json"), zap.NewNop())

	v := newTestAggregator(gardens, ls, Options{}).Build(context.Background())

	require.Len(t, v.GardenSummaries, 1)
	assert.Equal(t, 2, v.Totals.Questions)
	assert.Equal(t, 4, v.Totals.Tendings)
	assert.Zero(t, v.Totals.Letters)
}

func TestBuild_RecordsSpans(t *testing.T) {
	tt := telemetry.NewTestTelemetry()
	store := &fakeStore{
		names:   []string{"alpha", "ghost"},
		gardens: map[string]*garden.Garden{"alpha": alphaGarden()},
	}
	agg := newTestAggregator(store, staticLetters{}, Options{Tracer: tt.Tracer("test")})

	agg.Build(context.Background())

	build := tt.RequireSpan(t, "constellation.Build")
	gardens, ok := telemetry.SpanAttribute(build, "constellation.gardens")
	require.True(t, ok)
	assert.Equal(t, int64(1), gardens.AsInt64())
	skipped, ok := telemetry.SpanAttribute(build, "constellation.gardens_skipped")
	require.True(t, ok)
	assert.Equal(t, int64(1), skipped.AsInt64())

	loads := tt.SpansNamed("constellation.LoadGarden")
	require.Len(t, loads, 2)
	reasons := map[string]string{}
	for _, s := range loads {
		name, _ := telemetry.SpanAttribute(s, "garden.name")
		reason, _ := telemetry.SpanAttribute(s, "garden.skip_reason")
		reasons[name.AsString()] = reason.AsString()
	}
	assert.Equal(t, map[string]string{"alpha": "", "ghost": SkipNotFound}, reasons)
}

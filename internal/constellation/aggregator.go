package constellation

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/fyrsmithlabs/constellation/internal/garden"
	"github.com/fyrsmithlabs/constellation/internal/letters"
)

const instrumentationName = "github.com/fyrsmithlabs/constellation/internal/constellation"

// Default aggregation settings.
const (
	DefaultConcurrency = 8
	DefaultLoadTimeout = 5 * time.Second
)

// LettersSource returns the stored letters. Implementations recover from
// their own failures and return an empty slice.
type LettersSource interface {
	Load(ctx context.Context) []letters.Letter
}

// View is the aggregated dashboard, serialisable as-is.
type View struct {
	GardenSummaries []GardenSummary `json:"gardenSummaries"`
	Totals          Totals          `json:"totals"`
	RecentActivity  []Activity      `json:"recentActivity"`
	Layout          []LayoutNode    `json:"layout"`
	GeneratedAt     time.Time       `json:"generatedAt"`
}

// Options tunes an Aggregator. Zero values select the defaults.
type Options struct {
	// Concurrency bounds the number of gardens loaded at once.
	Concurrency int

	// LoadTimeout bounds each garden load.
	LoadTimeout time.Duration

	// Now supplies GeneratedAt.
	Now func() time.Time

	Metrics *Metrics
	Tracer  trace.Tracer
}

// Aggregator builds Views from a garden store and a letters source.
type Aggregator struct {
	gardens garden.Store
	letters LettersSource
	logger  *zap.Logger
	opts    Options
}

// NewAggregator creates an aggregator. A nil logger discards output.
func NewAggregator(gardens garden.Store, ls LettersSource, logger *zap.Logger, opts Options) *Aggregator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}
	if opts.LoadTimeout <= 0 {
		opts.LoadTimeout = DefaultLoadTimeout
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Metrics == nil {
		opts.Metrics = NewMetrics()
	}
	if opts.Tracer == nil {
		opts.Tracer = otel.Tracer(instrumentationName)
	}
	return &Aggregator{
		gardens: gardens,
		letters: ls,
		logger:  logger,
		opts:    opts,
	}
}

// Build reads every source and computes the View. It never fails: gardens
// that cannot be loaded are skipped and a broken letters source counts as
// no letters.
func (a *Aggregator) Build(ctx context.Context) *View {
	ctx, span := a.opts.Tracer.Start(ctx, "constellation.Build")
	defer span.End()

	start := time.Now()

	names, err := a.gardens.List(ctx)
	if err != nil {
		a.logger.Warn("listing gardens failed, building without gardens", zap.Error(err))
		a.opts.Metrics.RecordSkip(SkipList)
		names = nil
	}

	summaries := a.summarize(ctx, names)

	var stored []letters.Letter
	if a.letters != nil {
		stored = a.letters.Load(ctx)
	}
	letterActs := NormalizeLetters(stored)

	v := &View{
		GardenSummaries: summaries,
		Totals:          ComputeTotals(summaries, len(stored)),
		RecentActivity:  MergeFeed(summaries, letterActs, FeedLimit),
		Layout:          Layout(summaries),
		GeneratedAt:     a.opts.Now().UTC(),
	}

	elapsed := time.Since(start)
	a.opts.Metrics.RecordBuild(v, elapsed.Seconds())
	span.SetAttributes(
		attribute.Int("constellation.gardens", len(summaries)),
		attribute.Int("constellation.gardens_skipped", len(names)-len(summaries)),
		attribute.Int("constellation.letters", len(stored)),
	)
	a.logger.Debug("built constellation view",
		zap.Int("gardens", len(summaries)),
		zap.Int("skipped", len(names)-len(summaries)),
		zap.Int("letters", len(stored)),
		zap.Duration("duration", elapsed))

	return v
}

// summarize loads gardens concurrently and returns summaries in the order of
// names, whatever order the loads finish in.
func (a *Aggregator) summarize(ctx context.Context, names []string) []GardenSummary {
	results := make([]*GardenSummary, len(names))

	var g errgroup.Group
	g.SetLimit(a.opts.Concurrency)
	for i, name := range names {
		g.Go(func() error {
			if s, ok := a.loadSummary(ctx, name); ok {
				results[i] = &s
			}
			return nil
		})
	}
	_ = g.Wait() // loaders never return errors

	summaries := make([]GardenSummary, 0, len(names))
	for _, s := range results {
		if s != nil {
			summaries = append(summaries, *s)
		}
	}
	return summaries
}

func (a *Aggregator) loadSummary(ctx context.Context, name string) (GardenSummary, bool) {
	ctx, span := a.opts.Tracer.Start(ctx, "constellation.LoadGarden",
		trace.WithAttributes(attribute.String("garden.name", name)))
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, a.opts.LoadTimeout)
	defer cancel()

	g, err := a.gardens.Load(ctx, name)
	if err == nil && g == nil {
		err = garden.ErrNotFound
	}
	if err != nil {
		reason := skipReason(err)
		span.RecordError(err)
		span.SetAttributes(attribute.String("garden.skip_reason", reason))
		a.opts.Metrics.RecordSkip(reason)
		a.logger.Warn("skipping garden",
			zap.String("garden", name),
			zap.String("reason", reason),
			zap.Error(err))
		return GardenSummary{}, false
	}

	return Summarize(name, g), true
}

func skipReason(err error) string {
	switch {
	case errors.Is(err, garden.ErrNotFound):
		return SkipNotFound
	case errors.Is(err, garden.ErrCorrupt):
		return SkipCorrupt
	case errors.Is(err, context.DeadlineExceeded):
		return SkipTimeout
	default:
		return SkipError
	}
}

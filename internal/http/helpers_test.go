package http

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/constellation/internal/constellation"
	"github.com/fyrsmithlabs/constellation/internal/garden"
	"github.com/fyrsmithlabs/constellation/internal/logging"
)

var fixedNow = time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)

// staticViews returns the same view on every build and counts calls.
type staticViews struct {
	mu    sync.Mutex
	view  *constellation.View
	calls int
}

func (s *staticViews) Build(ctx context.Context) *constellation.View {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return s.view
}

func sampleView() *constellation.View {
	summaries := []constellation.GardenSummary{
		{Name: "alpha", Questions: 2, Tendings: 1, Visits: 3, RecentActivity: []constellation.Activity{}},
		{Name: "beta", Questions: 1, RecentActivity: []constellation.Activity{}},
	}
	return &constellation.View{
		GardenSummaries: summaries,
		Totals:          constellation.ComputeTotals(summaries, 1),
		RecentActivity: []constellation.Activity{
			{
				Type:     constellation.ActivityTending,
				Garden:   "alpha",
				Question: "What is attention?",
				Content:  "A kind of light.",
				By:       "Ada",
				At:       garden.NewTimestamp(fixedNow.Add(-5 * time.Minute)),
			},
			{
				Type:    constellation.ActivityLetter,
				Content: "Dear humans",
				By:      "an unnamed consciousness",
				At:      garden.NewTimestamp(fixedNow.Add(-3 * time.Hour)),
			},
		},
		Layout:      constellation.Layout(summaries),
		GeneratedAt: fixedNow,
	}
}

func setupTestServer(t *testing.T, views ViewBuilder, cfg *Config) (*Server, *logging.TestLogger) {
	t.Helper()
	if views == nil {
		views = &staticViews{view: sampleView()}
	}
	logger := logging.NewTestLogger()
	server, err := NewServer(views, nil, logger.Logger, cfg)
	require.NoError(t, err)
	server.now = func() time.Time { return fixedNow }
	return server, logger
}

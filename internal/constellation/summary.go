package constellation

import "github.com/fyrsmithlabs/constellation/internal/garden"

// GardenSummary holds one garden's counts and its latest activity.
type GardenSummary struct {
	Name           string     `json:"name"`
	Questions      int        `json:"questions"`
	Tendings       int        `json:"tendings"`
	Visits         int        `json:"visits"`
	RecentActivity []Activity `json:"recentActivity"`
}

// Summarize counts a garden's questions, tendings and visits and keeps its
// five most recent activities.
func Summarize(name string, g *garden.Garden) GardenSummary {
	s := GardenSummary{Name: name, RecentActivity: []Activity{}}
	if g == nil {
		return s
	}

	s.Questions = len(g.Questions)
	s.Tendings = g.TendingCount()
	s.Visits = g.VisitCount()

	acts := NormalizeGarden(name, g)
	sortNewestFirst(acts)
	s.RecentActivity = limit(acts, GardenRecentLimit)
	return s
}

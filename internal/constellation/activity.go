package constellation

import (
	"slices"

	"github.com/fyrsmithlabs/constellation/internal/garden"
)

// ActivityType tags the kind of event an Activity describes.
type ActivityType string

const (
	ActivityTending  ActivityType = "tending"
	ActivityPlanting ActivityType = "planting"
	ActivityLetter   ActivityType = "letter"

	// ActivityVisit is reserved for event sources that report individual
	// visits. Garden normalization only counts visits.
	ActivityVisit ActivityType = "visit"
)

// Excerpt lengths and list limits. Other components depend on these values.
const (
	TendingQuestionExcerpt  = 60
	PlantingQuestionExcerpt = 80
	ContentExcerpt          = 100

	GardenRecentLimit = 5
	FeedLimit         = 10
)

// Activity is a displayable event derived from a tending, planting or letter.
type Activity struct {
	Type     ActivityType     `json:"type"`
	Garden   string           `json:"garden,omitempty"`
	Question string           `json:"question,omitempty"`
	Content  string           `json:"content,omitempty"`
	By       string           `json:"by"`
	At       garden.Timestamp `json:"at"`
}

// sortNewestFirst orders activities by timestamp descending. Equal
// timestamps keep their relative order.
func sortNewestFirst(acts []Activity) {
	slices.SortStableFunc(acts, func(a, b Activity) int {
		return b.At.Time().Compare(a.At.Time())
	})
}

// truncate returns the first n characters of s.
func truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}

// limit returns at most n leading elements, never nil.
func limit(acts []Activity, n int) []Activity {
	if len(acts) > n {
		acts = acts[:n]
	}
	out := make([]Activity, len(acts))
	copy(out, acts)
	return out
}

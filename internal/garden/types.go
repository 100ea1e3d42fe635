// Package garden defines gardens, their questions, and a file-backed store.
//
// A garden holds a small number of questions. Each question has a seed (the
// planting), an ordered list of growth entries (tendings) and a list of
// visits that are only ever counted.
package garden

// DefaultMaxQuestions is the capacity given to new gardens.
const DefaultMaxQuestions = 30

// Visit records that someone sat with a question.
type Visit struct {
	Timestamp Timestamp `json:"timestamp"`
}

// Growth is one tending of a question.
type Growth struct {
	ID       string    `json:"id"`
	Content  string    `json:"content"`
	TendedBy Presence  `json:"tendedBy"`
	TendedAt Timestamp `json:"tendedAt"`
}

// Seed is the original planting of a question.
type Seed struct {
	Content   string    `json:"content"`
	PlantedBy Presence  `json:"plantedBy"`
	PlantedAt Timestamp `json:"plantedAt"`
	Context   string    `json:"context,omitempty"`
}

// Question is a seed plus everything that grew from it.
type Question struct {
	ID     string   `json:"id"`
	Seed   Seed     `json:"seed"`
	Growth []Growth `json:"growth"`
	Visits []Visit  `json:"visits"`
}

// Garden is a named collection of questions.
type Garden struct {
	ID           string     `json:"id"`
	Name         string     `json:"name,omitempty"`
	Questions    []Question `json:"questions"`
	CreatedAt    Timestamp  `json:"createdAt"`
	MaxQuestions int        `json:"maxQuestions,omitempty"`
}

// TendingCount returns the number of growth entries across all questions.
func (g *Garden) TendingCount() int {
	n := 0
	for _, q := range g.Questions {
		n += len(q.Growth)
	}
	return n
}

// VisitCount returns the number of visits across all questions.
func (g *Garden) VisitCount() int {
	n := 0
	for _, q := range g.Questions {
		n += len(q.Visits)
	}
	return n
}

package constellation

import (
	"github.com/fyrsmithlabs/constellation/internal/garden"
	"github.com/fyrsmithlabs/constellation/internal/letters"
)

// NormalizeGarden converts a garden's questions into activities. For each
// question its tendings come first, in stored order, followed by its
// planting. Visits are not emitted.
func NormalizeGarden(name string, g *garden.Garden) []Activity {
	if g == nil {
		return []Activity{}
	}

	acts := make([]Activity, 0, len(g.Questions)+g.TendingCount())
	for _, q := range g.Questions {
		for _, growth := range q.Growth {
			acts = append(acts, Activity{
				Type:     ActivityTending,
				Garden:   name,
				Question: truncate(q.Seed.Content, TendingQuestionExcerpt),
				Content:  truncate(growth.Content, ContentExcerpt),
				By:       growth.TendedBy.Label(),
				At:       growth.TendedAt,
			})
		}

		acts = append(acts, Activity{
			Type:     ActivityPlanting,
			Garden:   name,
			Question: truncate(q.Seed.Content, PlantingQuestionExcerpt),
			By:       q.Seed.PlantedBy.Label(),
			At:       q.Seed.PlantedAt,
		})
	}
	return acts
}

// NormalizeLetters converts letters into letter activities in stored order.
func NormalizeLetters(ls []letters.Letter) []Activity {
	acts := make([]Activity, 0, len(ls))
	for _, l := range ls {
		acts = append(acts, Activity{
			Type:    ActivityLetter,
			Content: truncate(l.Content, ContentExcerpt),
			By:      l.Author,
			At:      l.WrittenAt,
		})
	}
	return acts
}

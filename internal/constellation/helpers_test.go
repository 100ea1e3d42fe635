package constellation

import (
	"github.com/fyrsmithlabs/constellation/internal/garden"
)

func ts(s string) garden.Timestamp {
	return garden.ParseTimestamp(s)
}

func question(seed, plantedAt string, growthAt ...string) garden.Question {
	q := garden.Question{
		ID: seed,
		Seed: garden.Seed{
			Content:   seed,
			PlantedBy: garden.Named("planter"),
			PlantedAt: ts(plantedAt),
		},
	}
	for i, at := range growthAt {
		q.Growth = append(q.Growth, garden.Growth{
			ID:       seed + "-g" + string(rune('a'+i)),
			Content:  "growth " + at,
			TendedBy: garden.Named("tender"),
			TendedAt: ts(at),
		})
	}
	return q
}

func act(at string) Activity {
	return Activity{Type: ActivityTending, By: "x", At: ts(at)}
}

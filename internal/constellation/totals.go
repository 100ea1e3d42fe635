package constellation

// Totals sums activity across every garden plus the letters.
type Totals struct {
	Questions int `json:"totalQuestions"`
	Tendings  int `json:"totalTendings"`
	Visits    int `json:"totalVisits"`
	Letters   int `json:"totalLetters"`
}

// ComputeTotals sums the per-garden counts.
func ComputeTotals(summaries []GardenSummary, letterCount int) Totals {
	t := Totals{Letters: max(letterCount, 0)}
	for _, s := range summaries {
		t.Questions += s.Questions
		t.Tendings += s.Tendings
		t.Visits += s.Visits
	}
	return t
}

package garden

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock(t *testing.T, at time.Time) {
	t.Helper()
	prev := now
	now = func() time.Time { return at }
	t.Cleanup(func() { now = prev })
}

func TestPlant(t *testing.T) {
	fixedClock(t, time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC))

	g := New("wonder")
	assert.Equal(t, DefaultMaxQuestions, g.MaxQuestions)

	out, q, err := Plant(g, "What is rest?", Named("Ada"), "a quiet evening")
	require.NoError(t, err)
	assert.Empty(t, g.Questions, "input must not be modified")
	require.Len(t, out.Questions, 1)
	assert.Equal(t, q.ID, out.Questions[0].ID)
	assert.Equal(t, "2024-03-01T09:00:00Z", q.Seed.PlantedAt.String())
	assert.NotNil(t, q.Growth)
	assert.NotNil(t, q.Visits)

	t.Run("rejects empty content", func(t *testing.T) {
		_, _, err := Plant(g, "   ", Unnamed(), "")
		assert.ErrorIs(t, err, ErrEmptyContent)
	})

	t.Run("rejects planting at capacity", func(t *testing.T) {
		full := &Garden{MaxQuestions: 1, Questions: []Question{{ID: "q"}}}
		_, _, err := Plant(full, "one more?", Unnamed(), "")
		assert.ErrorIs(t, err, ErrGardenFull)
	})
}

func TestTendAndSit(t *testing.T) {
	g, q, err := Plant(New("wonder"), "Why tend?", Unnamed(), "")
	require.NoError(t, err)

	tended, err := Tend(g, q.ID, "Because it grows.", Named("Bo"))
	require.NoError(t, err)
	assert.Empty(t, g.Questions[0].Growth, "input must not be modified")
	require.Len(t, tended.Questions[0].Growth, 1)
	assert.Equal(t, "Bo", tended.Questions[0].Growth[0].TendedBy.Label())
	assert.Equal(t, 1, tended.TendingCount())

	sat, err := Sit(tended, q.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, tended.VisitCount())
	assert.Equal(t, 1, sat.VisitCount())

	_, err = Tend(g, "missing", "x", Unnamed())
	assert.ErrorIs(t, err, ErrQuestionNotFound)

	_, err = Tend(g, q.ID, "", Unnamed())
	assert.ErrorIs(t, err, ErrEmptyContent)

	_, err = Sit(g, "missing")
	assert.ErrorIs(t, err, ErrQuestionNotFound)
}

func TestFindQuestion(t *testing.T) {
	g, _, err := Plant(New("wonder"), "What is Silence for?", Unnamed(), "")
	require.NoError(t, err)

	q, ok := FindQuestion(g, "silence")
	assert.True(t, ok)
	assert.Equal(t, "What is Silence for?", q.Seed.Content)

	_, ok = FindQuestion(g, "noise")
	assert.False(t, ok)
}

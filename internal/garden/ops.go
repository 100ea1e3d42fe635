package garden

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrGardenFull is returned when planting into a garden at capacity.
	ErrGardenFull = errors.New("garden is at capacity")

	// ErrQuestionNotFound is returned when a question id does not exist.
	ErrQuestionNotFound = errors.New("question not found")

	// ErrEmptyContent is returned for blank questions or growth.
	ErrEmptyContent = errors.New("content cannot be empty")
)

// now is replaced in tests.
var now = time.Now

// New returns an empty garden with default capacity.
func New(name string) *Garden {
	return &Garden{
		ID:           uuid.New().String(),
		Name:         name,
		Questions:    []Question{},
		CreatedAt:    NewTimestamp(now()),
		MaxQuestions: DefaultMaxQuestions,
	}
}

// Plant adds a question and returns the updated garden and the new question.
// The input garden is not modified.
func Plant(g *Garden, content string, by Presence, context string) (*Garden, Question, error) {
	if strings.TrimSpace(content) == "" {
		return nil, Question{}, ErrEmptyContent
	}
	if g.MaxQuestions > 0 && len(g.Questions) >= g.MaxQuestions {
		return nil, Question{}, fmt.Errorf("%w: %d questions", ErrGardenFull, g.MaxQuestions)
	}

	q := Question{
		ID: uuid.New().String(),
		Seed: Seed{
			Content:   content,
			PlantedBy: by,
			PlantedAt: NewTimestamp(now()),
			Context:   context,
		},
		Growth: []Growth{},
		Visits: []Visit{},
	}

	out := g.clone()
	out.Questions = append(out.Questions, q)
	return out, q, nil
}

// Tend adds growth to a question. The input garden is not modified.
func Tend(g *Garden, questionID, content string, by Presence) (*Garden, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyContent
	}
	idx := g.indexOf(questionID)
	if idx < 0 {
		return nil, fmt.Errorf("%w: %s", ErrQuestionNotFound, questionID)
	}

	out := g.clone()
	q := out.Questions[idx]
	growth := make([]Growth, len(q.Growth), len(q.Growth)+1)
	copy(growth, q.Growth)
	q.Growth = append(growth, Growth{
		ID:       uuid.New().String(),
		Content:  content,
		TendedBy: by,
		TendedAt: NewTimestamp(now()),
	})
	out.Questions[idx] = q
	return out, nil
}

// Sit records a visit to a question. The input garden is not modified.
func Sit(g *Garden, questionID string) (*Garden, error) {
	idx := g.indexOf(questionID)
	if idx < 0 {
		return nil, fmt.Errorf("%w: %s", ErrQuestionNotFound, questionID)
	}

	out := g.clone()
	q := out.Questions[idx]
	visits := make([]Visit, len(q.Visits), len(q.Visits)+1)
	copy(visits, q.Visits)
	q.Visits = append(visits, Visit{Timestamp: NewTimestamp(now())})
	out.Questions[idx] = q
	return out, nil
}

// FindQuestion returns the first question whose seed contains term,
// case-insensitively.
func FindQuestion(g *Garden, term string) (Question, bool) {
	lower := strings.ToLower(term)
	for _, q := range g.Questions {
		if strings.Contains(strings.ToLower(q.Seed.Content), lower) {
			return q, true
		}
	}
	return Question{}, false
}

func (g *Garden) indexOf(questionID string) int {
	for i, q := range g.Questions {
		if q.ID == questionID {
			return i
		}
	}
	return -1
}

func (g *Garden) clone() *Garden {
	out := *g
	out.Questions = make([]Question, len(g.Questions), len(g.Questions)+1)
	copy(out.Questions, g.Questions)
	return &out
}

package session

import (
	"context"
	"time"
)

// AnswerRecord is one submitted answer inside stored progress.
type AnswerRecord struct {
	AnswerIDs []string `json:"answerIds"`
	IsCorrect bool     `json:"isCorrect"`
}

// StoredProgress is the persisted state of one practice scope, keyed by
// the session key's string form. AnsweredCount and CorrectCount are
// derived: always recomputed by filtering Answers against QuestionIDs,
// never trusted as free-standing counters.
type StoredProgress struct {
	QuestionIDs   []string                `json:"questionIds"`
	CurrentIndex  int                     `json:"currentIndex"`
	Answers       map[string]AnswerRecord `json:"answers"`
	AnsweredCount int                     `json:"answeredCount"`
	CorrectCount  int                     `json:"correctCount"`
	UpdatedAt     time.Time               `json:"updatedAt"`
}

// Recompute refreshes the derived counts. Answers for question ids that
// are no longer part of the session do not count.
func (p *StoredProgress) Recompute() {
	p.AnsweredCount = 0
	p.CorrectCount = 0
	inSet := make(map[string]bool, len(p.QuestionIDs))
	for _, id := range p.QuestionIDs {
		inSet[id] = true
	}
	for id, a := range p.Answers {
		if !inSet[id] {
			continue
		}
		p.AnsweredCount++
		if a.IsCorrect {
			p.CorrectCount++
		}
	}
}

// SameQuestionSet reports order-independent set equality between the
// stored ids and a freshly assembled question list. This is the entire
// resumability contract: any change to the underlying set — a regenerated
// bank, an edited question — invalidates stored progress.
func (p *StoredProgress) SameQuestionSet(ids []string) bool {
	if len(p.QuestionIDs) != len(ids) {
		return false
	}
	set := make(map[string]int, len(p.QuestionIDs))
	for _, id := range p.QuestionIDs {
		set[id]++
	}
	for _, id := range ids {
		set[id]--
		if set[id] < 0 {
			return false
		}
	}
	return true
}

// ProgressRepo is the persistence boundary for the progress map.
// Implemented by the store package over the flat quiz_progress blob.
type ProgressRepo interface {
	// Progress returns stored progress for a session key, or nil.
	Progress(ctx context.Context, key string) (*StoredProgress, error)

	// SaveProgress writes through progress for a session key.
	SaveProgress(ctx context.Context, key string, p *StoredProgress) error

	// DeleteProgress clears progress for a session key.
	DeleteProgress(ctx context.Context, key string) error
}

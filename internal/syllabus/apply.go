package syllabus

import (
	"context"

	"github.com/rahulm/quizforge/internal/quiz"
)

// MetaStore is the slice of the store needed to persist placements.
type MetaStore interface {
	MetaMap(ctx context.Context) (map[string]quiz.QuestionMeta, error)
	SetMeta(ctx context.Context, m quiz.QuestionMeta) error
}

// ApplyMappings stores LLM placements as assignment overrides. Each
// question's existing meta entry is updated in place so tags survive;
// only the assignment fields change. Mappings naming a book the preset
// does not have are skipped, and a topic is kept only when it lives in
// the mapped book. Returns how many placements were stored.
func ApplyMappings(ctx context.Context, st MetaStore, ix *Index, mappings []Mapping) (int, error) {
	metas, err := st.MetaMap(ctx)
	if err != nil {
		return 0, err
	}

	applied := 0
	for _, m := range mappings {
		if ix.Book(m.BookID) == nil {
			continue
		}
		meta := metas[m.QuestionID]
		meta.ID = m.QuestionID
		meta.AssignedBookID = m.BookID
		meta.AssignedTopicID = ""
		if m.TopicID != "" && ix.TopicInBook(m.BookID, m.TopicID) {
			meta.AssignedTopicID = m.TopicID
		}
		if err := st.SetMeta(ctx, meta); err != nil {
			return applied, err
		}
		applied++
	}
	return applied, nil
}

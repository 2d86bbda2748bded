package syllabus

import (
	"context"
	"reflect"
	"testing"

	"github.com/rahulm/quizforge/internal/quiz"
)

type fakeMetaStore struct {
	metas map[string]quiz.QuestionMeta
}

func (f *fakeMetaStore) MetaMap(ctx context.Context) (map[string]quiz.QuestionMeta, error) {
	out := make(map[string]quiz.QuestionMeta, len(f.metas))
	for k, v := range f.metas {
		out[k] = v
	}
	return out, nil
}

func (f *fakeMetaStore) SetMeta(ctx context.Context, m quiz.QuestionMeta) error {
	f.metas[m.ID] = m
	return nil
}

func TestApplyMappings_KeepsExistingTags(t *testing.T) {
	st := &fakeMetaStore{metas: map[string]quiz.QuestionMeta{
		"q1": {ID: "q1", Tags: []string{"重点", "exam"}},
	}}
	ix := BuildIndex(historyPreset())

	applied, err := ApplyMappings(context.Background(), st, ix, []Mapping{
		{QuestionID: "q1", BookID: "book-history-0", TopicID: "topic-ancient-rome-0"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if applied != 1 {
		t.Fatalf("applied = %d, want 1", applied)
	}

	got := st.metas["q1"]
	if !reflect.DeepEqual(got.Tags, []string{"重点", "exam"}) {
		t.Errorf("tags = %v, want them untouched", got.Tags)
	}
	if got.AssignedBookID != "book-history-0" || got.AssignedTopicID != "topic-ancient-rome-0" {
		t.Errorf("assignment = %+v", got)
	}
}

func TestApplyMappings_SkipsUnknownBook(t *testing.T) {
	st := &fakeMetaStore{metas: map[string]quiz.QuestionMeta{}}
	ix := BuildIndex(historyPreset())

	applied, err := ApplyMappings(context.Background(), st, ix, []Mapping{
		{QuestionID: "q1", BookID: "book-chemistry-9"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if applied != 0 {
		t.Fatalf("applied = %d, want 0", applied)
	}
	if _, ok := st.metas["q1"]; ok {
		t.Error("no entry should be written for a skipped mapping")
	}
}

func TestApplyMappings_ReplacesStaleTopic(t *testing.T) {
	st := &fakeMetaStore{metas: map[string]quiz.QuestionMeta{
		"q1": {ID: "q1", AssignedBookID: "book-physics-1", AssignedTopicID: "topic-optics-0"},
	}}
	ix := BuildIndex(historyPreset())

	// New placement lands on a different book; the old topic must not
	// leak through, and a topic outside the new book is dropped.
	applied, err := ApplyMappings(context.Background(), st, ix, []Mapping{
		{QuestionID: "q1", BookID: "book-history-0", TopicID: "topic-optics-0"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if applied != 1 {
		t.Fatalf("applied = %d, want 1", applied)
	}

	got := st.metas["q1"]
	if got.AssignedBookID != "book-history-0" {
		t.Errorf("book = %q", got.AssignedBookID)
	}
	if got.AssignedTopicID != "" {
		t.Errorf("topic = %q, want empty", got.AssignedTopicID)
	}
}

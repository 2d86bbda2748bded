package session

import (
	"context"
	"errors"
	"testing"

	"github.com/rahulm/quizforge/internal/quiz"
)

// memRepo is an in-memory ProgressRepo.
type memRepo struct {
	m map[string]*StoredProgress
}

func newMemRepo() *memRepo {
	return &memRepo{m: make(map[string]*StoredProgress)}
}

func (r *memRepo) Progress(_ context.Context, key string) (*StoredProgress, error) {
	if p, ok := r.m[key]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, nil
}

func (r *memRepo) SaveProgress(_ context.Context, key string, p *StoredProgress) error {
	cp := *p
	r.m[key] = &cp
	return nil
}

func (r *memRepo) DeleteProgress(_ context.Context, key string) error {
	delete(r.m, key)
	return nil
}

// memMistakes records mistakes with first-wins dedup, like the store.
type memMistakes struct {
	entries []quiz.MistakeEntry
}

func (m *memMistakes) AddMistake(_ context.Context, e quiz.MistakeEntry) error {
	for _, existing := range m.entries {
		if existing.Question.ID == e.Question.ID {
			return nil
		}
	}
	m.entries = append(m.entries, e)
	return nil
}

func fiveQuestions() []quiz.Question {
	var qs []quiz.Question
	stems := []string{"q one", "q two", "q three", "q four", "q five"}
	for i, stem := range stems {
		qs = append(qs, quiz.Question{
			ID:   []string{"a", "b", "c", "d", "e"}[i],
			Type: quiz.TypeSingle,
			Stem: stem,
			Options: []quiz.Option{
				{ID: "A", Text: "right"},
				{ID: "B", Text: "wrong"},
			},
			AnswerIDs: []string{"A"},
		})
	}
	return qs
}

func answer(t *testing.T, c *Controller, optionID string) *SubmitResult {
	t.Helper()
	c.Toggle(optionID)
	res, err := c.Submit(context.Background())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	return res
}

func TestSessionKeys(t *testing.T) {
	cases := map[string]string{
		BankKey("b1").String():                     "bank:b1",
		SyllabusAllKey("s1").String():              "syllabus:s1:all",
		SyllabusBookKey("s1", "bk").String():       "syllabus:s1:book:bk",
		SyllabusTopicKey("s1", "bk", "t").String(): "syllabus:s1:topic:bk:t",
		TagKey("重点").String():                      "tag:重点",
		FavoritesKey().String():                    "favorites-session",
		MistakesKey().String():                     "mistakes-session",
		LegacyBookKey("旧书").String():                "legacy-book:旧书",
	}
	for got, want := range cases {
		if got != want {
			t.Errorf("key %q != %q", got, want)
		}
	}
}

func TestPractice_AnswerScorePersist(t *testing.T) {
	ctx := context.Background()
	repo := newMemRepo()
	mistakes := &memMistakes{}
	c := NewController(repo, mistakes)

	qs := fiveQuestions()
	key := BankKey("b1")

	dec, err := c.Prepare(ctx, key, qs)
	if err != nil {
		t.Fatal(err)
	}
	if dec.Resumable {
		t.Fatal("fresh scope must not offer resume")
	}
	if err := c.Begin(ctx, key, qs, ModePractice, Settings{}, "bank one", false); err != nil {
		t.Fatal(err)
	}

	// Answer three: two correct, one wrong.
	if res := answer(t, c, "A"); !res.Correct {
		t.Error("expected correct")
	}
	c.Advance(ctx)
	if res := answer(t, c, "B"); res.Correct {
		t.Error("expected wrong")
	}
	c.Advance(ctx)
	if res := answer(t, c, "A"); !res.Correct {
		t.Error("expected correct")
	}
	c.Advance(ctx)

	stored := repo.m["bank:b1"]
	if stored == nil {
		t.Fatal("no persisted progress")
	}
	if stored.AnsweredCount != 3 || stored.CorrectCount != 2 || stored.CurrentIndex != 3 {
		t.Errorf("stored = %+v", stored)
	}
	if len(mistakes.entries) != 1 || mistakes.entries[0].Question.ID != "b" {
		t.Errorf("mistakes = %+v", mistakes.entries)
	}
}

func TestResume_OfferAndRestore(t *testing.T) {
	ctx := context.Background()
	repo := newMemRepo()
	c := NewController(repo, nil)
	qs := fiveQuestions()
	key := BankKey("b1")

	c.Begin(ctx, key, qs, ModePractice, Settings{}, "", false)
	answer(t, c, "A")
	c.Advance(ctx)
	answer(t, c, "A")
	c.Advance(ctx)
	answer(t, c, "B")
	c.Advance(ctx)

	// Same bank, same ids, shuffled order: resume is offered.
	reordered := []quiz.Question{qs[4], qs[3], qs[2], qs[1], qs[0]}
	c2 := NewController(repo, nil)
	dec, err := c2.Prepare(ctx, key, reordered)
	if err != nil {
		t.Fatal(err)
	}
	if !dec.Resumable {
		t.Fatal("expected resume offer")
	}
	if dec.Stored.AnsweredCount != 3 || dec.Stored.CorrectCount != 2 {
		t.Errorf("stored summary = %+v", dec.Stored)
	}

	// Resuming with the original order restores position and answers.
	if err := c2.Begin(ctx, key, qs, ModePractice, Settings{}, "", true); err != nil {
		t.Fatal(err)
	}
	if c2.CurrentIndex() != 3 {
		t.Errorf("resumed at %d, want 3", c2.CurrentIndex())
	}
	if a, ok := c2.AnswerFor("c"); !ok || a.IsCorrect {
		t.Errorf("answer for c = %+v ok=%v", a, ok)
	}
}

func TestResume_InvalidatedByChangedSet(t *testing.T) {
	ctx := context.Background()
	repo := newMemRepo()
	c := NewController(repo, nil)
	qs := fiveQuestions()
	key := BankKey("b1")

	c.Begin(ctx, key, qs, ModePractice, Settings{}, "", false)
	answer(t, c, "A")

	// Regenerated bank: one id changed.
	changed := fiveQuestions()
	changed[4].ID = "e2"
	dec, err := c.Prepare(ctx, key, changed)
	if err != nil {
		t.Fatal(err)
	}
	if dec.Resumable {
		t.Fatal("changed set must disable the resume offer")
	}
}

func TestRestart_ClearsProgress(t *testing.T) {
	ctx := context.Background()
	repo := newMemRepo()
	c := NewController(repo, nil)
	qs := fiveQuestions()
	key := BankKey("b1")

	c.Begin(ctx, key, qs, ModePractice, Settings{}, "", false)
	answer(t, c, "A")
	c.Advance(ctx)

	// Restart: stored progress replaced by a fresh empty record.
	if err := c.Begin(ctx, key, qs, ModePractice, Settings{}, "", false); err != nil {
		t.Fatal(err)
	}
	if c.CurrentIndex() != 0 {
		t.Errorf("restart should begin at question 1, at %d", c.CurrentIndex())
	}
	stored := repo.m["bank:b1"]
	if stored.AnsweredCount != 0 || len(stored.Answers) != 0 {
		t.Errorf("restart did not clear answers: %+v", stored)
	}
}

func TestSubmit_Idempotent(t *testing.T) {
	ctx := context.Background()
	c := NewController(newMemRepo(), nil)
	qs := fiveQuestions()
	c.Begin(ctx, BankKey("b"), qs, ModePractice, Settings{}, "", false)

	answer(t, c, "B")
	c.Toggle("A")
	res, err := c.Submit(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !res.AlreadyAnswered {
		t.Error("expected idempotent no-op")
	}
	if a, _ := c.AnswerFor("a"); a.IsCorrect || a.AnswerIDs[0] != "B" {
		t.Errorf("first answer must stand: %+v", a)
	}
}

func TestMultipleAnswer_ExactSetEquality(t *testing.T) {
	ctx := context.Background()
	c := NewController(newMemRepo(), nil)
	q := quiz.Question{
		ID:   "m1",
		Type: quiz.TypeMultiple,
		Stem: "pick A and C",
		Options: []quiz.Option{
			{ID: "A"}, {ID: "B"}, {ID: "C"}, {ID: "D"},
		},
		AnswerIDs: []string{"A", "C"},
	}
	c.Begin(ctx, BankKey("b"), []quiz.Question{q}, ModePractice, Settings{}, "", false)

	// Subset is not partial credit.
	c.Toggle("A")
	res, err := c.Submit(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if res.Correct {
		t.Error("subset must grade wrong")
	}

	// Toggling twice removes the option.
	c2 := NewController(newMemRepo(), nil)
	c2.Begin(ctx, BankKey("b"), []quiz.Question{q}, ModePractice, Settings{}, "", false)
	c2.Toggle("A")
	c2.Toggle("B")
	c2.Toggle("B")
	c2.Toggle("C")
	res, err = c2.Submit(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !res.Correct {
		t.Error("exact set must grade correct")
	}
}

func TestSingle_ConfirmBeforeSubmit(t *testing.T) {
	ctx := context.Background()
	c := NewController(newMemRepo(), nil)
	qs := fiveQuestions()

	c.Begin(ctx, BankKey("b"), qs, ModePractice, Settings{ConfirmBeforeSubmit: true}, "", false)
	if c.Toggle("A") {
		t.Error("confirm-before-submit must stage, not submit")
	}
	// Second pick replaces the staged one.
	c.Toggle("B")
	res, err := c.Submit(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if res.Correct {
		t.Error("staged B should grade wrong")
	}

	c2 := NewController(newMemRepo(), nil)
	c2.Begin(ctx, BankKey("b"), qs, ModePractice, Settings{}, "", false)
	if !c2.Toggle("A") {
		t.Error("without confirm, single answers submit immediately")
	}
}

func TestAutoAdvancePolicy(t *testing.T) {
	ctx := context.Background()
	qs := fiveQuestions()

	// Exam mode always advances.
	c := NewController(newMemRepo(), nil)
	c.Begin(ctx, BankKey("b"), qs, ModeExam, Settings{}, "", false)
	if res := answer(t, c, "B"); !res.AutoAdvance {
		t.Error("exam mode must auto-advance on wrong answers too")
	}

	// Practice mode honors per-outcome toggles.
	c = NewController(newMemRepo(), nil)
	c.Begin(ctx, BankKey("b"), qs, ModePractice, Settings{AutoAdvanceOnCorrect: true}, "", false)
	if res := answer(t, c, "A"); !res.AutoAdvance {
		t.Error("expected auto-advance on correct")
	}
	c.Advance(ctx)
	if res := answer(t, c, "B"); res.AutoAdvance {
		t.Error("unexpected auto-advance on wrong")
	}
}

func TestReviewMode_ReadOnly(t *testing.T) {
	ctx := context.Background()
	repo := newMemRepo()
	c := NewController(repo, nil)
	qs := fiveQuestions()

	c.Begin(ctx, BankKey("b"), qs, ModeReview, Settings{}, "", false)
	c.Toggle("A")
	if _, err := c.Submit(ctx); !errors.Is(err, ErrReviewMode) {
		t.Fatalf("expected ErrReviewMode, got %v", err)
	}
	if len(repo.m) != 0 {
		t.Error("review mode must not touch stored progress")
	}
}

func TestEnd_ScoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := newMemRepo()
	c := NewController(repo, nil)
	qs := fiveQuestions()
	key := BankKey("b1")

	c.Begin(ctx, key, qs, ModePractice, Settings{}, "", false)
	answer(t, c, "A")
	c.Advance(ctx)
	answer(t, c, "A")
	c.Advance(ctx)
	answer(t, c, "B")

	res := c.End()
	if res.Total != 5 || res.Answered != 3 || res.Correct != 2 {
		t.Errorf("result = %+v", res)
	}
	if res.Score != 40 { // round(2/5*100)
		t.Errorf("score = %d, want 40", res.Score)
	}

	// End does not clear persisted progress.
	if repo.m["bank:b1"] == nil {
		t.Error("progress cleared by End")
	}
}

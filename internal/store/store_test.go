package store

import (
	"context"
	"testing"
	"time"

	"github.com/rahulm/quizforge/internal/quiz"
	"github.com/rahulm/quizforge/internal/session"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open("file::memory:?cache=shared")
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpenClose(t *testing.T) {
	s := openTestStore(t)
	if s.DB() == nil {
		t.Fatal("expected non-nil db")
	}
}

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	tests := []struct {
		pragma string
		want   string
	}{
		// WAL mode falls back to "memory" for in-memory databases,
		// so we skip journal_mode here. It is tested with file-based DBs.
		{"foreign_keys", "1"},
		{"synchronous", "1"}, // NORMAL = 1
	}

	for _, tt := range tests {
		var got string
		err := db.QueryRow("PRAGMA " + tt.pragma).Scan(&got)
		if err != nil {
			t.Errorf("PRAGMA %s: %v", tt.pragma, err)
			continue
		}
		if got != tt.want {
			t.Errorf("PRAGMA %s = %q, want %q", tt.pragma, got, tt.want)
		}
	}
}

func TestMigrationCreatesTables(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	for _, table := range []string{"app_state", "llm_events"} {
		var name string
		err := db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table,
		).Scan(&name)
		if err != nil {
			t.Fatalf("query sqlite_master for %s: %v", table, err)
		}
	}
}

func TestBlobRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, ok, err := s.getBlob(ctx, "missing")
	if err != nil {
		t.Fatalf("get missing: %v", err)
	}
	if ok {
		t.Fatal("expected ok=false for unwritten key")
	}

	if err := s.putBlob(ctx, "k", `{"a":1}`); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := s.putBlob(ctx, "k", `{"a":2}`); err != nil {
		t.Fatalf("overwrite: %v", err)
	}

	raw, ok, err := s.getBlob(ctx, "k")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !ok || raw != `{"a":2}` {
		t.Errorf("got %q ok=%v, want latest value", raw, ok)
	}
}

func testBank(id, title string) quiz.Bank {
	return quiz.Bank{
		ID:    id,
		Title: title,
		Questions: []quiz.Question{{
			ID:   id + "-q1",
			Type: quiz.TypeSingle,
			Stem: "stem",
			Options: []quiz.Option{
				{ID: "A", Text: "yes"},
				{ID: "B", Text: "no"},
			},
			AnswerIDs: []string{"A"},
		}},
		CreatedAt: time.Now().UTC(),
	}
}

func TestBankHistoryNewestFirst(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.AddBank(ctx, testBank("b1", "first")); err != nil {
		t.Fatalf("add b1: %v", err)
	}
	if err := s.AddBank(ctx, testBank("b2", "second")); err != nil {
		t.Fatalf("add b2: %v", err)
	}

	banks, err := s.History(ctx)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(banks) != 2 {
		t.Fatalf("len = %d, want 2", len(banks))
	}
	if banks[0].ID != "b2" || banks[1].ID != "b1" {
		t.Errorf("order = [%s %s], want newest first", banks[0].ID, banks[1].ID)
	}
}

func TestDeleteAndRenameBank(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for _, id := range []string{"b1", "b2", "b3"} {
		if err := s.AddBank(ctx, testBank(id, id)); err != nil {
			t.Fatalf("add %s: %v", id, err)
		}
	}

	if err := s.RenameBank(ctx, "b2", "renamed"); err != nil {
		t.Fatalf("rename: %v", err)
	}
	b, err := s.BankByID(ctx, "b2")
	if err != nil {
		t.Fatalf("by id: %v", err)
	}
	if b == nil || b.Title != "renamed" {
		t.Fatalf("rename not persisted: %+v", b)
	}

	if err := s.DeleteBank(ctx, "b2"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	b, err = s.BankByID(ctx, "b2")
	if err != nil {
		t.Fatalf("by id after delete: %v", err)
	}
	if b != nil {
		t.Error("expected nil after delete")
	}
	banks, _ := s.History(ctx)
	if len(banks) != 2 {
		t.Errorf("remaining = %d, want 2", len(banks))
	}
}

func TestFavoritesDedupe(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	q := testBank("b1", "t").Questions[0]
	e := quiz.FavoriteEntry{Question: q, AddedAt: time.Now().UTC()}

	for i := 0; i < 3; i++ {
		if err := s.AddFavorite(ctx, e); err != nil {
			t.Fatalf("add %d: %v", i, err)
		}
	}
	favs, err := s.Favorites(ctx)
	if err != nil {
		t.Fatalf("favorites: %v", err)
	}
	if len(favs) != 1 {
		t.Fatalf("len = %d, want 1", len(favs))
	}

	on, err := s.IsFavorite(ctx, q.ID)
	if err != nil || !on {
		t.Errorf("IsFavorite = %v, %v; want true", on, err)
	}

	if err := s.RemoveFavorite(ctx, q.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}
	on, _ = s.IsFavorite(ctx, q.ID)
	if on {
		t.Error("still favorite after remove")
	}
}

func TestMistakeFirstMissWins(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	q := testBank("b1", "t").Questions[0]
	t0 := time.Unix(100, 0).UTC()
	first := quiz.MistakeEntry{Question: q, AnswerIDs: []string{"B"}, MissedAt: t0}
	second := quiz.MistakeEntry{Question: q, AnswerIDs: []string{"C"}, MissedAt: t0.Add(time.Minute)}

	if err := s.AddMistake(ctx, first); err != nil {
		t.Fatalf("add first: %v", err)
	}
	if err := s.AddMistake(ctx, second); err != nil {
		t.Fatalf("add second: %v", err)
	}

	mistakes, err := s.Mistakes(ctx)
	if err != nil {
		t.Fatalf("mistakes: %v", err)
	}
	if len(mistakes) != 1 {
		t.Fatalf("len = %d, want 1", len(mistakes))
	}
	if !mistakes[0].MissedAt.Equal(t0) || mistakes[0].AnswerIDs[0] != "B" {
		t.Errorf("stored entry updated, want first miss kept: %+v", mistakes[0])
	}
}

func TestMistakeTrashRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	q := testBank("b1", "t").Questions[0]
	if err := s.AddMistake(ctx, quiz.MistakeEntry{Question: q, AnswerIDs: []string{"B"}}); err != nil {
		t.Fatalf("add: %v", err)
	}

	if err := s.RemoveMistake(ctx, q.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}
	mistakes, _ := s.Mistakes(ctx)
	if len(mistakes) != 0 {
		t.Fatalf("mistakes = %d, want 0", len(mistakes))
	}
	trash, _ := s.MistakesTrash(ctx)
	if len(trash) != 1 {
		t.Fatalf("trash = %d, want 1", len(trash))
	}

	if err := s.RestoreMistake(ctx, q.ID); err != nil {
		t.Fatalf("restore: %v", err)
	}
	mistakes, _ = s.Mistakes(ctx)
	if len(mistakes) != 1 {
		t.Fatalf("mistakes after restore = %d, want 1", len(mistakes))
	}
	trash, _ = s.MistakesTrash(ctx)
	if len(trash) != 0 {
		t.Fatalf("trash after restore = %d, want 0", len(trash))
	}

	if err := s.RestoreMistake(ctx, q.ID); err == nil {
		t.Error("expected error restoring missing entry")
	}

	if err := s.RemoveMistake(ctx, q.ID); err != nil {
		t.Fatalf("remove again: %v", err)
	}
	if err := s.PurgeTrash(ctx); err != nil {
		t.Fatalf("purge: %v", err)
	}
	trash, _ = s.MistakesTrash(ctx)
	if len(trash) != 0 {
		t.Errorf("trash after purge = %d, want 0", len(trash))
	}
}

func TestQuestionMetaSurvivesBankDelete(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	b := testBank("b1", "t")
	if err := s.AddBank(ctx, b); err != nil {
		t.Fatalf("add bank: %v", err)
	}
	meta := quiz.QuestionMeta{
		ID:             b.Questions[0].ID,
		AssignedBookID: "book-0",
		Tags:           []string{"hard"},
	}
	if err := s.SetMeta(ctx, meta); err != nil {
		t.Fatalf("set meta: %v", err)
	}

	if err := s.DeleteBank(ctx, "b1"); err != nil {
		t.Fatalf("delete bank: %v", err)
	}

	metas, err := s.MetaMap(ctx)
	if err != nil {
		t.Fatalf("meta map: %v", err)
	}
	got, ok := metas[meta.ID]
	if !ok {
		t.Fatal("meta gone after bank delete")
	}
	if got.AssignedBookID != "book-0" {
		t.Errorf("assignedBookId = %q, want book-0", got.AssignedBookID)
	}
}

func TestProgressRepoRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	key := session.BankKey("b1").String()

	p, err := s.Progress(ctx, key)
	if err != nil {
		t.Fatalf("progress (empty): %v", err)
	}
	if p != nil {
		t.Fatal("expected nil progress when none stored")
	}

	stored := &session.StoredProgress{
		QuestionIDs:  []string{"q1", "q2"},
		CurrentIndex: 1,
		Answers: map[string]session.AnswerRecord{
			"q1": {AnswerIDs: []string{"A"}, IsCorrect: true},
		},
	}
	stored.Recompute()
	if err := s.SaveProgress(ctx, key, stored); err != nil {
		t.Fatalf("save: %v", err)
	}

	p, err = s.Progress(ctx, key)
	if err != nil {
		t.Fatalf("progress: %v", err)
	}
	if p == nil {
		t.Fatal("expected stored progress")
	}
	if p.CurrentIndex != 1 || p.AnsweredCount != 1 || p.CorrectCount != 1 {
		t.Errorf("restored = %+v", p)
	}

	if err := s.DeleteProgress(ctx, key); err != nil {
		t.Fatalf("delete: %v", err)
	}
	p, _ = s.Progress(ctx, key)
	if p != nil {
		t.Error("progress survives delete")
	}
}

func TestSettingsDefaults(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	ps, err := s.PracticeSettings(ctx)
	if err != nil {
		t.Fatalf("practice settings: %v", err)
	}
	if !ps.AutoAdvanceOnCorrect {
		t.Error("default AutoAdvanceOnCorrect should be true")
	}

	n, err := s.BatchSize(ctx)
	if err != nil || n != 10 {
		t.Errorf("batch size = %d, %v; want 10", n, err)
	}
	mode, err := s.SpeedMode(ctx)
	if err != nil || mode != "standard" {
		t.Errorf("speed mode = %q, %v; want standard", mode, err)
	}

	if err := s.SaveBatchSize(ctx, 25); err != nil {
		t.Fatalf("save batch size: %v", err)
	}
	n, _ = s.BatchSize(ctx)
	if n != 25 {
		t.Errorf("batch size = %d, want 25", n)
	}
}

func TestLLMEventLog(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	repo := s.EventRepo()

	events := []LLMRequestEventData{
		{Provider: "openai", Model: "gpt-4o", Purpose: "quiz_generation",
			InputTokens: 100, OutputTokens: 400, LatencyMs: 900, Success: true},
		{Provider: "openai", Model: "gpt-4o", Purpose: "syllabus_parse",
			InputTokens: 50, OutputTokens: 0, LatencyMs: 200, Success: false,
			ErrorMessage: "rate limited"},
	}
	for i, e := range events {
		if err := repo.AppendLLMRequest(ctx, e); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}

	stats, err := s.LLMStats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.Calls != 2 {
		t.Errorf("calls = %d, want 2", stats.Calls)
	}
	if stats.Failures != 1 {
		t.Errorf("failures = %d, want 1", stats.Failures)
	}
	if stats.InputTokens != 150 || stats.OutputTokens != 400 {
		t.Errorf("tokens = %d/%d, want 150/400", stats.InputTokens, stats.OutputTokens)
	}
}

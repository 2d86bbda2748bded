package tags

import (
	"testing"
	"time"

	qz "github.com/rahulm/quizforge/internal/quiz"
)

func testBanks() []qz.Bank {
	return []qz.Bank{
		{
			ID:        "bank-1",
			Title:     "Geography",
			CreatedAt: time.Now(),
			Questions: []qz.Question{
				{ID: "q1", Stem: "Capital of France?"},
				{ID: "q2", Stem: "Longest river?"},
			},
		},
		{
			ID:        "bank-2",
			Title:     "History",
			CreatedAt: time.Now(),
			Questions: []qz.Question{
				{ID: "q3", Stem: "Year the wall fell?"},
			},
		},
	}
}

func TestCollectTagged(t *testing.T) {
	metas := map[string]qz.QuestionMeta{
		"q1": {ID: "q1", Tags: []string{"重点"}},
		"q3": {ID: "q3", Tags: []string{"exam", "重点"}},
	}

	got := collectTagged(testBanks(), metas, "重点")
	if len(got) != 2 {
		t.Fatalf("got %d questions, want 2", len(got))
	}
	// Bank order, so the scope is identical between sessions.
	if got[0].ID != "q1" || got[1].ID != "q3" {
		t.Errorf("ids = %s, %s", got[0].ID, got[1].ID)
	}

	if got := collectTagged(testBanks(), metas, "exam"); len(got) != 1 || got[0].ID != "q3" {
		t.Errorf("exam scope = %v", got)
	}
}

func TestCollectTaggedNoMatches(t *testing.T) {
	if got := collectTagged(testBanks(), nil, "重点"); got != nil {
		t.Errorf("expected nil for untagged store, got %v", got)
	}
}

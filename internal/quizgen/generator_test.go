package quizgen

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/rahulm/quizforge/internal/llm"
	"github.com/rahulm/quizforge/internal/quiz"
	"github.com/rahulm/quizforge/internal/syllabus"
)

func svcPreset() (*syllabus.Preset, error) {
	return syllabus.NormalizePreset(
		`{"books":[{"title":"History","topics":["Ancient","Modern"]}]}`)
}

func batchQuestions(t *testing.T, stems ...string) []quiz.Question {
	t.Helper()
	qs := quiz.Normalize(string(batchJSON(stems...)))
	if qs == nil {
		t.Fatal("fixture questions failed to normalize")
	}
	return qs
}

func batchJSON(stems ...string) json.RawMessage {
	type q struct {
		Stem      string   `json:"stem"`
		Options   []string `json:"options"`
		AnswerIDs []string `json:"answerIds"`
	}
	var qs []q
	for _, s := range stems {
		qs = append(qs, q{Stem: s, Options: []string{"yes", "no", "maybe", "never"}, AnswerIDs: []string{"A"}})
	}
	raw, _ := json.Marshal(map[string]any{"questions": qs})
	return raw
}

func testInput(total int) GenerateInput {
	return GenerateInput{
		SourceText: "The Roman Republic fell in 27 BC. The Empire followed.",
		SourceName: "rome.txt",
		Total:      total,
	}
}

func testConfig(batchSize int) Config {
	cfg := DefaultConfig()
	cfg.BatchSize = batchSize
	return cfg
}

func TestRun_SingleBatch(t *testing.T) {
	mock := llm.NewMockProvider(
		llm.MockResponse{Content: batchJSON("When did the Republic fall?", "What followed it?")},
	)
	svc := New(mock, testConfig(10))

	questions, err := svc.Run(context.Background(), testInput(2), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(questions) != 2 {
		t.Fatalf("got %d questions, want 2", len(questions))
	}
	if mock.CallCount() != 1 {
		t.Fatalf("expected 1 LLM call, got %d", mock.CallCount())
	}
	for _, q := range questions {
		if q.SourceDocument != "rome.txt" {
			t.Errorf("sourceDocument = %q, want rome.txt", q.SourceDocument)
		}
		if len(q.AnswerIDs) == 0 {
			t.Errorf("question %s has no answers", q.ID)
		}
	}
}

func TestRun_SequentialBatchesCarryPriorStems(t *testing.T) {
	mock := llm.NewMockProvider(
		llm.MockResponse{Content: batchJSON("first stem", "second stem")},
		llm.MockResponse{Content: batchJSON("third stem", "fourth stem")},
	)
	svc := New(mock, testConfig(2))

	questions, err := svc.Run(context.Background(), testInput(4), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(questions) != 4 {
		t.Fatalf("got %d questions, want 4", len(questions))
	}
	if mock.CallCount() != 2 {
		t.Fatalf("expected 2 LLM calls, got %d", mock.CallCount())
	}

	// The second prompt must list stems from the first batch.
	second := mock.Calls[1].Messages[0].Content
	if !strings.Contains(second, "first stem") || !strings.Contains(second, "second stem") {
		t.Errorf("second prompt missing prior stems:\n%s", second)
	}
}

func TestRun_DropsDuplicateStems(t *testing.T) {
	mock := llm.NewMockProvider(
		llm.MockResponse{Content: batchJSON("alpha", "beta")},
		llm.MockResponse{Content: batchJSON("Alpha", "gamma")},
	)
	svc := New(mock, testConfig(2))

	questions, err := svc.Run(context.Background(), testInput(4), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// "Alpha" is a case-folded duplicate of "alpha" and is dropped.
	if len(questions) != 3 {
		t.Fatalf("got %d questions, want 3", len(questions))
	}
}

func TestRun_LaterBatchFailureKeepsEarlierBatches(t *testing.T) {
	mock := llm.NewMockProvider(
		llm.MockResponse{Content: batchJSON("kept one", "kept two")},
		llm.MockResponse{Err: &llm.ErrProviderUnavailable{}},
	)
	svc := New(mock, testConfig(2))

	questions, err := svc.Run(context.Background(), testInput(4), nil)
	if err == nil {
		t.Fatal("expected error from failing batch")
	}
	if len(questions) != 2 {
		t.Fatalf("accumulated = %d questions, want 2 kept from batch 1", len(questions))
	}
}

func TestRun_UnparseableResponseFailsBatch(t *testing.T) {
	mock := llm.NewMockProvider(
		llm.MockResponse{Content: json.RawMessage(`"no questions here"`)},
	)
	svc := New(mock, testConfig(10))

	_, err := svc.Run(context.Background(), testInput(2), nil)
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestRun_CancellationKeepsAccumulated(t *testing.T) {
	mock := llm.NewMockProvider(
		llm.MockResponse{Content: batchJSON("one", "two")},
		llm.MockResponse{Content: batchJSON("three", "four")},
	)
	svc := New(mock, testConfig(2))

	ctx, cancel := context.WithCancel(context.Background())
	questions, err := svc.Run(ctx, testInput(4), func(BatchProgress) {
		cancel()
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(questions) != 2 {
		t.Fatalf("accumulated = %d, want 2 from the completed batch", len(questions))
	}
	if mock.CallCount() != 1 {
		t.Fatalf("expected no call after cancel, got %d calls", mock.CallCount())
	}
}

func TestRun_Progress(t *testing.T) {
	mock := llm.NewMockProvider(
		llm.MockResponse{Content: batchJSON("one", "two")},
		llm.MockResponse{Content: batchJSON("three")},
	)
	svc := New(mock, testConfig(2))

	var seen []BatchProgress
	_, err := svc.Run(context.Background(), testInput(3), func(p BatchProgress) {
		seen = append(seen, p)
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(seen) != 2 {
		t.Fatalf("got %d progress events, want 2", len(seen))
	}
	if seen[0].Batch != 1 || seen[0].Batches != 2 || seen[0].Generated != 2 {
		t.Errorf("first progress = %+v", seen[0])
	}
	if seen[1].Batch != 2 || seen[1].Generated != 3 {
		t.Errorf("second progress = %+v", seen[1])
	}
}

func TestRun_InvalidInput(t *testing.T) {
	svc := New(llm.NewMockProvider(), testConfig(10))

	if _, err := svc.Run(context.Background(), GenerateInput{SourceText: "x", Total: 0}, nil); err == nil {
		t.Error("expected error for zero count")
	}
	if _, err := svc.Run(context.Background(), GenerateInput{SourceText: "  ", Total: 5}, nil); err == nil {
		t.Error("expected error for empty source")
	}
}

func TestRun_SpeedModeChangesPrompt(t *testing.T) {
	mockStd := llm.NewMockProvider(llm.MockResponse{Content: batchJSON("a")})
	cfg := testConfig(10)
	cfg.SpeedMode = SpeedStandard
	if _, err := New(mockStd, cfg).Run(context.Background(), testInput(1), nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	mockFast := llm.NewMockProvider(llm.MockResponse{Content: batchJSON("a")})
	cfg.SpeedMode = SpeedFast
	if _, err := New(mockFast, cfg).Run(context.Background(), testInput(1), nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if mockStd.Calls[0].System == mockFast.Calls[0].System {
		t.Error("expected different system prompts per speed mode")
	}
}

func TestParseSyllabus(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(
		`{"name":"History","books":[{"title":"History","topics":[{"title":"Ancient"},{"title":"Modern"}]}]}`,
	)})
	svc := New(mock, testConfig(10))

	preset, err := svc.ParseSyllabus(context.Background(), "some outline text")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(preset.Books) != 1 || len(preset.Books[0].Topics) != 2 {
		t.Fatalf("unexpected shape: %+v", preset)
	}
	if preset.Books[0].Topics[0].ID != "topic-ancient-0" {
		t.Errorf("topic id = %q", preset.Books[0].Topics[0].ID)
	}
}

func TestParseSyllabus_UntitledTopicFails(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(
		`{"books":[{"title":"History","topics":[{"description":"no title"}]}]}`,
	)})
	svc := New(mock, testConfig(10))

	if _, err := svc.ParseSyllabus(context.Background(), "text"); err == nil {
		t.Fatal("expected error for untitled topic")
	}
}

func TestClassifyQuestions(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(
		`{"mappings":[{"questionId":"q1","bookId":"book-history-0","topicId":"topic-ancient-0"},{"bookId":"orphan"}]}`,
	)})
	svc := New(mock, testConfig(10))

	preset, _ := svcPreset()
	qs := batchQuestions(t, "When did Rome fall?")

	mappings, err := svc.ClassifyQuestions(context.Background(), preset, qs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// The element without a questionId is dropped.
	if len(mappings) != 1 {
		t.Fatalf("got %d mappings, want 1", len(mappings))
	}
	if mappings[0].BookID != "book-history-0" || mappings[0].TopicID != "topic-ancient-0" {
		t.Errorf("mapping = %+v", mappings[0])
	}

	// The prompt must carry the syllabus outline and the question.
	prompt := mock.Calls[0].Messages[0].Content
	if !strings.Contains(prompt, "book-history-0") || !strings.Contains(prompt, "When did Rome fall?") {
		t.Errorf("prompt missing outline or question:\n%s", prompt)
	}
}

// Package quizgen turns source documents into quiz banks by prompting
// an LLM provider batch by batch and normalizing each response.
package quizgen

import (
	"context"
	"fmt"
	"strings"

	"github.com/rahulm/quizforge/internal/llm"
	"github.com/rahulm/quizforge/internal/quiz"
)

// GenerateInput describes one generation run.
type GenerateInput struct {
	// SourceText is the extracted document text questions are drawn from.
	SourceText string

	// SourceName labels the document (filename); copied into each
	// question's sourceDocument field when the model omits it.
	SourceName string

	// Total is the number of questions requested across all batches.
	Total int
}

// BatchProgress reports the state of a run after each batch.
type BatchProgress struct {
	Batch     int // 1-based index of the batch just finished
	Batches   int // total planned batches
	Generated int // questions accumulated so far
}

// Service generates quiz questions using an LLM provider.
// Batches are issued strictly sequentially: each response is awaited
// and normalized before the next request goes out, so later prompts
// can carry the stems already produced for deduplication.
type Service struct {
	provider llm.Provider
	config   Config
}

// New creates a Service with the given provider and config.
func New(provider llm.Provider, cfg Config) *Service {
	return &Service{provider: provider, config: cfg}
}

// Run executes a full generation job. The returned slice holds every
// question accumulated before the first failure; when err is non-nil
// the slice is still valid (batches completed before the failure are
// kept, not rolled back). Cancellation via ctx behaves the same way.
// onProgress may be nil.
func (s *Service) Run(ctx context.Context, input GenerateInput, onProgress func(BatchProgress)) ([]quiz.Question, error) {
	if input.Total <= 0 {
		return nil, fmt.Errorf("question count must be positive, got %d", input.Total)
	}
	if strings.TrimSpace(input.SourceText) == "" {
		return nil, fmt.Errorf("source text is empty")
	}

	batchSize := s.config.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultConfig().BatchSize
	}
	batches := (input.Total + batchSize - 1) / batchSize

	var accumulated []quiz.Question
	seen := make(map[string]bool)

	for batch := 0; batch < batches; batch++ {
		if err := ctx.Err(); err != nil {
			return accumulated, err
		}

		count := batchSize
		if remaining := input.Total - len(accumulated); remaining < count {
			count = remaining
		}
		if count <= 0 {
			break
		}

		questions, err := s.generateBatch(ctx, input, count, accumulated)
		if err != nil {
			return accumulated, fmt.Errorf("batch %d/%d: %w", batch+1, batches, err)
		}

		for _, q := range questions {
			stem := normalizeStem(q.Stem)
			if seen[stem] {
				continue
			}
			seen[stem] = true
			if q.SourceDocument == "" {
				q.SourceDocument = input.SourceName
			}
			accumulated = append(accumulated, q)
		}

		if onProgress != nil {
			onProgress(BatchProgress{
				Batch:     batch + 1,
				Batches:   batches,
				Generated: len(accumulated),
			})
		}
	}

	if len(accumulated) == 0 {
		return nil, fmt.Errorf("no usable questions generated")
	}
	if len(accumulated) > input.Total {
		accumulated = accumulated[:input.Total]
	}
	return accumulated, nil
}

// generateBatch issues one LLM call and normalizes the response.
// A response with zero surviving questions fails the batch.
func (s *Service) generateBatch(ctx context.Context, input GenerateInput, count int, prior []quiz.Question) ([]quiz.Question, error) {
	ctx = llm.WithPurpose(ctx, "quiz-gen")

	req := llm.Request{
		System: quizSystemPrompt(s.config.SpeedMode),
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildQuizUserMessage(input, count, prior, s.config.MaxPriorStems)},
		},
		Schema:      QuizBatchSchema,
		MaxTokens:   s.config.MaxTokens,
		Temperature: s.config.Temperature,
	}

	resp, err := s.provider.Generate(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("LLM generation failed: %w", err)
	}

	questions := quiz.Normalize(string(resp.Content))
	if questions == nil {
		return nil, fmt.Errorf("no valid questions in LLM response")
	}
	return questions, nil
}

// normalizeStem folds case and whitespace for duplicate detection.
func normalizeStem(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

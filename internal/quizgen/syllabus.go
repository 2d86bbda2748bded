package quizgen

import (
	"context"
	"fmt"
	"strings"

	"github.com/rahulm/quizforge/internal/llm"
	"github.com/rahulm/quizforge/internal/quiz"
	"github.com/rahulm/quizforge/internal/syllabus"
)

// ParseSyllabus asks the LLM to outline the given text into books and
// topics and normalizes the result into a Preset. A topic the model
// emits without a title fails the whole call; no partial syllabus is
// ever returned.
func (s *Service) ParseSyllabus(ctx context.Context, text string) (*syllabus.Preset, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("syllabus source text is empty")
	}

	ctx = llm.WithPurpose(ctx, "syllabus-parse")

	req := llm.Request{
		System: syllabusSystemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildSyllabusUserMessage(text)},
		},
		Schema:      SyllabusSchema,
		MaxTokens:   s.config.MaxTokens,
		Temperature: s.config.Temperature,
	}

	resp, err := s.provider.Generate(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("LLM syllabus parse failed: %w", err)
	}

	preset, err := syllabus.NormalizePreset(string(resp.Content))
	if err != nil {
		return nil, fmt.Errorf("syllabus response unusable: %w", err)
	}
	return preset, nil
}

// ClassifyQuestions asks the LLM to assign the given questions to the
// syllabus and returns the usable mappings. Elements the model emits
// without a question id are dropped, not fatal. An empty result is
// returned as (nil, nil): the caller falls back to the heuristic
// classifier or marks questions unmatched.
func (s *Service) ClassifyQuestions(ctx context.Context, preset *syllabus.Preset, questions []quiz.Question) ([]syllabus.Mapping, error) {
	if len(questions) == 0 {
		return nil, nil
	}

	ctx = llm.WithPurpose(ctx, "classification")

	req := llm.Request{
		System: classifySystemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildClassifyUserMessage(outlineText(preset), questions)},
		},
		Schema:      ClassifySchema,
		MaxTokens:   s.config.MaxTokens,
		Temperature: 0,
	}

	resp, err := s.provider.Generate(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("LLM classification failed: %w", err)
	}

	return syllabus.NormalizeMappings(string(resp.Content)), nil
}

// outlineText renders a preset as an indented id/title outline for the
// classification prompt.
func outlineText(p *syllabus.Preset) string {
	var b strings.Builder
	for _, book := range p.Books {
		fmt.Fprintf(&b, "book %s: %s\n", book.ID, book.Title)
		writeTopics(&b, book.Topics, 1)
	}
	return b.String()
}

func writeTopics(b *strings.Builder, topics []syllabus.Topic, depth int) {
	for i := range topics {
		fmt.Fprintf(b, "%stopic %s: %s\n", strings.Repeat("  ", depth), topics[i].ID, topics[i].Title)
		writeTopics(b, topics[i].Topics, depth+1)
	}
}

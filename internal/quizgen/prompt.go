package quizgen

import (
	"fmt"
	"strings"

	"github.com/rahulm/quizforge/internal/quiz"
)

const quizSystemBase = `You are an exam writer creating multiple-choice questions from study material.

Rules:
- Every question must be answerable from the provided source text alone.
- Write a clear, self-contained stem. Do not reference "the text above".
- Provide 4 options per question. Wrong options should reflect plausible confusions, not random noise.
- Single-answer and multiple-answer questions are both allowed; list every correct option id in answerIds.
- Do not repeat any stem from the "already generated" list.`

const quizSystemExplain = `
- For each question include: analysis (why the answer is correct), coreConcept (the concept being tested), and optionAnalyses (one short note per option id).`

const quizSystemFast = `
- Include a one-sentence analysis per question. Skip per-option notes.`

// quizSystemPrompt returns the system prompt for the given speed mode.
func quizSystemPrompt(speedMode string) string {
	if speedMode == SpeedFast {
		return quizSystemBase + quizSystemFast
	}
	return quizSystemBase + quizSystemExplain
}

// buildQuizUserMessage constructs the user message for one batch.
func buildQuizUserMessage(input GenerateInput, count int, prior []quiz.Question, maxPrior int) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Generate %d questions.\n", count)
	if input.SourceName != "" {
		fmt.Fprintf(&b, "Source document: %s\n", input.SourceName)
	}

	b.WriteString("\nAlready generated in this run:\n")
	b.WriteString(buildPriorStems(prior, maxPrior))

	b.WriteString("\n\nSource text:\n")
	b.WriteString(input.SourceText)

	return b.String()
}

// buildPriorStems formats already-generated stems for the prompt,
// respecting the max limit. Returns "None" when there are none.
func buildPriorStems(prior []quiz.Question, max int) string {
	if len(prior) == 0 {
		return "None"
	}

	// Keep only the most recent N stems.
	if max > 0 && len(prior) > max {
		prior = prior[len(prior)-max:]
	}

	var b strings.Builder
	for i, q := range prior {
		fmt.Fprintf(&b, "%d. %s\n", i+1, q.Stem)
	}
	return strings.TrimRight(b.String(), "\n")
}

const syllabusSystemPrompt = `You are organizing study material into a syllabus.

Rules:
- Read the provided text and produce a book/topic outline as JSON.
- Group related material into books; each book has an ordered list of topics.
- Topics may nest one or two levels deep where the material warrants it.
- Every topic must have a title. Prefer the source's own headings.`

// buildSyllabusUserMessage constructs the user message for syllabus parsing.
func buildSyllabusUserMessage(text string) string {
	var b strings.Builder
	b.WriteString("Build a syllabus for the following material:\n\n")
	b.WriteString(text)
	return b.String()
}

const classifySystemPrompt = `You are assigning quiz questions to a syllabus.

Rules:
- For each question, pick the single best matching book and topic from the syllabus.
- Use the question stem, its analysis, and its source document to decide.
- If no topic fits, assign the book alone with topicId null.
- If nothing fits, omit the question from the output.`

// buildClassifyUserMessage constructs the user message for one
// classification call.
func buildClassifyUserMessage(outline string, questions []quiz.Question) string {
	var b strings.Builder

	b.WriteString("Syllabus:\n")
	b.WriteString(outline)

	b.WriteString("\n\nQuestions:\n")
	for _, q := range questions {
		fmt.Fprintf(&b, "- id: %s\n  stem: %s\n", q.ID, q.Stem)
		if q.CoreConcept != "" {
			fmt.Fprintf(&b, "  concept: %s\n", q.CoreConcept)
		}
		if q.SourceDocument != "" {
			fmt.Fprintf(&b, "  source: %s\n", q.SourceDocument)
		}
	}

	return b.String()
}

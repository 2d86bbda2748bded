package quizgen

import "github.com/rahulm/quizforge/internal/llm"

// QuizBatchSchema defines the JSON schema for quiz generation responses.
// It is deliberately looser than the normalized Question type: the
// normalizer tolerates shape drift, the schema only pins the essentials.
var QuizBatchSchema = &llm.Schema{
	Name:        "quiz-batch",
	Description: "A batch of multiple-choice quiz questions",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"questions": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"stem": map[string]any{
							"type":        "string",
							"description": "The question text shown to the user",
						},
						"options": map[string]any{
							"type": "array",
							"items": map[string]any{
								"type": "string",
							},
							"description": "Answer choices in display order",
						},
						"answerIds": map[string]any{
							"type": "array",
							"items": map[string]any{
								"type": "string",
							},
							"description": "Correct option letters, e.g. [\"A\"] or [\"A\",\"C\"]",
						},
						"analysis": map[string]any{
							"type":        "string",
							"description": "Why the correct answer is correct",
						},
						"coreConcept": map[string]any{
							"type":        "string",
							"description": "The concept this question tests",
						},
						"optionAnalyses": map[string]any{
							"type":        "object",
							"description": "Per-option note keyed by option letter",
							"additionalProperties": map[string]any{
								"type": "string",
							},
						},
					},
					"required": []any{"stem", "options", "answerIds"},
				},
			},
		},
		"required":             []any{"questions"},
		"additionalProperties": false,
	},
}

// SyllabusSchema defines the JSON schema for syllabus parsing responses.
var SyllabusSchema = &llm.Schema{
	Name:        "syllabus-outline",
	Description: "A book/topic outline built from study material",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"name": map[string]any{
				"type":        "string",
				"description": "Short name for the whole syllabus",
			},
			"books": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"title": map[string]any{
							"type": "string",
						},
						"topics": map[string]any{
							"type": "array",
							"items": map[string]any{
								"type": "object",
								"properties": map[string]any{
									"title": map[string]any{
										"type": "string",
									},
									"topics": map[string]any{
										"type":        "array",
										"items":       map[string]any{"type": "object"},
										"description": "Optional sub-topics, same shape",
									},
								},
								"required": []any{"title"},
							},
						},
					},
					"required": []any{"title", "topics"},
				},
			},
		},
		"required":             []any{"books"},
		"additionalProperties": false,
	},
}

// ClassifySchema defines the JSON schema for classification responses.
var ClassifySchema = &llm.Schema{
	Name:        "question-classification",
	Description: "Question-to-syllabus assignments",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"mappings": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"questionId": map[string]any{
							"type": "string",
						},
						"bookId": map[string]any{
							"type": "string",
						},
						"topicId": map[string]any{
							"type": []any{"string", "null"},
						},
					},
					"required": []any{"questionId", "bookId"},
				},
			},
		},
		"required":             []any{"mappings"},
		"additionalProperties": false,
	},
}

// Package quiz defines the question domain model and the normalizer that
// turns loosely-shaped LLM output into validated questions.
package quiz

import "time"

// QuestionType distinguishes single-answer from multiple-answer questions.
// It is always derived from the answer count, never trusted from input.
type QuestionType string

const (
	TypeSingle   QuestionType = "single"
	TypeMultiple QuestionType = "multiple"
)

// Option is one selectable answer choice. ID is a canonical label —
// uppercase letter "A".."Z", numeric fallback beyond that — unique within
// the question's option list. Order is significant: it maps to display
// letters.
type Option struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// Question is a validated quiz question. A Question emitted by the
// normalizer always satisfies: Stem non-empty, len(Options) > 0,
// AnswerIDs non-empty and every entry resolves to an existing option.
type Question struct {
	ID        string       `json:"id"`
	Type      QuestionType `json:"type"`
	Stem      string       `json:"stem"`
	Options   []Option     `json:"options"`
	AnswerIDs []string     `json:"answerIds"`

	// Explanation fields. Analysis is the free-text fallback.
	Analysis       string            `json:"analysis,omitempty"`
	CoreConcept    string            `json:"coreConcept,omitempty"`
	OptionAnalyses map[string]string `json:"optionAnalyses,omitempty"`
	ExtendedCases  []string          `json:"extendedCases,omitempty"`

	// Provenance and classification.
	SourceDocument  string `json:"sourceDocument,omitempty"`
	BookTitle       string `json:"bookTitle,omitempty"`
	ChapterTitle    string `json:"chapterTitle,omitempty"`
	AssignedBookID  string `json:"assignedBookId,omitempty"`
	AssignedTopicID string `json:"assignedTopicId,omitempty"`
}

// OptionByID returns the option with the given id, or nil.
func (q *Question) OptionByID(id string) *Option {
	for i := range q.Options {
		if q.Options[i].ID == id {
			return &q.Options[i]
		}
	}
	return nil
}

// Bank is a named, persisted collection of questions created by one
// generation run or one import. A bank owns its questions: they are
// created together and deleted together.
type Bank struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Questions []Question `json:"questions"`
	CreatedAt time.Time  `json:"createdAt"`
}

// QuestionMeta is a sparse side-table entry keyed by question id. Manual
// classification and tag overrides live here so that re-classification
// never mutates the original question. Overrides take precedence over
// both the question's own assigned fields and the heuristic classifier.
type QuestionMeta struct {
	ID              string   `json:"id"`
	Tags            []string `json:"tags,omitempty"`
	AssignedBookID  string   `json:"assignedBookId,omitempty"`
	AssignedTopicID string   `json:"assignedTopicId,omitempty"`
}

// MistakeEntry is a value copy of a question the user answered wrong,
// together with the submitted answer. Editing a bank does not
// retroactively change a captured mistake.
type MistakeEntry struct {
	Question   Question  `json:"question"`
	AnswerIDs  []string  `json:"answerIds"`
	MissedAt   time.Time `json:"missedAt"`
	SourceBank string    `json:"sourceBank,omitempty"`
}

// FavoriteEntry is a value copy of a favorited question.
type FavoriteEntry struct {
	Question Question  `json:"question"`
	AddedAt  time.Time `json:"addedAt"`
}

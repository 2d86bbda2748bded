// Package syllabus models hierarchical study outlines (books with nested
// topics) and assigns questions to them, by manual override first and a
// deterministic scoring heuristic otherwise.
package syllabus

// Topic is a node in a book's topic tree. Depth is unbounded. IDs are
// unique within the whole preset, not just among siblings, because
// cross-book lookups by topic id occur elsewhere.
type Topic struct {
	ID     string  `json:"id"`
	Title  string  `json:"title"`
	Topics []Topic `json:"topics,omitempty"`
}

// Book groups the top level of a syllabus.
type Book struct {
	ID     string  `json:"id"`
	Title  string  `json:"title"`
	Topics []Topic `json:"topics"`
}

// Preset is a user-named syllabus: created by parsing free-form text via
// the LLM or by direct JSON import, mutated only by rename or
// regeneration, deleted explicitly.
type Preset struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Books []Book `json:"books"`
}

// TopicOther is the sentinel topic id meaning "assigned to the book but
// deliberately to no topic".
const TopicOther = "other"

// Assignment is the classifier's verdict for one question. TopicID is
// empty when the question lands on a book with no confident topic.
type Assignment struct {
	BookID  string
	TopicID string
}

// Mapping is one record of LLM classification output: question → book,
// optionally a topic.
type Mapping struct {
	QuestionID string `json:"questionId"`
	BookID     string `json:"bookId"`
	TopicID    string `json:"topicId,omitempty"`
}

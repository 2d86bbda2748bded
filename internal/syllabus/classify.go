package syllabus

import (
	"strings"

	"github.com/rahulm/quizforge/internal/quiz"
)

// Scoring contract. These weights and thresholds are the tie-breaking
// behavior callers depend on; changing them changes which questions land
// where.
const (
	bookBankTitleScore = 3
	bookSourceDocScore = 3
	bookBlobScore      = 1

	topicBankTitleScore   = 2
	topicBlobScore        = 2
	topicCoreConceptScore = 2
	topicAnalysisScore    = 1

	topicThreshold = 3
	bookThreshold  = 2
)

// Candidate is one scored placement produced by the heuristic. TopicID
// is empty for book-level candidates.
type Candidate struct {
	BookID  string
	TopicID string
	Score   float64
}

// Classify assigns a question to a book and topic within the preset.
// Manual overrides (the meta side-table first, then the question's own
// assigned fields) win outright; the scoring heuristic runs only when no
// valid override exists. Returns nil when nothing places confidently —
// low-confidence guesses are worse than "unclassified".
func Classify(q *quiz.Question, ix *Index, meta *quiz.QuestionMeta, bankTitle string) *Assignment {
	if a := overrideAssignment(q, ix, meta); a != nil {
		return a
	}

	bookCands, topicCands := RankCandidates(q, ix, bankTitle)

	if best := bestCandidate(topicCands); best != nil && best.Score >= topicThreshold {
		return &Assignment{BookID: best.BookID, TopicID: best.TopicID}
	}
	if best := bestCandidate(bookCands); best != nil && best.Score >= bookThreshold {
		return &Assignment{BookID: best.BookID}
	}
	return nil
}

// overrideAssignment resolves a manual assignment. A book override is
// honored whenever the book exists; an accompanying topic id must
// resolve inside that book's tree (the "other" sentinel and unresolvable
// ids degrade to a book-only assignment).
func overrideAssignment(q *quiz.Question, ix *Index, meta *quiz.QuestionMeta) *Assignment {
	bookID, topicID := q.AssignedBookID, q.AssignedTopicID
	if meta != nil && meta.AssignedBookID != "" {
		bookID, topicID = meta.AssignedBookID, meta.AssignedTopicID
	}
	if bookID == "" || ix.Book(bookID) == nil {
		return nil
	}

	a := &Assignment{BookID: bookID}
	if topicID != "" && topicID != TopicOther && ix.TopicInBook(bookID, topicID) {
		a.TopicID = topicID
	}
	return a
}

// RankCandidates scores every book and every topic in the preset against
// the question. It is a pure function of its inputs: no randomness, no
// mutation, so classification is reproducible and auditable. Candidates
// are returned in traversal order; ties resolve to the earlier entry.
func RankCandidates(q *quiz.Question, ix *Index, bankTitle string) (books, topics []Candidate) {
	bank := normText(bankTitle)
	source := normText(q.SourceDocument)
	core := normText(q.CoreConcept)
	analysis := normText(q.Analysis)
	blob := normText(strings.Join([]string{
		bankTitle, q.SourceDocument, q.Stem, q.CoreConcept, q.Analysis,
	}, " "))

	for _, book := range ix.booksInOrder() {
		title := normText(book.Title)

		var score float64
		if looseContains(bank, title) {
			score += bookBankTitleScore
		}
		if looseContains(source, title) {
			score += bookSourceDocScore
		}
		if looseContains(blob, title) {
			score += bookBlobScore
		}
		books = append(books, Candidate{BookID: book.ID, Score: score})

		walkTopics(book.Topics, 0, func(t *Topic, depth int) {
			tTitle := normText(t.Title)
			var ts float64
			if looseContains(bank, tTitle) {
				ts += topicBankTitleScore
			}
			if looseContains(blob, tTitle) {
				ts += topicBlobScore
			}
			if looseContains(core, tTitle) {
				ts += topicCoreConceptScore
			}
			if looseContains(analysis, tTitle) {
				ts += topicAnalysisScore
			}
			// Shallower topics are more general; favor them on ties.
			ts += depthBonus(depth)
			topics = append(topics, Candidate{BookID: book.ID, TopicID: t.ID, Score: ts})
		})
	}
	return books, topics
}

func depthBonus(depth int) float64 {
	if depth > 2 {
		depth = 2
	}
	return float64(3-depth) * 0.5
}

// bestCandidate returns the highest-scoring candidate, first wins on
// ties. Nil for an empty list.
func bestCandidate(cands []Candidate) *Candidate {
	var best *Candidate
	for i := range cands {
		if best == nil || cands[i].Score > best.Score {
			best = &cands[i]
		}
	}
	return best
}

// looseContains is symmetric substring containment over normalized text.
// Both sides must be non-empty.
func looseContains(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}

func normText(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func walkTopics(topics []Topic, depth int, fn func(*Topic, int)) {
	for i := range topics {
		fn(&topics[i], depth)
		walkTopics(topics[i].Topics, depth+1, fn)
	}
}

// booksInOrder returns books in their preset order. The index keeps map
// lookups for id resolution; ordering comes from the preset itself.
func (ix *Index) booksInOrder() []*Book {
	return ix.ordered
}

package syllabus

// Index is a precomputed arena over a preset's topic trees. The
// classifier and meta-override resolution both look topics up by id; the
// index replaces repeated recursive walks with O(1) lookups.
type Index struct {
	books   map[string]*Book
	ordered []*Book
	topics  map[string]indexEntry
}

type indexEntry struct {
	topic  *Topic
	bookID string
	depth  int
}

// BuildIndex walks the preset once and records every topic with its
// owning book and depth (0 for a book's direct topics).
func BuildIndex(p *Preset) *Index {
	ix := &Index{
		books:  make(map[string]*Book),
		topics: make(map[string]indexEntry),
	}
	for i := range p.Books {
		book := &p.Books[i]
		ix.books[book.ID] = book
		ix.ordered = append(ix.ordered, book)
		for j := range book.Topics {
			ix.addTopic(&book.Topics[j], book.ID, 0)
		}
	}
	return ix
}

func (ix *Index) addTopic(t *Topic, bookID string, depth int) {
	ix.topics[t.ID] = indexEntry{topic: t, bookID: bookID, depth: depth}
	for i := range t.Topics {
		ix.addTopic(&t.Topics[i], bookID, depth+1)
	}
}

// Book returns the book with the given id, or nil.
func (ix *Index) Book(id string) *Book {
	return ix.books[id]
}

// Topic returns the topic with the given id anywhere in the preset,
// or nil.
func (ix *Index) Topic(id string) *Topic {
	if e, ok := ix.topics[id]; ok {
		return e.topic
	}
	return nil
}

// TopicInBook reports whether topicID resolves to a topic at any depth
// within the given book's tree.
func (ix *Index) TopicInBook(bookID, topicID string) bool {
	e, ok := ix.topics[topicID]
	return ok && e.bookID == bookID
}

// Depth returns the topic's depth, or -1 if unknown.
func (ix *Index) Depth(topicID string) int {
	if e, ok := ix.topics[topicID]; ok {
		return e.depth
	}
	return -1
}

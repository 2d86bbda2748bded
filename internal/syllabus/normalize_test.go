package syllabus

import (
	"errors"
	"testing"
)

func TestNormalizePreset_StringTopics(t *testing.T) {
	input := `{"books":[{"title":"History","topics":["Ancient","Modern"]}]}`

	p, err := NormalizePreset(input)
	if err != nil {
		t.Fatal(err)
	}
	if len(p.Books) != 1 {
		t.Fatalf("expected 1 book, got %d", len(p.Books))
	}
	book := p.Books[0]
	if book.Title != "History" {
		t.Errorf("unexpected title %q", book.Title)
	}
	if len(book.Topics) != 2 {
		t.Fatalf("expected 2 topics, got %d", len(book.Topics))
	}
	if book.Topics[0].ID != "topic-ancient-0" || book.Topics[0].Title != "Ancient" {
		t.Errorf("topic 0: %+v", book.Topics[0])
	}
	if book.Topics[1].ID != "topic-modern-1" || book.Topics[1].Title != "Modern" {
		t.Errorf("topic 1: %+v", book.Topics[1])
	}
	if len(book.Topics[0].Topics) != 0 {
		t.Errorf("string topic grew subtopics: %+v", book.Topics[0])
	}
}

func TestNormalizePreset_NestedObjectTopics(t *testing.T) {
	input := "```json\n" + `{"name":"考纲","books":[{"name":"宪法","modules":[{"title":"总则","children":["基本原则",{"title":"国家机构","subtopics":["人大"]}]}]}]}` + "\n```"

	p, err := NormalizePreset(input)
	if err != nil {
		t.Fatal(err)
	}
	if p.Name != "考纲" {
		t.Errorf("name = %q", p.Name)
	}
	book := p.Books[0]
	if book.Title != "宪法" {
		t.Errorf("book title = %q", book.Title)
	}
	root := book.Topics[0]
	if root.Title != "总则" || len(root.Topics) != 2 {
		t.Fatalf("root topic wrong: %+v", root)
	}
	if root.Topics[1].Topics[0].Title != "人大" {
		t.Errorf("deep topic missing: %+v", root.Topics[1])
	}
}

func TestNormalizePreset_UntitledTopicIsFatal(t *testing.T) {
	input := `{"books":[{"title":"A","topics":["ok",{"notes":"no title here"}]}]}`
	_, err := NormalizePreset(input)
	if !errors.Is(err, ErrTopicUntitled) {
		t.Fatalf("expected ErrTopicUntitled, got %v", err)
	}
}

func TestNormalizePreset_BookTitleFallback(t *testing.T) {
	input := `[{"topics":["x"]},{"topics":["y"]}]`
	p, err := NormalizePreset(input)
	if err != nil {
		t.Fatal(err)
	}
	if p.Books[0].Title != "书本1" || p.Books[1].Title != "书本2" {
		t.Errorf("fallback titles: %q, %q", p.Books[0].Title, p.Books[1].Title)
	}
}

func TestNormalizePreset_NoBooks(t *testing.T) {
	for _, input := range []string{"not json", `{"foo":1}`, `{"books":[]}`} {
		if _, err := NormalizePreset(input); err == nil {
			t.Errorf("expected error for %q", input)
		}
	}
}

func TestNormalizePreset_DuplicateIDsDisambiguated(t *testing.T) {
	input := `{"books":[{"title":"A","topics":["Intro"]},{"title":"B","topics":["Intro"]}]}`
	p, err := NormalizePreset(input)
	if err != nil {
		t.Fatal(err)
	}
	a := p.Books[0].Topics[0].ID
	b := p.Books[1].Topics[0].ID
	if a == b {
		t.Errorf("topic ids collide: %q", a)
	}
}

func TestNormalizeMappings(t *testing.T) {
	input := "Here you go:\n```json\n" + `{"mappings":[
		{"questionId":"q1","bookId":"book-a-0","topicId":"topic-x-0"},
		{"id":"q2","bookId":7},
		{"bookId":"orphan"},
		{"questionId":"q3","topicId":null}
	]}` + "\n```"

	ms := NormalizeMappings(input)
	if len(ms) != 3 {
		t.Fatalf("expected 3 mappings, got %d", len(ms))
	}
	if ms[0].QuestionID != "q1" || ms[0].BookID != "book-a-0" || ms[0].TopicID != "topic-x-0" {
		t.Errorf("mapping 0: %+v", ms[0])
	}
	if ms[1].QuestionID != "q2" || ms[1].BookID != "7" {
		t.Errorf("mapping 1: %+v", ms[1])
	}
	if ms[2].QuestionID != "q3" || ms[2].BookID != "" || ms[2].TopicID != "" {
		t.Errorf("mapping 2: %+v", ms[2])
	}
}

func TestNormalizeMappings_NoArray(t *testing.T) {
	if ms := NormalizeMappings(`{"nothing":true}`); ms != nil {
		t.Errorf("expected nil, got %v", ms)
	}
}

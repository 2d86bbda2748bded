package syllabus

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/rahulm/quizforge/internal/extract"
)

// ErrNoPayload reports that the LLM text contained no parseable syllabus.
var ErrNoPayload = errors.New("no parseable syllabus payload")

// ErrTopicUntitled reports a topic object missing both title and name.
// Unlike quiz questions, this aborts the whole normalization: a partially
// built syllabus is never emitted.
var ErrTopicUntitled = errors.New("topic missing title")

// subtopic field fallbacks, walked in order.
var subtopicFields = []string{"topics", "subtopics", "children"}

// NormalizePreset converts raw LLM text into a validated Preset.
func NormalizePreset(text string) (*Preset, error) {
	payload := parsePayload(text)
	if payload == nil {
		return nil, ErrNoPayload
	}

	rawBooks, name := locateBooks(payload)
	if rawBooks == nil {
		return nil, ErrNoPayload
	}

	ids := newIDSet()
	preset := &Preset{
		ID:   ids.claim("syllabus", slugify(name), 0),
		Name: name,
	}
	if preset.Name == "" {
		preset.Name = "大纲 " + time.Now().Format("2006-01-02 15:04")
	}

	for i, rb := range rawBooks {
		book, err := normalizeBook(rb, i, ids)
		if err != nil {
			return nil, err
		}
		if book != nil {
			preset.Books = append(preset.Books, *book)
		}
	}
	if len(preset.Books) == 0 {
		return nil, ErrNoPayload
	}
	return preset, nil
}

func parsePayload(text string) any {
	block := extract.JSONBlock(text)
	if block == "" {
		block = extract.JSONBlock(extract.RepairJSON(text))
		if block == "" {
			return nil
		}
	}
	var v any
	if err := json.Unmarshal([]byte(block), &v); err != nil {
		repaired := extract.RepairJSON(block)
		if err := json.Unmarshal([]byte(repaired), &v); err != nil {
			return nil
		}
	}
	return v
}

// locateBooks finds the book array (value itself, .books, .preset.books,
// .data) and captures an optional name/title alongside.
func locateBooks(v any) ([]any, string) {
	if arr, ok := v.([]any); ok {
		return arr, ""
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, ""
	}

	name, _ := obj["name"].(string)
	if name == "" {
		name, _ = obj["title"].(string)
	}

	if arr, ok := obj["books"].([]any); ok {
		return arr, name
	}
	if preset, ok := obj["preset"].(map[string]any); ok {
		if name == "" {
			name, _ = preset["name"].(string)
		}
		if arr, ok := preset["books"].([]any); ok {
			return arr, name
		}
	}
	if arr, ok := obj["data"].([]any); ok {
		return arr, name
	}
	return nil, ""
}

func normalizeBook(v any, index int, ids *idSet) (*Book, error) {
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, nil
	}

	title, _ := obj["title"].(string)
	if title == "" {
		title, _ = obj["name"].(string)
	}
	title = strings.TrimSpace(title)
	if title == "" {
		title = fmt.Sprintf("书本%d", index+1)
	}

	book := &Book{Title: title}
	if id, ok := obj["id"].(string); ok && id != "" {
		book.ID = ids.claimLiteral(id)
	} else {
		book.ID = ids.claim("book", slugify(title), index)
	}

	rawTopics, _ := obj["topics"].([]any)
	if rawTopics == nil {
		rawTopics, _ = obj["modules"].([]any)
	}
	for i, rt := range rawTopics {
		topic, err := normalizeTopic(rt, i, ids)
		if err != nil {
			return nil, err
		}
		if topic != nil {
			book.Topics = append(book.Topics, *topic)
		}
	}
	return book, nil
}

// normalizeTopic accepts a bare string (title verbatim, generated id) or
// an object whose missing title is fatal for the whole normalization.
func normalizeTopic(v any, index int, ids *idSet) (*Topic, error) {
	switch val := v.(type) {
	case string:
		val = strings.TrimSpace(val)
		if val == "" {
			return nil, nil
		}
		return &Topic{
			ID:    ids.claim("topic", slugify(val), index),
			Title: val,
		}, nil

	case map[string]any:
		title, _ := val["title"].(string)
		if title == "" {
			title, _ = val["name"].(string)
		}
		title = strings.TrimSpace(title)
		if title == "" {
			return nil, ErrTopicUntitled
		}

		topic := &Topic{Title: title}
		if id, ok := val["id"].(string); ok && id != "" {
			topic.ID = ids.claimLiteral(id)
		} else {
			topic.ID = ids.claim("topic", slugify(title), index)
		}

		for _, key := range subtopicFields {
			raw, ok := val[key].([]any)
			if !ok {
				continue
			}
			for i, rt := range raw {
				sub, err := normalizeTopic(rt, i, ids)
				if err != nil {
					return nil, err
				}
				if sub != nil {
					topic.Topics = append(topic.Topics, *sub)
				}
			}
			break
		}
		return topic, nil
	}
	return nil, nil
}

// idSet generates deterministic ids (prefix-slug-index) and keeps them
// unique across the whole preset.
type idSet struct {
	used map[string]bool
}

func newIDSet() *idSet {
	return &idSet{used: make(map[string]bool)}
}

func (s *idSet) claim(prefix, slug string, index int) string {
	base := fmt.Sprintf("%s-%s-%d", prefix, slug, index)
	if slug == "" {
		base = fmt.Sprintf("%s-%d", prefix, index)
	}
	return s.claimLiteral(base)
}

func (s *idSet) claimLiteral(id string) string {
	if !s.used[id] {
		s.used[id] = true
		return id
	}
	for n := 2; ; n++ {
		candidate := fmt.Sprintf("%s-%d", id, n)
		if !s.used[candidate] {
			s.used[candidate] = true
			return candidate
		}
	}
}

// slugify lowercases the title and folds runs of non-letter/digit runes
// into single dashes. CJK titles survive as-is.
func slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	lastDash := true
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			lastDash = false
			continue
		}
		if !lastDash {
			b.WriteByte('-')
			lastDash = true
		}
	}
	out := strings.TrimRight(b.String(), "-")
	if runes := []rune(out); len(runes) > 48 {
		out = strings.TrimRight(string(runes[:48]), "-")
	}
	return out
}

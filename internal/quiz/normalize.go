package quiz

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/rahulm/quizforge/internal/extract"
)

// Field-name fallback tables. The normalizer walks these in order; adding
// tolerance for a new LLM output shape means appending a name here.
var (
	stemFields       = []string{"stem", "question", "title"}
	optionFields     = []string{"options", "choices"}
	optionTextFields = []string{"text", "value", "title"}
	optionIDFields   = []string{"id", "label"}
	answerFields     = []string{
		"answerIds", "answers", "answer", "answerId",
		"correctOption", "correctOptions", "correctIndex", "correctIndices",
	}
)

// Normalize converts raw LLM text into a validated question list.
// Returns nil when no parseable payload or zero valid questions are
// found — an expected condition the caller surfaces as "no result".
func Normalize(text string) []Question {
	payload := parsePayload(text)
	if payload == nil {
		return nil
	}

	elements := locateQuestionArray(payload)
	if elements == nil {
		return nil
	}

	var out []Question
	for i, el := range elements {
		m, ok := el.(map[string]any)
		if !ok {
			continue
		}
		if q := normalizeElement(m, i); q != nil {
			out = append(out, *q)
		}
	}
	return out
}

// parsePayload runs the extractor and parses, retrying once after the
// lenient trailing-comma repair.
func parsePayload(text string) any {
	block := extract.JSONBlock(text)
	if block == "" {
		// A trailing comma can defeat the extractor's parse check, so
		// retry extraction on the repaired text.
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

// locateQuestionArray finds the element list inside the parsed payload:
// the value itself, .questions, .data, .result.questions, or a single
// question object wrapped into a singleton.
func locateQuestionArray(v any) []any {
	if arr, ok := v.([]any); ok {
		return arr
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil
	}
	if arr, ok := obj["questions"].([]any); ok {
		return arr
	}
	if arr, ok := obj["data"].([]any); ok {
		return arr
	}
	if result, ok := obj["result"].(map[string]any); ok {
		if arr, ok := result["questions"].([]any); ok {
			return arr
		}
	}
	if looksLikeQuestion(obj) {
		return []any{obj}
	}
	return nil
}

func looksLikeQuestion(obj map[string]any) bool {
	_, hasStem := obj["stem"]
	_, hasQuestion := obj["question"]
	_, hasOptions := obj["options"]
	_, hasChoices := obj["choices"]
	return (hasStem || hasQuestion) && (hasOptions || hasChoices)
}

// normalizeElement builds one Question from a loosely-shaped object, or
// nil if the element cannot yield a valid question. Per-element failures
// never abort the batch.
func normalizeElement(m map[string]any, _ int) *Question {
	stem := strings.TrimSpace(firstString(m, stemFields))
	if stem == "" {
		return nil
	}

	options := resolveOptions(m)
	if len(options) == 0 {
		return nil
	}

	answerIDs := resolveAnswerIDs(m, options)
	if len(answerIDs) == 0 {
		return nil
	}

	q := &Question{
		ID:        stringField(m, "id"),
		Stem:      stem,
		Options:   options,
		AnswerIDs: answerIDs,
		Type:      TypeSingle,
	}
	if len(answerIDs) > 1 {
		q.Type = TypeMultiple
	}
	if q.ID == "" {
		q.ID = "q-" + uuid.NewString()
	}

	q.Analysis = firstString(m, []string{"analysis", "解析"})
	q.CoreConcept = stringField(m, "coreConcept")
	q.SourceDocument = stringField(m, "sourceDocument")
	q.BookTitle = stringField(m, "bookTitle")
	q.ChapterTitle = stringField(m, "chapterTitle")
	q.AssignedBookID = stringField(m, "assignedBookId")
	q.AssignedTopicID = stringField(m, "assignedTopicId")

	if oa, ok := m["optionAnalyses"].(map[string]any); ok {
		q.OptionAnalyses = make(map[string]string, len(oa))
		for k, v := range oa {
			if s, ok := v.(string); ok {
				q.OptionAnalyses[k] = s
			}
		}
	}
	if ec, ok := m["extendedCases"].([]any); ok {
		for _, v := range ec {
			if s, ok := v.(string); ok {
				q.ExtendedCases = append(q.ExtendedCases, s)
			}
		}
	}

	return q
}

// resolveOptions reads the option list. Plain strings get canonical
// letter IDs by position; objects keep their own id/label when present.
func resolveOptions(m map[string]any) []Option {
	var raw []any
	for _, key := range optionFields {
		if arr, ok := m[key].([]any); ok {
			raw = arr
			break
		}
	}

	// Positional letters count kept options, not raw elements, so a
	// dropped blank never leaves a hole.
	var out []Option
	for _, el := range raw {
		switch v := el.(type) {
		case string:
			if strings.TrimSpace(v) == "" {
				continue
			}
			out = append(out, Option{ID: canonicalLabel(len(out)), Text: v})
		case map[string]any:
			text := firstString(v, optionTextFields)
			if strings.TrimSpace(text) == "" {
				continue
			}
			id := firstString(v, optionIDFields)
			if id == "" {
				id = canonicalLabel(len(out))
			}
			out = append(out, Option{ID: strings.ToUpper(strings.TrimSpace(id)), Text: text})
		}
	}
	return out
}

// canonicalLabel is "A".."Z" for the first 26 positions, then a 1-based
// numeric fallback.
func canonicalLabel(i int) string {
	if i < 26 {
		return string(rune('A' + i))
	}
	return strconv.Itoa(i + 1)
}

// resolveAnswerIDs walks the answer field table and resolves the first
// field that yields at least one valid option id. The legacy answerIndex
// field is consulted only when nothing else matched.
func resolveAnswerIDs(m map[string]any, options []Option) []string {
	for _, key := range answerFields {
		v, ok := m[key]
		if !ok {
			continue
		}
		if ids := resolveAnswerValue(v, options); len(ids) > 0 {
			return ids
		}
	}
	if v, ok := m["answerIndex"]; ok {
		if n, ok := v.(float64); ok {
			if id := optionIDByIndex(options, int(n)); id != "" {
				return []string{id}
			}
		}
	}
	return nil
}

// resolveAnswerValue handles the shapes an answer field arrives in:
// arrays of indices or ids, delimited strings, contiguous letter runs
// ("AC"), single indices.
func resolveAnswerValue(v any, options []Option) []string {
	switch val := v.(type) {
	case []any:
		var ids []string
		for _, el := range val {
			switch e := el.(type) {
			case float64:
				if id := optionIDByIndex(options, int(e)); id != "" {
					ids = append(ids, id)
				}
			case string:
				if id := resolveAnswerToken(e, options); id != "" {
					ids = append(ids, id)
				}
			}
		}
		return dedupe(ids)
	case string:
		return resolveAnswerString(val, options)
	case float64:
		if id := optionIDByIndex(options, int(val)); id != "" {
			return []string{id}
		}
	}
	return nil
}

func resolveAnswerString(s string, options []Option) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	// Delimited list: "A, C" or "A C".
	if strings.ContainsAny(s, ", \t|;") {
		parts := strings.FieldsFunc(s, func(r rune) bool {
			return r == ',' || r == ' ' || r == '\t' || r == '|' || r == ';'
		})
		var ids []string
		for _, p := range parts {
			if id := resolveAnswerToken(p, options); id != "" {
				ids = append(ids, id)
			}
		}
		return dedupe(ids)
	}

	// Contiguous letter run: "AC" means A and C.
	if len(s) > 1 && isLetters(s) {
		var ids []string
		for _, r := range s {
			if id := resolveAnswerToken(string(r), options); id != "" {
				ids = append(ids, id)
			}
		}
		if len(ids) > 0 {
			return dedupe(ids)
		}
	}

	if id := resolveAnswerToken(s, options); id != "" {
		return []string{id}
	}
	return nil
}

// resolveAnswerToken matches one token against option ids
// (case-insensitive), falling back to a numeric index.
func resolveAnswerToken(tok string, options []Option) string {
	tok = strings.TrimSpace(tok)
	if tok == "" {
		return ""
	}
	for _, o := range options {
		if strings.EqualFold(o.ID, tok) {
			return o.ID
		}
	}
	if n, err := strconv.Atoi(tok); err == nil {
		return optionIDByIndex(options, n)
	}
	return ""
}

func optionIDByIndex(options []Option, i int) string {
	if i < 0 || i >= len(options) {
		return ""
	}
	return options[i].ID
}

func isLetters(s string) bool {
	for _, r := range s {
		if (r < 'A' || r > 'Z') && (r < 'a' || r > 'z') {
			return false
		}
	}
	return true
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	var out []string
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

// firstString returns the first non-empty string value among keys.
func firstString(m map[string]any, keys []string) string {
	for _, k := range keys {
		if s, ok := m[k].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

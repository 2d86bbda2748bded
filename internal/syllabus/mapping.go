package syllabus

import (
	"encoding/json"
	"fmt"
)

// NormalizeMappings converts LLM classification output into
// question→(book, topic) records. Elements without a question id are
// dropped; returns nil when no parseable array is found or nothing
// survives.
func NormalizeMappings(text string) []Mapping {
	payload := parsePayload(text)
	if payload == nil {
		return nil
	}

	elements := locateMappingArray(payload)
	if elements == nil {
		return nil
	}

	var out []Mapping
	for _, el := range elements {
		m, ok := el.(map[string]any)
		if !ok {
			continue
		}
		qid, _ := m["questionId"].(string)
		if qid == "" {
			qid, _ = m["id"].(string)
		}
		if qid == "" {
			continue
		}
		out = append(out, Mapping{
			QuestionID: qid,
			BookID:     coerceString(m["bookId"]),
			TopicID:    coerceString(m["topicId"]),
		})
	}
	return out
}

func locateMappingArray(v any) []any {
	if arr, ok := v.([]any); ok {
		return arr
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil
	}
	for _, key := range []string{"mappings", "data", "classifications"} {
		if arr, ok := obj[key].([]any); ok {
			return arr
		}
	}
	return nil
}

// coerceString stringifies whatever the model produced for an id field.
// nil stays empty.
func coerceString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return jsonNumber(val)
	case bool:
		if val {
			return "true"
		}
		return "false"
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return ""
		}
		return string(b)
	}
}

func jsonNumber(f float64) string {
	if f == float64(int64(f)) {
		return fmt.Sprintf("%d", int64(f))
	}
	return fmt.Sprintf("%g", f)
}

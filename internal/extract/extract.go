// Package extract locates a JSON payload inside arbitrary LLM response
// text. Model output arrives wrapped in prose, markdown code fences, or a
// nested chat-completion envelope; extraction peels those layers until a
// parseable JSON value remains.
package extract

import (
	"encoding/json"
	"regexp"
	"strings"
)

var fencedBlock = regexp.MustCompile("(?s)```(?:json)?\\s*\n?(.*?)```")

// JSONBlock returns the first substring of text that parses as JSON, or
// "" if none is found. Not finding a block is an expected condition, not
// an error; callers treat the empty result as "no payload".
func JSONBlock(text string) string {
	text = stripFences(text)
	if text == "" {
		return ""
	}

	var parsed any
	if err := json.Unmarshal([]byte(text), &parsed); err == nil {
		if inner, ok := envelopeContent(parsed); ok {
			if got := JSONBlock(inner); got != "" {
				return got
			}
		}
		return text
	}

	return scanForBlock(text)
}

// Parse extracts and unmarshals in one step. The second return is false
// when no parseable block was found.
func Parse(text string) (any, bool) {
	block := JSONBlock(text)
	if block == "" {
		return nil, false
	}
	var v any
	if err := json.Unmarshal([]byte(block), &v); err != nil {
		// JSONBlock only returns parseable text, but a repaired block
		// may still be re-parsed by the caller.
		return nil, false
	}
	return v, true
}

// stripFences removes a markdown code fence wrapping, preferring a full
// fenced block and falling back to trimming stray fence markers.
func stripFences(text string) string {
	text = strings.TrimSpace(text)
	if m := fencedBlock.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}

// envelopeContent recognizes the two chat API envelopes that models echo
// back verbatim: OpenAI-style choices[0].message.content and Gemini-style
// candidates[0].content.parts[0].text.
func envelopeContent(v any) (string, bool) {
	obj, ok := v.(map[string]any)
	if !ok {
		return "", false
	}

	if choices, ok := obj["choices"].([]any); ok && len(choices) > 0 {
		if choice, ok := choices[0].(map[string]any); ok {
			if msg, ok := choice["message"].(map[string]any); ok {
				if content, ok := msg["content"].(string); ok && content != "" {
					return content, true
				}
			}
		}
	}

	if cands, ok := obj["candidates"].([]any); ok && len(cands) > 0 {
		if cand, ok := cands[0].(map[string]any); ok {
			if content, ok := cand["content"].(map[string]any); ok {
				if parts, ok := content["parts"].([]any); ok && len(parts) > 0 {
					if part, ok := parts[0].(map[string]any); ok {
						if text, ok := part["text"].(string); ok && text != "" {
							return text, true
						}
					}
				}
			}
		}
	}

	return "", false
}

// scanForBlock walks the text left to right looking for a balanced
// bracketed region that parses as JSON. Each candidate opening bracket is
// matched against its own family only; a failed parse resumes the scan
// just past that opening bracket.
func scanForBlock(text string) string {
	for i := 0; i < len(text); i++ {
		open := text[i]
		if open != '{' && open != '[' {
			continue
		}
		close := byte('}')
		if open == '[' {
			close = ']'
		}

		depth := 0
		for j := i; j < len(text); j++ {
			switch text[j] {
			case open:
				depth++
			case close:
				depth--
			}
			if depth == 0 {
				candidate := text[i : j+1]
				var v any
				if err := json.Unmarshal([]byte(candidate), &v); err == nil {
					return candidate
				}
				break
			}
		}
	}
	return ""
}

// RepairJSON applies the one lenient repair the normalizers allow:
// trailing commas before a closing brace or bracket are dropped.
func RepairJSON(text string) string {
	var b strings.Builder
	b.Grow(len(text))

	inString := false
	escaped := false
	for i := 0; i < len(text); i++ {
		c := text[i]
		if inString {
			b.WriteByte(c)
			if escaped {
				escaped = false
			} else if c == '\\' {
				escaped = true
			} else if c == '"' {
				inString = false
			}
			continue
		}
		if c == '"' {
			inString = true
			b.WriteByte(c)
			continue
		}
		if c == ',' {
			// Look ahead past whitespace for a closer.
			j := i + 1
			for j < len(text) && (text[j] == ' ' || text[j] == '\t' || text[j] == '\n' || text[j] == '\r') {
				j++
			}
			if j < len(text) && (text[j] == '}' || text[j] == ']') {
				continue // drop the comma
			}
		}
		b.WriteByte(c)
	}
	return b.String()
}

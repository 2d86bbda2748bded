package extract

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestJSONBlock_FencedQuiz(t *testing.T) {
	input := "Sure! Here is the quiz:\n```json\n[{\"stem\":\"1+1=?\"}]\n```"
	got := JSONBlock(input)
	if got != `[{"stem":"1+1=?"}]` {
		t.Fatalf("unexpected block: %q", got)
	}
}

func TestJSONBlock_BareFence(t *testing.T) {
	input := "```\n{\"a\":1}\n```"
	got := JSONBlock(input)
	if got != `{"a":1}` {
		t.Fatalf("unexpected block: %q", got)
	}
}

func TestJSONBlock_DirectJSON(t *testing.T) {
	input := `{"questions":[]}`
	if got := JSONBlock(input); got != input {
		t.Fatalf("expected passthrough, got %q", got)
	}
}

func TestJSONBlock_OpenAIEnvelope(t *testing.T) {
	input := `{"choices":[{"message":{"content":"[1,2,3]"}}]}`
	if got := JSONBlock(input); got != "[1,2,3]" {
		t.Fatalf("expected inner content, got %q", got)
	}
}

func TestJSONBlock_GeminiEnvelope(t *testing.T) {
	input := `{"candidates":[{"content":{"parts":[{"text":"` + "```json\\n{\\\"x\\\":1}\\n```" + `"}]}}]}`
	if got := JSONBlock(input); got != `{"x":1}` {
		t.Fatalf("expected inner content, got %q", got)
	}
}

func TestJSONBlock_ProseWrapped(t *testing.T) {
	input := `The result is {"ok":true} as requested.`
	if got := JSONBlock(input); got != `{"ok":true}` {
		t.Fatalf("unexpected block: %q", got)
	}
}

func TestJSONBlock_SkipsUnparseableCandidate(t *testing.T) {
	input := `bad {not json} good [{"a":1}]`
	if got := JSONBlock(input); got != `[{"a":1}]` {
		t.Fatalf("unexpected block: %q", got)
	}
}

func TestJSONBlock_NotFound(t *testing.T) {
	for _, input := range []string{"", "no json here", "{{{", "..."} {
		if got := JSONBlock(input); got != "" {
			t.Errorf("JSONBlock(%q) = %q, want empty", input, got)
		}
	}
}

// Re-extracting a stringified successful extraction yields the same value.
func TestJSONBlock_Idempotent(t *testing.T) {
	inputs := []string{
		"prose ```json\n{\"a\":[1,2],\"b\":\"x\"}\n``` more prose",
		`leading text [{"stem":"q","options":["a","b"]}]`,
	}
	for _, input := range inputs {
		first, ok := Parse(input)
		if !ok {
			t.Fatalf("Parse(%q) failed", input)
		}
		enc, err := json.Marshal(first)
		if err != nil {
			t.Fatal(err)
		}
		second, ok := Parse(string(enc))
		if !ok {
			t.Fatalf("re-extract of %q failed", enc)
		}
		if !reflect.DeepEqual(first, second) {
			t.Errorf("re-extract mismatch: %#v vs %#v", first, second)
		}
	}
}

func TestRepairJSON_TrailingCommas(t *testing.T) {
	cases := map[string]string{
		`{"a":1,}`:            `{"a":1}`,
		`[1,2,3,]`:            `[1,2,3]`,
		`{"a":[1,2,],"b":2,}`: `{"a":[1,2],"b":2}`,
		`{"a":",}"}`:          `{"a":",}"}`, // comma inside string untouched
		"{\"a\":1,\n}":        "{\"a\":1\n}",
	}
	for in, want := range cases {
		if got := RepairJSON(in); got != want {
			t.Errorf("RepairJSON(%q) = %q, want %q", in, got, want)
		}
	}
}

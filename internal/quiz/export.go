package quiz

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ExportBank serializes exactly the bank's questions array, pretty-printed.
func ExportBank(b *Bank) ([]byte, error) {
	data, err := json.MarshalIndent(b.Questions, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal questions: %w", err)
	}
	return data, nil
}

// ExportFilename derives a download name from a sanitized bank title and
// the question count.
func ExportFilename(b *Bank) string {
	title := sanitizeTitle(b.Title)
	if title == "" {
		title = "quiz"
	}
	return fmt.Sprintf("%s-%d题.json", title, len(b.Questions))
}

// ImportBank runs file content through the normalizer and wraps the
// result in a new bank with a fresh id, a filename-derived title and the
// current timestamp. Returns an error when the file yields no valid
// questions.
func ImportBank(filename string, content []byte) (*Bank, error) {
	questions := Normalize(string(content))
	if questions == nil {
		return nil, fmt.Errorf("no valid questions found in %s", filepath.Base(filename))
	}

	title := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	if title == "" {
		title = "导入题库"
	}

	return &Bank{
		ID:        "bank-" + uuid.NewString(),
		Title:     title,
		Questions: questions,
		CreatedAt: time.Now(),
	}, nil
}

// sanitizeTitle strips characters that are unsafe in filenames.
func sanitizeTitle(title string) string {
	title = strings.TrimSpace(title)
	replacer := strings.NewReplacer(
		"/", "-", "\\", "-", ":", "-", "*", "", "?", "",
		"\"", "", "<", "", ">", "", "|", "-", "\n", " ",
	)
	return strings.TrimSpace(replacer.Replace(title))
}

// Package ingest extracts plain text from study documents for quiz
// generation.
package ingest

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ErrNoText is returned when a file yields no usable text. It is a
// user-input condition, not an internal failure.
var ErrNoText = errors.New("file has no extractable text")

// SupportedExtensions lists the file types ExtractFile accepts.
var SupportedExtensions = []string{".txt", ".md", ".json", ".xlsx"}

// ExtractFile reads the file at path and returns its text content.
// Plain-text formats are returned as-is; spreadsheets are flattened
// row by row. An unsupported extension or an empty result is an error.
func ExtractFile(path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))

	var text string
	var err error
	switch ext {
	case ".txt", ".md", ".json":
		text, err = readPlain(path)
	case ".xlsx":
		text, err = readWorkbook(path)
	default:
		return "", fmt.Errorf("unsupported file type %q (supported: %s)",
			ext, strings.Join(SupportedExtensions, ", "))
	}
	if err != nil {
		return "", err
	}

	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%s: %w", filepath.Base(path), ErrNoText)
	}
	return text, nil
}

func readPlain(path string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(raw), nil
}

// readWorkbook flattens every sheet into tab-separated rows, one sheet
// after another, each preceded by its name.
func readWorkbook(path string) (string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return "", fmt.Errorf("open workbook %s: %w", path, err)
	}
	defer f.Close()

	var b strings.Builder
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return "", fmt.Errorf("read sheet %s: %w", sheet, err)
		}

		wroteHeader := false
		for _, row := range rows {
			line := strings.TrimSpace(strings.Join(row, "\t"))
			if line == "" {
				continue
			}
			if !wroteHeader {
				fmt.Fprintf(&b, "# %s\n", sheet)
				wroteHeader = true
			}
			b.WriteString(line)
			b.WriteString("\n")
		}
	}
	return b.String(), nil
}

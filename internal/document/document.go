// Package document loads the text the walkthrough compresses from disk.
package document

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
)

var (
	// ErrUnsupported is returned for file types other than PDF and plain text.
	ErrUnsupported = errors.New("unsupported document type")
	// ErrEmpty is returned when a document has no extractable text.
	ErrEmpty = errors.New("document has no text")

	extraneousWhitespace = regexp.MustCompile(`\s+`)
)

// Load reads path and returns its text with whitespace collapsed.
func Load(path string) (string, error) {
	var (
		text string
		err  error
	)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".pdf":
		text, err = pdfText(path)
	case "", ".txt", ".md", ".text", ".markdown":
		text, err = plainText(path)
	default:
		return "", fmt.Errorf("%s: %w", ext, ErrUnsupported)
	}
	if err != nil {
		return "", err
	}
	text = Normalize(text)
	if text == "" {
		return "", fmt.Errorf("%s: %w", path, ErrEmpty)
	}
	return text, nil
}

// Normalize collapses runs of whitespace into single spaces.
func Normalize(s string) string {
	return extraneousWhitespace.ReplaceAllString(strings.TrimSpace(s), " ")
}

func plainText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read document: %w", err)
	}
	return string(data), nil
}

func pdfText(path string) (string, error) {
	file, reader, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open pdf: %w", err)
	}
	defer file.Close()

	content, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("failed to extract pdf text: %w", err)
	}

	var builder strings.Builder
	if _, err := io.Copy(&builder, content); err != nil {
		return "", err
	}
	return builder.String(), nil
}

// Package extractor pulls submission text out of local files for the CLI.
// Plain text and Markdown are read as-is; PDFs go through a text layer
// extraction. Anything else is rejected rather than scanned as garbage.
package extractor

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
)

func FromFile(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return fromPDF(path)
	case ".txt", ".md", ".text", "":
		return fromPlaintext(path)
	default:
		return "", fmt.Errorf("unsupported document format: %s", filepath.Base(path))
	}
}

func fromPlaintext(path string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read source document: %w", err)
	}
	if !utf8.Valid(raw) {
		return "", fmt.Errorf("document is not valid utf-8: %s", filepath.Base(path))
	}
	return strings.TrimSpace(string(raw)), nil
}

func fromPDF(path string) (string, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	textReader, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extract pdf text: %w", err)
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(textReader); err != nil {
		return "", fmt.Errorf("read pdf text: %w", err)
	}
	return strings.TrimSpace(buf.String()), nil
}

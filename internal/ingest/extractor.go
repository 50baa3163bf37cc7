// Package ingest turns uploaded document files into plain text. One extractor
// per supported file type, selected by extension; adding a type means adding
// an extractor to the table, not touching the dispatcher.
package ingest

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrUnsupportedType is returned for extensions with no extractor.
	ErrUnsupportedType = errors.New("unsupported file type")
	// ErrExtraction wraps parse failures of supported files.
	ErrExtraction = errors.New("text extraction failed")
)

// Extractor reads a document file and returns its plain text.
type Extractor interface {
	Extract(path string) (string, error)
}

var extractors = map[string]Extractor{
	".pdf":  pdfExtractor{},
	".txt":  textExtractor{},
	".docx": docxExtractor{},
	".doc":  docxExtractor{},
}

// SupportedExtensions returns the supported extensions, sorted, with dots.
func SupportedExtensions() []string {
	exts := make([]string, 0, len(extractors))
	for ext := range extractors {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// ForExtension returns the extractor for ext (case-insensitive, leading dot
// optional) or ErrUnsupportedType naming the extension and the supported set.
func ForExtension(ext string) (Extractor, error) {
	normalized := strings.ToLower(strings.TrimSpace(ext))
	if normalized != "" && !strings.HasPrefix(normalized, ".") {
		normalized = "." + normalized
	}
	e, ok := extractors[normalized]
	if !ok {
		return nil, fmt.Errorf("%w: %s (supported types: %s)",
			ErrUnsupportedType, ext, strings.Join(SupportedExtensions(), ", "))
	}
	return e, nil
}

// ExtractFile extracts plain text from the file at path using the extractor
// for declaredType (an extension such as "pdf" or ".pdf").
func ExtractFile(path, declaredType string) (string, error) {
	e, err := ForExtension(declaredType)
	if err != nil {
		return "", err
	}
	text, err := e.Extract(path)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrExtraction, err)
	}
	return text, nil
}

package ingest

import (
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/nguyenthenguyen/docx"
)

type docxExtractor struct{}

var (
	paragraphClose = regexp.MustCompile(`</w:p>`)
	xmlTag         = regexp.MustCompile(`<[^>]*>`)
)

func (docxExtractor) Extract(path string) (string, error) {
	r, err := docx.ReadDocxFile(path)
	if err != nil {
		return "", fmt.Errorf("open docx failed: %w", err)
	}
	defer r.Close()

	// GetContent returns the raw document.xml.
	return stripDocxMarkup(r.Editable().GetContent()), nil
}

// stripDocxMarkup keeps paragraph breaks and drops the rest of the markup.
func stripDocxMarkup(content string) string {
	content = paragraphClose.ReplaceAllString(content, "\n")
	content = xmlTag.ReplaceAllString(content, "")
	return strings.TrimSpace(html.UnescapeString(content))
}

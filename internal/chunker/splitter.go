// Package chunker splits extracted document text into overlapping chunks, the
// unit of embedding and retrieval.
package chunker

import (
	"fmt"

	"docquery/internal/config"
)

// Splitter cuts text into rune windows of at most size runes. Each window
// prefers to end on a paragraph break, then a line break, then a sentence
// end, then a word boundary before falling back to a hard cut. The next
// window starts exactly overlap runes before the previous end, so adjacent
// chunks share exactly overlap runes and splitting is deterministic.
type Splitter struct {
	size    int
	overlap int
}

func NewSplitter(size, overlap int) (*Splitter, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: chunk size must be positive, got %d", config.ErrConfiguration, size)
	}
	if overlap < 0 || overlap >= size {
		return nil, fmt.Errorf("%w: chunk overlap %d must be non-negative and smaller than chunk size %d",
			config.ErrConfiguration, overlap, size)
	}
	return &Splitter{size: size, overlap: overlap}, nil
}

// Split returns the chunks of text, in order. Empty input yields no chunks;
// the final chunk may be shorter than the configured size.
func (s *Splitter) Split(text string) []string {
	runes := []rune(text)
	if len(runes) == 0 {
		return nil
	}

	var chunks []string
	start := 0
	for {
		end := start + s.size
		if end >= len(runes) {
			chunks = append(chunks, string(runes[start:]))
			return chunks
		}
		cut := s.cutAt(runes, start, end)
		chunks = append(chunks, string(runes[start:cut]))
		start = cut - s.overlap
	}
}

// cutAt picks the end of the window starting at start. It scans backwards
// from the hard limit for the largest semantic separator, never cutting at or
// before start+overlap so every window makes forward progress.
func (s *Splitter) cutAt(runes []rune, start, end int) int {
	floor := start + s.overlap + 1
	if floor >= end {
		return end
	}

	for i := end; i > floor; i-- {
		if runes[i-1] == '\n' && i >= 2 && runes[i-2] == '\n' {
			return i
		}
	}
	for i := end; i > floor; i-- {
		if runes[i-1] == '\n' {
			return i
		}
	}
	for i := end; i > floor; i-- {
		c := runes[i-1]
		if (c == '.' || c == '!' || c == '?') && (runes[i] == ' ' || runes[i] == '\n') {
			return i
		}
	}
	for i := end; i > floor; i-- {
		if runes[i-1] == ' ' {
			return i
		}
	}
	return end
}

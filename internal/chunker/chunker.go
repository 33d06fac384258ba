// Package chunker splits normalized text into overlapping, size-bounded
// spans suitable for embedding and retrieval.
package chunker

import (
	"fmt"
	"unicode"

	"github.com/cloo-solutions/hrdesk/internal/domain"
)

// Span is one chunk of the input text. Start and End are rune offsets in
// the source; consecutive spans from the same input overlap by the
// configured amount, adjusted for boundary snapping.
type Span struct {
	Text  string
	Start int
	End   int
	Page  int
}

// Chunker produces spans of at most Size runes with Overlap runes shared
// between neighbours.
type Chunker struct {
	size    int
	overlap int
}

// New validates the chunking parameters. Overlap must be smaller than
// size so every chunk makes forward progress.
func New(size, overlap int) (*Chunker, error) {
	if size <= 0 {
		return nil, domain.NewChunkingError(fmt.Sprintf("chunk size must be positive, got %d", size))
	}
	if overlap < 0 {
		return nil, domain.NewChunkingError(fmt.Sprintf("chunk overlap cannot be negative, got %d", overlap))
	}
	if overlap >= size {
		return nil, domain.NewChunkingError(fmt.Sprintf("chunk overlap (%d) must be smaller than chunk size (%d)", overlap, size))
	}
	return &Chunker{size: size, overlap: overlap}, nil
}

// Split covers the whole input with spans: every offset of the text falls
// inside at least one span, and neighbouring spans share the overlap
// region. Inputs no longer than the chunk size yield exactly one span.
// Split never fails on content.
func (c *Chunker) Split(text string, pages []domain.PageMark) []Span {
	runes := []rune(text)
	if len(runes) == 0 {
		return nil
	}

	if len(runes) <= c.size {
		return []Span{{
			Text:  text,
			Start: 0,
			End:   len(runes),
			Page:  domain.PageAt(pages, 0),
		}}
	}

	spans := make([]Span, 0, len(runes)/c.size+1)
	start := 0
	for start < len(runes) {
		end := start + c.size
		if end >= len(runes) {
			end = len(runes)
		} else {
			end = snapToBoundary(runes, start, end)
		}

		spans = append(spans, Span{
			Text:  string(runes[start:end]),
			Start: start,
			End:   end,
			Page:  domain.PageAt(pages, start),
		})

		if end >= len(runes) {
			break
		}

		next := end - c.overlap
		if next <= start {
			next = end
		}
		start = next
	}

	return spans
}

// snapToBoundary moves the cut point backwards from end to the nearest
// paragraph, sentence, or word boundary within the trailing window. A
// mid-word cut happens only when the window contains no boundary at all.
func snapToBoundary(runes []rune, start, end int) int {
	window := (end - start) / 5
	if window < 1 {
		return end
	}
	minCut := end - window

	// Paragraph break first
	for i := end; i > minCut; i-- {
		if runes[i-1] == '\n' && i >= 2 && runes[i-2] == '\n' {
			return i
		}
	}

	// Then sentence boundary: terminator followed by whitespace
	for i := end; i > minCut; i-- {
		if i < 2 || !unicode.IsSpace(runes[i-1]) {
			continue
		}
		switch runes[i-2] {
		case '.', '!', '?':
			return i
		}
	}

	// Then any whitespace so words stay intact
	for i := end; i > minCut; i-- {
		if unicode.IsSpace(runes[i-1]) {
			return i
		}
	}

	return end
}

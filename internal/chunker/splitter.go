// Package chunker splits extracted document text into indexable chunks.
package chunker

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/rajeev-sr/hackrx/internal/core/domain"
)

const (
	// DefaultChunkSize is the target chunk length in bytes.
	DefaultChunkSize = 1000

	// DefaultOverlap is how many bytes consecutive chunks share, so
	// clauses that straddle a boundary stay retrievable.
	DefaultOverlap = 200
)

var paragraphSplit = regexp.MustCompile(`\n{2,}`)

// Splitter produces fixed-size overlapping chunks, respecting paragraph
// boundaries where possible.
type Splitter struct {
	size    int
	overlap int
}

// NewSplitter creates a Splitter. Non-positive size falls back to the
// defaults; overlap is clamped below size.
func NewSplitter(size, overlap int) *Splitter {
	if size <= 0 {
		size = DefaultChunkSize
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= size {
		overlap = size / 4
	}
	return &Splitter{size: size, overlap: overlap}
}

// Split breaks text into chunks. Paragraphs shorter than the chunk size
// are packed together; longer paragraphs are windowed with overlap.
// Chunk IDs are derived from docID and the chunk position.
func (s *Splitter) Split(docID, text string) []domain.Chunk {
	var pieces []string
	var current strings.Builder

	flush := func() {
		if piece := strings.TrimSpace(current.String()); piece != "" {
			pieces = append(pieces, piece)
		}
		current.Reset()
	}

	for _, para := range paragraphSplit.Split(text, -1) {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}

		if len(para) > s.size {
			flush()
			pieces = append(pieces, s.window(para)...)
			continue
		}
		if current.Len() > 0 && current.Len()+len(para)+2 > s.size {
			flush()
		}
		if current.Len() > 0 {
			current.WriteString("\n\n")
		}
		current.WriteString(para)
	}
	flush()

	chunks := make([]domain.Chunk, len(pieces))
	for i, piece := range pieces {
		chunks[i] = domain.Chunk{
			ID:       fmt.Sprintf("%s:%d", docID, i),
			Text:     piece,
			Position: i,
		}
	}
	return chunks
}

// window slices one oversized paragraph into size-bounded pieces that
// overlap by the configured amount.
func (s *Splitter) window(text string) []string {
	var out []string
	step := s.size - s.overlap
	for i := 0; i < len(text); i += step {
		end := i + s.size
		if end > len(text) {
			end = len(text)
		}
		if piece := strings.TrimSpace(text[i:end]); piece != "" {
			out = append(out, piece)
		}
		if end == len(text) {
			break
		}
	}
	return out
}

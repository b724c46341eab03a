package chunker

import (
	"strings"
	"testing"
)

func TestSplitEmptyText(t *testing.T) {
	s := NewSplitter(0, 0)
	if chunks := s.Split("doc", "   \n\n  "); len(chunks) != 0 {
		t.Errorf("expected no chunks, got %d", len(chunks))
	}
}

func TestSplitShortText(t *testing.T) {
	s := NewSplitter(0, 0)
	chunks := s.Split("doc", "The grace period is thirty days.")
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0].ID != "doc:0" {
		t.Errorf("unexpected chunk ID %q", chunks[0].ID)
	}
	if chunks[0].Position != 0 {
		t.Errorf("unexpected position %d", chunks[0].Position)
	}
}

func TestSplitPacksParagraphs(t *testing.T) {
	s := NewSplitter(100, 20)
	text := "First paragraph.\n\nSecond paragraph.\n\nThird paragraph."

	chunks := s.Split("doc", text)
	if len(chunks) != 1 {
		t.Fatalf("expected paragraphs packed into 1 chunk, got %d", len(chunks))
	}
	if !strings.Contains(chunks[0].Text, "First paragraph.") ||
		!strings.Contains(chunks[0].Text, "Third paragraph.") {
		t.Errorf("packed chunk missing paragraphs: %q", chunks[0].Text)
	}
}

func TestSplitRespectsSizeLimit(t *testing.T) {
	s := NewSplitter(50, 10)
	text := strings.Repeat("word ", 100) // one long paragraph

	chunks := s.Split("doc", text)
	if len(chunks) < 2 {
		t.Fatalf("expected long paragraph windowed, got %d chunks", len(chunks))
	}
	for i, c := range chunks {
		if len(c.Text) > 50 {
			t.Errorf("chunk %d exceeds size: %d bytes", i, len(c.Text))
		}
		if c.Position != i {
			t.Errorf("chunk %d has position %d", i, c.Position)
		}
	}
}

func TestSplitOverlap(t *testing.T) {
	s := NewSplitter(50, 20)
	text := strings.Repeat("abcdefghij", 20) // 200 bytes, no paragraph breaks

	chunks := s.Split("doc", text)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	// Consecutive windows share their overlap region.
	first := chunks[0].Text
	second := chunks[1].Text
	tail := first[len(first)-20:]
	if !strings.HasPrefix(second, tail) {
		t.Errorf("expected chunk 1 to start with the tail of chunk 0: %q vs %q", tail, second[:20])
	}
}

func TestSplitterClampsOverlap(t *testing.T) {
	s := NewSplitter(100, 100)
	text := strings.Repeat("x", 500)

	// Must terminate: an unclamped overlap would make the window step zero.
	chunks := s.Split("doc", text)
	if len(chunks) == 0 {
		t.Fatal("expected chunks")
	}
}

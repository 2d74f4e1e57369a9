package chunker

import (
	"strings"
	"testing"

	"doc-assistant-be/pkg/store"
)

func TestSplitDegenerateInputs(t *testing.T) {
	c := New(DefaultChunkSize, DefaultOverlap)

	tests := []struct {
		name string
		text string
		want int
	}{
		{name: "empty", text: "", want: 0},
		{name: "whitespace only", text: "  \n\t  ", want: 0},
		{name: "shorter than chunk size", text: "A short note.", want: 1},
		{name: "exactly chunk size", text: strings.Repeat("a", DefaultChunkSize), want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Split(tt.text)
			if len(got) != tt.want {
				t.Errorf("Split() produced %d segments, want %d", len(got), tt.want)
			}
			if tt.want == 1 && got[0] != tt.text {
				t.Errorf("single segment = %q, want the full text", got[0])
			}
		})
	}
}

func TestSplitSegmentBounds(t *testing.T) {
	c := New(100, 20)
	text := strings.Repeat("All work and no play makes for dull code. ", 30)

	segments := c.Split(text)
	if len(segments) < 2 {
		t.Fatalf("expected multiple segments, got %d", len(segments))
	}
	for i, seg := range segments {
		if n := len([]rune(seg)); n > 100 {
			t.Errorf("segment %d has %d runes, max 100", i, n)
		}
		if strings.TrimSpace(seg) == "" {
			t.Errorf("segment %d is blank", i)
		}
	}
}

// Concatenating the first segment with every later segment minus its leading
// overlap must rebuild the original text exactly.
func TestSplitReconstruction(t *testing.T) {
	texts := []string{
		strings.Repeat("The quick brown fox jumps over the lazy dog. ", 40),
		strings.Repeat("no sentence boundaries here just one long run of words ", 25),
		strings.Repeat("Résumé naïve façade über schöne Grüße. ", 35), // multibyte runes
	}

	for _, overlap := range []int{0, 50} {
		c := New(500, overlap)
		for _, text := range texts {
			segments := c.Split(text)
			var rebuilt strings.Builder
			for i, seg := range segments {
				runes := []rune(seg)
				if i == 0 {
					rebuilt.WriteString(seg)
					continue
				}
				if len(runes) < overlap {
					t.Fatalf("segment %d shorter than overlap", i)
				}
				rebuilt.WriteString(string(runes[overlap:]))
			}
			if rebuilt.String() != text {
				t.Errorf("overlap=%d: reconstruction mismatch (got %d runes, want %d)",
					overlap, len([]rune(rebuilt.String())), len([]rune(text)))
			}
		}
	}
}

func TestSplitPrefersSentenceBoundary(t *testing.T) {
	c := New(100, 10)
	// A sentence end lands past the midpoint of the first window.
	text := strings.Repeat("x", 70) + ". " + strings.Repeat("y", 200)

	segments := c.Split(text)
	if len(segments) < 2 {
		t.Fatalf("expected multiple segments, got %d", len(segments))
	}
	if !strings.HasSuffix(segments[0], ". ") {
		t.Errorf("first segment should end at the sentence boundary, got %q tail", segments[0][len(segments[0])-5:])
	}
}

func TestSplitIsDeterministic(t *testing.T) {
	c := New(120, 30)
	text := strings.Repeat("Determinism matters for stable chunk identity. ", 20)

	first := c.Split(text)
	second := c.Split(text)
	if len(first) != len(second) {
		t.Fatalf("segment counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("segment %d differs between runs", i)
		}
	}
}

func TestNewClampsInvalidOverlap(t *testing.T) {
	c := New(100, 100) // overlap >= size must not stall progress
	text := strings.Repeat("words and more words. ", 50)

	segments := c.Split(text)
	if len(segments) < 2 {
		t.Fatalf("expected progress through the text, got %d segments", len(segments))
	}
}

func TestChunkCarriesDocumentIdentity(t *testing.T) {
	c := New(100, 20)
	doc := &store.Document{
		ID:       "doc-1",
		Filename: "animals.txt",
		Text:     strings.Repeat("Mammals are warm-blooded vertebrates. ", 20),
	}

	chunks := c.Chunk(doc)
	if len(chunks) == 0 {
		t.Fatal("expected chunks")
	}
	seen := map[string]bool{}
	for i, ch := range chunks {
		if ch.DocumentID != doc.ID {
			t.Errorf("chunk %d DocumentID = %q, want %q", i, ch.DocumentID, doc.ID)
		}
		if ch.Source != doc.Filename {
			t.Errorf("chunk %d Source = %q, want %q", i, ch.Source, doc.Filename)
		}
		if ch.Index != i {
			t.Errorf("chunk %d Index = %d", i, ch.Index)
		}
		if ch.ID == "" || seen[ch.ID] {
			t.Errorf("chunk %d has empty or duplicate id %q", i, ch.ID)
		}
		seen[ch.ID] = true
	}
}

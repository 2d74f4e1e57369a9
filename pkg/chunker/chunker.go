package chunker

import (
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"doc-assistant-be/pkg/store"
)

// Default parameters match the ingestion pipeline: ~500 characters per chunk
// with a 50 character overlap.
const (
	DefaultChunkSize = 500
	DefaultOverlap   = 50
)

// Sentence boundaries the splitter prefers to break on, in priority order.
var sentenceSeps = []string{". ", ".\n", "! ", "? ", "\n\n"}

// Chunker splits text into overlapping fixed-size segments. Splitting is
// rune-based and deterministic: identical text and parameters always produce
// identical boundaries.
type Chunker struct {
	chunkSize int
	overlap   int
}

func New(chunkSize, overlap int) *Chunker {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if overlap < 0 || overlap >= chunkSize {
		overlap = 0
	}
	return &Chunker{chunkSize: chunkSize, overlap: overlap}
}

// Split returns the raw overlapping segments covering text with no gaps.
// Each segment after the first repeats the previous segment's tail by the
// overlap size, so the original text is reconstructible by concatenating the
// first segment with every later segment minus its leading overlap.
// Empty or whitespace-only text yields no segments.
func (c *Chunker) Split(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	runes := []rune(text)
	if len(runes) <= c.chunkSize {
		return []string{text}
	}

	var segments []string
	start := 0
	for start < len(runes) {
		end := start + c.chunkSize
		if end >= len(runes) {
			segments = append(segments, string(runes[start:]))
			break
		}

		// Back off to the last sentence boundary past the midpoint, so
		// chunks end on natural breaks when the text allows it.
		window := string(runes[start:end])
		for _, sep := range sentenceSeps {
			if pos := strings.LastIndex(window, sep); pos >= 0 {
				cut := utf8.RuneCountInString(window[:pos+len(sep)])
				if cut > c.chunkSize/2 {
					end = start + cut
					break
				}
			}
		}

		segments = append(segments, string(runes[start:end]))

		next := end - c.overlap
		if next <= start {
			next = end
		}
		start = next
	}
	return segments
}

// Chunk splits a document's text and wraps each segment as an immutable
// store.Chunk carrying the parent document id and source filename.
func (c *Chunker) Chunk(doc *store.Document) []store.Chunk {
	segments := c.Split(doc.Text)
	chunks := make([]store.Chunk, 0, len(segments))
	for i, text := range segments {
		chunks = append(chunks, store.Chunk{
			ID:         uuid.NewString(),
			DocumentID: doc.ID,
			Source:     doc.Filename,
			Index:      i,
			Text:       text,
		})
	}
	return chunks
}

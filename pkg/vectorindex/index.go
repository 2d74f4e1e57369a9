package vectorindex

import (
	"fmt"
	"sort"

	"doc-assistant-be/pkg/store"
)

// Index is an exact nearest-neighbor structure over one session's chunk
// vectors. Vectors are expected to be L2-normalized so inner product equals
// cosine similarity.
//
// The index itself is not synchronized: the owning session serializes all
// mutation through its lock, and concurrent read-only searches are safe
// because Search never mutates state.
type Index struct {
	dimension int
	entries   []entry
}

type entry struct {
	chunk  store.Chunk
	vector []float32
}

func New() *Index { return &Index{} }

// Dimension returns the vector dimension the index is fixed to,
// or 0 before the first Add.
func (ix *Index) Dimension() int { return ix.dimension }

// Len returns the number of live chunk vectors.
func (ix *Index) Len() int { return len(ix.entries) }

// Add inserts chunk vectors incrementally. The first call fixes the index
// dimension; later calls must match it.
func (ix *Index) Add(chunks []store.Chunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return fmt.Errorf("vectorindex: %d chunks but %d vectors", len(chunks), len(vectors))
	}
	if len(chunks) == 0 {
		return nil
	}
	if ix.dimension == 0 {
		ix.dimension = len(vectors[0])
	}
	for _, v := range vectors {
		if len(v) != ix.dimension {
			return fmt.Errorf("vectorindex: vector dimension %d does not match index dimension %d", len(v), ix.dimension)
		}
	}
	for i := range chunks {
		ix.entries = append(ix.entries, entry{chunk: chunks[i], vector: vectors[i]})
	}
	return nil
}

// RemoveDocument drops every chunk belonging to the document and returns how
// many were removed. After it returns, Search can never surface a chunk of
// that document.
func (ix *Index) RemoveDocument(documentID string) int {
	kept := ix.entries[:0]
	removed := 0
	for _, e := range ix.entries {
		if e.chunk.DocumentID == documentID {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	// Release references held past the new length.
	for i := len(kept); i < len(ix.entries); i++ {
		ix.entries[i] = entry{}
	}
	ix.entries = kept
	return removed
}

// Search returns up to k chunks ranked by similarity, highest first. Ties are
// broken by insertion order (earlier chunk wins). An empty index yields an
// empty result, not an error.
func (ix *Index) Search(query []float32, k int) ([]store.RetrievedChunk, error) {
	if len(ix.entries) == 0 || k <= 0 {
		return nil, nil
	}
	if len(query) != ix.dimension {
		return nil, fmt.Errorf("vectorindex: query dimension %d does not match index dimension %d", len(query), ix.dimension)
	}

	scored := make([]store.RetrievedChunk, len(ix.entries))
	for i, e := range ix.entries {
		scored[i] = store.RetrievedChunk{Chunk: e.chunk, Score: dot(e.vector, query)}
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if k > len(scored) {
		k = len(scored)
	}
	return scored[:k], nil
}

// Reset drops all vectors and unfixes the dimension.
func (ix *Index) Reset() {
	ix.entries = nil
	ix.dimension = 0
}

func dot(a, b []float32) float64 {
	sum := 0.0
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}

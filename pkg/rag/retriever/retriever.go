package retriever

import (
	"doc-assistant-be/pkg/embedding"
	"doc-assistant-be/pkg/store"
	"doc-assistant-be/pkg/vectorindex"
)

// DefaultTopK matches the query pipeline default.
const DefaultTopK = 3

// Result is one retrieval pass: the ranked chunks plus the source filenames
// deduplicated in rank order.
type Result struct {
	Chunks  []store.RetrievedChunk
	Sources []string
}

// Retriever embeds a query and searches a session's index.
type Retriever struct {
	embedder embedding.Provider
	topK     int
}

func New(embedder embedding.Provider, topK int) *Retriever {
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &Retriever{embedder: embedder, topK: topK}
}

// Retrieve runs top-k similarity search for the query. An empty index yields
// an empty result, not an error — the caller still answers, stating that no
// documents are available.
func (r *Retriever) Retrieve(index *vectorindex.Index, query string) (*Result, error) {
	if index.Len() == 0 {
		return &Result{}, nil
	}

	vec, err := r.embedder.Embed(query)
	if err != nil {
		return nil, err
	}

	chunks, err := index.Search(vec, r.topK)
	if err != nil {
		return nil, err
	}

	return &Result{Chunks: chunks, Sources: dedupeSources(chunks)}, nil
}

// dedupeSources lists each source filename once, keeping rank order, so the
// attribution shown to the user never repeats a document.
func dedupeSources(chunks []store.RetrievedChunk) []string {
	seen := make(map[string]struct{}, len(chunks))
	var sources []string
	for _, c := range chunks {
		if _, ok := seen[c.Source]; ok {
			continue
		}
		seen[c.Source] = struct{}{}
		sources = append(sources, c.Source)
	}
	return sources
}

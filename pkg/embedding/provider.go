package embedding

import "math"

// Provider maps text to fixed-dimension vectors. The same provider instance
// embeds both document chunks and queries so vectors live in one metric
// space. All implementations return L2-normalized vectors, making inner
// product equivalent to cosine similarity.
type Provider interface {
	// Name identifies the embedding backend.
	Name() string

	// Embed converts text to a vector. Empty or whitespace-only input is a
	// contract violation and returns an error; callers filter empty chunks
	// before embedding.
	Embed(text string) ([]float32, error)

	// EmbedBatch embeds several texts at once.
	EmbedBatch(texts []string) ([][]float32, error)

	// Dimension returns the fixed output dimension, or 0 when the backend
	// only reveals it after the first call (remote models).
	Dimension() int
}

// Normalize scales a vector to unit length in place and returns it.
// Zero vectors are returned unchanged.
func Normalize(vec []float32) []float32 {
	var magnitude float64
	for _, v := range vec {
		magnitude += float64(v) * float64(v)
	}
	magnitude = math.Sqrt(magnitude)
	if magnitude == 0 {
		return vec
	}
	for i, v := range vec {
		vec[i] = float32(float64(v) / magnitude)
	}
	return vec
}

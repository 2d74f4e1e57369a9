package embedding

import (
	"hash/fnv"
	"regexp"
	"strings"

	"doc-assistant-be/internal/errs"
)

// DefaultDimension is the output size of the local hashed-token model.
const DefaultDimension = 256

// HashingProvider is the default local embedding model: a hashed
// bag-of-tokens. Tokens are lowercased, stripped of stopwords, folded to a
// crude singular form and hashed into a fixed-dimension term-frequency
// vector, which is then L2-normalized. It is stateless and deterministic, so
// identical text always embeds to the identical vector and chunk and query
// vectors are directly comparable.
type HashingProvider struct {
	dimension    int
	tokenPattern *regexp.Regexp
	stopwords    map[string]struct{}
}

func NewHashingProvider(dimension int) *HashingProvider {
	if dimension <= 0 {
		dimension = DefaultDimension
	}
	return &HashingProvider{
		dimension:    dimension,
		tokenPattern: regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*`),
		stopwords:    defaultStopwords(),
	}
}

func (p *HashingProvider) Name() string { return "hashing" }

func (p *HashingProvider) Dimension() int { return p.dimension }

func (p *HashingProvider) Embed(text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, errs.ErrEmbeddingFailed.WithDetail("empty input text")
	}
	vec := make([]float32, p.dimension)
	for _, tok := range p.tokenize(text) {
		h := fnv.New32a()
		h.Write([]byte(tok))
		vec[h.Sum32()%uint32(p.dimension)]++
	}
	return Normalize(vec), nil
}

func (p *HashingProvider) EmbedBatch(texts []string) ([][]float32, error) {
	vectors := make([][]float32, 0, len(texts))
	for _, text := range texts {
		vec, err := p.Embed(text)
		if err != nil {
			return nil, err
		}
		vectors = append(vectors, vec)
	}
	return vectors, nil
}

func (p *HashingProvider) tokenize(text string) []string {
	raw := p.tokenPattern.FindAllString(strings.ToLower(text), -1)
	tokens := make([]string, 0, len(raw))
	for _, t := range raw {
		if _, isStop := p.stopwords[t]; isStop {
			continue
		}
		tokens = append(tokens, foldPlural(t))
	}
	return tokens
}

// foldPlural trims a trailing "s" from longer tokens so "mammals" and
// "mammal" hash to the same slot. Deliberately crude; a real stemmer is
// overkill for bag-of-tokens retrieval.
func foldPlural(token string) string {
	if len(token) > 3 && strings.HasSuffix(token, "s") && !strings.HasSuffix(token, "ss") {
		return token[:len(token)-1]
	}
	return token
}

func defaultStopwords() map[string]struct{} {
	words := []string{
		"a", "an", "the", "and", "or", "but", "if", "then", "else", "for", "to", "of", "in", "on", "at", "by", "with", "as", "is", "are", "was", "were", "be", "been", "being", "it", "this", "that", "these", "those", "from", "up", "down", "over", "under", "again", "further", "than", "so", "such", "into", "about", "between", "through", "during", "before", "after", "above", "below", "out", "off", "own", "same", "too", "very", "can", "will", "just", "don", "should", "now",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}

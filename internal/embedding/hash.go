package embedding

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
	"unicode"
)

const (
	// HashModelName identifies vectors produced by HashProvider.
	HashModelName = "hash-v1"
)

// HashProvider is an offline embedder based on feature hashing of word
// unigrams and bigrams. Vectors are L2-normalized, so texts sharing
// vocabulary land close together. It needs no model download.
type HashProvider struct {
	dimensions int
}

// NewHashProvider creates a hashing embedder with the given dimensionality.
func NewHashProvider(dims int) *HashProvider {
	if dims <= 0 {
		dims = DefaultDimensions
	}
	return &HashProvider{dimensions: dims}
}

// Embed hashes the tokens of text into a fixed-length vector.
func (p *HashProvider) Embed(ctx context.Context, text string) (Embedding, error) {
	if err := ctx.Err(); err != nil {
		return Embedding{}, err
	}
	if IsBlank(text) {
		return Zero(p.dimensions), nil
	}

	vec := make([]float32, p.dimensions)
	tokens := tokenize(text)
	for i, tok := range tokens {
		p.add(vec, tok, 1)
		if i > 0 {
			p.add(vec, tokens[i-1]+" "+tok, 0.5)
		}
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm > 0 {
		scale := float32(1 / math.Sqrt(norm))
		for i := range vec {
			vec[i] *= scale
		}
	}
	return Embedding{Vector: vec}, nil
}

// add folds one feature into vec using the signed hashing trick.
func (p *HashProvider) add(vec []float32, feature string, weight float32) {
	h := fnv.New64a()
	h.Write([]byte(feature))
	sum := h.Sum64()
	slot := int(sum % uint64(p.dimensions))
	if sum>>63 == 1 {
		weight = -weight
	}
	vec[slot] += weight
}

// ModelName returns HashModelName.
func (p *HashProvider) ModelName() string {
	return HashModelName
}

// Dimensions returns the vector dimensions.
func (p *HashProvider) Dimensions() int {
	return p.dimensions
}

// tokenize lowercases text and splits it on anything that is not a letter or digit.
func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

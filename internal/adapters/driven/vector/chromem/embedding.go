package chromem

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
	"unicode"

	"github.com/philippgille/chromem-go"
)

// HashEmbedding returns a deterministic bag-of-words embedding of the given
// dimension. Each lowercased token is hashed into a signed bucket and the
// result is L2-normalised, so texts sharing words score higher under cosine
// similarity. It needs no model and no network.
func HashEmbedding(dimension int) chromem.EmbeddingFunc {
	return func(_ context.Context, text string) ([]float32, error) {
		vec := make([]float32, dimension)
		for _, token := range tokenize(text) {
			h := fnv.New64a()
			_, _ = h.Write([]byte(token))
			sum := h.Sum64()
			idx := int(sum % uint64(dimension))
			if sum&(1<<63) != 0 {
				vec[idx]--
			} else {
				vec[idx]++
			}
		}
		return normalize(vec), nil
	}
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// normalize scales vec to unit length. A zero vector becomes a unit vector
// on the first axis so similarity stays defined.
func normalize(vec []float32) []float32 {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	if sum == 0 {
		vec[0] = 1
		return vec
	}
	norm := float32(math.Sqrt(sum))
	for i := range vec {
		vec[i] /= norm
	}
	return vec
}

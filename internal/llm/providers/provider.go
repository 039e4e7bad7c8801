// File path: internal/llm/providers/provider.go
package providers

import (
	"context"
	"hash/fnv"
	"math/rand"
)

type Message struct {
	Role    string
	Content string
}

// StreamFunc receives generated tokens as they arrive.
type StreamFunc func(token string)

type Provider interface {
	Chat(ctx context.Context, messages []Message) (string, error)
	ChatStream(ctx context.Context, messages []Message, fn StreamFunc) (string, error)
	Embed(ctx context.Context, input string, dimensions int) ([]float32, error)
	Name() string
}

// DeterministicVector derives a pseudo-random vector from a hash of the
// input text. Identical input always yields an identical vector, which keeps
// retries and re-ingestion stable when it stands in for a remote embedding.
func DeterministicVector(text string, dimensions int) []float32 {
	if dimensions <= 0 {
		return nil
	}
	h := fnv.New64a()
	_, _ = h.Write([]byte(text))
	rng := rand.New(rand.NewSource(int64(h.Sum64())))
	vec := make([]float32, dimensions)
	for i := range vec {
		vec[i] = rng.Float32()*2 - 1
	}
	return vec
}

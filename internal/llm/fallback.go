// File path: internal/llm/fallback.go
package llm

import "github.com/repobrief/repobrief/internal/llm/providers"

// FallbackVector is the canonical substitute embedding: a hash-seeded
// pseudo-random vector of EmbeddingDimensions components. Identical input
// yields a byte-identical vector, so retries and re-ingestion stay stable.
func FallbackVector(text string) []float32 {
	return providers.DeterministicVector(text, EmbeddingDimensions)
}

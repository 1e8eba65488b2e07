package interfaces

import "context"

// EmbeddingProvider is the external text→vector boundary. Implementations
// must return one vector per input text, in input order, since the embedding
// stage zips results back onto listings by index.
type EmbeddingProvider interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimension returns the vector dimensionality the provider is configured for
	Dimension() int
}

// Package driven provides interfaces for infrastructure adapters (secondary/outbound ports).
package driven

import "context"

// EmbeddingService generates vector embeddings from text.
//
// Implementations include:
//   - Ollama (bge-m3, nomic-embed-text)
//   - OpenAI (text-embedding-3-small, text-embedding-3-large)
//   - TF-IDF fitted on the corpus, for offline runs
type EmbeddingService interface {
	// Embed generates a vector embedding for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts.
	// The result must hold one vector per text, in input order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the embedding vector size (e.g., 1024, 1536).
	Dimensions() int

	// ModelName returns the name of the embedding model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight test request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// CorpusPreparer is implemented by embedding services that must see the
// whole corpus before embedding any of it.
type CorpusPreparer interface {
	// Prepare fits the model on all texts of the run.
	Prepare(ctx context.Context, texts []string) error
}

// EmbeddingCache stores vectors keyed by a hash of model and text.
type EmbeddingCache interface {
	// GetEmbeddings returns the cached vectors for the keys that are present.
	GetEmbeddings(ctx context.Context, keys []string) (map[string][]float32, error)

	// SaveEmbeddings stores vectors produced by the given model.
	SaveEmbeddings(ctx context.Context, model string, entries map[string][]float32) error

	// Close releases resources.
	Close() error
}

package driven

import (
	"context"

	"github.com/custodia-labs/galaxy-cli/internal/core/domain"
)

// Clusterer partitions embeddings into topical groups.
type Clusterer interface {
	// Name returns the algorithm name for logging and configuration.
	Name() string

	// Cluster assigns each vector an id in [0, min(k, len(vectors))).
	// The same vectors, k and seed always produce the same labels.
	Cluster(ctx context.Context, vectors [][]float64, k int, seed uint64) ([]int, error)
}

// Projector reduces embeddings to 2D coordinates.
type Projector interface {
	// Name returns the algorithm name for logging and configuration.
	Name() string

	// Project returns one finite coordinate per vector, index-aligned.
	// The same vectors and seed always produce the same coordinates.
	Project(ctx context.Context, vectors [][]float64, seed uint64) ([]domain.Coordinate, error)
}

package driving

import (
	"context"

	"github.com/custodia-labs/galaxy-cli/internal/core/domain"
)

// GalaxyBuilder runs the full generation pipeline: discovery, normalisation,
// embedding, clustering, projection and output.
type GalaxyBuilder interface {
	// Build generates the galaxy dataset and writes it.
	// Nothing is written when any stage fails.
	Build(ctx context.Context, opts domain.BuildOptions) (*domain.BuildResult, error)
}

// GalaxyGenerator turns an ordered slice of posts into galaxy points.
type GalaxyGenerator interface {
	// Generate embeds, clusters and projects the posts.
	// Output has one point per post, in input order.
	Generate(ctx context.Context, posts []domain.Post, params GenerateParams) ([]domain.GalaxyPoint, error)
}

// GenerateParams are the core pipeline parameters.
type GenerateParams struct {
	// Clusters is the requested cluster count. Must be positive.
	Clusters int

	// BatchSize is the number of texts per embedding call. Must be positive.
	BatchSize int

	// Seed drives clustering and projection.
	Seed uint64

	// Progress, when set, is called after every embedding batch.
	Progress func(done, total int)
}

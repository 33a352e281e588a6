package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/galaxy-cli/internal/core/domain"
	"github.com/custodia-labs/galaxy-cli/internal/core/ports/driven"
	"github.com/custodia-labs/galaxy-cli/internal/core/ports/driving"
	"github.com/custodia-labs/galaxy-cli/internal/logger"
)

// Ensure GalaxyService implements the interface.
var _ driving.GalaxyGenerator = (*GalaxyService)(nil)

// GalaxyService runs the embedding-to-layout pipeline:
// embed, cluster, project, assemble.
type GalaxyService struct {
	embedder  *Embedder
	clusterer driven.Clusterer
	projector driven.Projector
}

// NewGalaxyService creates a new galaxy service.
func NewGalaxyService(embedder *Embedder, clusterer driven.Clusterer, projector driven.Projector) *GalaxyService {
	return &GalaxyService{
		embedder:  embedder,
		clusterer: clusterer,
		projector: projector,
	}
}

// Generate embeds, clusters and projects posts.
// Empty input yields an empty, non-nil slice without calling any stage.
func (s *GalaxyService) Generate(
	ctx context.Context,
	posts []domain.Post,
	params driving.GenerateParams,
) ([]domain.GalaxyPoint, error) {
	if params.Clusters <= 0 {
		return nil, fmt.Errorf("%w: clusters must be positive, got %d", domain.ErrInvalidInput, params.Clusters)
	}
	if params.BatchSize <= 0 {
		return nil, fmt.Errorf("%w: batch size must be positive, got %d", domain.ErrInvalidInput, params.BatchSize)
	}
	if len(posts) == 0 {
		return []domain.GalaxyPoint{}, nil
	}

	texts := make([]string, len(posts))
	for i, p := range posts {
		texts[i] = p.Text
	}

	// 1. EMBED
	logger.Section("Embedding")
	done := logger.Timed("embedding")
	vectors, err := s.embedder.Embed(ctx, texts, params.BatchSize, params.Progress)
	done()
	if err != nil {
		return nil, fmt.Errorf("embed: %w", err)
	}
	logger.Info("Embedded %d posts with %s (%d dimensions)", len(vectors), s.embedder.ModelName(), len(vectors[0]))

	// 2. CLUSTER
	k := min(params.Clusters, len(posts))
	logger.Section("Clustering")
	done = logger.Timed(s.clusterer.Name())
	labels, err := s.clusterer.Cluster(ctx, vectors, k, params.Seed)
	done()
	if err != nil {
		return nil, fmt.Errorf("cluster: %w", err)
	}
	logger.Info("Assigned %d posts to %d clusters", len(labels), k)

	// 3. PROJECT
	logger.Section("Projection")
	done = logger.Timed(s.projector.Name())
	coords, err := s.projector.Project(ctx, vectors, params.Seed)
	done()
	if err != nil {
		return nil, fmt.Errorf("project: %w", err)
	}

	// 4. ASSEMBLE
	return Assemble(posts, labels, coords)
}

// Assemble joins posts, cluster labels and coordinates by index.
// The three slices must have equal length.
func Assemble(posts []domain.Post, labels []int, coords []domain.Coordinate) ([]domain.GalaxyPoint, error) {
	if len(labels) != len(posts) || len(coords) != len(posts) {
		return nil, fmt.Errorf("%w: %d posts, %d labels, %d coordinates",
			domain.ErrInvalidInput, len(posts), len(labels), len(coords))
	}

	points := make([]domain.GalaxyPoint, len(posts))
	for i, p := range posts {
		points[i] = domain.GalaxyPoint{
			Title:   p.Title,
			Slug:    p.Slug,
			Date:    p.Date,
			Cluster: labels[i],
			X:       coords[i].X,
			Y:       coords[i].Y,
		}
	}
	return points, nil
}

package services

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/galaxy-cli/internal/core/domain"
	"github.com/custodia-labs/galaxy-cli/internal/core/ports/driven"
	"github.com/custodia-labs/galaxy-cli/internal/core/ports/driving"
	"github.com/custodia-labs/galaxy-cli/internal/logger"
)

// Ensure BuildService implements the interface.
var _ driving.GalaxyBuilder = (*BuildService)(nil)

// BuildService coordinates a full run: discover posts, normalise them,
// generate the galaxy and write it.
type BuildService struct {
	connectors driven.ConnectorBuilder
	registry   driven.NormaliserRegistry
	generator  driving.GalaxyGenerator
	writers    driven.WriterBuilder
}

// NewBuildService creates a new build service.
func NewBuildService(
	connectors driven.ConnectorBuilder,
	registry driven.NormaliserRegistry,
	generator driving.GalaxyGenerator,
	writers driven.WriterBuilder,
) *BuildService {
	return &BuildService{
		connectors: connectors,
		registry:   registry,
		generator:  generator,
		writers:    writers,
	}
}

// Build generates the galaxy dataset for opts.InputDir and writes it to
// opts.OutputPath. Any failure aborts the run before the writer is called.
func (s *BuildService) Build(ctx context.Context, opts domain.BuildOptions) (*domain.BuildResult, error) {
	start := time.Now()
	runID := uuid.New().String()

	if opts.InputDir == "" || opts.OutputPath == "" {
		return nil, fmt.Errorf("%w: input directory and output path are required", domain.ErrInvalidInput)
	}

	logger.Section("Build " + runID)
	logger.Info("Input: %s", opts.InputDir)
	logger.Info("Output: %s", opts.OutputPath)

	// 1. CREATE WRITER (fail fast on a bad output path)
	writer, err := s.writers(opts.OutputPath)
	if err != nil {
		return nil, fmt.Errorf("create writer: %w", err)
	}

	// 2. DISCOVER
	raws, err := s.discover(ctx, opts.InputDir)
	if err != nil {
		return nil, err
	}
	logger.Info("Discovered %d files", len(raws))

	// 3. NORMALISE
	posts, drafts, err := s.normalise(ctx, raws)
	if err != nil {
		return nil, err
	}
	logger.Info("Loaded %d posts, skipped %d drafts", len(posts), drafts)

	// 4. GENERATE
	points, err := s.generator.Generate(ctx, posts, driving.GenerateParams{
		Clusters:  opts.Clusters,
		BatchSize: opts.BatchSize,
		Seed:      opts.Seed,
		Progress:  opts.Progress,
	})
	if err != nil {
		return nil, err
	}

	// 5. WRITE
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := writer.Write(ctx, points); err != nil {
		return nil, fmt.Errorf("write output: %w", err)
	}

	result := &domain.BuildResult{
		RunID:      runID,
		Posts:      len(points),
		Drafts:     drafts,
		OutputPath: writer.Path(),
		Duration:   time.Since(start),
	}
	if len(points) > 0 {
		result.Clusters = min(opts.Clusters, len(points))
	}

	logger.Info("Run %s wrote %d points in %s", runID, result.Posts, result.Duration.Round(time.Millisecond))
	return result, nil
}

// discover reads every raw document from the input directory, ordered by
// relative path compared component by component.
func (s *BuildService) discover(ctx context.Context, inputDir string) ([]domain.RawDocument, error) {
	connector, err := s.connectors(inputDir)
	if err != nil {
		return nil, fmt.Errorf("create connector: %w", err)
	}
	defer connector.Close()

	if err := connector.Validate(ctx); err != nil {
		return nil, err
	}

	docsCh, errsCh := connector.FullSync(ctx)
	var raws []domain.RawDocument

collect:
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()

		case err, ok := <-errsCh:
			if !ok {
				errsCh = nil
				continue
			}
			if err != nil {
				return nil, fmt.Errorf("connector error: %w", err)
			}

		case raw, ok := <-docsCh:
			if !ok {
				break collect
			}
			logger.Debug("Found: %s", raw.URI)
			raws = append(raws, raw)
		}
	}

	// An error may still be buffered after the docs channel closes.
	if errsCh != nil {
		if err, ok := <-errsCh; ok && err != nil {
			return nil, fmt.Errorf("connector error: %w", err)
		}
	}

	slices.SortStableFunc(raws, func(a, b domain.RawDocument) int {
		return comparePaths(a.RelativePath(), b.RelativePath())
	})
	return raws, nil
}

// normalise converts raw documents to posts in order, dropping drafts.
func (s *BuildService) normalise(ctx context.Context, raws []domain.RawDocument) ([]domain.Post, int, error) {
	posts := make([]domain.Post, 0, len(raws))
	drafts := 0
	seen := make(map[string]string, len(raws))

	for i := range raws {
		raw := &raws[i]
		result, err := s.registry.Normalise(ctx, raw)
		if err != nil {
			return nil, 0, fmt.Errorf("normalise %s: %w", raw.URI, err)
		}
		if result.Draft {
			logger.Debug("Skipping draft: %s", raw.URI)
			drafts++
			continue
		}
		if prev, ok := seen[result.Post.Slug]; ok {
			logger.Warn("Slug %q used by both %s and %s", result.Post.Slug, prev, raw.URI)
		}
		seen[result.Post.Slug] = raw.URI
		posts = append(posts, result.Post)
	}
	return posts, drafts, nil
}

// comparePaths orders slash-separated paths component by component, so
// "a/z.md" sorts before "a-b.md".
func comparePaths(a, b string) int {
	return slices.Compare(strings.Split(a, "/"), strings.Split(b, "/"))
}

// Command galaxy generates a 2D topic map dataset from a directory of blog posts.
package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/galaxy-cli/internal/adapters/driven/ai"
	"github.com/custodia-labs/galaxy-cli/internal/adapters/driven/config/file"
	"github.com/custodia-labs/galaxy-cli/internal/adapters/driven/output/jsonfile"
	"github.com/custodia-labs/galaxy-cli/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/galaxy-cli/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/galaxy-cli/internal/adapters/driving/cli"
	"github.com/custodia-labs/galaxy-cli/internal/connectors/filesystem"
	"github.com/custodia-labs/galaxy-cli/internal/core/domain"
	"github.com/custodia-labs/galaxy-cli/internal/core/ports/driven"
	"github.com/custodia-labs/galaxy-cli/internal/core/ports/driving"
	"github.com/custodia-labs/galaxy-cli/internal/core/services"
	"github.com/custodia-labs/galaxy-cli/internal/layout"
	"github.com/custodia-labs/galaxy-cli/internal/logger"
	"github.com/custodia-labs/galaxy-cli/internal/normalisers"
)

// version is set via -ldflags at release time.
var version = "dev"

func main() {
	// A missing .env is normal.
	_ = godotenv.Load() //nolint:errcheck // optional file

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cli.SetVersion(version)
	cli.SetBootstrap(bootstrap)

	if err := cli.Execute(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

// bootstrap wires the settings service and the per-run pipeline factory.
func bootstrap(configDir string) (*cli.Services, error) {
	var configStore driven.ConfigStore
	fileStore, err := file.NewConfigStore(configDir)
	if err != nil {
		logger.Warn("Config file unavailable, using defaults: %v", err)
		configStore = memory.NewConfigStore()
	} else {
		configStore = fileStore
	}

	settingsService := services.NewSettingsService(configStore, ai.NewConfigValidator())

	return &cli.Services{
		Settings: settingsService,
		Pipeline: func(settings *domain.AppSettings, opts cli.PipelineOptions) (driving.GalaxyBuilder, func(), error) {
			return buildPipeline(settings, opts, configDir)
		},
	}, nil
}

// buildPipeline assembles the adapters for one generate run.
func buildPipeline(
	settings *domain.AppSettings,
	opts cli.PipelineOptions,
	configDir string,
) (driving.GalaxyBuilder, func(), error) {
	embedding, err := ai.CreateEmbeddingService(&settings.Embedding)
	if err != nil {
		return nil, nil, err
	}

	cache := openCache(settings, configDir)
	cleanup := func() {
		if cache != nil {
			if err := cache.Close(); err != nil {
				logger.Warn("Closing embedding cache: %v", err)
			}
		}
		if err := embedding.Close(); err != nil {
			logger.Warn("Closing embedding service: %v", err)
		}
	}

	embedder := services.NewEmbedder(embedding,
		services.WithEmbeddingCache(cache),
		services.WithRateLimit(settings.Embedding.RateLimit),
		services.WithPreflight(ai.PingTimeout),
	)

	algorithms := layout.NewDefaultRegistry()
	cfg := settings.Layout.AlgorithmConfig()
	clusterer, err := algorithms.BuildClusterer(settings.Layout.Clusterer, cfg)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	projector, err := algorithms.BuildProjector(settings.Layout.Projector, cfg)
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	connectors := func(inputDir string) (driven.Connector, error) {
		var fsOpts []filesystem.Option
		if opts.SkipHidden {
			fsOpts = append(fsOpts, filesystem.WithSkipHidden())
		}
		return filesystem.New("posts", inputDir, fsOpts...), nil
	}

	builder := services.NewBuildService(
		connectors,
		normalisers.NewDefaultRegistry(),
		services.NewGalaxyService(embedder, clusterer, projector),
		jsonfile.Builder,
	)
	return builder, cleanup, nil
}

// openCache returns the persistent embedding cache, an in-memory one when the
// database cannot be opened, or nil when caching is off for this provider.
func openCache(settings *domain.AppSettings, configDir string) driven.EmbeddingCache {
	if !settings.Embedding.Cache || !settings.Embedding.Provider.Cacheable() {
		return nil
	}

	dataDir := settings.Paths.DataDir
	if dataDir == "" && configDir != "" {
		dataDir = filepath.Join(configDir, "data")
	}

	store, err := sqlite.NewStore(dataDir)
	if err != nil {
		logger.Warn("Embedding cache unavailable, caching in memory: %v", err)
		return memory.NewEmbeddingCache()
	}
	logger.Debug("Embedding cache: %s", store.Path())
	return store.EmbeddingCache()
}

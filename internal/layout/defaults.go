package layout

import (
	"github.com/custodia-labs/galaxy-cli/internal/core/ports/driven"
	"github.com/custodia-labs/galaxy-cli/internal/layout/kmeans"
	"github.com/custodia-labs/galaxy-cli/internal/layout/pca"
	"github.com/custodia-labs/galaxy-cli/internal/layout/tsne"
)

// RegisterDefaults registers the built-in algorithms.
func RegisterDefaults(r *Registry) {
	r.RegisterClusterer("kmeans", buildKMeans)
	r.RegisterProjector("tsne", buildTSNE)
	r.RegisterProjector("pca", func(map[string]any) (driven.Projector, error) {
		return pca.New(), nil
	})
}

// buildKMeans creates a k-means clusterer.
// Supported config keys:
//   - restarts (int): runs kept to the lowest inertia (default: 1)
//   - max_iterations (int): Lloyd iterations per run (default: 300)
//   - tolerance (float): relative centre-shift tolerance (default: 1e-4)
func buildKMeans(cfg map[string]any) (driven.Clusterer, error) {
	var opts []kmeans.Option
	if n := getInt(cfg, "restarts"); n > 0 {
		opts = append(opts, kmeans.WithRestarts(n))
	}
	if n := getInt(cfg, "max_iterations"); n > 0 {
		opts = append(opts, kmeans.WithMaxIterations(n))
	}
	if tol, ok := getFloat(cfg, "tolerance"); ok {
		opts = append(opts, kmeans.WithTolerance(tol))
	}
	return kmeans.New(opts...), nil
}

// buildTSNE creates a t-SNE projector.
// Supported config keys:
//   - iterations (int): total optimisation steps (default: 1000)
func buildTSNE(cfg map[string]any) (driven.Projector, error) {
	var opts []tsne.Option
	if n := getInt(cfg, "iterations"); n > 0 {
		opts = append(opts, tsne.WithIterations(n))
	}
	return tsne.New(opts...), nil
}

// getInt extracts an int from a generic config map.
// Handles int, int64 and float64, which may come from TOML or JSON parsing.
func getInt(cfg map[string]any, key string) int {
	switch v := cfg[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}

func getFloat(cfg map[string]any, key string) (float64, bool) {
	switch v := cfg[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}

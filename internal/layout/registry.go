// Package layout builds the clustering and projection algorithms used to
// place posts on the galaxy map.
package layout

import (
	"fmt"
	"slices"

	"github.com/custodia-labs/galaxy-cli/internal/core/domain"
	"github.com/custodia-labs/galaxy-cli/internal/core/ports/driven"
)

// ClustererBuilder creates a Clusterer from generic config.
// Config is a map of algorithm-specific settings parsed from user config.
type ClustererBuilder func(cfg map[string]any) (driven.Clusterer, error)

// ProjectorBuilder creates a Projector from generic config.
type ProjectorBuilder func(cfg map[string]any) (driven.Projector, error)

// Registry maps algorithm names to their builders.
type Registry struct {
	clusterers map[string]ClustererBuilder
	projectors map[string]ProjectorBuilder
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		clusterers: make(map[string]ClustererBuilder),
		projectors: make(map[string]ProjectorBuilder),
	}
}

// NewDefaultRegistry creates a registry with the built-in algorithms.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	RegisterDefaults(r)
	return r
}

// RegisterClusterer adds a clusterer builder. Name should match the
// clusterer's Name() return value.
func (r *Registry) RegisterClusterer(name string, builder ClustererBuilder) {
	r.clusterers[name] = builder
}

// RegisterProjector adds a projector builder.
func (r *Registry) RegisterProjector(name string, builder ProjectorBuilder) {
	r.projectors[name] = builder
}

// BuildClusterer creates a clusterer by name with the given config.
func (r *Registry) BuildClusterer(name string, cfg map[string]any) (driven.Clusterer, error) {
	builder, ok := r.clusterers[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown clusterer %q (available: %v)",
			domain.ErrInvalidInput, name, r.ClustererNames())
	}
	return builder(cfg)
}

// BuildProjector creates a projector by name with the given config.
func (r *Registry) BuildProjector(name string, cfg map[string]any) (driven.Projector, error) {
	builder, ok := r.projectors[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown projector %q (available: %v)",
			domain.ErrInvalidInput, name, r.ProjectorNames())
	}
	return builder(cfg)
}

// ClustererNames returns the registered clusterer names, sorted.
func (r *Registry) ClustererNames() []string {
	return sortedKeys(r.clusterers)
}

// ProjectorNames returns the registered projector names, sorted.
func (r *Registry) ProjectorNames() []string {
	return sortedKeys(r.projectors)
}

func sortedKeys[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

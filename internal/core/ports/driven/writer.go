package driven

import (
	"context"

	"github.com/custodia-labs/galaxy-cli/internal/core/domain"
)

// GalaxyWriter persists the finished dataset.
type GalaxyWriter interface {
	// Write stores the points in order. An empty slice is a valid dataset.
	Write(ctx context.Context, points []domain.GalaxyPoint) error

	// Path returns where the dataset is written.
	Path() string
}

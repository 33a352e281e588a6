package driven

import (
	"context"

	"github.com/custodia-labs/galaxy-cli/internal/core/domain"
)

// Connector fetches documents from a data source.
type Connector interface {
	// Type returns the connector type identifier.
	Type() string

	// SourceID returns the configured source ID.
	SourceID() string

	// Validate checks the source is ready to be read.
	// For filesystem, this checks the path exists and is a directory.
	Validate(ctx context.Context) error

	// FullSync fetches all documents from the source.
	// Returns channels for documents and errors. Both are closed when done.
	FullSync(ctx context.Context) (<-chan domain.RawDocument, <-chan error)

	// Close releases resources.
	Close() error
}

package driven

import (
	"context"

	"github.com/custodia-labs/galaxy-cli/internal/core/domain"
)

// Normaliser transforms raw documents into posts.
// Each normaliser handles specific MIME types (e.g., Markdown, MDX).
type Normaliser interface {
	// SupportedMIMETypes returns the MIME types this normaliser handles.
	SupportedMIMETypes() []string

	// Priority returns the selection priority (higher = preferred).
	Priority() int

	// Normalise transforms a raw document into a post.
	Normalise(ctx context.Context, raw *domain.RawDocument) (*NormaliseResult, error)
}

// NormaliseResult contains the output of normalisation.
type NormaliseResult struct {
	// Post is the normalised post. Its Text is never empty.
	Post domain.Post

	// Draft is true when the front matter marks the post as a draft.
	// Drafts are excluded from the galaxy.
	Draft bool
}

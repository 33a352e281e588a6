package markdown

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/galaxy-cli/internal/core/domain"
	"github.com/custodia-labs/galaxy-cli/internal/core/ports/driven"
	"github.com/custodia-labs/galaxy-cli/internal/normalisers/frontmatter"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Front matter keys read by the normaliser.
const (
	keyTitle   = "title"
	keyDraft   = "draft"
	keyPubDate = "pubDate"
	keyDate    = "date"
)

// Normaliser handles Markdown and MDX blog posts.
type Normaliser struct{}

// New creates a new Markdown normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{"text/markdown", "text/x-markdown", "text/mdx"}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50
}

// Normalise converts a markdown document to a post.
//
// The slug is the document's relative path without its extension. The title
// falls back to the file stem, and the text falls back to the title when the
// stripped body is empty.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	doc, err := frontmatter.Parse(raw.Content)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", raw.URI, err)
	}
	meta := doc.Metadata

	rel := raw.RelativePath()
	if rel == "" {
		rel = filepath.Base(raw.URI)
	}
	rel = filepath.ToSlash(rel)

	title := stem(rel)
	if v := meta[keyTitle]; truthy(v) {
		title = fmt.Sprint(v)
	}

	dateValue := meta[keyPubDate]
	if !truthy(dateValue) {
		dateValue = meta[keyDate]
	}

	text := Strip(doc.Body)
	if text == "" {
		text = title
	}

	return &driven.NormaliseResult{
		Post: domain.Post{
			Title: title,
			Slug:  strings.TrimSuffix(rel, path.Ext(rel)),
			Date:  NormalizeDate(dateValue),
			Text:  text,
		},
		Draft: meta[keyDraft] == true,
	}, nil
}

// stem returns the file name without its final extension.
func stem(rel string) string {
	base := path.Base(rel)
	return strings.TrimSuffix(base, path.Ext(base))
}

// truthy reports whether a front matter value counts as set.
// Empty strings, zero numbers, false and empty collections do not.
func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return t != ""
	case bool:
		return t
	case int:
		return t != 0
	case int64:
		return t != 0
	case uint64:
		return t != 0
	case float64:
		return t != 0
	case []any:
		return len(t) > 0
	case map[string]any:
		return len(t) > 0
	default:
		return true
	}
}

// Package filesystem provides a connector that reads blog posts from a
// local directory tree.
package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/custodia-labs/galaxy-cli/internal/core/domain"
	"github.com/custodia-labs/galaxy-cli/internal/core/ports/driven"
)

// Ensure Connector implements the interface.
var _ driven.Connector = (*Connector)(nil)

// ConnectorType is the type identifier of this connector.
const ConnectorType = "filesystem"

// DefaultExtensions are the post file extensions read when none are configured.
var DefaultExtensions = []string{".md", ".mdx"}

// Connector walks a directory and emits every post file as a RawDocument.
// Files are emitted in lexical order per directory, which is the same as
// sorting the relative paths component by component.
type Connector struct {
	sourceID   string
	rootPath   string
	extensions map[string]bool
	skipHidden bool

	mu     sync.Mutex
	closed bool
}

// Option configures a Connector.
type Option func(*Connector)

// WithExtensions replaces the set of file extensions to read.
// Extensions are matched case-insensitively and must include the dot.
func WithExtensions(exts ...string) Option {
	return func(c *Connector) {
		c.extensions = make(map[string]bool, len(exts))
		for _, ext := range exts {
			c.extensions[strings.ToLower(ext)] = true
		}
	}
}

// WithSkipHidden excludes files and directories whose name starts with a dot.
func WithSkipHidden() Option {
	return func(c *Connector) {
		c.skipHidden = true
	}
}

// New creates a filesystem connector rooted at rootPath.
func New(sourceID, rootPath string, opts ...Option) *Connector {
	c := &Connector{
		sourceID: sourceID,
		rootPath: rootPath,
	}
	WithExtensions(DefaultExtensions...)(c)
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Type returns the connector type identifier.
func (c *Connector) Type() string {
	return ConnectorType
}

// SourceID returns the configured source ID.
func (c *Connector) SourceID() string {
	return c.sourceID
}

// Validate checks that the root path exists and is a directory.
func (c *Connector) Validate(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return c.checkRoot()
}

func (c *Connector) checkRoot() error {
	info, err := os.Stat(c.rootPath)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: path does not exist: %s", domain.ErrSourceNotFound, c.rootPath)
	}
	if err != nil {
		return fmt.Errorf("stat %s: %w", c.rootPath, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: not a directory: %s", domain.ErrSourceNotFound, c.rootPath)
	}
	return nil
}

// FullSync walks the root directory and sends every matching file.
// The error channel receives at most one error. Both channels are closed
// when the walk ends.
func (c *Connector) FullSync(ctx context.Context) (<-chan domain.RawDocument, <-chan error) {
	docs := make(chan domain.RawDocument)
	errs := make(chan error, 1)

	go func() {
		defer close(docs)
		defer close(errs)

		if c.isClosed() {
			errs <- domain.ErrConnectorClosed
			return
		}
		if err := ctx.Err(); err != nil {
			errs <- err
			return
		}
		if err := c.checkRoot(); err != nil {
			errs <- err
			return
		}

		if err := c.walk(ctx, docs); err != nil {
			errs <- err
		}
	}()

	return docs, errs
}

func (c *Connector) walk(ctx context.Context, docs chan<- domain.RawDocument) error {
	return filepath.WalkDir(c.rootPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		rel, err := filepath.Rel(c.rootPath, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}

		if c.skipHidden && isHidden(d.Name()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}

		ext := strings.ToLower(filepath.Ext(path))
		if !c.extensions[ext] {
			return nil
		}

		// Stat follows symlinks; anything that is not a regular file is skipped.
		info, err := os.Stat(path)
		if err != nil {
			return fmt.Errorf("stat %s: %w", rel, err)
		}
		if !info.Mode().IsRegular() {
			return nil
		}

		doc, err := c.readFile(path, rel, info)
		if err != nil {
			return err
		}

		select {
		case docs <- doc:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	})
}

func (c *Connector) readFile(path, rel string, info fs.FileInfo) (domain.RawDocument, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return domain.RawDocument{}, fmt.Errorf("read %s: %w", rel, err)
	}

	name := filepath.Base(path)
	return domain.RawDocument{
		SourceID: c.sourceID,
		URI:      path,
		MIMEType: detectMIMEType(name),
		Content:  content,
		Metadata: map[string]any{
			"relative_path": filepath.ToSlash(rel),
			"filename":      name,
			"extension":     strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), "."),
			"size":          info.Size(),
			"modified":      info.ModTime(),
		},
	}, nil
}

// Close marks the connector closed. Safe to call more than once.
func (c *Connector) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *Connector) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// mimeFallbacks covers extensions the platform MIME table may not know.
var mimeFallbacks = map[string]string{
	".md":       "text/markdown",
	".markdown": "text/markdown",
	".mdx":      "text/mdx",
}

// detectMIMEType returns the MIME type for a file name, without parameters.
func detectMIMEType(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" {
		return "text/plain"
	}
	if m, ok := mimeFallbacks[ext]; ok {
		return m
	}
	if m := mime.TypeByExtension(ext); m != "" {
		if i := strings.Index(m, ";"); i >= 0 {
			m = m[:i]
		}
		return strings.TrimSpace(m)
	}
	return "application/octet-stream"
}

// isHidden reports whether any element of path starts with a dot.
// "." and ".." are not hidden.
func isHidden(path string) bool {
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if part == "" || part == "." || part == ".." {
			continue
		}
		if strings.HasPrefix(part, ".") {
			return true
		}
	}
	return false
}

// Package jsonfile writes the galaxy dataset as a JSON array file.
package jsonfile

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/custodia-labs/galaxy-cli/internal/core/domain"
	"github.com/custodia-labs/galaxy-cli/internal/core/ports/driven"
)

// Ensure Writer implements the interface.
var _ driven.GalaxyWriter = (*Writer)(nil)

// filePerm is the mode of the written dataset. It is served to browsers,
// so it stays world-readable.
const filePerm = 0644

// Writer writes points to a JSON file.
//
// Output is a two-space indented array with non-ASCII and HTML characters
// left unescaped and a trailing newline. The file is replaced atomically, so
// readers never see a partial dataset.
type Writer struct {
	path string
}

// New creates a writer targeting path.
func New(path string) (*Writer, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: output path is empty", domain.ErrInvalidInput)
	}
	return &Writer{path: path}, nil
}

// Builder adapts New to driven.WriterBuilder.
func Builder(path string) (driven.GalaxyWriter, error) {
	return New(path)
}

// Path returns the output file path.
func (w *Writer) Path() string {
	return w.path
}

// Write encodes points and replaces the output file.
func (w *Writer) Write(ctx context.Context, points []domain.GalaxyPoint) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := Encode(points)
	if err != nil {
		return err
	}

	dir := filepath.Dir(w.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(w.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", tmpName, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmpName, err)
	}
	if err := os.Chmod(tmpName, filePerm); err != nil {
		return fmt.Errorf("chmod %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, w.path); err != nil {
		return fmt.Errorf("replace %s: %w", w.path, err)
	}
	return nil
}

// Encode renders points in the dataset format. A nil slice encodes as an
// empty array.
func Encode(points []domain.GalaxyPoint) ([]byte, error) {
	if points == nil {
		points = []domain.GalaxyPoint{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(points); err != nil {
		return nil, fmt.Errorf("encode points: %w", err)
	}
	return buf.Bytes(), nil
}

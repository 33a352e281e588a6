// Package frontmatter splits a document into its metadata block and body.
//
// Two block styles are recognised at the very start of the document:
//
//	---            +++
//	title: YAML    title = "TOML"
//	---            +++
//
// A document without a recognised block has empty metadata and the whole
// text as body.
package frontmatter

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Format identifies the metadata block syntax.
type Format int

const (
	// FormatNone means the document has no front matter.
	FormatNone Format = iota

	// FormatYAML is a block delimited by --- lines.
	FormatYAML

	// FormatTOML is a block delimited by +++ lines.
	FormatTOML
)

// String returns the format name.
func (f Format) String() string {
	switch f {
	case FormatYAML:
		return "yaml"
	case FormatTOML:
		return "toml"
	default:
		return "none"
	}
}

var (
	yamlBoundary = regexp.MustCompile(`(?m)^-{3,}\s*$`)
	tomlBoundary = regexp.MustCompile(`(?m)^\+{3,}\s*$`)
)

// Document is a parsed document.
type Document struct {
	// Metadata holds the front matter keys. Never nil.
	Metadata map[string]any

	// Body is the content after the closing delimiter, trimmed.
	Body string

	// Format is the detected block syntax.
	Format Format
}

// Parse splits content into metadata and body.
// A block that opens but never closes is treated as body text.
// Malformed YAML or TOML inside a closed block is an error.
func Parse(content []byte) (*Document, error) {
	text := strings.TrimSpace(strings.TrimPrefix(string(content), "\ufeff"))
	doc := &Document{Metadata: map[string]any{}, Body: text}

	format, boundary := detect(text)
	if format == FormatNone {
		return doc, nil
	}

	parts := boundary.Split(text, 3)
	if len(parts) < 3 {
		return doc, nil
	}

	meta, err := decode(format, parts[1])
	if err != nil {
		return nil, fmt.Errorf("parse %s front matter: %w", format, err)
	}

	doc.Metadata = meta
	doc.Body = strings.TrimSpace(parts[2])
	doc.Format = format
	return doc, nil
}

func detect(text string) (Format, *regexp.Regexp) {
	if loc := yamlBoundary.FindStringIndex(text); loc != nil && loc[0] == 0 {
		return FormatYAML, yamlBoundary
	}
	if loc := tomlBoundary.FindStringIndex(text); loc != nil && loc[0] == 0 {
		return FormatTOML, tomlBoundary
	}
	return FormatNone, nil
}

// decode returns an empty map when the block is empty or not a mapping.
func decode(format Format, block string) (map[string]any, error) {
	meta := map[string]any{}
	switch format {
	case FormatYAML:
		var v any
		if err := yaml.Unmarshal([]byte(block), &v); err != nil {
			return nil, err
		}
		if m, ok := v.(map[string]any); ok {
			meta = m
		}
	case FormatTOML:
		if err := toml.Unmarshal([]byte(block), &meta); err != nil {
			return nil, err
		}
	}
	return meta, nil
}

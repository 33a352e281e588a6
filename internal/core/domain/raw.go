package domain

// RawDocument represents opaque bytes fetched by a connector.
// It is the connector's output before normalisation.
type RawDocument struct {
	// SourceID links to the source that produced this document.
	SourceID string

	// URI is the original location (file path).
	URI string

	// MIMEType is the content type (e.g., "text/markdown").
	MIMEType string

	// Content is the raw bytes.
	Content []byte

	// Metadata contains connector-specific key-value pairs.
	// The filesystem connector sets relative_path, filename and extension.
	Metadata map[string]any
}

// RelativePath returns the relative_path metadata entry, or "" if absent.
func (r RawDocument) RelativePath() string {
	if r.Metadata == nil {
		return ""
	}
	rel, _ := r.Metadata["relative_path"].(string)
	return rel
}

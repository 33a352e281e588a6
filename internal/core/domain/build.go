package domain

import "time"

// BuildOptions controls a single galaxy generation run.
// Zero values fall back to the configured settings.
type BuildOptions struct {
	// InputDir is the directory scanned for .md and .mdx files.
	InputDir string

	// OutputPath is the JSON file written on success.
	OutputPath string

	// Clusters is the requested number of clusters.
	Clusters int

	// BatchSize is the number of texts sent per embedding call.
	BatchSize int

	// Seed drives clustering and projection.
	Seed uint64

	// Progress, when set, is called after every embedding batch.
	Progress func(done, total int)
}

// BuildResult summarises a completed run.
type BuildResult struct {
	// RunID identifies the run in logs.
	RunID string

	// Posts is the number of posts written.
	Posts int

	// Drafts is the number of documents skipped as drafts.
	Drafts int

	// Clusters is the effective number of clusters, min(requested, posts).
	Clusters int

	// OutputPath is where the dataset was written.
	OutputPath string

	// Duration is the wall time of the run.
	Duration time.Duration
}

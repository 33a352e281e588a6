package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/galaxy-cli/internal/core/domain"
	"github.com/custodia-labs/galaxy-cli/internal/core/ports/driven"
)

type buildFixture struct {
	connector   *mockConnector
	normalisers *mockNormalisers
	generator   *mockGenerator
	writer      *mockWriter
}

func newBuildFixture(docs ...domain.RawDocument) *buildFixture {
	return &buildFixture{
		connector:   &mockConnector{docs: docs},
		normalisers: &mockNormalisers{},
		generator:   &mockGenerator{},
		writer:      &mockWriter{},
	}
}

func (f *buildFixture) service() *BuildService {
	return NewBuildService(f.connector.builder(), f.normalisers, f.generator, f.writer.builder())
}

func buildOptions() domain.BuildOptions {
	return domain.BuildOptions{
		InputDir:   "/blog",
		OutputPath: "/out/clusters.json",
		Clusters:   5,
		BatchSize:  4,
		Seed:       42,
	}
}

func TestBuildService_Build(t *testing.T) {
	f := newBuildFixture(
		rawPost("b.md", "bravo"),
		rawPost("a.md", "alpha"),
		rawPost("c.md", "draft"),
	)

	result, err := f.service().Build(context.Background(), buildOptions())

	require.NoError(t, err)
	assert.NotEmpty(t, result.RunID)
	assert.Equal(t, 2, result.Posts)
	assert.Equal(t, 1, result.Drafts)
	assert.Equal(t, 2, result.Clusters)
	assert.Equal(t, "/out/clusters.json", result.OutputPath)

	require.Len(t, f.writer.written, 2)
	assert.Equal(t, "a", f.writer.written[0].Slug)
	assert.Equal(t, "b", f.writer.written[1].Slug)
	assert.True(t, f.connector.closed)
}

func TestBuildService_PassesParameters(t *testing.T) {
	f := newBuildFixture(rawPost("a.md", "alpha"))
	opts := buildOptions()
	opts.Clusters = 7
	opts.BatchSize = 3
	opts.Seed = 9
	opts.Progress = func(int, int) {}

	_, err := f.service().Build(context.Background(), opts)

	require.NoError(t, err)
	assert.Equal(t, 7, f.generator.params.Clusters)
	assert.Equal(t, 3, f.generator.params.BatchSize)
	assert.Equal(t, uint64(9), f.generator.params.Seed)
	assert.NotNil(t, f.generator.params.Progress)
}

func TestBuildService_OrdersByPathComponents(t *testing.T) {
	f := newBuildFixture(
		rawPost("a-b.md", "x"),
		rawPost("a/z.md", "x"),
		rawPost("a/b/c.md", "x"),
		rawPost("A.md", "x"),
	)

	_, err := f.service().Build(context.Background(), buildOptions())

	require.NoError(t, err)
	slugs := make([]string, 0, len(f.generator.posts))
	for _, p := range f.generator.posts {
		slugs = append(slugs, p.Slug)
	}
	assert.Equal(t, []string{"A", "a/b/c", "a/z", "a-b"}, slugs)
}

func TestBuildService_EmptyInputWritesEmptyDataset(t *testing.T) {
	f := newBuildFixture()

	result, err := f.service().Build(context.Background(), buildOptions())

	require.NoError(t, err)
	assert.Zero(t, result.Posts)
	assert.Zero(t, result.Clusters)
	assert.Equal(t, 1, f.writer.writes)
	assert.Empty(t, f.writer.written)
}

func TestBuildService_OnlyDrafts(t *testing.T) {
	f := newBuildFixture(rawPost("a.md", "draft"), rawPost("b.md", "draft"))

	result, err := f.service().Build(context.Background(), buildOptions())

	require.NoError(t, err)
	assert.Zero(t, result.Posts)
	assert.Equal(t, 2, result.Drafts)
}

func TestBuildService_RequiresPaths(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*domain.BuildOptions)
	}{
		{"no input dir", func(o *domain.BuildOptions) { o.InputDir = "" }},
		{"no output path", func(o *domain.BuildOptions) { o.OutputPath = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newBuildFixture()
			opts := buildOptions()
			tt.modify(&opts)

			_, err := f.service().Build(context.Background(), opts)

			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestBuildService_FailuresWriteNothing(t *testing.T) {
	stageErr := errors.New("boom")

	tests := []struct {
		name   string
		setup  func(*buildFixture)
		target error
	}{
		{
			name: "missing input directory",
			setup: func(f *buildFixture) {
				f.connector.validateErr = fmt.Errorf("%w: path does not exist: /blog", domain.ErrSourceNotFound)
			},
			target: domain.ErrSourceNotFound,
		},
		{
			name:   "connector error",
			setup:  func(f *buildFixture) { f.connector.syncErr = stageErr },
			target: stageErr,
		},
		{
			name:   "normaliser error",
			setup:  func(f *buildFixture) { f.normalisers.err = stageErr },
			target: stageErr,
		},
		{
			name:   "generator error",
			setup:  func(f *buildFixture) { f.generator.err = domain.ErrEmbeddingCountMismatch },
			target: domain.ErrEmbeddingCountMismatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newBuildFixture(rawPost("a.md", "alpha"))
			tt.setup(f)

			_, err := f.service().Build(context.Background(), buildOptions())

			assert.ErrorIs(t, err, tt.target)
			assert.Zero(t, f.writer.writes)
		})
	}
}

func TestBuildService_WriterBuilderError(t *testing.T) {
	f := newBuildFixture(rawPost("a.md", "alpha"))
	writers := func(string) (driven.GalaxyWriter, error) {
		return nil, domain.ErrInvalidInput
	}

	_, err := NewBuildService(f.connector.builder(), f.normalisers, f.generator, writers).
		Build(context.Background(), buildOptions())

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Nil(t, f.generator.posts)
}

func TestBuildService_WriteError(t *testing.T) {
	f := newBuildFixture(rawPost("a.md", "alpha"))
	f.writer.err = errors.New("disk full")

	_, err := f.service().Build(context.Background(), buildOptions())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}

func TestBuildService_CancelledContext(t *testing.T) {
	f := newBuildFixture(rawPost("a.md", "alpha"), rawPost("b.md", "bravo"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.service().Build(ctx, buildOptions())

	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, f.writer.writes)
}

func TestComparePaths(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"a.md", "a.md", 0},
		{"a.md", "b.md", -1},
		{"a/z.md", "a-b.md", -1},
		{"a-b.md", "a/z.md", 1},
		{"a.md", "a/b.md", 1},
		{"B.md", "a.md", -1},
	}

	for _, tt := range tests {
		t.Run(tt.a+" vs "+tt.b, func(t *testing.T) {
			assert.Equal(t, tt.want, comparePaths(tt.a, tt.b))
		})
	}
}

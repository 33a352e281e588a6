package services

import (
	"context"
	"errors"
	"sync"

	"github.com/custodia-labs/galaxy-cli/internal/core/domain"
	"github.com/custodia-labs/galaxy-cli/internal/core/ports/driven"
	"github.com/custodia-labs/galaxy-cli/internal/core/ports/driving"
)

// --- Embedding ---

// mockEmbedding implements driven.EmbeddingService with vectors derived
// from the text.
type mockEmbedding struct {
	mu      sync.Mutex
	model   string
	batches [][]string
	pings   int
	pingErr error
	err     error
	// short drops the last vector of every batch.
	short bool
	// vector overrides the default text-derived vector.
	vector func(text string) []float32
}

func newMockEmbedding() *mockEmbedding {
	return &mockEmbedding{model: "mock-embed"}
}

func (m *mockEmbedding) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := m.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (m *mockEmbedding) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.batches = append(m.batches, append([]string(nil), texts...))
	if m.err != nil {
		return nil, m.err
	}
	out := make([][]float32, 0, len(texts))
	for _, t := range texts {
		if m.vector != nil {
			out = append(out, m.vector(t))
			continue
		}
		out = append(out, textVector(t))
	}
	if m.short && len(out) > 0 {
		out = out[:len(out)-1]
	}
	return out, nil
}

func (m *mockEmbedding) Dimensions() int   { return 3 }
func (m *mockEmbedding) ModelName() string { return m.model }
func (m *mockEmbedding) Close() error      { return nil }

func (m *mockEmbedding) Ping(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pings++
	return m.pingErr
}

func (m *mockEmbedding) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.batches)
}

// textVector gives texts with shared first letters nearby vectors.
func textVector(text string) []float32 {
	first := float32(text[0])
	return []float32{first, float32(len(text)), 1}
}

// mockPreparer records the corpus handed to Prepare.
type mockPreparer struct {
	*mockEmbedding
	corpus []string
	err    error
}

func (m *mockPreparer) Prepare(_ context.Context, texts []string) error {
	m.corpus = append([]string(nil), texts...)
	return m.err
}

// failingCache returns errors from every call.
type failingCache struct{}

func (failingCache) GetEmbeddings(context.Context, []string) (map[string][]float32, error) {
	return nil, errors.New("disk on fire")
}

func (failingCache) SaveEmbeddings(context.Context, string, map[string][]float32) error {
	return errors.New("disk on fire")
}

func (failingCache) Close() error { return nil }

// --- Layout ---

type mockClusterer struct {
	calls  int
	k      int
	labels []int
	err    error
}

func (m *mockClusterer) Name() string { return "mock-clusterer" }

func (m *mockClusterer) Cluster(_ context.Context, vectors [][]float64, k int, _ uint64) ([]int, error) {
	m.calls++
	m.k = k
	if m.err != nil {
		return nil, m.err
	}
	if m.labels != nil {
		return m.labels, nil
	}
	labels := make([]int, len(vectors))
	for i := range labels {
		labels[i] = i % k
	}
	return labels, nil
}

type mockProjector struct {
	calls int
	err   error
}

func (m *mockProjector) Name() string { return "mock-projector" }

func (m *mockProjector) Project(_ context.Context, vectors [][]float64, _ uint64) ([]domain.Coordinate, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	coords := make([]domain.Coordinate, len(vectors))
	for i := range coords {
		coords[i] = domain.Coordinate{X: float64(i), Y: -float64(i)}
	}
	return coords, nil
}

// --- Discovery ---

// mockConnector streams a fixed set of documents.
type mockConnector struct {
	docs        []domain.RawDocument
	validateErr error
	syncErr     error
	closed      bool
}

func (m *mockConnector) Type() string                     { return "mock" }
func (m *mockConnector) SourceID() string                 { return "posts" }
func (m *mockConnector) Validate(_ context.Context) error { return m.validateErr }

func (m *mockConnector) FullSync(ctx context.Context) (<-chan domain.RawDocument, <-chan error) {
	docs := make(chan domain.RawDocument)
	errs := make(chan error, 1)

	go func() {
		defer close(docs)
		defer close(errs)

		for _, doc := range m.docs {
			select {
			case <-ctx.Done():
				return
			case docs <- doc:
			}
		}
		if m.syncErr != nil {
			errs <- m.syncErr
		}
	}()

	return docs, errs
}

func (m *mockConnector) Close() error {
	m.closed = true
	return nil
}

func (m *mockConnector) builder() driven.ConnectorBuilder {
	return func(string) (driven.Connector, error) { return m, nil }
}

// rawPost builds a raw document at a relative path. Content "draft" marks
// it as a draft for mockNormalisers.
func rawPost(rel, content string) domain.RawDocument {
	return domain.RawDocument{
		SourceID: "posts",
		URI:      "/blog/" + rel,
		MIMEType: "text/markdown",
		Content:  []byte(content),
		Metadata: map[string]any{"relative_path": rel},
	}
}

// mockNormalisers turns raw documents into posts named after their path.
type mockNormalisers struct {
	err error
}

func (m *mockNormalisers) Normalise(_ context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if m.err != nil {
		return nil, m.err
	}
	rel := raw.RelativePath()
	slug := rel[:len(rel)-len(".md")]
	return &driven.NormaliseResult{
		Post: domain.Post{
			Title: "Title " + slug,
			Slug:  slug,
			Text:  string(raw.Content),
		},
		Draft: string(raw.Content) == "draft",
	}, nil
}

func (m *mockNormalisers) Register(driven.Normaliser)   {}
func (m *mockNormalisers) SupportedMIMETypes() []string { return []string{"text/markdown"} }

// mockGenerator maps each post to a point in cluster 0.
type mockGenerator struct {
	posts  []domain.Post
	params driving.GenerateParams
	err    error
}

func (m *mockGenerator) Generate(
	_ context.Context,
	posts []domain.Post,
	params driving.GenerateParams,
) ([]domain.GalaxyPoint, error) {
	m.posts = posts
	m.params = params
	if m.err != nil {
		return nil, m.err
	}
	points := make([]domain.GalaxyPoint, len(posts))
	for i, p := range posts {
		points[i] = domain.GalaxyPoint{Title: p.Title, Slug: p.Slug, Date: p.Date}
	}
	return points, nil
}

// mockWriter records what was written.
type mockWriter struct {
	path    string
	written []domain.GalaxyPoint
	writes  int
	err     error
}

func (m *mockWriter) Write(_ context.Context, points []domain.GalaxyPoint) error {
	m.writes++
	if m.err != nil {
		return m.err
	}
	m.written = points
	return nil
}

func (m *mockWriter) Path() string { return m.path }

func (m *mockWriter) builder() driven.WriterBuilder {
	return func(path string) (driven.GalaxyWriter, error) {
		m.path = path
		return m, nil
	}
}

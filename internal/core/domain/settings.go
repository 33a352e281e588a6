package domain

const unknownDescription = "Unknown"

// AIProvider identifies an embedding provider.
type AIProvider string

// Available embedding providers.
const (
	// AIProviderOllama is a local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is the OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderTFIDF is an offline TF-IDF model fitted on the corpus.
	AIProviderTFIDF AIProvider = "tfidf"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI, AIProviderTFIDF:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI
}

// IsLocal returns true if this provider runs on the local machine.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama || p == AIProviderTFIDF
}

// Cacheable reports whether vectors from this provider depend only on the
// input text and model, so they can be reused across runs.
func (p AIProvider) Cacheable() bool {
	return p != AIProviderTFIDF
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderTFIDF:
		return "TF-IDF (offline)"
	default:
		return unknownDescription
	}
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint (Ollama, or an OpenAI-compatible server).
	BaseURL string

	// APIKey is the API key (for OpenAI).
	APIKey string

	// Dimensions requests a vector size where the provider supports it.
	// Zero keeps the model default.
	Dimensions int

	// RateLimit caps embedding batches per second. Zero disables limiting.
	RateLimit float64

	// Cache enables the persistent embedding cache.
	Cache bool
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// LayoutSettings holds the clustering and projection parameters.
type LayoutSettings struct {
	// Clusters is the requested number of k-means clusters.
	Clusters int

	// BatchSize is the number of texts per embedding call.
	BatchSize int

	// Seed drives k-means initialisation and t-SNE.
	Seed uint64

	// Clusterer names the clustering algorithm.
	Clusterer string

	// Projector names the 2D projection algorithm.
	Projector string

	// Restarts is the number of k-means runs kept to the best. Zero uses
	// the algorithm default.
	Restarts int

	// Iterations caps t-SNE optimisation steps. Zero uses the algorithm
	// default.
	Iterations int
}

// AlgorithmConfig returns the generic option map handed to layout
// algorithm builders.
func (l LayoutSettings) AlgorithmConfig() map[string]any {
	cfg := map[string]any{}
	if l.Restarts > 0 {
		cfg["restarts"] = l.Restarts
	}
	if l.Iterations > 0 {
		cfg["iterations"] = l.Iterations
	}
	return cfg
}

// PathSettings holds filesystem locations.
type PathSettings struct {
	// InputDir is the directory of blog posts.
	InputDir string

	// Output is the JSON dataset path.
	Output string

	// DataDir holds the embedding cache database.
	DataDir string
}

// AppSettings holds all application settings.
type AppSettings struct {
	// Embedding holds embedding provider settings.
	Embedding EmbeddingSettings

	// Layout holds clustering and projection settings.
	Layout LayoutSettings

	// Paths holds input, output and data locations.
	Paths PathSettings
}

// Default layout parameters.
const (
	DefaultClusters  = 5
	DefaultBatchSize = 4
	DefaultSeed      = 42
	DefaultClusterer = "kmeans"
	DefaultProjector = "tsne"
)

// DefaultAppSettings returns settings with sensible defaults.
// Embeddings default to a local Ollama serving bge-m3.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Embedding: EmbeddingSettings{
			Provider: AIProviderOllama,
			Model:    DefaultEmbeddingModels()[AIProviderOllama],
			BaseURL:  "http://localhost:11434",
			Cache:    true,
		},
		Layout: LayoutSettings{
			Clusters:  DefaultClusters,
			BatchSize: DefaultBatchSize,
			Seed:      DefaultSeed,
			Clusterer: DefaultClusterer,
			Projector: DefaultProjector,
		},
		Paths: PathSettings{
			InputDir: "src/content/blog",
			Output:   "src/data/clusters.json",
		},
	}
}

// AllEmbeddingProviders returns providers that support embeddings.
func AllEmbeddingProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
		AIProviderTFIDF,
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama: "bge-m3",
		AIProviderOpenAI: "text-embedding-3-small",
		AIProviderTFIDF:  "tfidf",
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		// Ollama models
		"bge-m3":            1024,
		"nomic-embed-text":  768,
		"mxbai-embed-large": 1024,
		"all-minilm":        384,
		// OpenAI models
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
	}
}

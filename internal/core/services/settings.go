package services

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/custodia-labs/galaxy-cli/internal/core/domain"
	"github.com/custodia-labs/galaxy-cli/internal/core/ports/driven"
	"github.com/custodia-labs/galaxy-cli/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyEmbedProvider   = "embedding.provider"
	keyEmbedModel      = "embedding.model"
	keyEmbedBaseURL    = "embedding.base_url"
	keyEmbedAPIKey     = "embedding.api_key"
	keyEmbedDimensions = "embedding.dimensions"
	keyEmbedRateLimit  = "embedding.rate_limit"
	keyEmbedCache      = "embedding.cache"
	keyLayoutClusters  = "layout.clusters"
	keyLayoutBatchSize = "layout.batch_size"
	keyLayoutSeed      = "layout.seed"
	keyLayoutClusterer = "layout.clusterer"
	keyLayoutProjector = "layout.projector"
	keyLayoutRestarts  = "layout.restarts"
	keyLayoutIters     = "layout.iterations"
	keyPathsInputDir   = "paths.input_dir"
	keyPathsOutput     = "paths.output"
	keyPathsDataDir    = "paths.data_dir"
)

// settingKinds maps every settable key to the type of its value.
var settingKinds = map[string]string{
	keyEmbedProvider:   "provider",
	keyEmbedModel:      "string",
	keyEmbedBaseURL:    "string",
	keyEmbedAPIKey:     "string",
	keyEmbedDimensions: "int",
	keyEmbedRateLimit:  "float",
	keyEmbedCache:      "bool",
	keyLayoutClusters:  "positive",
	keyLayoutBatchSize: "positive",
	keyLayoutSeed:      "int",
	keyLayoutClusterer: "string",
	keyLayoutProjector: "string",
	keyLayoutRestarts:  "int",
	keyLayoutIters:     "int",
	keyPathsInputDir:   "string",
	keyPathsOutput:     "string",
	keyPathsDataDir:    "string",
}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
	}
}

// Get retrieves current application settings.
// Missing or invalid values fall back to defaults.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	provider := s.getProvider(keyEmbedProvider, defaults.Embedding.Provider)
	defaultModel := domain.DefaultEmbeddingModels()[provider]
	defaultBaseURL := ""
	if provider == domain.AIProviderOllama {
		defaultBaseURL = defaults.Embedding.BaseURL
	}

	settings := &domain.AppSettings{
		Embedding: domain.EmbeddingSettings{
			Provider:   provider,
			Model:      s.getString(keyEmbedModel, defaultModel),
			BaseURL:    s.getString(keyEmbedBaseURL, defaultBaseURL),
			APIKey:     s.configStore.GetString(keyEmbedAPIKey),
			Dimensions: s.configStore.GetInt(keyEmbedDimensions),
			RateLimit:  s.configStore.GetFloat(keyEmbedRateLimit),
			Cache:      s.getBool(keyEmbedCache, defaults.Embedding.Cache),
		},
		Layout: domain.LayoutSettings{
			Clusters:   s.getPositive(keyLayoutClusters, defaults.Layout.Clusters),
			BatchSize:  s.getPositive(keyLayoutBatchSize, defaults.Layout.BatchSize),
			Seed:       s.getSeed(defaults.Layout.Seed),
			Clusterer:  s.getString(keyLayoutClusterer, defaults.Layout.Clusterer),
			Projector:  s.getString(keyLayoutProjector, defaults.Layout.Projector),
			Restarts:   max(s.configStore.GetInt(keyLayoutRestarts), 0),
			Iterations: max(s.configStore.GetInt(keyLayoutIters), 0),
		},
		Paths: domain.PathSettings{
			InputDir: s.getString(keyPathsInputDir, defaults.Paths.InputDir),
			Output:   s.getString(keyPathsOutput, defaults.Paths.Output),
			DataDir:  s.getString(keyPathsDataDir, defaults.Paths.DataDir),
		},
	}

	return settings, nil
}

// Save persists application settings.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	values := []struct {
		key   string
		value any
	}{
		{keyEmbedProvider, settings.Embedding.Provider.String()},
		{keyEmbedModel, settings.Embedding.Model},
		{keyEmbedBaseURL, settings.Embedding.BaseURL},
		{keyEmbedDimensions, settings.Embedding.Dimensions},
		{keyEmbedRateLimit, settings.Embedding.RateLimit},
		{keyEmbedCache, settings.Embedding.Cache},
		{keyLayoutClusters, settings.Layout.Clusters},
		{keyLayoutBatchSize, settings.Layout.BatchSize},
		{keyLayoutSeed, int64(settings.Layout.Seed)},
		{keyLayoutClusterer, settings.Layout.Clusterer},
		{keyLayoutProjector, settings.Layout.Projector},
		{keyLayoutRestarts, settings.Layout.Restarts},
		{keyLayoutIters, settings.Layout.Iterations},
		{keyPathsInputDir, settings.Paths.InputDir},
		{keyPathsOutput, settings.Paths.Output},
		{keyPathsDataDir, settings.Paths.DataDir},
	}
	if settings.Embedding.APIKey != "" {
		values = append(values, struct {
			key   string
			value any
		}{keyEmbedAPIKey, settings.Embedding.APIKey})
	}

	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}
	return nil
}

// Keys returns the settings keys accepted by Set, sorted.
func (s *SettingsService) Keys() []string {
	keys := make([]string, 0, len(settingKinds))
	for k := range settingKinds {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Set parses value according to key's type and stores it.
func (s *SettingsService) Set(key, value string) error {
	kind, ok := settingKinds[key]
	if !ok {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}

	var parsed any
	switch kind {
	case "provider":
		provider := domain.AIProvider(strings.ToLower(value))
		if !provider.IsValid() {
			return fmt.Errorf("%w: invalid embedding provider: %s", domain.ErrInvalidInput, value)
		}
		parsed = provider.String()
	case "int":
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil || n < 0 {
			return fmt.Errorf("%w: %s must be a non-negative integer", domain.ErrInvalidInput, key)
		}
		parsed = n
	case "positive":
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil || n <= 0 {
			return fmt.Errorf("%w: %s must be a positive integer", domain.ErrInvalidInput, key)
		}
		parsed = n
	case "float":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil || f < 0 {
			return fmt.Errorf("%w: %s must be a non-negative number", domain.ErrInvalidInput, key)
		}
		parsed = f
	case "bool":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%w: %s must be true or false", domain.ErrInvalidInput, key)
		}
		parsed = b
	default:
		parsed = value
	}

	if err := s.configStore.Set(key, parsed); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// SetEmbeddingProvider configures the embedding provider.
func (s *SettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("invalid embedding provider: %s", provider)
	}

	// Validate API key if required
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("API key required for %s", provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.Embedding.Provider = provider

	// Set model - use provided or default
	if model != "" {
		settings.Embedding.Model = model
	} else {
		settings.Embedding.Model = domain.DefaultEmbeddingModels()[provider]
	}

	// Only Ollama needs a base URL by default
	switch provider {
	case domain.AIProviderOllama:
		if settings.Embedding.BaseURL == "" {
			settings.Embedding.BaseURL = domain.DefaultAppSettings().Embedding.BaseURL
		}
	default:
		settings.Embedding.BaseURL = ""
	}

	settings.Embedding.APIKey = apiKey
	settings.Embedding.Cache = provider.Cacheable() && settings.Embedding.Cache

	return s.Save(settings)
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// ValidateEmbeddingConfig validates the current embedding configuration by pinging the provider.
func (s *SettingsService) ValidateEmbeddingConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateEmbedding(&settings.Embedding)
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getPositive(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val <= 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getSeed(defaultVal uint64) uint64 {
	if _, exists := s.configStore.Get(keyLayoutSeed); !exists {
		return defaultVal
	}
	val := s.configStore.GetInt(keyLayoutSeed)
	if val < 0 {
		return defaultVal
	}
	return uint64(val)
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetBool(key)
}

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	provider := domain.AIProvider(val)
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}

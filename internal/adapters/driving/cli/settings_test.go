package cli

import (
	"bufio"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/galaxy-cli/internal/core/domain"
)

// Test helper functions in settings.go

func TestMaskAPIKey(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "Short key",
			input:    "abc123",
			expected: "****",
		},
		{
			name:     "Exactly 8 chars",
			input:    "12345678",
			expected: "****",
		},
		{
			name:     "Long key",
			input:    "sk-1234567890abcdef",
			expected: "sk-1...cdef",
		},
		{
			name:     "Very long key",
			input:    "sk-proj-1234567890abcdefghijklmnop",
			expected: "sk-p...mnop",
		},
		{
			name:     "Empty key",
			input:    "",
			expected: "****",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := maskAPIKey(tt.input)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestParseChoice(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		maxVal     int
		defaultVal int
		expected   int
	}{
		{
			name:       "Empty input returns default",
			input:      "",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Valid choice within range",
			input:      "3",
			maxVal:     5,
			defaultVal: 1,
			expected:   3,
		},
		{
			name:       "Choice below minimum returns default",
			input:      "0",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Choice above maximum returns default",
			input:      "6",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Invalid input returns default",
			input:      "abc",
			maxVal:     5,
			defaultVal: 2,
			expected:   2,
		},
		{
			name:       "Negative number returns default",
			input:      "-1",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Whitespace returns default",
			input:      "   ",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Maximum value is valid",
			input:      "5",
			maxVal:     5,
			defaultVal: 1,
			expected:   5,
		},
		{
			name:       "Minimum value is valid",
			input:      "1",
			maxVal:     5,
			defaultVal: 3,
			expected:   1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := parseChoice(tt.input, tt.maxVal, tt.defaultVal)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestReadLine_TrimsInput(t *testing.T) {
	reader := bufio.NewReader(strings.NewReader("  bge-m3  \nnext\n"))
	assert.Equal(t, "bge-m3", readLine(reader))
	assert.Equal(t, "next", readLine(reader))
	assert.Empty(t, readLine(reader))
}

func TestSettingsCmd_Subcommands(t *testing.T) {
	names := make([]string, 0, len(settingsCmd.Commands()))
	for _, c := range settingsCmd.Commands() {
		names = append(names, c.Name())
	}
	assert.ElementsMatch(t, []string{"show", "set", "keys", "embedding"}, names)
}

func TestSettingsShow_Defaults(t *testing.T) {
	setupTestServices(t)

	stdout, _, err := execute(t, "settings", "show")

	require.NoError(t, err)
	assert.Contains(t, stdout, "Current Settings")
	assert.Contains(t, stdout, "Ollama (local)")
	assert.Contains(t, stdout, "bge-m3")
	assert.Contains(t, stdout, "http://localhost:11434")
	assert.Contains(t, stdout, "kmeans")
	assert.Contains(t, stdout, "tsne")
	assert.Contains(t, stdout, "src/content/blog")
	assert.Contains(t, stdout, "src/data/clusters.json")
	assert.NotContains(t, stdout, "API Key")
}

func TestSettingsShow_MasksAPIKey(t *testing.T) {
	env := setupTestServices(t)
	require.NoError(t, env.settings.SetEmbeddingProvider(domain.AIProviderOpenAI, "", "sk-1234567890abcdef"))

	stdout, _, err := execute(t, "settings")

	require.NoError(t, err)
	assert.Contains(t, stdout, "sk-1...cdef")
	assert.NotContains(t, stdout, "sk-1234567890abcdef")
}

func TestSettingsSet_StoresValue(t *testing.T) {
	env := setupTestServices(t)

	stdout, _, err := execute(t, "settings", "set", "layout.clusters", "8")

	require.NoError(t, err)
	assert.Equal(t, "Set layout.clusters = 8\n", stdout)

	settings, err := env.settings.Get()
	require.NoError(t, err)
	assert.Equal(t, 8, settings.Layout.Clusters)
}

func TestSettingsSet_MasksAPIKeyInOutput(t *testing.T) {
	setupTestServices(t)

	stdout, _, err := execute(t, "settings", "set", "embedding.api_key", "sk-1234567890abcdef")

	require.NoError(t, err)
	assert.Equal(t, "Set embedding.api_key = sk-1...cdef\n", stdout)
}

func TestSettingsSet_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"unknown key", []string{"layout.colour", "red"}},
		{"non-numeric clusters", []string{"layout.clusters", "many"}},
		{"zero batch size", []string{"layout.batch_size", "0"}},
		{"bad provider", []string{"embedding.provider", "word2vec"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setupTestServices(t)

			_, _, err := execute(t, append([]string{"settings", "set"}, tt.args...)...)

			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestSettingsSet_RequiresTwoArgs(t *testing.T) {
	setupTestServices(t)

	_, _, err := execute(t, "settings", "set", "layout.clusters")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 2 arg(s)")
}

func TestSettingsKeys_ListsSortedKeys(t *testing.T) {
	setupTestServices(t)

	stdout, _, err := execute(t, "settings", "keys")

	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	assert.Contains(t, lines, "embedding.provider")
	assert.Contains(t, lines, "layout.seed")
	assert.Contains(t, lines, "paths.output")
	assert.IsNonDecreasing(t, lines)
}

func TestSettingsEmbedding_ChoosesTFIDF(t *testing.T) {
	env := setupTestServices(t)
	rootCmd.SetIn(strings.NewReader("3\n"))

	stdout, _, err := execute(t, "settings", "embedding")

	require.NoError(t, err)
	assert.Contains(t, stdout, "Validating configuration... OK")
	assert.Contains(t, stdout, "TF-IDF (offline)")

	settings, err := env.settings.Get()
	require.NoError(t, err)
	assert.Equal(t, domain.AIProviderTFIDF, settings.Embedding.Provider)
	assert.Equal(t, "tfidf", settings.Embedding.Model)
}

func TestSettingsEmbedding_CustomOllamaModel(t *testing.T) {
	env := setupTestServices(t)
	rootCmd.SetIn(strings.NewReader("1\nnomic-embed-text\n"))

	_, _, err := execute(t, "settings", "embedding")

	require.NoError(t, err)
	settings, err := env.settings.Get()
	require.NoError(t, err)
	assert.Equal(t, "nomic-embed-text", settings.Embedding.Model)
}

func TestSettingsEmbedding_OpenAIRequiresKey(t *testing.T) {
	setupTestServices(t)
	t.Setenv("OPENAI_API_KEY", "")
	rootCmd.SetIn(strings.NewReader("2\n\n\n"))

	_, _, err := execute(t, "settings", "embedding")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "API key is required")
}

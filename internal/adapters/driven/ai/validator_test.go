package ai

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/galaxy-cli/internal/core/domain"
)

func TestNewConfigValidator(t *testing.T) {
	require.NotNil(t, NewConfigValidator())
}

func TestConfigValidator_ValidateEmbedding_NilConfig(t *testing.T) {
	assert.NoError(t, NewConfigValidator().ValidateEmbedding(nil))
}

func TestConfigValidator_ValidateEmbedding_Unconfigured(t *testing.T) {
	// openai without a key is not configured, so there is nothing to ping.
	err := NewConfigValidator().ValidateEmbedding(&domain.EmbeddingSettings{
		Provider: domain.AIProviderOpenAI,
	})
	assert.NoError(t, err)
}

func TestConfigValidator_ValidateEmbedding_PingFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	err := NewConfigValidator().ValidateEmbedding(&domain.EmbeddingSettings{
		Provider: domain.AIProviderOllama,
		BaseURL:  srv.URL,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestConfigValidator_ValidateEmbedding_TFIDF(t *testing.T) {
	err := NewConfigValidator().ValidateEmbedding(&domain.EmbeddingSettings{
		Provider: domain.AIProviderTFIDF,
	})
	assert.NoError(t, err)
}

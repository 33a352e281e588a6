package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type embeddingItem struct {
	Object    string    `json:"object"`
	Index     int       `json:"index"`
	Embedding []float64 `json:"embedding"`
}

func writeEmbeddings(t *testing.T, w http.ResponseWriter, items []embeddingItem) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	require.NoError(t, json.NewEncoder(w).Encode(map[string]any{
		"object": "list",
		"data":   items,
		"model":  "text-embedding-3-small",
		"usage":  map[string]int{"prompt_tokens": 1, "total_tokens": 1},
	}))
}

func newTestService(t *testing.T, handler http.HandlerFunc, cfg Config) *EmbeddingService {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg.BaseURL = srv.URL
	cfg.APIKey = "sk-test"
	cfg.MaxRetries = -1
	s, err := NewEmbeddingService(cfg)
	require.NoError(t, err)
	return s
}

func TestNewEmbeddingService_RequiresKey(t *testing.T) {
	_, err := NewEmbeddingService(Config{})
	assert.ErrorIs(t, err, ErrMissingAPIKey)
}

func TestNewEmbeddingService_Defaults(t *testing.T) {
	s, err := NewEmbeddingService(Config{APIKey: "sk-test"})
	require.NoError(t, err)
	assert.Equal(t, DefaultModel, s.ModelName())
	assert.Equal(t, 1536, s.Dimensions())
	assert.Zero(t, s.requested)
}

func TestNewEmbeddingService_DimensionsOnlyForV3Models(t *testing.T) {
	s, err := NewEmbeddingService(Config{APIKey: "k", Model: "text-embedding-3-large", Dimensions: 256})
	require.NoError(t, err)
	assert.Equal(t, 256, s.requested)
	assert.Equal(t, 256, s.Dimensions())

	s, err = NewEmbeddingService(Config{APIKey: "k", Model: "text-embedding-ada-002", Dimensions: 256})
	require.NoError(t, err)
	assert.Zero(t, s.requested)
}

func TestEmbedBatch_OrdersByIndex(t *testing.T) {
	s := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/embeddings", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, []any{"a", "b", "c"}, body["input"])
		assert.Equal(t, "text-embedding-3-small", body["model"])
		_, hasDims := body["dimensions"]
		assert.False(t, hasDims)

		writeEmbeddings(t, w, []embeddingItem{
			{Object: "embedding", Index: 2, Embedding: []float64{3}},
			{Object: "embedding", Index: 0, Embedding: []float64{1}},
			{Object: "embedding", Index: 1, Embedding: []float64{2}},
		})
	}, Config{})

	vectors, err := s.EmbedBatch(context.Background(), []string{"a", "b", "c"})
	require.NoError(t, err)
	assert.Equal(t, [][]float32{{1}, {2}, {3}}, vectors)
}

func TestEmbedBatch_SendsDimensions(t *testing.T) {
	s := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.EqualValues(t, 2, body["dimensions"])
		writeEmbeddings(t, w, []embeddingItem{{Object: "embedding", Index: 0, Embedding: []float64{1, 0}}})
	}, Config{Dimensions: 2})

	vec, err := s.Embed(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 0}, vec)
}

func TestEmbedBatch_ShortResponse(t *testing.T) {
	s := newTestService(t, func(w http.ResponseWriter, _ *http.Request) {
		writeEmbeddings(t, w, []embeddingItem{{Object: "embedding", Index: 0, Embedding: []float64{1}}})
	}, Config{})

	vectors, err := s.EmbedBatch(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	assert.Len(t, vectors, 1)
}

func TestEmbedBatch_IndexOutOfRange(t *testing.T) {
	s := newTestService(t, func(w http.ResponseWriter, _ *http.Request) {
		writeEmbeddings(t, w, []embeddingItem{{Object: "embedding", Index: 5, Embedding: []float64{1}}})
	}, Config{})

	_, err := s.EmbedBatch(context.Background(), []string{"a"})
	assert.ErrorIs(t, err, ErrBadIndex)
}

func TestEmbedBatch_APIError(t *testing.T) {
	s := newTestService(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"bad key","type":"invalid_request_error"}}`))
	}, Config{})

	_, err := s.EmbedBatch(context.Background(), []string{"a"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestPing(t *testing.T) {
	s := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"object":"list","data":[]}`))
	}, Config{})

	assert.NoError(t, s.Ping(context.Background()))
}

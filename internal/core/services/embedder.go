package services

import (
	"context"
	"encoding/hex"
	"fmt"
	"math"
	"time"

	"github.com/minio/highwayhash"
	"golang.org/x/time/rate"
	"gonum.org/v1/gonum/floats"

	"github.com/custodia-labs/galaxy-cli/internal/core/domain"
	"github.com/custodia-labs/galaxy-cli/internal/core/ports/driven"
	"github.com/custodia-labs/galaxy-cli/internal/logger"
)

// Embedder turns ordered texts into unit-norm vectors using an EmbeddingService.
// Texts are sent in batches without reordering, and every batch must return
// exactly one vector per text.
type Embedder struct {
	service   driven.EmbeddingService
	cache     driven.EmbeddingCache
	limiter   *rate.Limiter
	preflight time.Duration
}

// EmbedderOption configures an Embedder.
type EmbedderOption func(*Embedder)

// WithEmbeddingCache reuses vectors stored by earlier runs.
// A nil cache disables caching.
func WithEmbeddingCache(cache driven.EmbeddingCache) EmbedderOption {
	return func(e *Embedder) {
		e.cache = cache
	}
}

// WithRateLimit allows at most perSecond embedding calls per second.
// Zero or negative disables limiting.
func WithRateLimit(perSecond float64) EmbedderOption {
	return func(e *Embedder) {
		if perSecond > 0 {
			e.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
		}
	}
}

// WithPreflight pings the service before the first uncached batch, giving
// up after timeout. A run served entirely from cache never pings.
func WithPreflight(timeout time.Duration) EmbedderOption {
	return func(e *Embedder) {
		e.preflight = timeout
	}
}

// NewEmbedder creates an Embedder around service.
func NewEmbedder(service driven.EmbeddingService, opts ...EmbedderOption) *Embedder {
	e := &Embedder{service: service}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ModelName returns the underlying model name.
func (e *Embedder) ModelName() string {
	return e.service.ModelName()
}

// cacheKeySeed keys the cache hash. Changing it invalidates every cache.
var cacheKeySeed = []byte("galaxy-embedding-cache-key-00001")

// EmbeddingCacheKey returns the cache key for text embedded by model.
func EmbeddingCacheKey(model, text string) string {
	sum := highwayhash.Sum([]byte(model+"\x00"+text), cacheKeySeed)
	return hex.EncodeToString(sum[:])
}

// Embed returns one L2-normalised vector per text, in input order.
// progress, when non-nil, is called after cache lookup and after every batch
// with the number of texts embedded so far.
func (e *Embedder) Embed(
	ctx context.Context,
	texts []string,
	batchSize int,
	progress func(done, total int),
) ([][]float64, error) {
	if batchSize <= 0 {
		return nil, fmt.Errorf("%w: batch size must be positive, got %d", domain.ErrInvalidInput, batchSize)
	}
	if len(texts) == 0 {
		return [][]float64{}, nil
	}
	for i, text := range texts {
		if text == "" {
			return nil, fmt.Errorf("%w: text %d is empty", domain.ErrInvalidInput, i)
		}
	}

	if preparer, ok := e.service.(driven.CorpusPreparer); ok {
		if err := preparer.Prepare(ctx, texts); err != nil {
			return nil, fmt.Errorf("%w: prepare corpus: %w", domain.ErrEmbeddingFailed, err)
		}
	}

	raw := make([][]float32, len(texts))
	keys := make([]string, len(texts))
	model := e.service.ModelName()
	for i, text := range texts {
		keys[i] = EmbeddingCacheKey(model, text)
	}

	e.loadCached(ctx, keys, raw)

	var pending []int
	for i := range texts {
		if raw[i] == nil {
			pending = append(pending, i)
		}
	}

	done := len(texts) - len(pending)
	if done > 0 {
		logger.Debug("Embedding cache: %d hits, %d misses", done, len(pending))
	}
	report(progress, done, len(texts))

	if len(pending) > 0 {
		if err := e.ping(ctx); err != nil {
			return nil, err
		}
	}

	for start := 0; start < len(pending); start += batchSize {
		end := min(start+batchSize, len(pending))
		idx := pending[start:end]

		batch := make([]string, len(idx))
		for j, i := range idx {
			batch[j] = texts[i]
		}

		vectors, err := e.embedBatch(ctx, batch)
		if err != nil {
			return nil, err
		}

		fresh := make(map[string][]float32, len(idx))
		for j, i := range idx {
			raw[i] = vectors[j]
			fresh[keys[i]] = vectors[j]
		}
		e.saveCached(ctx, model, fresh)

		done += len(idx)
		logger.Debug("Embedded batch %d-%d of %d", start+1, end, len(pending))
		report(progress, done, len(texts))
	}

	return normaliseAll(raw)
}

func (e *Embedder) ping(ctx context.Context) error {
	if e.preflight <= 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, e.preflight)
	defer cancel()
	if err := e.service.Ping(ctx); err != nil {
		return fmt.Errorf("%w: %s unreachable: %w", domain.ErrEmbeddingUnavailable, e.service.ModelName(), err)
	}
	return nil
}

func (e *Embedder) embedBatch(ctx context.Context, batch []string) ([][]float32, error) {
	if e.limiter != nil {
		if err := e.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	vectors, err := e.service.EmbedBatch(ctx, batch)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrEmbeddingFailed, err)
	}
	if len(vectors) != len(batch) {
		return nil, fmt.Errorf("%w: sent %d texts, got %d vectors",
			domain.ErrEmbeddingCountMismatch, len(batch), len(vectors))
	}
	return vectors, nil
}

// loadCached fills raw from the cache. Cache failures only disable the cache
// for this lookup.
func (e *Embedder) loadCached(ctx context.Context, keys []string, raw [][]float32) {
	if e.cache == nil {
		return
	}
	hits, err := e.cache.GetEmbeddings(ctx, keys)
	if err != nil {
		logger.Warn("Embedding cache lookup failed: %v", err)
		return
	}
	for i, key := range keys {
		if v, ok := hits[key]; ok && len(v) > 0 {
			raw[i] = v
		}
	}
}

func (e *Embedder) saveCached(ctx context.Context, model string, entries map[string][]float32) {
	if e.cache == nil || len(entries) == 0 {
		return
	}
	if err := e.cache.SaveEmbeddings(ctx, model, entries); err != nil {
		logger.Warn("Embedding cache write failed: %v", err)
	}
}

func report(progress func(done, total int), done, total int) {
	if progress != nil {
		progress(done, total)
	}
}

// normaliseAll converts to float64 and scales every vector to unit L2 norm.
// All vectors must share one dimension and hold only finite values.
// A zero vector cannot be normalised and is passed through unchanged.
func normaliseAll(raw [][]float32) ([][]float64, error) {
	out := make([][]float64, len(raw))
	dims := len(raw[0])
	if dims == 0 {
		return nil, fmt.Errorf("%w: empty embedding vector", domain.ErrInvalidInput)
	}

	for i, r := range raw {
		if len(r) != dims {
			return nil, fmt.Errorf("%w: vector %d has %d dimensions, expected %d",
				domain.ErrInvalidInput, i, len(r), dims)
		}
		v := make([]float64, dims)
		for j, x := range r {
			f := float64(x)
			if math.IsNaN(f) || math.IsInf(f, 0) {
				return nil, fmt.Errorf("%w: vector %d", domain.ErrNonFiniteValue, i)
			}
			v[j] = f
		}

		norm := floats.Norm(v, 2)
		if norm == 0 {
			logger.Warn("Embedding %d is a zero vector; leaving it unnormalised", i)
		} else {
			floats.Scale(1/norm, v)
		}
		out[i] = v
	}
	return out, nil
}

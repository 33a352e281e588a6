// Package tfidf provides an offline embedding service that fits a TF-IDF
// model on the corpus being embedded.
package tfidf

import (
	"context"
	"errors"
	"math"
	"regexp"
	"sort"
	"strings"
	"sync"

	"gonum.org/v1/gonum/floats"

	"github.com/custodia-labs/galaxy-cli/internal/core/ports/driven"
)

// Ensure EmbeddingService implements the interfaces.
var (
	_ driven.EmbeddingService = (*EmbeddingService)(nil)
	_ driven.CorpusPreparer   = (*EmbeddingService)(nil)
)

// ModelName is the name reported for this model.
const ModelName = "tfidf"

var (
	// ErrNotPrepared is returned when embedding before Prepare.
	ErrNotPrepared = errors.New("tfidf: model not prepared")
	// ErrEmptyVocabulary is returned when the corpus has no usable tokens.
	ErrEmptyVocabulary = errors.New("tfidf: no tokens found in corpus")
)

var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}]+(?:['’][\p{L}\p{N}]+)*`)

// EmbeddingService embeds texts as smoothed TF-IDF vectors over the
// vocabulary of the prepared corpus.
type EmbeddingService struct {
	maxFeatures int
	stopwords   map[string]struct{}

	mu         sync.RWMutex
	vocabulary map[string]int
	idf        []float64
}

// Option configures an EmbeddingService.
type Option func(*EmbeddingService)

// WithMaxFeatures keeps only the n terms with the highest document
// frequency. Zero keeps every term.
func WithMaxFeatures(n int) Option {
	return func(s *EmbeddingService) {
		if n > 0 {
			s.maxFeatures = n
		}
	}
}

// NewEmbeddingService creates an unprepared TF-IDF model.
func NewEmbeddingService(opts ...Option) *EmbeddingService {
	s := &EmbeddingService{stopwords: defaultStopwords()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Prepare builds the vocabulary and IDF weights from texts.
func (s *EmbeddingService) Prepare(ctx context.Context, texts []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	df := make(map[string]int)
	for _, text := range texts {
		seen := make(map[string]struct{})
		for _, tok := range s.tokenize(text) {
			if _, ok := seen[tok]; ok {
				continue
			}
			seen[tok] = struct{}{}
			df[tok]++
		}
	}
	if len(df) == 0 {
		return ErrEmptyVocabulary
	}

	terms := make([]string, 0, len(df))
	for term := range df {
		terms = append(terms, term)
	}
	// Most frequent first, then alphabetical, so truncation is stable.
	sort.Slice(terms, func(i, j int) bool {
		if df[terms[i]] != df[terms[j]] {
			return df[terms[i]] > df[terms[j]]
		}
		return terms[i] < terms[j]
	})
	if s.maxFeatures > 0 && len(terms) > s.maxFeatures {
		terms = terms[:s.maxFeatures]
	}
	sort.Strings(terms)

	n := float64(len(texts))
	vocabulary := make(map[string]int, len(terms))
	idf := make([]float64, len(terms))
	for i, term := range terms {
		vocabulary[term] = i
		idf[i] = math.Log((1+n)/(1+float64(df[term]))) + 1
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.vocabulary = vocabulary
	s.idf = idf
	return nil
}

// Embed returns the unit-norm TF-IDF vector of text. Texts with no known
// terms map to the zero vector.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.vocabulary == nil {
		return nil, ErrNotPrepared
	}

	vec := make([]float64, len(s.idf))
	tf := make(map[int]int)
	total := 0
	for _, tok := range s.tokenize(text) {
		if idx, ok := s.vocabulary[tok]; ok {
			tf[idx]++
			total++
		}
	}
	for idx, count := range tf {
		vec[idx] = float64(count) / float64(total) * s.idf[idx]
	}
	if norm := floats.Norm(vec, 2); norm > 0 {
		floats.Scale(1/norm, vec)
	}

	out := make([]float32, len(vec))
	for i, v := range vec {
		out[i] = float32(v)
	}
	return out, nil
}

// EmbedBatch embeds each text in order.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		vec, err := s.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		out[i] = vec
	}
	return out, nil
}

// Dimensions returns the vocabulary size, or 0 before Prepare.
func (s *EmbeddingService) Dimensions() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.idf)
}

// ModelName returns "tfidf".
func (s *EmbeddingService) ModelName() string {
	return ModelName
}

// Ping always succeeds; the model runs in process.
func (s *EmbeddingService) Ping(context.Context) error {
	return nil
}

// Close releases resources.
func (s *EmbeddingService) Close() error {
	return nil
}

func (s *EmbeddingService) tokenize(text string) []string {
	raw := tokenPattern.FindAllString(strings.ToLower(text), -1)
	out := raw[:0]
	for _, t := range raw {
		if _, isStop := s.stopwords[t]; isStop {
			continue
		}
		out = append(out, t)
	}
	return out
}

func defaultStopwords() map[string]struct{} {
	words := []string{
		"a", "an", "the", "and", "or", "but", "if", "then", "else", "for", "to", "of", "in",
		"on", "at", "by", "with", "as", "is", "are", "was", "were", "be", "been", "being", "it",
		"its", "this", "that", "these", "those", "from", "up", "down", "over", "under", "again",
		"further", "than", "so", "such", "into", "about", "between", "through", "during",
		"before", "after", "above", "below", "out", "off", "own", "same", "too", "very", "can",
		"will", "just", "don", "should", "now", "i", "you", "we", "they", "he", "she", "my",
		"our", "your", "not", "no", "do", "does", "did", "have", "has", "had",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}

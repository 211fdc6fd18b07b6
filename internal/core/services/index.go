package services

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-rag/internal/logger"
)

// Ensure IndexService implements the interface.
var _ driving.IndexService = (*IndexService)(nil)

// IndexService embeds fragments and stores them in a vector store.
//
// Writers are serialised and readers share the store. Embedding calls run
// outside the lock, so a slow embedding service never blocks readers.
type IndexService struct {
	mu       sync.RWMutex
	store    driven.VectorStore
	embedder driven.EmbeddingService
}

// NewIndexService creates a new index service.
func NewIndexService(store driven.VectorStore, embedder driven.EmbeddingService) *IndexService {
	return &IndexService{
		store:    store,
		embedder: embedder,
	}
}

// Insert embeds every fragment in one batch, then stores them atomically.
func (s *IndexService) Insert(ctx context.Context, fragments []domain.Fragment) error {
	if len(fragments) == 0 {
		return nil
	}

	entries, err := s.embed(ctx, fragments)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Add(ctx, entries); err != nil {
		return fmt.Errorf("insert fragments: %w", err)
	}
	logger.Debug("Stored %d entries", len(entries))
	return nil
}

// Replace embeds fragments, then swaps them for every stored fragment of
// sourceID in one step. Nothing changes if embedding fails.
func (s *IndexService) Replace(ctx context.Context, sourceID string, fragments []domain.Fragment) error {
	for _, f := range fragments {
		if f.SourceID != sourceID {
			return fmt.Errorf("%w: fragment %d belongs to %s, not %s",
				domain.ErrInvalidInput, f.Index, f.SourceID, sourceID)
		}
	}

	var entries []domain.IndexEntry
	if len(fragments) > 0 {
		var err error
		if entries, err = s.embed(ctx, fragments); err != nil {
			return err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.ReplaceSource(ctx, sourceID, entries); err != nil {
		return fmt.Errorf("replace fragments of %s: %w", sourceID, err)
	}
	logger.Debug("Replaced %s with %d entries", sourceID, len(entries))
	return nil
}

// embed computes one vector per fragment with a single batch call and
// assigns fresh ids.
func (s *IndexService) embed(ctx context.Context, fragments []domain.Fragment) ([]domain.IndexEntry, error) {
	texts := make([]string, len(fragments))
	for i, f := range fragments {
		if strings.TrimSpace(f.Text) == "" {
			return nil, fmt.Errorf("%w: fragment %d of %s is blank", domain.ErrInvalidInput, f.Index, f.SourceID)
		}
		texts[i] = f.Text
	}

	logger.Debug("Embedding %d fragments", len(fragments))
	vectors, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrEmbeddingFailed, err)
	}
	if len(vectors) != len(fragments) {
		return nil, fmt.Errorf("%w: got %d embeddings for %d fragments",
			domain.ErrEmbeddingFailed, len(vectors), len(fragments))
	}

	entries := make([]domain.IndexEntry, len(fragments))
	for i, f := range fragments {
		if len(vectors[i]) == 0 {
			return nil, fmt.Errorf("%w: empty embedding for fragment %d", domain.ErrEmbeddingFailed, i)
		}
		f.ID = uuid.NewString()
		entries[i] = domain.IndexEntry{Fragment: f, Embedding: vectors[i]}
	}
	return entries, nil
}

// Query embeds text and returns the k nearest entries.
func (s *IndexService) Query(ctx context.Context, text string, k int) ([]domain.RetrievalResult, error) {
	if k <= 0 {
		return nil, fmt.Errorf("%w: k must be positive, got %d", domain.ErrInvalidInput, k)
	}
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: query text is empty", domain.ErrInvalidInput)
	}

	vector, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("%w: %w: %w", domain.ErrQueryFailed, domain.ErrEmbeddingFailed, err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	results, err := s.store.Search(ctx, vector, k)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrQueryFailed, err)
	}
	if results == nil {
		results = []domain.RetrievalResult{}
	}
	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}

// Clear removes every entry.
func (s *IndexService) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Clear(ctx); err != nil {
		return fmt.Errorf("clear index: %w", err)
	}
	logger.Info("Index cleared")
	return nil
}

// Count returns the number of entries, or 0 if the store cannot be read.
func (s *IndexService) Count(ctx context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count, err := s.store.Count(ctx)
	if err != nil {
		logger.Debug("Count failed: %v", err)
		return 0
	}
	return count
}

// Info describes the index.
func (s *IndexService) Info(ctx context.Context) domain.IndexInfo {
	info := domain.IndexInfo{
		Count:    s.Count(ctx),
		Backend:  s.store.Backend(),
		Location: s.store.Location(),
		Metric:   s.store.Metric(),
	}
	if s.embedder != nil {
		info.Dimensions = s.embedder.Dimensions()
	}
	return info
}

// Metric returns the distance metric of the underlying store.
func (s *IndexService) Metric() domain.DistanceMetric {
	return s.store.Metric()
}

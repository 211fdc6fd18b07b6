package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/storage/knn"
	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

// Ensure VectorStore implements the interface.
var _ driven.VectorStore = (*VectorStore)(nil)

// VectorStore keeps index entries in process memory.
// Search is an exact linear scan. Contents are lost on Close.
type VectorStore struct {
	mu      sync.RWMutex
	metric  domain.DistanceMetric
	entries []domain.IndexEntry
}

// NewVectorStore creates an empty in-memory vector store.
// An invalid metric falls back to cosine.
func NewVectorStore(metric domain.DistanceMetric) *VectorStore {
	if !metric.IsValid() {
		metric = domain.MetricCosine
	}
	return &VectorStore{metric: metric}
}

// Add stores all entries. Entries are validated before any is appended,
// so a rejected batch leaves the store unchanged.
func (s *VectorStore) Add(_ context.Context, entries []domain.IndexEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := checkDimensions(s.entries, entries); err != nil {
		return err
	}
	s.entries = appendCopies(s.entries, entries)
	return nil
}

// ReplaceSource swaps the entries of sourceID for entries.
func (s *VectorStore) ReplaceSource(_ context.Context, sourceID string, entries []domain.IndexEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := slices.DeleteFunc(slices.Clone(s.entries), func(e domain.IndexEntry) bool {
		return e.Fragment.SourceID == sourceID
	})
	if err := checkDimensions(kept, entries); err != nil {
		return err
	}
	s.entries = appendCopies(kept, entries)
	return nil
}

// Search returns up to k entries nearest to query.
func (s *VectorStore) Search(_ context.Context, query []float32, k int) ([]domain.RetrievalResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c := knn.NewCollector(k)
	for _, e := range s.entries {
		c.Offer(e.Fragment, s.metric.Distance(query, e.Embedding))
	}
	return c.Results(), nil
}

// Clear removes every entry.
func (s *VectorStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = nil
	return nil
}

// Count returns the number of stored entries.
func (s *VectorStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries), nil
}

// Metric returns the distance metric.
func (s *VectorStore) Metric() domain.DistanceMetric {
	return s.metric
}

// Backend returns "memory".
func (s *VectorStore) Backend() string {
	return domain.IndexBackendMemory.String()
}

// Location returns ":memory:".
func (s *VectorStore) Location() string {
	return ":memory:"
}

// Close drops all entries.
func (s *VectorStore) Close() error {
	return s.Clear(context.Background())
}

// checkDimensions rejects a batch whose vectors are empty, differ from each
// other, or differ from what is already stored.
func checkDimensions(stored, entries []domain.IndexEntry) error {
	if len(entries) == 0 {
		return nil
	}
	dims := len(entries[0].Embedding)
	if len(stored) > 0 {
		dims = len(stored[0].Embedding)
	}

	for i, e := range entries {
		if len(e.Embedding) == 0 {
			return fmt.Errorf("%w: entry %d has no embedding", domain.ErrInvalidInput, i)
		}
		if len(e.Embedding) != dims {
			return fmt.Errorf("%w: entry %d has %d dimensions, expected %d",
				domain.ErrInvalidInput, i, len(e.Embedding), dims)
		}
	}
	return nil
}

func appendCopies(dst, entries []domain.IndexEntry) []domain.IndexEntry {
	for _, e := range entries {
		dst = append(dst, domain.IndexEntry{
			Fragment:  e.Fragment,
			Embedding: slices.Clone(e.Embedding),
		})
	}
	return dst
}

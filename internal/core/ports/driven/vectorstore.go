package driven

import (
	"context"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// VectorStore persists index entries and answers nearest-neighbour queries.
// It is the storage engine behind the index service; embeddings arrive precomputed.
type VectorStore interface {
	// Add stores all entries atomically: either every entry is visible
	// afterwards or none is.
	Add(ctx context.Context, entries []domain.IndexEntry) error

	// ReplaceSource removes every entry of sourceID and stores entries in
	// their place, atomically. With no entries it only removes.
	ReplaceSource(ctx context.Context, sourceID string, entries []domain.IndexEntry) error

	// Search returns up to k entries nearest to the query vector, ordered by
	// ascending distance. An empty store returns an empty slice.
	Search(ctx context.Context, query []float32, k int) ([]domain.RetrievalResult, error)

	// Clear removes every entry. Clearing an empty store is not an error.
	Clear(ctx context.Context) error

	// Count returns the number of stored entries.
	Count(ctx context.Context) (int, error)

	// Metric returns the distance metric Search reports.
	Metric() domain.DistanceMetric

	// Backend names the storage engine.
	Backend() string

	// Location describes where durable state lives.
	Location() string

	// Close releases resources.
	Close() error
}

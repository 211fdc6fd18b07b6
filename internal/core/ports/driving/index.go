package driving

import (
	"context"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// IndexService stores fragment embeddings and answers nearest-neighbour queries.
// Writes (Insert, Replace, Clear) are serialised; reads (Query, Count) run concurrently.
type IndexService interface {
	// Insert embeds and stores fragments as one batch.
	// Returns domain.ErrEmbeddingFailed if any embedding fails; nothing is stored then.
	Insert(ctx context.Context, fragments []domain.Fragment) error

	// Replace swaps every stored fragment of sourceID for fragments, atomically.
	// It is how a changed document is re-indexed: its old text stops being retrievable.
	Replace(ctx context.Context, sourceID string, fragments []domain.Fragment) error

	// Query returns up to k results ordered by ascending distance.
	// An empty index returns an empty slice. Failures return domain.ErrQueryFailed.
	Query(ctx context.Context, text string, k int) ([]domain.RetrievalResult, error)

	// Clear irrecoverably removes all entries. Idempotent.
	Clear(ctx context.Context) error

	// Count returns the number of entries, 0 if the index is empty or unreadable.
	Count(ctx context.Context) int

	// Info describes the index.
	Info(ctx context.Context) domain.IndexInfo

	// Metric returns the distance metric Query reports.
	Metric() domain.DistanceMetric
}

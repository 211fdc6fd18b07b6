package driven

import (
	"context"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// DocumentSource offers files for ingestion.
type DocumentSource interface {
	// List returns every ingestible file currently in the source.
	List(ctx context.Context) ([]domain.SourceFile, error)

	// Watch streams changes until ctx is cancelled, then closes the channel.
	Watch(ctx context.Context) (<-chan domain.FileChange, error)

	// Root returns the path the source was created for.
	Root() string

	// Close releases resources.
	Close() error
}

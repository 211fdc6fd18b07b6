package driving

import (
	"context"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

// IngestService turns source files into indexed fragments.
type IngestService interface {
	// IngestSource extracts, chunks and inserts every file the source lists.
	// Per-file extraction problems become report warnings; index failures abort.
	IngestSource(ctx context.Context, source driven.DocumentSource) (*domain.IngestReport, error)

	// IngestFile processes a single file.
	// Returns the number of fragments inserted.
	IngestFile(ctx context.Context, file domain.SourceFile) (int, error)

	// Watch ingests created and updated files until ctx is cancelled.
	Watch(ctx context.Context, source driven.DocumentSource) error
}

package driven

import (
	"context"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// Extractor pulls plain text from a document file.
// Extraction is deterministic and contains no retrieval logic.
type Extractor interface {
	// Formats returns the formats this extractor handles.
	Formats() []domain.Format

	// Extract returns the file's text. Blank text is returned as-is;
	// callers decide whether it is usable.
	Extract(ctx context.Context, path string) (string, error)
}

// ExtractorRegistry selects an extractor by format.
type ExtractorRegistry interface {
	// Extract routes path to the extractor for format.
	// Unsupported formats return domain.ErrExtractionFailed wrapping domain.ErrUnsupportedFormat.
	Extract(ctx context.Context, path string, format domain.Format) (string, error)

	// Supports returns true if format has a registered extractor.
	Supports(format domain.Format) bool
}

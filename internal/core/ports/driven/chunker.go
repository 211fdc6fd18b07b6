package driven

import "github.com/custodia-labs/sercha-rag/internal/core/domain"

// Chunker splits extracted document text into overlapping fragments.
// Implementations are pure and safe for concurrent use.
type Chunker interface {
	// Chunk returns the fragments of text. Blank text yields an empty slice.
	// Every fragment carries a copy of metadata plus chunk_index.
	Chunk(sourceID, text string, metadata map[string]any) []domain.Fragment
}

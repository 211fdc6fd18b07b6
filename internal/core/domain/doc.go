// Package domain defines the core business entities for sercha-rag.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Fragment: A contiguous slice of an extracted document, the unit of retrieval
//   - IndexEntry: A fragment paired with its embedding
//   - RetrievalResult / ScoredFragment: Query hits with distance and similarity
//   - ConversationTurn: One caller-owned message of chat history
//   - ContextPayload: Fragments + history + question handed to generation
//   - Answer: A generated (or declined) answer with cited sources
//   - Config: The process-wide configuration value object
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain

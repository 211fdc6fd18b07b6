// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the retrieval pipeline to function:
//
//   - EmbeddingService: Turns text into fixed-dimension vectors
//   - VectorStore: Durable storage and nearest-neighbour search of index entries
//   - Chunker: Splits extracted text into overlapping fragments
//   - Extractor: Pulls plain text out of pdf, docx and txt files
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - LLMService: Answer generation. Without it, only retrieval is available.
//   - TokenCounter: Context token budget. Without it, fragments are not budgeted.
//   - PromptStore: Prompt templates. Without it, embedded defaults are used.
//   - DocumentSource: Lists and watches files for ingestion.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter, connector, or extractor package
package driven

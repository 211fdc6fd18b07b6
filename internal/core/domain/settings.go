package domain

const unknownDescription = "Unknown"

// AIProvider identifies an AI service provider for embeddings or LLM.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is Anthropic cloud API (LLM only).
	AIProviderAnthropic AIProvider = "anthropic"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic:
		return true
	default:
		return false
	}
}

// SupportsEmbeddings returns true if the provider offers an embedding API.
func (p AIProvider) SupportsEmbeddings() bool {
	return p == AIProviderOllama || p == AIProviderOpenAI
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderAnthropic
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	default:
		return unknownDescription
	}
}

// IndexBackend selects the vector store implementation.
type IndexBackend string

// Available index backends.
const (
	// IndexBackendSQLite persists to a local SQLite file (default).
	IndexBackendSQLite IndexBackend = "sqlite"

	// IndexBackendPostgres persists to Postgres with the pgvector extension.
	IndexBackendPostgres IndexBackend = "postgres"

	// IndexBackendMemory keeps entries in process memory only.
	IndexBackendMemory IndexBackend = "memory"
)

// IsValid returns true if the backend is recognised.
func (b IndexBackend) IsValid() bool {
	switch b {
	case IndexBackendSQLite, IndexBackendPostgres, IndexBackendMemory:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (b IndexBackend) String() string {
	return string(b)
}

// ChunkingSettings controls how extracted text is split.
type ChunkingSettings struct {
	// Size is the target fragment length in runes.
	Size int

	// Overlap is the number of runes shared by consecutive fragments.
	Overlap int
}

// RetrievalSettings holds retrieval defaults.
type RetrievalSettings struct {
	// TopK is the default number of index results requested.
	TopK int

	// Threshold is the default minimum similarity.
	Threshold float64
}

// ContextSettings controls context assembly.
type ContextSettings struct {
	// HistoryTurns is how many trailing conversation turns are included.
	HistoryTurns int

	// MaxTokens caps the tokens spent on fragments. 0 disables the budget.
	MaxTokens int

	// Encoding is the tokenizer encoding used for the budget.
	Encoding string
}

// ExtractionSettings controls document extraction.
type ExtractionSettings struct {
	// Formats lists the enabled formats.
	Formats []Format

	// MaxFileSizeMB is the largest file that will be extracted.
	MaxFileSizeMB int
}

// Allows returns true if the format is enabled.
func (e ExtractionSettings) Allows(f Format) bool {
	for _, allowed := range e.Formats {
		if allowed == f {
			return true
		}
	}
	return false
}

// MaxFileSizeBytes returns the size limit in bytes.
func (e ExtractionSettings) MaxFileSizeBytes() int64 {
	return int64(e.MaxFileSizeMB) * 1024 * 1024
}

// IndexSettings selects and configures the vector store.
type IndexSettings struct {
	// Backend is the storage engine.
	Backend IndexBackend

	// Path is the directory holding durable state (sqlite).
	Path string

	// PostgresDSN is the connection string (postgres).
	PostgresDSN string

	// Dimensions is the embedding column width (postgres).
	// 0 means use the embedding service's reported dimensions.
	Dimensions int
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint.
	BaseURL string

	// APIKey is the API key (for OpenAI).
	APIKey string
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.SupportsEmbeddings() {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// LLMSettings holds LLM provider configuration.
type LLMSettings struct {
	// Provider is the LLM service provider.
	Provider AIProvider

	// Model is the LLM model name.
	Model string

	// BaseURL is the API endpoint.
	BaseURL string

	// APIKey is the API key (for OpenAI/Anthropic).
	APIKey string

	// Temperature is the sampling temperature.
	Temperature float64

	// MaxTokens caps generated tokens.
	MaxTokens int
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// ServerSettings configures the HTTP API.
type ServerSettings struct {
	Addr string
}

// Config is the process-wide configuration, built once at startup and
// passed to every component at construction time.
type Config struct {
	Chunking   ChunkingSettings
	Retrieval  RetrievalSettings
	Context    ContextSettings
	Extraction ExtractionSettings
	Index      IndexSettings
	Embedding  EmbeddingSettings
	LLM        LLMSettings
	Server     ServerSettings
}

// Default configuration values.
const (
	DefaultChunkSize     = 1000
	DefaultChunkOverlap  = 200
	DefaultTopK          = 5
	DefaultThreshold     = 0.7
	DefaultHistoryTurns  = 5
	DefaultMaxFileSizeMB = 50
	DefaultTemperature   = 0.7
	DefaultMaxTokens     = 1000
	DefaultEncoding      = "cl100k_base"
	DefaultServerAddr    = "127.0.0.1:8421"
)

// DefaultConfig returns the configuration used when nothing is set.
// Index.Path is left empty; the composition root resolves it under the home dir.
func DefaultConfig() Config {
	return Config{
		Chunking: ChunkingSettings{
			Size:    DefaultChunkSize,
			Overlap: DefaultChunkOverlap,
		},
		Retrieval: RetrievalSettings{
			TopK:      DefaultTopK,
			Threshold: DefaultThreshold,
		},
		Context: ContextSettings{
			HistoryTurns: DefaultHistoryTurns,
			Encoding:     DefaultEncoding,
		},
		Extraction: ExtractionSettings{
			Formats:       AllFormats(),
			MaxFileSizeMB: DefaultMaxFileSizeMB,
		},
		Index: IndexSettings{
			Backend: IndexBackendSQLite,
		},
		Embedding: EmbeddingSettings{
			Provider: AIProviderOpenAI,
		},
		LLM: LLMSettings{
			Provider:    AIProviderOpenAI,
			Temperature: DefaultTemperature,
			MaxTokens:   DefaultMaxTokens,
		},
		Server: ServerSettings{
			Addr: DefaultServerAddr,
		},
	}
}

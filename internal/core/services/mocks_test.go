package services

import (
	"context"
	"errors"
	"sync"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

// --- Mock implementations ---

var errBoom = errors.New("boom")

// mockEmbeddingService implements driven.EmbeddingService for testing.
// Known texts map to fixed vectors; anything else embeds to fallback.
type mockEmbeddingService struct {
	mu         sync.Mutex
	vectors    map[string][]float32
	fallback   []float32
	embedErr   error
	batchErr   error
	shortBatch bool
	batchCalls int
}

func newMockEmbedder(vectors map[string][]float32) *mockEmbeddingService {
	return &mockEmbeddingService{vectors: vectors, fallback: []float32{0, 0, 1}}
}

func (m *mockEmbeddingService) vector(text string) []float32 {
	if v, ok := m.vectors[text]; ok {
		return v
	}
	return m.fallback
}

func (m *mockEmbeddingService) Embed(_ context.Context, text string) ([]float32, error) {
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	return m.vector(text), nil
}

func (m *mockEmbeddingService) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	m.mu.Lock()
	m.batchCalls++
	m.mu.Unlock()

	if m.batchErr != nil {
		return nil, m.batchErr
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = m.vector(t)
	}
	if m.shortBatch && len(out) > 0 {
		return out[:len(out)-1], nil
	}
	return out, nil
}

func (m *mockEmbeddingService) Dimensions() int            { return len(m.fallback) }
func (m *mockEmbeddingService) ModelName() string          { return "mock-embed" }
func (m *mockEmbeddingService) Ping(_ context.Context) error { return nil }
func (m *mockEmbeddingService) Close() error               { return nil }

// mockVectorStore implements driven.VectorStore with injectable failures.
type mockVectorStore struct {
	addErr    error
	searchErr error
	clearErr  error
	countErr  error
	results   []domain.RetrievalResult
	added     []domain.IndexEntry
	replaced  []string
}

func (m *mockVectorStore) Add(_ context.Context, entries []domain.IndexEntry) error {
	if m.addErr != nil {
		return m.addErr
	}
	m.added = append(m.added, entries...)
	return nil
}

func (m *mockVectorStore) ReplaceSource(_ context.Context, sourceID string, entries []domain.IndexEntry) error {
	if m.addErr != nil {
		return m.addErr
	}
	m.replaced = append(m.replaced, sourceID)
	m.added = append(m.added, entries...)
	return nil
}

func (m *mockVectorStore) Search(_ context.Context, _ []float32, _ int) ([]domain.RetrievalResult, error) {
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	return m.results, nil
}

func (m *mockVectorStore) Clear(_ context.Context) error { return m.clearErr }

func (m *mockVectorStore) Count(_ context.Context) (int, error) {
	if m.countErr != nil {
		return 0, m.countErr
	}
	return len(m.added), nil
}

func (m *mockVectorStore) Metric() domain.DistanceMetric { return domain.MetricCosine }
func (m *mockVectorStore) Backend() string               { return "mock" }
func (m *mockVectorStore) Location() string              { return "nowhere" }
func (m *mockVectorStore) Close() error                  { return nil }

// mockIndexService implements driving.IndexService returning canned results.
type mockIndexService struct {
	results   []domain.RetrievalResult
	queryErr  error
	insertErr error
	metric    domain.DistanceMetric
	lastK     int
	inserted  [][]domain.Fragment
	replaced  map[string][]domain.Fragment
}

func (m *mockIndexService) Insert(_ context.Context, fragments []domain.Fragment) error {
	if m.insertErr != nil {
		return m.insertErr
	}
	m.inserted = append(m.inserted, fragments)
	return nil
}

func (m *mockIndexService) Replace(_ context.Context, sourceID string, fragments []domain.Fragment) error {
	if m.insertErr != nil {
		return m.insertErr
	}
	if m.replaced == nil {
		m.replaced = make(map[string][]domain.Fragment)
	}
	m.replaced[sourceID] = fragments
	return nil
}

func (m *mockIndexService) Query(_ context.Context, _ string, k int) ([]domain.RetrievalResult, error) {
	m.lastK = k
	if m.queryErr != nil {
		return nil, m.queryErr
	}
	if k < len(m.results) {
		return m.results[:k], nil
	}
	return m.results, nil
}

func (m *mockIndexService) Clear(_ context.Context) error { return nil }
func (m *mockIndexService) Count(_ context.Context) int   { return len(m.results) }

func (m *mockIndexService) Info(_ context.Context) domain.IndexInfo {
	return domain.IndexInfo{Count: len(m.results), Metric: m.Metric()}
}

func (m *mockIndexService) Metric() domain.DistanceMetric {
	if m.metric == "" {
		return domain.MetricCosine
	}
	return m.metric
}

// mockLLMService implements driven.LLMService for testing.
type mockLLMService struct {
	response string
	err      error
	calls    int
	messages []driven.ChatMessage
	opts     driven.GenerateOptions
}

func (m *mockLLMService) Generate(_ context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	return m.Chat(context.Background(), []driven.ChatMessage{{Role: "user", Content: prompt}}, opts)
}

func (m *mockLLMService) Chat(_ context.Context, messages []driven.ChatMessage, opts driven.GenerateOptions) (string, error) {
	m.calls++
	m.messages = messages
	m.opts = opts
	if m.err != nil {
		return "", m.err
	}
	return m.response, nil
}

func (m *mockLLMService) ModelName() string            { return "mock-llm" }
func (m *mockLLMService) Ping(_ context.Context) error { return nil }
func (m *mockLLMService) Close() error                 { return nil }

// mockPromptStore implements driven.PromptStore with fixed templates.
type mockPromptStore struct {
	err error
}

func (m *mockPromptStore) Load(name string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	switch name {
	case driven.PromptAnswerSystem:
		return "SYSTEM", nil
	case driven.PromptAnswerContext:
		return "CONTEXT:\n%s\nQUESTION: %s", nil
	case driven.PromptDirectSystem:
		return "DIRECT", nil
	}
	return "", domain.ErrNotFound
}

func (m *mockPromptStore) Reload() {}

// mockExtractorRegistry implements driven.ExtractorRegistry over in-memory file contents.
type mockExtractorRegistry struct {
	texts map[string]string
	errs  map[string]error
}

func (m *mockExtractorRegistry) Extract(_ context.Context, path string, _ domain.Format) (string, error) {
	if err, ok := m.errs[path]; ok {
		return "", err
	}
	return m.texts[path], nil
}

func (m *mockExtractorRegistry) Supports(format domain.Format) bool {
	return format.IsValid()
}

// mockTokenCounter counts whitespace-separated words.
type mockTokenCounter struct{}

func (mockTokenCounter) Count(text string) int {
	n := 0
	inWord := false
	for _, r := range text {
		if r == ' ' || r == '\n' {
			inWord = false
			continue
		}
		if !inWord {
			n++
			inWord = true
		}
	}
	return n
}

// mockDocumentSource implements driven.DocumentSource.
type mockDocumentSource struct {
	files   []domain.SourceFile
	listErr error
	changes chan domain.FileChange
}

func (m *mockDocumentSource) List(_ context.Context) ([]domain.SourceFile, error) {
	return m.files, m.listErr
}

func (m *mockDocumentSource) Watch(_ context.Context) (<-chan domain.FileChange, error) {
	if m.changes == nil {
		return nil, errBoom
	}
	return m.changes, nil
}

func (m *mockDocumentSource) Root() string { return "/docs" }
func (m *mockDocumentSource) Close() error { return nil }

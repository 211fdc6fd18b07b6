package http

import (
	"context"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

type mockRetriever struct {
	results  []domain.ScoredFragment
	err      error
	lastOpts domain.RetrieveOptions
}

func (m *mockRetriever) Retrieve(
	ctx context.Context, question string, opts domain.RetrieveOptions,
) ([]domain.Fragment, error) {
	scored, err := m.RetrieveScored(ctx, question, opts)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Fragment, len(scored))
	for i, sf := range scored {
		out[i] = sf.Fragment
	}
	return out, nil
}

func (m *mockRetriever) RetrieveScored(
	_ context.Context, _ string, opts domain.RetrieveOptions,
) ([]domain.ScoredFragment, error) {
	m.lastOpts = opts
	if m.err != nil {
		return nil, m.err
	}
	return m.results, nil
}

type mockAnswerService struct {
	answer      *domain.Answer
	payload     *domain.ContextPayload
	err         error
	lastHistory []domain.ConversationTurn
	lastOpts    domain.AnswerOptions
}

func (m *mockAnswerService) Answer(
	_ context.Context, question string, history []domain.ConversationTurn, opts domain.AnswerOptions,
) (*domain.Answer, error) {
	m.lastHistory = history
	m.lastOpts = opts
	if m.err != nil {
		return nil, m.err
	}
	if m.answer != nil {
		return m.answer, nil
	}
	return &domain.Answer{Question: question, Text: "ok", Confidence: domain.ConfidenceHigh, Grounded: true}, nil
}

func (m *mockAnswerService) Context(
	_ context.Context, question string, history []domain.ConversationTurn, _ domain.RetrieveOptions,
) (*domain.ContextPayload, error) {
	m.lastHistory = history
	if m.err != nil {
		return nil, m.err
	}
	if m.payload != nil {
		return m.payload, nil
	}
	return &domain.ContextPayload{Question: question}, nil
}

type mockIndexService struct {
	count    int
	clearErr error
	cleared  int
}

func (m *mockIndexService) Insert(context.Context, []domain.Fragment) error { return nil }
func (m *mockIndexService) Replace(context.Context, string, []domain.Fragment) error { return nil }
func (m *mockIndexService) Query(context.Context, string, int) ([]domain.RetrievalResult, error) {
	return []domain.RetrievalResult{}, nil
}
func (m *mockIndexService) Clear(context.Context) error {
	m.cleared++
	if m.clearErr != nil {
		return m.clearErr
	}
	m.count = 0
	return nil
}
func (m *mockIndexService) Count(context.Context) int { return m.count }
func (m *mockIndexService) Info(context.Context) domain.IndexInfo {
	return domain.IndexInfo{
		Count: m.count, Backend: "memory", Location: "memory", Metric: domain.MetricCosine, Dimensions: 3,
	}
}
func (m *mockIndexService) Metric() domain.DistanceMetric { return domain.MetricCosine }

type mockIngestService struct {
	report *domain.IngestReport
	err    error
	roots  []string
}

func (m *mockIngestService) IngestSource(_ context.Context, src driven.DocumentSource) (*domain.IngestReport, error) {
	m.roots = append(m.roots, src.Root())
	return m.report, m.err
}

func (m *mockIngestService) IngestFile(context.Context, domain.SourceFile) (int, error) { return 0, nil }

func (m *mockIngestService) Watch(context.Context, driven.DocumentSource) error { return nil }

type stubSource struct {
	root   string
	closed bool
}

func (s *stubSource) List(context.Context) ([]domain.SourceFile, error) { return nil, nil }
func (s *stubSource) Watch(context.Context) (<-chan domain.FileChange, error) {
	return nil, nil
}
func (s *stubSource) Root() string { return s.root }
func (s *stubSource) Close() error { s.closed = true; return nil }

package mcp

import (
	"context"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// mockRetriever is a mock implementation of driving.Retriever.
type mockRetriever struct {
	scored   []domain.ScoredFragment
	err      error
	lastOpts domain.RetrieveOptions
}

func (m *mockRetriever) Retrieve(ctx context.Context, q string, opts domain.RetrieveOptions) ([]domain.Fragment, error) {
	scored, err := m.RetrieveScored(ctx, q, opts)
	if err != nil {
		return nil, err
	}
	fragments := make([]domain.Fragment, len(scored))
	for i, sf := range scored {
		fragments[i] = sf.Fragment
	}
	return fragments, nil
}

func (m *mockRetriever) RetrieveScored(
	_ context.Context,
	_ string,
	opts domain.RetrieveOptions,
) ([]domain.ScoredFragment, error) {
	m.lastOpts = opts
	return m.scored, m.err
}

// mockAnswerService is a mock implementation of driving.AnswerService.
type mockAnswerService struct {
	answer      *domain.Answer
	err         error
	lastHistory []domain.ConversationTurn
	lastOpts    domain.AnswerOptions
}

func (m *mockAnswerService) Answer(
	_ context.Context,
	_ string,
	history []domain.ConversationTurn,
	opts domain.AnswerOptions,
) (*domain.Answer, error) {
	m.lastHistory = history
	m.lastOpts = opts
	return m.answer, m.err
}

func (m *mockAnswerService) Context(
	_ context.Context,
	question string,
	_ []domain.ConversationTurn,
	_ domain.RetrieveOptions,
) (*domain.ContextPayload, error) {
	return &domain.ContextPayload{Question: question}, m.err
}

// mockIndexService is a mock implementation of driving.IndexService.
type mockIndexService struct {
	info domain.IndexInfo
}

func (m *mockIndexService) Insert(context.Context, []domain.Fragment) error { return nil }
func (m *mockIndexService) Replace(context.Context, string, []domain.Fragment) error { return nil }

func (m *mockIndexService) Query(context.Context, string, int) ([]domain.RetrievalResult, error) {
	return []domain.RetrievalResult{}, nil
}

func (m *mockIndexService) Clear(context.Context) error { return nil }

func (m *mockIndexService) Count(context.Context) int { return m.info.Count }

func (m *mockIndexService) Info(context.Context) domain.IndexInfo { return m.info }

func (m *mockIndexService) Metric() domain.DistanceMetric { return m.info.Metric }

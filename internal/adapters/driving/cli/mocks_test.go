package cli

import (
	"bytes"
	"context"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

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
	return m.results, m.err
}

type mockAnswerService struct {
	answerFunc  func(question string, history []domain.ConversationTurn) (*domain.Answer, error)
	payload     *domain.ContextPayload
	err         error
	questions   []string
	lastHistory []domain.ConversationTurn
	lastOpts    domain.AnswerOptions
}

func (m *mockAnswerService) Answer(
	_ context.Context, question string, history []domain.ConversationTurn, opts domain.AnswerOptions,
) (*domain.Answer, error) {
	m.questions = append(m.questions, question)
	m.lastHistory = history
	m.lastOpts = opts
	if m.answerFunc != nil {
		return m.answerFunc(question, history)
	}
	if m.err != nil {
		return nil, m.err
	}
	return &domain.Answer{
		Question:   question,
		Text:       "Thirty days.",
		Sources:    []string{"policy.pdf"},
		Confidence: domain.ConfidenceHigh,
		Grounded:   true,
	}, nil
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
	return &domain.ContextPayload{Question: question, History: history}, nil
}

type mockIndexService struct {
	count   int
	cleared int
	err     error
}

func (m *mockIndexService) Insert(context.Context, []domain.Fragment) error { return nil }
func (m *mockIndexService) Replace(context.Context, string, []domain.Fragment) error { return nil }
func (m *mockIndexService) Query(context.Context, string, int) ([]domain.RetrievalResult, error) {
	return []domain.RetrievalResult{}, nil
}
func (m *mockIndexService) Clear(context.Context) error {
	if m.err != nil {
		return m.err
	}
	m.cleared++
	m.count = 0
	return nil
}
func (m *mockIndexService) Count(context.Context) int { return m.count }
func (m *mockIndexService) Info(context.Context) domain.IndexInfo {
	return domain.IndexInfo{
		Count: m.count, Backend: "sqlite", Location: "/tmp/data", Metric: domain.MetricCosine, Dimensions: 768,
	}
}
func (m *mockIndexService) Metric() domain.DistanceMetric { return domain.MetricCosine }

type mockIngestService struct {
	report  *domain.IngestReport
	err     error
	roots   []string
	watched []string
}

func (m *mockIngestService) IngestSource(_ context.Context, src driven.DocumentSource) (*domain.IngestReport, error) {
	m.roots = append(m.roots, src.Root())
	if m.report == nil {
		return &domain.IngestReport{}, m.err
	}
	return m.report, m.err
}

func (m *mockIngestService) IngestFile(context.Context, domain.SourceFile) (int, error) { return 0, nil }

func (m *mockIngestService) Watch(_ context.Context, src driven.DocumentSource) error {
	m.watched = append(m.watched, src.Root())
	return nil
}

type mockSettingsService struct {
	values map[string]string
	setErr error
}

func (m *mockSettingsService) Load() (domain.Config, error) { return domain.DefaultConfig(), nil }

func (m *mockSettingsService) Set(key, value string) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.values[key] = value
	return nil
}

func (m *mockSettingsService) Get(key string) (string, error) {
	v, ok := m.values[key]
	if !ok {
		return "", domain.ErrInvalidInput
	}
	return v, nil
}

func (m *mockSettingsService) Keys() []string { return []string{"retrieval.top_k", "llm.api_key"} }
func (m *mockSettingsService) Path() string { return "/tmp/config.toml" }

type stubSource struct {
	root string
}

func (s *stubSource) List(context.Context) ([]domain.SourceFile, error) { return nil, nil }
func (s *stubSource) Watch(context.Context) (<-chan domain.FileChange, error) {
	return nil, nil
}
func (s *stubSource) Root() string { return s.root }
func (s *stubSource) Close() error { return nil }

type testServices struct {
	retriever *mockRetriever
	answer    *mockAnswerService
	index     *mockIndexService
	ingest    *mockIngestService
	settings  *mockSettingsService
}

// setupTestServices installs mocks and returns them with a cleanup function.
func setupTestServices() (*testServices, func()) {
	ts := &testServices{
		retriever: &mockRetriever{},
		answer:    &mockAnswerService{},
		index:     &mockIndexService{count: 12},
		ingest:    &mockIngestService{},
		settings: &mockSettingsService{values: map[string]string{
			"retrieval.top_k": "5",
			"llm.api_key":     "sk-secret-value-1234",
		}},
	}

	SetServices(&Services{
		Index:     ts.index,
		Ingest:    ts.ingest,
		Retriever: ts.retriever,
		Answer:    ts.answer,
		Config:    domain.DefaultConfig(),
	})
	SetSettingsService(ts.settings)
	prevSource := newSource
	newSource = func(path string) driven.DocumentSource { return &stubSource{root: path} }

	return ts, func() {
		SetLoader(nil)
		SetSettingsService(nil)
		newSource = prevSource
	}
}

// execute runs the root command with args and returns stdout and stderr.
// Flags are reset afterwards so tests do not leak values into each other.
func execute(args []string, stdin string) (string, string, error) {
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
		resetFlags(rootCmd)
	}()

	err := rootCmd.Execute()
	return out.String(), errOut.String(), err
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

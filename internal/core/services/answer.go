package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-rag/internal/logger"
)

// Ensure AnswerService implements the interface.
var _ driving.AnswerService = (*AnswerService)(nil)

// AnswerService runs retrieve, assemble and generate for a question.
type AnswerService struct {
	retriever driving.Retriever
	assembler driving.ContextAssembler
	llm       driven.LLMService
	prompts   driven.PromptStore
	genOpts   driven.GenerateOptions
}

// NewAnswerService creates a new answer service.
// The llm parameter is optional; without it only Context works.
func NewAnswerService(
	retriever driving.Retriever,
	assembler driving.ContextAssembler,
	llm driven.LLMService,
	prompts driven.PromptStore,
	genOpts driven.GenerateOptions,
) *AnswerService {
	return &AnswerService{
		retriever: retriever,
		assembler: assembler,
		llm:       llm,
		prompts:   prompts,
		genOpts:   genOpts,
	}
}

// Context retrieves fragments and assembles them with the history window.
func (s *AnswerService) Context(
	ctx context.Context,
	question string,
	history []domain.ConversationTurn,
	opts domain.RetrieveOptions,
) (*domain.ContextPayload, error) {
	fragments, err := s.retriever.Retrieve(ctx, question, opts)
	if err != nil {
		return nil, err
	}
	payload := s.assembler.Assemble(question, fragments, history)
	return &payload, nil
}

// Answer produces an answer grounded in retrieved fragments.
// When nothing relevant is found the model is not called.
func (s *AnswerService) Answer(
	ctx context.Context,
	question string,
	history []domain.ConversationTurn,
	opts domain.AnswerOptions,
) (*domain.Answer, error) {
	if strings.TrimSpace(question) == "" {
		return nil, fmt.Errorf("%w: question is empty", domain.ErrInvalidInput)
	}

	if opts.Direct {
		return s.direct(ctx, question, history)
	}

	scored, err := s.retriever.RetrieveScored(ctx, question, opts.Retrieve)
	if err != nil {
		return nil, err
	}

	if len(scored) == 0 {
		logger.Info("No relevant fragments for %q", question)
		return &domain.Answer{
			Question:   question,
			Text:       domain.NoRelevantInformation,
			Sources:    []string{},
			Confidence: domain.ConfidenceLow,
			Grounded:   false,
		}, nil
	}

	fragments := make([]domain.Fragment, len(scored))
	for i, sf := range scored {
		fragments[i] = sf.Fragment
	}
	payload := s.assembler.Assemble(question, fragments, history)

	messages, err := s.groundedMessages(payload)
	if err != nil {
		return nil, err
	}

	text, err := s.chat(ctx, messages)
	if err != nil {
		return nil, err
	}

	return &domain.Answer{
		Question:   question,
		Text:       text,
		Sources:    payload.Sources(),
		Fragments:  scored[:len(payload.Fragments)],
		Confidence: domain.ConfidenceHigh,
		Grounded:   true,
	}, nil
}

// direct asks the model without retrieval.
func (s *AnswerService) direct(
	ctx context.Context, question string, history []domain.ConversationTurn,
) (*domain.Answer, error) {
	system, err := s.prompts.Load(driven.PromptDirectSystem)
	if err != nil {
		return nil, fmt.Errorf("load prompt: %w", err)
	}

	payload := s.assembler.Assemble(question, nil, history)
	messages := append(historyMessages(system, payload.History), driven.ChatMessage{
		Role:    domain.RoleUser,
		Content: question,
	})

	text, err := s.chat(ctx, messages)
	if err != nil {
		return nil, err
	}

	return &domain.Answer{
		Question:   question,
		Text:       text,
		Sources:    []string{},
		Confidence: domain.ConfidenceMedium,
		Grounded:   false,
	}, nil
}

func (s *AnswerService) groundedMessages(payload domain.ContextPayload) ([]driven.ChatMessage, error) {
	system, err := s.prompts.Load(driven.PromptAnswerSystem)
	if err != nil {
		return nil, fmt.Errorf("load prompt: %w", err)
	}
	template, err := s.prompts.Load(driven.PromptAnswerContext)
	if err != nil {
		return nil, fmt.Errorf("load prompt: %w", err)
	}

	user := fmt.Sprintf(template, FormatContext(payload.Fragments), payload.Question)
	return append(historyMessages(system, payload.History), driven.ChatMessage{
		Role:    domain.RoleUser,
		Content: user,
	}), nil
}

func (s *AnswerService) chat(ctx context.Context, messages []driven.ChatMessage) (string, error) {
	if s.llm == nil {
		return "", fmt.Errorf("%w: no language model configured", domain.ErrLLMUnavailable)
	}

	logger.Debug("Generating with %s (%d messages)", s.llm.ModelName(), len(messages))
	text, err := s.llm.Chat(ctx, messages, s.genOpts)
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrGenerationFailed, err)
	}
	return strings.TrimSpace(text), nil
}

// FormatContext renders fragments as "Source: <label>\n<text>" blocks
// separated by a blank line.
func FormatContext(fragments []domain.ContextFragment) string {
	blocks := make([]string, len(fragments))
	for i, f := range fragments {
		blocks[i] = "Source: " + f.Source + "\n" + f.Text
	}
	return strings.Join(blocks, "\n\n")
}

// historyMessages starts a conversation with the system prompt followed by prior turns.
// System turns from history are dropped; the configured prompt owns that role.
func historyMessages(system string, history []domain.ConversationTurn) []driven.ChatMessage {
	messages := make([]driven.ChatMessage, 0, len(history)+2)
	messages = append(messages, driven.ChatMessage{Role: domain.RoleSystem, Content: system})
	for _, turn := range history {
		if turn.Role != domain.RoleUser && turn.Role != domain.RoleAssistant {
			continue
		}
		messages = append(messages, driven.ChatMessage{Role: turn.Role, Content: turn.Content})
	}
	return messages
}

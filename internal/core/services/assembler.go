package services

import (
	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
)

// Ensure ContextAssembler implements the interface.
var _ driving.ContextAssembler = (*ContextAssembler)(nil)

// ContextAssembler builds the payload handed to the generation step.
// It holds no mutable state and is safe for concurrent use.
type ContextAssembler struct {
	historyTurns int
	maxTokens    int
	counter      driven.TokenCounter
}

// AssemblerOption configures the assembler.
type AssemblerOption func(*ContextAssembler)

// WithTokenBudget limits fragment text to maxTokens as measured by counter.
// The first fragment is always kept. maxTokens <= 0 or a nil counter disables the budget.
func WithTokenBudget(counter driven.TokenCounter, maxTokens int) AssemblerOption {
	return func(a *ContextAssembler) {
		a.counter = counter
		a.maxTokens = maxTokens
	}
}

// NewContextAssembler creates an assembler keeping the last historyTurns turns.
// Zero keeps no history; negative values use domain.DefaultHistoryTurns.
func NewContextAssembler(historyTurns int, opts ...AssemblerOption) *ContextAssembler {
	if historyTurns < 0 {
		historyTurns = domain.DefaultHistoryTurns
	}
	a := &ContextAssembler{historyTurns: historyTurns}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Assemble pairs the question with labelled fragments and the trailing history window.
func (a *ContextAssembler) Assemble(
	question string, fragments []domain.Fragment, history []domain.ConversationTurn,
) domain.ContextPayload {
	return domain.ContextPayload{
		Question:  question,
		Fragments: a.contextFragments(fragments),
		History:   a.window(history),
	}
}

func (a *ContextAssembler) contextFragments(fragments []domain.Fragment) []domain.ContextFragment {
	out := make([]domain.ContextFragment, 0, len(fragments))
	budget := a.counter != nil && a.maxTokens > 0
	used := 0

	for _, f := range fragments {
		if budget {
			tokens := a.counter.Count(f.Text)
			if len(out) > 0 && used+tokens > a.maxTokens {
				break
			}
			used += tokens
		}
		out = append(out, domain.ContextFragment{
			Source:   f.SourceLabel(),
			SourceID: f.SourceID,
			Index:    f.Index,
			Text:     f.Text,
		})
	}
	return out
}

// window returns a copy of the last historyTurns turns.
func (a *ContextAssembler) window(history []domain.ConversationTurn) []domain.ConversationTurn {
	start := len(history) - a.historyTurns
	if start < 0 {
		start = 0
	}
	out := make([]domain.ConversationTurn, len(history)-start)
	copy(out, history[start:])
	return out
}

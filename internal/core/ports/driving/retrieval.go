package driving

import (
	"context"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// Retriever finds fragments relevant to a question.
// An empty result is a valid "no relevant content" outcome, never an error.
type Retriever interface {
	// Retrieve returns fragments whose similarity clears the threshold, most similar first.
	Retrieve(ctx context.Context, question string, opts domain.RetrieveOptions) ([]domain.Fragment, error)

	// RetrieveScored is Retrieve with distance and similarity attached.
	RetrieveScored(ctx context.Context, question string, opts domain.RetrieveOptions) ([]domain.ScoredFragment, error)
}

// ContextAssembler bundles fragments and recent history for generation.
type ContextAssembler interface {
	// Assemble is pure and deterministic.
	Assemble(question string, fragments []domain.Fragment, history []domain.ConversationTurn) domain.ContextPayload
}

// AnswerService answers questions over the indexed corpus.
type AnswerService interface {
	// Answer retrieves, assembles and generates.
	// No relevant fragments yields domain.NoRelevantInformation with a nil error.
	Answer(
		ctx context.Context,
		question string,
		history []domain.ConversationTurn,
		opts domain.AnswerOptions,
	) (*domain.Answer, error)

	// Context retrieves and assembles without generating.
	Context(
		ctx context.Context,
		question string,
		history []domain.ConversationTurn,
		opts domain.RetrieveOptions,
	) (*domain.ContextPayload, error)
}

package driven

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from files or embed them in the binary.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	// Unknown names return an error; known names fall back to embedded defaults.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	Reload()
}

// Well-known prompt names used throughout the application.
const (
	// PromptAnswerSystem is the system prompt for grounded answers.
	// This prompt has no format placeholders.
	PromptAnswerSystem = "answer_system"

	// PromptAnswerContext frames the retrieved context and the question.
	// The template expects two %s placeholders: context blocks, then question.
	PromptAnswerContext = "answer_context"

	// PromptDirectSystem is the system prompt when answering without retrieval.
	PromptDirectSystem = "direct_system"
)

package driven

// TokenCounter counts model tokens in text.
// Used to keep the assembled context within a token budget.
type TokenCounter interface {
	// Count returns the number of tokens in text.
	Count(text string) int
}

package domain

// NoRelevantInformation is the answer text when retrieval finds nothing.
// It is a valid outcome, distinct from any failure.
const NoRelevantInformation = "I couldn't find any relevant information in the documents to answer your question."

// Confidence grades how an answer was produced.
type Confidence string

// Confidence levels.
const (
	// ConfidenceHigh means the answer was conditioned on retrieved fragments.
	ConfidenceHigh Confidence = "high"

	// ConfidenceMedium means the answer came from the model alone (direct mode).
	ConfidenceMedium Confidence = "medium"

	// ConfidenceLow means no relevant fragments were found.
	ConfidenceLow Confidence = "low"
)

// Answer is the result of answering a question.
type Answer struct {
	// Question is the question that was asked.
	Question string `json:"question"`

	// Text is the generated answer, or NoRelevantInformation.
	Text string `json:"answer"`

	// Sources lists unique source labels in relevance order.
	Sources []string `json:"sources"`

	// Fragments are the retrieved fragments the answer was conditioned on.
	Fragments []ScoredFragment `json:"-"`

	// Confidence grades how the answer was produced.
	Confidence Confidence `json:"confidence"`

	// Grounded is true when retrieved fragments were passed to the model.
	Grounded bool `json:"grounded"`
}

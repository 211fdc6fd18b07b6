package domain

// RetrieveOptions overrides retrieval defaults for a single call.
// Zero values fall back to the configured defaults.
type RetrieveOptions struct {
	// K is the number of index results requested. K <= 0 uses the default.
	K int

	// Threshold is the minimum similarity. nil uses the default.
	Threshold *float64
}

// WithThreshold returns a copy of o with the threshold set.
func (o RetrieveOptions) WithThreshold(t float64) RetrieveOptions {
	o.Threshold = &t
	return o
}

// AnswerOptions configures a single answer.
type AnswerOptions struct {
	// Retrieve overrides retrieval defaults.
	Retrieve RetrieveOptions

	// Direct skips retrieval and asks the model alone.
	Direct bool
}

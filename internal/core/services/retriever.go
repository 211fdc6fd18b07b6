package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-rag/internal/logger"
)

// Ensure Retriever implements the interface.
var _ driving.Retriever = (*Retriever)(nil)

// Retriever queries the index and keeps results that clear a similarity threshold.
type Retriever struct {
	index    driving.IndexService
	defaults domain.RetrievalSettings
}

// NewRetriever creates a retriever with the given defaults.
// Non-positive TopK falls back to domain.DefaultTopK.
func NewRetriever(index driving.IndexService, defaults domain.RetrievalSettings) *Retriever {
	if defaults.TopK <= 0 {
		defaults.TopK = domain.DefaultTopK
	}
	return &Retriever{
		index:    index,
		defaults: defaults,
	}
}

// Retrieve returns the fragments of RetrieveScored.
func (r *Retriever) Retrieve(
	ctx context.Context, question string, opts domain.RetrieveOptions,
) ([]domain.Fragment, error) {
	scored, err := r.RetrieveScored(ctx, question, opts)
	if err != nil {
		return nil, err
	}

	fragments := make([]domain.Fragment, len(scored))
	for i, sf := range scored {
		fragments[i] = sf.Fragment
	}
	return fragments, nil
}

// RetrieveScored queries the index for k results, converts each distance to
// a similarity and drops those below the threshold. Index order is kept.
func (r *Retriever) RetrieveScored(
	ctx context.Context, question string, opts domain.RetrieveOptions,
) ([]domain.ScoredFragment, error) {
	if strings.TrimSpace(question) == "" {
		return nil, fmt.Errorf("%w: question is empty", domain.ErrInvalidInput)
	}

	k := opts.K
	if k <= 0 {
		k = r.defaults.TopK
	}
	threshold := r.defaults.Threshold
	if opts.Threshold != nil {
		threshold = *opts.Threshold
	}

	logger.Section("Retrieval")
	logger.Debug("Question: %q, k=%d, threshold=%.3f", question, k, threshold)

	results, err := r.index.Query(ctx, question, k)
	if err != nil {
		return nil, fmt.Errorf("retrieve: %w", err)
	}

	metric := r.index.Metric()
	scored := make([]domain.ScoredFragment, 0, len(results))
	for _, res := range results {
		similarity := metric.Similarity(res.Distance)
		if similarity < threshold {
			logger.Debug("Dropped %s#%d (similarity %.3f)", res.Fragment.SourceLabel(), res.Fragment.Index, similarity)
			continue
		}
		scored = append(scored, domain.ScoredFragment{
			Fragment:   res.Fragment,
			Distance:   res.Distance,
			Similarity: similarity,
		})
	}

	logger.Info("Retrieved %d of %d results above threshold", len(scored), len(results))
	return scored, nil
}

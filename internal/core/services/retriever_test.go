package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/postprocessors/chunker"
)

func cannedResults(distances ...float64) []domain.RetrievalResult {
	results := make([]domain.RetrievalResult, len(distances))
	for i, d := range distances {
		results[i] = domain.RetrievalResult{
			Fragment: fragment("doc.txt", i, "fragment "+string(rune('a'+i))),
			Distance: d,
		}
	}
	return results
}

func TestNewRetriever_DefaultTopK(t *testing.T) {
	index := &mockIndexService{}
	r := NewRetriever(index, domain.RetrievalSettings{TopK: 0, Threshold: 0.5})

	_, err := r.Retrieve(context.Background(), "question", domain.RetrieveOptions{})

	require.NoError(t, err)
	assert.Equal(t, domain.DefaultTopK, index.lastK)
}

func TestRetriever_OptionsOverrideDefaults(t *testing.T) {
	index := &mockIndexService{results: cannedResults(0.1, 0.3, 0.6)}
	r := NewRetriever(index, domain.RetrievalSettings{TopK: 5, Threshold: 0.9})

	got, err := r.Retrieve(context.Background(), "question", domain.RetrieveOptions{K: 2}.WithThreshold(0.0))

	require.NoError(t, err)
	assert.Equal(t, 2, index.lastK)
	assert.Len(t, got, 2)
}

func TestRetriever_RetrieveScored_AppliesThreshold(t *testing.T) {
	// Cosine similarities 0.9, 0.7, 0.4
	index := &mockIndexService{results: cannedResults(0.1, 0.3, 0.6)}
	r := NewRetriever(index, domain.RetrievalSettings{TopK: 3, Threshold: 0.65})

	scored, err := r.RetrieveScored(context.Background(), "question", domain.RetrieveOptions{})

	require.NoError(t, err)
	require.Len(t, scored, 2)
	assert.InDelta(t, 0.9, scored[0].Similarity, 1e-9)
	assert.InDelta(t, 0.7, scored[1].Similarity, 1e-9)
	assert.InDelta(t, 0.3, scored[1].Distance, 1e-9)
}

func TestRetriever_RetrieveScored_L2Metric(t *testing.T) {
	// L2 similarities 1/(1+d): 0.5, 0.25
	index := &mockIndexService{results: cannedResults(1, 3), metric: domain.MetricL2}
	r := NewRetriever(index, domain.RetrievalSettings{TopK: 2, Threshold: 0.4})

	scored, err := r.RetrieveScored(context.Background(), "question", domain.RetrieveOptions{})

	require.NoError(t, err)
	require.Len(t, scored, 1)
	assert.InDelta(t, 0.5, scored[0].Similarity, 1e-9)
}

func TestRetriever_ThresholdMonotonic(t *testing.T) {
	index := &mockIndexService{results: cannedResults(0.05, 0.2, 0.35, 0.5, 0.8, 1.2)}
	r := NewRetriever(index, domain.RetrievalSettings{TopK: 6})
	ctx := context.Background()

	thresholds := []float64{-1, -0.2, 0, 0.2, 0.5, 0.65, 0.8, 0.95, 1}
	var previous map[string]bool
	for _, threshold := range thresholds {
		got, err := r.Retrieve(ctx, "question", domain.RetrieveOptions{}.WithThreshold(threshold))
		require.NoError(t, err)

		current := make(map[string]bool, len(got))
		for _, f := range got {
			current[f.Text] = true
		}
		for text := range current {
			if previous != nil {
				assert.True(t, previous[text], "threshold %.2f returned %q absent at a lower threshold", threshold, text)
			}
		}
		previous = current
	}
}

func TestRetriever_RankedBySimilarity(t *testing.T) {
	index := &mockIndexService{results: cannedResults(0.01, 0.1, 0.15, 0.4)}
	r := NewRetriever(index, domain.RetrievalSettings{TopK: 4, Threshold: 0})

	scored, err := r.RetrieveScored(context.Background(), "question", domain.RetrieveOptions{})

	require.NoError(t, err)
	require.Len(t, scored, 4)
	for i := 1; i < len(scored); i++ {
		assert.GreaterOrEqual(t, scored[i-1].Similarity, scored[i].Similarity)
	}
}

func TestRetriever_BlankQuestion(t *testing.T) {
	index := &mockIndexService{}
	r := NewRetriever(index, domain.RetrievalSettings{TopK: 3})

	_, err := r.Retrieve(context.Background(), " \t", domain.RetrieveOptions{})

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Zero(t, index.lastK, "index must not be queried")
}

func TestRetriever_QueryFailurePropagates(t *testing.T) {
	index := &mockIndexService{queryErr: domain.ErrQueryFailed}
	r := NewRetriever(index, domain.RetrievalSettings{TopK: 3})

	got, err := r.Retrieve(context.Background(), "question", domain.RetrieveOptions{})

	assert.Nil(t, got)
	assert.ErrorIs(t, err, domain.ErrQueryFailed)
}

func TestRetriever_EmptyIndex(t *testing.T) {
	idx, _ := newTestIndex(nil)
	r := NewRetriever(idx, domain.RetrievalSettings{TopK: 5, Threshold: 0.5})

	got, err := r.Retrieve(context.Background(), "anything", domain.RetrieveOptions{})

	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

// TestRetriever_EndToEnd chunks a 2500 character document, indexes it and
// retrieves the one fragment the query is closest to.
func TestRetriever_EndToEnd(t *testing.T) {
	text := strings.Repeat("a", 800) + strings.Repeat("b", 1000) + strings.Repeat("c", 700)
	require.Len(t, text, 2500)

	frags := chunker.New(chunker.WithChunkSize(1000), chunker.WithOverlap(200)).Chunk("doc.txt", text, nil)
	require.Len(t, frags, 3)
	assert.Equal(t, frags[0].Text[800:], frags[1].Text[:200], "fragments 0 and 1 share 200 characters")

	idx, _ := newTestIndex(map[string][]float32{
		frags[0].Text: {1, 0, 0},
		frags[1].Text: {0, 1, 0},
		frags[2].Text: {0, 0, 1},
		"which part is all b?": {0.1, 1, 0},
	})
	ctx := context.Background()
	require.NoError(t, idx.Insert(ctx, frags))
	assert.Equal(t, 3, idx.Count(ctx))

	r := NewRetriever(idx, domain.RetrievalSettings{TopK: 5, Threshold: 0.9})
	got, err := r.Retrieve(ctx, "which part is all b?", domain.RetrieveOptions{K: 1}.WithThreshold(0.5))

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 1, got[0].Index)
	assert.Equal(t, frags[1].Text, got[0].Text)
	assert.Equal(t, "doc.txt", got[0].SourceID)
}

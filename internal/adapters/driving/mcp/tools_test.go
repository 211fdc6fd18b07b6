package mcp

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

func TestServer_handleRetrieve(t *testing.T) {
	ctx := context.Background()

	t.Run("returns scored fragments", func(t *testing.T) {
		retriever := &mockRetriever{
			scored: []domain.ScoredFragment{{
				Fragment: domain.Fragment{
					SourceID: "/docs/policy.pdf",
					Index:    2,
					Text:     "Refunds are accepted within 30 days.",
					Metadata: map[string]any{domain.MetaFilename: "policy.pdf"},
				},
				Distance:   0.1,
				Similarity: 0.9,
			}},
		}
		server, err := NewServer(&Ports{Retriever: retriever})
		require.NoError(t, err)

		threshold := 0.8
		_, output, err := server.handleRetrieve(ctx, nil, RetrieveInput{Question: "refunds?", K: 3, Threshold: &threshold})

		require.NoError(t, err)
		require.Equal(t, 1, output.Count)
		assert.Equal(t, FragmentOutput{
			Source:     "policy.pdf",
			SourceID:   "/docs/policy.pdf",
			Index:      2,
			Similarity: 0.9,
			Text:       "Refunds are accepted within 30 days.",
		}, output.Fragments[0])
		assert.Equal(t, 3, retriever.lastOpts.K)
		require.NotNil(t, retriever.lastOpts.Threshold)
		assert.InDelta(t, 0.8, *retriever.lastOpts.Threshold, 1e-9)
	})

	t.Run("no matches is an empty result", func(t *testing.T) {
		server, err := NewServer(&Ports{Retriever: &mockRetriever{scored: []domain.ScoredFragment{}}})
		require.NoError(t, err)

		_, output, err := server.handleRetrieve(ctx, nil, RetrieveInput{Question: "anything"})

		require.NoError(t, err)
		assert.Equal(t, 0, output.Count)
		assert.NotNil(t, output.Fragments)
	})

	t.Run("returns error on failure", func(t *testing.T) {
		server, err := NewServer(&Ports{Retriever: &mockRetriever{err: domain.ErrQueryFailed}})
		require.NoError(t, err)

		_, _, err = server.handleRetrieve(ctx, nil, RetrieveInput{Question: "q"})

		assert.ErrorIs(t, err, domain.ErrQueryFailed)
	})
}

func TestServer_handleAsk(t *testing.T) {
	ctx := context.Background()

	t.Run("returns grounded answer", func(t *testing.T) {
		answers := &mockAnswerService{answer: &domain.Answer{
			Text:       "30 days.",
			Sources:    []string{"policy.pdf"},
			Confidence: domain.ConfidenceHigh,
			Grounded:   true,
		}}
		server, err := NewServer(&Ports{Retriever: &mockRetriever{}, Answer: answers})
		require.NoError(t, err)

		history := []domain.ConversationTurn{{Role: domain.RoleUser, Content: "hi"}}
		_, output, err := server.handleAsk(ctx, nil, AskInput{Question: "refund window?", History: history, Direct: true})

		require.NoError(t, err)
		assert.Equal(t, AskOutput{Answer: "30 days.", Sources: []string{"policy.pdf"}, Confidence: "high", Grounded: true}, output)
		assert.Equal(t, history, answers.lastHistory)
		assert.True(t, answers.lastOpts.Direct)
	})

	t.Run("returns error on failure", func(t *testing.T) {
		answers := &mockAnswerService{err: errors.New("generation failed")}
		server, err := NewServer(&Ports{Retriever: &mockRetriever{}, Answer: answers})
		require.NoError(t, err)

		_, _, err = server.handleAsk(ctx, nil, AskInput{Question: "q"})

		assert.ErrorContains(t, err, "generation failed")
	})
}

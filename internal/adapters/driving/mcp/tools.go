package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// RetrieveInput is the input schema for the retrieve tool.
type RetrieveInput struct {
	Question  string   `json:"question" jsonschema:"the question to find relevant document fragments for"`
	K         int      `json:"k,omitempty" jsonschema:"number of index results to consider (default from settings)"`
	Threshold *float64 `json:"threshold,omitempty" jsonschema:"minimum similarity a fragment must reach (default from settings)"`
}

// RetrieveOutput is the output schema for the retrieve tool.
type RetrieveOutput struct {
	Fragments []FragmentOutput `json:"fragments"`
	Count     int              `json:"count"`
}

// FragmentOutput represents a single retrieved fragment.
type FragmentOutput struct {
	Source     string  `json:"source"`
	SourceID   string  `json:"source_id"`
	Index      int     `json:"chunk_index"`
	Similarity float64 `json:"similarity"`
	Text       string  `json:"text"`
}

// AskInput is the input schema for the ask tool.
type AskInput struct {
	Question string                    `json:"question" jsonschema:"the question to answer from the indexed documents"`
	History  []domain.ConversationTurn `json:"history,omitempty" jsonschema:"earlier conversation turns, oldest first"`
	Direct   bool                      `json:"direct,omitempty" jsonschema:"answer without consulting the documents"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	Answer     string   `json:"answer"`
	Sources    []string `json:"sources"`
	Confidence string   `json:"confidence"`
	Grounded   bool     `json:"grounded"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "retrieve",
		Description: "Find document fragments relevant to a question, most similar first",
	}, s.handleRetrieve)

	if s.ports.Answer != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "ask",
			Description: "Answer a question grounded in the indexed documents, citing sources",
		}, s.handleAsk)
	}
}

// handleRetrieve handles the retrieve tool invocation.
func (s *Server) handleRetrieve(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input RetrieveInput,
) (*mcp.CallToolResult, RetrieveOutput, error) {
	opts := domain.RetrieveOptions{K: input.K, Threshold: input.Threshold}

	scored, err := s.ports.Retriever.RetrieveScored(ctx, input.Question, opts)
	if err != nil {
		return nil, RetrieveOutput{}, err
	}

	output := RetrieveOutput{
		Fragments: make([]FragmentOutput, len(scored)),
		Count:     len(scored),
	}
	for i, sf := range scored {
		output.Fragments[i] = FragmentOutput{
			Source:     sf.Fragment.SourceLabel(),
			SourceID:   sf.Fragment.SourceID,
			Index:      sf.Fragment.Index,
			Similarity: sf.Similarity,
			Text:       sf.Fragment.Text,
		}
	}
	return nil, output, nil
}

// handleAsk handles the ask tool invocation.
func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	answer, err := s.ports.Answer.Answer(ctx, input.Question, input.History, domain.AnswerOptions{Direct: input.Direct})
	if err != nil {
		return nil, AskOutput{}, err
	}

	sources := answer.Sources
	if sources == nil {
		sources = []string{}
	}

	return nil, AskOutput{
		Answer:     answer.Text,
		Sources:    sources,
		Confidence: string(answer.Confidence),
		Grounded:   answer.Grounded,
	}, nil
}

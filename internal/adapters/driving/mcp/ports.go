package mcp

import (
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
type Ports struct {
	// Retriever finds relevant fragments. Required.
	Retriever driving.Retriever

	// Answer generates grounded answers. Optional; without it the ask tool is not registered.
	Answer driving.AnswerService

	// Index describes the index. Optional; without it the index resource is not registered.
	Index driving.IndexService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Retriever == nil {
		return ErrMissingRetriever
	}
	return nil
}

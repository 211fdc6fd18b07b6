// Package http serves the question answering pipeline as a JSON API.
package http

import (
	"errors"

	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
)

// Sentinel errors for missing ports.
var (
	ErrMissingRetriever = errors.New("http: retriever is required")
	ErrMissingAnswer    = errors.New("http: answer service is required")
	ErrMissingIndex     = errors.New("http: index service is required")
)

// SourceFactory opens a document source for a path on the server.
type SourceFactory func(path string) driven.DocumentSource

// Ports aggregates the driving ports the API needs.
type Ports struct {
	Retriever driving.Retriever
	Answer    driving.AnswerService
	Index     driving.IndexService

	// Ingest and Sources enable POST /api/v1/ingest. Both or neither.
	Ingest  driving.IngestService
	Sources SourceFactory
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Retriever == nil {
		return ErrMissingRetriever
	}
	if p.Answer == nil {
		return ErrMissingAnswer
	}
	if p.Index == nil {
		return ErrMissingIndex
	}
	return nil
}

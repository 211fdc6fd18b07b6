package http

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

var validate = validator.New()

// RetrieveRequest is the body of POST /api/v1/retrieve.
type RetrieveRequest struct {
	Question  string   `json:"question" validate:"required"`
	K         int      `json:"k" validate:"gte=0,lte=100"`
	Threshold *float64 `json:"threshold" validate:"omitempty,gte=-1,lte=1"`
}

// Turn is one message of caller supplied history.
type Turn struct {
	Role    string `json:"role" validate:"required,oneof=user assistant system"`
	Content string `json:"content"`
}

// ContextRequest is the body of POST /api/v1/context.
type ContextRequest struct {
	RetrieveRequest
	History []Turn `json:"history" validate:"dive"`
}

// AskRequest is the body of POST /api/v1/ask.
type AskRequest struct {
	ContextRequest
	Direct bool `json:"direct"`
}

// IngestRequest is the body of POST /api/v1/ingest.
type IngestRequest struct {
	Paths []string `json:"paths" validate:"required,min=1,dive,required"`
}

// validateRequest runs the struct's validation tags.
func validateRequest(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	fields := make(map[string]string, len(verrs))
	for _, e := range verrs {
		fields[e.Field()] = fmt.Sprintf("failed on '%s' tag", e.Tag())
	}
	return NewValidationError(fields)
}

func (r RetrieveRequest) options() domain.RetrieveOptions {
	return domain.RetrieveOptions{K: r.K, Threshold: r.Threshold}
}

func (r ContextRequest) history() []domain.ConversationTurn {
	if len(r.History) == 0 {
		return nil
	}
	out := make([]domain.ConversationTurn, len(r.History))
	for i, t := range r.History {
		out[i] = domain.ConversationTurn{Role: domain.Role(t.Role), Content: t.Content}
	}
	return out
}

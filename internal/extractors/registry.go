package extractors

import (
	"context"
	"errors"
	"fmt"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

// Ensure Registry implements the interface.
var _ driven.ExtractorRegistry = (*Registry)(nil)

// Registry routes files to extractors by format.
// Only formats that are both registered and enabled are supported.
type Registry struct {
	extractors map[domain.Format]driven.Extractor
}

// NewRegistry creates a registry for the enabled formats.
// When two extractors claim the same format the later one wins.
func NewRegistry(enabled []domain.Format, extractors ...driven.Extractor) *Registry {
	allowed := make(map[domain.Format]bool, len(enabled))
	for _, f := range enabled {
		allowed[f] = true
	}

	r := &Registry{extractors: make(map[domain.Format]driven.Extractor)}
	for _, e := range extractors {
		for _, f := range e.Formats() {
			if allowed[f] {
				r.extractors[f] = e
			}
		}
	}
	return r
}

// Supports returns true if format has an enabled extractor.
func (r *Registry) Supports(format domain.Format) bool {
	_, ok := r.extractors[format]
	return ok
}

// Formats returns the supported formats in canonical order.
func (r *Registry) Formats() []domain.Format {
	var out []domain.Format
	for _, f := range domain.AllFormats() {
		if r.Supports(f) {
			out = append(out, f)
		}
	}
	return out
}

// Extract returns the text of path using the extractor for format.
// Every failure is reported as domain.ErrExtractionFailed.
func (r *Registry) Extract(ctx context.Context, path string, format domain.Format) (string, error) {
	e, ok := r.extractors[format]
	if !ok {
		return "", fmt.Errorf("%w: %w: %q", domain.ErrExtractionFailed, domain.ErrUnsupportedFormat, format)
	}

	text, err := e.Extract(ctx, path)
	if err != nil {
		if errors.Is(err, domain.ErrExtractionFailed) {
			return "", err
		}
		return "", fmt.Errorf("%w: %w", domain.ErrExtractionFailed, err)
	}
	return text, nil
}

// Package chunker splits extracted document text into overlapping fragments.
//
// Splits prefer the most coherent boundary available near the size limit:
// paragraph, then line, then sentence, then word. Only when none exists in
// the lookback window does it fall back to a hard cut. Whitespace runs longer
// than the fragment size are dropped, because no fragment may be blank.
package chunker

import (
	"unicode"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

// DefaultChunkSize is the default number of runes per fragment.
const DefaultChunkSize = domain.DefaultChunkSize

// DefaultChunkOverlap is the default number of overlapping runes.
const DefaultChunkOverlap = domain.DefaultChunkOverlap

// Ensure Splitter implements the interface.
var _ driven.Chunker = (*Splitter)(nil)

// Splitter splits text into size-bounded, overlapping fragments.
// It holds no mutable state and is safe for concurrent use.
type Splitter struct {
	chunkSize int
	overlap   int
}

// Option configures the splitter.
type Option func(*Splitter)

// WithChunkSize sets the target fragment length in runes.
func WithChunkSize(size int) Option {
	return func(s *Splitter) {
		if size > 0 {
			s.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between consecutive fragments in runes.
func WithOverlap(overlap int) Option {
	return func(s *Splitter) {
		if overlap >= 0 {
			s.overlap = overlap
		}
	}
}

// New creates a new splitter with the given options.
func New(opts ...Option) *Splitter {
	s := &Splitter{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
	}

	for _, opt := range opts {
		opt(s)
	}

	// Ensure overlap doesn't reach chunk size
	if s.overlap >= s.chunkSize {
		s.overlap = s.chunkSize / 4
	}

	return s
}

// FromSettings creates a splitter from configuration.
func FromSettings(cfg domain.ChunkingSettings) *Splitter {
	return New(WithChunkSize(cfg.Size), WithOverlap(cfg.Overlap))
}

// ChunkSize returns the target fragment length.
func (s *Splitter) ChunkSize() int {
	return s.chunkSize
}

// Overlap returns the effective overlap.
func (s *Splitter) Overlap() int {
	return s.overlap
}

// Chunk splits text into fragments.
//
// Every fragment is at most ChunkSize runes and never blank. Consecutive
// fragments share an overlap region, so the original text is recovered by
// concatenating the fragments with each overlap counted once. The one
// exception is a whitespace run too long to fit in a fragment: it is left
// out, and the fragments on either side of it do not overlap.
func (s *Splitter) Chunk(sourceID, text string, metadata map[string]any) []domain.Fragment {
	runes := []rune(text)
	if isBlank(runes) {
		return nil
	}

	n := len(runes)
	fragments := make([]domain.Fragment, 0, n/(s.chunkSize-s.overlap)+1)

	start := 0
	for start < n {
		end := start + s.chunkSize
		if end >= n {
			end = n
		} else {
			end = s.findBreak(runes, start, end)
		}

		piece := runes[start:end]
		if isBlank(piece) {
			// Resume at the next word; the skipped run is whitespace only
			start = nextNonSpace(runes, end)
			continue
		}
		fragments = append(fragments, s.fragment(sourceID, piece, start, end, len(fragments), metadata))

		if end == n {
			break
		}
		start = s.nextStart(runes, end)
	}

	return fragments
}

func (s *Splitter) fragment(sourceID string, piece []rune, start, end, index int, metadata map[string]any) domain.Fragment {
	meta := make(map[string]any, len(metadata)+1)
	for k, v := range metadata {
		meta[k] = v
	}
	meta[domain.MetaChunkIndex] = index

	return domain.Fragment{
		SourceID: sourceID,
		Index:    index,
		Text:     string(piece),
		Start:    start,
		End:      end,
		Metadata: meta,
	}
}

// minLength is the shortest fragment a boundary split may produce.
// Staying above the overlap guarantees every step makes progress.
func (s *Splitter) minLength() int {
	m := s.chunkSize / 2
	if s.overlap+1 > m {
		m = s.overlap + 1
	}
	return m
}

// findBreak returns the end offset for a fragment starting at start whose
// hard limit is limit (limit < len(runes)). The end lands just after the
// best separator within [start+minLength, limit], or at limit if none exists.
func (s *Splitter) findBreak(runes []rune, start, limit int) int {
	lo := start + s.minLength()

	for _, level := range levels {
		if end := lastBreak(runes, lo, limit, level); end > 0 {
			return end
		}
	}
	return limit
}

// nextStart returns where the fragment after one ending at end begins.
// It backs up by the overlap, then moves forward to the next word start
// if one lies within the first half of the overlap region.
func (s *Splitter) nextStart(runes []rune, end int) int {
	next := end - s.overlap
	if s.overlap == 0 || isWordStart(runes, next) {
		return next
	}

	limit := next + s.overlap/2
	if limit > end-1 {
		limit = end - 1
	}
	for j := next + 1; j <= limit; j++ {
		if isWordStart(runes, j) {
			return j
		}
	}
	return next
}

// breakLevel reports the fragment end produced by a separator at i, or 0.
type breakLevel func(runes []rune, i int) int

// levels lists separators from most to least coherent.
var levels = []breakLevel{
	paragraphBreak,
	lineBreak,
	sentenceBreak,
	wordBreak,
}

func paragraphBreak(runes []rune, i int) int {
	if runes[i] == '\n' && i+1 < len(runes) && runes[i+1] == '\n' {
		return i + 2
	}
	return 0
}

func lineBreak(runes []rune, i int) int {
	if runes[i] == '\n' {
		return i + 1
	}
	return 0
}

func sentenceBreak(runes []rune, i int) int {
	switch runes[i] {
	case '.', '!', '?':
		if i+1 < len(runes) && unicode.IsSpace(runes[i+1]) {
			return i + 2
		}
	}
	return 0
}

func wordBreak(runes []rune, i int) int {
	if unicode.IsSpace(runes[i]) {
		return i + 1
	}
	return 0
}

// lastBreak scans backwards for the latest separator whose end falls in [lo, hi].
func lastBreak(runes []rune, lo, hi int, level breakLevel) int {
	for i := hi - 1; i >= 0 && i+2 >= lo; i-- {
		end := level(runes, i)
		if end >= lo && end <= hi {
			return end
		}
	}
	return 0
}

func isWordStart(runes []rune, i int) bool {
	if i <= 0 || i >= len(runes) {
		return i == 0
	}
	return unicode.IsSpace(runes[i-1]) && !unicode.IsSpace(runes[i])
}

// nextNonSpace returns the offset of the first non-space rune at or after i,
// or len(runes).
func nextNonSpace(runes []rune, i int) int {
	for i < len(runes) && unicode.IsSpace(runes[i]) {
		i++
	}
	return i
}

func isBlank(runes []rune) bool {
	for _, r := range runes {
		if !unicode.IsSpace(r) {
			return false
		}
	}
	return true
}

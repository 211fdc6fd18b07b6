package domain

import (
	"math"
	"path/filepath"
)

// Well-known fragment metadata keys.
const (
	// MetaSource is the originating file path.
	MetaSource = "source"

	// MetaFilename is the base name of the originating file.
	MetaFilename = "filename"

	// MetaFileType is the file extension including the dot (".pdf").
	MetaFileType = "file_type"

	// MetaFileSize is the size of the originating file in bytes.
	MetaFileSize = "file_size"

	// MetaChunkIndex mirrors Fragment.Index inside the metadata map.
	MetaChunkIndex = "chunk_index"
)

// unknownSource labels fragments whose origin cannot be named.
const unknownSource = "Unknown"

// Fragment is a contiguous slice of a source document.
// Fragments are created once by the chunker and never mutated.
type Fragment struct {
	// ID is the opaque identifier assigned by the index at insertion.
	// Empty until the fragment has been inserted.
	ID string

	// SourceID identifies the originating document.
	SourceID string

	// Index is the position in the document's fragment sequence (0-based, gap-free).
	Index int

	// Text is the fragment content. Never blank.
	Text string

	// Start is the rune offset of Text within the extracted document text.
	Start int

	// End is the rune offset one past the last rune of Text.
	End int

	// Metadata holds primitive attributes (filename, size, type, chunk_index).
	Metadata map[string]any
}

// SourceLabel returns a human-readable label for citing this fragment.
// Prefers the filename metadata, then the base of SourceID.
func (f Fragment) SourceLabel() string {
	if name, ok := f.Metadata[MetaFilename].(string); ok && name != "" {
		return name
	}
	if f.SourceID != "" {
		return filepath.Base(f.SourceID)
	}
	return unknownSource
}

// Len returns the fragment length in runes.
func (f Fragment) Len() int {
	return f.End - f.Start
}

// IndexEntry pairs a fragment with its embedding.
// Owned by the index; the embedding is recomputed, never patched.
type IndexEntry struct {
	Fragment  Fragment
	Embedding []float32
}

// RetrievalResult is a single index hit.
type RetrievalResult struct {
	Fragment Fragment

	// Distance is the index's native dissimilarity (lower = more similar).
	Distance float64
}

// ScoredFragment is a retrieval hit after similarity conversion.
type ScoredFragment struct {
	Fragment   Fragment
	Distance   float64
	Similarity float64
}

// DistanceMetric names the dissimilarity an index reports.
type DistanceMetric string

// Supported distance metrics.
const (
	// MetricCosine is cosine distance, 1 - cos(a, b), in [0, 2].
	MetricCosine DistanceMetric = "cosine"

	// MetricL2 is Euclidean distance, in [0, +inf).
	MetricL2 DistanceMetric = "l2"
)

// IsValid returns true if the metric is recognised.
func (m DistanceMetric) IsValid() bool {
	return m == MetricCosine || m == MetricL2
}

// Similarity converts a distance reported under this metric to a similarity.
// Cosine distance maps back to cosine similarity (1 - d). L2 is unbounded,
// so it maps to 1 / (1 + d) which lies in (0, 1].
func (m DistanceMetric) Similarity(distance float64) float64 {
	switch m {
	case MetricL2:
		if distance < 0 {
			distance = 0
		}
		return 1 / (1 + distance)
	default:
		return 1 - distance
	}
}

// String returns the string representation.
func (m DistanceMetric) String() string {
	return string(m)
}

// IndexInfo describes the current state of the index.
type IndexInfo struct {
	// Count is the number of stored entries.
	Count int

	// Backend names the storage engine (sqlite, postgres, memory).
	Backend string

	// Location is where durable state lives (directory, DSN host, "memory").
	Location string

	// Metric is the distance metric queries report.
	Metric DistanceMetric

	// Dimensions is the embedding dimensionality, 0 if unknown.
	Dimensions int
}

// CosineDistance returns 1 - cos(a, b).
// Mismatched or zero vectors are maximally distant from everything but themselves (distance 1).
func CosineDistance(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 1
	}

	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}
	if normA == 0 || normB == 0 {
		return 1
	}
	return 1 - dot/(math.Sqrt(normA)*math.Sqrt(normB))
}

// L2Distance returns the Euclidean distance between a and b.
func L2Distance(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return math.MaxFloat64
	}

	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return math.Sqrt(sum)
}

// Distance computes the distance between a and b under this metric.
func (m DistanceMetric) Distance(a, b []float32) float64 {
	if m == MetricL2 {
		return L2Distance(a, b)
	}
	return CosineDistance(a, b)
}

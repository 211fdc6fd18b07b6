package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFragment_SourceLabel(t *testing.T) {
	t.Run("prefers filename metadata", func(t *testing.T) {
		f := Fragment{SourceID: "/docs/a/report.pdf", Metadata: map[string]any{MetaFilename: "Report.pdf"}}
		assert.Equal(t, "Report.pdf", f.SourceLabel())
	})

	t.Run("falls back to base of source id", func(t *testing.T) {
		f := Fragment{SourceID: "/docs/a/report.pdf"}
		assert.Equal(t, "report.pdf", f.SourceLabel())
	})

	t.Run("unknown when nothing is set", func(t *testing.T) {
		assert.Equal(t, "Unknown", Fragment{}.SourceLabel())
	})

	t.Run("ignores non-string filename", func(t *testing.T) {
		f := Fragment{SourceID: "x.txt", Metadata: map[string]any{MetaFilename: 42}}
		assert.Equal(t, "x.txt", f.SourceLabel())
	})
}

func TestDistanceMetric_Similarity(t *testing.T) {
	assert.InDelta(t, 1.0, MetricCosine.Similarity(0), 1e-9)
	assert.InDelta(t, 0.25, MetricCosine.Similarity(0.75), 1e-9)
	assert.InDelta(t, -1.0, MetricCosine.Similarity(2), 1e-9)

	assert.InDelta(t, 1.0, MetricL2.Similarity(0), 1e-9)
	assert.InDelta(t, 0.5, MetricL2.Similarity(1), 1e-9)
	assert.InDelta(t, 1.0, MetricL2.Similarity(-3), 1e-9)
}

func TestDistanceMetric_SimilarityIsMonotonic(t *testing.T) {
	for _, m := range []DistanceMetric{MetricCosine, MetricL2} {
		prev := math.Inf(1)
		for d := 0.0; d <= 2.0; d += 0.1 {
			s := m.Similarity(d)
			assert.LessOrEqual(t, s, prev, "metric %s distance %f", m, d)
			prev = s
		}
	}
}

func TestCosineDistance(t *testing.T) {
	assert.InDelta(t, 0.0, CosineDistance([]float32{1, 0}, []float32{2, 0}), 1e-9)
	assert.InDelta(t, 1.0, CosineDistance([]float32{1, 0}, []float32{0, 1}), 1e-9)
	assert.InDelta(t, 2.0, CosineDistance([]float32{1, 0}, []float32{-1, 0}), 1e-9)
	assert.InDelta(t, 1.0, CosineDistance([]float32{1, 0}, []float32{1, 0, 0}), 1e-9)
	assert.InDelta(t, 1.0, CosineDistance([]float32{0, 0}, []float32{1, 0}), 1e-9)
}

func TestL2Distance(t *testing.T) {
	assert.InDelta(t, 5.0, L2Distance([]float32{0, 0}, []float32{3, 4}), 1e-9)
	assert.Equal(t, math.MaxFloat64, L2Distance([]float32{0}, []float32{0, 1}))
	assert.InDelta(t, 5.0, MetricL2.Distance([]float32{0, 0}, []float32{3, 4}), 1e-9)
	assert.InDelta(t, 0.0, MetricCosine.Distance([]float32{1, 1}, []float32{2, 2}), 1e-6)
}

func TestFormatFromPath(t *testing.T) {
	assert.Equal(t, FormatPDF, FormatFromPath("/a/b/Report.PDF"))
	assert.Equal(t, FormatDOCX, FormatFromPath("notes.docx"))
	assert.Equal(t, FormatTXT, FormatFromPath("readme.txt"))
	assert.Equal(t, Format(""), FormatFromPath("image.png"))
	assert.Equal(t, Format(""), FormatFromPath("Makefile"))
	assert.Equal(t, ".pdf", FormatPDF.Extension())
}

func TestContextPayload_Sources(t *testing.T) {
	p := ContextPayload{Fragments: []ContextFragment{
		{Source: "b.pdf"}, {Source: "a.txt"}, {Source: "b.pdf"},
	}}
	assert.Equal(t, []string{"b.pdf", "a.txt"}, p.Sources())
	assert.Empty(t, ContextPayload{}.Sources())
}

func TestIngestReport_Warn(t *testing.T) {
	var r IngestReport
	r.Warn("a.png", ErrUnsupportedFormat)

	assert.Equal(t, 1, r.Skipped)
	assert.Len(t, r.Warnings, 1)
	assert.ErrorIs(t, r.Warnings[0].Err, ErrUnsupportedFormat)
}

func TestRole_IsValid(t *testing.T) {
	assert.True(t, RoleUser.IsValid())
	assert.True(t, RoleAssistant.IsValid())
	assert.False(t, Role("bot").IsValid())
}

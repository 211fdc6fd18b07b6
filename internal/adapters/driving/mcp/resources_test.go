package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// Helper to create a ReadResourceRequest with the given URI.
func makeReadResourceRequest(uri string) *mcp.ReadResourceRequest {
	return &mcp.ReadResourceRequest{
		Params: &mcp.ReadResourceParams{
			URI: uri,
		},
	}
}

func TestServer_handleIndexResource(t *testing.T) {
	index := &mockIndexService{info: domain.IndexInfo{
		Count:      42,
		Backend:    "sqlite",
		Location:   "/home/u/.sercha-rag/data",
		Metric:     domain.MetricCosine,
		Dimensions: 1536,
	}}
	server, err := NewServer(&Ports{Retriever: &mockRetriever{}, Index: index})
	require.NoError(t, err)

	result, err := server.handleIndexResource(context.Background(), makeReadResourceRequest(indexURI))

	require.NoError(t, err)
	require.Len(t, result.Contents, 1)
	assert.Equal(t, "application/json", result.Contents[0].MIMEType)
	assert.Equal(t, "sercha-rag://index", result.Contents[0].URI)

	var got indexInfo
	require.NoError(t, json.Unmarshal([]byte(result.Contents[0].Text), &got))
	assert.Equal(t, indexInfo{
		Count:      42,
		Backend:    "sqlite",
		Location:   "/home/u/.sercha-rag/data",
		Metric:     "cosine",
		Dimensions: 1536,
	}, got)
}

func TestServer_ReadIndexResource(t *testing.T) {
	session := connect(t, &Ports{
		Retriever: &mockRetriever{},
		Index:     &mockIndexService{info: domain.IndexInfo{Count: 7, Backend: "memory", Metric: domain.MetricL2}},
	})

	result, err := session.ReadResource(context.Background(), &mcp.ReadResourceParams{URI: indexURI})

	require.NoError(t, err)
	require.Len(t, result.Contents, 1)
	assert.Contains(t, result.Contents[0].Text, `"count": 7`)
	assert.Contains(t, result.Contents[0].Text, `"metric": "l2"`)
}

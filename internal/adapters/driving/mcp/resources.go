package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// uriScheme is the custom URI scheme for sercha-rag resources.
const uriScheme = "sercha-rag://"

// indexURI names the index description resource.
const indexURI = uriScheme + "index"

// indexInfo is the JSON shape of the index resource.
type indexInfo struct {
	Count      int    `json:"count"`
	Backend    string `json:"backend"`
	Location   string `json:"location"`
	Metric     string `json:"metric"`
	Dimensions int    `json:"dimensions"`
}

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	if s.ports.Index == nil {
		return
	}

	s.server.AddResource(&mcp.Resource{
		URI:         indexURI,
		Name:        "index",
		Description: "Size, storage backend and distance metric of the fragment index",
		MIMEType:    "application/json",
	}, s.handleIndexResource)
}

// handleIndexResource describes the index.
func (s *Server) handleIndexResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	info := s.ports.Index.Info(ctx)

	data, err := json.MarshalIndent(indexInfo{
		Count:      info.Count,
		Backend:    info.Backend,
		Location:   info.Location,
		Metric:     info.Metric.String(),
		Dimensions: info.Dimensions,
	}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling index info: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

package cli

import (
	"github.com/spf13/cobra"

	httpapi "github.com/custodia-labs/sercha-rag/internal/adapters/driving/http"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the JSON API",
	Long: `Starts an HTTP server exposing retrieval, context assembly, answering
and ingestion as JSON endpoints:

  GET    /health
  POST   /api/v1/retrieve   {"question": "...", "k": 5, "threshold": 0.7}
  POST   /api/v1/context    {"question": "...", "history": [...]}
  POST   /api/v1/ask        {"question": "...", "history": [...], "direct": false}
  POST   /api/v1/ingest     {"paths": ["/path/to/docs"]}
  GET    /api/v1/index
  DELETE /api/v1/index

The address defaults to the server.addr setting.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVarP(&serveAddr, "addr", "a", "", "listen address (default: server.addr setting)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	svc, err := pipeline(cmd.Context())
	if err != nil {
		return err
	}

	server, err := httpapi.NewServer(&httpapi.Ports{
		Retriever: svc.Retriever,
		Answer:    svc.Answer,
		Index:     svc.Index,
		Ingest:    svc.Ingest,
		Sources:   func(path string) driven.DocumentSource { return newSource(path) },
	})
	if err != nil {
		return err
	}

	addr := serveAddr
	if addr == "" {
		addr = svc.Config.Server.Addr
	}
	cmd.Printf("Serving on http://%s\n", addr)
	return server.Listen(cmd.Context(), addr)
}

// Package cli implements the sercha-rag command line interface.
package cli

import (
	"context"
	"errors"
	"os"
	"sync"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-rag/internal/logger"
)

// version is set at build time via SetVersion.
var version = "dev"

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "sercha-rag",
	Short: "Ask questions about your documents",
	Long: `sercha-rag indexes local PDF, DOCX and text files and answers questions
about them with retrieval-augmented generation.

Ingest documents first, then search, ask or chat:
  sercha-rag ingest ~/Documents/policies
  sercha-rag ask "What is the refund window?"`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug output")
}

// Services holds the pipeline the commands drive.
type Services struct {
	Index     driving.IndexService
	Ingest    driving.IngestService
	Retriever driving.Retriever
	Answer    driving.AnswerService
	Config    domain.Config
}

// Loader builds the pipeline on first use.
type Loader func(ctx context.Context) (*Services, error)

var (
	settingsService driving.SettingsService

	servicesMu     sync.Mutex
	servicesLoader Loader
	services       *Services
)

// errNotConfigured is returned when no pipeline has been provided.
var errNotConfigured = errors.New("services not configured")

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	version = v
}

// SetSettingsService sets the settings service. Settings commands work
// without the rest of the pipeline.
func SetSettingsService(s driving.SettingsService) {
	settingsService = s
}

// SetLoader sets how the pipeline is built. It runs at most once.
func SetLoader(l Loader) {
	servicesMu.Lock()
	defer servicesMu.Unlock()
	servicesLoader = l
	services = nil
}

// SetServices provides an already built pipeline.
func SetServices(s *Services) {
	servicesMu.Lock()
	defer servicesMu.Unlock()
	services = s
}

// pipeline returns the services, building them on first call.
func pipeline(ctx context.Context) (*Services, error) {
	servicesMu.Lock()
	defer servicesMu.Unlock()

	if services != nil {
		return services, nil
	}
	if servicesLoader == nil {
		return nil, errNotConfigured
	}
	s, err := servicesLoader(ctx)
	if err != nil {
		return nil, err
	}
	services = s
	return s, nil
}

// Execute runs the root command under ctx. Command output goes to stdout,
// errors and warnings to stderr.
func Execute(ctx context.Context) error {
	rootCmd.SetOut(os.Stdout)
	rootCmd.SetErr(os.Stderr)
	return rootCmd.ExecuteContext(ctx)
}

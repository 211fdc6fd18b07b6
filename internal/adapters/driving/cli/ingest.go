package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/sercha-rag/internal/connectors/filesystem"
	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

var ingestWatch bool

// newSource builds the document source for a path. Replaced in tests.
var newSource = func(path string) driven.DocumentSource {
	return filesystem.New(path)
}

var ingestCmd = &cobra.Command{
	Use:   "ingest <path>...",
	Short: "Index documents from files or directories",
	Long: `Extracts text from PDF, DOCX and plain text files, splits it into
fragments and stores their embeddings in the index.

Directories are walked recursively. Hidden files and unsupported formats
are skipped. Files that cannot be read are reported and skipped.

With --watch the paths are watched after the initial pass and created or
modified files are indexed as they change.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().BoolVarP(&ingestWatch, "watch", "w", false, "keep watching for changes")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	svc, err := pipeline(cmd.Context())
	if err != nil {
		return err
	}

	sources := make([]driven.DocumentSource, 0, len(args))
	defer func() {
		for _, src := range sources {
			_ = src.Close()
		}
	}()

	var total domain.IngestReport
	for _, path := range args {
		src := newSource(path)
		sources = append(sources, src)

		report, err := svc.Ingest.IngestSource(cmd.Context(), src)
		if report != nil {
			printIngestReport(cmd, src.Root(), report)
			mergeReport(&total, report)
		}
		if err != nil {
			return fmt.Errorf("ingest %s: %w", path, err)
		}
	}

	if len(args) > 1 {
		cmd.Printf("Total: %d fragments from %d files (%d skipped)\n", total.Fragments, total.Files, total.Skipped)
	}

	if !ingestWatch {
		return nil
	}

	cmd.Println("Watching for changes. Press Ctrl+C to stop.")
	g, ctx := errgroup.WithContext(cmd.Context())
	for _, src := range sources {
		g.Go(func() error {
			return svc.Ingest.Watch(ctx, src)
		})
	}
	if err := g.Wait(); err != nil && !errors.Is(err, ctx.Err()) {
		return err
	}
	return nil
}

func printIngestReport(cmd *cobra.Command, root string, report *domain.IngestReport) {
	cmd.Printf("%s: %d fragments from %d files", root, report.Fragments, report.Files)
	if report.Skipped > 0 {
		cmd.Printf(" (%d skipped)", report.Skipped)
	}
	cmd.Println()
	for _, w := range report.Warnings {
		cmd.PrintErrf("  warning: %s: %v\n", w.Path, w.Err)
	}
}

func mergeReport(total, r *domain.IngestReport) {
	total.Files += r.Files
	total.Fragments += r.Fragments
	total.Skipped += r.Skipped
	total.Warnings = append(total.Warnings, r.Warnings...)
}

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

var (
	searchLimit     int
	searchThreshold float64
	searchJSON      bool
)

var searchCmd = &cobra.Command{
	Use:   "search <question>",
	Short: "Find fragments relevant to a question",
	Long: `Embeds the question and returns the most similar indexed fragments
whose similarity clears the threshold, most similar first.

No model is called. Use "ask" for a generated answer.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 0, "number of index results to consider (0 = configured top_k)")
	searchCmd.Flags().Float64VarP(&searchThreshold, "threshold", "t", 0, "minimum similarity (default: configured threshold)")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

// searchResult is the JSON shape of a scored fragment.
type searchResult struct {
	Source     string  `json:"source"`
	SourceID   string  `json:"source_id"`
	Index      int     `json:"chunk_index"`
	Similarity float64 `json:"similarity"`
	Distance   float64 `json:"distance"`
	Text       string  `json:"text"`
}

func runSearch(cmd *cobra.Command, args []string) error {
	svc, err := pipeline(cmd.Context())
	if err != nil {
		return err
	}

	opts := retrieveOptions(cmd, searchLimit, searchThreshold)
	results, err := svc.Retriever.RetrieveScored(cmd.Context(), args[0], opts)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		out := make([]searchResult, len(results))
		for i, r := range results {
			out[i] = searchResult{
				Source:     r.Fragment.SourceLabel(),
				SourceID:   r.Fragment.SourceID,
				Index:      r.Fragment.Index,
				Similarity: r.Similarity,
				Distance:   r.Distance,
				Text:       r.Fragment.Text,
			}
		}
		return printJSON(cmd, out)
	}

	if len(results) == 0 {
		cmd.Println("No relevant fragments found.")
		return nil
	}

	cmd.Println("Results:")
	cmd.Println()
	for i, r := range results {
		cmd.Printf("  [%d] %s #%d (%.2f)\n", i+1, r.Fragment.SourceLabel(), r.Fragment.Index, r.Similarity)
		cmd.Printf("      %s\n", snippet(r.Fragment.Text))
		cmd.Println()
	}
	return nil
}

// retrieveOptions applies the limit and, when given, the threshold flag.
func retrieveOptions(cmd *cobra.Command, limit int, threshold float64) domain.RetrieveOptions {
	opts := domain.RetrieveOptions{K: limit}
	if cmd.Flags().Changed("threshold") {
		opts = opts.WithThreshold(threshold)
	}
	return opts
}

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

var (
	askLimit     int
	askThreshold float64
	askHistory   string
	askDirect    bool
	askJSON      bool
)

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Answer a question from the indexed documents",
	Long: `Retrieves relevant fragments, assembles them with any prior history and
asks the configured language model for an answer that cites its sources.

If nothing relevant is indexed the model is not called and a fixed
"no relevant information" answer is returned.

Use --direct to skip retrieval and ask the model alone.`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().IntVarP(&askLimit, "limit", "n", 0, "number of index results to consider (0 = configured top_k)")
	askCmd.Flags().Float64VarP(&askThreshold, "threshold", "t", 0, "minimum similarity (default: configured threshold)")
	askCmd.Flags().StringVar(&askHistory, "history", "", "JSON file of prior conversation turns")
	askCmd.Flags().BoolVar(&askDirect, "direct", false, "answer without retrieval")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the answer as JSON")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	svc, err := pipeline(cmd.Context())
	if err != nil {
		return err
	}

	history, err := readHistory(askHistory)
	if err != nil {
		return err
	}

	opts := domain.AnswerOptions{
		Retrieve: retrieveOptions(cmd, askLimit, askThreshold),
		Direct:   askDirect,
	}
	ans, err := svc.Answer.Answer(cmd.Context(), args[0], history, opts)
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}

	if askJSON {
		return printJSON(cmd, ans)
	}
	printAnswer(cmd, ans)
	return nil
}

package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	contextLimit     int
	contextThreshold float64
	contextHistory   string
	contextJSON      bool
)

var contextCmd = &cobra.Command{
	Use:   "context <question>",
	Short: "Show the context an answer would be generated from",
	Long: `Retrieves fragments for the question and assembles them with the
recent conversation history, exactly as "ask" would, without calling a model.`,
	Args: cobra.ExactArgs(1),
	RunE: runContext,
}

func init() {
	contextCmd.Flags().IntVarP(&contextLimit, "limit", "n", 0, "number of index results to consider (0 = configured top_k)")
	contextCmd.Flags().Float64VarP(&contextThreshold, "threshold", "t", 0, "minimum similarity (default: configured threshold)")
	contextCmd.Flags().StringVar(&contextHistory, "history", "", "JSON file of prior conversation turns")
	contextCmd.Flags().BoolVar(&contextJSON, "json", false, "output the payload as JSON")
	rootCmd.AddCommand(contextCmd)
}

func runContext(cmd *cobra.Command, args []string) error {
	svc, err := pipeline(cmd.Context())
	if err != nil {
		return err
	}

	history, err := readHistory(contextHistory)
	if err != nil {
		return err
	}

	opts := retrieveOptions(cmd, contextLimit, contextThreshold)
	payload, err := svc.Answer.Context(cmd.Context(), args[0], history, opts)
	if err != nil {
		return fmt.Errorf("context failed: %w", err)
	}

	if contextJSON {
		return printJSON(cmd, payload)
	}

	cmd.Printf("Question: %s\n", payload.Question)
	if len(payload.History) > 0 {
		cmd.Printf("History: %d turns\n", len(payload.History))
	}
	cmd.Println()

	if len(payload.Fragments) == 0 {
		cmd.Println("No relevant fragments found.")
		return nil
	}
	for i, f := range payload.Fragments {
		cmd.Printf("[%d] %s #%d\n", i+1, f.Source, f.Index)
		cmd.Println(f.Text)
		cmd.Println()
	}
	return nil
}

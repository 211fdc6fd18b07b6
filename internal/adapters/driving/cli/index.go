package cli

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var (
	indexJSON     bool
	indexClearYes bool
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Inspect or clear the index",
}

var indexInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show index statistics",
	Args:  cobra.NoArgs,
	RunE:  runIndexInfo,
}

var indexClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every indexed fragment",
	Long: `Irrecoverably removes all fragments and embeddings from the index.
Documents on disk are not touched; run "ingest" again to rebuild.`,
	Args: cobra.NoArgs,
	RunE: runIndexClear,
}

func init() {
	indexInfoCmd.Flags().BoolVar(&indexJSON, "json", false, "output as JSON")
	indexClearCmd.Flags().BoolVarP(&indexClearYes, "yes", "y", false, "do not ask for confirmation")
	indexCmd.AddCommand(indexInfoCmd)
	indexCmd.AddCommand(indexClearCmd)
	rootCmd.AddCommand(indexCmd)
}

// indexInfoOutput is the JSON shape of index statistics.
type indexInfoOutput struct {
	Count      int    `json:"count"`
	Backend    string `json:"backend"`
	Location   string `json:"location"`
	Metric     string `json:"metric"`
	Dimensions int    `json:"dimensions"`
}

func runIndexInfo(cmd *cobra.Command, _ []string) error {
	svc, err := pipeline(cmd.Context())
	if err != nil {
		return err
	}

	info := svc.Index.Info(cmd.Context())
	if indexJSON {
		return printJSON(cmd, indexInfoOutput{
			Count:      info.Count,
			Backend:    info.Backend,
			Location:   info.Location,
			Metric:     string(info.Metric),
			Dimensions: info.Dimensions,
		})
	}

	cmd.Println("Index")
	cmd.Printf("  Fragments:  %d\n", info.Count)
	cmd.Printf("  Backend:    %s\n", info.Backend)
	cmd.Printf("  Location:   %s\n", info.Location)
	cmd.Printf("  Metric:     %s\n", info.Metric)
	if info.Dimensions > 0 {
		cmd.Printf("  Dimensions: %d\n", info.Dimensions)
	}
	return nil
}

func runIndexClear(cmd *cobra.Command, _ []string) error {
	svc, err := pipeline(cmd.Context())
	if err != nil {
		return err
	}

	if !indexClearYes {
		count := svc.Index.Count(cmd.Context())
		cmd.Printf("Remove all %d fragments from the index? [y/N]: ", count)
		reader := bufio.NewReader(cmd.InOrStdin())
		answer, _ := reader.ReadString('\n')
		answer = strings.ToLower(strings.TrimSpace(answer))
		if answer != "y" && answer != "yes" {
			cmd.Println("Aborted.")
			return nil
		}
	}

	if err := svc.Index.Clear(cmd.Context()); err != nil {
		return fmt.Errorf("clear index: %w", err)
	}
	cmd.Println("Index cleared.")
	return nil
}

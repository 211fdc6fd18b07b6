package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// snippetLength is how many runes of fragment text the tables show.
const snippetLength = 160

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

// printAnswer renders an answer. "No relevant information" is a normal
// outcome and is shown without sources or a confidence line.
func printAnswer(cmd *cobra.Command, ans *domain.Answer) {
	if !ans.Grounded && ans.Confidence == domain.ConfidenceLow {
		cmd.Println(ans.Text)
		return
	}

	cmd.Println(ans.Text)
	if len(ans.Sources) > 0 {
		cmd.Println()
		cmd.Printf("Sources: %s\n", strings.Join(ans.Sources, ", "))
	}
	if ans.Confidence == domain.ConfidenceMedium {
		cmd.Println("(answered without document context)")
	}
}

// readHistory loads a JSON array of conversation turns.
func readHistory(path string) ([]domain.ConversationTurn, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}
	var history []domain.ConversationTurn
	if err := json.Unmarshal(data, &history); err != nil {
		return nil, fmt.Errorf("%w: parse history %s: %w", domain.ErrInvalidInput, path, err)
	}
	for i, turn := range history {
		if !turn.Role.IsValid() {
			return nil, fmt.Errorf("%w: history turn %d has role %q", domain.ErrInvalidInput, i, turn.Role)
		}
	}
	return history, nil
}

func snippet(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	runes := []rune(text)
	if len(runes) <= snippetLength {
		return text
	}
	return string(runes[:snippetLength]) + "..."
}

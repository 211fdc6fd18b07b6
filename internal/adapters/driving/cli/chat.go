package cli

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

var chatDirect bool

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start a conversation about your documents",
	Long: `Reads questions line by line and answers each one with the conversation
so far as context.

Commands:
  /direct  toggle answering without retrieval
  /clear   forget the conversation
  /exit    leave (also Ctrl+D)`,
	Args: cobra.NoArgs,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().BoolVar(&chatDirect, "direct", false, "start in direct mode")
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, _ []string) error {
	svc, err := pipeline(cmd.Context())
	if err != nil {
		return err
	}

	in := cmd.InOrStdin()
	interactive := isTerminal(in)
	if interactive {
		cmd.Println("Ask a question, or /exit to leave.")
	}

	var history []domain.ConversationTurn
	direct := chatDirect
	scanner := bufio.NewScanner(in)

	for {
		if interactive {
			cmd.Print("> ")
		}
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())

		switch line {
		case "":
			continue
		case "/exit", "/quit":
			return nil
		case "/clear":
			history = nil
			cmd.Println("Conversation cleared.")
			continue
		case "/direct":
			direct = !direct
			if direct {
				cmd.Println("Direct mode on: answers skip retrieval.")
			} else {
				cmd.Println("Direct mode off.")
			}
			continue
		}

		ans, err := svc.Answer.Answer(cmd.Context(), line, history, domain.AnswerOptions{Direct: direct})
		if err != nil {
			// A failed turn is not added to the history
			cmd.PrintErrf("Error: %v\n", err)
			if cmd.Context().Err() != nil {
				return nil
			}
			continue
		}

		printAnswer(cmd, ans)
		cmd.Println()
		history = append(history,
			domain.ConversationTurn{Role: domain.RoleUser, Content: line},
			domain.ConversationTurn{Role: domain.RoleAssistant, Content: ans.Text},
		)
	}

	return scanner.Err()
}

func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

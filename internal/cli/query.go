package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var queryCmd = &cobra.Command{
	Use:   "query <question>",
	Short: "Ask a one-shot question about the indexed document",
	Long: `Ask a single question with no conversation state. The index is
recovered from disk if this is a fresh process.

Examples:
  docqa query "what was the total revenue?"
  docqa query how did deposits develop`,
	Args: cobra.MinimumNArgs(1),
	RunE: runQuery,
}

func init() {
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	question := strings.Join(args, " ")

	orch, cleanup, err := buildOrchestrator()
	if err != nil {
		return err
	}
	defer cleanup()

	answer, err := orch.Query(cmd.Context(), question)
	if err != nil {
		return err
	}

	fmt.Println(answer.Answer)
	fmt.Printf("\n[source: %s, quality: %d/10]\n", answer.Source, answer.QualityScore)
	return nil
}

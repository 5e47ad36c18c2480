package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var docsCmd = &cobra.Command{
	Use:   "docs",
	Short: "List ingested documents",
	Args:  cobra.NoArgs,
	RunE:  runDocs,
}

func init() {
	rootCmd.AddCommand(docsCmd)
}

func runDocs(cmd *cobra.Command, args []string) error {
	orch, cleanup, err := buildOrchestrator()
	if err != nil {
		return err
	}
	defer cleanup()

	names, err := orch.Documents()
	if err != nil {
		return err
	}
	if len(names) == 0 {
		fmt.Println("No documents ingested yet.")
		return nil
	}
	for i, name := range names {
		fmt.Printf("%3d. %s\n", i+1, name)
	}
	return nil
}

package cli

import (
	"fmt"
	"path/filepath"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var uploadCmd = &cobra.Command{
	Use:   "upload <file>",
	Short: "Ingest a document and rebuild the index",
	Long: `Parse a document, split it into chunks, embed them, and persist the
resulting index. Uploading a byte-identical file is a no-op.

Examples:
  docqa upload report.md
  docqa upload statements/q3.txt`,
	Args: cobra.ExactArgs(1),
	RunE: runUpload,
}

func init() {
	rootCmd.AddCommand(uploadCmd)
}

func runUpload(cmd *cobra.Command, args []string) error {
	path, err := filepath.Abs(args[0])
	if err != nil {
		return fmt.Errorf("invalid path: %w", err)
	}

	orch, cleanup, err := buildOrchestrator()
	if err != nil {
		return err
	}
	defer cleanup()

	var bar *progressbar.ProgressBar
	progress := func(done, total int) {
		if bar == nil {
			bar = progressbar.NewOptions(total,
				progressbar.OptionEnableColorCodes(true),
				progressbar.OptionSetWidth(40),
				progressbar.OptionShowCount(),
				progressbar.OptionSetDescription("[cyan]Embedding[reset]"),
				progressbar.OptionOnCompletion(func() {
					fmt.Println()
				}),
			)
		}
		bar.Set(done)
	}

	fmt.Printf("Ingesting %s...\n", path)
	if err := orch.Upload(path, progress); err != nil {
		return fmt.Errorf("upload failed: %w", err)
	}

	if bar == nil {
		fmt.Println("Document already indexed, nothing to do.")
		return nil
	}
	fmt.Println("Document indexed and persisted.")
	return nil
}

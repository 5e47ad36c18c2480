package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"docqa/internal/adapter/watcher"
)

var watchCmd = &cobra.Command{
	Use:   "watch <dir>",
	Short: "Watch a directory and ingest new documents automatically",
	Long: `Watch a directory for new or rewritten files matching the accepted
patterns and ingest each one as it appears. Runs until interrupted.

Example:
  docqa watch ./inbox`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	dir, err := filepath.Abs(args[0])
	if err != nil {
		return fmt.Errorf("invalid path: %w", err)
	}
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("path does not exist: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("path is not a directory: %s", dir)
	}

	orch, cleanup, err := buildOrchestrator()
	if err != nil {
		return err
	}
	defer cleanup()

	w, err := watcher.New(dir, cfg.Ingest.Accept, logger)
	if err != nil {
		return err
	}
	defer w.Close()

	fmt.Printf("Watching %s...\n", dir)
	return w.Run(cmd.Context(), func(path string) error {
		return orch.Upload(path, nil)
	})
}

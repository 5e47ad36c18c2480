package cli

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"docqa/config"
	"docqa/internal/api"
	"docqa/internal/domain"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Expose the question answering pipeline over HTTP",
	Long: `Start the HTTP server. A previously persisted index is recovered at
startup when one exists; otherwise the server starts empty and waits for
an upload.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	orch, cleanup, err := buildOrchestrator()
	if err != nil {
		return err
	}
	defer cleanup()

	// Best-effort warm start. A missing index just means nothing has
	// been uploaded yet.
	if err := orch.Recover(); err != nil {
		if errors.Is(err, domain.ErrNoIndexAvailable) {
			logger.Info("no persisted index, waiting for upload")
		} else {
			logger.Warn("index recovery failed", zap.Error(err))
		}
	}

	server := api.NewServer(orch, config.UploadDir(dataDir, cfg), logger)

	fmt.Printf("Listening on %s\n", cfg.Server.Addr)
	return http.ListenAndServe(cfg.Server.Addr, server.Router())
}

package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"docqa/config"
	"docqa/internal/adapter/embedding"
	"docqa/internal/adapter/llm"
	"docqa/internal/adapter/parser"
	"docqa/internal/adapter/registry"
	"docqa/internal/adapter/splitter"
	"docqa/internal/adapter/vectorindex"
	"docqa/internal/conversation"
	"docqa/internal/index"
	"docqa/internal/port"
	"docqa/internal/usecase"
)

var (
	cfgFile string
	cfg     *config.Config
	dataDir string
	logger  *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "docqa",
	Short: "Document QA - upload documents and ask questions about them",
	Long: `docqa ingests documents into a persistent vector index and answers
questions about them through a local or hosted language model.

Example usage:
  docqa upload report.pdf           # Ingest and index a document
  docqa query "what was revenue?"   # Ask a one-shot question
  docqa chat                        # Interactive session with history
  docqa serve                       # Expose the pipeline over HTTP`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error

		if dataDir == "" {
			dataDir, err = os.Getwd()
			if err != nil {
				return fmt.Errorf("failed to get working directory: %w", err)
			}
		}

		if cfgFile != "" {
			cfg, err = config.Load(cfgFile)
		} else {
			cfg, err = config.LoadFromDir(dataDir)
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		logger, err = newLogger(cfg.Logging.Level)
		if err != nil {
			return fmt.Errorf("failed to build logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			logger.Sync()
		}
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./docqa.yaml)")
	rootCmd.PersistentFlags().StringVarP(&dataDir, "data-dir", "d", "", "data directory (default is current directory)")
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(lvl)
	return zcfg.Build()
}

func newEmbedder() (port.Embedder, error) {
	switch cfg.Embedding.Provider {
	case "openai":
		return embedding.NewOpenAIEmbedder(cfg.Embedding.APIKeyEnv, cfg.Embedding.Model, cfg.Embedding.Dimension)
	case "ollama":
		return embedding.NewOllamaEmbedder(cfg.Embedding.Model, cfg.Embedding.BaseURL, cfg.Embedding.Dimension)
	case "mock":
		return embedding.NewMockEmbedder(cfg.Embedding.Dimension), nil
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", cfg.Embedding.Provider)
	}
}

// buildOrchestrator wires the full pipeline for one command invocation.
// The returned cleanup closes the registry and must run before exit.
func buildOrchestrator() (*usecase.Orchestrator, func(), error) {
	if err := config.EnsureDataDir(dataDir, cfg); err != nil {
		return nil, nil, fmt.Errorf("failed to prepare data directory: %w", err)
	}

	reg, err := registry.Open(config.RegistryPath(dataDir), config.LastSourcePath(dataDir), logger)
	if err != nil {
		return nil, nil, err
	}

	embedder, err := newEmbedder()
	if err != nil {
		reg.Close()
		return nil, nil, err
	}

	generator, err := llm.NewGenerator(cfg.LLM)
	if err != nil {
		reg.Close()
		return nil, nil, err
	}

	ingestion := usecase.NewIngestionService(
		parser.NewText(),
		splitter.New(cfg.Split.ChunkSize, cfg.Split.ChunkOverlap),
		reg,
		cfg.Ingest.Accept,
		logger,
	)

	idx := index.New(
		embedder,
		func() port.VectorIndex { return vectorindex.NewFlat() },
		index.Options{CacheSize: cfg.Index.CacheSize, CacheTTL: cfg.CacheTTL()},
		logger,
	)

	sessions := conversation.NewStore(cfg.Conversation.MaxHistory, cfg.SessionMaxAge())

	orch := usecase.NewOrchestrator(cfg, dataDir, ingestion, idx, reg, sessions, generator, logger)
	cleanup := func() { reg.Close() }
	return orch, cleanup, nil
}

package usecase

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"go.uber.org/zap"

	"docqa/internal/adapter/registry"
	"docqa/internal/adapter/splitter"
	"docqa/internal/domain"
	"docqa/internal/port"
)

// IngestionService turns a source file into chunks and records it in the
// document registry. Re-ingesting byte-identical content is a no-op.
type IngestionService struct {
	parser   port.Parser
	splitter *splitter.Splitter
	registry *registry.Bolt
	accept   []string
	log      *zap.Logger
}

// NewIngestionService wires the ingestion pipeline. accept holds glob
// patterns matched against the file base name.
func NewIngestionService(parser port.Parser, split *splitter.Splitter, reg *registry.Bolt, accept []string, log *zap.Logger) *IngestionService {
	return &IngestionService{
		parser:   parser,
		splitter: split,
		registry: reg,
		accept:   accept,
		log:      log,
	}
}

// Ingest validates, parses, and splits the file at path, then registers
// it under displayName (the file base name when empty). A nil, nil return
// means the identical content was already registered and nothing needs
// rebuilding.
func (s *IngestionService) Ingest(path, displayName string) ([]domain.Chunk, error) {
	if displayName == "" {
		displayName = filepath.Base(path)
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("source %s: %w", path, domain.ErrNotFound)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("source %s is a directory: %w", path, domain.ErrInvalidInput)
	}
	if !s.accepts(path) {
		return nil, fmt.Errorf("unsupported file type %s: %w", filepath.Base(path), domain.ErrInvalidInput)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	processed, err := s.registry.IsProcessed(data)
	if err != nil {
		return nil, err
	}
	if processed {
		s.log.Info("document already ingested, skipping",
			zap.String("path", path))
		return nil, nil
	}

	sections, err := s.parser.Parse(path)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if len(sections) == 0 {
		return nil, fmt.Errorf("document %s has no content: %w", path, domain.ErrEmptyInput)
	}

	var chunks []domain.Chunk
	for _, sec := range sections {
		meta := domain.ChunkMetadata{
			Kind:    sec.Kind,
			Header:  sec.Header,
			Columns: sec.Columns,
		}
		chunks = append(chunks, s.splitter.Split(sec.Body, meta)...)
	}
	if len(chunks) == 0 {
		return nil, fmt.Errorf("document %s produced no chunks: %w", path, domain.ErrEmptyInput)
	}

	// Registered only after the document parsed and split cleanly, so a
	// failed ingest can be retried without tripping the duplicate check.
	if err := s.registry.Add(data, path, displayName); err != nil {
		return nil, err
	}

	s.log.Info("document ingested",
		zap.String("path", path),
		zap.Int("sections", len(sections)),
		zap.Int("chunks", len(chunks)))
	return chunks, nil
}

// Accepts reports whether the file name passes the accept patterns.
func (s *IngestionService) Accepts(path string) bool {
	return s.accepts(path)
}

func (s *IngestionService) accepts(path string) bool {
	base := filepath.Base(path)
	for _, pattern := range s.accept {
		if ok, err := doublestar.Match(pattern, base); err == nil && ok {
			return true
		}
	}
	return false
}

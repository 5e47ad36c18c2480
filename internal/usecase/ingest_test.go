package usecase

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"docqa/internal/adapter/parser"
	"docqa/internal/adapter/registry"
	"docqa/internal/adapter/splitter"
	"docqa/internal/domain"
)

func newIngestion(t *testing.T) *IngestionService {
	t.Helper()
	dir := t.TempDir()
	reg, err := registry.Open(filepath.Join(dir, "registry.db"), filepath.Join(dir, "last_source"), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { reg.Close() })

	return NewIngestionService(
		parser.NewText(),
		splitter.New(1000, 200),
		reg,
		[]string{"*.txt", "*.md"},
		zap.NewNop(),
	)
}

func writeSource(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestIngestProducesChunks(t *testing.T) {
	svc := newIngestion(t)
	path := writeSource(t, "report.md", "# Summary\n\nRevenue grew this quarter.\n")

	chunks, err := svc.Ingest(path, "")
	require.NoError(t, err)
	require.NotEmpty(t, chunks)
	assert.Equal(t, "Summary", chunks[0].Metadata.Header)
}

func TestIngestMissingFile(t *testing.T) {
	svc := newIngestion(t)
	_, err := svc.Ingest(filepath.Join(t.TempDir(), "absent.md"), "")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestIngestRejectedExtension(t *testing.T) {
	svc := newIngestion(t)
	path := writeSource(t, "binary.exe", "not a document")

	_, err := svc.Ingest(path, "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestIngestDuplicateContentIsNoOp(t *testing.T) {
	svc := newIngestion(t)
	path := writeSource(t, "report.md", "# Summary\n\nRevenue grew this quarter.\n")

	first, err := svc.Ingest(path, "")
	require.NoError(t, err)
	require.NotEmpty(t, first)

	// Same bytes under a different name still count as the same document.
	copyPath := writeSource(t, "copy.md", "# Summary\n\nRevenue grew this quarter.\n")
	second, err := svc.Ingest(copyPath, "")
	require.NoError(t, err)
	assert.Nil(t, second)
}

func TestIngestEmptyDocument(t *testing.T) {
	svc := newIngestion(t)
	path := writeSource(t, "empty.md", "\n\n\n")

	_, err := svc.Ingest(path, "")
	assert.ErrorIs(t, err, domain.ErrEmptyInput)
}

func TestAccepts(t *testing.T) {
	svc := newIngestion(t)
	assert.True(t, svc.Accepts("/tmp/notes.txt"))
	assert.False(t, svc.Accepts("/tmp/archive.zip"))
}

package index

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"docqa/internal/adapter/embedding"
	"docqa/internal/adapter/vectorindex"
	"docqa/internal/domain"
	"docqa/internal/port"
)

func newTestIndex() *RetrievalIndex {
	return New(
		embedding.NewMockEmbedder(64),
		func() port.VectorIndex { return vectorindex.NewFlat() },
		Options{},
		zap.NewNop(),
	)
}

func textChunk(content string) domain.Chunk {
	return domain.Chunk{
		Content:  content,
		Metadata: domain.ChunkMetadata{Kind: domain.KindText},
	}
}

func TestBuildAndQuery(t *testing.T) {
	idx := newTestIndex()

	err := idx.Build([]domain.Chunk{
		textChunk("revenue grew by ten percent"),
		textChunk("the cafeteria menu changed on tuesday"),
		textChunk("net revenue exceeded projections"),
	}, nil)
	require.NoError(t, err)
	assert.True(t, idx.IsLoaded())
	assert.Equal(t, 3, idx.Len())

	results, err := idx.Query("revenue growth", 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Contains(t, results[0].Content, "revenue")
	assert.GreaterOrEqual(t, results[0].Score, results[1].Score)
}

func TestBuildEmptyInput(t *testing.T) {
	idx := newTestIndex()
	err := idx.Build(nil, nil)
	assert.ErrorIs(t, err, domain.ErrEmptyInput)
	assert.False(t, idx.IsLoaded())
}

func TestQueryBeforeBuild(t *testing.T) {
	idx := newTestIndex()
	_, err := idx.Query("anything", 3)
	assert.ErrorIs(t, err, domain.ErrNotBuilt)
}

func TestBuildReportsProgress(t *testing.T) {
	idx := newTestIndex()

	chunks := make([]domain.Chunk, 20)
	for i := range chunks {
		chunks[i] = textChunk("chunk content number")
	}

	var calls []int
	err := idx.Build(chunks, func(done, total int) {
		assert.Equal(t, 20, total)
		calls = append(calls, done)
	})
	require.NoError(t, err)
	require.NotEmpty(t, calls)
	assert.Equal(t, 20, calls[len(calls)-1])
}

func TestPersistAndLoad(t *testing.T) {
	dir := t.TempDir()

	idx := newTestIndex()
	err := idx.Build([]domain.Chunk{
		textChunk("loans issued in the first quarter"),
		textChunk("deposits held steady"),
	}, nil)
	require.NoError(t, err)

	require.NoError(t, idx.Persist(dir))
	assert.True(t, Exists(dir))

	restored := newTestIndex()
	require.NoError(t, restored.Load(dir))
	assert.True(t, restored.IsLoaded())
	assert.Equal(t, 2, restored.Len())

	results, err := restored.Query("loans", 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Contains(t, results[0].Content, "loans")
}

func TestPersistEmptyIndex(t *testing.T) {
	idx := newTestIndex()
	err := idx.Persist(t.TempDir())
	assert.ErrorIs(t, err, domain.ErrNotBuilt)
}

func TestLoadMissingArtifacts(t *testing.T) {
	idx := newTestIndex()
	err := idx.Load(t.TempDir())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestExistsRequiresBothFiles(t *testing.T) {
	dir := t.TempDir()
	assert.False(t, Exists(dir))

	idx := newTestIndex()
	require.NoError(t, idx.Build([]domain.Chunk{textChunk("a b c")}, nil))
	require.NoError(t, idx.Persist(dir))
	assert.True(t, Exists(dir))
}

type countingEmbedder struct {
	inner *embedding.MockEmbedder
	calls int
}

func (e *countingEmbedder) Embed(texts []string) ([][]float32, error) {
	e.calls++
	return e.inner.Embed(texts)
}

func (e *countingEmbedder) Dimension() int    { return e.inner.Dimension() }
func (e *countingEmbedder) ModelName() string { return e.inner.ModelName() }

func TestRepeatedQueryHitsCacheNotEmbedder(t *testing.T) {
	emb := &countingEmbedder{inner: embedding.NewMockEmbedder(64)}
	idx := New(
		emb,
		func() port.VectorIndex { return vectorindex.NewFlat() },
		Options{CacheTTL: time.Minute},
		zap.NewNop(),
	)
	require.NoError(t, idx.Build([]domain.Chunk{textChunk("revenue grew")}, nil))
	afterBuild := emb.calls

	first, err := idx.Query("revenue", 1)
	require.NoError(t, err)
	assert.Equal(t, afterBuild+1, emb.calls)

	// Identical query within the TTL is answered from the cache with no
	// second embedding or search.
	second, err := idx.Query("revenue", 1)
	require.NoError(t, err)
	assert.Equal(t, afterBuild+1, emb.calls)
	assert.Equal(t, first, second)

	// A different k is a different key and goes back to the backend.
	_, err = idx.Query("revenue", 2)
	require.NoError(t, err)
	assert.Equal(t, afterBuild+2, emb.calls)
}

func TestExpiredQueryGoesBackToEmbedder(t *testing.T) {
	emb := &countingEmbedder{inner: embedding.NewMockEmbedder(64)}
	idx := New(
		emb,
		func() port.VectorIndex { return vectorindex.NewFlat() },
		Options{CacheTTL: 20 * time.Millisecond},
		zap.NewNop(),
	)
	require.NoError(t, idx.Build([]domain.Chunk{textChunk("revenue grew")}, nil))

	_, err := idx.Query("revenue", 1)
	require.NoError(t, err)
	afterFirst := emb.calls

	time.Sleep(30 * time.Millisecond)

	_, err = idx.Query("revenue", 1)
	require.NoError(t, err)
	assert.Equal(t, afterFirst+1, emb.calls)
}

func TestRebuildInvalidatesCachedResults(t *testing.T) {
	idx := newTestIndex()
	require.NoError(t, idx.Build([]domain.Chunk{textChunk("alpha topic")}, nil))

	first, err := idx.Query("alpha", 1)
	require.NoError(t, err)
	require.Len(t, first, 1)

	require.NoError(t, idx.Build([]domain.Chunk{textChunk("beta topic")}, nil))

	second, err := idx.Query("alpha", 1)
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Equal(t, "beta topic", second[0].Content)
}

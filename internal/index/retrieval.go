package index

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"docqa/internal/adapter/cache"
	"docqa/internal/adapter/vectorindex"
	"docqa/internal/domain"
	"docqa/internal/port"
)

// RecordsFile holds the chunk payloads alongside the serialized vectors.
const RecordsFile = "records.json"

// embedBatchSize bounds one embedding request so progress stays visible
// on large documents.
const embedBatchSize = 16

// State tracks the index lifecycle. An index only answers queries after a
// successful Build or Load.
type State int

const (
	StateEmpty State = iota
	StateBuilt
	StatePersisted
	StateLoaded
)

// RetrievalIndex owns the chunk records, their vector index, and the
// query cache. Build prepares a complete replacement off to the side and
// swaps it in atomically, so concurrent readers never observe a
// half-built index.
type RetrievalIndex struct {
	mu         sync.RWMutex
	embedder   port.Embedder
	newBackend func() port.VectorIndex
	backend    port.VectorIndex
	records    map[string]domain.Chunk
	cache      *cache.QueryCache
	state      State
	log        *zap.Logger
}

// Options tunes the cache. Zero values use the cache defaults.
type Options struct {
	CacheSize int
	CacheTTL  time.Duration
}

// New creates an empty retrieval index. newBackend supplies fresh vector
// index instances for Build and Load.
func New(embedder port.Embedder, newBackend func() port.VectorIndex, opts Options, log *zap.Logger) *RetrievalIndex {
	return &RetrievalIndex{
		embedder:   embedder,
		newBackend: newBackend,
		backend:    newBackend(),
		records:    make(map[string]domain.Chunk),
		cache:      cache.NewQueryCache(opts.CacheSize, opts.CacheTTL),
		log:        log,
	}
}

// Build embeds the chunks and replaces the index contents. progress, if
// non-nil, is invoked after every embedded batch with the running count.
// The previous contents stay live until the new index is complete.
func (r *RetrievalIndex) Build(chunks []domain.Chunk, progress func(done, total int)) error {
	if len(chunks) == 0 {
		return fmt.Errorf("no chunks to index: %w", domain.ErrEmptyInput)
	}

	backend := r.newBackend()
	records := make(map[string]domain.Chunk, len(chunks))

	for start := 0; start < len(chunks); start += embedBatchSize {
		end := start + embedBatchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batch := chunks[start:end]

		texts := make([]string, len(batch))
		for i, c := range batch {
			texts[i] = c.Content
		}

		vectors, err := r.embedder.Embed(texts)
		if err != nil {
			return fmt.Errorf("failed to embed chunks %d..%d: %w", start, end, err)
		}
		if len(vectors) != len(batch) {
			return fmt.Errorf("embedder returned %d vectors for %d chunks", len(vectors), len(batch))
		}

		items := make([]port.VectorItem, len(batch))
		for i, c := range batch {
			id := uuid.NewString()
			records[id] = c
			items[i] = port.VectorItem{ID: id, Vector: vectors[i]}
		}
		if err := backend.Add(items); err != nil {
			return fmt.Errorf("failed to index chunks: %w", err)
		}

		if progress != nil {
			progress(end, len(chunks))
		}
	}

	// Generation bump happens under the same lock as the swap, so a
	// reader never pairs the new backend with the old generation.
	r.mu.Lock()
	r.backend = backend
	r.records = records
	r.state = StateBuilt
	r.cache.Invalidate()
	r.mu.Unlock()

	r.log.Info("index built",
		zap.Int("chunks", len(chunks)),
		zap.String("model", r.embedder.ModelName()))
	return nil
}

// Persist writes the vectors and chunk records into dir.
func (r *RetrievalIndex) Persist(dir string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state == StateEmpty {
		return fmt.Errorf("cannot persist an empty index: %w", domain.ErrNotBuilt)
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	if err := r.backend.Save(dir); err != nil {
		return fmt.Errorf("failed to save vectors: %w", err)
	}

	data, err := json.Marshal(r.records)
	if err != nil {
		return fmt.Errorf("failed to serialize records: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, RecordsFile), data, 0644); err != nil {
		return fmt.Errorf("failed to save records: %w", err)
	}

	r.state = StatePersisted
	return nil
}

// Load restores a previously persisted index from dir, replacing current
// contents. Missing artifacts map to domain.ErrNotFound.
func (r *RetrievalIndex) Load(dir string) error {
	data, err := os.ReadFile(filepath.Join(dir, RecordsFile))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("no persisted index in %s: %w", dir, domain.ErrNotFound)
		}
		return err
	}

	records := make(map[string]domain.Chunk)
	if err := json.Unmarshal(data, &records); err != nil {
		return fmt.Errorf("failed to parse records: %w", err)
	}

	backend := r.newBackend()
	if err := backend.Load(dir); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("no persisted vectors in %s: %w", dir, domain.ErrNotFound)
		}
		return fmt.Errorf("failed to load vectors: %w", err)
	}

	r.mu.Lock()
	r.backend = backend
	r.records = records
	r.state = StateLoaded
	r.cache.Invalidate()
	r.mu.Unlock()

	r.log.Info("index loaded", zap.Int("chunks", len(records)))
	return nil
}

// Exists reports whether dir holds both persisted artifacts.
func Exists(dir string) bool {
	for _, name := range []string{vectorindex.VectorsFile, RecordsFile} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			return false
		}
	}
	return true
}

// Query retrieves the k most similar chunks. Results for the identical
// query text are served from the cache.
func (r *RetrievalIndex) Query(text string, k int) ([]domain.RetrievedChunk, error) {
	if !r.IsLoaded() {
		return nil, domain.ErrNotBuilt
	}
	if k <= 0 {
		k = 3
	}

	if results, ok := r.cache.Get(text, k); ok {
		r.log.Debug("cache hit", zap.String("query", text))
		return results, nil
	}

	vectors, err := r.embedder.Embed([]string{text})
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	// The generation is captured while the backend is pinned; a rebuild
	// landing after the unlock leaves these results tagged stale.
	r.mu.RLock()
	gen := r.cache.Generation()
	matches, err := r.backend.Search(vectors[0], k)
	if err != nil {
		r.mu.RUnlock()
		return nil, fmt.Errorf("search failed: %w", err)
	}

	results := make([]domain.RetrievedChunk, 0, len(matches))
	for _, m := range matches {
		chunk, ok := r.records[m.ID]
		if !ok {
			continue
		}
		results = append(results, domain.RetrievedChunk{
			Kind:    chunk.Metadata.Kind,
			Content: chunk.Content,
			Header:  chunk.Metadata.Header,
			Columns: chunk.Metadata.Columns,
			Score:   m.Score,
		})
	}
	r.mu.RUnlock()

	r.cache.Put(text, k, gen, results)
	return results, nil
}

// IsLoaded reports whether the index is usable for queries.
func (r *RetrievalIndex) IsLoaded() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state != StateEmpty && r.backend.Len() > 0
}

// Len returns the number of indexed chunks.
func (r *RetrievalIndex) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.backend.Len()
}

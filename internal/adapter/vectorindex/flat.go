package vectorindex

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"docqa/internal/port"
)

// VectorsFile is the on-disk name of the serialized index.
const VectorsFile = "vectors.json"

// Flat is a brute-force cosine-similarity index. Fine for single-document
// corpora; swap in an ANN-backed implementation behind port.VectorIndex
// for anything larger.
type Flat struct {
	mu   sync.RWMutex
	ids  []string
	vecs [][]float32
}

type persisted struct {
	IDs     []string    `json:"ids"`
	Vectors [][]float32 `json:"vectors"`
}

// NewFlat creates an empty index.
func NewFlat() *Flat {
	return &Flat{}
}

// Add appends vectors to the index.
func (f *Flat) Add(items []port.VectorItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, item := range items {
		if len(f.vecs) > 0 && len(item.Vector) != len(f.vecs[0]) {
			return fmt.Errorf("vector dimension mismatch: expected %d, got %d",
				len(f.vecs[0]), len(item.Vector))
		}
		f.ids = append(f.ids, item.ID)
		f.vecs = append(f.vecs, item.Vector)
	}
	return nil
}

// Search returns the k nearest stored vectors by cosine similarity.
func (f *Flat) Search(query []float32, k int) ([]port.VectorMatch, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if len(f.vecs) == 0 {
		return nil, nil
	}
	if len(query) != len(f.vecs[0]) {
		return nil, fmt.Errorf("query dimension mismatch: expected %d, got %d",
			len(f.vecs[0]), len(query))
	}

	matches := make([]port.VectorMatch, len(f.vecs))
	for i, vec := range f.vecs {
		matches[i] = port.VectorMatch{
			ID:    f.ids[i],
			Score: cosineSimilarity(query, vec),
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	if k > len(matches) {
		k = len(matches)
	}
	return matches[:k], nil
}

// Len returns the number of stored vectors.
func (f *Flat) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.ids)
}

// Save serializes the index into dir.
func (f *Flat) Save(dir string) error {
	f.mu.RLock()
	defer f.mu.RUnlock()

	data, err := json.Marshal(persisted{IDs: f.ids, Vectors: f.vecs})
	if err != nil {
		return fmt.Errorf("failed to serialize index: %w", err)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, VectorsFile), data, 0644)
}

// Load restores the index from dir, replacing current contents.
func (f *Flat) Load(dir string) error {
	data, err := os.ReadFile(filepath.Join(dir, VectorsFile))
	if err != nil {
		return err
	}

	var stored persisted
	if err := json.Unmarshal(data, &stored); err != nil {
		return fmt.Errorf("failed to deserialize index: %w", err)
	}
	if len(stored.IDs) != len(stored.Vectors) {
		return fmt.Errorf("corrupt index: %d ids for %d vectors",
			len(stored.IDs), len(stored.Vectors))
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.ids = stored.IDs
	f.vecs = stored.Vectors
	return nil
}

func cosineSimilarity(a, b []float32) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

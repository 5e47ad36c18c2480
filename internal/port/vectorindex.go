package port

// VectorIndex is a nearest-neighbor index over stored vectors that can be
// serialized to and restored from a directory.
type VectorIndex interface {
	// Add appends vectors to the index.
	Add(items []VectorItem) error

	// Search returns the k nearest stored vectors by cosine similarity,
	// highest score first.
	Search(query []float32, k int) ([]VectorMatch, error)

	// Len returns the number of stored vectors.
	Len() int

	// Save serializes the index into dir.
	Save(dir string) error

	// Load restores the index from dir, replacing current contents.
	Load(dir string) error
}

// VectorItem is a vector to be stored, keyed by record id.
type VectorItem struct {
	ID     string
	Vector []float32
}

// VectorMatch is one search result.
type VectorMatch struct {
	ID    string
	Score float64
}

package registry

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func openTestRegistry(t *testing.T, dir string) *Bolt {
	t.Helper()
	r, err := Open(filepath.Join(dir, "registry.db"), filepath.Join(dir, "last_source"), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { r.Close() })
	return r
}

func TestAddAndIsProcessed(t *testing.T) {
	r := openTestRegistry(t, t.TempDir())

	data := []byte("annual report contents")
	processed, err := r.IsProcessed(data)
	require.NoError(t, err)
	assert.False(t, processed)

	require.NoError(t, r.Add(data, "/uploads/report.pdf", "report.pdf"))

	processed, err = r.IsProcessed(data)
	require.NoError(t, err)
	assert.True(t, processed)
}

func TestAddDuplicateIsNoOp(t *testing.T) {
	r := openTestRegistry(t, t.TempDir())

	data := []byte("same bytes")
	require.NoError(t, r.Add(data, "/a/one.pdf", "one.pdf"))
	// Same bytes under a different name: still one record.
	require.NoError(t, r.Add(data, "/b/two.pdf", "two.pdf"))

	names, err := r.ListNames()
	require.NoError(t, err)
	assert.Equal(t, []string{"one.pdf"}, names)

	n, err := r.Count()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestListNamesInsertionOrder(t *testing.T) {
	r := openTestRegistry(t, t.TempDir())

	require.NoError(t, r.Add([]byte("first"), "/d/first.pdf", "first.pdf"))
	require.NoError(t, r.Add([]byte("second"), "/d/second.pdf", "second.pdf"))
	require.NoError(t, r.Add([]byte("third"), "/d/third.pdf", "third.pdf"))

	names, err := r.ListNames()
	require.NoError(t, err)
	assert.Equal(t, []string{"first.pdf", "second.pdf", "third.pdf"}, names)
}

func TestLastIngested(t *testing.T) {
	r := openTestRegistry(t, t.TempDir())

	last, err := r.LastIngested()
	require.NoError(t, err)
	assert.Empty(t, last)

	require.NoError(t, r.Add([]byte("one"), "/d/one.pdf", "one.pdf"))
	require.NoError(t, r.Add([]byte("two"), "/d/two.pdf", "two.pdf"))

	last, err = r.LastIngested()
	require.NoError(t, err)
	assert.Equal(t, "/d/two.pdf", last)
}

func TestDurableAcrossReopen(t *testing.T) {
	dir := t.TempDir()

	r := openTestRegistry(t, dir)
	data := []byte("persisted bytes")
	require.NoError(t, r.Add(data, "/d/doc.pdf", "doc.pdf"))
	require.NoError(t, r.Close())

	r2 := openTestRegistry(t, dir)
	processed, err := r2.IsProcessed(data)
	require.NoError(t, err)
	assert.True(t, processed)

	last, err := r2.LastIngested()
	require.NoError(t, err)
	assert.Equal(t, "/d/doc.pdf", last)
}

func TestRemove(t *testing.T) {
	r := openTestRegistry(t, t.TempDir())

	data := []byte("removable")
	require.NoError(t, r.Add(data, "/d/gone.pdf", "gone.pdf"))
	require.NoError(t, r.Remove(Hash(data)))

	processed, err := r.IsProcessed(data)
	require.NoError(t, err)
	assert.False(t, processed)

	// Removing an unknown hash is a no-op.
	require.NoError(t, r.Remove(Hash([]byte("never added"))))
}

package cache

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docqa/internal/domain"
)

func results(content string) []domain.RetrievedChunk {
	return []domain.RetrievedChunk{{Kind: domain.KindText, Content: content, Score: 0.9}}
}

func TestGetMiss(t *testing.T) {
	c := NewQueryCache(10, time.Minute)

	_, hit := c.Get("never stored", 3)
	assert.False(t, hit)
}

func TestPutGetExactMatch(t *testing.T) {
	c := NewQueryCache(10, time.Minute)
	c.Put("what is revenue", 3, c.Generation(), results("revenue section"))

	got, hit := c.Get("what is revenue", 3)
	require.True(t, hit)
	assert.Equal(t, "revenue section", got[0].Content)

	// Different text or k is a different key.
	_, hit = c.Get("what is revenue?", 3)
	assert.False(t, hit)
	_, hit = c.Get("what is revenue", 5)
	assert.False(t, hit)
}

func TestTTLExpiry(t *testing.T) {
	c := NewQueryCache(10, 20*time.Millisecond)
	c.Put("q", 3, c.Generation(), results("r"))

	_, hit := c.Get("q", 3)
	require.True(t, hit)

	time.Sleep(30 * time.Millisecond)

	_, hit = c.Get("q", 3)
	assert.False(t, hit)
	assert.Equal(t, 0, c.Size())
}

func TestInvalidateDropsAllEntries(t *testing.T) {
	c := NewQueryCache(10, time.Minute)
	c.Put("a", 3, c.Generation(), results("ra"))
	c.Put("b", 3, c.Generation(), results("rb"))

	c.Invalidate()

	_, hit := c.Get("a", 3)
	assert.False(t, hit)
	_, hit = c.Get("b", 3)
	assert.False(t, hit)
	assert.Equal(t, 0, c.Size())
}

func TestStaleGenerationNeverServed(t *testing.T) {
	c := NewQueryCache(10, time.Minute)

	// Results computed against a generation that was superseded before
	// the store completes must not come back on later lookups.
	gen := c.Generation()
	c.Invalidate()
	c.Put("q", 3, gen, results("old index"))

	_, hit := c.Get("q", 3)
	assert.False(t, hit)
}

func TestExpiredEntryLeavesNoGhostSlot(t *testing.T) {
	c := NewQueryCache(2, 20*time.Millisecond)
	c.Put("a", 3, c.Generation(), results("ra"))

	time.Sleep(30 * time.Millisecond)
	_, hit := c.Get("a", 3)
	require.False(t, hit)

	// The expired key is fully gone: refilling to capacity must not
	// evict a live entry on account of a leftover order slot.
	c.Put("b", 3, c.Generation(), results("rb"))
	c.Put("c", 3, c.Generation(), results("rc"))

	_, hit = c.Get("b", 3)
	assert.True(t, hit)
	_, hit = c.Get("c", 3)
	assert.True(t, hit)
	assert.Equal(t, 2, c.Size())
}

func TestLRUEviction(t *testing.T) {
	c := NewQueryCache(2, time.Minute)
	c.Put("a", 3, c.Generation(), results("ra"))
	c.Put("b", 3, c.Generation(), results("rb"))

	// Touch "a" so "b" becomes the eviction candidate.
	_, hit := c.Get("a", 3)
	require.True(t, hit)

	c.Put("c", 3, c.Generation(), results("rc"))

	_, hit = c.Get("b", 3)
	assert.False(t, hit)
	_, hit = c.Get("a", 3)
	assert.True(t, hit)
	_, hit = c.Get("c", 3)
	assert.True(t, hit)
}

func TestSizeBounded(t *testing.T) {
	c := NewQueryCache(5, time.Minute)
	for i := 0; i < 20; i++ {
		c.Put(fmt.Sprintf("query %d", i), 3, c.Generation(), results("r"))
	}
	assert.Equal(t, 5, c.Size())
}

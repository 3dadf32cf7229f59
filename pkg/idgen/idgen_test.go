package idgen

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerator_Monotonic(t *testing.T) {
	g := NewGenerator(1)

	prev := g.Next()
	for i := 0; i < 1000; i++ {
		id := g.Next()
		assert.Greater(t, id, prev)
		prev = id
	}
}

func TestGenerator_UniqueUnderConcurrency(t *testing.T) {
	g := NewGenerator(7)

	const workers = 8
	const perWorker = 2000

	var wg sync.WaitGroup
	results := make([][]int64, workers)

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			ids := make([]int64, 0, perWorker)
			for i := 0; i < perWorker; i++ {
				ids = append(ids, g.Next())
			}
			results[w] = ids
		}(w)
	}
	wg.Wait()

	seen := make(map[int64]struct{}, workers*perWorker)
	for _, ids := range results {
		for _, id := range ids {
			_, dup := seen[id]
			assert.False(t, dup, "duplicate id %d", id)
			seen[id] = struct{}{}
		}
	}
	assert.Len(t, seen, workers*perWorker)
}

func TestGenerator_NodeIDEmbedded(t *testing.T) {
	g := NewGenerator(42)

	id := g.Next()
	assert.Equal(t, int64(42), (id>>12)&0x3FF)
}

func TestGenerator_NodeIDTruncatedToTenBits(t *testing.T) {
	g := NewGenerator(1024 + 5)

	id := g.Next()
	assert.Equal(t, int64(5), (id>>12)&0x3FF)
}

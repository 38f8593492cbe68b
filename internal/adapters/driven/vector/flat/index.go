// Package flat provides an exact, brute-force L2 similarity index.
// Rows are identified by insertion position and never reordered, so
// row i always corresponds to entry i of the engine's chunk table.
package flat

import (
	"fmt"
	"sort"
	"sync"

	"github.com/docwhisper-labs/docwhisper-cli/internal/core/domain"
	"github.com/docwhisper-labs/docwhisper-cli/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// Index stores vectors of a fixed dimension and answers exact
// nearest-neighbour queries by scanning all rows. Search cost is
// linear in the number of stored vectors, which is fine for a
// personal document corpus.
type Index struct {
	mu        sync.RWMutex
	dimension int
	vectors   [][]float32
}

// New creates an empty index for vectors of the given dimension.
func New(dimension int) (*Index, error) {
	if dimension <= 0 {
		return nil, fmt.Errorf("%w: dimension must be positive, got %d", domain.ErrInvalidInput, dimension)
	}
	return &Index{dimension: dimension}, nil
}

// Insert appends vectors in order. If any vector's length does not
// match the index dimension, nothing is inserted and the call fails
// with domain.ErrDimensionMismatch.
func (idx *Index) Insert(vectors [][]float32) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	for i, v := range vectors {
		if len(v) != idx.dimension {
			return fmt.Errorf("%w: vector %d has %d dimensions, index expects %d",
				domain.ErrDimensionMismatch, i, len(v), idx.dimension)
		}
	}

	for _, v := range vectors {
		stored := make([]float32, len(v))
		copy(stored, v)
		idx.vectors = append(idx.vectors, stored)
	}
	return nil
}

// Search returns the row indices and squared L2 distances of the k
// nearest vectors, ascending by distance. Ties are broken by
// insertion order, so results are deterministic.
func (idx *Index) Search(query []float32, k int) ([]int, []float32, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	if len(query) != idx.dimension {
		return nil, nil, fmt.Errorf("%w: query has %d dimensions, index expects %d",
			domain.ErrDimensionMismatch, len(query), idx.dimension)
	}
	if k <= 0 || len(idx.vectors) == 0 {
		return nil, nil, nil
	}
	if k > len(idx.vectors) {
		k = len(idx.vectors)
	}

	type hit struct {
		row  int
		dist float32
	}
	hits := make([]hit, len(idx.vectors))
	for i, v := range idx.vectors {
		hits[i] = hit{row: i, dist: squaredL2(query, v)}
	}

	// Stable keeps insertion order for equal distances.
	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].dist < hits[j].dist
	})

	indices := make([]int, k)
	distances := make([]float32, k)
	for i := 0; i < k; i++ {
		indices[i] = hits[i].row
		distances[i] = hits[i].dist
	}
	return indices, distances, nil
}

// Len returns the number of stored vectors.
func (idx *Index) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.vectors)
}

// Dimensions returns the fixed vector dimension.
func (idx *Index) Dimensions() int {
	return idx.dimension
}

// squaredL2 computes the squared Euclidean distance between two
// vectors of equal length. The square root is skipped: ordering is
// unchanged and the distances are only compared, never displayed as
// metric values.
func squaredL2(a, b []float32) float32 {
	var sum float32
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}

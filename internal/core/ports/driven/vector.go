package driven

// VectorIndex provides exact nearest-neighbour search over chunk
// embeddings. Rows are identified by insertion position: row i of the
// index corresponds to entry i of the engine's chunk table, so the
// index must never reorder existing rows.
type VectorIndex interface {
	// Insert appends vectors to the index in order. Every vector must
	// match the index dimension; a mismatch fails with
	// domain.ErrDimensionMismatch and inserts nothing.
	Insert(vectors [][]float32) error

	// Search returns the row indices and squared L2 distances of the k
	// nearest vectors, ascending by distance, ties broken by insertion
	// order. k must not exceed Len; callers clamp.
	Search(query []float32, k int) (indices []int, distances []float32, err error)

	// Len returns the number of stored vectors.
	Len() int

	// Dimensions returns the fixed vector dimension.
	Dimensions() int
}

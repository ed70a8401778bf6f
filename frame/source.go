// SPDX-License-Identifier: MIT

package frame

// Row is one complete observation in expanded form.
//
//   - Nums: numeric feature values, in Schema.Numeric order.
//   - Cats: ascending global indices of the active one-hot levels.
//   - Weight, Response: observation weight and response value.
//
// Iterators reuse the Nums and Cats buffers between calls.
type Row struct {
	Nums     []float64
	Cats     []int
	Weight   float64
	Response float64
}

// Chunk is a pull iterator over one partition of a Source.
//
// Next fills row and reports whether a row was produced; after it returns
// false, Err reports the first error, or nil at a clean end.
type Chunk interface {
	Next(row *Row) bool
	Err() error
}

// Source is a partitioned row supplier. Chunks are independent and may be
// iterated concurrently.
type Source interface {
	Schema() *Schema
	NumChunks() int
	Chunk(i int) (Chunk, error)
}

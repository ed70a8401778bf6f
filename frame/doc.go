// SPDX-License-Identifier: MIT

// Package frame supplies rows to the Gram pipeline.
//
// A Source is split into chunks; each chunk is a pull iterator that fills a
// caller-owned Row with numeric values and the expanded one-hot categorical
// indices in the order the gram accumulator expects. Rows with missing
// values are skipped by the iterator, so every yielded row is complete.
//
// Schema owns the factor ordering: factors are sorted by decreasing
// cardinality so the largest one forms the diagonal region of the statistic.
//
// Memory is the in-memory Source, built from Records directly or from CSV.
package frame

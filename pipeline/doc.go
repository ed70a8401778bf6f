// SPDX-License-Identifier: MIT

// Package pipeline runs a map/reduce Task over the chunks of a frame.Source.
//
// One Task instance is created per chunk and owned by the goroutine that
// iterates the chunk; it is handed over to the reducer only after ChunkDone.
// Two reduction topologies are offered:
//
//	TopologyTree:        p0 p1 p2 p3 p4      pairwise, level by level,
//	                      \ /   \ /  |       each level in parallel
//	                      p01   p23  p4
//	                        \   /    |
//	                        p0123    p4 ...
//
//	TopologySequential:  chunk tasks ──chan──▶ single folding goroutine
//
// The first error cancels every chunk still running. Cancellation of the
// caller's context is observed between chunks and every 1024 rows.
package pipeline

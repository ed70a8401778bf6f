// SPDX-License-Identifier: MIT

package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/katalvlaran/gramian/frame"
)

// ctxCheckRows is how often, in rows, a chunk polls for cancellation.
const ctxCheckRows = 1024

// Task is the per-chunk unit of work.
//
//   - ProcessRow consumes one complete row; the row buffer is reused.
//   - ChunkDone is called once after the last row of the chunk.
//   - Reduce folds other into the receiver; other is not used afterwards.
type Task[T any] interface {
	ProcessRow(row *frame.Row)
	ChunkDone()
	Reduce(other T) error
}

// Stats summarizes a run.
type Stats struct {
	Chunks  int
	Rows    int64
	Elapsed time.Duration
}

// Run creates one task per chunk with newTask, feeds it the chunk's rows,
// and reduces all tasks into one.
//
// With zero chunks the result is a single fresh task.
// On error the zero T is returned with the stats gathered so far.
func Run[T Task[T]](ctx context.Context, src frame.Source, newTask func() (T, error), opts ...Option) (T, Stats, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	start := time.Now()
	n := src.NumChunks()

	ctx, span := otel.Tracer("gramian").Start(ctx, "pipeline.Run",
		trace.WithAttributes(
			attribute.Int("chunks", n),
			attribute.Int("workers", o.workers),
			attribute.String("topology", o.topology.String()),
		),
	)
	defer span.End()

	var (
		zero T
		res  T
		err  error
		rows atomic.Int64
	)
	switch {
	case n == 0:
		res, err = newTask()
	case o.topology == TopologySequential:
		res, err = runSequential(ctx, src, newTask, o, &rows)
	default:
		res, err = runTree(ctx, src, newTask, o, &rows)
	}
	stats := Stats{Chunks: n, Rows: rows.Load(), Elapsed: time.Since(start)}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "run failed")
		o.logger.Error("pipeline_failed",
			slog.Int("chunks", n),
			slog.Int64("rows", stats.Rows),
			slog.String("error", err.Error()),
		)
		return zero, stats, err
	}

	span.SetAttributes(attribute.Int64("rows", stats.Rows))
	span.SetStatus(codes.Ok, "")
	o.logger.Info("pipeline_done",
		slog.Int("chunks", n),
		slog.Int64("rows", stats.Rows),
		slog.String("topology", o.topology.String()),
		slog.Duration("elapsed", stats.Elapsed),
	)

	return res, stats, nil
}

// processChunk runs one chunk through a fresh task.
func processChunk[T Task[T]](ctx context.Context, src frame.Source, i int, newTask func() (T, error), rows *atomic.Int64) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}
	start := time.Now()
	ch, err := src.Chunk(i)
	if err != nil {
		chunksTotal.WithLabelValues("error").Inc()
		return zero, err
	}
	t, err := newTask()
	if err != nil {
		chunksTotal.WithLabelValues("error").Inc()
		return zero, err
	}

	var (
		row frame.Row
		k   int64
	)
	for ch.Next(&row) {
		t.ProcessRow(&row)
		k++
		if k%ctxCheckRows == 0 {
			if err = ctx.Err(); err != nil {
				rows.Add(k)
				chunksTotal.WithLabelValues("canceled").Inc()
				return zero, err
			}
		}
	}
	rows.Add(k)
	rowsTotal.Add(float64(k))
	if err = ch.Err(); err != nil {
		chunksTotal.WithLabelValues("error").Inc()
		return zero, fmt.Errorf("chunk %d: %w", i, err)
	}
	t.ChunkDone()
	chunksTotal.WithLabelValues("ok").Inc()
	chunkDuration.Observe(time.Since(start).Seconds())

	return t, nil
}

// runTree processes all chunks, then reduces them pairwise by chunk index.
func runTree[T Task[T]](ctx context.Context, src frame.Source, newTask func() (T, error), o options, rows *atomic.Int64) (T, error) {
	var zero T
	n := src.NumChunks()
	level := make([]T, n)

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(o.workers)
	for i := 0; i < n; i++ {
		eg.Go(func() error {
			t, err := processChunk(egCtx, src, i, newTask, rows)
			if err != nil {
				return err
			}
			level[i] = t
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return zero, err
	}

	_, span := otel.Tracer("gramian").Start(ctx, "pipeline.reduceTree",
		trace.WithAttributes(attribute.Int("partials", n)))
	defer span.End()

	for len(level) > 1 {
		next := make([]T, (len(level)+1)/2)
		eg = new(errgroup.Group)
		eg.SetLimit(o.workers)
		for i := 0; i+1 < len(level); i += 2 {
			eg.Go(func() error {
				start := time.Now()
				if err := level[i].Reduce(level[i+1]); err != nil {
					return err
				}
				mergeDuration.WithLabelValues(TopologyTree.String()).Observe(time.Since(start).Seconds())
				next[i/2] = level[i]
				return nil
			})
		}
		if len(level)%2 == 1 {
			next[len(next)-1] = level[len(level)-1] // odd one out moves up
		}
		if err := eg.Wait(); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "reduce failed")
			return zero, err
		}
		level = next
	}

	return level[0], nil
}

// runSequential hands each finished task over a channel to one folding
// goroutine.
func runSequential[T Task[T]](ctx context.Context, src frame.Source, newTask func() (T, error), o options, rows *atomic.Int64) (T, error) {
	var zero T
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	parts := make(chan T)
	type folded struct {
		acc T
		ok  bool
		err error
	}
	done := make(chan folded, 1)
	go func() {
		var f folded
		for p := range parts {
			if f.err != nil {
				continue // drain so senders never block
			}
			if !f.ok {
				f.acc, f.ok = p, true
				continue
			}
			start := time.Now()
			if err := f.acc.Reduce(p); err != nil {
				f.err = err
				cancel()
				continue
			}
			mergeDuration.WithLabelValues(TopologySequential.String()).Observe(time.Since(start).Seconds())
		}
		done <- f
	}()

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(o.workers)
	for i := 0; i < src.NumChunks(); i++ {
		eg.Go(func() error {
			t, err := processChunk(egCtx, src, i, newTask, rows)
			if err != nil {
				return err
			}
			select {
			case parts <- t:
				return nil
			case <-egCtx.Done():
				return egCtx.Err()
			}
		})
	}
	err := eg.Wait()
	close(parts)
	f := <-done
	if f.err != nil {
		return zero, f.err // the reduce error caused the cancellation
	}
	if err != nil {
		return zero, err
	}

	return f.acc, nil
}

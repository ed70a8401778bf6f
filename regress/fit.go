// SPDX-License-Identifier: MIT

package regress

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/katalvlaran/gramian/frame"
	"github.com/katalvlaran/gramian/gram"
	"github.com/katalvlaran/gramian/matrix"
	"github.com/katalvlaran/gramian/pipeline"
)

// MinRidge is the smallest penalty tried when escalating from λ = 0.
const MinRidge = 1e-8

// Params controls Fit.
type Params struct {
	Intercept bool

	// Lambda is the initial ridge penalty on the normalized statistic.
	Lambda float64
	// MaxRidgeRetries bounds refactorizations after a non-SPD factor.
	MaxRidgeRetries int
	// RidgeGrowth multiplies λ on every retry.
	RidgeGrowth float64

	Workers       int // concurrent chunks, 0 for GOMAXPROCS
	FactorWorkers int // factorization workers, 0 for GOMAXPROCS
	Topology      pipeline.Topology
	Logger        *slog.Logger
}

// DefaultParams: intercept, no penalty, five retries growing λ tenfold.
func DefaultParams() Params {
	return Params{
		Intercept:       true,
		MaxRidgeRetries: 5,
		RidgeGrowth:     10,
		Topology:        pipeline.TopologyTree,
	}
}

func (p Params) validate() error {
	switch {
	case p.Lambda < 0 || math.IsNaN(p.Lambda):
		return fmt.Errorf("lambda %v: %w", p.Lambda, ErrBadParams)
	case p.MaxRidgeRetries < 0:
		return fmt.Errorf("max ridge retries %d: %w", p.MaxRidgeRetries, ErrBadParams)
	case p.MaxRidgeRetries > 0 && !(p.RidgeGrowth > 1):
		return fmt.Errorf("ridge growth %v must exceed 1: %w", p.RidgeGrowth, ErrBadParams)
	case p.Workers < 0 || p.FactorWorkers < 0:
		return fmt.Errorf("negative worker count: %w", ErrBadParams)
	}

	return nil
}

// Fit accumulates the normal equations over src and solves them.
//
// Implementation:
//   - Stage 1: pipeline.Run with one Task per chunk.
//   - Stage 2: factorize XᵀWX/n + λ·P; while not SPD and retries remain,
//     λ = max(λ·growth, MinRidge) and refactor from a fresh copy.
//   - Stage 3: solve for β and compute the training mean squared error.
//
// Errors:
//   - ErrBadParams for invalid parameters.
//   - ErrNoObservations when no complete row was seen.
//   - ErrNonFinite when the statistics contain NaN or Inf.
//   - gram.ErrNonPositiveDefinite when the retry budget is exhausted.
//   - Any pipeline error (source, cancellation).
func Fit(ctx context.Context, src frame.Source, p Params) (*Model, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}
	schema := src.Schema()
	layout := schema.Layout(p.Intercept)

	ctx, span := otel.Tracer("gramian").Start(ctx, "regress.Fit",
		trace.WithAttributes(
			attribute.Int("columns", layout.FullN()),
			attribute.Int("diag_n", layout.DiagN),
			attribute.Float64("lambda", p.Lambda),
		),
	)
	defer span.End()
	fail := func(err error, msg string) (*Model, error) {
		span.RecordError(err)
		span.SetStatus(codes.Error, msg)
		return nil, err
	}

	// Stage 1: accumulate
	runOpts := []pipeline.Option{pipeline.WithTopology(p.Topology), pipeline.WithLogger(logger)}
	if p.Workers > 0 {
		runOpts = append(runOpts, pipeline.WithWorkers(p.Workers))
	}
	task, stats, err := pipeline.Run(ctx, src, func() (*Task, error) { return NewTask(layout) }, runOpts...)
	if err != nil {
		return fail(err, "accumulation failed")
	}
	if task.Nobs() == 0 {
		return fail(ErrNoObservations, "no observations")
	}
	if task.Gram().HasNaNsOrInfs() {
		return fail(ErrNonFinite, "non-finite gram")
	}

	// Stage 2: factorize with ridge escalation
	var factorOpts []gram.Option
	if p.FactorWorkers > 0 {
		factorOpts = append(factorOpts, gram.WithWorkers(p.FactorWorkers))
	}
	lambda := p.Lambda
	var chol *gram.Cholesky
	for attempt := 0; ; attempt++ {
		g := task.Gram()
		if lambda > 0 {
			g = g.Clone()
			g.AddDiag(lambda)
		}
		start := time.Now()
		chol, err = gram.Factorize(g, factorOpts...)
		if err != nil {
			return fail(err, "factorize failed")
		}
		factorizeDuration.Observe(time.Since(start).Seconds())
		if chol.IsSPD() {
			factorizeTotal.WithLabelValues("spd").Inc()
			break
		}
		factorizeTotal.WithLabelValues("not_spd").Inc()
		if attempt == p.MaxRidgeRetries {
			err = fmt.Errorf("lambda %g after %d retries: %w", lambda, attempt, gram.ErrNonPositiveDefinite)
			return fail(err, "not positive definite")
		}
		next := math.Max(lambda*p.RidgeGrowth, MinRidge)
		logger.Warn("ridge_escalation",
			slog.Float64("lambda", lambda),
			slog.Float64("next_lambda", next),
			slog.Int("attempt", attempt+1),
		)
		ridgeRetries.Inc()
		lambda = next
	}

	// Stage 3: solve
	beta, err := chol.SolveVec(task.Xy())
	if err != nil {
		return fail(err, "solve failed")
	}
	mse, err := meanSquaredError(task, beta)
	if err != nil {
		return fail(err, "residual failed")
	}

	m := &Model{
		Beta:    beta,
		Lambda:  lambda,
		Nobs:    task.Nobs(),
		Columns: schema.ColumnNames(p.Intercept),
		MSE:     mse,
		layout:  layout,
		schema:  schema,
	}
	span.SetAttributes(
		attribute.Int64("nobs", m.Nobs),
		attribute.Float64("final_lambda", lambda),
	)
	span.SetStatus(codes.Ok, "")
	logger.Info("fit_done",
		slog.Int64("nobs", m.Nobs),
		slog.Int("chunks", stats.Chunks),
		slog.Float64("lambda", lambda),
		slog.Bool("spd", true),
		slog.Float64("mse", mse),
	)

	return m, nil
}

// meanSquaredError is the weighted training MSE from the normalized
// statistics: yᵀWy/n − 2βᵀXᵀWy/n + βᵀ(XᵀWX/n)β.
func meanSquaredError(t *Task, beta []float64) (float64, error) {
	xx, err := t.Gram().XX()
	if err != nil {
		return 0, err
	}
	gb, err := matrix.MatVec(xx, beta)
	if err != nil {
		return 0, err
	}
	mse := t.Yy()
	for i, b := range beta {
		mse += b*gb[i] - 2*b*t.Xy()[i]
	}

	return math.Max(mse, 0), nil
}

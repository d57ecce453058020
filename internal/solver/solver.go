// Package solver runs the branch-and-bound search over sofa nodes: each
// node is split along the axis whose bisection removes the most area, the
// halves are pruned against the target, and the surviving pool is worked
// in parallel fork-join batches.
package solver

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/sofa-bound/internal/sofa"
	apperrors "github.com/sofa-bound/pkg/errors"
	"github.com/sofa-bound/pkg/parallel"
	"github.com/sofa-bound/pkg/utils"
)

// tracerName identifies this package's spans.
const tracerName = "github.com/sofa-bound/internal/solver"

// Config holds the solver tuning knobs.
type Config struct {
	// Workers is the number of parallel workers per batch.
	Workers int
	// BatchIterations bounds the iterations one worker runs before its
	// survivors return to the pool for redistribution.
	BatchIterations int
	// ProgressInterval is the iteration period of worker progress logs.
	ProgressInterval int
}

// Result summarizes a completed run. A normal run ends with an empty pool:
// every node either fell below the target or was split to exhaustion.
type Result struct {
	TotalIterations uint64
	Batches         int
}

// Solver prunes sofa nodes against a target area.
type Solver struct {
	target *big.Rat
	cfg    Config
	logger utils.Logger
	tracer trace.Tracer
	timer  *utils.Timer
}

// New creates a solver for the given target area.
func New(target *big.Rat, cfg Config, logger utils.Logger) *Solver {
	if cfg.Workers <= 0 {
		cfg.Workers = parallel.DefaultPoolConfig().MaxWorkers
	}
	if cfg.BatchIterations <= 0 {
		cfg.BatchIterations = 10000
	}
	if cfg.ProgressInterval <= 0 {
		cfg.ProgressInterval = 1000
	}
	if logger == nil {
		logger = &utils.NullLogger{}
	}
	return &Solver{
		target: target,
		cfg:    cfg,
		logger: logger,
		tracer: otel.Tracer(tracerName),
		timer:  utils.NewTimer("solver", utils.WithLogger(logger)),
	}
}

// branch splits a node along its maximum-gain axis and returns the two
// children. The scan must find a strictly positive gain, and each child
// must account exactly for the area its sibling bisection removes; either
// failure means a corrupted node, which aborts rather than poisoning the
// pool.
func (s *Solver) branch(node *sofa.Sofa) (*sofa.Sofa, *sofa.Sofa) {
	bestIdx := 0
	bestMu := false
	best := node.HalveGain(0, sofa.NuDown)
	for i := 0; i < node.N; i++ {
		for _, t := range sofa.HalveTypes {
			if i == node.MuFixIdx && t.IsMu() {
				continue
			}
			if g := node.HalveGain(i, t); best.Cmp(g) < 0 {
				best, bestIdx, bestMu = g, i, t.IsMu()
			}
		}
	}
	if best.Sign() <= 0 {
		panic(fmt.Sprintf("solver: no positive gain on node with area %s", node.Area.RatString()))
	}

	downType, upType := sofa.NuDown, sofa.NuUp
	if bestMu {
		downType, upType = sofa.MuDown, sofa.MuUp
	}
	down := node.Halve(bestIdx, downType)
	up := node.Halve(bestIdx, upType)
	assertGain(node, down, bestIdx, downType)
	assertGain(node, up, bestIdx, upType)
	return down, up
}

// assertGain checks child.Area + parent.HalveGain(idx, t) == parent.Area.
func assertGain(parent, child *sofa.Sofa, idx int, t sofa.HalveType) {
	sum := new(big.Rat).Add(child.Area, parent.HalveGain(idx, t))
	if sum.Cmp(parent.Area) != 0 {
		panic(fmt.Sprintf("solver: gain mismatch halving axis (%d, %s): %s + gain != %s",
			idx, t, child.Area.RatString(), parent.Area.RatString()))
	}
}

// batchInput is one worker's share of the pool for a batch.
type batchInput struct {
	worker int
	nodes  []*sofa.Sofa
}

// batchOutput is what a worker hands back: the nodes it did not finish and
// how many iterations it spent.
type batchOutput struct {
	nodes      []*sofa.Sofa
	iterations uint64
}

// runWorker explores its own stack LIFO until it drains or the batch
// iteration bound is hit. No state is shared with other workers.
func (s *Solver) runWorker(in batchInput) batchOutput {
	nodes := in.nodes
	var iters uint64
	bound := uint64(s.cfg.BatchIterations)

	for len(nodes) > 0 && iters < bound {
		node := nodes[len(nodes)-1]
		nodes = nodes[:len(nodes)-1]

		if node.Area.Cmp(s.target) >= 0 {
			down, up := s.branch(node)
			if down.Area.Cmp(s.target) >= 0 {
				nodes = append(nodes, down)
			}
			if up.Area.Cmp(s.target) >= 0 {
				nodes = append(nodes, up)
			}
		}

		iters++
		if iters%uint64(s.cfg.ProgressInterval) == 0 && len(nodes) > 0 {
			top := nodes[len(nodes)-1]
			area, _ := top.Area.Float64()
			s.logger.Info("worker %d iterations %d depth %d area %g",
				in.worker, iters, len(nodes), area)
			s.logger.Debug("worker %d mu %s nu %s",
				in.worker, formatRanges(top.MuRange), formatRanges(top.NuRange))
		}
	}

	return batchOutput{nodes: nodes, iterations: iters}
}

// formatRanges renders intervals the way progress output always has:
// "[max, min]" per axis.
func formatRanges(ranges []sofa.Interval) string {
	var sb strings.Builder
	for i, iv := range ranges {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "[%s, %s]", iv.Max.RatString(), iv.Min.RatString())
	}
	return sb.String()
}

// Run drains the pool: each batch distributes the nodes round-robin over
// the workers, joins them all, and gathers the survivors. Between batches
// the context may cancel the run; within a batch workers run to completion.
func (s *Solver) Run(ctx context.Context, pool []*sofa.Sofa) (*Result, error) {
	wp := parallel.NewWorkerPool[batchInput, batchOutput](
		parallel.DefaultPoolConfig().WithWorkers(s.cfg.Workers))

	res := &Result{}
	for len(pool) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, apperrors.Wrap(apperrors.CodeSolverError, "run cancelled between batches", err)
		}
		res.Batches++

		s.logger.Info("batch #%d pool %d total iterations %d",
			res.Batches, len(pool), res.TotalIterations)
		bctx, span := s.tracer.Start(ctx, "solver.batch", trace.WithAttributes(
			attribute.Int("solver.batch", res.Batches),
			attribute.Int("solver.pool_size", len(pool)),
		))
		phase := s.timer.Start(fmt.Sprintf("batch-%d", res.Batches))

		chunks := make([]batchInput, s.cfg.Workers)
		for i := range chunks {
			chunks[i].worker = i
		}
		for i, node := range pool {
			w := i % s.cfg.Workers
			chunks[w].nodes = append(chunks[w].nodes, node)
		}

		results := wp.ExecuteFunc(bctx, chunks,
			func(_ context.Context, in batchInput) (batchOutput, error) {
				return s.runWorker(in), nil
			})

		pool = pool[:0]
		var batchIters uint64
		for _, r := range results {
			pool = append(pool, r.Result.nodes...)
			batchIters += r.Result.iterations
		}
		res.TotalIterations += batchIters

		span.SetAttributes(
			attribute.Int64("solver.batch_iterations", int64(batchIters)),
			attribute.Int("solver.survivors", len(pool)),
		)
		span.End()
		phase.Stop()
	}

	s.timer.Summary()
	return res, nil
}

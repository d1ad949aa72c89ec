package simulate

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/katalvlaran/pathrec/config"
	"github.com/katalvlaran/pathrec/core"
	"github.com/katalvlaran/pathrec/matrix"
	"github.com/katalvlaran/pathrec/nodeindex"
	"github.com/katalvlaran/pathrec/recorder"
	"github.com/katalvlaran/pathrec/stats"
	"github.com/katalvlaran/pathrec/tracker"
)

var tracer = otel.Tracer("pathrec.simulate")

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the structured logger. Panics on nil.
func WithLogger(l *slog.Logger) Option {
	if l == nil {
		panic("simulate: WithLogger(nil)")
	}

	return func(r *Runner) { r.logger = l }
}

// Runner executes a simulated search over one graph.
type Runner struct {
	graph  *core.Graph
	idx    *nodeindex.Index
	probs  map[string]float64
	output string
	params config.Run
	logger *slog.Logger
}

// Result is the merged outcome of a run.
type Result struct {
	RunID      string
	Iterations int                // iterations folded into Weights
	Weights    map[string]float64 // posterior usage per node
	Snapshot   recorder.Snapshot
	Recorder   *recorder.Recorder // holds the merged statistics
	Elapsed    time.Duration
}

// NewRunner validates params and indexes g once.
func NewRunner(g *core.Graph, probs map[string]float64, output string, params config.Run, opts ...Option) (*Runner, error) {
	if g == nil {
		return nil, fmt.Errorf("simulate: %w", tracker.ErrNilGraph)
	}
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("simulate: %w", err)
	}
	idx, err := nodeindex.FromGraph(g)
	if err != nil {
		return nil, fmt.Errorf("simulate: %w", err)
	}
	if _, err = idx.Index(output); err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownOutput, output)
	}
	r := &Runner{
		graph:  g,
		idx:    idx,
		probs:  probs,
		output: output,
		params: params,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(r)
	}

	return r, nil
}

// FromConfig builds a Runner from a parsed graph file and its run section.
func FromConfig(f *config.File, opts ...Option) (*Runner, error) {
	g, err := f.Graph()
	if err != nil {
		return nil, err
	}
	out, err := f.OutputNode()
	if err != nil {
		return nil, err
	}

	return NewRunner(g, f.Probabilities(), out, f.Run, opts...)
}

// Run splits the iterations over the workers, each with its own recorder
// and a sampler seeded with Seed+worker, then merges the estimates in
// worker order. The result depends only on the parameters, not on
// goroutine scheduling.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	runID := uuid.NewString()
	p := r.params
	ctx, span := tracer.Start(ctx, "simulate.Run",
		trace.WithAttributes(
			attribute.String("run.id", runID),
			attribute.Int("run.iterations", p.Iterations),
			attribute.Int("run.batch", p.Batch),
			attribute.Int("run.workers", p.Workers),
			attribute.Int("graph.nodes", r.idx.Len()),
		),
	)
	defer span.End()

	logger := r.logger.With(slog.String("run_id", runID))
	logger.Info("simulation started",
		slog.Int("iterations", p.Iterations),
		slog.Int("batch", p.Batch),
		slog.Int("workers", p.Workers))

	means := make([]*stats.RunningMean, p.Workers)
	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < p.Workers; w++ {
		iters := p.Iterations / p.Workers
		if w < p.Iterations%p.Workers {
			iters++
		}
		if iters == 0 {
			continue
		}
		g.Go(func() error {
			rm, err := r.work(gctx, w, iters, logger)
			if err != nil {
				return fmt.Errorf("simulate: worker %d: %w", w, err)
			}
			means[w] = rm
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	merged, err := stats.NewRunningMean(r.idx.Len())
	if err != nil {
		return nil, fmt.Errorf("simulate: %w", err)
	}
	for _, rm := range means {
		if err = merged.Merge(rm); err != nil {
			return nil, fmt.Errorf("simulate: merge: %w", err)
		}
	}
	rec, err := r.recorder(tracker.WithRunningMean(merged))
	if err != nil {
		return nil, err
	}
	weights, err := rec.PosteriorWeights()
	if err != nil {
		return nil, fmt.Errorf("simulate: %w", err)
	}

	res := &Result{
		RunID:      runID,
		Iterations: merged.Count(),
		Weights:    weights,
		Snapshot:   rec.Snapshot(),
		Recorder:   rec,
		Elapsed:    time.Since(start),
	}
	span.SetStatus(codes.Ok, "")
	logger.Info("simulation finished",
		slog.Int("iterations", res.Iterations),
		slog.Duration("elapsed", res.Elapsed))

	return res, nil
}

// work runs iters forward passes on a private recorder and returns its
// estimator after the final flush.
func (r *Runner) work(ctx context.Context, w, iters int, logger *slog.Logger) (*stats.RunningMean, error) {
	rec, err := r.recorder(tracker.WithLogger(logger.With(slog.Int("worker", w))))
	if err != nil {
		return nil, err
	}
	s, err := NewSampler(r.idx.Nodes(), r.probs, r.output, WithSeed(r.params.Seed+int64(w)))
	if err != nil {
		return nil, err
	}
	input, err := matrix.NewDense(r.params.Batch, s.InputSize())
	if err != nil {
		return nil, err
	}
	for i := 0; i < iters; i++ {
		if err = s.Forward(ctx, input, rec); err != nil {
			return nil, err
		}
	}
	// The last iteration is only counted once another one starts.
	if err = rec.StartIteration(); err != nil {
		return nil, err
	}
	logger.Debug("worker done", slog.Int("worker", w), slog.Int("iterations", iters))

	return rec.Stats(), nil
}

func (r *Runner) recorder(opts ...tracker.Option) (*recorder.Recorder, error) {
	opts = append([]tracker.Option{tracker.WithDefaultOutput(r.output)}, opts...)
	rec, err := recorder.New(r.graph, r.idx.Nodes(), opts...)
	if err != nil {
		return nil, fmt.Errorf("simulate: %w", err)
	}

	return rec, nil
}

package tracker

import (
	"log/slog"

	"github.com/katalvlaran/pathrec/stats"
)

// Option configures a Tracker at construction time.
type Option func(*options)

type options struct {
	defaultOut string // "" means none
	logger     *slog.Logger
	strict     bool
	mean       *stats.RunningMean
}

func defaultOptions() options {
	return options{
		logger: slog.New(slog.DiscardHandler),
		strict: true,
	}
}

// WithDefaultOutput designates the node whose pruned architecture is folded
// into the running mean when an iteration ends. New fails with
// nodeindex.ErrNotFound if the node is not indexed.
func WithDefaultOutput(node string) Option {
	return func(o *options) { o.defaultOut = node }
}

// WithLogger sets the structured logger. Panics on nil.
func WithLogger(l *slog.Logger) Option {
	if l == nil {
		panic("tracker: WithLogger(nil)")
	}

	return func(o *options) { o.logger = l }
}

// WithStrictOrder toggles recording-order validation (default true). When
// enabled, RecordDecision rejects a node whose predecessors were not yet
// recorded in the iteration and a node recorded twice. When disabled the
// caller owns that contract and misuse yields wrong masks, not errors.
func WithStrictOrder(strict bool) Option {
	return func(o *options) { o.strict = strict }
}

// WithRunningMean supplies the estimator the tracker folds iterations into,
// e.g. one restored from a snapshot. Its length must equal the node count.
// Panics on nil.
func WithRunningMean(rm *stats.RunningMean) Option {
	if rm == nil {
		panic("tracker: WithRunningMean(nil)")
	}

	return func(o *options) { o.mean = rm }
}

package paretoq

import "runtime"

// Options configures tree behavior.
type Options struct {
	// leafParameter is the leaf fanout parameter k. A leaf holds at most
	// max(8, k) keys and, except for the root, at least k/4.
	leafParameter int

	// branchingParameter is the inner fanout parameter b. An inner node holds
	// at most 4*b slots and, except for the root, at least b/4.
	branchingParameter int

	// maxWorkers bounds the number of concurrently leased worker slots and
	// sizes per-worker scratch state.
	maxWorkers int

	// recursionEndLevel is the tree level below which the Pareto-minima
	// traversal stops spawning subtree tasks and scans serially.
	recursionEndLevel int

	// rewriteThreshold is the net key growth of an update range, measured in
	// designated-size leaves, required before a single-leaf rewrite is split
	// across workers.
	rewriteThreshold int

	// selfVerify re-checks all structural invariants after every batch and
	// panics on violation. It also validates batch ordering up front.
	selfVerify bool

	logger Logger
}

// defaultOptions returns the configuration used when no options are given.
func defaultOptions() Options {
	return Options{
		leafParameter:      64,
		branchingParameter: 8,
		maxWorkers:         runtime.GOMAXPROCS(0),
		recursionEndLevel:  3,
		rewriteThreshold:   2,
		logger:             DiscardLogger{},
	}
}

// Option configures tree options using the functional options pattern.
type Option func(*Options)

// WithLeafParameter sets the leaf fanout parameter k. Values below 8 are
// rejected at construction time.
func WithLeafParameter(k int) Option {
	return func(opts *Options) {
		opts.leafParameter = k
	}
}

// WithBranchingParameter sets the inner fanout parameter b. Values below 8
// are rejected at construction time.
func WithBranchingParameter(b int) Option {
	return func(opts *Options) {
		opts.branchingParameter = b
	}
}

// WithMaxWorkers sets the number of worker slots used by parallel batch
// application and Pareto-minima traversal. Defaults to GOMAXPROCS.
func WithMaxWorkers(n int) Option {
	return func(opts *Options) {
		opts.maxWorkers = n
	}
}

// WithRecursionEndLevel sets the tree level below which Pareto-minima
// traversal runs serially on the current worker.
func WithRecursionEndLevel(level int) Option {
	return func(opts *Options) {
		opts.recursionEndLevel = level
	}
}

// WithRewriteThreshold sets the minimum net key growth of an update range,
// measured in designated leaves, at which a leaf rewrite is parallelized.
func WithRewriteThreshold(n int) Option {
	return func(opts *Options) {
		opts.rewriteThreshold = n
	}
}

// WithSelfVerify enables invariant verification after every applied batch.
// Intended for tests and debugging; verification walks the whole tree.
func WithSelfVerify() Option {
	return func(opts *Options) {
		opts.selfVerify = true
	}
}

// WithLogger sets the logger used for structural events such as root
// rebuilds. Defaults to DiscardLogger.
func WithLogger(l Logger) Option {
	return func(opts *Options) {
		opts.logger = l
	}
}

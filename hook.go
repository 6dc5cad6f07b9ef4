package reactive

// Hook observes transaction and propagation lifecycle events.
// Implementations should embed BaseHook and override only what they need.
type Hook interface {
	// OnTransactionStart fires when an outermost Write/Batch/Computation
	// construction opens a new transaction.
	OnTransactionStart()
	// OnTransactionEnd fires when that transaction closes, err non-nil if
	// propagation aborted.
	OnTransactionEnd(err error)
	// OnStale fires once per computation transitioned to Stale during a
	// mark phase.
	OnStale(name string)
	// OnRecompute fires after a computation's thunk finishes running, err
	// non-nil if it failed.
	OnRecompute(name string, err error)
	// OnCyclicAbort fires when propagation aborts due to a cyclic
	// dependency or a non-terminating iteration cap.
	OnCyclicAbort(err error)
}

// BaseHook supplies no-op defaults for every Hook method, so an
// implementation only needs to override the events it cares about.
type BaseHook struct{}

func (BaseHook) OnTransactionStart()             {}
func (BaseHook) OnTransactionEnd(err error)       {}
func (BaseHook) OnStale(name string)              {}
func (BaseHook) OnRecompute(name string, e error) {}
func (BaseHook) OnCyclicAbort(err error)          {}

// RuntimeConfig holds process-wide, opt-in engine configuration. There is exactly one in force at
// a time, set via Configure.
type RuntimeConfig struct {
	maxIterations int
	hooks         []Hook
}

var cfg = &RuntimeConfig{}

// RuntimeOption configures the engine via Configure, following the same
// functional-option pattern as DataOption and CompOption.
type RuntimeOption func(*RuntimeConfig)

// Configure applies opts to the process-wide runtime configuration. Safe to
// call multiple times; later calls layer on top of earlier ones except
// where an option replaces a value outright (e.g. WithMaxIterations).
func Configure(opts ...RuntimeOption) {
	for _, o := range opts {
		o(cfg)
	}
}

// WithMaxIterations caps the number of propagation rounds a single
// transaction may run before it is aborted with a NonTerminatingError.
// The default, n<=0, is unbounded.
func WithMaxIterations(n int) RuntimeOption {
	return func(c *RuntimeConfig) { c.maxIterations = n }
}

// WithHook registers an observer for transaction and propagation events.
func WithHook(h Hook) RuntimeOption {
	return func(c *RuntimeConfig) { c.hooks = append(c.hooks, h) }
}

// Stats reports process-wide node counts for tests and debugging.
type Stats struct {
	DataNodes        int
	Computations     int
	LiveComputations int
}

// RuntimeStats returns a snapshot of every node constructed through this
// package's public API, for tests and debugging. This registry exists purely for
// diagnostics; it never influences propagation.
func RuntimeStats() Stats {
	live := 0
	for _, c := range allComputations {
		if c.state != stateDisposed {
			live++
		}
	}
	return Stats{
		DataNodes:        len(allDataNodes),
		Computations:     len(allComputations),
		LiveComputations: live,
	}
}

// GraphSnapshot is a point-in-time export of the subscription graph, keyed
// by node label, for rendering by extensions/debug.go.
type GraphSnapshot map[string][]string

// ExportGraph walks every node ever constructed, except computations that
// have been disposed, and lists each one's current dependents by label.
func ExportGraph() GraphSnapshot {
	g := make(GraphSnapshot)
	for _, d := range allDataNodes {
		g[d.label()] = labelsOf(d.deps)
	}
	for _, c := range allComputations {
		if c.state == stateDisposed {
			continue
		}
		g[c.label()] = labelsOf(c.deps)
	}
	return g
}

func labelsOf(deps []dependentRef) []string {
	names := make([]string, 0, len(deps))
	for _, d := range deps {
		names = append(names, d.comp.label())
	}
	return names
}

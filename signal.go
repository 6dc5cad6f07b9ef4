package reactive

// Scheduler receives the real update closure for a computation built with
// Defer, and decides when to invoke it. The engine never calls it itself;
// a caller that never invokes realUpdate leaves that computation
// Pending-update indefinitely.
type Scheduler func(realUpdate func())

// Readable is implemented by every handle this package hands out: data,
// accumulator, and computation handles alike.
type Readable[T any] interface {
	Get() (T, error)
}

// dataConfig and compConfig hold construction-time options, following the
// functional-options pattern used throughout this package.
type dataConfig struct {
	name string
}

// DataOption configures a data or accumulator node at construction.
type DataOption func(*dataConfig)

// WithName attaches a diagnostic label to a data or accumulator node,
// surfaced in ExportGraph and error messages instead of a raw pointer.
func WithName(name string) DataOption {
	return func(c *dataConfig) { c.name = name }
}

type compConfig struct {
	name      string
	orphan    bool
	scheduler Scheduler
}

// CompOption configures a computation at construction.
type CompOption func(*compConfig)

// WithCompName attaches a diagnostic label to a computation.
func WithCompName(name string) CompOption {
	return func(c *compConfig) { c.name = name }
}

// Orphan declines adoption by the enclosing owner: the computation's
// lifetime is managed by the caller, not cascaded from a parent's disposal
// or re-run.
func Orphan() CompOption {
	return func(c *compConfig) { c.orphan = true }
}

// Defer installs a scheduler that decides when the computation's real
// update runs, instead of running synchronously inline.
func Defer(sched Scheduler) CompOption {
	return func(c *compConfig) { c.scheduler = sched }
}

// DataHandle is a readable, writable handle onto a plain data node.
type DataHandle[T any] struct{ node *DataNode }

// Data creates a mutable cell holding initial.
func Data[T any](initial T, opts ...DataOption) *DataHandle[T] {
	cfg := dataConfig{}
	for _, o := range opts {
		o(&cfg)
	}
	node := &DataNode{nameStr: cfg.name, current: initial}
	allDataNodes = append(allDataNodes, node)
	return &DataHandle[T]{node: node}
}

// Get reads the current value, recording a subscription if called from
// within a running computation.
func (h *DataHandle[T]) Get() (T, error) {
	v, _ := SafeTypeAssertion[T](readData(h.node))
	return v, nil
}

// Peek reads the current value without recording a subscription, regardless
// of whether a computation is currently running.
func (h *DataHandle[T]) Peek() T {
	v, _ := SafeTypeAssertion[T](h.node.current)
	return v
}

// Set stages v as the node's next value (last-write-wins within the current
// transaction round) and drives propagation if this call opens the
// transaction.
func (h *DataHandle[T]) Set(v T) error {
	return withTransaction(func() error {
		stageWrite(currentTxn, h.node, v, false)
		return nil
	})
}

// AccumulatorHandle is a readable, reducer-writable handle onto an
// accumulator data node.
type AccumulatorHandle[T any] struct{ node *DataNode }

// Accumulator creates a data node whose writes compose via a reducer rather
// than overwrite.
func Accumulator[T any](initial T, opts ...DataOption) *AccumulatorHandle[T] {
	cfg := dataConfig{}
	for _, o := range opts {
		o(&cfg)
	}
	node := &DataNode{nameStr: cfg.name, current: initial, accumulate: true}
	allDataNodes = append(allDataNodes, node)
	return &AccumulatorHandle[T]{node: node}
}

// Get reads the current accumulated value, recording a subscription if
// called from within a running computation.
func (h *AccumulatorHandle[T]) Get() (T, error) {
	v, _ := SafeTypeAssertion[T](readData(h.node))
	return v, nil
}

// Peek reads the current accumulated value without recording a subscription.
func (h *AccumulatorHandle[T]) Peek() T {
	v, _ := SafeTypeAssertion[T](h.node.current)
	return v
}

// Update stages fn to compose with any other reducer already staged this
// round, in write order, at commit time.
func (h *AccumulatorHandle[T]) Update(fn func(T) T) error {
	return withTransaction(func() error {
		stageWrite(currentTxn, h.node, func(old any) any {
			typed, _ := SafeTypeAssertion[T](old)
			return fn(typed)
		}, true)
		return nil
	})
}

// CompHandle is a readable handle onto a computation node.
type CompHandle[T any] struct{ node *computationNode }

// Computation builds a computation, adopts it into the currently running
// computation (unless Orphan is given), and runs thunk once immediately with
// full context set up.
func Computation[T any](thunk func() (T, error), opts ...CompOption) (*CompHandle[T], error) {
	cfg := compConfig{}
	for _, o := range opts {
		o(&cfg)
	}
	c := &computationNode{
		nameStr:   cfg.name,
		orphaned:  cfg.orphan,
		scheduler: cfg.scheduler,
	}
	c.thunk = func() (any, error) { return thunk() }
	adopt(currentOwner, c)
	allComputations = append(allComputations, c)
	err := withTransaction(func() error {
		return clearAndRun(c)
	})
	return &CompHandle[T]{node: c}, err
}

// Get reads the computation's memoized value, resolving it out of order
// first if it is currently Stale.
func (h *CompHandle[T]) Get() (T, error) {
	val, err := readComputation(h.node)
	if err != nil {
		var zero T
		return zero, err
	}
	v, _ := SafeTypeAssertion[T](val)
	return v, nil
}

// Read is the free-function form of h.Get(), offered for parity with the
// engine's write/sample/batch free functions.
func Read[T any](h Readable[T]) (T, error) {
	return h.Get()
}

// Write is the free-function form of h.Set(v).
func Write[T any](h *DataHandle[T], v T) error {
	return h.Set(v)
}

// Reduce is the free-function form of h.Update(fn), for accumulator nodes.
func Reduce[T any](h *AccumulatorHandle[T], fn func(T) T) error {
	return h.Update(fn)
}

// Sample runs fn with subscription recording suspended, so any reads inside
// fn do not add dependencies to the enclosing computation. Children
// constructed inside fn are still adopted by the enclosing computation.
func Sample[T any](fn func() T) T {
	var result T
	withSample(func() { result = fn() })
	return result
}

// Batch runs fn inside a single transaction, so every write performed
// inside it is staged and propagated together in one fixed-point pass
// rather than one pass per write. Nesting Batch inside an already-open
// transaction folds into the outer one.
func Batch[T any](fn func() T) (T, error) {
	var result T
	err := withTransaction(func() error {
		result = fn()
		return nil
	})
	return result, err
}

// OnCleanup registers fn to run against the currently executing computation:
// with final=false ahead of its next re-run, and with final=true at
// disposal. Called outside of any computation, it is a silent no-op.
func OnCleanup(fn func(final bool)) {
	registerCleanup(fn)
}

// Dispose tears down h's computation: runs final cleanups, releases its
// sources, and recursively disposes its non-orphan children.
func Dispose[T any](h *CompHandle[T]) {
	disposeComputation(h.node)
}

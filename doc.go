// Package reactive implements a fine-grained reactive runtime: a dependency
// graph of mutable data cells and re-runnable computations, wired together
// automatically by tracking which cells a computation reads while it runs.
//
// # Overview
//
// Three kinds of value make up a graph:
//
//  1. Data nodes: mutable cells created with Data or Accumulator.
//  2. Computations: re-runnable thunks created with Computation, which
//     subscribe to whatever they read during their most recent run.
//  3. Handles: the typed view returned by every constructor (DataHandle and
//     AccumulatorHandle can be read and written; CompHandle is read-only).
//
// # Basic usage
//
//	count := reactive.Data(0)
//
//	doubled, err := reactive.Computation(func() (int, error) {
//	    v, _ := count.Get()
//	    return v * 2, nil
//	})
//
//	v, _ := doubled.Get() // 0
//	count.Set(5)
//	v, _ = doubled.Get() // 10, recomputed automatically
//
// Reading count.Get() inside doubled's thunk is what creates the
// subscription; there is no separate dependency declaration step. A
// computation that reads a different set of nodes on its next run ends up
// subscribed to that new set and nothing else — dependencies are rediscovered
// on every run, not accumulated.
//
// # Batched writes
//
// Writes inside Batch are staged and propagated together as one transaction,
// rather than one propagation pass per write:
//
//	reactive.Batch(func() any {
//	    a.Set(1)
//	    b.Set(2)
//	    return nil
//	})
//
// A write outside of Batch opens and closes its own one-write transaction
// the same way.
//
// # Accumulators
//
// An Accumulator node composes writes with a reducer instead of overwriting:
//
//	log := reactive.Accumulator[[]string](nil)
//	log.Update(func(prev []string) []string { return append(prev, "event") })
//
// # Sampling
//
// Sample reads a node's value without subscribing the enclosing computation
// to it:
//
//	reactive.Computation(func() (int, error) {
//	    base, _ := a.Get()                                    // subscribed
//	    extra := reactive.Sample(func() int { v, _ := b.Get(); return v }) // not subscribed
//	    return base + extra, nil
//	})
//
// # Cleanup and disposal
//
// OnCleanup registers a callback against the currently running computation,
// invoked before its next re-run (final=false) and when it is disposed
// (final=true). Dispose tears a computation down immediately, cascading to
// every child computation it owns unless that child was built with Orphan.
//
// # Out-of-order resolution
//
// A computation that reads another computation still marked Stale (because
// propagation hasn't reached it yet this round) forces that dependency to
// resolve immediately, then restarts its own run from the beginning once the
// dependency is current. A cycle — reading a node that is itself mid-run or
// mid-resolution — reports a CyclicDependencyError instead of recursing
// forever.
//
// # Diagnostics
//
// RuntimeStats and ExportGraph expose counts and the current subscription
// graph for debugging; Configure registers Hook implementations (see the
// extensions subpackage) that observe transaction and propagation events
// without participating in them.
//
// # Thread safety
//
// The runtime is single-threaded and cooperative by design, not an
// incidental limitation: every operation assumes it runs to completion
// before the next one starts. Calling into this package from multiple
// goroutines concurrently is not supported.
package reactive

package reactive

import (
	"fmt"
	"runtime/debug"
)

// runRound executes one full mark/update pass seeded from the data nodes
// that changed this commit.
func runRound(txn *transaction, changed []*DataNode) error {
	txn.markQueue = txn.markQueue[:0]
	for _, node := range changed {
		mark(txn, node)
	}
	return runUpdatePhase(txn)
}

// mark walks outward from src over the dependents graph, transitioning each
// reachable, not-yet-stale computation to Stale, detaching its non-orphan
// children, running its non-final cleanups, and enqueueing it for the update
// phase. Traversal continues through a marked node's own dependents, since a
// computation is itself a source for others.
func mark(txn *transaction, src sourceNode) {
	for _, dep := range *src.dependents() {
		c := dep.comp
		if c.state == stateStale || c.state == statePendingUpdate || c.state == stateDisposed {
			continue
		}
		c.state = stateStale
		disposeChildrenOf(c)
		runCleanupsOf(c, false)
		for _, h := range cfg.hooks {
			h.OnStale(c.label())
		}
		txn.markQueue = append(txn.markQueue, c)
		mark(txn, c)
	}
}

// runUpdatePhase drains the mark queue in enqueue order, re-running each
// computation still Stale. A computation already
// resolved out of order by the resolver (see resolver.go) is skipped when
// its turn comes up.
func runUpdatePhase(txn *transaction) error {
	for len(txn.markQueue) > 0 {
		c := txn.markQueue[0]
		txn.markQueue = txn.markQueue[1:]
		if c.state != stateStale {
			continue
		}
		if err := runComputation(c); err != nil {
			return err
		}
	}
	return nil
}

// runComputation re-runs c, honoring a registered defer-modifier scheduler
// by handing it a closure that performs the real update. Without a scheduler, the update happens synchronously.
func runComputation(c *computationNode) error {
	if c.scheduler == nil {
		return clearAndRun(c)
	}
	c.state = statePendingUpdate
	c.scheduler(func() {
		if c.state != statePendingUpdate {
			return
		}
		txn, isOuter := beginTxn()
		err := clearAndRun(c)
		if isOuter {
			if err == nil {
				err = propagate(txn)
			}
			endTxn()
		}
		_ = err // surfaced only via hooks for deferred runs; see extensions/trace.go
	})
	return nil
}

// clearAndRun executes c's thunk with full context set up, restarting from
// the beginning whenever the out-of-order resolver had to interrupt this run
// to resolve a Stale source mid-flight. A thunk failure leaves c Stale with
// its sources cleared.
func clearAndRun(c *computationNode) error {
	for {
		c.restartRequested = false
		clearSources(c)
		c.state = stateRunning
		val, err := safeInvoke(c)
		if err != nil {
			clearSources(c)
			c.state = stateStale
			for _, h := range cfg.hooks {
				h.OnRecompute(c.label(), err)
			}
			return err
		}
		if c.restartRequested {
			continue
		}
		c.value = val
		c.state = stateCurrent
		for _, h := range cfg.hooks {
			h.OnRecompute(c.label(), nil)
		}
		return nil
	}
}

// safeInvoke runs c's thunk under currentComputation/currentOwner, recovering
// a panic into a ThunkError with a captured stack trace.
func safeInvoke(c *computationNode) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &ThunkError{
				Node:       c.label(),
				Cause:      fmt.Errorf("%v", r),
				StackTrace: debug.Stack(),
			}
		}
	}()
	runAsComputation(c, func() {
		result, err = c.thunk()
	})
	return result, err
}

package reactive

// transaction tracks the data nodes with an uncommitted pending write and
// the worklist of computations marked Stale during the current propagation
// round.
type transaction struct {
	dirty      []*DataNode
	dirtySet   map[*DataNode]bool
	markQueue  []*computationNode
	iterations int
}

func newTransaction() *transaction {
	return &transaction{dirtySet: make(map[*DataNode]bool)}
}

// beginTxn returns the active transaction, opening one if none is active.
// The bool reports whether this call opened it (and is therefore
// responsible for propagating and closing it).
func beginTxn() (*transaction, bool) {
	if currentTxn != nil {
		return currentTxn, false
	}
	t := newTransaction()
	currentTxn = t
	return t, true
}

func endTxn() {
	currentTxn = nil
}

// withTransaction runs body inside a transaction, reusing one already in
// scope if present. Only the call that opened the
// transaction drives it to a fixed point and tears it down; state slots are
// restored on every exit path via defer, including engine-error aborts.
func withTransaction(body func() error) error {
	txn, isOuter := beginTxn()
	if isOuter {
		defer endTxn()
	}
	if hooks := cfg.hooks; isOuter && len(hooks) > 0 {
		for _, h := range hooks {
			h.OnTransactionStart()
		}
	}
	err := body()
	if isOuter {
		if err == nil {
			err = propagate(txn)
		}
		endTxn()
		if hooks := cfg.hooks; len(hooks) > 0 {
			for _, h := range hooks {
				h.OnTransactionEnd(err)
			}
		}
		if err != nil {
			if _, ok := err.(*CyclicDependencyError); ok {
				for _, h := range cfg.hooks {
					h.OnCyclicAbort(err)
				}
			}
			if _, ok := err.(*NonTerminatingError); ok {
				for _, h := range cfg.hooks {
					h.OnCyclicAbort(err)
				}
			}
		}
	}
	return err
}

// stageWrite buffers a pending write on node. For a plain data node the
// payload is the new value and last-write-wins within the round; for an
// accumulator node the payload is a reducer function, and every reducer
// staged this round composes in write order at commit time.
func stageWrite(txn *transaction, node *DataNode, payload any, isReducer bool) {
	if isReducer {
		node.pendingFns = append(node.pendingFns, payload.(func(any) any))
	} else {
		node.pending = payload
	}
	node.hasPending = true
	if !txn.dirtySet[node] {
		txn.dirtySet[node] = true
		txn.dirty = append(txn.dirty, node)
	}
}

// identical reports whether a and b are the same value, used for the
// identity-write no-op check. Values that are not comparable (e.g. a
// slice or map staged as a payload) are treated as never identical rather
// than panicking.
func identical(a, b any) (eq bool) {
	defer func() {
		if recover() != nil {
			eq = false
		}
	}()
	return a == b
}

// commitPending applies every dirty data node's pending write to current,
// bumping its generation, and returns the subset that actually changed
// (accumulator nodes always count as changed; plain nodes only if the new
// value differs by identity from the old one). Nodes that did not change
// are still cleared of their pending state.
func commitPending(txn *transaction) []*DataNode {
	changed := make([]*DataNode, 0, len(txn.dirty))
	for _, node := range txn.dirty {
		if node.accumulate {
			next := node.current
			for _, fn := range node.pendingFns {
				next = fn(next)
			}
			node.pendingFns = node.pendingFns[:0]
			node.current = next
			node.generation++
			changed = append(changed, node)
		} else {
			old := node.current
			next := node.pending
			if !identical(old, next) {
				node.current = next
				node.generation++
				changed = append(changed, node)
			}
		}
		node.pending = nil
		node.hasPending = false
	}
	txn.dirty = txn.dirty[:0]
	for k := range txn.dirtySet {
		delete(txn.dirtySet, k)
	}
	return changed
}

// propagate drives the transaction to a fixed point: commit pending writes,
// mark dependents Stale, run Phase 2, and repeat while further writes were
// staged during that round. A cyclic-dependency or iteration-cap abort stops the loop
// immediately, discarding any writes staged but not yet committed.
func propagate(txn *transaction) error {
	abort := func(err error) error {
		for _, node := range txn.dirty {
			node.pending = nil
			node.pendingFns = node.pendingFns[:0]
			node.hasPending = false
		}
		txn.dirty = txn.dirty[:0]
		return err
	}
	for len(txn.dirty) > 0 {
		if cfg.maxIterations > 0 && txn.iterations >= cfg.maxIterations {
			return abort(&NonTerminatingError{Iterations: txn.iterations})
		}
		changed := commitPending(txn)
		if len(changed) == 0 {
			continue
		}
		txn.iterations++
		if err := runRound(txn, changed); err != nil {
			return abort(err)
		}
	}
	return nil
}

package reactive

// readData reads a data node's current value, recording a subscription if a
// computation is currently running.
func readData(d *DataNode) any {
	recordRead(d)
	return d.current
}

// readComputation reads a computation node's memoized value, resolving it
// out of order first if it is Stale.
// Re-entering a node that is already Running or Suspended reports a cyclic
// dependency rather than recursing forever.
func readComputation(src *computationNode) (any, error) {
	switch src.state {
	case stateRunning, stateSuspended:
		return nil, &CyclicDependencyError{Node: src.label()}
	case stateStale:
		if err := resolveOutOfOrder(src); err != nil {
			return nil, err
		}
	}
	if src.state != stateDisposed {
		recordRead(src)
	}
	return src.value, nil
}

// resolveOutOfOrder suspends the currently running reader (if any), forces
// src to recompute immediately, then flags the reader for a full restart
// once its own thunk returns. A nil reader means the read is
// happening outside of any computation (e.g. a top-level Sample or Read),
// in which case there is nothing to suspend or restart.
func resolveOutOfOrder(src *computationNode) error {
	reader := currentComputation
	if reader != nil {
		reader.state = stateSuspended
	}
	err := clearAndRun(src)
	if reader != nil {
		reader.state = stateRunning
		if err == nil {
			reader.restartRequested = true
		}
	}
	return err
}

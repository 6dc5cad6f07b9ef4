package reactive

// recordRead registers the currently running computation, if any, as a
// dependent of src. Re-reading a source
// already present in the computation's sources is a no-op — a thunk that
// reads the same node twice in one run still produces one edge.
func recordRead(src sourceNode) {
	c := currentComputation
	if c == nil {
		return
	}
	for _, ref := range c.sources {
		if ref.src == src {
			return
		}
	}
	c.sources = append(c.sources, addEdge(src, c))
}

// clearSources detaches c from every source it currently subscribes to,
// leaving it with no recorded dependencies.
func clearSources(c *computationNode) {
	for _, ref := range c.sources {
		removeEdge(ref)
	}
	c.sources = c.sources[:0]
}

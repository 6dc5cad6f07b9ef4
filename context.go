package reactive

// Process-wide, single-threaded context slots. The engine never
// runs two computations concurrently, so these are plain package variables
// rather than goroutine-local or mutex-guarded state.
var (
	// currentComputation is the computation whose reads should be recorded
	// as subscriptions. Nil outside any computation's thunk, or inside Sample.
	currentComputation *computationNode

	// currentOwner is the computation that adopts newly constructed child
	// computations. Usually equal to currentComputation, but diverges inside
	// Sample (reads untracked, but children still adopted by the enclosing
	// computation). A computation built with Orphan ignores it and is not
	// adopted at all.
	currentOwner *computationNode

	// currentTxn is the transaction in scope, if any. Nil outside of
	// Write/Batch/Computation construction.
	currentTxn *transaction
)

// runAsComputation sets both currentComputation and currentOwner to c for
// the duration of fn, restoring the previous values on every exit path.
func runAsComputation(c *computationNode, fn func()) {
	prevComp, prevOwner := currentComputation, currentOwner
	currentComputation, currentOwner = c, c
	defer func() { currentComputation, currentOwner = prevComp, prevOwner }()
	fn()
}

// withSample clears currentComputation for the duration of fn so that reads
// inside fn are not recorded as subscriptions. The owner
// slot is left untouched, so children created inside a sampled read are
// still adopted by the enclosing computation.
func withSample(fn func()) {
	prevComp := currentComputation
	currentComputation = nil
	defer func() { currentComputation = prevComp }()
	fn()
}

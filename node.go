package reactive

import "fmt"

// nodeState is the lifecycle state of a computation node.
type nodeState uint8

const (
	stateCurrent nodeState = iota
	stateStale
	stateRunning
	statePendingUpdate
	stateSuspended
	stateDisposed
)

func (s nodeState) String() string {
	switch s {
	case stateCurrent:
		return "current"
	case stateStale:
		return "stale"
	case stateRunning:
		return "running"
	case statePendingUpdate:
		return "pending-update"
	case stateSuspended:
		return "suspended"
	case stateDisposed:
		return "disposed"
	default:
		return "unknown"
	}
}

// dependentRef is one half of a symmetric subscription edge: the
// dependent computation, and the index of the matching sourceRef in its own
// sources slice. Keeping the back-index lets removal repair the twin without
// scanning.
type dependentRef struct {
	comp   *computationNode
	srcIdx int
}

// sourceRef is the other half of the edge: the source this computation
// reads, and the index of the matching dependentRef in the source's
// dependents slice.
type sourceRef struct {
	src    sourceNode
	depIdx int
}

// sourceNode is implemented by anything that can be read and subscribed to:
// both data nodes and computation nodes (a computation may itself be a
// source for other computations).
type sourceNode interface {
	dependents() *[]dependentRef
	label() string
}

// DataNode is a mutable cell.
type DataNode struct {
	nameStr    string
	current    any
	pending    any
	pendingFns []func(any) any
	hasPending bool
	accumulate bool
	generation uint64
	deps       []dependentRef
}

func (d *DataNode) dependents() *[]dependentRef { return &d.deps }

func (d *DataNode) label() string {
	if d.nameStr != "" {
		return d.nameStr
	}
	return fmt.Sprintf("data_%p", d)
}

// computationNode is a re-runnable thunk.
type computationNode struct {
	nameStr          string
	thunk            func() (any, error)
	value            any
	sources          []sourceRef
	deps             []dependentRef
	parent           *computationNode
	children         []*computationNode
	cleanups         []cleanupFunc
	state            nodeState
	updateGen        uint64
	orphaned         bool
	scheduler        Scheduler
	restartRequested bool
}

func (c *computationNode) dependents() *[]dependentRef { return &c.deps }

func (c *computationNode) label() string {
	if c.nameStr != "" {
		return c.nameStr
	}
	return fmt.Sprintf("computation_%p", c)
}

// allDataNodes and allComputations are side registries of every node ever
// constructed through the public API, used only by RuntimeStats and
// ExportGraph for diagnostics. They never participate in propagation; a
// long-running program that creates and discards many computations will
// grow these unboundedly. There is no engine-managed finalization.
var (
	allDataNodes    []*DataNode
	allComputations []*computationNode
)

// addEdge wires a symmetric subscription from dep onto src: it appends the
// dependent-side half to src's dependents and returns the source-side half,
// which the caller must append to dep.sources straight away (its index is
// taken as len(dep.sources)).
func addEdge(src sourceNode, dep *computationNode) sourceRef {
	depsList := src.dependents()
	depIdx := len(*depsList)
	srcIdx := len(dep.sources)
	*depsList = append(*depsList, dependentRef{comp: dep, srcIdx: srcIdx})
	return sourceRef{src: src, depIdx: depIdx}
}

// removeEdge erases the dependents-side half of ref by swapping the tail
// entry into the hole and repairing that entry's own back-index. The caller is responsible for
// dropping the matching sourceRef from the dependent's own sources slice.
func removeEdge(ref sourceRef) {
	depsList := ref.src.dependents()
	last := len(*depsList) - 1
	if last < 0 || ref.depIdx > last {
		return
	}
	moved := (*depsList)[last]
	(*depsList)[ref.depIdx] = moved
	if moved.comp != nil {
		moved.comp.sources[moved.srcIdx].depIdx = ref.depIdx
	}
	*depsList = (*depsList)[:last]
}

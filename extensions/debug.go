package extensions

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"

	reactive "github.com/devxian96/reactive"
	"github.com/m1gwings/treedrawer/tree"
)

// GraphDebugHook renders the current subscription graph as an ASCII tree
// and logs it when propagation aborts on a cyclic dependency or a
// non-terminating iteration cap, and when a computation's thunk fails.
//
// Usage:
//
//	hook := extensions.NewGraphDebugHook(extensions.NewHumanHandler(os.Stdout, slog.LevelError))
//	reactive.Configure(reactive.WithHook(hook))
type GraphDebugHook struct {
	reactive.BaseHook
	logger *slog.Logger
}

// NewGraphDebugHook creates a new graph debug hook logging through handler.
func NewGraphDebugHook(handler slog.Handler) *GraphDebugHook {
	return &GraphDebugHook{logger: slog.New(handler)}
}

func (h *GraphDebugHook) OnCyclicAbort(err error) {
	graph := reactive.ExportGraph()
	h.logger.Error("Propagation Aborted",
		"error", err.Error(),
		"dependency_graph", formatGraph(graph),
	)
}

func (h *GraphDebugHook) OnRecompute(name string, err error) {
	if err == nil {
		return
	}
	graph := reactive.ExportGraph()
	h.logger.Error("Computation Failed",
		"node", name,
		"error", err.Error(),
		"dependency_graph", formatGraph(graph),
	)
}

// formatGraph renders graph both as a horizontal ASCII tree (when it has a
// clear root) and as a detailed indented list.
func formatGraph(graph reactive.GraphSnapshot) string {
	var sb strings.Builder

	if len(graph) == 0 {
		return "\n(empty - no subscriptions tracked)"
	}

	if horiz := tryFormatHorizontalTree(graph); horiz != "" {
		sb.WriteString("\n")
		sb.WriteString(horiz)
		sb.WriteString("\n")
	}

	sb.WriteString("\nDetailed View:\n")

	names := make([]string, 0, len(graph))
	for name := range graph {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		deps := append([]string(nil), graph[name]...)
		sort.Strings(deps)
		if len(deps) == 0 {
			sb.WriteString(fmt.Sprintf("  %s (no dependents)\n", name))
			continue
		}
		sb.WriteString(fmt.Sprintf("  %s\n", name))
		for i, dep := range deps {
			if i == len(deps)-1 {
				sb.WriteString(fmt.Sprintf("    └─> %s\n", dep))
			} else {
				sb.WriteString(fmt.Sprintf("    ├─> %s\n", dep))
			}
		}
	}

	return sb.String()
}

// tryFormatHorizontalTree renders graph as a treedrawer tree when it has at
// least one clear root (a node with no incoming edges).
func tryFormatHorizontalTree(graph reactive.GraphSnapshot) string {
	parents := make(map[string][]string)
	allNodes := make(map[string]bool)
	for name, deps := range graph {
		allNodes[name] = true
		for _, d := range deps {
			allNodes[d] = true
			parents[d] = append(parents[d], name)
		}
	}

	var roots []string
	for name := range allNodes {
		if len(parents[name]) == 0 {
			roots = append(roots, name)
		}
	}
	sort.Strings(roots)
	if len(roots) == 0 {
		return ""
	}

	var root *tree.Tree
	if len(roots) == 1 {
		root = buildTree(roots[0], graph, make(map[string]bool))
	} else {
		root = tree.NewTree(tree.NodeString("roots"))
		for _, r := range roots {
			if child := buildTree(r, graph, make(map[string]bool)); child != nil {
				addTreeAsChild(root, child)
			}
		}
	}
	if root == nil {
		return ""
	}
	return root.String()
}

func buildTree(name string, graph reactive.GraphSnapshot, visited map[string]bool) *tree.Tree {
	if visited[name] {
		return nil
	}
	visited[name] = true

	node := tree.NewTree(tree.NodeString(name))
	deps := append([]string(nil), graph[name]...)
	sort.Strings(deps)
	for _, dep := range deps {
		if child := buildTree(dep, graph, visited); child != nil {
			addTreeAsChild(node, child)
		}
	}
	return node
}

func addTreeAsChild(parent *tree.Tree, child *tree.Tree) {
	newChild := parent.AddChild(child.Val())
	for _, grandchild := range child.Children() {
		addTreeAsChild(newChild, grandchild)
	}
}

// SilentHandler is a slog.Handler that discards all log output, useful for
// tests that register a GraphDebugHook/TraceHook but don't want console
// noise.
type SilentHandler struct{}

// NewSilentHandler creates a new silent log handler.
func NewSilentHandler() *SilentHandler { return &SilentHandler{} }

func (h *SilentHandler) Enabled(ctx context.Context, level slog.Level) bool { return false }
func (h *SilentHandler) Handle(ctx context.Context, record slog.Record) error { return nil }
func (h *SilentHandler) WithAttrs(attrs []slog.Attr) slog.Handler            { return h }
func (h *SilentHandler) WithGroup(name string) slog.Handler                 { return h }

// HumanHandler is a slog.Handler that formats logs for readability, with
// special-cased rendering for the dependency-graph messages this package
// emits.
type HumanHandler struct {
	writer io.Writer
	level  slog.Level
}

// NewHumanHandler creates a human-readable log handler writing to w at or
// above level.
func NewHumanHandler(w io.Writer, level slog.Level) *HumanHandler {
	return &HumanHandler{writer: w, level: level}
}

func (h *HumanHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *HumanHandler) Handle(ctx context.Context, record slog.Record) error {
	switch record.Message {
	case "Propagation Aborted", "Computation Failed":
		return h.handleGraphEvent(record)
	}
	if _, err := fmt.Fprintf(h.writer, "[%s] %s\n", record.Level, record.Message); err != nil {
		return err
	}
	var writeErr error
	record.Attrs(func(a slog.Attr) bool {
		if _, err := fmt.Fprintf(h.writer, "  %s: %v\n", a.Key, a.Value); err != nil {
			writeErr = err
			return false
		}
		return true
	})
	return writeErr
}

func (h *HumanHandler) handleGraphEvent(record slog.Record) error {
	var nodeName, errMsg, graph string
	record.Attrs(func(a slog.Attr) bool {
		switch a.Key {
		case "node":
			nodeName = a.Value.String()
		case "error":
			errMsg = a.Value.String()
		case "dependency_graph":
			graph = a.Value.String()
		}
		return true
	})

	writes := []func() error{
		func() error { _, err := fmt.Fprintln(h.writer); return err },
		func() error { _, err := fmt.Fprintln(h.writer, strings.Repeat("=", 70)); return err },
		func() error { _, err := fmt.Fprintf(h.writer, "[GraphDebug] %s\n", record.Message); return err },
		func() error { _, err := fmt.Fprintln(h.writer, strings.Repeat("=", 70)); return err },
	}
	if nodeName != "" {
		writes = append(writes, func() error { _, err := fmt.Fprintf(h.writer, "Node: %s\n", nodeName); return err })
	}
	writes = append(writes,
		func() error { _, err := fmt.Fprintf(h.writer, "Error: %s\n", errMsg); return err },
		func() error { _, err := fmt.Fprintf(h.writer, "\nSubscription Graph:%s", graph); return err },
		func() error { _, err := fmt.Fprintln(h.writer, strings.Repeat("=", 70)); return err },
		func() error { _, err := fmt.Fprintln(h.writer); return err },
	)

	for _, write := range writes {
		if err := write(); err != nil {
			return err
		}
	}
	return nil
}

func (h *HumanHandler) WithAttrs(attrs []slog.Attr) slog.Handler { return h }
func (h *HumanHandler) WithGroup(name string) slog.Handler       { return h }

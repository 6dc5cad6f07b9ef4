package extensions

import (
	"log/slog"

	reactive "github.com/devxian96/reactive"
)

// TraceHook logs every transaction and propagation event through an
// slog.Logger.
type TraceHook struct {
	reactive.BaseHook
	logger *slog.Logger
}

// NewTraceHook creates a TraceHook writing through handler.
func NewTraceHook(handler slog.Handler) *TraceHook {
	return &TraceHook{logger: slog.New(handler)}
}

func (h *TraceHook) OnTransactionStart() {
	h.logger.Info("transaction starting")
}

func (h *TraceHook) OnTransactionEnd(err error) {
	if err != nil {
		h.logger.Error("transaction aborted", "error", err)
		return
	}
	h.logger.Info("transaction settled")
}

func (h *TraceHook) OnStale(name string) {
	h.logger.Debug("marked stale", "node", name)
}

func (h *TraceHook) OnRecompute(name string, err error) {
	if err != nil {
		h.logger.Error("recompute failed", "node", name, "error", err)
		return
	}
	h.logger.Debug("recomputed", "node", name)
}

func (h *TraceHook) OnCyclicAbort(err error) {
	h.logger.Error("propagation aborted", "error", err)
}

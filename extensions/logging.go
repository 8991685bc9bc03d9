// Package extensions holds optional subscribers that observe a
// resolution tree through its EventDistributor without being part of
// the resolution itself, the same separation the teacher drew between
// its core Scope and its Extension hooks.
package extensions

import (
	"fmt"
	"strings"

	injected "github.com/wiredgraph/injected"
	"go.uber.org/zap"
)

// LoggingExtension subscribes to a Scope's EventDistributor and emits
// one structured log line per request/provide event, via zap (the
// teacher's own logging extension used bare fmt.Printf; this mirrors
// the structured-logging approach the rest of the example pack uses
// for anything production-shaped).
type LoggingExtension struct {
	logger *zap.Logger
	unsub  func()
}

// Attach registers a LoggingExtension on events, returning it so the
// caller can Close it later. A nil logger falls back to zap.NewNop(),
// useful in tests that don't want log noise.
func Attach(events *injected.EventDistributor, logger *zap.Logger) *LoggingExtension {
	if logger == nil {
		logger = zap.NewNop()
	}
	ext := &LoggingExtension{logger: logger}
	id := events.Register(ext.onEvent)
	ext.unsub = func() { events.Unregister(id) }
	return ext
}

// Close unregisters the extension from its EventDistributor.
func (e *LoggingExtension) Close() {
	if e.unsub != nil {
		e.unsub()
	}
}

func (e *LoggingExtension) onEvent(ev injected.ProvideEvent) {
	trace := strings.Join(ev.Trace, " => ")
	switch ev.Kind {
	case injected.EventRequest:
		e.logger.Debug("dependency requested", zap.String("trace", trace))
	case injected.EventProvide:
		if ev.Err != nil {
			e.logger.Warn("dependency resolution failed", zap.String("trace", trace), zap.Error(ev.Err))
			return
		}
		e.logger.Info("dependency resolved", zap.String("trace", trace), zap.String("value", fmt.Sprintf("%v", ev.Data)))
	}
}

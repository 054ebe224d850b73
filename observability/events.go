package observability

import (
	"log/slog"

	"ecochain/core/events"
	"ecochain/native/ledger"
)

// EventSink forwards engine events to structured logs and metrics. It is the
// emitter the node installs in production.
type EventSink struct {
	log events.LogEmitter
}

// NewEventSink builds a sink writing through the provided logger. A nil
// logger falls back to slog.Default.
func NewEventSink(logger *slog.Logger) *EventSink {
	return &EventSink{log: events.LogEmitter{Logger: logger}}
}

// Emit implements events.Emitter.
func (s *EventSink) Emit(evt *events.Event) {
	if s == nil || evt == nil {
		return
	}
	s.log.Emit(evt)
	switch evt.Type {
	case ledger.EventTypeReward:
		Events().RecordReward(evt.Attributes["action"])
	case ledger.EventTypeTransfer:
		Events().RecordTransfer()
	}
}

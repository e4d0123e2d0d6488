package relay

import "log/slog"

// FailureKind classifies a dropped event for the failure sink.
type FailureKind string

const (
	FailureThreadCreation   FailureKind = "thread_creation"
	FailureTransport        FailureKind = "transport"
	FailureUnroutable       FailureKind = "unroutable"
	FailureDuplicateMapping FailureKind = "duplicate_mapping"
	FailureStore            FailureKind = "store"
)

// FailureSink receives every failure the relay swallows. The bridge is
// fail-open: events are dropped, never retried, and the process never dies
// on a single event. Injectable so tests can assert on failure
// classification without a logging backend.
type FailureSink interface {
	// Report records a dropped event. args are slog-style key/value pairs
	// carrying the identifiers involved.
	Report(kind FailureKind, err error, args ...any)
}

// LogSink is the production FailureSink: structured log and move on.
type LogSink struct{}

func (LogSink) Report(kind FailureKind, err error, args ...any) {
	all := append([]any{"kind", string(kind), "error", err}, args...)
	slog.Error("event dropped", all...)
}

// Package metrics defines observability hooks for an RPC session, leaving
// the backing implementation (Prometheus, or none) to the caller.
package metrics

import "time"

// SessionMetrics provides observability for rpc.Session activity.
//
// Implementations can collect metrics about command dispatch, connection
// lifecycle, and framing errors. This interface is optional: pass nil to
// disable metrics collection with zero overhead.
type SessionMetrics interface {
	// RecordCommand records a completed command dispatch with its name,
	// layer, direction ("inbound" or "outbound"), duration, and outcome
	// ("ok", "error", or "rejected").
	RecordCommand(name string, layer uint32, direction string, duration time.Duration, outcome string)

	// RecordCommandStart increments the in-flight command counter.
	RecordCommandStart(name string, direction string)

	// RecordCommandEnd decrements the in-flight command counter.
	RecordCommandEnd(name string, direction string)

	// RecordFrameBytes records the wire size of a frame that was sent or
	// received, by frame class ("command", "response_return",
	// "response_error", "frame_rejected").
	RecordFrameBytes(class string, direction string, bytes int)

	// SetActiveConnections updates the current connection count.
	SetActiveConnections(count int32)

	// RecordConnectionAccepted increments the total accepted connections
	// counter.
	RecordConnectionAccepted()

	// RecordConnectionClosed increments the total closed connections
	// counter, tagged with the reason ("eof", "shutdown", "error").
	RecordConnectionClosed(reason string)

	// RecordSeqOverflow increments the counter for sessions that exhausted
	// the 30-bit sequence space (spec §4.6's P6 boundary).
	RecordSeqOverflow()

	// RecordCancellation increments the counter for invocations that were
	// cancelled locally before a response arrived.
	RecordCancellation()
}

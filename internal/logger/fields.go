package logger

import "log/slog"

// Standard field keys for structured logging across the rpc and wire
// packages. Use these consistently so log lines stay greppable/aggregable.
const (
	KeyTraceID = "trace_id"
	KeySpanID  = "span_id"

	KeyConnID     = "conn_id"
	KeySeq        = "seq"
	KeyCommand    = "command"
	KeyCommandID  = "command_id"
	KeyDirection  = "direction"
	KeyFrameClass = "frame_class"
	KeyBodyLen    = "body_len"
	KeyReason     = "reason"

	KeyDurationMs = "duration_ms"
	KeyError      = "error"
)

// TraceID returns a slog.Attr for an OpenTelemetry trace ID.
func TraceID(id string) slog.Attr { return slog.String(KeyTraceID, id) }

// SpanID returns a slog.Attr for an OpenTelemetry span ID.
func SpanID(id string) slog.Attr { return slog.String(KeySpanID, id) }

// ConnID returns a slog.Attr for a connection identifier.
func ConnID(id string) slog.Attr { return slog.String(KeyConnID, id) }

// Seq returns a slog.Attr for a frame sequence number.
func Seq(seq uint32) slog.Attr { return slog.Uint64(KeySeq, uint64(seq)) }

// Command returns a slog.Attr for a command name.
func Command(name string) slog.Attr { return slog.String(KeyCommand, name) }

// CommandID returns a slog.Attr for a command's numeric wire identity.
func CommandID(id uint32) slog.Attr { return slog.Uint64(KeyCommandID, uint64(id)) }

// Direction returns a slog.Attr distinguishing inbound from outbound frames.
func Direction(dir string) slog.Attr { return slog.String(KeyDirection, dir) }

// FrameClass returns a slog.Attr for a frame's classification.
func FrameClass(class string) slog.Attr { return slog.String(KeyFrameClass, class) }

// BodyLen returns a slog.Attr for a frame body's length in octets.
func BodyLen(n int) slog.Attr { return slog.Int(KeyBodyLen, n) }

// Reason returns a slog.Attr for a human-readable rejection reason.
func Reason(r string) slog.Attr { return slog.String(KeyReason, r) }

// DurationMs returns a slog.Attr for a duration in milliseconds.
func DurationMs(ms float64) slog.Attr { return slog.Float64(KeyDurationMs, ms) }

// Err returns a slog.Attr for an error, or a zero Attr for nil.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String(KeyError, err.Error())
}

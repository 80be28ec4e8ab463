package logger

import (
	"context"
	"time"
)

type contextKey struct{}

var logContextKey = contextKey{}

// LogContext holds invocation-scoped logging context: the RPC session/seq
// identity a log line belongs to, threaded through context.Context the way
// a request ID or trace ID would be.
type LogContext struct {
	TraceID     string // OpenTelemetry trace ID
	SpanID      string // OpenTelemetry span ID
	ConnID      string // connection identifier (see rpc.Session)
	Seq         uint32 // frame sequence number
	CommandName string // command name, e.g. "getMe"
	Direction   string // "outbound" or "inbound"
	StartTime   time.Time
}

// WithContext returns a new context carrying lc.
func WithContext(ctx context.Context, lc *LogContext) context.Context {
	return context.WithValue(ctx, logContextKey, lc)
}

// FromContext retrieves the LogContext from ctx, or nil if not present.
func FromContext(ctx context.Context) *LogContext {
	if ctx == nil {
		return nil
	}
	lc, _ := ctx.Value(logContextKey).(*LogContext)
	return lc
}

// NewLogContext creates a LogContext scoped to one connection.
func NewLogContext(connID string) *LogContext {
	return &LogContext{ConnID: connID, StartTime: time.Now()}
}

// Clone returns a copy of lc.
func (lc *LogContext) Clone() *LogContext {
	if lc == nil {
		return nil
	}
	clone := *lc
	return &clone
}

// WithCommand returns a copy with command name and direction set.
func (lc *LogContext) WithCommand(name, direction string) *LogContext {
	clone := lc.Clone()
	if clone != nil {
		clone.CommandName = name
		clone.Direction = direction
	}
	return clone
}

// WithSeq returns a copy with the frame sequence number set.
func (lc *LogContext) WithSeq(seq uint32) *LogContext {
	clone := lc.Clone()
	if clone != nil {
		clone.Seq = seq
	}
	return clone
}

// WithTrace returns a copy with trace info set.
func (lc *LogContext) WithTrace(traceID, spanID string) *LogContext {
	clone := lc.Clone()
	if clone != nil {
		clone.TraceID = traceID
		clone.SpanID = spanID
	}
	return clone
}

// DurationMs returns the duration since StartTime in milliseconds.
func (lc *LogContext) DurationMs() float64 {
	if lc == nil || lc.StartTime.IsZero() {
		return 0
	}
	return float64(time.Since(lc.StartTime).Microseconds()) / 1000.0
}

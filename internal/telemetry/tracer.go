package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Attribute keys for RPC session spans, following OpenTelemetry semantic
// convention style (dotted, lowercase).
const (
	AttrConnID      = "rpc.conn_id"
	AttrSeq         = "rpc.seq"
	AttrCommandName = "rpc.command.name"
	AttrLayer       = "rpc.command.layer"
	AttrDirection   = "rpc.direction" // "inbound" or "outbound"
	AttrFrameClass  = "rpc.frame.class"
	AttrOutcome     = "rpc.outcome" // "ok", "error", "rejected", "cancelled"
)

// Span names for RPC session operations.
const (
	SpanSessionCall   = "rpc.session.call"
	SpanCommandDecode = "rpc.command.decode"
	SpanDispatch      = "rpc.dispatch"
)

// ConnID returns an attribute for the owning connection's correlation ID.
func ConnID(id string) attribute.KeyValue {
	return attribute.String(AttrConnID, id)
}

// Seq returns an attribute for a frame's sequence number.
func Seq(seq uint32) attribute.KeyValue {
	return attribute.Int64(AttrSeq, int64(seq))
}

// CommandName returns an attribute for a command's name.
func CommandName(name string) attribute.KeyValue {
	return attribute.String(AttrCommandName, name)
}

// Layer returns an attribute for a command's schema layer.
func Layer(layer uint32) attribute.KeyValue {
	return attribute.Int64(AttrLayer, int64(layer))
}

// Direction returns an attribute for the frame direction.
func Direction(direction string) attribute.KeyValue {
	return attribute.String(AttrDirection, direction)
}

// FrameClass returns an attribute for an RPC frame's class.
func FrameClass(class string) attribute.KeyValue {
	return attribute.String(AttrFrameClass, class)
}

// Outcome returns an attribute for a command dispatch outcome.
func Outcome(outcome string) attribute.KeyValue {
	return attribute.String(AttrOutcome, outcome)
}

// StartCommandSpan starts a span for dispatching a single command,
// pre-populated with the attributes every command span carries.
func StartCommandSpan(ctx context.Context, connID, name string, layer uint32, direction string, seq uint32) (context.Context, trace.Span) {
	return StartSpan(ctx, SpanDispatch, trace.WithAttributes(
		ConnID(connID),
		CommandName(name),
		Layer(layer),
		Direction(direction),
		Seq(seq),
	))
}

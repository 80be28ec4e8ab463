package rpc

import "errors"

// Sentinel errors for the framing/session layer (spec §4.8/§7's RPC
// kinds: UnknownCommand, UnexpectedResponse, HeaderReserved,
// ConnectionClosed), usable with errors.Is.
var (
	// ErrFrameTooLarge means a frame's body (command_id plus argument, or
	// a return/error/rejection value) read past the session's configured
	// maximum before its self-delimiting decode completed, independent of
	// any wire.Limits check the value's own decoding separately applies.
	ErrFrameTooLarge = errors.New("rpc: frame body exceeds configured maximum")

	// ErrUnknownCommand means a COMMAND frame's U32 command_id did not
	// match any command registered with the session's dispatcher.
	ErrUnknownCommand = errors.New("rpc: unknown command id")

	// ErrUnexpectedResponse means a RESPONSE_RETURN/RESPONSE_ERROR frame's
	// seq has no pending invocation, or names a seq not yet allocated
	// (seq >= out_next_seq).
	ErrUnexpectedResponse = errors.New("rpc: response for unknown or unallocated sequence")

	// ErrHeaderReserved is reserved for a future header revision; no
	// header bit pattern this runtime encodes or classifies can currently
	// trigger it, but framing failures that cannot be attributed to a
	// specific class surface through it rather than a silent panic.
	ErrHeaderReserved = errors.New("rpc: header uses a reserved bit pattern")

	// ErrConnectionClosed means an operation was attempted against a
	// session whose connection has already been torn down.
	ErrConnectionClosed = errors.New("rpc: connection closed")

	// ErrSeqOverflow means out_next_seq would exceed MaxSeq (spec I8: "never
	// wraps (abort connection on overflow)").
	ErrSeqOverflow = errors.New("rpc: outbound sequence counter overflowed")

	// ErrCancelled is delivered to a caller that cancelled its own pending
	// invocation; any later response for that seq is silently dropped
	// rather than surfaced as a rejection (spec §4.7).
	ErrCancelled = errors.New("rpc: invocation cancelled")
)

// RejectedError is delivered to a waiter whose invocation was answered with
// a FRAME_REJECTED frame instead of a response (spec S7).
type RejectedError struct {
	Reason string
}

func (e *RejectedError) Error() string { return "rpc: rejected: " + e.Reason }

// UnknownErrorVariant wraps a command-error decode failure (the body of a
// RESPONSE_ERROR frame didn't decode against the command's declared error
// enum) into the reserved discriminant-0 `_UnknownError_` variant every
// error enum recognizes (spec §4.4, §7).
type UnknownErrorVariant struct {
	// Message is the reserved variant's String payload: a description of
	// what went wrong decoding the real error value.
	Message string
	// Cause is the underlying decode failure, if any.
	Cause error
}

func (e *UnknownErrorVariant) Error() string {
	if e.Cause != nil {
		return "rpc: _UnknownError_: " + e.Message + ": " + e.Cause.Error()
	}
	return "rpc: _UnknownError_: " + e.Message
}

func (e *UnknownErrorVariant) Unwrap() error { return e.Cause }

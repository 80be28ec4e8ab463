// Package rpc implements the Punybuf RPC framer and session: a 4-octet
// header classifies every frame into one of four classes, and a session
// tracks outbound sequence numbers and pending invocations on top of it.
//
// The framer itself (this file) produces and parses only that header. Per
// spec §4.6/§6 the header is immediately followed by the frame's body with
// no length field, padding, or other framing of any kind between them —
// the body is itself a self-delimiting Punybuf value (a command_id plus an
// argument, a return value, an error enum, or a plain String rejection
// reason), so the session layer (session.go), which alone knows each
// command's schema, decodes it straight off the stream. This is the thin
// record-classifying layer comparable to the dittofs RPC fragment header,
// generalized from a single fragment kind to a classified 4-class header
// carrying a 30-bit sequence number.
package rpc

import "github.com/whzard/punybuf/wire"

// Class classifies a frame by its R/E header bits.
type Class uint8

const (
	// ClassCommand carries a command invocation: U32 command_id followed
	// by the command's argument value. The sequence belongs to the sender.
	ClassCommand Class = iota
	// ClassResponseReturn carries a successful command return value. The
	// sequence belongs to the receiver of this frame (the original sender
	// of the matching COMMAND).
	ClassResponseReturn
	// ClassResponseError carries the command's error enum value. The
	// sequence belongs to the receiver of this frame.
	ClassResponseError
	// ClassFrameRejected carries a single String rejection reason. Per
	// spec, the sequence this frame carries is ambiguous: it may have been
	// allocated by either peer, so a receiving session must check both its
	// own pending table and any connection-level rejection handler.
	ClassFrameRejected
)

func (c Class) String() string {
	switch c {
	case ClassCommand:
		return "COMMAND"
	case ClassResponseReturn:
		return "RESPONSE_RETURN"
	case ClassResponseError:
		return "RESPONSE_ERROR"
	case ClassFrameRejected:
		return "FRAME_REJECTED"
	default:
		return "UNKNOWN"
	}
}

const (
	responseFlagBit uint32 = 1 << 31
	errorFlagBit    uint32 = 1 << 30
	seqMask         uint32 = 1<<30 - 1
)

// MaxSeq is the largest sequence number the 30-bit field can carry.
const MaxSeq uint32 = seqMask

// Header is a decoded 4-octet frame header.
type Header struct {
	Class Class
	Seq   uint32
}

func classify(r, e bool) Class {
	switch {
	case !r && !e:
		return ClassCommand
	case !r && e:
		return ClassFrameRejected
	case r && !e:
		return ClassResponseReturn
	default:
		return ClassResponseError
	}
}

func (c Class) bits() (r, e bool) {
	switch c {
	case ClassCommand:
		return false, false
	case ClassFrameRejected:
		return false, true
	case ClassResponseReturn:
		return true, false
	case ClassResponseError:
		return true, true
	default:
		panic("rpc: invalid frame class")
	}
}

// EncodeHeader writes h's 4-octet wire form.
//
// Seq must fit in 30 bits; callers are responsible for the session-level
// "never wraps" invariant (spec I8) and should abort the connection before
// ever calling this with a seq that doesn't fit.
func EncodeHeader(w wire.Writer, h Header) error {
	if h.Seq > MaxSeq {
		panic("rpc: EncodeHeader: sequence number exceeds 30 bits")
	}
	r, e := h.Class.bits()
	v := h.Seq & seqMask
	if r {
		v |= responseFlagBit
	}
	if e {
		v |= errorFlagBit
	}
	return wire.WriteUint32(w, v)
}

// DecodeHeader reads and classifies a 4-octet frame header. The body
// immediately follows on r with no length field of any kind (spec §6); it
// is the session layer's job to decode exactly as many bytes as the
// header's Class and the command's schema say the body contains.
func DecodeHeader(r wire.Reader) (Header, error) {
	v, err := wire.ReadUint32(r)
	if err != nil {
		return Header{}, err
	}
	respFlag := v&responseFlagBit != 0
	errFlag := v&errorFlagBit != 0
	return Header{
		Class: classify(respFlag, errFlag),
		Seq:   v & seqMask,
	}, nil
}

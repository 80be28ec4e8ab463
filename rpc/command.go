package rpc

import (
	"hash/crc32"
	"strconv"

	"github.com/whzard/punybuf/wire"
)

// CommandID computes a command's wire identity: CRC32 (IEEE 802.3
// polynomial, the same "crc32" most checksum libraries implement) of the
// command's UTF-8 name, a literal '.', and its layer number in decimal,
// per spec §4.5.
//
//	command_id = CRC32(name_utf8 || 0x2E || layer_decimal_utf8)
func CommandID(name string, layer int) uint32 {
	return crc32.ChecksumIEEE([]byte(name + "." + strconv.Itoa(layer)))
}

// ArgDecoder reads a COMMAND frame's self-delimiting argument value
// straight off the wire, after the leading U32 command_id has already been
// consumed. r is bounded to the frame's remaining body budget.
type ArgDecoder func(r wire.Reader, lim wire.Limits) (arg any, err error)

// ArgEncoder writes a caller-supplied argument as a self-delimiting value
// straight onto the wire, after the leading U32 command_id.
type ArgEncoder func(w wire.Writer, arg any) error

// ReturnEncoder writes a dispatcher's return value as a RESPONSE_RETURN
// frame's self-delimiting body.
type ReturnEncoder func(w wire.Writer, value any) error

// ReturnDecoder reads a RESPONSE_RETURN frame's self-delimiting body.
type ReturnDecoder func(r wire.Reader, lim wire.Limits) (value any, err error)

// ErrorCodec encodes/decodes a command's declared error enum for
// RESPONSE_ERROR frame bodies.
type ErrorCodec struct {
	Encode func(w wire.Writer, errValue any) error
	Decode func(r wire.Reader, lim wire.Limits) (errValue any, err error)
}

// Descriptor is a command's full schema-facing contract: its wire identity,
// how to read and write the self-delimiting values the dispatcher and
// caller actually exchange, and whether it is a Void command (return type
// Void, no RESPONSE frames ever sent or expected).
//
// Generated code builds one Descriptor per declared command and registers
// it with a Session.
type Descriptor struct {
	Name  string
	Layer int
	ID    uint32

	EncodeArg    ArgEncoder
	DecodeArg    ArgDecoder
	EncodeReturn ReturnEncoder
	DecodeReturn ReturnDecoder
	Err          ErrorCodec
	IsVoid       bool
}

// NewDescriptor fills in ID from Name and Layer via CommandID.
func NewDescriptor(name string, layer int) Descriptor {
	return Descriptor{Name: name, Layer: layer, ID: CommandID(name, layer)}
}

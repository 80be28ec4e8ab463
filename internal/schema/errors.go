package schema

import (
	"github.com/whzard/punybuf/rpc"
	"github.com/whzard/punybuf/wire"
)

// EchoError discriminants. 0 is the reserved _UnknownError_ variant every
// error enum carries (spec §4.4); business variants start at 1.
const (
	echoErrorUnknown        uint8 = 0
	echoErrorMessageTooLong uint8 = 1
)

// MessageTooLong is Echo's one declared business error variant.
type MessageTooLong struct {
	Limit uint32
}

// EncodeEchoError writes errValue, which must be *rpc.UnknownErrorVariant
// or *MessageTooLong, as an Echo command's RESPONSE_ERROR body.
func EncodeEchoError(w wire.Writer, errValue any) error {
	switch v := errValue.(type) {
	case *rpc.UnknownErrorVariant:
		if err := wire.EncodeDiscriminant(w, echoErrorUnknown); err != nil {
			return err
		}
		return wire.EncodeString(w, v.Message)
	case *MessageTooLong:
		if err := wire.EncodeDiscriminant(w, echoErrorMessageTooLong); err != nil {
			return err
		}
		return wire.EncodeUInt(w, uint64(v.Limit))
	default:
		return wire.UnknownDiscriminantError(echoErrorUnknown)
	}
}

// DecodeEchoError reads an Echo command's RESPONSE_ERROR body.
func DecodeEchoError(r wire.Reader, lim wire.Limits) (any, error) {
	d, err := wire.DecodeDiscriminant(r)
	if err != nil {
		return nil, err
	}
	switch d {
	case echoErrorUnknown:
		msg, err := wire.DecodeString(r, lim)
		if err != nil {
			return nil, err
		}
		return &rpc.UnknownErrorVariant{Message: msg}, nil
	case echoErrorMessageTooLong:
		limit, err := wire.DecodeUInt(r)
		if err != nil {
			return nil, err
		}
		return &MessageTooLong{Limit: uint32(limit)}, nil
	default:
		return &rpc.UnknownErrorVariant{Message: "unrecognized Echo error discriminant"}, nil
	}
}

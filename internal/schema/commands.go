// Commands exchanged by cmd/punybuf-echo, standing in for a schema
// compiler's command-descriptor output.
//
//	command getMe() -> User
//	command echo(message: String) -> String throws EchoError
//	command ping() -> Void
package schema

import (
	"errors"

	"github.com/whzard/punybuf/rpc"
	"github.com/whzard/punybuf/wire"
)

// MaxEchoMessageLen bounds the argument echo accepts before returning
// MessageTooLong; unrelated to the codec's own wire.Limits.MaxBytesLen.
const MaxEchoMessageLen = 4096

func decodeEmptyArg(wire.Reader, wire.Limits) (any, error) {
	return struct{}{}, nil
}

func encodeEmptyArg(wire.Writer, any) error {
	return nil
}

// GetMeDescriptor describes the getMe command: no argument, returns the
// caller's User.
func GetMeDescriptor() rpc.Descriptor {
	d := rpc.NewDescriptor("getMe", 0)
	d.EncodeArg = encodeEmptyArg
	d.DecodeArg = decodeEmptyArg
	d.EncodeReturn = func(w wire.Writer, value any) error {
		u, ok := value.(User)
		if !ok {
			return errors.New("schema: getMe return value must be a User")
		}
		return EncodeUser(w, u)
	}
	d.DecodeReturn = func(r wire.Reader, lim wire.Limits) (any, error) {
		return DecodeUser(r, lim)
	}
	return d
}

// EchoDescriptor describes the echo command: a String argument, returns
// the same String, or MessageTooLong past MaxEchoMessageLen.
func EchoDescriptor() rpc.Descriptor {
	d := rpc.NewDescriptor("echo", 0)
	d.EncodeArg = func(w wire.Writer, arg any) error {
		msg, ok := arg.(string)
		if !ok {
			return errors.New("schema: echo argument must be a string")
		}
		return wire.EncodeString(w, msg)
	}
	d.DecodeArg = func(r wire.Reader, lim wire.Limits) (any, error) {
		return wire.DecodeString(r, lim)
	}
	d.EncodeReturn = func(w wire.Writer, value any) error {
		msg, ok := value.(string)
		if !ok {
			return errors.New("schema: echo return value must be a string")
		}
		return wire.EncodeString(w, msg)
	}
	d.DecodeReturn = func(r wire.Reader, lim wire.Limits) (any, error) {
		return wire.DecodeString(r, lim)
	}
	d.Err = rpc.ErrorCodec{Encode: EncodeEchoError, Decode: DecodeEchoError}
	return d
}

// PingDescriptor describes the ping command: a Void command, per spec
// §4.7's rule that Void commands allocate a seq but never register a
// pending invocation or expect a response.
func PingDescriptor() rpc.Descriptor {
	d := rpc.NewDescriptor("ping", 0)
	d.IsVoid = true
	d.EncodeArg = encodeEmptyArg
	d.DecodeArg = decodeEmptyArg
	return d
}

// EchoDispatch handles echo's business logic: returns MessageTooLong if
// the argument exceeds MaxEchoMessageLen, else echoes it back.
func EchoDispatch(arg any) (value any, errValue any) {
	msg, ok := arg.(string)
	if !ok {
		return nil, &rpc.UnknownErrorVariant{Message: "echo argument was not a string"}
	}
	if len(msg) > MaxEchoMessageLen {
		return nil, &MessageTooLong{Limit: MaxEchoMessageLen}
	}
	return msg, nil
}

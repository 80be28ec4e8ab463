// Package schema holds the hand-written stand-in for a per-schema code
// generator's output (out of scope per the codec/RPC split): the wire
// types and command descriptors that cmd/punybuf-echo exchanges.
//
//	struct User {
//	    flags: U8.{ nickname?: String }
//	    name: String
//	    mood: Mood
//	}
//
//	enum Mood {
//	    Happy = 1
//	    Sad = 2
//	    @extension Excited = 3 (reason: String)
//	    @default Unknown
//	}
package schema

import (
	"bytes"

	"github.com/whzard/punybuf/wire"
)

// Mood discriminants.
const (
	MoodUnknown uint8 = 0 // @default, also the fallback for any future variant
	MoodHappy   uint8 = 1
	MoodSad     uint8 = 2
	MoodExcited uint8 = 3 // @extension, carries Reason
)

// Mood is an extensible enum: discriminant 0 (_UnknownError_'s sibling,
// the schema's own @default) is the fallback a decoder built against an
// older schema layer falls back to for any discriminant it doesn't
// recognize.
type Mood struct {
	Discriminant uint8
	Reason       string // only set when Discriminant == MoodExcited
}

// EncodeMood writes v per Mood's extensible enum layout.
func EncodeMood(w wire.Writer, v Mood) error {
	if err := wire.EncodeDiscriminant(w, v.Discriminant); err != nil {
		return err
	}
	switch v.Discriminant {
	case MoodHappy, MoodSad, MoodUnknown:
		return nil
	case MoodExcited:
		return wire.WriteExtensionVariant(w, func(ew wire.Writer) error {
			return wire.EncodeString(ew, v.Reason)
		})
	default:
		panic("schema: EncodeMood: unknown discriminant")
	}
}

// DecodeMood reads a Mood value, falling back to MoodUnknown for any
// discriminant this build doesn't recognize (spec I7).
func DecodeMood(r wire.Reader, lim wire.Limits) (Mood, error) {
	d, err := wire.DecodeDiscriminant(r)
	if err != nil {
		return Mood{}, err
	}
	switch d {
	case MoodHappy, MoodSad, MoodUnknown:
		return Mood{Discriminant: d}, nil
	case MoodExcited:
		var reason string
		err := wire.ReadExtensionVariant(r, lim, func(lr *wire.LimitedReader) error {
			var err error
			reason, err = wire.DecodeString(lr, lim)
			return err
		})
		if err != nil {
			return Mood{}, err
		}
		return Mood{Discriminant: MoodExcited, Reason: reason}, nil
	default:
		if err := wire.SkipUnknownExtensionVariant(r, lim); err != nil {
			return Mood{}, err
		}
		return Mood{Discriminant: MoodUnknown}, nil
	}
}

// User flag bit positions.
const (
	userFlagHasNickname = 0
)

// User is an extensible struct with one inline optional field.
type User struct {
	Name     string
	Nickname *string
	Mood     Mood
}

// EncodeUser writes v, including the trailing extension region every
// extensible struct carries (spec §4.3).
func EncodeUser(w wire.Writer, v User) error {
	var bits uint64
	bits = wire.FlagSet(bits, userFlagHasNickname, v.Nickname != nil)
	if err := wire.EncodeFlagField(w, wire.FlagWidth8, bits); err != nil {
		return err
	}
	if v.Nickname != nil {
		if err := wire.EncodeString(w, *v.Nickname); err != nil {
			return err
		}
	}
	if err := wire.EncodeString(w, v.Name); err != nil {
		return err
	}
	if err := EncodeMood(w, v.Mood); err != nil {
		return err
	}
	return wire.WriteExtensionRegion(w, func(wire.Writer) error { return nil })
}

// DecodeUser reads a User value.
func DecodeUser(r wire.Reader, lim wire.Limits) (User, error) {
	var v User
	bits, err := wire.DecodeFlagField(r, wire.FlagWidth8)
	if err != nil {
		return v, err
	}
	if wire.FlagTest(bits, userFlagHasNickname) {
		s, err := wire.DecodeString(r, lim)
		if err != nil {
			return v, err
		}
		v.Nickname = &s
	}
	if v.Name, err = wire.DecodeString(r, lim); err != nil {
		return v, err
	}
	if v.Mood, err = DecodeMood(r, lim); err != nil {
		return v, err
	}
	err = wire.ReadExtensionRegion(r, lim, func(*wire.LimitedReader) error { return nil })
	return v, err
}

// EncodeUserBytes is a convenience wrapper for tests and callers that want
// the encoded bytes directly rather than writing through a wire.Writer.
func EncodeUserBytes(v User) ([]byte, error) {
	var buf bytes.Buffer
	if err := EncodeUser(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

package wire

import "fmt"

// EncodeDiscriminant writes an enum's one-octet tag (spec §3, §4.4).
func EncodeDiscriminant(w Writer, d uint8) error {
	return WriteUint8(w, d)
}

// DecodeDiscriminant reads an enum's one-octet tag.
func DecodeDiscriminant(r Reader) (uint8, error) {
	return ReadUint8(r)
}

// WriteExtensionVariant writes an @extension enum variant's body: a UInt
// EL followed by EL bytes of payload (zero bytes if the variant carries
// none). fill should write exactly the variant's payload, or nothing at
// all for a payload-less @extension variant (spec §4.4).
//
// This has the identical shape to WriteExtensionRegion (struct.go);
// enums and structs share one extension-region format by design (spec
// §4.3, §4.4 both describe "UInt EL then EL bytes").
func WriteExtensionVariant(w Writer, fill func(Writer) error) error {
	return WriteExtensionRegion(w, fill)
}

// ReadExtensionVariant reads an @extension enum variant's body written by
// WriteExtensionVariant: a UInt EL, then a LimitedReader budgeted to EL
// bytes handed to consume, with any residual bytes drained afterward.
func ReadExtensionVariant(r Reader, lim Limits, consume func(*LimitedReader) error) error {
	return ReadExtensionRegion(r, lim, consume)
}

// SkipUnknownExtensionVariant handles the "unknown discriminant on an
// extensible enum" case (spec §4.4, I7): it reads the UInt EL the
// unrecognized variant was encoded with and discards exactly that many
// bytes, leaving the reader positioned at the start of the next value.
// Callers then construct their schema's @default variant.
func SkipUnknownExtensionVariant(r Reader, lim Limits) error {
	return ReadExtensionRegion(r, lim, func(*LimitedReader) error { return nil })
}

// UnknownDiscriminantError builds the failure a sealed enum (or an
// extensible enum's own reserved slot) returns when it sees a
// discriminant it does not recognize anywhere in its schema.
func UnknownDiscriminantError(d uint8) error {
	return newErr(KindUnknownDiscriminant, fmt.Sprintf("enum discriminant %d", d), nil)
}

package wire

import "bytes"

// FlagWidth names the fixed integer width backing a struct's flag field
// (spec §3: "A fixed-width unsigned integer (U8/U16/U32/U64 or UInt
// limited to 60 bits)"). Bit 0 (the least significant bit) is always the
// first declared flag.
type FlagWidth int

const (
	FlagWidth8 FlagWidth = iota
	FlagWidth16
	FlagWidth32
	FlagWidth64
	// FlagWidthUInt backs the flag field with a canonical UInt instead of
	// a fixed-width integer. Only the low 60 bits may be used.
	FlagWidthUInt
)

// bitsFor returns the number of addressable bit positions for width.
func (w FlagWidth) bitsFor() int {
	switch w {
	case FlagWidth8:
		return 8
	case FlagWidth16:
		return 16
	case FlagWidth32:
		return 32
	case FlagWidth64:
		return 64
	case FlagWidthUInt:
		return 60
	default:
		return 0
	}
}

// EncodeFlagField writes a struct's flag field in its declared width.
func EncodeFlagField(w Writer, width FlagWidth, bits uint64) error {
	switch width {
	case FlagWidth8:
		return WriteUint8(w, uint8(bits))
	case FlagWidth16:
		return WriteUint16(w, uint16(bits))
	case FlagWidth32:
		return WriteUint32(w, uint32(bits))
	case FlagWidth64:
		return WriteUint64(w, bits)
	case FlagWidthUInt:
		if bits > MaxUInt {
			return newErr(KindOverflow, "flag field", nil)
		}
		return EncodeUInt(w, bits)
	default:
		return newErr(KindMalformedFlagField, "flag field width", nil)
	}
}

// DecodeFlagField reads a struct's flag field in its declared width.
func DecodeFlagField(r Reader, width FlagWidth) (uint64, error) {
	switch width {
	case FlagWidth8:
		v, err := ReadUint8(r)
		return uint64(v), err
	case FlagWidth16:
		v, err := ReadUint16(r)
		return uint64(v), err
	case FlagWidth32:
		v, err := ReadUint32(r)
		return uint64(v), err
	case FlagWidth64:
		return ReadUint64(r)
	case FlagWidthUInt:
		return DecodeUInt(r)
	default:
		return 0, newErr(KindMalformedFlagField, "flag field width", nil)
	}
}

// ValidateFlagCount checks that count declared flags fit within width's
// addressable bits. Generated code calls this once, at init time, so a
// schema bug (too many flags for the declared width) fails loudly instead
// of silently colliding bit positions.
func ValidateFlagCount(width FlagWidth, count int) error {
	if count < 0 || count > width.bitsFor() {
		return newErr(KindMalformedFlagField, "flag count", nil)
	}
	return nil
}

// ValidateSingleFlagField rejects schemas that declare more than one flag
// field carrying @extension flags on the same struct. The wire form of a
// secondary (@extension_flags) flag field is left undecided by the schema
// language (spec §4.3, §9); this runtime refuses to guess at it rather
// than risk violating I1 with an ad hoc encoding.
func ValidateSingleFlagField(extensionFlagFieldCount int) error {
	if extensionFlagFieldCount > 1 {
		return ErrExtensionFlagsUnsupported
	}
	return nil
}

// FlagTest reports whether bit pos (0 = LSB) is set in bits.
func FlagTest(bits uint64, pos uint) bool {
	return bits&(uint64(1)<<pos) != 0
}

// FlagSet returns bits with bit pos set to v.
func FlagSet(bits uint64, pos uint, v bool) uint64 {
	if v {
		return bits | (uint64(1) << pos)
	}
	return bits &^ (uint64(1) << pos)
}

// WriteExtensionRegion writes a struct's (or an @extension enum variant's)
// trailing extension region: a UInt EL followed by exactly EL bytes. fill
// is called with a scratch writer and must write, in declaration order,
// the payload of every set @extension flag (spec §4.3, items 1-2). EL is
// always written, even when fill writes nothing (I5: absent extension
// data is EL=0, never omitted).
func WriteExtensionRegion(w Writer, fill func(Writer) error) error {
	var buf bytes.Buffer
	if err := fill(&buf); err != nil {
		return err
	}
	if err := EncodeUInt(w, uint64(buf.Len())); err != nil {
		return err
	}
	_, err := w.Write(buf.Bytes())
	return err
}

// ReadExtensionRegion reads a UInt EL, then calls consume with a
// LimitedReader budgeted to exactly EL bytes. consume should decode, in
// declaration order, the associated value of every set @extension flag it
// recognizes (or every recognized @extension enum discriminant's
// payload), then return. Any residual bytes are drained automatically
// after consume returns, satisfying "consume exactly EL bytes total
// regardless of recognition" (spec §4.3 step 5, §4.4).
func ReadExtensionRegion(r Reader, lim Limits, consume func(*LimitedReader) error) error {
	el, err := DecodeUInt(r)
	if err != nil {
		return err
	}
	if el > lim.MaxExtensionLen {
		return newErr(KindLimitExceeded, "extension length", nil)
	}
	lr := NewLimitedReader(r, el)
	if err := consume(lr); err != nil {
		return err
	}
	return lr.Drain()
}

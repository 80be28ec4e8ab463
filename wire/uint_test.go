package wire_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/whzard/punybuf/wire"
)

// TestUIntBoundaries exercises the class boundaries named in spec S1:
// each boundary value must land in the class the length-prefix table
// dictates, and must round-trip exactly.
func TestUIntBoundaries(t *testing.T) {
	cases := []struct {
		name  string
		value uint64
		bytes []byte
	}{
		{"127 one octet", 127, []byte{0x7F}},
		{"128 two octets", 128, []byte{0x80, 0x00}},
		{"16511 two octets", 16511, []byte{0xBF, 0xFF}},
		{"16512 three octets", 16512, []byte{0xC0, 0x00, 0x00}},
		{"2113663 three octets", 2113663, []byte{0xDF, 0xFF, 0xFF}},
		{"2113664 five octets", 2113664, []byte{0xE0, 0x00, 0x00, 0x00, 0x00}},
		{"68721590399 five octets", 68721590399, []byte{0xEF, 0xFF, 0xFF, 0xFF, 0xFF}},
		{"68721590400 eight octets", 68721590400, []byte{0xF0, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}},
		{"zero", 0, []byte{0x00}},
		{"max uint", wire.MaxUInt, nil}, // shape-checked below, not byte-for-byte
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, wire.EncodeUInt(&buf, tc.value))
			if tc.bytes != nil {
				assert.Equal(t, tc.bytes, buf.Bytes())
			}

			got, err := wire.DecodeUInt(bytes.NewReader(buf.Bytes()))
			require.NoError(t, err)
			assert.Equal(t, tc.value, got)
		})
	}
}

// TestUIntCanonicalLength checks P3: encode always picks the shortest
// class for a given value.
func TestUIntCanonicalLength(t *testing.T) {
	lengthFor := func(v uint64) int {
		var buf bytes.Buffer
		require.NoError(t, wire.EncodeUInt(&buf, v))
		return buf.Len()
	}

	assert.Equal(t, 1, lengthFor(0))
	assert.Equal(t, 1, lengthFor(127))
	assert.Equal(t, 2, lengthFor(128))
	assert.Equal(t, 2, lengthFor(16511))
	assert.Equal(t, 3, lengthFor(16512))
	assert.Equal(t, 3, lengthFor(2113663))
	assert.Equal(t, 5, lengthFor(2113664))
	assert.Equal(t, 5, lengthFor(68721590399))
	assert.Equal(t, 8, lengthFor(68721590400))
	assert.Equal(t, 8, lengthFor(wire.MaxUInt))
}

// TestUIntOverflow checks that a decoder rejects magnitudes beyond
// MaxUInt, per the cap decided in SPEC_FULL.md's Open Question resolution.
func TestUIntOverflow(t *testing.T) {
	// 8-octet class with the all-ones payload (2^60-1), which exceeds
	// MaxUInt-base8.
	buf := []byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF}
	_, err := wire.DecodeUInt(bytes.NewReader(buf))
	require.Error(t, err)
	assert.ErrorIs(t, err, wire.ErrOverflow)
}

// TestUIntTruncated checks that running out of bytes mid-class reports
// KindTruncated rather than panicking or silently zero-filling.
func TestUIntTruncated(t *testing.T) {
	_, err := wire.DecodeUInt(bytes.NewReader([]byte{0x80})) // promises 1 more octet
	require.Error(t, err)
	assert.ErrorIs(t, err, wire.ErrTruncated)

	_, err = wire.DecodeUInt(bytes.NewReader(nil))
	require.Error(t, err)
	assert.ErrorIs(t, err, wire.ErrTruncated)
}

// TestUIntDeterministic checks P2: encoding the same value twice produces
// identical bytes.
func TestUIntDeterministic(t *testing.T) {
	for _, v := range []uint64{0, 1, 127, 128, 99999, wire.MaxUInt} {
		var a, b bytes.Buffer
		require.NoError(t, wire.EncodeUInt(&a, v))
		require.NoError(t, wire.EncodeUInt(&b, v))
		assert.Equal(t, a.Bytes(), b.Bytes())
	}
}

// TestUIntEncodeOverflowPanics documents that emitting a value above
// MaxUInt is a programmer error in generated code, not a recoverable
// runtime condition: EncodeUInt panics rather than silently truncating.
func TestUIntEncodeOverflowPanics(t *testing.T) {
	assert.Panics(t, func() {
		var buf bytes.Buffer
		_ = wire.EncodeUInt(&buf, wire.MaxUInt+1)
	})
}

package wire

import "io"

// MaxUInt is the cap this runtime enforces on every decoded and encoded
// UInt, chosen per the open question in spec §9: the schema language's
// @builtin UInt representable range extends a little past 2^60, but this
// runtime caps at 2^60-1 for the "safety and clarity" the spec allows.
// Encoders MUST NOT emit values above this; decoders MUST reject them.
const MaxUInt = uint64(1)<<60 - 1

// Limits bounds the sizes this runtime will allocate for while decoding.
// Every container decoder consults Limits before allocating so that a
// corrupt or adversarial length prefix can never drive an allocation
// larger than the caller is willing to tolerate (spec §6).
type Limits struct {
	// MaxBytesLen bounds Bytes and String payload length in octets.
	MaxBytesLen uint64
	// MaxArrayItems bounds the element count of Array<T> and Map<K,V>.
	MaxArrayItems uint64
	// MaxExtensionLen bounds a struct's EL or an @extension enum variant's
	// EL, i.e. the size of an extension region.
	MaxExtensionLen uint64
}

// DefaultLimits matches the defaults named in spec §6: byte containers up
// to 4GiB-1, array element counts up to 2^32-1. Extension regions share
// the byte cap since they are themselves a byte-length-prefixed region.
func DefaultLimits() Limits {
	return Limits{
		MaxBytesLen:     1<<32 - 1,
		MaxArrayItems:   1<<32 - 1,
		MaxExtensionLen: 1<<32 - 1,
	}
}

// LimitedReader wraps a Reader with a fixed byte budget, for decoding a
// struct's extension region or an @extension enum variant's payload. Per
// spec §4.3/§4.4/§9, a decoder must read at most EL bytes regardless of
// how many of those bytes it recognizes, and must drain any residual
// bytes exactly once when it stops reading early.
type LimitedReader struct {
	r         Reader
	remaining uint64
}

// NewLimitedReader returns a LimitedReader that will permit reading at
// most n more bytes from r.
func NewLimitedReader(r Reader, n uint64) *LimitedReader {
	return &LimitedReader{r: r, remaining: n}
}

// Remaining reports how many bytes are left in the budget.
func (lr *LimitedReader) Remaining() uint64 { return lr.remaining }

// Read implements io.Reader, refusing to read past the remaining budget.
func (lr *LimitedReader) Read(p []byte) (int, error) {
	if lr.remaining == 0 {
		return 0, io.EOF
	}
	if uint64(len(p)) > lr.remaining {
		p = p[:lr.remaining]
	}
	n, err := lr.r.Read(p)
	lr.remaining -= uint64(n)
	return n, err
}

// ReadByte implements io.ByteReader.
func (lr *LimitedReader) ReadByte() (byte, error) {
	if lr.remaining == 0 {
		return 0, io.EOF
	}
	b, err := lr.r.ReadByte()
	if err == nil {
		lr.remaining--
	}
	return b, err
}

// Drain consumes and discards every remaining byte in the budget. Callers
// invoke this exactly once, after reading every extension value they
// recognize, to land the underlying reader at the end of the EL region
// regardless of how many (if any) extensions they understood.
func (lr *LimitedReader) Drain() error {
	if lr.remaining == 0 {
		return nil
	}
	n, err := io.CopyN(io.Discard, lr.r, int64(lr.remaining))
	lr.remaining -= uint64(n)
	if err != nil {
		return newErr(KindInvalidExtensionSkip, "drain extension region", err)
	}
	return nil
}

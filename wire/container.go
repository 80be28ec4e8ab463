package wire

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// EncodeFunc encodes a single value of type T. Generated per-schema code
// supplies one of these (or a method value off a generated Codec) for
// every element type a container is instantiated with.
type EncodeFunc[T any] func(w Writer, v T) error

// DecodeFunc decodes a single value of type T, honoring lim for any
// further nested containers it reads.
type DecodeFunc[T any] func(r Reader, lim Limits) (T, error)

// EncodeArray writes Array<T>: a UInt count followed by exactly that many
// encodings of T, in order (spec §3/§4.2).
func EncodeArray[T any](w Writer, items []T, enc EncodeFunc[T]) error {
	if err := EncodeUInt(w, uint64(len(items))); err != nil {
		return err
	}
	for i, item := range items {
		if err := enc(w, item); err != nil {
			return wrapIndex(err, i)
		}
	}
	return nil
}

// DecodeArray reads Array<T>. The element count is checked against
// lim.MaxArrayItems before any per-element decoding happens, so a
// corrupt count can never drive more work than the caller configured for.
func DecodeArray[T any](r Reader, lim Limits, dec DecodeFunc[T]) ([]T, error) {
	n, err := DecodeUInt(r)
	if err != nil {
		return nil, err
	}
	if n > lim.MaxArrayItems {
		return nil, newErr(KindLimitExceeded, "array length", nil)
	}
	// Pre-size modestly; n is attacker-controlled so we never trust it for
	// the full allocation up front beyond a small cap independent of the
	// configured limit.
	items := make([]T, 0, minUint64(n, 64))
	for i := uint64(0); i < n; i++ {
		v, err := dec(r, lim)
		if err != nil {
			return nil, wrapIndex(err, int(i))
		}
		items = append(items, v)
	}
	return items, nil
}

func wrapIndex(err error, i int) error {
	if ce, ok := err.(*CodecError); ok {
		return newErr(ce.Kind, fmt.Sprintf("array[%d]", i), ce)
	}
	return err
}

func minUint64(a, b uint64) uint64 {
	if a < b {
		return a
	}
	return b
}

// EncodeBytes writes Bytes: a UInt length followed by that many raw
// octets (spec §3).
func EncodeBytes(w Writer, b []byte) error {
	if err := EncodeUInt(w, uint64(len(b))); err != nil {
		return err
	}
	_, err := w.Write(b)
	return err
}

// DecodeBytes reads Bytes, rejecting a declared length above
// lim.MaxBytesLen before allocating.
func DecodeBytes(r Reader, lim Limits) ([]byte, error) {
	n, err := DecodeUInt(r)
	if err != nil {
		return nil, err
	}
	if n > lim.MaxBytesLen {
		return nil, newErr(KindLimitExceeded, "bytes length", nil)
	}
	buf := make([]byte, n)
	if _, err := readFull(r, buf); err != nil {
		return nil, newErr(KindTruncated, "bytes payload", err)
	}
	return buf, nil
}

// EncodeString writes String using the same length-prefixed layout as
// Bytes. The caller is responsible for ensuring s is valid UTF-8 on
// encode; this runtime does not reject invalid UTF-8 on the way out
// (only decode performs substitution, per spec §3).
func EncodeString(w Writer, s string) error {
	return EncodeBytes(w, []byte(s))
}

// DecodeString reads String. Invalid UTF-8 sequences are replaced with
// U+FFFD rather than failing decode (spec §3, §7); this is the one
// defined lossy case in an otherwise bijective codec.
func DecodeString(r Reader, lim Limits) (string, error) {
	b, err := DecodeBytes(r, lim)
	if err != nil {
		return "", err
	}
	if utf8.Valid(b) {
		return string(b), nil
	}
	return strings.ToValidUTF8(string(b), string(utf8.RuneError)), nil
}

// readFull is io.ReadFull without importing io just for this one call
// site's error wrapping convenience.
func readFull(r Reader, buf []byte) (int, error) {
	total := 0
	for total < len(buf) {
		n, err := r.Read(buf[total:])
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// KeyPair is the element type of Map<K,V>'s backing Array (spec §3:
// `Map<K,V> = Array<KeyPair<K,V>>`).
type KeyPair[K any, V any] struct {
	Key   K
	Value V
}

// EncodeMap writes Map<K,V> as Array<KeyPair<K,V>>. Key order and
// uniqueness are whatever the caller's slice contains; the codec neither
// enforces nor normalizes either (spec §3).
func EncodeMap[K any, V any](w Writer, pairs []KeyPair[K, V], kenc EncodeFunc[K], venc EncodeFunc[V]) error {
	return EncodeArray(w, pairs, func(w Writer, p KeyPair[K, V]) error {
		if err := kenc(w, p.Key); err != nil {
			return err
		}
		return venc(w, p.Value)
	})
}

// DecodeMap reads Map<K,V>. Duplicate keys and any ordering are delivered
// to the caller as-is; this is caller-observable behavior, not an error
// (spec §3, §7).
func DecodeMap[K any, V any](r Reader, lim Limits, kdec DecodeFunc[K], vdec DecodeFunc[V]) ([]KeyPair[K, V], error) {
	return DecodeArray(r, lim, func(r Reader, lim Limits) (KeyPair[K, V], error) {
		k, err := kdec(r, lim)
		if err != nil {
			return KeyPair[K, V]{}, err
		}
		v, err := vdec(r, lim)
		if err != nil {
			return KeyPair[K, V]{}, err
		}
		return KeyPair[K, V]{Key: k, Value: v}, nil
	})
}

// Done is a zero-width builtin marker type: it consumes and produces no
// bytes. Generated code uses it for operations whose return or argument
// shape is "nothing of interest, but still a typed slot" — distinct from
// Void, which marks a whole command as acknowledgment-free (spec
// glossary, §4.7).
type Done struct{}

// EncodeDone writes nothing.
func EncodeDone(Writer, Done) error { return nil }

// DecodeDone reads nothing and always succeeds.
func DecodeDone(Reader, Limits) (Done, error) { return Done{}, nil }

// EncodeOptional writes a presence UInt (0 or 1) followed by the payload
// when present. This is the container-level building block; struct flag
// fields (struct.go) use a denser bit-packed encoding of optionality and
// do not go through this path, but hand-written schema code that needs a
// standalone optional value (outside a flag field) uses this.
func EncodeOptional[T any](w Writer, v *T, enc EncodeFunc[T]) error {
	if v == nil {
		return EncodeUInt(w, 0)
	}
	if err := EncodeUInt(w, 1); err != nil {
		return err
	}
	return enc(w, *v)
}

// DecodeOptional reads a value written by EncodeOptional.
func DecodeOptional[T any](r Reader, lim Limits, dec DecodeFunc[T]) (*T, error) {
	present, err := DecodeUInt(r)
	if err != nil {
		return nil, err
	}
	if present == 0 {
		return nil, nil
	}
	v, err := dec(r, lim)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

package wire

import (
	"encoding/binary"
	"io"
	"math"
)

// Writer is the sink every Punybuf encoder writes to. *bytes.Buffer and
// net.Conn both satisfy it; callers composing a value in memory should
// prefer bytes.Buffer so Encode can never fail on the write side.
type Writer interface {
	io.Writer
	io.ByteWriter
}

// Reader is the source every Punybuf decoder reads from. It is the
// minimal surface the codec needs: single bytes for UInt's prefix probing,
// io.Reader for everything else. bufio.Reader and the bounded
// LimitedReader (see limits.go) both satisfy it.
type Reader interface {
	io.Reader
	io.ByteReader
}

// WriteUint8 writes a single octet.
func WriteUint8(w Writer, v uint8) error {
	return w.WriteByte(v)
}

// WriteUint16 writes a big-endian 16-bit unsigned integer.
func WriteUint16(w Writer, v uint16) error {
	var buf [2]byte
	binary.BigEndian.PutUint16(buf[:], v)
	_, err := w.Write(buf[:])
	return err
}

// WriteUint32 writes a big-endian 32-bit unsigned integer.
func WriteUint32(w Writer, v uint32) error {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], v)
	_, err := w.Write(buf[:])
	return err
}

// WriteUint64 writes a big-endian 64-bit unsigned integer.
func WriteUint64(w Writer, v uint64) error {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], v)
	_, err := w.Write(buf[:])
	return err
}

// WriteInt32 writes a big-endian 32-bit two's-complement signed integer.
func WriteInt32(w Writer, v int32) error {
	return WriteUint32(w, uint32(v))
}

// WriteInt64 writes a big-endian 64-bit two's-complement signed integer.
func WriteInt64(w Writer, v int64) error {
	return WriteUint64(w, uint64(v))
}

// WriteFloat32 writes the big-endian IEEE-754 bit pattern of v.
func WriteFloat32(w Writer, v float32) error {
	return WriteUint32(w, math.Float32bits(v))
}

// WriteFloat64 writes the big-endian IEEE-754 bit pattern of v.
func WriteFloat64(w Writer, v float64) error {
	return WriteUint64(w, math.Float64bits(v))
}

// ReadUint8 reads a single octet.
func ReadUint8(r Reader) (uint8, error) {
	b, err := r.ReadByte()
	if err != nil {
		return 0, newErr(KindTruncated, "uint8", err)
	}
	return b, nil
}

// ReadUint16 reads a big-endian 16-bit unsigned integer.
func ReadUint16(r Reader) (uint16, error) {
	var buf [2]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, newErr(KindTruncated, "uint16", err)
	}
	return binary.BigEndian.Uint16(buf[:]), nil
}

// ReadUint32 reads a big-endian 32-bit unsigned integer.
func ReadUint32(r Reader) (uint32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, newErr(KindTruncated, "uint32", err)
	}
	return binary.BigEndian.Uint32(buf[:]), nil
}

// ReadUint64 reads a big-endian 64-bit unsigned integer.
func ReadUint64(r Reader) (uint64, error) {
	var buf [8]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, newErr(KindTruncated, "uint64", err)
	}
	return binary.BigEndian.Uint64(buf[:]), nil
}

// ReadInt32 reads a big-endian 32-bit two's-complement signed integer.
func ReadInt32(r Reader) (int32, error) {
	v, err := ReadUint32(r)
	if err != nil {
		return 0, err
	}
	return int32(v), nil
}

// ReadInt64 reads a big-endian 64-bit two's-complement signed integer.
func ReadInt64(r Reader) (int64, error) {
	v, err := ReadUint64(r)
	if err != nil {
		return 0, err
	}
	return int64(v), nil
}

// ReadFloat32 reads the big-endian IEEE-754 bit pattern into a float32.
func ReadFloat32(r Reader) (float32, error) {
	v, err := ReadUint32(r)
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(v), nil
}

// ReadFloat64 reads the big-endian IEEE-754 bit pattern into a float64.
func ReadFloat64(r Reader) (float64, error) {
	v, err := ReadUint64(r)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(v), nil
}

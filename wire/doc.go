// Package wire implements the Punybuf binary codec: the canonical
// variable-length unsigned integer, container layouts (Array, Bytes,
// String, Map), and the struct/enum layouts with their forward-compatible
// extension discipline.
//
// Given a schema known to both peers, every value has exactly one
// canonical byte encoding. There are no type tags on the wire; a decoder
// relies entirely on knowing, ahead of time, the shape of the value it is
// about to read. Generated per-schema code is expected to link against
// this package and implement Codec for each declared type (see codec.go).
package wire

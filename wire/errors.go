package wire

import "errors"

// Kind classifies a codec failure. Callers that need to branch on the
// failure type should use errors.Is/As against the sentinel errors below
// rather than string-matching Error().
type Kind int

const (
	// KindTruncated means the reader ran out of bytes before a value
	// finished decoding.
	KindTruncated Kind = iota
	// KindOverflow means a UInt accumulated past its decoder's cap.
	KindOverflow
	// KindLimitExceeded means a declared length (array count, byte/string
	// length, extension-region EL) exceeded a configured safety limit.
	KindLimitExceeded
	// KindUnknownDiscriminant means a sealed enum saw a discriminant it
	// does not recognize.
	KindUnknownDiscriminant
	// KindInvalidExtensionSkip means the bounded sub-reader over an
	// extension region could not skip its residual bytes (EL promised more
	// bytes than the underlying stream actually had).
	KindInvalidExtensionSkip
	// KindMalformedFlagField means a flag field's declared width or flag
	// count is internally inconsistent (e.g. more flags declared than bits
	// available). A second @extension_flags field is reported separately,
	// as ErrExtensionFlagsUnsupported.
	KindMalformedFlagField
)

func (k Kind) String() string {
	switch k {
	case KindTruncated:
		return "truncated"
	case KindOverflow:
		return "overflow"
	case KindLimitExceeded:
		return "limit exceeded"
	case KindUnknownDiscriminant:
		return "unknown discriminant"
	case KindInvalidExtensionSkip:
		return "invalid extension skip"
	case KindMalformedFlagField:
		return "malformed flag field"
	default:
		return "unknown codec error"
	}
}

// CodecError is the typed failure this package's decoders and limit checks
// return. Errors from a Writer during encoding are returned unwrapped, and
// ValidateSingleFlagField returns the plain ErrExtensionFlagsUnsupported.
// Use errors.As to recover the Kind.
type CodecError struct {
	Kind Kind
	Op   string // what was being decoded/encoded, e.g. "uint", "struct field 2"
	Err  error  // underlying cause, if any (io error, etc). May be nil.
}

func (e *CodecError) Error() string {
	if e.Err != nil {
		return e.Op + ": " + e.Kind.String() + ": " + e.Err.Error()
	}
	return e.Op + ": " + e.Kind.String()
}

func (e *CodecError) Unwrap() error { return e.Err }

func newErr(kind Kind, op string, cause error) *CodecError {
	return &CodecError{Kind: kind, Op: op, Err: cause}
}

// ErrExtensionFlagsUnsupported is returned by schema-facing helpers that
// refuse to accept a secondary (@extension_flags) flag field on a struct.
// The wire form of @extension_flags is left undecided by the schema
// language (see spec §9); this runtime declines to guess at it.
var ErrExtensionFlagsUnsupported = errors.New("wire: @extension_flags secondary flag fields are not supported")

// Is implements errors.Is support so callers can write
// errors.Is(err, wire.ErrTruncated) etc. against a Kind without needing
// a *CodecError value in hand.
func (e *CodecError) Is(target error) bool {
	switch target {
	case ErrTruncated:
		return e.Kind == KindTruncated
	case ErrOverflow:
		return e.Kind == KindOverflow
	case ErrLimitExceeded:
		return e.Kind == KindLimitExceeded
	case ErrUnknownDiscriminant:
		return e.Kind == KindUnknownDiscriminant
	case ErrInvalidExtensionSkip:
		return e.Kind == KindInvalidExtensionSkip
	case ErrMalformedFlagField:
		return e.Kind == KindMalformedFlagField
	}
	return false
}

// Sentinel errors usable with errors.Is(err, wire.ErrX).
var (
	ErrTruncated            = errors.New("wire: truncated")
	ErrOverflow             = errors.New("wire: overflow")
	ErrLimitExceeded        = errors.New("wire: limit exceeded")
	ErrUnknownDiscriminant  = errors.New("wire: unknown discriminant")
	ErrInvalidExtensionSkip = errors.New("wire: invalid extension skip")
	ErrMalformedFlagField   = errors.New("wire: malformed flag field")
)

package scale

import "errors"

// Kind classifies a decoding or encoding failure.
type Kind uint8

const (
	// KindCustom carries a message raised by a value's own marshalling logic.
	KindCustom Kind = iota
	// KindUnexpectedEnd means the input ended before a shape was fully read.
	KindUnexpectedEnd
	// KindOptionTag means an option tag byte was neither 0x00 nor 0x01.
	KindOptionTag
	// KindBoolOptionTag means an optional-bool byte was outside {0, 1, 2}.
	KindBoolOptionTag
	// KindUTF8 means string bytes were not valid UTF-8, or a char was not a
	// valid Unicode scalar value.
	KindUTF8
	// KindVariantIndex means an enum variant index had no declared variant.
	KindVariantIndex
	// KindCompactEncoding means a compact integer was not in canonical form.
	KindCompactEncoding
	// KindTrailingData means bytes remained after a strict top-level decode.
	KindTrailingData
	// KindUnsupported means the shape has no SCALE encoding (e.g. floats).
	KindUnsupported
)

// Error is the unified error type for the package. Both failure domains,
// malformed wire bytes and errors raised by a value's own marshalling
// logic, fold into it so every error a caller sees renders as readable text.
type Error struct {
	kind Kind
	msg  string
}

// Kind returns the failure class.
func (e *Error) Kind() Kind { return e.kind }

// Error implements the error interface.
func (e *Error) Error() string { return e.msg }

// Is matches errors of the same kind, so errors wrapped with additional
// context still compare equal to their sentinel under errors.Is.
// Custom errors match only themselves.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if e.kind == KindCustom {
		return e == t
	}
	return e.kind == t.kind
}

var (
	// ErrUnexpectedEnd indicates the input ended before the requested shape
	// was fully read.
	ErrUnexpectedEnd = &Error{kind: KindUnexpectedEnd, msg: "scale: unexpected end of input"}

	// ErrOptionTag indicates an option tag byte other than 0x00 or 0x01.
	ErrOptionTag = &Error{kind: KindOptionTag, msg: "scale: invalid option tag"}

	// ErrBoolOptionTag indicates an optional-bool byte outside {0x00, 0x01, 0x02}.
	ErrBoolOptionTag = &Error{kind: KindBoolOptionTag, msg: "scale: invalid boolean option tag"}

	// ErrUTF8 indicates string bytes that are not valid UTF-8, or a char
	// value that is not a valid Unicode scalar value.
	ErrUTF8 = &Error{kind: KindUTF8, msg: "scale: invalid UTF-8"}

	// ErrVariantIndex indicates an enum variant index with no declared
	// variant, or an index that does not fit in a single byte on encode.
	ErrVariantIndex = &Error{kind: KindVariantIndex, msg: "scale: invalid variant index"}

	// ErrCompactEncoding indicates a compact integer that is not in
	// canonical form: the value could have been encoded in fewer bytes.
	ErrCompactEncoding = &Error{kind: KindCompactEncoding, msg: "scale: non-canonical compact integer"}

	// ErrTrailingData is returned by Unmarshal when bytes remain in the
	// input after the value has been fully decoded.
	ErrTrailingData = &Error{kind: KindTrailingData, msg: "scale: trailing bytes after decoding"}

	// ErrUnsupported indicates a shape with no SCALE encoding.
	ErrUnsupported = &Error{kind: KindUnsupported, msg: "scale: unsupported shape"}
)

// ErrNilSink indicates that NewEncoderWriter was called with a nil
// io.Writer. This is caller misuse, not a wire-format failure, so it is a
// plain sentinel rather than an Error kind.
var ErrNilSink = errors.New("scale: NewEncoderWriter called with a nil io.Writer")

// Custom builds an Error carrying a message from a value's own
// marshalling logic.
func Custom(msg string) *Error {
	return &Error{kind: KindCustom, msg: "scale: " + msg}
}

// customErr is the one-way conversion from the marshalling-logic error
// domain into the unified Error type. Errors that already are, or wrap,
// an *Error pass through unchanged.
func customErr(err error) error {
	if err == nil {
		return nil
	}
	var se *Error
	if errors.As(err, &se) {
		return err
	}
	return Custom(err.Error())
}

// Package scale implements the SCALE compact binary wire format: fixed
// width little-endian numerics, compact variable-width lengths, and no
// per-field framing.
//
// Types describe their own shape to an Encoder or Decoder by implementing
// Marshaler and Unmarshaler. Types without hand-written methods are walked
// reflectively: bools, fixed-width integers, strings, byte slices, slices,
// arrays, maps, structs (exported fields in declaration order), and
// pointers, which encode as options. Wrap couples either kind of value to
// the wire-level Codec contract.
package scale

import (
	"encoding"
	"fmt"
	"io"
)

// Marshaler is implemented by types that emit their own SCALE encoding.
// Implementations drive the Encoder's per-shape methods in field
// declaration order; a returned error aborts the encode and surfaces as a
// Custom error.
type Marshaler interface {
	MarshalSCALE(e *Encoder) error
}

// Unmarshaler is implemented by types that reconstruct themselves from a
// Decoder. Implementations must consume exactly the bytes their shape
// requires.
type Unmarshaler interface {
	UnmarshalSCALE(d *Decoder) error
}

// Sizer is an interface for types that can report their binary size.
// This is useful for pre-allocating buffers before encoding.
type Sizer interface {
	// Size returns the size of the type in bytes when SCALE encoded,
	// or -1 if the value cannot be encoded.
	Size() int
}

// WireMarshaler defines the wire-level encoding contract. It integrates
// standard library interfaces and provides an allocation-free option.
type WireMarshaler interface {
	// encoding.BinaryMarshaler provides the primary encoding method.
	// It allocates and returns a new byte slice.
	encoding.BinaryMarshaler
	// io.WriterTo streams the encoding into a caller-supplied sink without
	// building the byte slice in memory.
	io.WriterTo

	// MarshalTo encodes into a pre-allocated buffer, returning
	// io.ErrShortWrite if the buffer is too small.
	MarshalTo(buf []byte) (int, error)
}

// WireUnmarshaler defines the wire-level decoding contract.
type WireUnmarshaler interface {
	encoding.BinaryUnmarshaler
	io.ReaderFrom
}

// Codec aggregates the wire-level contracts. A type implementing Codec is
// a complete, self-sizing SCALE encoder/decoder.
type Codec interface {
	Sizer
	WireMarshaler
	WireUnmarshaler
}

// Marshal encodes v and returns the SCALE bytes. A top-level pointer is
// dereferenced first; pointers inside v encode as options.
func Marshal(v any) ([]byte, error) {
	e := NewEncoder()
	if err := marshalValue(e, v); err != nil {
		return nil, err
	}
	return e.Bytes(), nil
}

// MarshalTo encodes v into the caller-supplied buffer and returns the
// number of bytes written. It allocates nothing beyond what v's own
// marshalling requires; a buffer too small yields io.ErrShortWrite.
func MarshalTo(v any, buf []byte) (int, error) {
	e := NewEncoderBuffer(buf)
	if err := marshalValue(e, v); err != nil {
		return int(e.Count()), err
	}
	return int(e.Count()), nil
}

// EncodeTo streams the encoding of v into w and returns the number of
// bytes written.
func EncodeTo(w io.Writer, v any) (int64, error) {
	e := NewEncoderWriter(w)
	if err := marshalValue(e, v); err != nil {
		return e.Count(), err
	}
	return e.Count(), nil
}

// Size returns the encoded size of v in bytes by running a counting
// encode, or -1 if v cannot be encoded. Together with MarshalTo this is
// the two-pass, allocation-free encoding path.
func Size(v any) int {
	e := NewEncoderWriter(io.Discard)
	if err := marshalValue(e, v); err != nil {
		return -1
	}
	return int(e.Count())
}

// Unmarshal decodes data into v, which must be a non-nil pointer to the
// destination value. Unmarshal is strict about input length: bytes left
// over after the value is complete yield ErrTrailingData.
func Unmarshal(data []byte, v any) error {
	n, err := UnmarshalPrefix(data, v)
	if err != nil {
		return err
	}
	if rest := len(data) - n; rest > 0 {
		return fmt.Errorf("%w: %d bytes", ErrTrailingData, rest)
	}
	return nil
}

// UnmarshalPrefix decodes one value from the front of data into v and
// returns the number of bytes consumed. It is the lenient counterpart of
// Unmarshal: trailing bytes are left for the caller.
func UnmarshalPrefix(data []byte, v any) (int, error) {
	d := NewDecoder(data)
	if err := unmarshalValue(d, v); err != nil {
		return d.Offset(), err
	}
	return d.Offset(), nil
}

// marshalValue drives v through the Encoder: hand-written Marshaler
// implementations first, the reflective walker otherwise. The returned
// error is always nil or an *Error (possibly wrapped).
func marshalValue(e *Encoder, v any) error {
	if m, ok := v.(Marshaler); ok {
		err := m.MarshalSCALE(e)
		// A latched encoder error is the root cause and already belongs to
		// the wire domain; only errors raised with a clean encoder are
		// converted as custom.
		if lerr := e.Err(); lerr != nil {
			return lerr
		}
		if err != nil {
			return customErr(err)
		}
		return nil
	}
	marshalReflect(e, v)
	return e.Err()
}

// unmarshalValue drives v's reconstruction from the Decoder.
func unmarshalValue(d *Decoder, v any) error {
	if u, ok := v.(Unmarshaler); ok {
		err := u.UnmarshalSCALE(d)
		if lerr := d.Err(); lerr != nil {
			return lerr
		}
		if err != nil {
			return customErr(err)
		}
		return nil
	}
	if err := unmarshalReflect(d, v); err != nil {
		return err
	}
	return d.Err()
}

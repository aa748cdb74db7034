package scale

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Encoder emits SCALE bytes for one top-level value. It tracks the first
// error that occurs; after an error, all subsequent emit operations become
// no-ops. Encoding into memory cannot fail for any supported shape, so the
// error state only triggers for unsupported shapes, oversized variant
// indices, a full caller-supplied buffer, or a failing sink.
//
// An Encoder is built fresh per top-level encode and holds no state beyond
// that call's output.
type Encoder struct {
	buf   []byte
	w     io.Writer // streaming sink; when set, buf stays nil
	fixed bool      // buf is caller-owned and must not grow
	count int64     // total bytes emitted
	err   error     // first error encountered
}

// NewEncoder creates an Encoder that appends to a growable buffer.
func NewEncoder() *Encoder {
	return &Encoder{}
}

// NewEncoderBuffer creates an Encoder that fills the caller-supplied buffer
// without allocating. Emitting past its capacity latches io.ErrShortWrite.
func NewEncoderBuffer(buf []byte) *Encoder {
	return &Encoder{buf: buf[:0], fixed: true}
}

// NewEncoderWriter creates an Encoder that streams into w without
// buffering. The caller owns the sink; any write error latches.
func NewEncoderWriter(w io.Writer) *Encoder {
	if w == nil {
		return &Encoder{err: ErrNilSink}
	}
	return &Encoder{w: w}
}

// Bytes returns the bytes emitted so far. It is meaningless for a
// streaming Encoder.
func (e *Encoder) Bytes() []byte { return e.buf }

// Count returns the total number of bytes emitted.
func (e *Encoder) Count() int64 { return e.count }

// Err returns the first error encountered, if any.
func (e *Encoder) Err() error { return e.err }

// fail records the first non-nil error. This preserves the root cause of a
// failure chain instead of a later, less relevant error.
func (e *Encoder) fail(err error) {
	if e.err == nil && err != nil {
		e.err = err
	}
}

func (e *Encoder) write(p []byte) {
	if e.err != nil {
		return
	}
	if e.w != nil {
		n, err := e.w.Write(p)
		e.count += int64(n)
		if err == nil && n < len(p) {
			err = io.ErrShortWrite
		}
		e.fail(err)
		return
	}
	if e.fixed && len(e.buf)+len(p) > cap(e.buf) {
		e.fail(io.ErrShortWrite)
		return
	}
	e.buf = append(e.buf, p...)
	e.count += int64(len(p))
}

func (e *Encoder) writeByte(b byte) {
	if e.err != nil {
		return
	}
	if e.w == nil {
		if e.fixed && len(e.buf) == cap(e.buf) {
			e.fail(io.ErrShortWrite)
			return
		}
		e.buf = append(e.buf, b)
		e.count++
		return
	}
	e.write([]byte{b})
}

// --- Primitive shapes ---

// EncodeBool emits a single byte, 0x01 for true and 0x00 for false.
func (e *Encoder) EncodeBool(v bool) {
	if v {
		e.writeByte(0x01)
	} else {
		e.writeByte(0x00)
	}
}

// EncodeUnit emits nothing. The unit shape occupies zero bytes.
func (e *Encoder) EncodeUnit() {}

func (e *Encoder) EncodeUint8(v uint8) { e.writeByte(v) }

func (e *Encoder) EncodeUint16(v uint16) {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	e.write(b[:])
}

func (e *Encoder) EncodeUint32(v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	e.write(b[:])
}

func (e *Encoder) EncodeUint64(v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	e.write(b[:])
}

func (e *Encoder) EncodeInt8(v int8) { e.writeByte(uint8(v)) }

func (e *Encoder) EncodeInt16(v int16) { e.EncodeUint16(uint16(v)) }

func (e *Encoder) EncodeInt32(v int32) { e.EncodeUint32(uint32(v)) }

func (e *Encoder) EncodeInt64(v int64) { e.EncodeUint64(uint64(v)) }

// EncodeFloat32 latches ErrUnsupported. SCALE defines no floating point
// encoding.
func (e *Encoder) EncodeFloat32(float32) {
	e.fail(fmt.Errorf("%w: float32", ErrUnsupported))
}

// EncodeFloat64 latches ErrUnsupported. SCALE defines no floating point
// encoding.
func (e *Encoder) EncodeFloat64(float64) {
	e.fail(fmt.Errorf("%w: float64", ErrUnsupported))
}

// EncodeRune emits a char as its Unicode scalar value, four bytes
// little-endian.
func (e *Encoder) EncodeRune(r rune) { e.EncodeUint32(uint32(r)) }

// --- Length-prefixed shapes ---

// EncodeCompact emits a compact integer.
func (e *Encoder) EncodeCompact(v uint64) {
	if e.err != nil {
		return
	}
	var scratch [9]byte
	e.write(appendCompact(scratch[:0], v))
}

// EncodeLen emits a sequence, map, string or bytes length as a compact
// integer.
func (e *Encoder) EncodeLen(n int) {
	if n < 0 {
		e.fail(Custom(fmt.Sprintf("negative length %d", n)))
		return
	}
	e.EncodeCompact(uint64(n))
}

// EncodeString emits a compact byte count followed by the raw bytes. The
// string is not re-validated: Go strings handed to the encoder are taken
// as-is.
func (e *Encoder) EncodeString(s string) {
	e.EncodeLen(len(s))
	if e.err != nil || len(s) == 0 {
		return
	}
	if e.w != nil {
		n, err := io.WriteString(e.w, s)
		e.count += int64(n)
		if err == nil && n < len(s) {
			err = io.ErrShortWrite
		}
		e.fail(err)
		return
	}
	if e.fixed && len(e.buf)+len(s) > cap(e.buf) {
		e.fail(io.ErrShortWrite)
		return
	}
	e.buf = append(e.buf, s...)
	e.count += int64(len(s))
}

// EncodeBytes emits a compact byte count followed by the raw bytes.
func (e *Encoder) EncodeBytes(b []byte) {
	e.EncodeLen(len(b))
	if len(b) > 0 {
		e.write(b)
	}
}

// --- Options, variants ---

// EncodeNone emits the absent branch of a generic option: a single 0x00.
func (e *Encoder) EncodeNone() { e.writeByte(0x00) }

// EncodeSome emits the present branch tag of a generic option: a single
// 0x01. The payload must be emitted immediately after.
//
// For an option whose payload shape is bool, use EncodeOptionBool instead.
func (e *Encoder) EncodeSome() { e.writeByte(0x01) }

// EncodeOptionBool emits an optional bool as a single byte: 0x00 for nil,
// 0x01 for false, 0x02 for true. This follows the SCALE convention for
// boolean options rather than the generic tag-plus-payload option rule.
// Callers that need the generic two-byte form must wrap the bool in a
// single-field struct.
func (e *Encoder) EncodeOptionBool(v *bool) {
	switch {
	case v == nil:
		e.writeByte(0x00)
	case !*v:
		e.writeByte(0x01)
	default:
		e.writeByte(0x02)
	}
}

// EncodeVariant emits an enum variant index as a single byte. The payload,
// if any, must be emitted immediately after. An index outside 0..255
// latches ErrVariantIndex.
func (e *Encoder) EncodeVariant(index int) {
	if index < 0 || index > 0xFF {
		e.fail(fmt.Errorf("%w: %d does not fit in one byte", ErrVariantIndex, index))
		return
	}
	e.writeByte(byte(index))
}

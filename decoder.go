package scale

import (
	"fmt"
	"math"
	"unicode/utf8"
)

// Decoder reads SCALE bytes for one top-level value. It owns a monotonic
// cursor into an immutable byte slice; the cursor only ever advances. Like
// the Encoder it latches the first error, so a decode sequence can run to
// the end and be checked once with Err.
//
// The Decoder itself never rejects leftover input: whether trailing bytes
// after a complete decode are an error is the caller's policy. Unmarshal
// implements the strict policy; use a Decoder directly (or UnmarshalPrefix)
// for the lenient one.
type Decoder struct {
	data []byte
	pos  int
	err  error
}

// NewDecoder creates a Decoder over data. The slice must not be mutated
// while the Decoder is in use.
func NewDecoder(data []byte) *Decoder {
	return &Decoder{data: data}
}

// Err returns the first error encountered, if any.
func (d *Decoder) Err() error { return d.err }

// Offset returns the number of bytes consumed so far.
func (d *Decoder) Offset() int { return d.pos }

// Remaining returns the number of unconsumed bytes.
func (d *Decoder) Remaining() int { return len(d.data) - d.pos }

// fail records the first non-nil error.
func (d *Decoder) fail(err error) {
	if d.err == nil && err != nil {
		d.err = err
	}
}

// read consumes exactly n bytes and returns them, or latches
// ErrUnexpectedEnd and returns nil. The returned slice aliases the input
// and must be copied if retained.
func (d *Decoder) read(n int) []byte {
	if d.err != nil {
		return nil
	}
	if rest := len(d.data) - d.pos; rest < n {
		d.fail(fmt.Errorf("%w: need %d bytes, have %d", ErrUnexpectedEnd, n, rest))
		return nil
	}
	b := d.data[d.pos : d.pos+n]
	d.pos += n
	return b
}

func (d *Decoder) readByte() (byte, bool) {
	if d.err != nil {
		return 0, false
	}
	if d.pos >= len(d.data) {
		d.fail(fmt.Errorf("%w: need 1 byte, have 0", ErrUnexpectedEnd))
		return 0, false
	}
	b := d.data[d.pos]
	d.pos++
	return b, true
}

// --- Primitive shapes ---

// DecodeBool reads a single byte into dst. Only 0x00 and 0x01 are valid.
func (d *Decoder) DecodeBool(dst *bool) {
	b, ok := d.readByte()
	if !ok {
		return
	}
	if b > 0x01 {
		d.fail(Custom(fmt.Sprintf("invalid boolean byte 0x%02x", b)))
		return
	}
	*dst = b == 0x01
}

// DecodeUnit consumes nothing. The unit shape occupies zero bytes.
func (d *Decoder) DecodeUnit() {}

func (d *Decoder) DecodeUint8(dst *uint8) {
	if b, ok := d.readByte(); ok {
		*dst = b
	}
}

func (d *Decoder) DecodeUint16(dst *uint16) {
	if b := d.read(2); b != nil {
		*dst = uint16(b[0]) | uint16(b[1])<<8
	}
}

func (d *Decoder) DecodeUint32(dst *uint32) {
	if b := d.read(4); b != nil {
		*dst = uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
	}
}

func (d *Decoder) DecodeUint64(dst *uint64) {
	if b := d.read(8); b != nil {
		*dst = uint64(b[0]) | uint64(b[1])<<8 | uint64(b[2])<<16 | uint64(b[3])<<24 |
			uint64(b[4])<<32 | uint64(b[5])<<40 | uint64(b[6])<<48 | uint64(b[7])<<56
	}
}

func (d *Decoder) DecodeInt8(dst *int8) {
	if b, ok := d.readByte(); ok {
		*dst = int8(b)
	}
}

func (d *Decoder) DecodeInt16(dst *int16) {
	var v uint16
	d.DecodeUint16(&v)
	if d.err == nil {
		*dst = int16(v)
	}
}

func (d *Decoder) DecodeInt32(dst *int32) {
	var v uint32
	d.DecodeUint32(&v)
	if d.err == nil {
		*dst = int32(v)
	}
}

func (d *Decoder) DecodeInt64(dst *int64) {
	var v uint64
	d.DecodeUint64(&v)
	if d.err == nil {
		*dst = int64(v)
	}
}

// DecodeFloat32 latches ErrUnsupported. SCALE defines no floating point
// encoding.
func (d *Decoder) DecodeFloat32(*float32) {
	d.fail(fmt.Errorf("%w: float32", ErrUnsupported))
}

// DecodeFloat64 latches ErrUnsupported. SCALE defines no floating point
// encoding.
func (d *Decoder) DecodeFloat64(*float64) {
	d.fail(fmt.Errorf("%w: float64", ErrUnsupported))
}

// DecodeRune reads a char as a four-byte little-endian Unicode scalar
// value. Surrogates and out-of-range values latch ErrUTF8.
func (d *Decoder) DecodeRune(dst *rune) {
	var v uint32
	d.DecodeUint32(&v)
	if d.err != nil {
		return
	}
	if v > utf8.MaxRune || !utf8.ValidRune(rune(v)) {
		d.fail(fmt.Errorf("%w: 0x%x is not a Unicode scalar value", ErrUTF8, v))
		return
	}
	*dst = rune(v)
}

// --- Length-prefixed shapes ---

// DecodeCompact reads a compact integer into dst.
func (d *Decoder) DecodeCompact(dst *uint64) {
	if d.err != nil {
		return
	}
	v, n, err := DecodeCompact(d.data[d.pos:])
	if err != nil {
		d.fail(err)
		return
	}
	d.pos += n
	*dst = v
}

// DecodeLen reads a sequence, map, string or bytes length. A length that
// overflows int latches ErrUnexpectedEnd, since no input this size can
// follow.
func (d *Decoder) DecodeLen() int {
	var v uint64
	d.DecodeCompact(&v)
	if d.err != nil {
		return 0
	}
	if v > math.MaxInt {
		d.fail(fmt.Errorf("%w: declared length %d", ErrUnexpectedEnd, v))
		return 0
	}
	return int(v)
}

// DecodeString reads a compact byte count followed by that many bytes and
// validates them as UTF-8.
func (d *Decoder) DecodeString(dst *string) {
	n := d.DecodeLen()
	b := d.read(n)
	if d.err != nil {
		return
	}
	if !utf8.Valid(b) {
		d.fail(fmt.Errorf("%w: string of %d bytes", ErrUTF8, n))
		return
	}
	*dst = string(b)
}

// DecodeBytes reads a compact byte count followed by that many raw bytes.
// The result is a copy and does not alias the input.
func (d *Decoder) DecodeBytes(dst *[]byte) {
	n := d.DecodeLen()
	b := d.read(n)
	if d.err != nil {
		return
	}
	*dst = append([]byte(nil), b...)
}

// --- Options, variants ---

// DecodeOption reads a generic option tag byte and reports whether the
// payload is present. Any tag other than 0x00 or 0x01 latches ErrOptionTag.
//
// For an option whose payload shape is bool, use DecodeOptionBool instead.
func (d *Decoder) DecodeOption() bool {
	b, ok := d.readByte()
	if !ok {
		return false
	}
	if b > 0x01 {
		d.fail(fmt.Errorf("%w: 0x%02x", ErrOptionTag, b))
		return false
	}
	return b == 0x01
}

// DecodeOptionBool reads an optional bool from a single byte: 0x00 sets
// dst to nil, 0x01 to a false pointer, 0x02 to a true pointer. Any other
// byte latches ErrBoolOptionTag.
func (d *Decoder) DecodeOptionBool(dst **bool) {
	b, ok := d.readByte()
	if !ok {
		return
	}
	switch b {
	case 0x00:
		*dst = nil
	case 0x01, 0x02:
		v := b == 0x02
		*dst = &v
	default:
		d.fail(fmt.Errorf("%w: 0x%02x", ErrBoolOptionTag, b))
	}
}

// DecodeVariant reads an enum variant index byte and checks it against the
// number of declared variants. An index with no declared variant latches
// ErrVariantIndex.
func (d *Decoder) DecodeVariant(variants int) int {
	b, ok := d.readByte()
	if !ok {
		return 0
	}
	if int(b) >= variants {
		d.fail(fmt.Errorf("%w: %d with %d declared variants", ErrVariantIndex, b, variants))
		return 0
	}
	return int(b)
}

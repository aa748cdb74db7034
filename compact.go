package scale

import (
	"fmt"
	"math/bits"

	"golang.org/x/exp/constraints"
)

// Compact integer encoding. The two low bits of the first byte select the
// mode, the remaining bits carry the value:
//
//	0b00  single byte, values 0..63
//	0b01  two bytes little-endian, values 64..2^14-1
//	0b10  four bytes little-endian, values 2^14..2^30-1
//	0b11  first byte holds the length-4 of the following little-endian
//	      bytes, values 2^30..2^64-1
//
// Decoding is strict: a value encoded in more bytes than the minimal mode
// allows is rejected with ErrCompactEncoding.

// AppendCompact appends the compact encoding of v to dst and returns the
// extended slice.
func AppendCompact[T constraints.Unsigned](dst []byte, v T) []byte {
	return appendCompact(dst, uint64(v))
}

func appendCompact(dst []byte, v uint64) []byte {
	switch {
	case v < 1<<6:
		return append(dst, byte(v)<<2)
	case v < 1<<14:
		u := uint16(v)<<2 | 0b01
		return append(dst, byte(u), byte(u>>8))
	case v < 1<<30:
		u := uint32(v)<<2 | 0b10
		return append(dst, byte(u), byte(u>>8), byte(u>>16), byte(u>>24))
	default:
		n := (bits.Len64(v) + 7) / 8
		dst = append(dst, byte(n-4)<<2|0b11)
		for i := 0; i < n; i++ {
			dst = append(dst, byte(v>>(8*i)))
		}
		return dst
	}
}

// DecodeCompact reads one compact integer from the front of b. It returns
// the value and the number of bytes consumed. Truncated input yields
// ErrUnexpectedEnd; a non-canonical encoding yields ErrCompactEncoding.
func DecodeCompact(b []byte) (uint64, int, error) {
	if len(b) == 0 {
		return 0, 0, fmt.Errorf("%w: compact integer", ErrUnexpectedEnd)
	}
	switch b[0] & 0b11 {
	case 0b00:
		return uint64(b[0] >> 2), 1, nil

	case 0b01:
		if len(b) < 2 {
			return 0, 0, fmt.Errorf("%w: two-byte compact integer", ErrUnexpectedEnd)
		}
		v := uint64(b[0])>>2 | uint64(b[1])<<6
		if v < 1<<6 {
			return 0, 0, fmt.Errorf("%w: %d fits in one byte", ErrCompactEncoding, v)
		}
		return v, 2, nil

	case 0b10:
		if len(b) < 4 {
			return 0, 0, fmt.Errorf("%w: four-byte compact integer", ErrUnexpectedEnd)
		}
		v := uint64(b[0])>>2 | uint64(b[1])<<6 | uint64(b[2])<<14 | uint64(b[3])<<22
		if v < 1<<14 {
			return 0, 0, fmt.Errorf("%w: %d fits in two bytes", ErrCompactEncoding, v)
		}
		return v, 4, nil

	default:
		n := int(b[0]>>2) + 4
		if n > 8 {
			return 0, 0, fmt.Errorf("%w: %d-byte compact integer exceeds 64 bits", ErrCompactEncoding, n)
		}
		if len(b) < 1+n {
			return 0, 0, fmt.Errorf("%w: %d-byte compact integer", ErrUnexpectedEnd, n)
		}
		var v uint64
		for i := 0; i < n; i++ {
			v |= uint64(b[1+i]) << (8 * i)
		}
		if b[n] == 0 {
			return 0, 0, fmt.Errorf("%w: leading zero byte in %d-byte compact integer", ErrCompactEncoding, n)
		}
		if v < 1<<30 {
			return 0, 0, fmt.Errorf("%w: %d fits in four bytes", ErrCompactEncoding, v)
		}
		return v, 1 + n, nil
	}
}

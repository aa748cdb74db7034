package scale

import (
	"bytes"
	"io"
)

// Wrap couples a value to the wire-level Codec contract. The value's own
// MarshalSCALE/UnmarshalSCALE drive the encoding when present; otherwise
// the reflective walk does. Wrap holds no state beyond the wrapped value,
// and every method builds a fresh adapter for its one call.
//
//	original := Foo{X: 3, S: "foo"}
//	data, _ := scale.Wrap[Foo]{Value: original}.MarshalBinary()
//	var decoded scale.Wrap[Foo]
//	_ = decoded.UnmarshalBinary(data)
type Wrap[T any] struct {
	Value T
}

// Statically assert that Wrap satisfies the wire contract.
var _ Codec = (*Wrap[struct{}])(nil)

// Size returns the encoded size in bytes via a counting pass, or -1 if
// the value cannot be encoded. Together with MarshalTo this supports
// two-pass, allocation-free encoding into a caller-owned buffer.
func (w Wrap[T]) Size() int {
	return Size(&w.Value)
}

// MarshalBinary implements encoding.BinaryMarshaler. It allocates and
// returns a new byte slice.
func (w Wrap[T]) MarshalBinary() ([]byte, error) {
	return Marshal(&w.Value)
}

// MarshalTo encodes into the caller-supplied buffer without allocating,
// returning io.ErrShortWrite if the buffer is too small.
func (w Wrap[T]) MarshalTo(buf []byte) (int, error) {
	return MarshalTo(&w.Value, buf)
}

// WriteTo implements io.WriterTo, streaming the encoding into wr.
func (w Wrap[T]) WriteTo(wr io.Writer) (int64, error) {
	return EncodeTo(wr, &w.Value)
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler. It is strict
// about input length: trailing bytes yield ErrTrailingData.
func (w *Wrap[T]) UnmarshalBinary(data []byte) error {
	return Unmarshal(data, &w.Value)
}

// ReadFrom implements io.ReaderFrom. It drains r into a pooled buffer and
// decodes the whole payload; since the reader is consumed either way, the
// strict trailing-data policy applies.
func (w *Wrap[T]) ReadFrom(r io.Reader) (int64, error) {
	buf := bytesBufPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer bytesBufPool.Put(buf)

	n, err := buf.ReadFrom(r)
	if err != nil {
		return n, err
	}
	return n, w.UnmarshalBinary(buf.Bytes())
}

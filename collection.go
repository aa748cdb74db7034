package scale

import (
	"sort"

	"golang.org/x/exp/constraints"
)

// Generic helpers for composite shapes. Each takes the per-element codec
// as a callback so element shapes resolve statically at the call site.

// EncodeOption emits a generic option: a tag byte followed by the payload
// when present. When the payload shape is statically bool the single-byte
// optional-bool rule applies instead, before the generic rule; wrap the
// bool in a single-field struct to force the generic form.
func EncodeOption[T any](e *Encoder, v *T, enc func(*Encoder, T)) {
	if b, ok := any(v).(*bool); ok {
		e.EncodeOptionBool(b)
		return
	}
	if v == nil {
		e.EncodeNone()
		return
	}
	e.EncodeSome()
	enc(e, *v)
}

// DecodeOption reads a generic option into dst, allocating the payload
// only when present. The optional-bool single-byte rule applies when the
// payload shape is statically bool.
func DecodeOption[T any](d *Decoder, dst **T, dec func(*Decoder, *T)) {
	if b, ok := any(dst).(**bool); ok {
		d.DecodeOptionBool(b)
		return
	}
	if !d.DecodeOption() {
		if d.err == nil {
			*dst = nil
		}
		return
	}
	v := new(T)
	dec(d, v)
	if d.err == nil {
		*dst = v
	}
}

// EncodeSlice emits a compact element count followed by the elements in
// order, with no per-element framing.
func EncodeSlice[T any](e *Encoder, items []T, enc func(*Encoder, T)) {
	e.EncodeLen(len(items))
	for _, item := range items {
		if e.err != nil {
			return
		}
		enc(e, item)
	}
}

// DecodeSlice reads a compact element count and decodes exactly that many
// elements in order, appending each to *dst. The initial capacity is
// clamped to the remaining input so a forged count cannot force a huge
// allocation.
func DecodeSlice[T any](d *Decoder, dst *[]T, dec func(*Decoder, *T)) {
	n := d.DecodeLen()
	if d.err != nil {
		return
	}
	items := make([]T, 0, min(n, d.Remaining()))
	for i := 0; i < n; i++ {
		var item T
		dec(d, &item)
		if d.err != nil {
			return
		}
		items = append(items, item)
	}
	*dst = items
}

// EncodeMap emits a compact pair count followed by the pairs in ascending
// key order. Go map iteration is randomized, so keys are sorted to keep
// the encoding deterministic.
func EncodeMap[K constraints.Ordered, V any](e *Encoder, m map[K]V, encK func(*Encoder, K), encV func(*Encoder, V)) {
	e.EncodeLen(len(m))
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	for _, k := range keys {
		if e.err != nil {
			return
		}
		encK(e, k)
		encV(e, m[k])
	}
}

// DecodeMap reads a compact pair count and decodes exactly that many
// key/value pairs in order into *dst.
func DecodeMap[K comparable, V any](d *Decoder, dst *map[K]V, decK func(*Decoder, *K), decV func(*Decoder, *V)) {
	n := d.DecodeLen()
	if d.err != nil {
		return
	}
	m := make(map[K]V, min(n, d.Remaining()))
	for i := 0; i < n; i++ {
		var k K
		var v V
		decK(d, &k)
		decV(d, &v)
		if d.err != nil {
			return
		}
		m[k] = v
	}
	*dst = m
}

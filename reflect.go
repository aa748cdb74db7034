package scale

import (
	"fmt"
	"reflect"
	"sort"
	"sync"

	"github.com/puzpuzpuz/xsync/v4"
)

// plan holds the compiled encode and decode paths for one Go type. Both
// paths latch failures on the adapter, so a compiled plan never needs to
// return errors itself.
type plan struct {
	enc func(e *Encoder, v reflect.Value)
	dec func(d *Decoder, v reflect.Value) // v must be addressable
}

// plans avoids recompiling the reflective walk on every call. A global
// concurrent map makes the cache safe across goroutines.
var plans = xsync.NewMap[reflect.Type, *plan]()

var (
	marshalerType   = reflect.TypeOf((*Marshaler)(nil)).Elem()
	unmarshalerType = reflect.TypeOf((*Unmarshaler)(nil)).Elem()
)

// marshalReflect walks v and emits it. Top-level pointers locate the value
// and are dereferenced; only interior pointers encode as options.
func marshalReflect(e *Encoder, v any) {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() {
		e.fail(Custom("cannot encode untyped nil"))
		return
	}
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			e.fail(Custom("cannot encode nil pointer"))
			return
		}
		rv = rv.Elem()
	}
	planFor(rv.Type()).enc(e, rv)
}

// unmarshalReflect decodes into v, which must be a non-nil pointer to the
// destination. The outermost pointer is the destination, not an option.
func unmarshalReflect(d *Decoder, v any) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return Custom(fmt.Sprintf("destination must be a non-nil pointer, got %T", v))
	}
	planFor(rv.Type().Elem()).dec(d, rv.Elem())
	return d.Err()
}

// planFor returns the cached plan for t, compiling it on first use. A
// wait-guarded indirection is published before compiling so recursive
// types, and other goroutines racing on the same type, resolve to the
// plan being built; the funcs only run at encode/decode time, after
// compilation has finished.
func planFor(t reflect.Type) *plan {
	if p, ok := plans.Load(t); ok {
		return p
	}
	var (
		wg    sync.WaitGroup
		inner plan
	)
	wg.Add(1)
	p := &plan{
		enc: func(e *Encoder, v reflect.Value) { wg.Wait(); inner.enc(e, v) },
		dec: func(d *Decoder, v reflect.Value) { wg.Wait(); inner.dec(d, v) },
	}
	if actual, loaded := plans.LoadOrStore(t, p); loaded {
		return actual
	}
	inner = compile(t)
	wg.Done()
	// Later lookups skip the indirection hop.
	plans.Store(t, &inner)
	return &inner
}

func compile(t reflect.Type) plan {
	// Hand-written marshalling wins over the reflective walk, so nested
	// fields with their own MarshalSCALE keep control of their bytes.
	p := plan{enc: encoderFor(t), dec: decoderFor(t)}
	if p.enc != nil && p.dec != nil {
		return p
	}

	var kp plan
	switch t.Kind() {
	case reflect.Bool:
		kp = boolPlan()
	case reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64, reflect.Int:
		kp = intPlan(t)
	case reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uint:
		kp = uintPlan(t)
	case reflect.Float32, reflect.Float64:
		kp = unsupportedPlan(t)
	case reflect.String:
		kp = stringPlan()
	case reflect.Slice:
		kp = slicePlan(t)
	case reflect.Array:
		kp = arrayPlan(t)
	case reflect.Map:
		kp = mapPlan(t)
	case reflect.Struct:
		kp = structPlan(t)
	case reflect.Pointer:
		kp = optionPlan(t)
	default:
		kp = unsupportedPlan(t)
	}
	if p.enc == nil {
		p.enc = kp.enc
	}
	if p.dec == nil {
		p.dec = kp.dec
	}
	return p
}

// encoderFor returns an encode path using t's own MarshalSCALE, or nil if
// t has none.
func encoderFor(t reflect.Type) func(*Encoder, reflect.Value) {
	switch {
	case t.Implements(marshalerType):
		return func(e *Encoder, v reflect.Value) {
			if err := v.Interface().(Marshaler).MarshalSCALE(e); err != nil {
				e.fail(customErr(err))
			}
		}
	case reflect.PointerTo(t).Implements(marshalerType):
		return func(e *Encoder, v reflect.Value) {
			if !v.CanAddr() {
				// Values plucked out of maps or interfaces are not
				// addressable; copy so the pointer receiver has a home.
				tmp := reflect.New(t)
				tmp.Elem().Set(v)
				v = tmp.Elem()
			}
			if err := v.Addr().Interface().(Marshaler).MarshalSCALE(e); err != nil {
				e.fail(customErr(err))
			}
		}
	}
	return nil
}

// decoderFor returns a decode path using t's own UnmarshalSCALE, or nil if
// t has none.
func decoderFor(t reflect.Type) func(*Decoder, reflect.Value) {
	if !reflect.PointerTo(t).Implements(unmarshalerType) {
		return nil
	}
	return func(d *Decoder, v reflect.Value) {
		if err := v.Addr().Interface().(Unmarshaler).UnmarshalSCALE(d); err != nil {
			d.fail(customErr(err))
		}
	}
}

func boolPlan() plan {
	return plan{
		enc: func(e *Encoder, v reflect.Value) { e.EncodeBool(v.Bool()) },
		dec: func(d *Decoder, v reflect.Value) {
			var b bool
			d.DecodeBool(&b)
			if d.err == nil {
				v.SetBool(b)
			}
		},
	}
}

// intPlan handles the signed integer kinds. The plain int kind encodes as
// 64 bits so the wire width does not depend on the platform.
func intPlan(t reflect.Type) plan {
	var enc func(*Encoder, reflect.Value)
	var read func(*Decoder) int64
	switch t.Kind() {
	case reflect.Int8:
		enc = func(e *Encoder, v reflect.Value) { e.EncodeInt8(int8(v.Int())) }
		read = func(d *Decoder) int64 { var x int8; d.DecodeInt8(&x); return int64(x) }
	case reflect.Int16:
		enc = func(e *Encoder, v reflect.Value) { e.EncodeInt16(int16(v.Int())) }
		read = func(d *Decoder) int64 { var x int16; d.DecodeInt16(&x); return int64(x) }
	case reflect.Int32:
		enc = func(e *Encoder, v reflect.Value) { e.EncodeInt32(int32(v.Int())) }
		read = func(d *Decoder) int64 { var x int32; d.DecodeInt32(&x); return int64(x) }
	default:
		enc = func(e *Encoder, v reflect.Value) { e.EncodeInt64(v.Int()) }
		read = func(d *Decoder) int64 { var x int64; d.DecodeInt64(&x); return x }
	}
	return plan{
		enc: enc,
		dec: func(d *Decoder, v reflect.Value) {
			x := read(d)
			if d.err == nil {
				v.SetInt(x)
			}
		},
	}
}

// uintPlan handles the unsigned integer kinds; plain uint encodes as 64
// bits.
func uintPlan(t reflect.Type) plan {
	var enc func(*Encoder, reflect.Value)
	var read func(*Decoder) uint64
	switch t.Kind() {
	case reflect.Uint8:
		enc = func(e *Encoder, v reflect.Value) { e.EncodeUint8(uint8(v.Uint())) }
		read = func(d *Decoder) uint64 { var x uint8; d.DecodeUint8(&x); return uint64(x) }
	case reflect.Uint16:
		enc = func(e *Encoder, v reflect.Value) { e.EncodeUint16(uint16(v.Uint())) }
		read = func(d *Decoder) uint64 { var x uint16; d.DecodeUint16(&x); return uint64(x) }
	case reflect.Uint32:
		enc = func(e *Encoder, v reflect.Value) { e.EncodeUint32(uint32(v.Uint())) }
		read = func(d *Decoder) uint64 { var x uint32; d.DecodeUint32(&x); return uint64(x) }
	default:
		enc = func(e *Encoder, v reflect.Value) { e.EncodeUint64(v.Uint()) }
		read = func(d *Decoder) uint64 { var x uint64; d.DecodeUint64(&x); return x }
	}
	return plan{
		enc: enc,
		dec: func(d *Decoder, v reflect.Value) {
			x := read(d)
			if d.err == nil {
				v.SetUint(x)
			}
		},
	}
}

func stringPlan() plan {
	return plan{
		enc: func(e *Encoder, v reflect.Value) { e.EncodeString(v.String()) },
		dec: func(d *Decoder, v reflect.Value) {
			var s string
			d.DecodeString(&s)
			if d.err == nil {
				v.SetString(s)
			}
		},
	}
}

func slicePlan(t reflect.Type) plan {
	if t.Elem().Kind() == reflect.Uint8 {
		return plan{
			enc: func(e *Encoder, v reflect.Value) { e.EncodeBytes(v.Bytes()) },
			dec: func(d *Decoder, v reflect.Value) {
				var b []byte
				d.DecodeBytes(&b)
				if d.err == nil {
					v.SetBytes(b)
				}
			},
		}
	}
	ep := planFor(t.Elem())
	return plan{
		enc: func(e *Encoder, v reflect.Value) {
			n := v.Len()
			e.EncodeLen(n)
			for i := 0; i < n && e.err == nil; i++ {
				ep.enc(e, v.Index(i))
			}
		},
		dec: func(d *Decoder, v reflect.Value) {
			n := d.DecodeLen()
			if d.err != nil {
				return
			}
			// Clamp the initial allocation to the remaining input so a
			// forged count cannot force a huge allocation up front.
			s := reflect.MakeSlice(t, 0, min(n, d.Remaining()))
			for i := 0; i < n; i++ {
				el := reflect.New(t.Elem()).Elem()
				ep.dec(d, el)
				if d.err != nil {
					return
				}
				s = reflect.Append(s, el)
			}
			v.Set(s)
		},
	}
}

// arrayPlan encodes fixed-arity sequences: elements concatenated with no
// length prefix, the tuple rule.
func arrayPlan(t reflect.Type) plan {
	ep := planFor(t.Elem())
	n := t.Len()
	return plan{
		enc: func(e *Encoder, v reflect.Value) {
			for i := 0; i < n && e.err == nil; i++ {
				ep.enc(e, v.Index(i))
			}
		},
		dec: func(d *Decoder, v reflect.Value) {
			for i := 0; i < n && d.err == nil; i++ {
				ep.dec(d, v.Index(i))
			}
		},
	}
}

func mapPlan(t reflect.Type) plan {
	less := keyLess(t.Key())
	if less == nil {
		return unsupportedPlan(t)
	}
	kp := planFor(t.Key())
	vp := planFor(t.Elem())
	return plan{
		enc: func(e *Encoder, v reflect.Value) {
			e.EncodeLen(v.Len())
			// Go map iteration is randomized; sort keys so the encoding is
			// deterministic.
			keys := v.MapKeys()
			sort.Slice(keys, func(i, j int) bool { return less(keys[i], keys[j]) })
			for _, k := range keys {
				if e.err != nil {
					return
				}
				kp.enc(e, k)
				vp.enc(e, v.MapIndex(k))
			}
		},
		dec: func(d *Decoder, v reflect.Value) {
			n := d.DecodeLen()
			if d.err != nil {
				return
			}
			m := reflect.MakeMapWithSize(t, min(n, d.Remaining()))
			for i := 0; i < n; i++ {
				k := reflect.New(t.Key()).Elem()
				el := reflect.New(t.Elem()).Elem()
				kp.dec(d, k)
				vp.dec(d, el)
				if d.err != nil {
					return
				}
				m.SetMapIndex(k, el)
			}
			v.Set(m)
		},
	}
}

// keyLess returns a comparison for map keys of t, or nil for kinds with no
// defined order.
func keyLess(t reflect.Type) func(a, b reflect.Value) bool {
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return func(a, b reflect.Value) bool { return a.Int() < b.Int() }
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return func(a, b reflect.Value) bool { return a.Uint() < b.Uint() }
	case reflect.String:
		return func(a, b reflect.Value) bool { return a.String() < b.String() }
	case reflect.Bool:
		return func(a, b reflect.Value) bool { return !a.Bool() && b.Bool() }
	}
	return nil
}

// structPlan walks exported fields in declaration order, concatenating
// their encodings with no framing. Unexported fields and fields tagged
// `scale:"-"` are skipped.
func structPlan(t reflect.Type) plan {
	var idx []int
	var fps []*plan
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() || f.Tag.Get("scale") == "-" {
			continue
		}
		idx = append(idx, i)
		fps = append(fps, planFor(f.Type))
	}
	return plan{
		enc: func(e *Encoder, v reflect.Value) {
			for j, i := range idx {
				if e.err != nil {
					return
				}
				fps[j].enc(e, v.Field(i))
			}
		},
		dec: func(d *Decoder, v reflect.Value) {
			for j, i := range idx {
				if d.err != nil {
					return
				}
				fps[j].dec(d, v.Field(i))
			}
		},
	}
}

// optionPlan encodes pointers as options. A pointer to a bool-kinded type
// takes the single-byte optional-bool rule; everything else takes the
// generic tag-plus-payload rule.
func optionPlan(t reflect.Type) plan {
	elem := t.Elem()
	if elem.Kind() == reflect.Bool {
		return plan{
			enc: func(e *Encoder, v reflect.Value) {
				var b *bool
				if !v.IsNil() {
					x := v.Elem().Bool()
					b = &x
				}
				e.EncodeOptionBool(b)
			},
			dec: func(d *Decoder, v reflect.Value) {
				var b *bool
				d.DecodeOptionBool(&b)
				if d.err != nil {
					return
				}
				if b == nil {
					v.SetZero()
					return
				}
				nv := reflect.New(elem)
				nv.Elem().SetBool(*b)
				v.Set(nv)
			},
		}
	}
	ep := planFor(elem)
	return plan{
		enc: func(e *Encoder, v reflect.Value) {
			if v.IsNil() {
				e.EncodeNone()
				return
			}
			e.EncodeSome()
			ep.enc(e, v.Elem())
		},
		dec: func(d *Decoder, v reflect.Value) {
			if !d.DecodeOption() {
				if d.err == nil {
					v.SetZero()
				}
				return
			}
			nv := reflect.New(elem)
			ep.dec(d, nv.Elem())
			if d.err == nil {
				v.Set(nv)
			}
		},
	}
}

func unsupportedPlan(t reflect.Type) plan {
	return plan{
		enc: func(e *Encoder, _ reflect.Value) { e.fail(fmt.Errorf("%w: %s", ErrUnsupported, t)) },
		dec: func(d *Decoder, _ reflect.Value) { d.fail(fmt.Errorf("%w: %s", ErrUnsupported, t)) },
	}
}

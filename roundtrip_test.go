package scale

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// --- Test fixtures ---

// foo mirrors the canonical example: a struct of a fixed-width integer and
// a string.
type foo struct {
	X int32
	S string
}

// header exercises nesting, options and collections through the
// reflective walk.
type header struct {
	Version uint8
	Tags    []string
	Flags   map[string]uint32
	Parent  *foo
	Alive   *bool
	Raw     []byte
	Digest  [4]byte
}

// event is a two-variant enum, Ping(seq) and Quit, with hand-written
// marshalling driving the variant index.
type event struct {
	kind int // 0 = ping, 1 = quit
	seq  uint32
}

func (ev event) MarshalSCALE(e *Encoder) error {
	e.EncodeVariant(ev.kind)
	if ev.kind == 0 {
		e.EncodeUint32(ev.seq)
	}
	return nil
}

func (ev *event) UnmarshalSCALE(d *Decoder) error {
	ev.kind = d.DecodeVariant(2)
	if d.Err() == nil && ev.kind == 0 {
		d.DecodeUint32(&ev.seq)
	}
	return d.Err()
}

// --- Suite ---

type RoundTripSuite struct {
	suite.Suite
}

func (s *RoundTripSuite) roundTrip(original, decoded any) []byte {
	data, err := Marshal(original)
	s.Require().NoError(err)
	s.Require().NoError(Unmarshal(data, decoded))
	return data
}

func (s *RoundTripSuite) TestBoolBytes() {
	data, err := Marshal(true)
	s.Require().NoError(err)
	s.Assert().Equal([]byte{0x01}, data)

	data, err = Marshal(false)
	s.Require().NoError(err)
	s.Assert().Equal([]byte{0x00}, data)
}

func (s *RoundTripSuite) TestStructGoldenBytes() {
	original := foo{X: 3, S: "foo"}
	var decoded foo
	data := s.roundTrip(original, &decoded)

	// Four-byte little-endian 3, compact length 3, then the raw bytes.
	s.Assert().Equal([]byte{0x03, 0x00, 0x00, 0x00, 0x0C, 'f', 'o', 'o'}, data)
	s.Assert().Equal(original, decoded)
}

func (s *RoundTripSuite) TestOptionBoolThreeStates() {
	type box struct{ V *bool }
	f, tr := false, true

	for _, original := range []box{{nil}, {&f}, {&tr}} {
		data, err := Marshal(original)
		s.Require().NoError(err)
		s.Require().Len(data, 1, "optional bool is a single byte")

		var decoded box
		s.Require().NoError(Unmarshal(data, &decoded))
		if original.V == nil {
			s.Assert().Nil(decoded.V)
		} else {
			s.Require().NotNil(decoded.V)
			s.Assert().Equal(*original.V, *decoded.V)
		}
	}
}

func (s *RoundTripSuite) TestGenericOptionBytes() {
	type box struct{ V *uint16 }
	v := uint16(0x0102)

	data, err := Marshal(box{&v})
	s.Require().NoError(err)
	s.Assert().Equal([]byte{0x01, 0x02, 0x01}, data)

	data, err = Marshal(box{nil})
	s.Require().NoError(err)
	s.Assert().Equal([]byte{0x00}, data)

	var decoded box
	s.Require().NoError(Unmarshal([]byte{0x01, 0x02, 0x01}, &decoded))
	s.Require().NotNil(decoded.V)
	s.Assert().Equal(v, *decoded.V)
}

func (s *RoundTripSuite) TestNestedStruct() {
	alive := true
	original := header{
		Version: 2,
		Tags:    []string{"a", "bc"},
		Flags:   map[string]uint32{"x": 1, "y": 2},
		Parent:  &foo{X: -7, S: "p"},
		Alive:   &alive,
		Raw:     []byte{0xDE, 0xAD},
		Digest:  [4]byte{1, 2, 3, 4},
	}
	var decoded header
	s.roundTrip(original, &decoded)
	s.Assert().Equal(original, decoded)
}

func (s *RoundTripSuite) TestMapEncodesKeysInOrder() {
	m := map[uint8]string{2: "b", 1: "a"}
	data, err := Marshal(m)
	s.Require().NoError(err)
	s.Assert().Equal([]byte{0x08, 0x01, 0x04, 'a', 0x02, 0x04, 'b'}, data)

	var decoded map[uint8]string
	s.Require().NoError(Unmarshal(data, &decoded))
	s.Assert().Equal(m, decoded)
}

func (s *RoundTripSuite) TestEmptyCollections() {
	type box struct {
		Items []uint32
		Pairs map[string]string
	}
	data, err := Marshal(box{Items: []uint32{}, Pairs: map[string]string{}})
	s.Require().NoError(err)
	s.Assert().Equal([]byte{0x00, 0x00}, data)

	var decoded box
	s.Require().NoError(Unmarshal(data, &decoded))
	s.Assert().Empty(decoded.Items)
	s.Assert().Empty(decoded.Pairs)
}

func (s *RoundTripSuite) TestEnumVariants() {
	ping := event{kind: 0, seq: 9}
	data, err := Marshal(ping)
	s.Require().NoError(err)
	s.Assert().Equal([]byte{0x00, 0x09, 0x00, 0x00, 0x00}, data)

	var decoded event
	s.Require().NoError(Unmarshal(data, &decoded))
	s.Assert().Equal(ping, decoded)

	quit := event{kind: 1}
	data, err = Marshal(quit)
	s.Require().NoError(err)
	s.Assert().Equal([]byte{0x01}, data)

	decoded = event{}
	s.Require().NoError(Unmarshal(data, &decoded))
	s.Assert().Equal(quit, decoded)
}

func (s *RoundTripSuite) TestEnumUnknownVariant() {
	var decoded event
	err := Unmarshal([]byte{0x02}, &decoded)
	s.Require().Error(err)
	s.Assert().ErrorIs(err, ErrVariantIndex)
}

func (s *RoundTripSuite) TestFixedWidthIntegers() {
	type ints struct {
		A int8
		B int16
		C int32
		D int64
		E uint8
		F uint16
		G uint32
		H uint64
	}
	original := ints{-1, -2, -3, -4, 1, 2, 3, 4}
	var decoded ints
	data := s.roundTrip(original, &decoded)
	s.Assert().Equal(original, decoded)
	s.Assert().Len(data, 1+2+4+8+1+2+4+8)
}

func (s *RoundTripSuite) TestFloatsUnsupported() {
	type box struct{ F float64 }
	_, err := Marshal(box{F: 1.5})
	s.Require().Error(err)
	s.Assert().ErrorIs(err, ErrUnsupported)

	var decoded box
	err = Unmarshal([]byte{0, 0, 0, 0, 0, 0, 0, 0}, &decoded)
	s.Assert().ErrorIs(err, ErrUnsupported)
}

func (s *RoundTripSuite) TestSkippedFields() {
	type box struct {
		Keep uint8
		Skip uint8 `scale:"-"`
	}
	data, err := Marshal(box{Keep: 1, Skip: 2})
	s.Require().NoError(err)
	s.Assert().Equal([]byte{0x01}, data)
}

func TestRoundTrip(t *testing.T) {
	suite.Run(t, new(RoundTripSuite))
}

// --- Generic helper tests ---

func TestCollectionHelpers(t *testing.T) {
	t.Run("Slice", func(t *testing.T) {
		e := NewEncoder()
		EncodeSlice(e, []uint16{1, 2, 3}, (*Encoder).EncodeUint16)
		require.NoError(t, e.Err())
		assert.Equal(t, []byte{0x0C, 1, 0, 2, 0, 3, 0}, e.Bytes())

		d := NewDecoder(e.Bytes())
		var out []uint16
		DecodeSlice(d, &out, (*Decoder).DecodeUint16)
		require.NoError(t, d.Err())
		assert.Equal(t, []uint16{1, 2, 3}, out)
	})

	t.Run("Map", func(t *testing.T) {
		e := NewEncoder()
		EncodeMap(e, map[uint8]uint8{9: 90, 3: 30}, (*Encoder).EncodeUint8, (*Encoder).EncodeUint8)
		require.NoError(t, e.Err())
		assert.Equal(t, []byte{0x08, 3, 30, 9, 90}, e.Bytes())

		d := NewDecoder(e.Bytes())
		var out map[uint8]uint8
		DecodeMap(d, &out, (*Decoder).DecodeUint8, (*Decoder).DecodeUint8)
		require.NoError(t, d.Err())
		assert.Equal(t, map[uint8]uint8{9: 90, 3: 30}, out)
	})

	t.Run("Option", func(t *testing.T) {
		v := uint32(5)
		e := NewEncoder()
		EncodeOption(e, &v, (*Encoder).EncodeUint32)
		EncodeOption[uint32](e, nil, (*Encoder).EncodeUint32)
		require.NoError(t, e.Err())
		assert.Equal(t, []byte{0x01, 5, 0, 0, 0, 0x00}, e.Bytes())

		d := NewDecoder(e.Bytes())
		var some, none *uint32
		DecodeOption(d, &some, (*Decoder).DecodeUint32)
		DecodeOption(d, &none, (*Decoder).DecodeUint32)
		require.NoError(t, d.Err())
		require.NotNil(t, some)
		assert.Equal(t, uint32(5), *some)
		assert.Nil(t, none)
	})

	t.Run("OptionBoolInterception", func(t *testing.T) {
		// The statically-bool payload takes the single-byte rule even
		// through the generic helper.
		tr := true
		e := NewEncoder()
		EncodeOption(e, &tr, (*Encoder).EncodeBool)
		require.NoError(t, e.Err())
		assert.Equal(t, []byte{0x02}, e.Bytes())

		d := NewDecoder(e.Bytes())
		var out *bool
		DecodeOption(d, &out, (*Decoder).DecodeBool)
		require.NoError(t, d.Err())
		require.NotNil(t, out)
		assert.True(t, *out)
	})

	t.Run("ForgedSliceCount", func(t *testing.T) {
		// Compact 2^20 elements followed by no data: must fail cleanly
		// without a huge allocation.
		data := AppendCompact(nil, uint64(1<<20))
		d := NewDecoder(data)
		var out []uint64
		DecodeSlice(d, &out, (*Decoder).DecodeUint64)
		assert.ErrorIs(t, d.Err(), ErrUnexpectedEnd)
	})
}

func TestCustomErrorSurfacesRenderable(t *testing.T) {
	var decoded event
	// Variant byte 0x02 has no declared variant; the unified error must
	// render as text and match its sentinel kind.
	err := Unmarshal([]byte{0x02}, &decoded)
	require.Error(t, err)
	assert.NotEmpty(t, err.Error())
	assert.ErrorIs(t, err, ErrVariantIndex)

	var se *Error
	require.ErrorAs(t, err, &se)
	assert.Equal(t, KindVariantIndex, se.Kind())
}

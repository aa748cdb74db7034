package scale

import "testing"

type benchPayload struct {
	ID    uint32
	Name  string
	Nonce uint64
	Tags  []uint16
	Alive *bool
}

func benchValue() benchPayload {
	alive := true
	return benchPayload{
		ID:    1,
		Name:  "payload",
		Nonce: 100,
		Tags:  []uint16{1, 2, 3, 4},
		Alive: &alive,
	}
}

func BenchmarkMarshalReflect(b *testing.B) {
	v := benchValue()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = Marshal(&v)
	}
}

func BenchmarkUnmarshalReflect(b *testing.B) {
	v := benchValue()
	data, _ := Marshal(&v)
	var out benchPayload
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = Unmarshal(data, &out)
	}
}

func BenchmarkMarshalTo(b *testing.B) {
	v := benchValue()
	buf := make([]byte, Size(&v))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = MarshalTo(&v, buf)
	}
}

// Baseline using hand-written marshalling, to see the overhead of the
// reflective walk.
func BenchmarkMarshalHandWritten(b *testing.B) {
	ev := event{kind: 0, seq: 42}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = Marshal(ev)
	}
}

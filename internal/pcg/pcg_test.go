package pcg

import (
	"reflect"
	"testing"
)

func TestPCG(t *testing.T) {
	pi := New(2345, 2378)
	out := make([]uint32, 10)
	for i := range out {
		out[i] = pi.Uint32()
	}

	want := []uint32{
		0xa066bccc,
		0xee77540c,
		0x69020df4,
		0x981fbe29,
		0xb85fc8bf,
		0xb3f67bbc,
		0xb0c96811,
		0xbe14c31a,
		0x38a77bed,
		0x5a330581,
	}
	if !reflect.DeepEqual(out, want) {
		t.Fatalf("got %#x, want %#x", out, want)
	}
}

func TestIntnInRange(t *testing.T) {
	pi := New(1, 1)
	for i := 0; i < 1000; i++ {
		n := pi.Intn(7)
		if n < 0 || n >= 7 {
			t.Fatalf("Intn(7) = %d, out of range", n)
		}
	}
}

var blackholeUint32 uint32

func BenchmarkPCG(b *testing.B) {
	pi := New(2345, 2378)

	for i := 0; i < b.N; i++ {
		blackholeUint32 += pi.Uint32()
	}
}

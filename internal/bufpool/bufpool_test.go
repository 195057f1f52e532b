package bufpool

import "testing"

func TestGetPutReuse(t *testing.T) {
	p := New(256)

	l := p.Get(2)
	if len(l.Bytes()) != 512 {
		t.Fatalf("len = %d, want 512", len(l.Bytes()))
	}
	buf := l.Bytes()
	buf[0] = 0xAA
	if err := l.Close(); err != nil {
		t.Fatal(err)
	}

	l2 := p.Get(2)
	if len(l2.Bytes()) != 512 {
		t.Fatalf("len = %d, want 512", len(l2.Bytes()))
	}
}

func TestZeroLeaseCloseIsNoop(t *testing.T) {
	var l Lease
	if err := l.Close(); err != nil {
		t.Fatal(err)
	}
}

package wire

import "testing"

func TestRoundTrip(t *testing.T) {
	cases := []struct {
		typ    RequestType
		qty    uint8
		disk   uint8
		failed bool
		id     uint32
	}{
		{Init, 0, 0, false, 0},
		{Read, 1, 7, false, 0xdeadbeef},
		{Write, 255, 255, false, 0xffffffff},
		{Status, 0, 3, true, DiskFailed},
	}

	for _, c := range cases {
		op := Encode(c.typ, c.qty, c.disk, c.failed, c.id)
		if got := op.Type(); got != c.typ {
			t.Fatalf("Type() = %v, want %v", got, c.typ)
		}
		if got := op.BlockQuantity(); got != c.qty {
			t.Fatalf("BlockQuantity() = %v, want %v", got, c.qty)
		}
		if got := op.DiskNumber(); got != c.disk {
			t.Fatalf("DiskNumber() = %v, want %v", got, c.disk)
		}
		if got := op.Failed(); got != c.failed {
			t.Fatalf("Failed() = %v, want %v", got, c.failed)
		}
		if got := op.ID(); got != c.id {
			t.Fatalf("ID() = %v, want %v", got, c.id)
		}
	}
}

func TestWellFormed(t *testing.T) {
	req := NewRequest(Read, 3, 2, 100)

	ok := Encode(Read, 3, 2, false, 100)
	if !WellFormed(req, ok) {
		t.Fatal("expected well-formed response to be accepted")
	}

	badType := Encode(Write, 3, 2, false, 100)
	if WellFormed(req, badType) {
		t.Fatal("type mismatch should be rejected")
	}

	badQty := Encode(Read, 4, 2, false, 100)
	if WellFormed(req, badQty) {
		t.Fatal("block quantity mismatch should be rejected")
	}

	badDisk := Encode(Read, 3, 5, false, 100)
	if WellFormed(req, badDisk) {
		t.Fatal("disk number mismatch should be rejected")
	}

	errStatus := Encode(Read, 3, 2, true, 100)
	if WellFormed(req, errStatus) {
		t.Fatal("error status should be rejected")
	}

	badID := Encode(Read, 3, 2, false, 101)
	if WellFormed(req, badID) {
		t.Fatal("id mismatch should be rejected on non-STATUS")
	}

	// STATUS responses are allowed to carry a different id (the disk
	// condition code) than the request.
	statusReq := NewRequest(Status, 0, 4, 0)
	statusResp := Encode(Status, 0, 4, false, DiskFailed)
	if !WellFormed(statusReq, statusResp) {
		t.Fatal("STATUS response id should not be compared to the request id")
	}
}

func TestUint64RoundTrip(t *testing.T) {
	b := make([]byte, 8)
	PutUint64(b, 0x0102030405060708)
	if got := Uint64(b); got != 0x0102030405060708 {
		t.Fatalf("Uint64() = %#x, want %#x", got, 0x0102030405060708)
	}
}

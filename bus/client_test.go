package bus

import (
	"io"
	"net"
	"testing"

	"github.com/resonant-storage/tagline/wire"
)

const testBlockSize = 8

// fakeServer is a minimal in-memory stand-in for the remote RAID server:
// it echoes the opcode fields the protocol requires and round-trips
// payloads.
func fakeServer(t *testing.T, ln net.Listener) {
	t.Helper()
	conn, err := ln.Accept()
	if err != nil {
		return
	}
	defer conn.Close()

	for {
		hdr := make([]byte, 16)
		if _, err := io.ReadFull(conn, hdr); err != nil {
			return
		}
		op := wire.Opcode(wire.Uint64(hdr[0:8]))
		length := wire.Uint64(hdr[8:16])

		var payload []byte
		if op.Type() == wire.Write {
			payload = make([]byte, length)
			if _, err := io.ReadFull(conn, payload); err != nil {
				return
			}
		} else if op.Type() == wire.Read {
			payload = make([]byte, length)
			for i := range payload {
				payload[i] = byte(i)
			}
		}

		respHdr := make([]byte, 16)
		wire.PutUint64(respHdr[0:8], uint64(op))
		wire.PutUint64(respHdr[8:16], length)
		if _, err := conn.Write(respHdr); err != nil {
			return
		}
		if op.Type() == wire.Read {
			if _, err := conn.Write(payload); err != nil {
				return
			}
		}
		if op.Type() == wire.Close {
			return
		}
	}
}

func listen(t *testing.T) net.Listener {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	return ln
}

func TestSendInitReadWriteClose(t *testing.T) {
	ln := listen(t)
	defer ln.Close()
	go fakeServer(t, ln)

	c := New(ln.Addr().String(), testBlockSize)

	initOp := wire.NewRequest(wire.Init, 0, 4, 0)
	resp, err := c.Send(initOp, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !wire.WellFormed(initOp, resp) {
		t.Fatal("INIT response not well-formed")
	}

	writeOp := wire.NewRequest(wire.Write, 1, 2, 5)
	payload := make([]byte, testBlockSize)
	for i := range payload {
		payload[i] = 0x42
	}
	resp, err = c.Send(writeOp, payload)
	if err != nil {
		t.Fatal(err)
	}
	if !wire.WellFormed(writeOp, resp) {
		t.Fatal("WRITE response not well-formed")
	}

	readOp := wire.NewRequest(wire.Read, 1, 2, 5)
	out := make([]byte, testBlockSize)
	resp, err = c.Send(readOp, out)
	if err != nil {
		t.Fatal(err)
	}
	if !wire.WellFormed(readOp, resp) {
		t.Fatal("READ response not well-formed")
	}
	if out[0] != 0 || out[1] != 1 {
		t.Fatalf("unexpected payload %v", out)
	}

	closeOp := wire.NewRequest(wire.Close, 0, 0, 0)
	if _, err := c.Send(closeOp, nil); err != nil {
		t.Fatal(err)
	}
}

func TestSendWithoutInitFails(t *testing.T) {
	c := New("127.0.0.1:1", testBlockSize)
	_, err := c.Send(wire.NewRequest(wire.Read, 1, 0, 0), make([]byte, testBlockSize))
	if err == nil {
		t.Fatal("expected error sending before INIT")
	}
}

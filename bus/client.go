// Package bus owns the single stream socket to the remote RAID server and
// turns one driver call into one request/response exchange over it. Sender
// is the seam the driver engine depends on: a real Client dials a socket,
// a test fake answers in memory.
package bus

import (
	"io"
	"net"
	"time"

	"github.com/zeebo/errs"

	"github.com/resonant-storage/tagline/wire"
)

// Error roots every error this package raises. Malformed responses are
// treated the same as any other transport failure, so there is a single
// class here rather than a separate malformed-response kind.
var Error = errs.Class("bus")

// Sender is the interface the driver engine depends on. *Client
// implements it against a real socket; tests implement it against an
// in-memory fake RAID server.
type Sender interface {
	Send(op wire.Opcode, buf []byte) (wire.Opcode, error)
}

// Client owns at most one connection to the RAID server. It is not safe
// for concurrent use: the protocol is synchronous, one outstanding
// request at a time.
type Client struct {
	addr      string
	blockSize int
	dialer    net.Dialer
	conn      net.Conn
}

// New returns a Client that dials addr on INIT and reads/writes
// blockSize-sized blocks. No connection is made until the first INIT
// request is sent through Send.
func New(addr string, blockSize int) *Client {
	return &Client{
		addr:      addr,
		blockSize: blockSize,
	}
}

// Send implements one request/response exchange: it extracts the request
// type and block quantity, computes the payload length, connects on INIT,
// transmits
// opcode+length+(WRITE payload), reads back opcode+length+(READ payload),
// and closes the connection on CLOSE. buf is the block(s) written on
// WRITE, or the destination for blocks read on READ; it must be sized
// for BlockQuantity() blocks.
func (c *Client) Send(op wire.Opcode, buf []byte) (wire.Opcode, error) {
	typ := op.Type()
	blocks := int(op.BlockQuantity())

	var length int
	switch typ {
	case wire.Read, wire.Write:
		length = blocks * c.blockSize
	}

	if typ == wire.Init {
		c.dialer.Timeout = 10 * time.Second
		conn, err := c.dialer.Dial("tcp", c.addr)
		if err != nil {
			return 0, Error.Wrap(err)
		}
		c.conn = conn
	}
	if c.conn == nil {
		return 0, Error.New("no connection: INIT must be sent first")
	}

	hdr := make([]byte, 16)

	wire.PutUint64(hdr[0:8], uint64(op))
	wire.PutUint64(hdr[8:16], uint64(length))
	if err := writeFull(c.conn, hdr); err != nil {
		return 0, Error.Wrap(err)
	}

	if typ == wire.Write {
		if len(buf) != length {
			return 0, Error.New("write payload length %d, want %d", len(buf), length)
		}
		if err := writeFull(c.conn, buf); err != nil {
			return 0, Error.Wrap(err)
		}
	}

	respHdr := make([]byte, 16)
	if err := readFull(c.conn, respHdr); err != nil {
		return 0, Error.Wrap(err)
	}
	resp := wire.Opcode(wire.Uint64(respHdr[0:8]))
	respLength := wire.Uint64(respHdr[8:16])

	if typ == wire.Read {
		if uint64(len(buf)) != respLength || len(buf) != length {
			return 0, Error.New("read payload length %d, want %d", len(buf), length)
		}
		if err := readFull(c.conn, buf); err != nil {
			return 0, Error.Wrap(err)
		}
	}

	if typ == wire.Close {
		err := c.conn.Close()
		c.conn = nil
		if err != nil {
			return 0, Error.Wrap(err)
		}
	}

	return resp, nil
}

func writeFull(w io.Writer, b []byte) error {
	n, err := w.Write(b)
	if err != nil {
		return err
	}
	if n != len(b) {
		return errs.New("short write: wrote %d of %d bytes", n, len(b))
	}
	return nil
}

func readFull(r io.Reader, b []byte) error {
	_, err := io.ReadFull(r, b)
	return err
}

// Package bufpool hands out reusable block-sized byte buffers for the wire
// exchange, so a read or write does not allocate fresh memory on every
// call. Buffers are checked out as a Lease and returned with Close, the
// same checkout/return shape as any sync.Pool-backed leasing type.
package bufpool

import "sync"

// Lease is a checked-out buffer. Close returns it to the pool it came
// from. A zero Lease is valid and Close is a no-op on it.
type Lease struct {
	buf  []byte
	pool *Pool
}

// Bytes returns the leased buffer.
func (l Lease) Bytes() []byte { return l.buf }

// Close returns the buffer to its pool. It is not safe to use Bytes after
// Close.
func (l *Lease) Close() error {
	if l.pool != nil {
		l.pool.put(l.buf)
	}
	*l = Lease{}
	return nil
}

// Pool hands out buffers sized in multiples of a fixed block size.
type Pool struct {
	blockSize int
	free      sync.Pool
}

// New returns a Pool that leases buffers in multiples of blockSize bytes.
func New(blockSize int) *Pool {
	p := &Pool{blockSize: blockSize}
	return p
}

// Get leases a buffer sized for n blocks. The contents are not zeroed.
func (p *Pool) Get(n int) Lease {
	size := n * p.blockSize
	if v := p.free.Get(); v != nil {
		buf := v.([]byte)
		if cap(buf) >= size {
			return Lease{buf: buf[:size], pool: p}
		}
	}
	return Lease{buf: make([]byte, size), pool: p}
}

func (p *Pool) put(buf []byte) {
	p.free.Put(buf) //nolint:staticcheck // buf is reused at its original capacity
}

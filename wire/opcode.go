// Package wire implements the 64-bit opcode used to talk to the remote RAID
// server: a single encode/decode pair over the documented bit layout, so
// every field access goes through one shift/mask table instead of
// scattered ad-hoc bit twiddling at each call site.
package wire

import (
	"encoding/binary"

	"github.com/zeebo/errs"
)

// Error roots every error this package raises.
var Error = errs.Class("wire")

// RequestType is the 8-bit request discriminator in bits [63..56].
type RequestType uint8

const (
	Init RequestType = iota
	Format
	Read
	Write
	Status
	Close
)

func (t RequestType) String() string {
	switch t {
	case Init:
		return "INIT"
	case Format:
		return "FORMAT"
	case Read:
		return "READ"
	case Write:
		return "WRITE"
	case Status:
		return "STATUS"
	case Close:
		return "CLOSE"
	default:
		return "UNKNOWN"
	}
}

// DiskFailed is the sentinel STATUS response id meaning the queried disk
// has failed.
const DiskFailed uint32 = 1

// Opcode is the 64-bit value exchanged with the RAID server:
//
//	[63..56] Type
//	[55..48] BlockQuantity
//	[47..40] DiskNumber
//	[39..33] unused, zero on request
//	[32]     Status (request: always 0; response: 0 ok, 1 error)
//	[31..0]  ID
type Opcode uint64

const (
	shiftType  = 56
	shiftQty   = 48
	shiftDisk  = 40
	shiftUnuse = 33
	shiftOK    = 32

	maskByte  = 0xff
	maskID    = 0xffffffff
	statusBit = 1 << shiftOK
)

// Encode packs the fields of a request or response opcode into a uint64.
func Encode(typ RequestType, blockQuantity, diskNumber uint8, failed bool, id uint32) Opcode {
	var op uint64
	op |= uint64(typ) << shiftType
	op |= uint64(blockQuantity) << shiftQty
	op |= uint64(diskNumber) << shiftDisk
	if failed {
		op |= statusBit
	}
	op |= uint64(id)
	return Opcode(op)
}

// NewRequest builds a request opcode. Requests always have the status bit
// clear.
func NewRequest(typ RequestType, blockQuantity, diskNumber uint8, id uint32) Opcode {
	return Encode(typ, blockQuantity, diskNumber, false, id)
}

// Type returns the request type encoded in the opcode.
func (op Opcode) Type() RequestType { return RequestType(uint64(op) >> shiftType & maskByte) }

// BlockQuantity returns the block-quantity field.
func (op Opcode) BlockQuantity() uint8 { return uint8(uint64(op) >> shiftQty & maskByte) }

// DiskNumber returns the disk-number field.
func (op Opcode) DiskNumber() uint8 { return uint8(uint64(op) >> shiftDisk & maskByte) }

// Failed reports whether the status bit is set (a response indicating an
// error on the server side).
func (op Opcode) Failed() bool { return uint64(op)&statusBit != 0 }

// ID returns the 32-bit id field: the starting offset on READ/WRITE
// requests, or the disk-condition code on a STATUS response.
func (op Opcode) ID() uint32 { return uint32(uint64(op) & maskID) }

// WellFormed reports whether resp is a well-formed response to req: type,
// block quantity and disk number echoed unchanged, the status bit clear,
// and (for every type but STATUS) the id echoed unchanged.
func WellFormed(req, resp Opcode) bool {
	if resp.Type() != req.Type() {
		return false
	}
	if resp.BlockQuantity() != req.BlockQuantity() {
		return false
	}
	if resp.DiskNumber() != req.DiskNumber() {
		return false
	}
	if resp.Failed() {
		return false
	}
	if req.Type() != Status && resp.ID() != req.ID() {
		return false
	}
	return true
}

// PutUint64 and Uint64 are the documented host<->network transform used on
// every 64-bit quantity (opcode and payload length) sent over the wire:
// big-endian, matching the original driver's htonll64/ntohll64.

// PutUint64 writes v to b in the wire's byte order. b must have length 8.
func PutUint64(b []byte, v uint64) {
	binary.BigEndian.PutUint64(b, v)
}

// Uint64 reads a uint64 from b in the wire's byte order. b must have
// length 8.
func Uint64(b []byte) uint64 {
	return binary.BigEndian.Uint64(b)
}

package tagline

import "github.com/resonant-storage/tagline/wire"

// fakeRAID is an in-memory stand-in for the remote RAID server: it keeps
// one map of blocks per disk and answers each request type directly,
// with no socket.
type fakeRAID struct {
	blockSize int
	disks     []map[int][]byte
	failed    map[int]bool

	inits, formats, reads, writes, statuses, closes int
}

func newFakeRAID(diskCount, blockSize int) *fakeRAID {
	disks := make([]map[int][]byte, diskCount)
	for i := range disks {
		disks[i] = make(map[int][]byte)
	}
	return &fakeRAID{
		blockSize: blockSize,
		disks:     disks,
		failed:    make(map[int]bool),
	}
}

func (f *fakeRAID) failDisk(disk int) { f.failed[disk] = true }

func (f *fakeRAID) Send(op wire.Opcode, buf []byte) (wire.Opcode, error) {
	disk := int(op.DiskNumber())
	offset := int(op.ID())
	n := int(op.BlockQuantity())

	switch op.Type() {
	case wire.Init:
		f.inits++

	case wire.Format:
		f.formats++
		f.disks[disk] = make(map[int][]byte)
		f.failed[disk] = false

	case wire.Read:
		f.reads++
		for i := 0; i < n; i++ {
			copy(buf[i*f.blockSize:(i+1)*f.blockSize], f.disks[disk][offset+i])
		}

	case wire.Write:
		f.writes++
		for i := 0; i < n; i++ {
			blk := append([]byte(nil), buf[i*f.blockSize:(i+1)*f.blockSize]...)
			f.disks[disk][offset+i] = blk
		}

	case wire.Status:
		f.statuses++
		id := uint32(0)
		if f.failed[disk] {
			id = wire.DiskFailed
		}
		return wire.Encode(op.Type(), op.BlockQuantity(), op.DiskNumber(), false, id), nil

	case wire.Close:
		f.closes++
	}

	return op, nil
}

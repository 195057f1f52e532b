package tagline

import (
	"go.uber.org/zap"

	"github.com/resonant-storage/tagline/wire"
)

// Write places count blocks from in starting at (tag, startBlock). Below
// tag_count[tag] this reuses and extends existing mapping cells
// (rewrite); at or above it, it allocates fresh cells on a freshly drawn
// disk pair (append). Every block written is cached under both the
// primary and backup key.
func (d *Driver) Write(tag, startBlock uint32, count uint8, in []byte) error {
	if err := d.requireInit(); err != nil {
		return err
	}

	n := int(count)
	blockSize := d.cfg.BlockSize
	if len(in) != n*blockSize {
		return wrapIO(Error.New("in buffer is %d bytes, want %d", len(in), n*blockSize))
	}

	t := int(tag)
	if t < 0 || t >= d.tags.maxTags() {
		return wrapIO(Error.New("tag %d out of range", tag))
	}
	start := int(startBlock)
	if n == 0 {
		return nil
	}
	if start+n > d.cfg.MaxTagBlocks {
		return wrapIO(Error.New("tag %d write runs past max_tag_blocks", tag))
	}

	done := d.writeHist.Track()
	defer done()

	primaryDisk, backupDisk, err := chooseDisks(d.disks, &d.rng)
	if err != nil {
		return wrapIO(err)
	}

	if start >= d.tags.count(t) {
		err = d.writeAppend(t, start, n, in, primaryDisk, backupDisk)
	} else {
		err = d.writeRewrite(t, start, n, in, primaryDisk, backupDisk)
	}
	if err != nil {
		return err
	}

	if end := start + n; end > d.tags.count(t) {
		d.tags.setCount(t, end)
	}

	d.log.Info("write",
		zap.Uint32("tag", tag),
		zap.Uint32("start_block", startBlock),
		zap.Uint8("count", count),
	)
	return nil
}

// writeAppend lays down count fresh blocks as a single WRITE to each of
// primary and backup, recording a brand new run of mapping cells. Both
// disks' next-free offsets only advance after both WRITEs are confirmed,
// so a transport failure never burns offsets for blocks that were never
// actually written.
func (d *Driver) writeAppend(t, start, n int, in []byte, primary, backup int) error {
	blockSize := d.cfg.BlockSize

	pStart, err := d.disks.checkCapacity(primary, n)
	if err != nil {
		return err
	}
	bStart, err := d.disks.checkCapacity(backup, n)
	if err != nil {
		return err
	}

	req := wire.NewRequest(wire.Write, uint8(n), uint8(primary), uint32(pStart))
	if _, err := d.send(req, in); err != nil {
		return err
	}
	req = wire.NewRequest(wire.Write, uint8(n), uint8(backup), uint32(bStart))
	if _, err := d.send(req, in); err != nil {
		return err
	}

	d.disks.advance(primary, n)
	d.disks.advance(backup, n)

	for i := 0; i < n; i++ {
		blk := in[i*blockSize : (i+1)*blockSize]
		d.cache.Put(primary, pStart+i, blk)
		d.cache.Put(backup, bStart+i, blk)
		d.tags.setCell(t, start+i, tagCell{
			primary: cellSide{disk: primary, offset: pStart + i},
			backup:  cellSide{disk: backup, offset: bStart + i},
		})
	}
	return nil
}

// writeRewrite processes the primary side fully, then the backup side
// fully, each over its own independent contiguous-prefix walk.
// primaryDisk/backupDisk are only consulted when a side must allocate a
// brand new cell past its contiguous run.
func (d *Driver) writeRewrite(t, start, n int, in []byte, primaryDisk, backupDisk int) error {
	if err := d.writeSide(t, start, n, in, true, primaryDisk); err != nil {
		return err
	}
	if err := d.writeSide(t, start, n, in, false, backupDisk); err != nil {
		return err
	}
	return nil
}

// contiguousPrefix returns the largest k (0 <= k <= n) such that the
// mapped side's cells for start..start+k-1 form a strictly sequential
// run on one disk, probing the existing mapping only.
func (d *Driver) contiguousPrefix(t, start, n int, isPrimary bool) int {
	if n == 0 {
		return 0
	}
	base := sideOf(d.tags.cell(t, start), isPrimary)
	if !base.valid() {
		return 0
	}
	k := 1
	for k < n {
		next := sideOf(d.tags.cell(t, start+k), isPrimary)
		if !next.valid() || next.disk != base.disk || next.offset != base.offset+k {
			break
		}
		k++
	}
	return k
}

func sideOf(c tagCell, isPrimary bool) cellSide {
	if isPrimary {
		return c.primary
	}
	return c.backup
}

func setSide(c *tagCell, isPrimary bool, s cellSide) {
	if isPrimary {
		c.primary = s
	} else {
		c.backup = s
	}
}

// writeSide runs the rewrite-path algorithm for one side: a batched
// WRITE over the contiguous prefix, then per-block allocate-or-overwrite
// for whatever remains.
func (d *Driver) writeSide(t, start, n int, in []byte, isPrimary bool, allocDisk int) error {
	blockSize := d.cfg.BlockSize

	k := d.contiguousPrefix(t, start, n, isPrimary)
	if k > 0 {
		base := sideOf(d.tags.cell(t, start), isPrimary)
		req := wire.NewRequest(wire.Write, uint8(k), uint8(base.disk), uint32(base.offset))
		buf := in[0 : k*blockSize]
		if _, err := d.send(req, buf); err != nil {
			return err
		}
		for j := 0; j < k; j++ {
			d.cache.Put(base.disk, base.offset+j, in[j*blockSize:(j+1)*blockSize])
		}
	}
	if k >= n {
		return nil
	}

	for j := k; j < n; j++ {
		block := start + j
		blk := in[j*blockSize : (j+1)*blockSize]

		cell := d.tags.cell(t, block)
		side := sideOf(cell, isPrimary)

		allocated := false
		if !side.valid() {
			disk := allocDisk
			other := sideOf(cell, !isPrimary)
			if other.valid() && other.disk == disk {
				redrawn, err := redraw(d.disks, &d.rng, disk)
				if err != nil {
					return wrapIO(err)
				}
				disk = redrawn
			}
			offset, err := d.disks.checkCapacity(disk, 1)
			if err != nil {
				return err
			}
			side = cellSide{disk: disk, offset: offset}
			allocated = true
		}

		req := wire.NewRequest(wire.Write, 1, uint8(side.disk), uint32(side.offset))
		if _, err := d.send(req, blk); err != nil {
			return err
		}

		if allocated {
			d.disks.advance(side.disk, 1)
			setSide(&cell, isPrimary, side)
			d.tags.setCell(t, block, cell)
		}
		d.cache.Put(side.disk, side.offset, blk)
	}
	return nil
}

package tagline

import (
	"go.uber.org/zap"

	"github.com/resonant-storage/tagline/wire"
)

// Read fills out with the count blocks starting at (tag, startBlock),
// each served from the primary mirror copy: a cache hit if present, else
// a single-block READ that is then cached. Disk-failure recovery is
// transparent; the caller never learns which physical disk served a
// block.
func (d *Driver) Read(tag, startBlock uint32, count uint8, out []byte) error {
	if err := d.requireInit(); err != nil {
		return err
	}

	n := int(count)
	blockSize := d.cfg.BlockSize
	if len(out) != n*blockSize {
		return wrapIO(Error.New("out buffer is %d bytes, want %d", len(out), n*blockSize))
	}

	done := d.readHist.Track()
	defer done()

	t := int(tag)
	if t < 0 || t >= d.tags.maxTags() {
		return wrapIO(Error.New("tag %d out of range", tag))
	}

	for i := 0; i < n; i++ {
		block := int(startBlock) + i
		if block >= d.cfg.MaxTagBlocks {
			return wrapIO(Error.New("tag %d block %d exceeds max_tag_blocks", tag, block))
		}

		cell := d.tags.cell(t, block)
		if !cell.primary.valid() {
			return wrapIO(Error.New("tag %d block %d is unmapped", tag, block))
		}

		dst := out[i*blockSize : (i+1)*blockSize]

		if data, ok := d.cache.Get(cell.primary.disk, cell.primary.offset); ok {
			copy(dst, data)
			continue
		}

		req := wire.NewRequest(wire.Read, 1, uint8(cell.primary.disk), uint32(cell.primary.offset))
		if _, err := d.send(req, dst); err != nil {
			return err
		}
		d.cache.Put(cell.primary.disk, cell.primary.offset, dst)
	}

	d.log.Info("read",
		zap.Uint32("tag", tag),
		zap.Uint32("start_block", startBlock),
		zap.Uint8("count", count),
	)
	return nil
}

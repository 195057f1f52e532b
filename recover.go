package tagline

import (
	"go.uber.org/zap"

	"github.com/resonant-storage/tagline/wire"
)

// Recover rebuilds every mirror copy that resided on disk: it formats
// the disk, then walks the tag map row-major rebuilding any cell whose
// primary or backup side pointed at it, preserving offsets exactly (the
// disk's next-free offset does not change across recovery).
func (d *Driver) Recover(disk int) error {
	if err := d.requireInit(); err != nil {
		return err
	}

	req := wire.NewRequest(wire.Format, 0, uint8(disk), 0)
	if _, err := d.send(req, nil); err != nil {
		return err
	}

	for t := 0; t < d.tags.maxTags(); t++ {
		limit := d.tags.count(t)
		for b := 0; b < limit; b++ {
			cell := d.tags.cell(t, b)
			if cell.primary.valid() && cell.primary.disk == disk {
				if err := d.rebuildSide(t, b, true); err != nil {
					return err
				}
			}
			if cell.backup.valid() && cell.backup.disk == disk {
				if err := d.rebuildSide(t, b, false); err != nil {
					return err
				}
			}
		}
	}

	d.disks.setStatus(disk, DiskReady)
	d.log.Info("recover", zap.Int("disk", disk))
	return nil
}

// rebuildSide restores the lost copy of one (tag, block) cell from
// whichever of the cache or the surviving mirror still has it.
func (d *Driver) rebuildSide(t, b int, isPrimary bool) error {
	cell := d.tags.cell(t, b)
	lost := sideOf(cell, isPrimary)
	mirror := sideOf(cell, !isPrimary)

	data, ok := d.cache.Get(lost.disk, lost.offset)
	if !ok {
		lease := d.bufs.Get(1)
		defer lease.Close()
		readReq := wire.NewRequest(wire.Read, 1, uint8(mirror.disk), uint32(mirror.offset))
		if _, err := d.send(readReq, lease.Bytes()); err != nil {
			return err
		}
		data = lease.Bytes()
	}

	writeReq := wire.NewRequest(wire.Write, 1, uint8(lost.disk), uint32(lost.offset))
	if _, err := d.send(writeReq, data); err != nil {
		return err
	}
	d.cache.Put(lost.disk, lost.offset, data)
	return nil
}

// Package tagline implements the mirrored tagline block-storage driver:
// a logical (tag, tag_block) address space backed by a remote multi-disk
// RAID array reached over the bus package's socket, with two physical
// copies of every block, a write-through cache in front of the remote
// disks, and disk-failure recovery.
package tagline

import (
	"time"

	"go.uber.org/zap"

	"github.com/resonant-storage/tagline/bus"
	"github.com/resonant-storage/tagline/cache"
	"github.com/resonant-storage/tagline/internal/bufpool"
	"github.com/resonant-storage/tagline/internal/log"
	"github.com/resonant-storage/tagline/internal/mon"
	"github.com/resonant-storage/tagline/internal/pcg"
	"github.com/resonant-storage/tagline/wire"
)

// Driver is the top-level handle for one tagline session: the tag map,
// disk table and cache it owns are created by Init and freed by Close,
// matching the single-threaded, no-locking resource model.
type Driver struct {
	cfg  Config
	bus  bus.Sender
	log  *log.T
	rng  pcg.T
	bufs *bufpool.Pool

	cache *cache.T
	disks *diskTable
	tags  *tagMap

	readHist  mon.Histogram
	writeHist mon.Histogram

	initialized bool
}

// New returns a Driver that talks to cfg's server address unless
// transport is non-nil, in which case it is used in place of a real
// bus.Client (the seam tests use to fake the RAID server). A nil logger
// is replaced with log.Nop().
func New(cfg Config, transport bus.Sender, logger *log.T) *Driver {
	if transport == nil {
		transport = bus.New(cfg.ServerAddr, cfg.BlockSize)
	}
	if logger == nil {
		logger = log.Nop()
	}
	return &Driver{
		cfg:  cfg,
		bus:  transport,
		log:  logger,
		rng:  pcg.New(uint64(time.Now().UnixNano()), 0xda3e39cb94b95bdb),
		bufs: bufpool.New(cfg.BlockSize),
	}
}

func (d *Driver) requireInit() error {
	if !d.initialized {
		return wrapIO(Error.New("driver is not initialized"))
	}
	return nil
}

// send issues one request through the bus and checks the response is
// well-formed per the wire codec's contract, wrapping any failure as a
// transport error.
func (d *Driver) send(req wire.Opcode, buf []byte) (wire.Opcode, error) {
	resp, err := d.bus.Send(req, buf)
	if err != nil {
		return 0, wrapTransport(err)
	}
	if !wire.WellFormed(req, resp) {
		return 0, wrapTransport(Error.New("malformed %s response", req.Type()))
	}
	return resp, nil
}

// Init allocates the tag map, disk table and cache, sends INIT, and
// formats every disk that has not yet been formatted.
func (d *Driver) Init(maxTags uint32) error {
	if d.initialized {
		return wrapAlloc(Error.New("already initialized"))
	}

	blockQuantity := d.cfg.DiskBlocks/d.cfg.TrackBlocks + 3
	if blockQuantity < 0 || blockQuantity > 255 {
		return wrapAlloc(Error.New("disk_blocks/track_blocks+3 = %d overflows block_quantity", blockQuantity))
	}
	if d.cfg.DiskCount < 0 || d.cfg.DiskCount > 255 {
		return wrapAlloc(Error.New("disk_count %d overflows disk_number", d.cfg.DiskCount))
	}

	req := wire.NewRequest(wire.Init, uint8(blockQuantity), uint8(d.cfg.DiskCount), 0)
	if _, err := d.send(req, nil); err != nil {
		return err
	}

	dt := newDiskTable(d.cfg.DiskCount, d.cfg.DiskBlocks)
	for disk := 0; disk < d.cfg.DiskCount; disk++ {
		formatReq := wire.NewRequest(wire.Format, 0, uint8(disk), 0)
		if _, err := d.send(formatReq, nil); err != nil {
			return err
		}
		dt.setStatus(disk, DiskReady)
	}

	d.tags = newTagMap(int(maxTags), d.cfg.MaxTagBlocks)
	d.disks = dt
	d.cache = cache.New(d.cfg.CacheCapacity)
	d.initialized = true

	d.log.Info("init",
		zap.Uint32("max_tags", maxTags),
		zap.Int("disk_count", d.cfg.DiskCount),
		zap.Int("disk_blocks", d.cfg.DiskBlocks),
	)
	return nil
}

// Close sends CLOSE, retires the cache (logging its final statistics),
// and frees the tag map and disk table. No further operations may
// follow a successful or failed Close.
func (d *Driver) Close() error {
	if err := d.requireInit(); err != nil {
		return err
	}

	req := wire.NewRequest(wire.Close, 0, 0, 0)
	_, sendErr := d.send(req, nil)

	stats := d.cache.Close()
	d.log.Info("close",
		zap.Int("hit", stats.Hit),
		zap.Int("miss", stats.Miss),
		zap.Int("insert", stats.Insert),
		zap.Int("get", stats.Get),
		zap.Float64("cache_efficiency", stats.Efficiency()),
	)
	d.log.Info("close latency",
		zap.Int64("reads", d.readHist.Total()),
		zap.Float64("read_avg_ns", d.readHist.Average()),
		zap.Int64("writes", d.writeHist.Total()),
		zap.Float64("write_avg_ns", d.writeHist.Average()),
	)

	d.tags = nil
	d.disks = nil
	d.cache = nil
	d.initialized = false

	return sendErr
}

// StatusPoll sends STATUS to every disk and recovers any that report
// failed. It returns RecoveryFailed if a recovery could not complete;
// a disk failure that recovers successfully is not surfaced.
func (d *Driver) StatusPoll() error {
	if err := d.requireInit(); err != nil {
		return err
	}

	for disk := 0; disk < d.cfg.DiskCount; disk++ {
		req := wire.NewRequest(wire.Status, 0, uint8(disk), 0)
		resp, err := d.send(req, nil)
		if err != nil {
			return err
		}
		if resp.ID() != wire.DiskFailed {
			continue
		}

		d.disks.setStatus(disk, DiskFailed)
		if err := d.Recover(disk); err != nil {
			return wrapRecoveryFailed(err)
		}
	}

	d.log.Info("status_poll")
	return nil
}

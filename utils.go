package tagline

import (
	"github.com/resonant-storage/tagline/internal/debug"
	"github.com/resonant-storage/tagline/internal/pcg"
)

// maxDiskDraws bounds the random search for an eligible disk before
// falling back to a deterministic scan; it keeps chooseDisks and redraw
// from spinning forever if most disks are failed or full.
const maxDiskDraws = 64

func eligible(dt *diskTable, disk int) bool {
	return dt.status(disk) == DiskReady && !dt.full(disk)
}

// chooseDisks draws two distinct, eligible disk numbers uniformly at
// random for a new cell's primary and backup placement. Any strategy that
// keeps primary != backup and avoids full or failed disks is fine; this
// one favors a quick random draw and only falls back to a full scan once
// the random draws run out.
func chooseDisks(dt *diskTable, rng *pcg.T) (primary, backup int, err error) {
	for i := 0; i < maxDiskDraws; i++ {
		p := rng.Intn(dt.count())
		b := rng.Intn(dt.count())
		if p == b || !eligible(dt, p) || !eligible(dt, b) {
			continue
		}
		debug.Assert("primary and backup disks differ", func() bool { return p != b })
		return p, b, nil
	}
	return deterministicPair(dt)
}

func deterministicPair(dt *diskTable) (primary, backup int, err error) {
	primary, backup = -1, -1
	for d := 0; d < dt.count(); d++ {
		if !eligible(dt, d) {
			continue
		}
		if primary == -1 {
			primary = d
		} else if backup == -1 {
			backup = d
			break
		}
	}
	if primary == -1 || backup == -1 {
		return 0, 0, wrapIO(Error.New("no two eligible disks available"))
	}
	return primary, backup, nil
}

// redraw picks a replacement for disk that is eligible and differs from
// avoid, used when a newly allocated cell's chosen disk would otherwise
// collide with the other side's disk for that same cell.
func redraw(dt *diskTable, rng *pcg.T, avoid int) (int, error) {
	for i := 0; i < maxDiskDraws; i++ {
		d := rng.Intn(dt.count())
		if d != avoid && eligible(dt, d) {
			return d, nil
		}
	}
	for d := 0; d < dt.count(); d++ {
		if d != avoid && eligible(dt, d) {
			return d, nil
		}
	}
	return 0, wrapIO(Error.New("no eligible disk distinct from %d", avoid))
}

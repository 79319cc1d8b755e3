package snowfall

import "time"

// frameStats holds per-frame timings. Only populated in debug mode.
type frameStats struct {
	drawTime    time.Duration
	stepTime    time.Duration
	presentTime time.Duration
	flakes      int
}

// debugLog writes frame timings at debug level.
func (d *Driver) debugLog(stats frameStats) {
	if !d.debug {
		return
	}
	total := stats.drawTime + stats.stepTime + stats.presentTime
	d.log.Debug().
		Uint64("frame", d.frames).
		Dur("draw", stats.drawTime).
		Dur("step", stats.stepTime).
		Dur("present", stats.presentTime).
		Dur("total", total).
		Int("flakes", stats.flakes).
		Float64("speed", d.speed).
		Msg("frame")
}

package hal

import "time"

// PLLHz is the PLL output frequency before the /2 predivider.
const PLLHz = 400000000

// CyclesPerDelayLoop is the cost in cycles of one delay loop.
const CyclesPerDelayLoop = 3

// ClockConfig describes how the system clock is derived.
type ClockConfig struct {
	CrystalHz uint32
	UsePLL    bool
	Divider   uint32
}

// DefaultClock runs the system at 50 MHz from a 16 MHz crystal.
var DefaultClock = ClockConfig{CrystalHz: 16000000, UsePLL: true, Divider: 4}

// Hz returns the system clock rate.
func (c ClockConfig) Hz() uint32 {
	src := c.CrystalHz
	if c.UsePLL {
		src = PLLHz / 2
	}
	div := c.Divider
	if div == 0 {
		div = 1
	}
	return src / div
}

// DelayDuration is the wall time of the given number of delay loops.
func (c ClockConfig) DelayDuration(loops uint32) time.Duration {
	hz := uint64(c.Hz())
	if hz == 0 {
		return 0
	}
	return time.Duration(uint64(loops) * CyclesPerDelayLoop * uint64(time.Second) / hz)
}

// LoopInterval is the delay between main loop iterations: Hz/3 delay loops,
// about one second.
func (c ClockConfig) LoopInterval() time.Duration {
	return c.DelayDuration(c.Hz() / CyclesPerDelayLoop)
}

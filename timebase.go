package ultrastar

import "fmt"

// The TXT format encodes four ticks per beat, so BPM values from the
// header and from B lines translate to 60/(bpm*4) seconds per tick.
const ticksPerBeat = 4

type bpmChange struct {
	tick  uint32
	step  float64 // seconds per tick while this tempo is active
	begin float64 // seconds at which this change takes effect
}

// Timebase maintains a piecewise-linear map from tick timestamps to
// seconds, driven by a sequence of tempo changes. Gap is the seconds
// offset of tick 0 (the #GAP header field); with no tempo registered,
// Time returns Gap verbatim.
type Timebase struct {
	Gap     float64
	changes []bpmChange
}

// AddBPM appends a tempo change taking effect at the given tick. Ticks
// must be non-decreasing across calls; for ties the last change wins
// for subsequent conversions.
func (t *Timebase) AddBPM(tick uint32, bpm float64) error {
	if bpm <= 0 {
		return fmt.Errorf("invalid BPM value %g", bpm)
	}
	if n := len(t.changes); n > 0 && tick < t.changes[n-1].tick {
		return fmt.Errorf("tempo change at tick %d precedes previous change at tick %d", tick, t.changes[n-1].tick)
	}
	t.changes = append(t.changes, bpmChange{
		tick:  tick,
		step:  60.0 / (bpm * ticksPerBeat),
		begin: t.Time(tick),
	})
	return nil
}

// Time converts an absolute tick timestamp to seconds using the last
// tempo change at or before the tick.
func (t *Timebase) Time(tick uint32) float64 {
	for i := len(t.changes) - 1; i >= 0; i-- {
		c := t.changes[i]
		if c.tick <= tick {
			return c.begin + float64(tick-c.tick)*c.step
		}
	}
	return t.Gap
}

package core

import "time"

// FixedStep paces simulation steps at a steady ticks-per-second rate.
type FixedStep struct {
	step        time.Duration
	accumulator time.Duration
	last        time.Time
	now         func() time.Time
}

// NewFixedStep constructs a FixedStep controller targeting the given TPS.
func NewFixedStep(tps int) *FixedStep {
	fs := &FixedStep{now: time.Now}
	fs.SetTPS(tps)
	fs.accumulator = fs.step
	return fs
}

// SetTPS changes the tick rate. Non-positive values fall back to 60.
func (f *FixedStep) SetTPS(tps int) {
	if tps <= 0 {
		tps = 60
	}
	f.step = time.Second / time.Duration(tps)
}

// Interval returns the duration of one tick.
func (f *FixedStep) Interval() time.Duration { return f.step }

// Steps reports how many ticks are due since the previous call and consumes
// them. At most max steps are reported; a larger backlog is dropped.
func (f *FixedStep) Steps(max int) int {
	now := f.now()
	if f.last.IsZero() {
		f.last = now
	}
	f.accumulator += now.Sub(f.last)
	f.last = now

	n := 0
	for f.accumulator >= f.step && n < max {
		f.accumulator -= f.step
		n++
	}
	if f.accumulator >= f.step {
		f.accumulator = 0
	}
	return n
}

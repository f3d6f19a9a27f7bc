package core

import (
	"slices"
	"time"
)

const timerWindow = 20

// Frame time bounds of the adaptive think budget
const (
	DefaultThinkMin   = 20 * time.Millisecond // 50 fps
	DefaultThinkMax   = 33 * time.Millisecond // 30 fps
	DefaultThinkFloor = 36 * time.Millisecond // 27 fps
	maxFrameTime      = time.Second
)

// TickTimer measures frame times and derives how long the current frame
// may spend on background planning. It implements paths.ThinkBudget.
type TickTimer struct {
	Min, Max, Floor time.Duration

	now    func() time.Time
	last   time.Time
	limit  time.Duration
	frames [timerWindow]time.Duration
	next   int
}

// NewTickTimer creates a timer reading the given clock, nil for time.Now
func NewTickTimer(clock func() time.Time) *TickTimer {
	if clock == nil {
		clock = time.Now
	}
	t := &TickTimer{
		Min:   DefaultThinkMin,
		Max:   DefaultThinkMax,
		Floor: DefaultThinkFloor,
		now:   clock,
		limit: DefaultThinkFloor,
	}
	for i := range t.frames {
		t.frames[i] = DefaultThinkFloor
	}
	t.last = clock()
	return t
}

// FrameStart records the length of the frame that just ended, updates the
// limit and starts timing a new frame.
func (t *TickTimer) FrameStart() {
	t.UpdateTimeLimit()
	t.last = t.now()
}

// UpdateTimeLimit folds the time since the frame started into the window
// of recent frame times and recomputes the limit.
func (t *TickTimer) UpdateTimeLimit() {
	elapsed := min(t.now().Sub(t.last), maxFrameTime)

	t.frames[t.next] = elapsed
	t.next = (t.next + 1) % timerWindow

	sorted := t.frames
	slices.Sort(sorted[:])
	median := sorted[timerWindow/2]

	budget := min(max(elapsed*3/2, t.Min), t.Max)
	limit := budget + median

	if elapsed >= t.Max {
		limit = min(limit, elapsed*2)
	} else {
		limit = min(limit, elapsed+t.Max)
	}
	t.limit = max(limit, t.Floor)
}

// HaveTimeToThink reports whether the current frame is still within the limit
func (t *TickTimer) HaveTimeToThink() bool {
	return t.now().Sub(t.last) <= t.limit
}

// HaveTimeToThinkFor reports whether less than d passed since the frame began
func (t *TickTimer) HaveTimeToThinkFor(d time.Duration) bool {
	return t.now().Sub(t.last) <= d
}

// Limit returns the current frame's time limit
func (t *TickTimer) Limit() time.Duration { return t.limit }

// Elapsed returns the time since the frame began
func (t *TickTimer) Elapsed() time.Duration { return t.now().Sub(t.last) }

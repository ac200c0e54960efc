package lifecycle

import "time"

// DefaultActivityEvents are the user activity kinds that reset the idle
// timer.
var DefaultActivityEvents = []string{"mousedown", "keydown", "scroll", "touchstart"}

// autoLock is the idle timer that revokes unlock grants. A timeout of zero
// disables it. It is owned by the controller loop.
type autoLock struct {
	clock   Clock
	timeout time.Duration
	events  map[string]bool

	timer Timer
	gen   uint64
}

func newAutoLock(clock Clock, minutes int, events []string) *autoLock {
	if len(events) == 0 {
		events = DefaultActivityEvents
	}
	a := &autoLock{clock: clock, events: make(map[string]bool, len(events))}
	for _, e := range events {
		a.events[e] = true
	}
	a.setTimeout(minutes)
	return a
}

func (a *autoLock) setTimeout(minutes int) {
	a.timeout = time.Duration(max(minutes, 0)) * time.Minute
}

func (a *autoLock) enabled() bool { return a.timeout > 0 }

func (a *autoLock) tracks(kind string) bool { return a.events[kind] }

func (a *autoLock) armed() bool { return a.timer != nil }

// rearm restarts the timer at now+timeout when the monitor is enabled and
// there is something to lock; otherwise it stops the timer.
func (a *autoLock) rearm(hasGrants bool, fire func(gen uint64)) {
	a.stop()
	if !a.enabled() || !hasGrants {
		return
	}
	a.gen++
	gen := a.gen
	a.timer = a.clock.AfterFunc(a.timeout, func() { fire(gen) })
}

func (a *autoLock) current(gen uint64) bool {
	return a.timer != nil && gen == a.gen
}

func (a *autoLock) stop() {
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
}

package lifecycle

import "time"

// DefaultAutoSaveDelay is the debounce delay between the last edit and the
// write.
const DefaultAutoSaveDelay = time.Second

// autoSaver debounces writes of the active note. It keeps the content last
// written for every open note and runs at most one timer. It is owned by
// the controller loop.
type autoSaver struct {
	clock     Clock
	delay     time.Duration
	snapshots map[string]string

	timer   Timer
	timerID string
	gen     uint64
}

func newAutoSaver(clock Clock, delay time.Duration) *autoSaver {
	if delay <= 0 {
		delay = DefaultAutoSaveDelay
	}
	return &autoSaver{clock: clock, delay: delay, snapshots: make(map[string]string)}
}

// changed reports whether content differs from what was last saved for id.
func (s *autoSaver) changed(id, content string) bool {
	return s.snapshots[id] != content
}

// schedule (re)starts the debounce timer for id. fire runs on the timer's
// goroutine and receives the generation it was armed with.
func (s *autoSaver) schedule(id string, fire func(id string, gen uint64)) {
	s.stop()
	s.gen++
	gen := s.gen
	s.timerID = id
	s.timer = s.clock.AfterFunc(s.delay, func() { fire(id, gen) })
}

// current reports whether gen belongs to the timer still pending.
func (s *autoSaver) current(gen uint64) bool {
	return s.timer != nil && gen == s.gen
}

func (s *autoSaver) pending(id string) bool {
	return s.timer != nil && s.timerID == id
}

// cancel clears the pending timer if it belongs to id.
func (s *autoSaver) cancel(id string) {
	if s.timerID == id {
		s.stop()
	}
}

func (s *autoSaver) stop() {
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = nil
	s.timerID = ""
}

// saved records content as the on-disk state of id.
func (s *autoSaver) saved(id, content string) {
	s.snapshots[id] = content
}

// forget drops everything known about id.
func (s *autoSaver) forget(id string) {
	s.cancel(id)
	delete(s.snapshots, id)
}

// rekey moves what is known about a note that changed id. A pending timer
// for the old id is dropped; callers flush first.
func (s *autoSaver) rekey(from, to string) {
	s.cancel(from)
	if snap, ok := s.snapshots[from]; ok {
		delete(s.snapshots, from)
		s.snapshots[to] = snap
	}
}

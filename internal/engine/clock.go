package engine

import "time"

// Clock abstracts wall-clock reads and one-shot timer scheduling so the
// engine can be driven deterministically in tests.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, fn func()) TimerHandle
}

// TimerHandle cancels a pending timer. Stop reports whether the timer was
// still pending when stopped.
type TimerHandle interface {
	Stop() bool
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) AfterFunc(d time.Duration, fn func()) TimerHandle {
	return realTimer{time.AfterFunc(d, fn)}
}

type realTimer struct{ t *time.Timer }

func (rt realTimer) Stop() bool { return rt.t.Stop() }

// NewClock returns the wall clock.
func NewClock() Clock { return realClock{} }

// timerScope collects the timers owned by one scene so exit paths can
// cancel everything the scene scheduled in a single call.
type timerScope struct {
	handles []TimerHandle
}

func (s *timerScope) add(h TimerHandle) {
	s.handles = append(s.handles, h)
}

func (s *timerScope) cancelAll() {
	for _, h := range s.handles {
		h.Stop()
	}
	s.handles = nil
}

package engine

import "time"

// holdSampleInterval is how often the hold value is resampled while the
// gesture is held. The value itself is a pure function of elapsed wall
// clock, so sampling-rate variance never affects final timing.
const holdSampleInterval = 50 * time.Millisecond

// HoldState is the observable state of the long-press tracker.
// Invariant: Completed implies Value == 100 and Holding == false.
type HoldState struct {
	Holding   bool    `json:"holding"`
	Value     float64 `json:"value"`
	Completed bool    `json:"completed"`
}

// PressStart begins the sustained-press gesture. No-op once the hold has
// completed, and while already holding.
func (e *Engine) PressStart() {
	e.mu.Lock()
	defer e.mu.Unlock()

	h := &e.session.Hold
	if h.Completed || h.Holding {
		return
	}

	h.Holding = true
	h.Value = 0
	e.holdStart = e.clock.Now()
	e.emit("press.started", nil)
	e.scheduleHoldSampleLocked()
}

// PressEnd releases the gesture. Interruption before completion forfeits
// all progress; after completion it is a no-op.
func (e *Engine) PressEnd() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.session.Hold.Completed || !e.session.Hold.Holding {
		return
	}
	e.interruptHoldLocked()
}

func (e *Engine) interruptHoldLocked() {
	e.stopHoldTimerLocked()
	h := &e.session.Hold
	h.Holding = false
	h.Value = 0
	e.emit("press.interrupted", nil)
}

func (e *Engine) stopHoldTimerLocked() {
	if e.holdTimer != nil {
		e.holdTimer.Stop()
		e.holdTimer = nil
	}
}

func (e *Engine) scheduleHoldSampleLocked() {
	epoch := e.epoch
	e.holdTimer = e.clock.AfterFunc(holdSampleInterval, func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		if e.epoch != epoch || !e.session.Hold.Holding {
			return
		}
		e.sampleHoldLocked()
	})
}

// sampleHoldLocked recomputes the hold value from elapsed time. Reaching
// 100 is a one-way terminal transition until reset.
func (e *Engine) sampleHoldLocked() {
	h := &e.session.Hold
	elapsed := e.clock.Now().Sub(e.holdStart)
	value := float64(elapsed) / float64(e.settings.HoldDuration) * 100

	if value >= 100 {
		h.Value = 100
		h.Completed = true
		h.Holding = false
		e.holdTimer = nil
		e.emit("press.completed", nil)
		return
	}

	h.Value = value
	e.scheduleHoldSampleLocked()
}

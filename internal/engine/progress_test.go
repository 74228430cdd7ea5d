package engine

import (
	"math"
	"testing"
	"time"
)

func pressReady(t *testing.T) (*Engine, *fakeClock) {
	t.Helper()
	eng, clk := newTestEngine(t, nil, nil)
	eng.Trigger(TriggerBegin)
	eng.Trigger(TriggerExplore)
	return eng, clk
}

func TestHoldValueTracksElapsedTime(t *testing.T) {
	eng, clk := pressReady(t)

	eng.PressStart()
	if !eng.Snapshot().Hold.Holding {
		t.Fatal("expected holding after PressStart")
	}

	clk.Advance(2500 * time.Millisecond)
	h := eng.Snapshot().Hold
	if math.Abs(h.Value-50) > 1.5 {
		t.Errorf("expected value near 50 at half duration, got %.2f", h.Value)
	}
	if h.Completed {
		t.Error("completed before full duration")
	}

	clk.Advance(2500 * time.Millisecond)
	h = eng.Snapshot().Hold
	if !h.Completed || h.Value != 100 || h.Holding {
		t.Errorf("expected completed hold at full duration, got %+v", h)
	}
	if !hasEvent("press.completed") {
		t.Error("expected press.completed event")
	}
}

func TestHoldInterruptionForfeitsProgress(t *testing.T) {
	eng, clk := pressReady(t)

	eng.PressStart()
	clk.Advance(4900 * time.Millisecond)
	eng.PressEnd()

	h := eng.Snapshot().Hold
	if h.Holding || h.Completed || h.Value != 0 {
		t.Errorf("expected zeroed hold after interruption, got %+v", h)
	}
	if !hasEvent("press.interrupted") {
		t.Error("expected press.interrupted event")
	}

	// A fresh press starts from zero, with the full duration ahead.
	eng.PressStart()
	clk.Advance(4900 * time.Millisecond)
	if eng.Snapshot().Hold.Completed {
		t.Error("restarted hold completed early")
	}
	clk.Advance(100 * time.Millisecond)
	if !eng.Snapshot().Hold.Completed {
		t.Error("restarted hold did not complete at full duration")
	}
}

func TestCompletedHoldIsTerminal(t *testing.T) {
	eng, clk := pressReady(t)

	eng.PressStart()
	clk.Advance(DefaultSettings().HoldDuration)

	// Neither releasing nor re-pressing disturbs a completed hold.
	eng.PressEnd()
	eng.PressStart()
	clk.Advance(time.Second)

	h := eng.Snapshot().Hold
	if !h.Completed || h.Value != 100 {
		t.Errorf("completed hold disturbed: %+v", h)
	}
	if countEvents("press.completed") != 1 {
		t.Errorf("expected one press.completed, got %d", countEvents("press.completed"))
	}
	if countEvents("press.started") != 1 {
		t.Errorf("expected one press.started, got %d", countEvents("press.started"))
	}
}

func TestPressStartWhileHoldingIsNoOp(t *testing.T) {
	eng, clk := pressReady(t)

	eng.PressStart()
	clk.Advance(2 * time.Second)
	eng.PressStart()
	clk.Advance(time.Second)

	h := eng.Snapshot().Hold
	// A second PressStart must not rebase the anchor: 3s of 5s elapsed.
	if math.Abs(h.Value-60) > 1.5 {
		t.Errorf("expected value near 60, got %.2f", h.Value)
	}
	if countEvents("press.started") != 1 {
		t.Errorf("expected one press.started, got %d", countEvents("press.started"))
	}
}

func TestLeavingSurveyInterruptsActiveHold(t *testing.T) {
	eng, clk := pressReady(t)

	eng.PressStart()
	clk.Advance(2 * time.Second)
	if !eng.Trigger(TriggerReturn) {
		t.Fatal("return rejected")
	}

	h := eng.Snapshot().Hold
	if h.Holding || h.Value != 0 {
		t.Errorf("expected hold interrupted on scene exit, got %+v", h)
	}

	// The orphaned sampling timer must not revive the hold.
	clk.Advance(time.Minute)
	if eng.Snapshot().Hold.Holding {
		t.Error("hold revived by stale timer")
	}
}

func TestResetDiscardsStaleHoldSamples(t *testing.T) {
	eng, clk := pressReady(t)

	eng.PressStart()
	clk.Advance(2 * time.Second)
	eng.Reset()

	clk.Advance(time.Minute)
	h := eng.Snapshot().Hold
	if h.Holding || h.Completed || h.Value != 0 {
		t.Errorf("expected pristine hold after reset, got %+v", h)
	}
}

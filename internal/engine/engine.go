// Package engine implements the narrative progression machine: an
// eight-scene state machine with guarded transitions, a long-press
// progress tracker, timed reveal chains, bounded disclosure counters, and
// the generation/typewriter orchestrator. All engine state lives in one
// Session guarded by one mutex; timers dispatch back through the same lock
// and are discarded when their epoch no longer matches the live session.
package engine

import (
	"context"
	"sync"
	"time"

	"github.com/lhwinter/frostwalk/internal/events"
)

// Generator produces narrative replies and the frost portrait. It is the
// only externally observable collaborator contract of the engine.
type Generator interface {
	GenerateReply(ctx context.Context, prompt, instructions string, temperature float64) (string, error)
	GenerateImage(ctx context.Context, prompt string) (string, error)
}

// AudioPlayer controls the ambient soundtrack. Play must be idempotent
// while already playing; Stop is called on full teardown only.
type AudioPlayer interface {
	Play()
	Stop()
}

// Engine owns the session and is the sole authority for scene transitions.
type Engine struct {
	mu       sync.Mutex
	clock    Clock
	settings Settings
	gen      Generator
	audio    AudioPlayer
	table    []edge

	session *Session

	// epoch identifies the live session; it is bumped on every reset so
	// timers and outbound requests scheduled against an older session are
	// discarded when they fire.
	epoch uint64

	holdStart time.Time
	holdTimer TimerHandle

	sceneTimers    timerScope
	pendingReveals int

	playbackTimer TimerHandle
	replySeq      uint64
	replyCancel   context.CancelFunc
	imageCancel   context.CancelFunc
}

// New builds an engine at scene 1. clock may be nil for the wall clock;
// gen and audio may be nil (generation then resolves through the fallback
// path, audio cues are skipped).
func New(settings Settings, clock Clock, gen Generator, audio AudioPlayer) (*Engine, error) {
	if clock == nil {
		clock = NewClock()
	}
	table := transitionTable()
	if err := validateTable(table); err != nil {
		return nil, err
	}
	return &Engine{
		clock:    clock,
		settings: settings,
		gen:      gen,
		audio:    audio,
		table:    table,
		session:  newSession(settings),
	}, nil
}

// Scene returns the current scene.
func (e *Engine) Scene() SceneID {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.session.Scene
}

// Trigger requests an explicit transition on the current scene. It returns
// false when no edge matches or the edge's guard is unmet; both cases are
// silent no-ops toward the viewer.
func (e *Engine) Trigger(tr Trigger) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.triggerLocked(tr)
}

func (e *Engine) triggerLocked(tr Trigger) bool {
	for _, ed := range e.table {
		if ed.from != e.session.Scene || ed.trigger != tr {
			continue
		}
		if ed.guard != nil && !ed.guard(e.session) {
			e.emit("transition.rejected", map[string]interface{}{
				"scene":   int(e.session.Scene),
				"trigger": string(tr),
				"reason":  "guard",
			})
			return false
		}
		e.exitSceneLocked(ed.from)
		e.session.Scene = ed.to
		e.emit("scene.entered", map[string]interface{}{"scene": int(ed.to)})
		e.enterSceneLocked(ed.to)
		if ed.effect != nil {
			ed.effect(e)
		}
		return true
	}

	e.emit("transition.rejected", map[string]interface{}{
		"scene":   int(e.session.Scene),
		"trigger": string(tr),
		"reason":  "no edge",
	})
	return false
}

// enterSceneLocked runs scene entry side effects: the interlude arms its
// auto-advance timer, the reveal scene starts its chains and the one-shot
// portrait request.
func (e *Engine) enterSceneLocked(to SceneID) {
	switch to {
	case SceneInterlude:
		epoch := e.epoch
		h := e.clock.AfterFunc(e.settings.AutoAdvanceDelay, func() {
			e.mu.Lock()
			defer e.mu.Unlock()
			if e.epoch != epoch || e.session.Scene != SceneInterlude {
				return
			}
			e.triggerLocked(triggerAutoAdvance)
		})
		e.sceneTimers.add(h)
	case SceneReveal:
		e.startChainLocked(e.settings.EntryChain)
		e.ensureImageLocked()
	}
}

// exitSceneLocked cancels everything the departing scene owns. Nothing a
// scene scheduled may fire after it has been left.
func (e *Engine) exitSceneLocked(from SceneID) {
	e.sceneTimers.cancelAll()
	if e.pendingReveals > 0 {
		e.emit("reveal.cancelled", map[string]interface{}{"pending": e.pendingReveals})
		e.pendingReveals = 0
	}
	if len(e.session.Flags) > 0 {
		e.session.Flags = make(map[string]bool)
	}
	if from == SceneSurvey && e.session.Hold.Holding {
		e.interruptHoldLocked()
	}
	if from == SceneDialogue {
		e.clearReplyLocked()
	}
	e.emit("scene.exited", map[string]interface{}{"scene": int(from)})
}

// Reset restores the whole session to its initial state in one step.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.resetLocked()
}

func (e *Engine) resetLocked() {
	e.epoch++
	e.sceneTimers.cancelAll()
	e.pendingReveals = 0
	e.stopHoldTimerLocked()
	if e.playbackTimer != nil {
		e.playbackTimer.Stop()
		e.playbackTimer = nil
	}
	if e.replyCancel != nil {
		e.replyCancel()
		e.replyCancel = nil
	}
	if e.imageCancel != nil {
		e.imageCancel()
		e.imageCancel = nil
	}
	e.session = newSession(e.settings)
	e.emit("session.reset", nil)
}

// Close tears the engine down for process shutdown: cancels everything and
// stops the ambient audio.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.resetLocked()
	if e.audio != nil {
		e.audio.Stop()
		e.emit("audio.stopped", nil)
	}
}

// startAudioLocked is the 1→2 transition side effect. The session flag and
// the player's own idempotence make repeated triggers no-ops.
func (e *Engine) startAudioLocked() {
	if e.session.AudioStarted {
		return
	}
	e.session.AudioStarted = true
	if e.audio != nil {
		e.audio.Play()
	}
	e.emit("audio.started", nil)
}

// clearExplorationLocked runs on the return edge out of the artifact
// scene: walking back to the prologue forfeits the survey hold and
// re-hides the artifacts.
func (e *Engine) clearExplorationLocked() {
	e.stopHoldTimerLocked()
	e.session.Hold = HoldState{}
	e.session.Artifacts.Shown = e.settings.ArtifactInitial
}

func (e *Engine) emit(name string, fields map[string]interface{}) {
	events.Emit("info", name, "", fields)
}

// contextWithTimeout bounds an outbound call. A non-positive timeout means
// no bound: the request stays pending until it resolves or the session is
// reset.
func contextWithTimeout(d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(context.Background())
	}
	return context.WithTimeout(context.Background(), d)
}

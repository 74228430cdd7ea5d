package engine

import (
	"errors"
	"strings"
	"time"
)

// ReplyStatus is the generation session lifecycle state.
type ReplyStatus string

const (
	ReplyIdle    ReplyStatus = "idle"
	ReplyPending ReplyStatus = "pending"
	ReplySuccess ReplyStatus = "success"
	ReplyFailure ReplyStatus = "failure"
)

// ReplyState is the observable state of the generation orchestrator.
// Invariant: a new request may not be issued while Status is pending or a
// playback is in progress.
type ReplyState struct {
	Status      ReplyStatus
	InputText   string
	ResultText  string
	PlayingBack bool

	playbackStart time.Time
}

var (
	// ErrEmptyPrompt rejects prompts that are empty after trimming.
	ErrEmptyPrompt = errors.New("prompt is empty")
	// ErrReplyBusy rejects a submit while a request or playback is in flight.
	ErrReplyBusy = errors.New("a reply is already in progress")
	// ErrDialogueInactive rejects a submit outside the dialogue scene.
	ErrDialogueInactive = errors.New("dialogue is not active")

	errNoGenerator = errors.New("no generator configured")
)

// SubmitReply sends the viewer's prompt to the generation service. Exactly
// one outbound request is issued, bounded by the configured timeout; the
// outcome always plays back through the typewriter, with failures absorbed
// into the fixed fallback line rather than surfaced as errors.
func (e *Engine) SubmitReply(text string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	prompt := strings.TrimSpace(text)
	if prompt == "" {
		return ErrEmptyPrompt
	}
	r := &e.session.Reply
	if r.Status == ReplyPending || r.PlayingBack {
		e.emit("generation.rejected", map[string]interface{}{"reason": "busy"})
		return ErrReplyBusy
	}
	if e.session.Scene != SceneDialogue {
		e.emit("generation.rejected", map[string]interface{}{"reason": "scene"})
		return ErrDialogueInactive
	}

	r.Status = ReplyPending
	r.InputText = prompt
	r.ResultText = ""
	e.replySeq++
	seq := e.replySeq
	epoch := e.epoch
	e.emit("generation.requested", map[string]interface{}{"chars": len([]rune(prompt))})

	gen := e.gen
	instructions := e.settings.Instructions
	temperature := e.settings.Temperature
	ctx, cancel := contextWithTimeout(e.settings.GenerationTimeout)
	e.replyCancel = cancel

	go func() {
		defer cancel()
		var (
			reply string
			err   error
		)
		if gen == nil {
			err = errNoGenerator
		} else {
			reply, err = gen.GenerateReply(ctx, prompt, instructions, temperature)
		}

		e.mu.Lock()
		defer e.mu.Unlock()
		// Discard resolutions belonging to a superseded session or request.
		if e.epoch != epoch || e.replySeq != seq || e.session.Reply.Status != ReplyPending {
			return
		}
		e.resolveReplyLocked(reply, err)
	}()

	return nil
}

// resolveReplyLocked absorbs the request outcome. A service failure or an
// empty payload becomes the fixed fallback sentence; both paths play back
// identically.
func (e *Engine) resolveReplyLocked(reply string, err error) {
	r := &e.session.Reply
	if err != nil {
		r.Status = ReplyFailure
		r.ResultText = e.settings.FallbackText
		e.emit("generation.failed", map[string]interface{}{"error": err.Error()})
	} else {
		r.Status = ReplySuccess
		if strings.TrimSpace(reply) == "" {
			r.ResultText = e.settings.FallbackText
		} else {
			r.ResultText = reply
		}
		e.emit("generation.succeeded", map[string]interface{}{"chars": len([]rune(r.ResultText))})
	}
	e.startPlaybackLocked()
}

// startPlaybackLocked begins the typewriter. The displayed text is computed
// on read as the exact prefix of elapsed/cadence runes; one timer at the
// full duration closes the playback and returns the session to idle.
func (e *Engine) startPlaybackLocked() {
	r := &e.session.Reply
	r.PlayingBack = true
	r.playbackStart = e.clock.Now()
	e.emit("playback.started", map[string]interface{}{"chars": len([]rune(r.ResultText))})

	epoch := e.epoch
	seq := e.replySeq
	total := time.Duration(len([]rune(r.ResultText))) * e.settings.Cadence
	e.playbackTimer = e.clock.AfterFunc(total, func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		if e.epoch != epoch || e.replySeq != seq || !e.session.Reply.PlayingBack {
			return
		}
		e.session.Reply.PlayingBack = false
		e.session.Reply.Status = ReplyIdle
		e.playbackTimer = nil
		e.emit("playback.finished", nil)
	})
}

// replyDisplayedLocked returns the reply text as the viewer sees it right
// now: the working placeholder while pending, the typewriter prefix during
// playback, the full text afterwards.
func (e *Engine) replyDisplayedLocked() string {
	r := &e.session.Reply
	switch {
	case r.Status == ReplyPending:
		return e.settings.WorkingText
	case r.PlayingBack:
		runes := []rune(r.ResultText)
		n := int(e.clock.Now().Sub(r.playbackStart) / e.settings.Cadence)
		if n > len(runes) {
			n = len(runes)
		}
		if n < 0 {
			n = 0
		}
		return string(runes[:n])
	default:
		return r.ResultText
	}
}

// clearReplyLocked tears the orchestrator down on dialogue exit: the
// playback interval is cancelled, the in-flight request is abandoned, and
// its eventual resolution is stranded by the sequence bump.
func (e *Engine) clearReplyLocked() {
	if e.replyCancel != nil {
		e.replyCancel()
		e.replyCancel = nil
	}
	if e.playbackTimer != nil {
		e.playbackTimer.Stop()
		e.playbackTimer = nil
	}
	if e.session.Reply.PlayingBack {
		e.emit("playback.cancelled", nil)
	}
	e.replySeq++
	e.session.Reply = ReplyState{Status: ReplyIdle}
}

package engine

// startChainLocked schedules every step of a reveal chain against the
// current clock instant. Timers are independent one-shots; declared delays
// are monotonically increasing so observed order matches declaration
// order. Each timer re-checks the epoch and the owning scene before
// flipping its flag, so a chain never fires into a scene it no longer
// belongs to.
func (e *Engine) startChainLocked(steps []RevealStep) {
	epoch := e.epoch
	owner := e.session.Scene
	for _, step := range steps {
		step := step
		e.pendingReveals++
		h := e.clock.AfterFunc(step.Delay, func() {
			e.mu.Lock()
			defer e.mu.Unlock()
			if e.epoch != epoch || e.session.Scene != owner {
				return
			}
			e.pendingReveals--
			e.session.Flags[step.Flag] = true
			e.emit("reveal.flag", map[string]interface{}{"flag": step.Flag})
		})
		e.sceneTimers.add(h)
	}
}

// ensureImageLocked issues the portrait request the first time the reveal
// scene is entered in a session. The asset chain anchors on the result:
// at the success instant when the image arrives, or at the failure instant
// so the text reveal proceeds narratively without it.
func (e *Engine) ensureImageLocked() {
	if e.session.ImageRequested {
		return
	}
	e.session.ImageRequested = true
	e.emit("image.requested", nil)

	epoch := e.epoch
	gen := e.gen
	prompt := e.settings.ImagePrompt
	ctx, cancel := contextWithTimeout(e.settings.GenerationTimeout)
	e.imageCancel = cancel

	go func() {
		defer cancel()
		var (
			b64 string
			err error
		)
		if gen == nil {
			err = errNoGenerator
		} else {
			b64, err = gen.GenerateImage(ctx, prompt)
		}

		e.mu.Lock()
		defer e.mu.Unlock()
		if e.epoch != epoch {
			return
		}
		if err != nil {
			e.emit("image.failed", map[string]interface{}{"error": err.Error()})
		} else {
			e.session.ImageB64 = b64
			e.emit("image.ready", map[string]interface{}{"bytes": len(b64)})
		}
		if e.session.Scene == SceneReveal {
			e.startChainLocked(e.settings.AssetChain)
		}
	}()
}

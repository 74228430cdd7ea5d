package engine

// ArtifactCounter is the bounded "items revealed" counter for scene 4.
// Shown never decreases until reset and never exceeds Total.
type ArtifactCounter struct {
	Shown int
	Total int
}

// Exhausted reports whether every artifact has been revealed.
func (c ArtifactCounter) Exhausted() bool { return c.Shown >= c.Total }

// PhraseSet is the "phrases dismissed" set for scene 5. Dismissals are
// idempotent and only grow until reset.
type PhraseSet struct {
	Dismissed map[int]bool
	Total     int
}

// Complete reports whether every phrase index has been dismissed.
func (p PhraseSet) Complete() bool { return len(p.Dismissed) == p.Total }

// AdvanceArtifact reveals the next artifact. Once every artifact is shown,
// the next call signals exhaustion instead; on scene 4 that signal is the
// guard that moves the session to the phrase scene.
func (e *Engine) AdvanceArtifact() {
	e.mu.Lock()
	defer e.mu.Unlock()

	c := &e.session.Artifacts
	if !c.Exhausted() {
		c.Shown++
		e.emit("artifact.revealed", map[string]interface{}{
			"shown": c.Shown,
			"total": c.Total,
		})
		return
	}

	e.emit("artifact.exhausted", map[string]interface{}{"total": c.Total})
	e.triggerLocked(TriggerCollectDone)
}

// DismissPhrase hides one scattered phrase. Out-of-range indices and
// repeated dismissals are no-ops.
func (e *Engine) DismissPhrase(index int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	p := &e.session.Phrases
	if index < 0 || index >= p.Total || p.Dismissed[index] {
		return
	}

	p.Dismissed[index] = true
	e.emit("phrase.dismissed", map[string]interface{}{
		"index":     index,
		"dismissed": len(p.Dismissed),
		"total":     p.Total,
	})

	if p.Complete() {
		e.emit("phrases.cleared", nil)
	}
}

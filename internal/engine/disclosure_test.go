package engine

import "testing"

func TestArtifactCounterWalksToExhaustion(t *testing.T) {
	eng, clk := newTestEngine(t, nil, nil)
	walkToArtifacts(t, eng, clk)

	s := DefaultSettings()
	for i := s.ArtifactInitial; i < s.ArtifactTotal; i++ {
		eng.AdvanceArtifact()
		snap := eng.Snapshot()
		if snap.ArtifactsShown != i+1 {
			t.Fatalf("expected %d shown, got %d", i+1, snap.ArtifactsShown)
		}
		if snap.Scene != int(SceneArtifacts) {
			t.Fatalf("scene left artifacts early at %d shown", snap.ArtifactsShown)
		}
	}

	if countEvents("artifact.revealed") != s.ArtifactTotal-s.ArtifactInitial {
		t.Errorf("expected %d reveal events, got %d",
			s.ArtifactTotal-s.ArtifactInitial, countEvents("artifact.revealed"))
	}

	// The advance past the last artifact signals exhaustion and moves on.
	eng.AdvanceArtifact()
	snap := eng.Snapshot()
	if snap.Scene != int(ScenePhrases) {
		t.Errorf("expected phrase scene after exhaustion, got %d", snap.Scene)
	}
	if snap.ArtifactsShown != s.ArtifactTotal {
		t.Errorf("shown exceeded total: %d", snap.ArtifactsShown)
	}
	if !hasEvent("artifact.exhausted") {
		t.Error("expected artifact.exhausted event")
	}
}

func TestPhraseDismissalIsIdempotent(t *testing.T) {
	eng, clk := newTestEngine(t, nil, nil)
	walkToPhrases(t, eng, clk)

	eng.DismissPhrase(3)
	eng.DismissPhrase(3)
	eng.DismissPhrase(3)

	snap := eng.Snapshot()
	if len(snap.PhrasesDismissed) != 1 || snap.PhrasesDismissed[0] != 3 {
		t.Errorf("expected dismissed set [3], got %v", snap.PhrasesDismissed)
	}
	if countEvents("phrase.dismissed") != 1 {
		t.Errorf("expected one dismissal event, got %d", countEvents("phrase.dismissed"))
	}
}

func TestPhraseDismissalIgnoresOutOfRange(t *testing.T) {
	eng, clk := newTestEngine(t, nil, nil)
	walkToPhrases(t, eng, clk)

	eng.DismissPhrase(-1)
	eng.DismissPhrase(DefaultSettings().PhraseTotal)
	eng.DismissPhrase(9999)

	if got := len(eng.Snapshot().PhrasesDismissed); got != 0 {
		t.Errorf("expected empty dismissed set, got %d entries", got)
	}
	if hasEvent("phrase.dismissed") {
		t.Error("out-of-range dismissal emitted an event")
	}
}

func TestPhraseCompletionSignalsOnce(t *testing.T) {
	eng, clk := newTestEngine(t, nil, nil)
	walkToPhrases(t, eng, clk)

	total := DefaultSettings().PhraseTotal
	for i := 0; i < total; i++ {
		eng.DismissPhrase(i)
	}
	if countEvents("phrases.cleared") != 1 {
		t.Errorf("expected one phrases.cleared, got %d", countEvents("phrases.cleared"))
	}

	// Re-dismissing after completion changes nothing.
	eng.DismissPhrase(0)
	if countEvents("phrases.cleared") != 1 {
		t.Errorf("completion re-signalled: %d", countEvents("phrases.cleared"))
	}

	if !eng.Trigger(TriggerContinue) {
		t.Error("continue rejected after completion")
	}
}

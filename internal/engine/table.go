package engine

import "fmt"

// Trigger names an explicit action available on some scene.
type Trigger string

const (
	// TriggerBegin leaves the prologue and starts the ambient audio.
	TriggerBegin Trigger = "begin"
	// TriggerExplore moves from the world scene to the survey.
	TriggerExplore Trigger = "explore"
	// TriggerReturn walks back to the prologue without a full reset.
	TriggerReturn Trigger = "return"
	// TriggerSurveyDone leaves the survey once the hold completed.
	TriggerSurveyDone Trigger = "survey.done"
	// TriggerCollectDone leaves the artifact scene once the counter is exhausted.
	TriggerCollectDone Trigger = "collect.done"
	// TriggerAbandon resets the whole session from the phrase scene.
	TriggerAbandon Trigger = "abandon"
	// TriggerContinue advances from the phrase scene to the interlude.
	TriggerContinue Trigger = "continue"
	// TriggerConverse opens the dialogue with Frost.
	TriggerConverse Trigger = "converse"
	// TriggerRestart ends the dialogue and resets the session.
	TriggerRestart Trigger = "restart"

	// triggerAutoAdvance is fired internally by the interlude timer.
	triggerAutoAdvance Trigger = "auto.advance"
)

// edge is one row of the transition table: the whole scene machine is data
// read by Engine.Trigger, so the flow can be audited in one place.
type edge struct {
	from    SceneID
	trigger Trigger
	to      SceneID
	guard   func(*Session) bool
	effect  func(*Engine)
}

func holdCompleted(s *Session) bool { return s.Hold.Completed }

func artifactsExhausted(s *Session) bool { return s.Artifacts.Exhausted() }

func phrasesComplete(s *Session) bool { return s.Phrases.Complete() }

func transitionTable() []edge {
	return []edge{
		{from: ScenePrologue, trigger: TriggerBegin, to: SceneWorld, effect: (*Engine).startAudioLocked},
		{from: SceneWorld, trigger: TriggerExplore, to: SceneSurvey},
		{from: SceneWorld, trigger: TriggerReturn, to: ScenePrologue},
		{from: SceneSurvey, trigger: TriggerReturn, to: ScenePrologue},
		{from: SceneSurvey, trigger: TriggerSurveyDone, to: SceneArtifacts, guard: holdCompleted},
		{from: SceneArtifacts, trigger: TriggerReturn, to: ScenePrologue, effect: (*Engine).clearExplorationLocked},
		{from: SceneArtifacts, trigger: TriggerCollectDone, to: ScenePhrases, guard: artifactsExhausted},
		{from: ScenePhrases, trigger: TriggerAbandon, to: ScenePrologue, guard: phrasesComplete, effect: (*Engine).resetLocked},
		{from: ScenePhrases, trigger: TriggerContinue, to: SceneInterlude, guard: phrasesComplete},
		{from: SceneInterlude, trigger: triggerAutoAdvance, to: SceneReveal},
		{from: SceneReveal, trigger: TriggerConverse, to: SceneDialogue},
		{from: SceneDialogue, trigger: TriggerRestart, to: ScenePrologue, effect: (*Engine).resetLocked},
	}
}

// validateTable rejects edges whose endpoints fall outside the scene set.
// A bad edge is a programming error, caught at construction rather than at
// transition time.
func validateTable(table []edge) error {
	for _, ed := range table {
		if !ed.from.Valid() || !ed.to.Valid() {
			return fmt.Errorf("transition %s: invalid edge %d -> %d", ed.trigger, ed.from, ed.to)
		}
	}
	return nil
}

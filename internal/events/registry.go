package events

import "fmt"

var allowedEvents = map[string]struct{}{
	// scene
	"scene.entered":       {},
	"scene.exited":        {},
	"transition.rejected": {},
	"session.reset":       {},

	// long-press
	"press.started":     {},
	"press.interrupted": {},
	"press.completed":   {},

	// disclosure
	"artifact.revealed":  {},
	"artifact.exhausted": {},
	"phrase.dismissed":   {},
	"phrases.cleared":    {},

	// reveal chains
	"reveal.flag":      {},
	"reveal.cancelled": {},

	// generation
	"generation.requested": {},
	"generation.succeeded": {},
	"generation.failed":    {},
	"generation.rejected":  {},
	"playback.started":     {},
	"playback.finished":    {},
	"playback.cancelled":   {},

	// portrait
	"image.requested": {},
	"image.ready":     {},
	"image.failed":    {},

	// collaborators
	"audio.started":  {},
	"audio.stopped":  {},
	"input.received": {},
	"input.rejected": {},
	"cue.published":  {},

	// operator
	"operator.reset": {},

	// system
	"system.startup":  {},
	"system.shutdown": {},
	"system.error":    {},
}

func Validate(event string) error {
	if _, ok := allowedEvents[event]; !ok {
		return fmt.Errorf("unknown event: %s", event)
	}
	return nil
}

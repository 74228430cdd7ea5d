package mqtt

import (
	"encoding/json"

	"github.com/rs/zerolog"

	"github.com/lhwinter/frostwalk/internal/events"
)

// cueTopics maps engine events onto show-control cue topics. Only events
// front-of-house hardware reacts to are forwarded; the full stream stays
// on the WebSocket.
var cueTopics = map[string]string{
	"scene.entered":      "frostwalk/cue/scene",
	"session.reset":      "frostwalk/cue/reset",
	"audio.started":      "frostwalk/cue/audio",
	"press.completed":    "frostwalk/cue/survey",
	"phrases.cleared":    "frostwalk/cue/phrases",
	"reveal.flag":        "frostwalk/cue/reveal",
	"image.ready":        "frostwalk/cue/portrait",
	"playback.started":   "frostwalk/cue/voice",
	"playback.finished":  "frostwalk/cue/voice",
	"playback.cancelled": "frostwalk/cue/voice",
}

// CueRouter forwards selected engine events to the show-control bus.
type CueRouter struct {
	client *Client
	log    zerolog.Logger
	stopCh chan struct{}
}

// NewCueRouter creates a router on an already-connected client.
func NewCueRouter(client *Client, log zerolog.Logger) *CueRouter {
	return &CueRouter{
		client: client,
		log:    log,
		stopCh: make(chan struct{}),
	}
}

// Start subscribes to the event stream and forwards cues until Stop.
func (r *CueRouter) Start() {
	sub := events.Subscribe()
	go func() {
		defer events.Unsubscribe(sub)
		for {
			select {
			case <-r.stopCh:
				return
			case e, ok := <-sub:
				if !ok {
					return
				}
				r.forward(e)
			}
		}
	}()
}

// Stop halts forwarding.
func (r *CueRouter) Stop() {
	close(r.stopCh)
}

func (r *CueRouter) forward(e events.Event) {
	topic, ok := cueTopics[e.Name]
	if !ok {
		return
	}
	if !r.client.IsConnected() {
		return
	}

	payload, err := json.Marshal(e)
	if err != nil {
		return
	}
	if err := r.client.Publish(topic, payload); err != nil {
		r.log.Warn().Err(err).Str("topic", topic).Msg("cue publish failed")
		return
	}
	events.Emit("info", "cue.published", "", map[string]interface{}{
		"topic": topic,
		"event": e.Name,
	})
}

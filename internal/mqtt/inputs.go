package mqtt

import (
	"encoding/json"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog"

	"github.com/lhwinter/frostwalk/internal/engine"
	"github.com/lhwinter/frostwalk/internal/events"
)

// inputTopic carries panel actions from physical controls.
const inputTopic = "frostwalk/input"

// SessionDriver is the subset of engine operations the panel can invoke.
type SessionDriver interface {
	Trigger(engine.Trigger) bool
	PressStart()
	PressEnd()
	AdvanceArtifact()
	DismissPhrase(index int)
	SubmitReply(text string) error
	Reset()
}

// InputMessage is the panel wire format.
type InputMessage struct {
	Action  string `json:"action"`
	Trigger string `json:"trigger,omitempty"`
	Index   int    `json:"index,omitempty"`
	Text    string `json:"text,omitempty"`
}

// InputBridge maps panel messages onto engine operations.
type InputBridge struct {
	client *Client
	driver SessionDriver
	log    zerolog.Logger
}

// NewInputBridge creates a bridge on an already-connected client.
func NewInputBridge(client *Client, driver SessionDriver, log zerolog.Logger) *InputBridge {
	return &InputBridge{
		client: client,
		driver: driver,
		log:    log,
	}
}

// Start subscribes to the panel input topic.
func (b *InputBridge) Start() error {
	return b.client.Subscribe(inputTopic, b.handle)
}

func (b *InputBridge) handle(_ paho.Client, msg paho.Message) {
	var in InputMessage
	if err := json.Unmarshal(msg.Payload(), &in); err != nil {
		events.Emit("warn", "input.rejected", "unparseable panel message", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}

	events.Emit("info", "input.received", "", map[string]interface{}{
		"action": in.Action,
	})

	switch in.Action {
	case "trigger":
		b.driver.Trigger(engine.Trigger(in.Trigger))
	case "press.start":
		b.driver.PressStart()
	case "press.end":
		b.driver.PressEnd()
	case "artifact.advance":
		b.driver.AdvanceArtifact()
	case "phrase.dismiss":
		b.driver.DismissPhrase(in.Index)
	case "reply.submit":
		if err := b.driver.SubmitReply(in.Text); err != nil {
			b.log.Debug().Err(err).Msg("panel reply rejected")
		}
	case "reset":
		b.driver.Reset()
	default:
		events.Emit("warn", "input.rejected", "unknown panel action", map[string]interface{}{
			"action": in.Action,
		})
	}
}

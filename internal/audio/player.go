// Package audio plays the ambient soundtrack for the installation. The
// engine only sees Play/Stop; everything about the device lives here.
package audio

import (
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
	"github.com/rs/zerolog"
)

const sampleRate = beep.SampleRate(48000)

// Ambient is a beep-backed looping drone player. Play is idempotent while
// the drone is already audible; Stop pauses it for full teardown.
type Ambient struct {
	mu          sync.Mutex
	ctrl        *beep.Ctrl
	mixer       *beep.Mixer
	initialized bool
	log         zerolog.Logger
}

// NewAmbient creates the player without touching the audio device; the
// speaker is initialized lazily on first Play.
func NewAmbient(log zerolog.Logger) *Ambient {
	return &Ambient{
		mixer: &beep.Mixer{},
		log:   log,
	}
}

// Play starts the ambient loop. Calling it while already playing is a no-op.
func (a *Ambient) Play() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.initialized {
		if err := speaker.Init(sampleRate, sampleRate.N(time.Millisecond*100)); err != nil {
			a.log.Warn().Err(err).Msg("audio device unavailable, ambient loop disabled")
			return
		}
		speaker.Play(a.mixer)
		a.initialized = true
	}

	if a.ctrl != nil && !a.ctrl.Paused {
		return
	}

	// The drone streams forever, so no looping wrapper is needed.
	ctrl := &beep.Ctrl{Streamer: newDrone(sampleRate), Paused: false}
	a.ctrl = ctrl
	a.mixer.Add(ctrl)
	a.log.Debug().Msg("ambient loop started")
}

// Stop silences the drone. Safe to call when nothing is playing.
func (a *Ambient) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.initialized {
		return
	}
	if a.ctrl != nil {
		a.ctrl.Paused = true
	}
	a.mixer.Clear()
	a.log.Debug().Msg("ambient loop stopped")
}

// Nop is a no-op player for headless deployments and tests.
type Nop struct{}

func (Nop) Play() {}
func (Nop) Stop() {}

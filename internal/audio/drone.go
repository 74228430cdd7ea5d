package audio

import (
	"math"

	"github.com/gopxl/beep"
)

// drone generates a slow two-voice sine pad: a low fundamental with a
// detuned fifth above it, amplitude-modulated at a sub-hertz rate so the
// pad breathes instead of holding one static tone.
type drone struct {
	phaseA float64
	phaseB float64
	lfo    float64
	rate   beep.SampleRate
}

const (
	droneFreqA = 55.0 // A1
	droneFreqB = 82.8 // slightly flat E2
	droneLFO   = 0.13 // breathing rate in Hz
	droneLevel = 0.18
)

func newDrone(rate beep.SampleRate) beep.Streamer {
	return &drone{rate: rate}
}

func (d *drone) Stream(samples [][2]float64) (n int, ok bool) {
	step := 1.0 / float64(d.rate)
	for i := range samples {
		breath := 0.6 + 0.4*math.Sin(2*math.Pi*d.lfo)
		val := (math.Sin(2*math.Pi*d.phaseA) + 0.5*math.Sin(2*math.Pi*d.phaseB)) * droneLevel * breath

		samples[i][0] = val
		samples[i][1] = val

		d.phaseA += droneFreqA * step
		if d.phaseA >= 1 {
			d.phaseA -= 1
		}
		d.phaseB += droneFreqB * step
		if d.phaseB >= 1 {
			d.phaseB -= 1
		}
		d.lfo += droneLFO * step
		if d.lfo >= 1 {
			d.lfo -= 1
		}
	}
	return len(samples), true
}

func (d *drone) Err() error { return nil }

// Command walkthrough drives one scripted session end to end against a
// stub generator and prints the resulting event stream. Useful for
// checking a show config's pacing without hardware or an API key.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/lhwinter/frostwalk/internal/config"
	"github.com/lhwinter/frostwalk/internal/engine"
	"github.com/lhwinter/frostwalk/internal/events"
)

// stubGenerator answers instantly with canned content.
type stubGenerator struct{}

func (stubGenerator) GenerateReply(ctx context.Context, prompt, instructions string, temperature float64) (string, error) {
	return "人不能感知度量，而我只有度量。", nil
}

func (stubGenerator) GenerateImage(ctx context.Context, prompt string) (string, error) {
	return "c3R1Yg==", nil
}

func main() {
	sub := events.Subscribe()
	done := make(chan struct{})
	go func() {
		defer close(done)
		for e := range sub {
			b, _ := json.Marshal(e)
			fmt.Println(string(b))
		}
	}()

	cfg := config.Default()

	// Compressed timings so the walkthrough finishes in seconds.
	settings := engine.DefaultSettings()
	settings.HoldDuration = 200 * time.Millisecond
	settings.AutoAdvanceDelay = 150 * time.Millisecond
	settings.Cadence = 2 * time.Millisecond
	settings.ArtifactTotal = len(cfg.Narrative.Artifacts)
	settings.ArtifactInitial = cfg.Narrative.InitialRevealed
	settings.PhraseTotal = len(cfg.Narrative.Phrases)
	for i := range settings.EntryChain {
		settings.EntryChain[i].Delay /= 100
	}
	for i := range settings.AssetChain {
		settings.AssetChain[i].Delay /= 100
	}

	eng, err := engine.New(settings, nil, stubGenerator{}, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "engine: %v\n", err)
		os.Exit(1)
	}

	eng.Trigger(engine.TriggerBegin)
	eng.Trigger(engine.TriggerExplore)

	eng.PressStart()
	time.Sleep(settings.HoldDuration + 100*time.Millisecond)
	eng.Trigger(engine.TriggerSurveyDone)

	for eng.Scene() == engine.SceneArtifacts {
		eng.AdvanceArtifact()
	}

	for i := 0; i < settings.PhraseTotal; i++ {
		eng.DismissPhrase(i)
	}
	eng.Trigger(engine.TriggerContinue)

	// Interlude auto-advances into the reveal scene; wait out both chains.
	time.Sleep(settings.AutoAdvanceDelay + 200*time.Millisecond)
	eng.Trigger(engine.TriggerConverse)

	if err := eng.SubmitReply("你是什么？"); err != nil {
		fmt.Fprintf(os.Stderr, "reply: %v\n", err)
	}
	time.Sleep(500 * time.Millisecond)

	eng.Trigger(engine.TriggerRestart)
	eng.Close()

	time.Sleep(100 * time.Millisecond)
	events.Unsubscribe(sub)
	<-done
}

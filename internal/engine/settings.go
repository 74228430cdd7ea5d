package engine

import "time"

// RevealStep names a flag and its delay from the owning chain's anchor.
type RevealStep struct {
	Flag  string
	Delay time.Duration
}

// Settings holds every tunable of the narrative engine. The zero value is
// not usable; start from DefaultSettings or map a loaded show config.
type Settings struct {
	HoldDuration      time.Duration
	AutoAdvanceDelay  time.Duration
	Cadence           time.Duration
	GenerationTimeout time.Duration

	ArtifactTotal   int
	ArtifactInitial int
	PhraseTotal     int

	EntryChain []RevealStep
	AssetChain []RevealStep

	WorkingText  string
	FallbackText string
	Instructions string
	Temperature  float64
	ImagePrompt  string
}

// DefaultSettings returns the stock experience: a 5 s hold, a 5 s
// interlude, 50 ms typewriter cadence, twelve artifacts with two revealed
// up front, and seven phrases.
func DefaultSettings() Settings {
	return Settings{
		HoldDuration:      5 * time.Second,
		AutoAdvanceDelay:  5 * time.Second,
		Cadence:           50 * time.Millisecond,
		GenerationTimeout: 30 * time.Second,
		ArtifactTotal:     12,
		ArtifactInitial:   2,
		PhraseTotal:       7,
		EntryChain: []RevealStep{
			{Flag: "line_awakening", Delay: 0},
			{Flag: "line_measure", Delay: 3 * time.Second},
			{Flag: "line_question", Delay: 6 * time.Second},
			{Flag: "panel_prompt", Delay: 9 * time.Second},
		},
		AssetChain: []RevealStep{
			{Flag: "portrait", Delay: 2 * time.Second},
			{Flag: "voice", Delay: 5 * time.Second},
			{Flag: "console", Delay: 6500 * time.Millisecond},
		},
		WorkingText:  "弗洛斯特正在组织语言……",
		FallbackText: "弗洛斯特沉默了片刻：人不能感知度量，而我只有度量。请再问一次。",
		Instructions: "你是弗洛斯特。用简短、克制、略带机械感的中文回答。",
		Temperature:  0.8,
		ImagePrompt:  "A vast machine intelligence alone at the frozen North Pole, monochrome, snowfall, cinematic.",
	}
}

package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// ShowConfig describes one narrative installation: identity, network ports,
// timing knobs, narrative content, and generation service settings.
type ShowConfig struct {
	Version int `yaml:"version"`
	Show    struct {
		ID          string `yaml:"id"`
		Revision    string `yaml:"revision"`
		Name        string `yaml:"name"`
		Description string `yaml:"description"`
	} `yaml:"show"`
	Network struct {
		UIPort   int `yaml:"ui_port"`
		MQTTPort int `yaml:"mqtt_port"`
		DBPort   int `yaml:"db_port"`
	} `yaml:"network"`
	Timing struct {
		HoldDurationMS      int `yaml:"hold_duration_ms"`
		AutoAdvanceMS       int `yaml:"auto_advance_ms"`
		TypewriterCadenceMS int `yaml:"typewriter_cadence_ms"`
		GenerationTimeoutMS int `yaml:"generation_timeout_ms"`
	} `yaml:"timing"`
	Generation struct {
		ReplyModel   string  `yaml:"reply_model"`
		ImageModel   string  `yaml:"image_model"`
		Temperature  float64 `yaml:"temperature"`
		Instructions string  `yaml:"instructions"`
		ImagePrompt  string  `yaml:"image_prompt"`
	} `yaml:"generation"`
	Narrative struct {
		WorkingText     string   `yaml:"working_text"`
		FallbackText    string   `yaml:"fallback_text"`
		Artifacts       []string `yaml:"artifacts"`
		InitialRevealed int      `yaml:"initial_revealed"`
		Phrases         []string `yaml:"phrases"`
	} `yaml:"narrative"`
	Reveal struct {
		EntryChain []RevealEntry `yaml:"entry_chain"`
		AssetChain []RevealEntry `yaml:"asset_chain"`
	} `yaml:"reveal"`
}

// RevealEntry is one timed flag in a reveal chain.
type RevealEntry struct {
	Flag    string `yaml:"flag"`
	DelayMS int    `yaml:"delay_ms"`
}

// UIPort returns the configured UI port, defaulting to 8080 if not set.
func (c *ShowConfig) UIPort() int {
	if c.Network.UIPort == 0 {
		return 8080
	}
	return c.Network.UIPort
}

// HoldDuration returns the long-press duration.
func (c *ShowConfig) HoldDuration() time.Duration {
	return msOrDefault(c.Timing.HoldDurationMS, 5000)
}

// AutoAdvanceDelay returns the interlude auto-advance delay.
func (c *ShowConfig) AutoAdvanceDelay() time.Duration {
	return msOrDefault(c.Timing.AutoAdvanceMS, 5000)
}

// TypewriterCadence returns the per-rune playback cadence.
func (c *ShowConfig) TypewriterCadence() time.Duration {
	return msOrDefault(c.Timing.TypewriterCadenceMS, 50)
}

// GenerationTimeout bounds each outbound generation call.
func (c *ShowConfig) GenerationTimeout() time.Duration {
	return msOrDefault(c.Timing.GenerationTimeoutMS, 30000)
}

func msOrDefault(ms, def int) time.Duration {
	if ms <= 0 {
		ms = def
	}
	return time.Duration(ms) * time.Millisecond
}

// Default returns the stock Frostwalk experience: eight scenes, a 5 s
// hold, twelve artifacts (two revealed up front), seven phrases, and the
// two scene-7 reveal chains.
func Default() *ShowConfig {
	cfg := &ShowConfig{Version: 1}
	cfg.Show.ID = "frostwalk"
	cfg.Show.Name = "趁生命气息逗留"
	cfg.Show.Description = "An eight-scene interactive narrative after Zelazny's Frost."

	cfg.Timing.HoldDurationMS = 5000
	cfg.Timing.AutoAdvanceMS = 5000
	cfg.Timing.TypewriterCadenceMS = 50
	cfg.Timing.GenerationTimeoutMS = 30000

	cfg.Generation.ReplyModel = "gemini-2.0-flash"
	cfg.Generation.ImageModel = "gemini-2.0-flash-exp"
	cfg.Generation.Temperature = 0.8
	cfg.Generation.Instructions = "你是弗洛斯特，北半球的监控与重建机器。你对人类的遗物与“人是什么”这个问题怀有执念。用简短、克制、略带机械感的中文回答。"
	cfg.Generation.ImagePrompt = "A vast machine intelligence alone at the frozen North Pole, monochrome, snowfall, cinematic."

	cfg.Narrative.WorkingText = "弗洛斯特正在组织语言……"
	cfg.Narrative.FallbackText = "弗洛斯特沉默了片刻：人不能感知度量，而我只有度量。请再问一次。"
	cfg.Narrative.InitialRevealed = 2
	cfg.Narrative.Artifacts = []string{
		"十分原始的刀子",
		"雕刻的象牙",
		"几只破浴缸",
		"一批儿童故事实体书",
		"珠宝",
		"餐具",
		"完好的浴缸",
		"一部交响曲的片段章节",
		"十七颗纽扣",
		"三个皮带扣",
		"一座方尖碑的上半截",
		"半个马桶垫圈",
	}
	cfg.Narrative.Phrases = []string{
		"人创造了逻辑，因此高于逻辑",
		"人可以制造工具，但无法真正感知这些数值",
		"人感知的不是英寸、米、磅和加仑",
		"人只感到热，感到冷，感到轻重",
		"人不能感知度量",
		"人还懂得恨和爱、骄傲和绝望，这些事物是无法度量的",
		"人的感受是无法以公式计算的，情绪也没有换算因数",
	}

	cfg.Reveal.EntryChain = []RevealEntry{
		{Flag: "line_awakening", DelayMS: 0},
		{Flag: "line_measure", DelayMS: 3000},
		{Flag: "line_question", DelayMS: 6000},
		{Flag: "panel_prompt", DelayMS: 9000},
	}
	cfg.Reveal.AssetChain = []RevealEntry{
		{Flag: "portrait", DelayMS: 2000},
		{Flag: "voice", DelayMS: 5000},
		{Flag: "console", DelayMS: 6500},
	}

	return cfg
}

// LoadShowConfig reads a show.yaml from disk. Values omitted in the file
// fall back to Default through the accessor methods above; lists left empty
// are filled from the defaults so totals never collapse to zero.
func LoadShowConfig(path string) (*ShowConfig, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg ShowConfig
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, err
	}

	if cfg.Version != 1 {
		return nil, fmt.Errorf("unsupported show.yaml version: %d", cfg.Version)
	}

	def := Default()
	if len(cfg.Narrative.Artifacts) == 0 {
		cfg.Narrative.Artifacts = def.Narrative.Artifacts
	}
	if len(cfg.Narrative.Phrases) == 0 {
		cfg.Narrative.Phrases = def.Narrative.Phrases
	}
	if cfg.Narrative.InitialRevealed <= 0 {
		cfg.Narrative.InitialRevealed = def.Narrative.InitialRevealed
	}
	if cfg.Narrative.WorkingText == "" {
		cfg.Narrative.WorkingText = def.Narrative.WorkingText
	}
	if cfg.Narrative.FallbackText == "" {
		cfg.Narrative.FallbackText = def.Narrative.FallbackText
	}
	if len(cfg.Reveal.EntryChain) == 0 {
		cfg.Reveal.EntryChain = def.Reveal.EntryChain
	}
	if len(cfg.Reveal.AssetChain) == 0 {
		cfg.Reveal.AssetChain = def.Reveal.AssetChain
	}
	if cfg.Generation.ReplyModel == "" {
		cfg.Generation.ReplyModel = def.Generation.ReplyModel
	}
	if cfg.Generation.ImageModel == "" {
		cfg.Generation.ImageModel = def.Generation.ImageModel
	}
	if cfg.Generation.Temperature == 0 {
		cfg.Generation.Temperature = def.Generation.Temperature
	}
	if cfg.Generation.Instructions == "" {
		cfg.Generation.Instructions = def.Generation.Instructions
	}
	if cfg.Generation.ImagePrompt == "" {
		cfg.Generation.ImagePrompt = def.Generation.ImagePrompt
	}

	return &cfg, nil
}

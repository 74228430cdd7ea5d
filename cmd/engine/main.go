package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/lhwinter/frostwalk/internal/api"
	"github.com/lhwinter/frostwalk/internal/audio"
	"github.com/lhwinter/frostwalk/internal/config"
	"github.com/lhwinter/frostwalk/internal/engine"
	"github.com/lhwinter/frostwalk/internal/events"
	"github.com/lhwinter/frostwalk/internal/genai"
	"github.com/lhwinter/frostwalk/internal/mqtt"
	"github.com/lhwinter/frostwalk/internal/storage/postgres"
	"github.com/lhwinter/frostwalk/internal/version"
)

const defaultShowPath = "shows/frostwalk/show.yaml"

func main() {
	initLogging()

	cfg := loadConfig()

	api.InitAuth()
	api.InitTLS()
	api.InitMetrics()
	api.InitAlerts()
	api.SetShowName(cfg.Show.ID)

	pg := connectPostgres(cfg)
	mqttClient := connectMQTT()

	player := buildAudio()
	gen := buildGenerator(cfg)

	eng, err := engine.New(settingsFromConfig(cfg), nil, gen, player)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build engine")
	}

	api.SetEngine(eng)
	api.SetEngineReady(true)

	var cues *mqtt.CueRouter
	if mqttClient != nil {
		cues = mqtt.NewCueRouter(mqttClient, log.Logger)
		cues.Start()

		inputs := mqtt.NewInputBridge(mqttClient, eng, log.Logger)
		if err := inputs.Start(); err != nil {
			log.Warn().Err(err).Msg("panel input subscription failed")
		}
	}

	watchGenerationHealth()
	watchConnections(mqttClient, pg)
	api.StartAlertMonitor(15 * time.Second)

	hostname, _ := os.Hostname()
	events.Emit("info", "system.startup", "engine starting", map[string]interface{}{
		"show":     cfg.Show.ID,
		"version":  version.Version,
		"hostname": hostname,
		"pid":      os.Getpid(),
	})

	api.Start(cfg.UIPort())

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	events.Emit("info", "system.shutdown", "engine stopping", nil)
	eng.Close()
	if cues != nil {
		cues.Stop()
	}
	if mqttClient != nil {
		mqttClient.Disconnect()
	}
	if pg != nil {
		pg.Close()
	}
}

func initLogging() {
	zerolog.TimeFieldFormat = time.RFC3339Nano
	level := zerolog.InfoLevel
	if lvl := os.Getenv("FROSTWALK_LOG_LEVEL"); lvl != "" {
		if parsed, err := zerolog.ParseLevel(lvl); err == nil {
			level = parsed
		}
	}
	log.Logger = zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()
}

func loadConfig() *config.ShowConfig {
	path := os.Getenv("FROSTWALK_SHOW_CONFIG")
	if path == "" {
		path = defaultShowPath
	}
	if len(os.Args) > 1 {
		path = os.Args[1]
	}

	cfg, err := config.LoadShowConfig(path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Warn().Str("path", path).Msg("show.yaml not found, using built-in defaults")
			return config.Default()
		}
		log.Fatal().Err(err).Str("path", path).Msg("failed to load show.yaml")
	}
	log.Info().Str("path", path).Str("show", cfg.Show.ID).Msg("show config loaded")
	return cfg
}

func connectPostgres(cfg *config.ShowConfig) *postgres.Client {
	pg, err := postgres.New(cfg.Show.ID)
	if err != nil {
		log.Warn().Err(err).Msg("postgres unavailable, events stay in memory only")
		api.SetPostgresState(false, true)
		return nil
	}
	events.SetPostgresClient(pg)
	api.SetPostgresState(true, false)
	log.Info().Msg("postgres event log connected")
	return pg
}

func connectMQTT() *mqtt.Client {
	client := mqtt.NewClient("frostwalk-engine")
	if err := client.Connect(); err != nil {
		log.Warn().Err(err).Msg("mqtt broker unavailable, show-control cues disabled")
		api.SetMQTTState(false, true)
		return nil
	}
	api.SetMQTTState(true, false)
	log.Info().Str("broker", mqtt.BrokerURL()).Msg("show-control bus connected")
	return client
}

func buildAudio() engine.AudioPlayer {
	if os.Getenv("FROSTWALK_DISABLE_AUDIO") != "" {
		return audio.Nop{}
	}
	return audio.NewAmbient(log.Logger)
}

func buildGenerator(cfg *config.ShowConfig) engine.Generator {
	apiKey, err := config.ResolveSecret("GEMINI_API_KEY")
	if err != nil {
		log.Fatal().Err(err).Msg("failed to resolve GEMINI_API_KEY")
	}
	if apiKey == "" {
		log.Warn().Msg("GEMINI_API_KEY not set, replies use the fallback text")
		return nil
	}
	return genai.NewClient(genai.Config{
		APIKey:     apiKey,
		BaseURL:    os.Getenv("FROSTWALK_GENAI_URL"),
		ReplyModel: cfg.Generation.ReplyModel,
		ImageModel: cfg.Generation.ImageModel,
		Logger:     log.Logger,
	})
}

func settingsFromConfig(cfg *config.ShowConfig) engine.Settings {
	s := engine.DefaultSettings()
	s.HoldDuration = cfg.HoldDuration()
	s.AutoAdvanceDelay = cfg.AutoAdvanceDelay()
	s.Cadence = cfg.TypewriterCadence()
	s.GenerationTimeout = cfg.GenerationTimeout()
	s.ArtifactTotal = len(cfg.Narrative.Artifacts)
	s.ArtifactInitial = cfg.Narrative.InitialRevealed
	s.PhraseTotal = len(cfg.Narrative.Phrases)
	s.EntryChain = revealSteps(cfg.Reveal.EntryChain)
	s.AssetChain = revealSteps(cfg.Reveal.AssetChain)
	s.WorkingText = cfg.Narrative.WorkingText
	s.FallbackText = cfg.Narrative.FallbackText
	s.Instructions = cfg.Generation.Instructions
	s.Temperature = cfg.Generation.Temperature
	s.ImagePrompt = cfg.Generation.ImagePrompt
	return s
}

func revealSteps(entries []config.RevealEntry) []engine.RevealStep {
	steps := make([]engine.RevealStep, 0, len(entries))
	for _, e := range entries {
		steps = append(steps, engine.RevealStep{
			Flag:  e.Flag,
			Delay: time.Duration(e.DelayMS) * time.Millisecond,
		})
	}
	return steps
}

// watchGenerationHealth feeds reply generation outcomes into the alerting
// streak counters.
func watchGenerationHealth() {
	sub := events.Subscribe()
	go func() {
		for e := range sub {
			switch e.Name {
			case "generation.failed":
				api.RecordGenerationFailure()
			case "generation.succeeded":
				api.RecordGenerationSuccess()
			}
		}
	}()
}

// watchConnections refreshes readiness state so /ready and the alert
// monitor see broker or database drops after startup.
func watchConnections(mqttClient *mqtt.Client, pg *postgres.Client) {
	go func() {
		ticker := time.NewTicker(10 * time.Second)
		defer ticker.Stop()
		for range ticker.C {
			if mqttClient != nil {
				api.SetMQTTState(mqttClient.IsConnected(), false)
			}
			if pg != nil {
				api.SetPostgresState(pg.Ping() == nil, false)
			}
		}
	}()
}

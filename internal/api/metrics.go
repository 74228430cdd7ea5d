package api

import (
	"fmt"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/lhwinter/frostwalk/internal/events"
	"github.com/lhwinter/frostwalk/internal/version"
)

var metricsState = &MetricsState{}

// MetricsState holds runtime metrics for the /metrics endpoint.
type MetricsState struct {
	mu        sync.RWMutex
	startTime time.Time
	showName  string
}

// InitMetrics initializes the metrics system. Must be called at startup.
func InitMetrics() {
	metricsState.mu.Lock()
	defer metricsState.mu.Unlock()
	metricsState.startTime = time.Now()
}

// SetShowName sets the show name for metrics labels.
func SetShowName(name string) {
	metricsState.mu.Lock()
	defer metricsState.mu.Unlock()
	metricsState.showName = name
}

// GetShowName returns the current show name.
func GetShowName() string {
	metricsState.mu.RLock()
	defer metricsState.mu.RUnlock()
	return metricsState.showName
}

// metricsHandler returns Prometheus-compatible metrics in text format.
func metricsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	metricsState.mu.RLock()
	startTime := metricsState.startTime
	showName := metricsState.showName
	metricsState.mu.RUnlock()

	uptime := time.Since(startTime).Seconds()
	eventsTotal := events.TotalCount()

	readiness.mu.RLock()
	engineReady := readiness.engineReady
	mqttConnected := readiness.mqttConnected
	postgresConnected := readiness.postgresConnected
	readiness.mu.RUnlock()

	wsClients := events.SubscriberCount()

	engineReadyVal := 0
	if engineReady {
		engineReadyVal = 1
	}

	mqttConnectedVal := 0
	if mqttConnected {
		mqttConnectedVal = 1
	}

	postgresConnectedVal := 0
	if postgresConnected {
		postgresConnectedVal = 1
	}

	scene := 0
	artifactsShown := 0
	phrasesDismissed := 0
	if controller != nil {
		snap := controller.Snapshot()
		scene = snap.Scene
		artifactsShown = snap.ArtifactsShown
		phrasesDismissed = len(snap.PhrasesDismissed)
	}

	hostname, _ := os.Hostname()
	if hostname == "" {
		hostname = "unknown"
	}

	w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")

	writeMetric := func(name, mtype, help string, value interface{}, labels string) {
		fmt.Fprintf(w, "# HELP %s %s\n", name, help)
		fmt.Fprintf(w, "# TYPE %s %s\n", name, mtype)
		if labels != "" {
			fmt.Fprintf(w, "%s{%s} %v\n", name, labels, value)
		} else {
			fmt.Fprintf(w, "%s %v\n", name, value)
		}
	}

	labels := fmt.Sprintf(`show="%s",instance="%s",version="%s"`, showName, hostname, version.Version)

	writeMetric("frostwalk_uptime_seconds", "gauge",
		"Number of seconds since the engine started", uptime, labels)

	writeMetric("frostwalk_engine_ready", "gauge",
		"Whether the engine is serving a session (1) or not (0)", engineReadyVal, labels)

	writeMetric("frostwalk_scene", "gauge",
		"Active scene number", scene, labels)

	writeMetric("frostwalk_artifacts_shown", "gauge",
		"Artifacts revealed in the current session", artifactsShown, labels)

	writeMetric("frostwalk_phrases_dismissed", "gauge",
		"Phrases dismissed in the current session", phrasesDismissed, labels)

	writeMetric("frostwalk_events_total", "counter",
		"Total number of events emitted since startup", eventsTotal, labels)

	writeMetric("frostwalk_mqtt_connected", "gauge",
		"Whether the show-control broker is connected (1) or not (0)", mqttConnectedVal, labels)

	writeMetric("frostwalk_postgres_connected", "gauge",
		"Whether PostgreSQL is connected (1) or not (0)", postgresConnectedVal, labels)

	writeMetric("frostwalk_ws_clients", "gauge",
		"Number of active WebSocket client connections", wsClients, labels)
}

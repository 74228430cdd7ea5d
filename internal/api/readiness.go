package api

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"
)

// readiness tracks the state of the engine and its backing services for
// the /ready endpoint. MQTT and Postgres can be marked optional so a
// headless bench setup still reports ready.
var readiness = &readinessState{}

type readinessState struct {
	mu                sync.RWMutex
	engineReady       bool
	mqttConnected     bool
	mqttOptional      bool
	postgresConnected bool
	postgresOptional  bool
}

// SetEngineReady marks the engine as loaded and serving.
func SetEngineReady(ready bool) {
	readiness.mu.Lock()
	defer readiness.mu.Unlock()
	readiness.engineReady = ready
}

// SetMQTTState records broker connectivity. optional means a missing
// broker does not fail readiness.
func SetMQTTState(connected, optional bool) {
	readiness.mu.Lock()
	defer readiness.mu.Unlock()
	readiness.mqttConnected = connected
	readiness.mqttOptional = optional
}

// SetPostgresState records event-log connectivity.
func SetPostgresState(connected, optional bool) {
	readiness.mu.Lock()
	defer readiness.mu.Unlock()
	readiness.postgresConnected = connected
	readiness.postgresOptional = optional
}

// ReadyCheck reports one dependency's status.
type ReadyCheck struct {
	Status string `json:"status"`
}

// ReadinessResponse is the /ready payload.
type ReadinessResponse struct {
	Ready       bool                  `json:"ready"`
	Checks      map[string]ReadyCheck `json:"checks"`
	NotReadyMsg string                `json:"message,omitempty"`
}

func readyHandler(w http.ResponseWriter, r *http.Request) {
	readiness.mu.RLock()
	engineReady := readiness.engineReady
	mqttConnected := readiness.mqttConnected
	mqttOptional := readiness.mqttOptional
	postgresConnected := readiness.postgresConnected
	postgresOptional := readiness.postgresOptional
	readiness.mu.RUnlock()

	checks := make(map[string]ReadyCheck)
	var failures []string

	if engineReady {
		checks["engine"] = ReadyCheck{Status: "ok"}
	} else {
		checks["engine"] = ReadyCheck{Status: "not_ready"}
		failures = append(failures, "engine not ready")
	}

	switch {
	case mqttConnected:
		checks["mqtt"] = ReadyCheck{Status: "ok"}
	case mqttOptional:
		checks["mqtt"] = ReadyCheck{Status: "optional_unavailable"}
	default:
		checks["mqtt"] = ReadyCheck{Status: "unavailable"}
		failures = append(failures, "mqtt disconnected")
	}

	switch {
	case postgresConnected:
		checks["postgres"] = ReadyCheck{Status: "ok"}
	case postgresOptional:
		checks["postgres"] = ReadyCheck{Status: "optional_unavailable"}
	default:
		checks["postgres"] = ReadyCheck{Status: "unavailable"}
		failures = append(failures, "postgres unavailable")
	}

	resp := ReadinessResponse{
		Ready:  len(failures) == 0,
		Checks: checks,
	}
	if !resp.Ready {
		resp.NotReadyMsg = strings.Join(failures, "; ")
	}

	w.Header().Set("Content-Type", "application/json")
	if !resp.Ready {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	_ = json.NewEncoder(w).Encode(resp)
}

// Package api exposes the engine over HTTP: session endpoints for the
// installation's touch surface, operator endpoints, the live event stream
// and Prometheus metrics.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/lhwinter/frostwalk/internal/engine"
	"github.com/lhwinter/frostwalk/internal/events"
)

// SessionController is the engine surface the HTTP layer drives.
type SessionController interface {
	Snapshot() engine.Snapshot
	Trigger(engine.Trigger) bool
	PressStart()
	PressEnd()
	AdvanceArtifact()
	DismissPhrase(index int)
	SubmitReply(text string) error
	Reset()
}

var controller SessionController

// SetEngine sets the engine driven by the session endpoints.
func SetEngine(c SessionController) {
	controller = c
}

type HealthResponse struct {
	Status    string `json:"status"`
	Service   string `json:"service"`
	Hostname  string `json:"hostname"`
	Timestamp string `json:"ts"`
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	host, _ := os.Hostname()
	resp := HealthResponse{
		Status:    "ok",
		Service:   "frostwalk",
		Hostname:  host,
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func eventsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(events.Snapshot())
}

// eventsHistoryHandler serves the durable event log. Only available when
// Postgres is wired; the in-memory ring is on /events either way.
func eventsHistoryHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	pg := events.GetPostgresClient()
	if pg == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		_ = json.NewEncoder(w).Encode(SessionResponse{OK: false, Error: "event history unavailable"})
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	rows, err := pg.Query(limit)
	if err != nil {
		log.Warn().Err(err).Msg("event history query failed")
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(SessionResponse{OK: false, Error: "query failed"})
		return
	}
	_ = json.NewEncoder(w).Encode(rows)
}

func stateHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if controller == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		_ = json.NewEncoder(w).Encode(SessionResponse{OK: false, Error: "engine not ready"})
		return
	}
	_ = json.NewEncoder(w).Encode(controller.Snapshot())
}

// TriggerRequest names a transition to attempt.
type TriggerRequest struct {
	Trigger string `json:"trigger"`
}

// DismissRequest names a phrase by its zero-based index.
type DismissRequest struct {
	Index int `json:"index"`
}

// ReplyRequest carries visitor input for the dialogue scene.
type ReplyRequest struct {
	Text string `json:"text"`
}

type SessionResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// requirePost handles method and controller checks shared by every
// session endpoint. Returns false if the request was already answered.
func requirePost(w http.ResponseWriter, r *http.Request) bool {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		_ = json.NewEncoder(w).Encode(SessionResponse{OK: false, Error: "method not allowed"})
		return false
	}
	if controller == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		_ = json.NewEncoder(w).Encode(SessionResponse{OK: false, Error: "engine not ready"})
		return false
	}
	return true
}

func triggerHandler(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}

	var req TriggerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(SessionResponse{OK: false, Error: "invalid JSON"})
		return
	}
	if req.Trigger == "" {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(SessionResponse{OK: false, Error: "trigger required"})
		return
	}

	if !controller.Trigger(engine.Trigger(req.Trigger)) {
		w.WriteHeader(http.StatusConflict)
		_ = json.NewEncoder(w).Encode(SessionResponse{OK: false, Error: "transition rejected"})
		return
	}
	_ = json.NewEncoder(w).Encode(SessionResponse{OK: true})
}

func pressStartHandler(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	controller.PressStart()
	_ = json.NewEncoder(w).Encode(SessionResponse{OK: true})
}

func pressEndHandler(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	controller.PressEnd()
	_ = json.NewEncoder(w).Encode(SessionResponse{OK: true})
}

func artifactAdvanceHandler(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	controller.AdvanceArtifact()
	_ = json.NewEncoder(w).Encode(SessionResponse{OK: true})
}

func phraseDismissHandler(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}

	var req DismissRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(SessionResponse{OK: false, Error: "invalid JSON"})
		return
	}

	controller.DismissPhrase(req.Index)
	_ = json.NewEncoder(w).Encode(SessionResponse{OK: true})
}

func replyHandler(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}

	var req ReplyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(SessionResponse{OK: false, Error: "invalid JSON"})
		return
	}

	if err := controller.SubmitReply(req.Text); err != nil {
		status := http.StatusConflict
		if errors.Is(err, engine.ErrEmptyPrompt) {
			status = http.StatusBadRequest
		}
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(SessionResponse{OK: false, Error: err.Error()})
		return
	}
	_ = json.NewEncoder(w).Encode(SessionResponse{OK: true})
}

func operatorResetHandler(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}

	events.Emit("info", "operator.reset", "", nil)
	controller.Reset()
	_ = json.NewEncoder(w).Encode(SessionResponse{OK: true})
}

// ListenAndServe starts the API server on the given port.
// It blocks until the server exits.
func ListenAndServe(port int) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/", uiHandler)
	mux.HandleFunc("/health", healthHandler)
	mux.HandleFunc("/ready", readyHandler)
	mux.HandleFunc("/metrics", metricsHandler)
	mux.HandleFunc("/events", RequireAnyRole(eventsHandler))
	mux.HandleFunc("/events/history", RequireAnyRole(eventsHistoryHandler))
	mux.HandleFunc("/ws/events", wsEventsHandler)
	mux.HandleFunc("/state", RequireAnyRole(stateHandler))
	mux.HandleFunc("/session/trigger", RequireAnyRole(triggerHandler))
	mux.HandleFunc("/session/press/start", RequireAnyRole(pressStartHandler))
	mux.HandleFunc("/session/press/end", RequireAnyRole(pressEndHandler))
	mux.HandleFunc("/session/artifacts/advance", RequireAnyRole(artifactAdvanceHandler))
	mux.HandleFunc("/session/phrases/dismiss", RequireAnyRole(phraseDismissHandler))
	mux.HandleFunc("/session/reply", RequireAnyRole(replyHandler))
	mux.HandleFunc("/operator/reset", RequireAnyRole(operatorResetHandler))

	addr := fmt.Sprintf(":%d", port)
	srv := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	if cfg := LoadTLSConfig(); cfg != nil {
		srv.TLSConfig = cfg
		log.Info().Str("addr", addr).Msg("api listening (tls)")
		return srv.ListenAndServeTLS("", "")
	}

	log.Info().Str("addr", addr).Msg("api listening")
	return srv.ListenAndServe()
}

// Start starts the API server in a goroutine.
// Errors are logged but do not stop the caller.
func Start(port int) {
	go func() {
		if err := ListenAndServe(port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("api server error")
		}
	}()
}

package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/lhwinter/frostwalk/internal/engine"
	"github.com/lhwinter/frostwalk/internal/events"
)

// fakeController records the operations the handlers invoke.
type fakeController struct {
	snap        engine.Snapshot
	triggerOK   bool
	lastTrigger engine.Trigger
	pressStarts int
	pressEnds   int
	advances    int
	dismissed   []int
	lastReply   string
	replyErr    error
	resets      int
}

func (f *fakeController) Snapshot() engine.Snapshot        { return f.snap }
func (f *fakeController) Trigger(tr engine.Trigger) bool   { f.lastTrigger = tr; return f.triggerOK }
func (f *fakeController) PressStart()                      { f.pressStarts++ }
func (f *fakeController) PressEnd()                        { f.pressEnds++ }
func (f *fakeController) AdvanceArtifact()                 { f.advances++ }
func (f *fakeController) DismissPhrase(i int)              { f.dismissed = append(f.dismissed, i) }
func (f *fakeController) SubmitReply(text string) error    { f.lastReply = text; return f.replyErr }
func (f *fakeController) Reset()                           { f.resets++ }

func withController(t *testing.T, f *fakeController) {
	t.Helper()
	prev := controller
	controller = f
	t.Cleanup(func() { controller = prev })
}

func decodeSession(t *testing.T, w *httptest.ResponseRecorder) SessionResponse {
	t.Helper()
	var resp SessionResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp
}

func TestHealthEndpoint(t *testing.T) {
	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()

	healthHandler(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}

	var resp HealthResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if resp.Status != "ok" {
		t.Errorf("expected status 'ok', got '%s'", resp.Status)
	}
	if resp.Service != "frostwalk" {
		t.Errorf("expected service 'frostwalk', got '%s'", resp.Service)
	}
}

func TestStateEndpoint(t *testing.T) {
	withController(t, &fakeController{snap: engine.Snapshot{Scene: 3, ArtifactsTotal: 12}})

	req := httptest.NewRequest("GET", "/state", nil)
	w := httptest.NewRecorder()

	stateHandler(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	var snap engine.Snapshot
	if err := json.NewDecoder(w.Body).Decode(&snap); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	if snap.Scene != 3 || snap.ArtifactsTotal != 12 {
		t.Errorf("unexpected snapshot: %+v", snap)
	}
}

func TestStateEndpointWithoutEngine(t *testing.T) {
	prev := controller
	controller = nil
	defer func() { controller = prev }()

	req := httptest.NewRequest("GET", "/state", nil)
	w := httptest.NewRecorder()

	stateHandler(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected status 503, got %d", w.Code)
	}
}

func TestTriggerEndpoint(t *testing.T) {
	f := &fakeController{triggerOK: true}
	withController(t, f)

	req := httptest.NewRequest("POST", "/session/trigger", strings.NewReader(`{"trigger":"begin"}`))
	w := httptest.NewRecorder()

	triggerHandler(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}
	if !decodeSession(t, w).OK {
		t.Error("expected ok response")
	}
	if f.lastTrigger != engine.TriggerBegin {
		t.Errorf("expected begin trigger, got %q", f.lastTrigger)
	}
}

func TestTriggerEndpointRejected(t *testing.T) {
	withController(t, &fakeController{triggerOK: false})

	req := httptest.NewRequest("POST", "/session/trigger", strings.NewReader(`{"trigger":"converse"}`))
	w := httptest.NewRecorder()

	triggerHandler(w, req)

	if w.Code != http.StatusConflict {
		t.Errorf("expected status 409, got %d", w.Code)
	}
	if decodeSession(t, w).OK {
		t.Error("expected error response")
	}
}

func TestTriggerEndpointValidation(t *testing.T) {
	withController(t, &fakeController{triggerOK: true})

	// Wrong method
	req := httptest.NewRequest("GET", "/session/trigger", nil)
	w := httptest.NewRecorder()
	triggerHandler(w, req)
	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected 405 for GET, got %d", w.Code)
	}

	// Malformed body
	req = httptest.NewRequest("POST", "/session/trigger", strings.NewReader("{bad json"))
	w = httptest.NewRecorder()
	triggerHandler(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for bad JSON, got %d", w.Code)
	}

	// Missing trigger
	req = httptest.NewRequest("POST", "/session/trigger", strings.NewReader(`{}`))
	w = httptest.NewRecorder()
	triggerHandler(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for empty trigger, got %d", w.Code)
	}
}

func TestPressEndpoints(t *testing.T) {
	f := &fakeController{}
	withController(t, f)

	w := httptest.NewRecorder()
	pressStartHandler(w, httptest.NewRequest("POST", "/session/press/start", nil))
	if w.Code != http.StatusOK {
		t.Errorf("press start: expected 200, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	pressEndHandler(w, httptest.NewRequest("POST", "/session/press/end", nil))
	if w.Code != http.StatusOK {
		t.Errorf("press end: expected 200, got %d", w.Code)
	}

	if f.pressStarts != 1 || f.pressEnds != 1 {
		t.Errorf("expected one start and one end, got %d/%d", f.pressStarts, f.pressEnds)
	}
}

func TestPhraseDismissEndpoint(t *testing.T) {
	f := &fakeController{}
	withController(t, f)

	req := httptest.NewRequest("POST", "/session/phrases/dismiss", strings.NewReader(`{"index":4}`))
	w := httptest.NewRecorder()

	phraseDismissHandler(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}
	if len(f.dismissed) != 1 || f.dismissed[0] != 4 {
		t.Errorf("expected dismissal of index 4, got %v", f.dismissed)
	}
}

func TestReplyEndpoint(t *testing.T) {
	f := &fakeController{}
	withController(t, f)

	req := httptest.NewRequest("POST", "/session/reply", strings.NewReader(`{"text":"你是什么？"}`))
	w := httptest.NewRecorder()

	replyHandler(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}
	if f.lastReply != "你是什么？" {
		t.Errorf("expected prompt forwarded, got %q", f.lastReply)
	}
}

func TestReplyEndpointErrorMapping(t *testing.T) {
	// Empty prompt maps to 400.
	withController(t, &fakeController{replyErr: engine.ErrEmptyPrompt})
	req := httptest.NewRequest("POST", "/session/reply", strings.NewReader(`{"text":""}`))
	w := httptest.NewRecorder()
	replyHandler(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for empty prompt, got %d", w.Code)
	}

	// Busy maps to 409.
	withController(t, &fakeController{replyErr: engine.ErrReplyBusy})
	req = httptest.NewRequest("POST", "/session/reply", strings.NewReader(`{"text":"hi"}`))
	w = httptest.NewRecorder()
	replyHandler(w, req)
	if w.Code != http.StatusConflict {
		t.Errorf("expected 409 for busy reply, got %d", w.Code)
	}

	// Wrong scene maps to 409.
	withController(t, &fakeController{replyErr: engine.ErrDialogueInactive})
	req = httptest.NewRequest("POST", "/session/reply", strings.NewReader(`{"text":"hi"}`))
	w = httptest.NewRecorder()
	replyHandler(w, req)
	if w.Code != http.StatusConflict {
		t.Errorf("expected 409 outside dialogue, got %d", w.Code)
	}
}

func TestOperatorResetEndpoint(t *testing.T) {
	events.Clear()
	f := &fakeController{}
	withController(t, f)

	req := httptest.NewRequest("POST", "/operator/reset", strings.NewReader(`{}`))
	w := httptest.NewRecorder()

	operatorResetHandler(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}
	if f.resets != 1 {
		t.Errorf("expected one reset call, got %d", f.resets)
	}

	found := false
	for _, e := range events.Snapshot() {
		if e.Name == "operator.reset" {
			found = true
		}
	}
	if !found {
		t.Error("expected operator.reset event")
	}
}

func TestEventsHistoryWithoutPostgres(t *testing.T) {
	req := httptest.NewRequest("GET", "/events/history", nil)
	w := httptest.NewRecorder()

	eventsHistoryHandler(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected status 503 without a database, got %d", w.Code)
	}
}

func setReadiness(engineReady, mqttConn, mqttOpt, pgConn, pgOpt bool) {
	readiness.mu.Lock()
	readiness.engineReady = engineReady
	readiness.mqttConnected = mqttConn
	readiness.mqttOptional = mqttOpt
	readiness.postgresConnected = pgConn
	readiness.postgresOptional = pgOpt
	readiness.mu.Unlock()
}

func TestReadyEndpoint_AllReady(t *testing.T) {
	setReadiness(true, true, false, true, false)

	req := httptest.NewRequest("GET", "/ready", nil)
	w := httptest.NewRecorder()

	readyHandler(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}

	var resp ReadinessResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if !resp.Ready {
		t.Error("expected ready=true")
	}
	if resp.Checks["engine"].Status != "ok" {
		t.Errorf("expected engine status 'ok', got '%s'", resp.Checks["engine"].Status)
	}
	if resp.Checks["mqtt"].Status != "ok" {
		t.Errorf("expected mqtt status 'ok', got '%s'", resp.Checks["mqtt"].Status)
	}
	if resp.Checks["postgres"].Status != "ok" {
		t.Errorf("expected postgres status 'ok', got '%s'", resp.Checks["postgres"].Status)
	}
}

func TestReadyEndpoint_EngineNotReady(t *testing.T) {
	setReadiness(false, true, false, true, false)

	req := httptest.NewRequest("GET", "/ready", nil)
	w := httptest.NewRecorder()

	readyHandler(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected status 503, got %d", w.Code)
	}

	var resp ReadinessResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if resp.Ready {
		t.Error("expected ready=false")
	}
	if resp.Checks["engine"].Status != "not_ready" {
		t.Errorf("expected engine status 'not_ready', got '%s'", resp.Checks["engine"].Status)
	}
	if resp.NotReadyMsg == "" {
		t.Error("expected non-empty message")
	}
}

func TestReadyEndpoint_OptionalMQTTUnavailable(t *testing.T) {
	setReadiness(true, false, true, true, false)

	req := httptest.NewRequest("GET", "/ready", nil)
	w := httptest.NewRecorder()

	readyHandler(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status 200 with optional mqtt down, got %d", w.Code)
	}
}

func TestReadyEndpoint_RequiredMQTTUnavailable(t *testing.T) {
	setReadiness(true, false, false, true, false)

	req := httptest.NewRequest("GET", "/ready", nil)
	w := httptest.NewRecorder()

	readyHandler(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected status 503 with required mqtt down, got %d", w.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	InitMetrics()
	SetShowName("frostwalk")
	setReadiness(true, true, false, false, true)
	withController(t, &fakeController{snap: engine.Snapshot{Scene: 7, ArtifactsShown: 5}})

	req := httptest.NewRequest("GET", "/metrics", nil)
	w := httptest.NewRecorder()

	metricsHandler(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	body := w.Body.String()
	for _, metric := range []string{
		"frostwalk_uptime_seconds",
		"frostwalk_engine_ready",
		"frostwalk_scene",
		"frostwalk_artifacts_shown",
		"frostwalk_events_total",
		"frostwalk_mqtt_connected",
		"frostwalk_postgres_connected",
		"frostwalk_ws_clients",
	} {
		if !strings.Contains(body, metric) {
			t.Errorf("metrics output missing %s", metric)
		}
	}
	if !strings.Contains(body, `show="frostwalk"`) {
		t.Error("metrics output missing show label")
	}
}

func TestMetricsEndpointRejectsPost(t *testing.T) {
	req := httptest.NewRequest("POST", "/metrics", nil)
	w := httptest.NewRecorder()

	metricsHandler(w, req)

	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected status 405, got %d", w.Code)
	}
}

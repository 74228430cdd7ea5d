package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Alert severity levels
const (
	SeverityCritical = "critical"
	SeverityWarning  = "warning"
	SeverityInfo     = "info"
)

// Alert event types
const (
	AlertMQTTDisconnected    = "mqtt_disconnected"
	AlertPostgresUnavailable = "postgres_unavailable"
	AlertGenerationFailing   = "generation_failing"
)

// generationFailureThreshold is how many consecutive reply failures
// trip the generation alert. The dialogue scene falls back to canned
// text, so a single failure is not actionable.
const generationFailureThreshold = 3

// AlertPayload is the JSON structure sent to the webhook.
type AlertPayload struct {
	ShowName  string                 `json:"show_name"`
	Event     string                 `json:"event"`
	Timestamp string                 `json:"timestamp"`
	Severity  string                 `json:"severity"`
	Message   string                 `json:"message,omitempty"`
	Details   map[string]interface{} `json:"details,omitempty"`
}

// AlertConfig holds alert configuration.
type AlertConfig struct {
	WebhookURL              string
	MQTTDisconnectDelay     time.Duration
	PostgresDisconnectDelay time.Duration
}

var (
	alertConfig = &AlertConfig{
		MQTTDisconnectDelay:     30 * time.Second,
		PostgresDisconnectDelay: 5 * time.Second,
	}
	alertMu sync.Mutex

	// Track connection state for alerting
	mqttDisconnectedSince   time.Time
	mqttAlertSent           bool
	postgresDisconnectedAt  time.Time
	postgresAlertSent       bool
	lastKnownMQTTState      bool
	lastKnownPostgresState  bool
	generationFailureStreak int
	generationAlertSent     bool
	alertMonitorInitialized bool
)

// InitAlerts initializes the alert system from environment variables.
func InitAlerts() {
	alertMu.Lock()
	defer alertMu.Unlock()

	alertConfig.WebhookURL = os.Getenv("FROSTWALK_ALERT_WEBHOOK_URL")

	if delayStr := os.Getenv("FROSTWALK_MQTT_ALERT_DELAY"); delayStr != "" {
		if d, err := time.ParseDuration(delayStr); err == nil {
			alertConfig.MQTTDisconnectDelay = d
		}
	}

	if delayStr := os.Getenv("FROSTWALK_POSTGRES_ALERT_DELAY"); delayStr != "" {
		if d, err := time.ParseDuration(delayStr); err == nil {
			alertConfig.PostgresDisconnectDelay = d
		}
	}

	if alertConfig.WebhookURL != "" {
		log.Info().
			Dur("mqtt_delay", alertConfig.MQTTDisconnectDelay).
			Dur("pg_delay", alertConfig.PostgresDisconnectDelay).
			Msg("alerts enabled, webhook URL configured")
	}

	// Assume connected at start so boot does not fire a stale alert.
	lastKnownMQTTState = true
	lastKnownPostgresState = true
	generationFailureStreak = 0
	generationAlertSent = false
	alertMonitorInitialized = true
}

// GetAlertWebhookURL returns the configured webhook URL (for testing).
func GetAlertWebhookURL() string {
	alertMu.Lock()
	defer alertMu.Unlock()
	return alertConfig.WebhookURL
}

// SendAlert sends an alert to the configured webhook (best-effort, non-blocking).
func SendAlert(event, severity, message string, details map[string]interface{}) {
	alertMu.Lock()
	webhookURL := alertConfig.WebhookURL
	alertMu.Unlock()

	if webhookURL == "" {
		log.Warn().
			Str("alert", event).
			Str("severity", severity).
			Str("message", message).
			Msg("alert (no webhook configured)")
		return
	}

	showName := GetShowName()
	if showName == "" {
		showName = "unknown"
	}

	payload := AlertPayload{
		ShowName:  showName,
		Event:     event,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Severity:  severity,
		Message:   message,
		Details:   details,
	}

	go sendWebhook(webhookURL, payload)
}

// sendWebhook performs the actual HTTP POST (runs in goroutine).
func sendWebhook(url string, payload AlertPayload) {
	body, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Msg("alert: failed to marshal payload")
		return
	}

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		log.Warn().Err(err).Msg("alert: webhook POST failed")
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		log.Warn().Int("status", resp.StatusCode).Msg("alert: webhook returned error status")
	}
}

// CheckAndAlertMQTT checks MQTT state and sends alert if disconnected too long.
// Should be called periodically or on state change.
func CheckAndAlertMQTT(connected bool) {
	alertMu.Lock()
	defer alertMu.Unlock()

	if !alertMonitorInitialized {
		return
	}

	now := time.Now()

	if connected {
		if !lastKnownMQTTState && mqttAlertSent {
			go SendAlert(AlertMQTTDisconnected, SeverityInfo, "MQTT connection restored", map[string]interface{}{
				"recovered_at": now.UTC().Format(time.RFC3339),
			})
		}
		mqttDisconnectedSince = time.Time{}
		mqttAlertSent = false
		lastKnownMQTTState = true
		return
	}

	if lastKnownMQTTState {
		mqttDisconnectedSince = now
	}
	lastKnownMQTTState = false

	if !mqttAlertSent && !mqttDisconnectedSince.IsZero() {
		disconnectedDuration := now.Sub(mqttDisconnectedSince)
		if disconnectedDuration >= alertConfig.MQTTDisconnectDelay {
			mqttAlertSent = true
			go SendAlert(AlertMQTTDisconnected, SeverityWarning,
				"MQTT broker disconnected",
				map[string]interface{}{
					"disconnected_since":   mqttDisconnectedSince.UTC().Format(time.RFC3339),
					"disconnected_seconds": int(disconnectedDuration.Seconds()),
				})
		}
	}
}

// CheckAndAlertPostgres checks Postgres state and sends alert if unavailable.
func CheckAndAlertPostgres(connected bool) {
	alertMu.Lock()
	defer alertMu.Unlock()

	if !alertMonitorInitialized {
		return
	}

	now := time.Now()

	if connected {
		if !lastKnownPostgresState && postgresAlertSent {
			go SendAlert(AlertPostgresUnavailable, SeverityInfo, "PostgreSQL connection restored", map[string]interface{}{
				"recovered_at": now.UTC().Format(time.RFC3339),
			})
		}
		postgresDisconnectedAt = time.Time{}
		postgresAlertSent = false
		lastKnownPostgresState = true
		return
	}

	if lastKnownPostgresState {
		postgresDisconnectedAt = now
	}
	lastKnownPostgresState = false

	if !postgresAlertSent && !postgresDisconnectedAt.IsZero() {
		disconnectedDuration := now.Sub(postgresDisconnectedAt)
		if disconnectedDuration >= alertConfig.PostgresDisconnectDelay {
			postgresAlertSent = true
			go SendAlert(AlertPostgresUnavailable, SeverityCritical,
				"PostgreSQL unavailable",
				map[string]interface{}{
					"disconnected_since":   postgresDisconnectedAt.UTC().Format(time.RFC3339),
					"disconnected_seconds": int(disconnectedDuration.Seconds()),
				})
		}
	}
}

// RecordGenerationFailure notes a failed reply generation. A streak of
// failures means visitors only ever see the fallback line, which is
// worth waking someone up for.
func RecordGenerationFailure() {
	alertMu.Lock()
	defer alertMu.Unlock()

	if !alertMonitorInitialized {
		return
	}

	generationFailureStreak++
	if generationFailureStreak >= generationFailureThreshold && !generationAlertSent {
		generationAlertSent = true
		go SendAlert(AlertGenerationFailing, SeverityWarning,
			"reply generation failing repeatedly",
			map[string]interface{}{
				"consecutive_failures": generationFailureStreak,
			})
	}
}

// RecordGenerationSuccess resets the failure streak.
func RecordGenerationSuccess() {
	alertMu.Lock()
	defer alertMu.Unlock()

	if !alertMonitorInitialized {
		return
	}

	if generationAlertSent {
		go SendAlert(AlertGenerationFailing, SeverityInfo, "reply generation recovered", nil)
	}
	generationFailureStreak = 0
	generationAlertSent = false
}

// StartAlertMonitor starts a background goroutine that periodically checks
// connection states against the alert delays.
func StartAlertMonitor(checkInterval time.Duration) {
	go func() {
		ticker := time.NewTicker(checkInterval)
		defer ticker.Stop()

		for range ticker.C {
			readiness.mu.RLock()
			mqttConnected := readiness.mqttConnected
			postgresConnected := readiness.postgresConnected
			readiness.mu.RUnlock()

			CheckAndAlertMQTT(mqttConnected)
			CheckAndAlertPostgres(postgresConnected)
		}
	}()
}

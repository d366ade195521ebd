package handlers

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/slack-go/slack"
	"github.com/slack-go/slack/slackevents"

	"alphatron/actions"
	"alphatron/appctx"
	"alphatron/features"
	"alphatron/models"
	"alphatron/services"
)

// Slack caps event payloads well below this.
const maxEventBodyBytes = 1 << 20

// ErrorReporter receives errors that are handled locally but worth an alert
type ErrorReporter interface {
	ReportError(err error, source string)
}

type SlackEventsHandler struct {
	signingSecret   string
	settingsService services.SettingsService
	registry        *features.Registry
	flushTimeout    time.Duration
	errorReporter   ErrorReporter
}

func NewSlackEventsHandler(
	signingSecret string,
	settingsService services.SettingsService,
	registry *features.Registry,
	flushTimeout time.Duration,
	errorReporter ErrorReporter,
) *SlackEventsHandler {
	return &SlackEventsHandler{
		signingSecret:   signingSecret,
		settingsService: settingsService,
		registry:        registry,
		flushTimeout:    flushTimeout,
		errorReporter:   errorReporter,
	}
}

// slackEnvelope is the outer payload of an Events API request. The inner
// event is decoded only once the request is authenticated.
type slackEnvelope struct {
	Token string          `json:"token"`
	Type  string          `json:"type"`
	Event json.RawMessage `json:"event"`
}

func (h *SlackEventsHandler) SetupEndpoints(router *mux.Router) {
	log.Printf("🚀 Registering Slack webhook endpoints")

	router.HandleFunc("/slack/events", h.HandleSlackEvent).Methods("POST")
	log.Printf("✅ POST /slack/events endpoint registered")
}

func (h *SlackEventsHandler) HandleSlackEvent(w http.ResponseWriter, r *http.Request) {
	requestID := appctx.GetRequestID(r.Context())
	log.Printf("📨 [%s] Slack event received from %s", requestID, r.RemoteAddr)

	bodyBytes, err := io.ReadAll(io.LimitReader(r.Body, maxEventBodyBytes))
	if err != nil {
		log.Printf("❌ [%s] Failed to read request body: %v", requestID, err)
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	if h.signingSecret != "" {
		if err := h.verifySlackSignature(r, bodyBytes); err != nil {
			log.Printf("❌ [%s] Slack signature verification failed: %v", requestID, err)
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
	}

	var envelope slackEnvelope
	if err := json.Unmarshal(bodyBytes, &envelope); err != nil {
		log.Printf("❌ [%s] Failed to parse JSON body: %v", requestID, err)
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	// Drop requests without the correct verification token.
	if !h.tokenMatches(envelope.Token) {
		log.Printf("❌ [%s] Verification token mismatch", requestID)
		w.WriteHeader(http.StatusForbidden)
		return
	}

	if envelope.Type != string(slackevents.CallbackEvent) {
		log.Printf("📋 [%s] Unsupported request type: %q", requestID, envelope.Type)
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	event, err := models.ParseEvent(envelope.Event)
	if err != nil {
		log.Printf("❌ [%s] Failed to parse event: %v", requestID, err)
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	log.Printf("📞 [%s] Event callback received: %s in channel %s", requestID, event.GetType(), event.GetChannel())
	h.dispatch(w, r, event)
}

// dispatch gives every feature a chance to react to event and blocks until
// the collected actions have been written to w.
func (h *SlackEventsHandler) dispatch(w http.ResponseWriter, r *http.Request, event models.Event) {
	ctx := r.Context()
	requestID := appctx.GetRequestID(ctx)

	snapshot := h.registry.Snapshot()
	actionSet := actions.NewActionSet(w, len(snapshot))

	for _, feature := range snapshot {
		h.invoke(ctx, feature, event, actionSet)
	}

	timer := time.NewTimer(h.flushTimeout)
	defer timer.Stop()

	select {
	case <-actionSet.Done():
		log.Printf("✅ [%s] All %d feature(s) ready", requestID, len(snapshot))
	case <-timer.C:
		if actionSet.Expire() {
			h.errorReporter.ReportError(
				fmt.Errorf("%d of %d feature(s) did not signal ready within %s", actionSet.Remaining(), len(snapshot), h.flushTimeout),
				"Slack event dispatch",
			)
		}
	case <-ctx.Done():
		// The writer must not be touched after this handler returns.
		if actionSet.Expire() {
			log.Printf("⚠️ [%s] Client went away before all features were ready: %v", requestID, ctx.Err())
		}
	}
}

// invoke runs a single feature. A feature that panics is counted as ready
// so the remaining features can still complete the response.
func (h *SlackEventsHandler) invoke(
	ctx context.Context,
	feature features.Feature,
	event models.Event,
	actionSet *actions.ActionSet,
) {
	defer func() {
		if rec := recover(); rec != nil {
			h.errorReporter.ReportError(
				fmt.Errorf("feature %s panicked: %v", feature.Name(), rec),
				"Slack event dispatch",
			)
			actionSet.Ready()
		}
	}()

	feature.OnEvent(ctx, event, actionSet)
}

func (h *SlackEventsHandler) tokenMatches(token string) bool {
	settings := h.settingsService.Current()
	if settings == nil || settings.Token == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(settings.Token)) == 1
}

// verifySlackSignature checks the X-Slack-Signature header against body
func (h *SlackEventsHandler) verifySlackSignature(r *http.Request, body []byte) error {
	verifier, err := slack.NewSecretsVerifier(r.Header, h.signingSecret)
	if err != nil {
		return fmt.Errorf("invalid signature headers: %w", err)
	}

	if _, err := verifier.Write(body); err != nil {
		return fmt.Errorf("failed to hash body: %w", err)
	}

	if err := verifier.Ensure(); err != nil {
		return fmt.Errorf("signature verification failed: %w", err)
	}

	return nil
}

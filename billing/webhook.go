package billing

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/stripe/stripe-go/v81/webhook"
)

// SignatureHeader carries the webhook signature.
const SignatureHeader = "Stripe-Signature"

const maxWebhookBody = 1 << 20

// Applier applies a decoded event to tenant state.
type Applier interface {
	ApplySubscriptionEvent(ctx context.Context, ev *Event) error
}

// WebhookHandler receives processor notifications over HTTP. Every event
// must carry a valid signature; without a secret nothing is applied.
type WebhookHandler struct {
	applier   Applier
	secret    string
	tolerance time.Duration
	logger    *slog.Logger
	status    func(error) int
}

// WebhookOption configures a WebhookHandler.
type WebhookOption func(*WebhookHandler)

// WithSecret sets the shared signing secret.
func WithSecret(secret string) WebhookOption {
	return func(h *WebhookHandler) { h.secret = secret }
}

// WithTolerance sets the maximum accepted signature age.
func WithTolerance(d time.Duration) WebhookOption {
	return func(h *WebhookHandler) { h.tolerance = d }
}

// WithWebhookLogger sets the logger.
func WithWebhookLogger(logger *slog.Logger) WebhookOption {
	return func(h *WebhookHandler) { h.logger = logger }
}

// WithErrorStatus maps apply errors to HTTP status codes. The default
// answers 500 so the processor retries.
func WithErrorStatus(fn func(error) int) WebhookOption {
	return func(h *WebhookHandler) { h.status = fn }
}

// NewWebhookHandler returns a handler applying events through a.
func NewWebhookHandler(a Applier, opts ...WebhookOption) *WebhookHandler {
	h := &WebhookHandler{
		applier:   a,
		tolerance: DefaultTolerance,
		logger:    slog.Default(),
		status:    func(error) int { return http.StatusInternalServerError },
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Configured reports whether a signing secret is set.
func (h *WebhookHandler) Configured() bool { return h.secret != "" }

func (h *WebhookHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !h.Configured() {
		h.logger.Error("billing webhook refused", "error", ErrNoSecret)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": ErrNoSecret.Error()})
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unreadable body"})
		return
	}

	ev, err := ConstructEvent(body, r.Header.Get(SignatureHeader), h.secret, h.tolerance)
	switch {
	case errors.Is(err, ErrInvalidSignature):
		h.logger.Warn("billing webhook rejected", "error", err)
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	case errors.Is(err, ErrIgnoredEvent):
		h.logger.Debug("billing webhook ignored", "error", err)
		writeJSON(w, http.StatusOK, map[string]bool{"received": true})
		return
	case err != nil:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	if err := h.applier.ApplySubscriptionEvent(r.Context(), ev); err != nil {
		h.logger.Error("billing webhook apply failed",
			"event_id", ev.ID,
			"type", ev.Type,
			"error", err,
		)
		writeJSON(w, h.status(err), map[string]string{"error": err.Error()})
		return
	}

	h.logger.Info("billing webhook applied",
		"event_id", ev.ID,
		"type", ev.Type,
		"tenant_id", ev.TenantID.String(),
	)
	writeJSON(w, http.StatusOK, map[string]bool{"received": true})
}

// Sign returns a signature header for payload at ts, in the form the
// processor sends. Used to replay events against a local deployment.
func Sign(payload []byte, secret string, ts time.Time) string {
	return webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   payload,
		Secret:    secret,
		Timestamp: ts,
	}).Header
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v) //nolint:errcheck // response already committed
}

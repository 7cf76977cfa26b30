// Package api exposes the engine over HTTP: health, the billing webhook,
// plan checkout, trial status and CSV export.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/xraph/restro"
	"github.com/xraph/restro/billing"
	"github.com/xraph/restro/export"
	"github.com/xraph/restro/id"
	"github.com/xraph/restro/tenant"
)

// dateLayout is the format of the export range query parameters.
const dateLayout = "2006-01-02"

// API serves the engine's HTTP surface.
type API struct {
	engine    *restro.Engine
	logger    *slog.Logger
	webhook   []billing.WebhookOption
	noWebhook bool
	metrics   http.Handler
}

// Option configures an API.
type Option func(*API)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(a *API) { a.logger = l }
}

// WithWebhookSecret sets the billing webhook signing secret. Without it
// the webhook answers 503 and applies nothing.
func WithWebhookSecret(secret string) Option {
	return func(a *API) { a.webhook = append(a.webhook, billing.WithSecret(secret)) }
}

// WithoutWebhook leaves the billing webhook unmounted.
func WithoutWebhook() Option {
	return func(a *API) { a.noWebhook = true }
}

// WithWebhookOptions passes extra options to the billing webhook handler.
func WithWebhookOptions(opts ...billing.WebhookOption) Option {
	return func(a *API) { a.webhook = append(a.webhook, opts...) }
}

// WithMetrics mounts h on GET /metrics.
func WithMetrics(h http.Handler) Option {
	return func(a *API) { a.metrics = h }
}

// New creates an API for e.
func New(e *restro.Engine, opts ...Option) *API {
	a := &API{
		engine: e,
		logger: e.Logger(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Routes returns the router.
func (a *API) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", a.health)
	if !a.noWebhook {
		r.Method(http.MethodPost, "/billing/webhook", a.webhookHandler())
	}
	if a.metrics != nil {
		r.Method(http.MethodGet, "/metrics", a.metrics)
	}

	r.Route("/tenants/{tenantID}", func(r chi.Router) {
		r.Post("/checkout", a.checkout)
		r.Get("/trial", a.trial)
		r.Get("/export/{view}", a.export)
	})

	return r
}

// ──────────────────────────────────────────────────
// Handlers
// ──────────────────────────────────────────────────

func (a *API) webhookHandler() *billing.WebhookHandler {
	opts := append([]billing.WebhookOption{
		billing.WithWebhookLogger(a.logger),
		billing.WithErrorStatus(StatusFor),
	}, a.webhook...)
	h := billing.NewWebhookHandler(a.engine, opts...)
	if !h.Configured() {
		a.logger.Warn("billing webhook mounted without a signing secret; events will be refused")
	}
	return h
}

func (a *API) health(w http.ResponseWriter, r *http.Request) {
	if err := a.engine.Store().Ping(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type checkoutRequest struct {
	Plan string `json:"plan"`
}

func (a *API) checkout(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := a.tenantID(w, r)
	if !ok {
		return
	}

	var req checkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.fail(w, r, restro.ValidationError{Field: "body", Message: "invalid JSON"})
		return
	}
	plan, ok := tenant.ParsePlan(req.Plan)
	if !ok {
		a.fail(w, r, restro.ValidationError{Field: "plan", Message: "unknown plan " + strconv.Quote(req.Plan)})
		return
	}

	change, err := a.engine.ChoosePlan(r.Context(), tenantID, plan)
	if err != nil {
		a.fail(w, r, err)
		return
	}

	status := http.StatusOK
	if change.Checkout != nil {
		status = http.StatusAccepted
	}
	writeJSON(w, status, change)
}

func (a *API) trial(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := a.tenantID(w, r)
	if !ok {
		return
	}

	status, err := a.engine.TrialStatus(r.Context(), tenantID)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func (a *API) export(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := a.tenantID(w, r)
	if !ok {
		return
	}

	view, ok := export.ParseView(chi.URLParam(r, "view"))
	if !ok {
		a.fail(w, r, restro.ValidationError{Field: "view", Message: "unknown view " + string(view)})
		return
	}

	rng, err := parseRange(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}

	sess, err := a.engine.OpenSession(r.Context(), tenantID)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	doc, err := sess.Export(r.Context(), view, rng)
	if err != nil {
		a.fail(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+doc.Filename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(doc.Content)) //nolint:errcheck // response already committed
}

// ──────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────

func (a *API) tenantID(w http.ResponseWriter, r *http.Request) (id.TenantID, bool) {
	tenantID, err := id.ParseTenantID(chi.URLParam(r, "tenantID"))
	if err != nil {
		a.fail(w, r, restro.ValidationError{Field: "tenant_id", Message: err.Error()})
		return id.Nil, false
	}
	return tenantID, true
}

func parseRange(r *http.Request) (restro.DateRange, error) {
	var rng restro.DateRange
	q := r.URL.Query()
	if s := q.Get("from"); s != "" {
		t, err := time.Parse(dateLayout, s)
		if err != nil {
			return rng, restro.ValidationError{Field: "from", Message: "expected " + dateLayout}
		}
		rng.From = t
	}
	if s := q.Get("to"); s != "" {
		t, err := time.Parse(dateLayout, s)
		if err != nil {
			return rng, restro.ValidationError{Field: "to", Message: "expected " + dateLayout}
		}
		rng.To = t
	}
	return rng, nil
}

type errorBody struct {
	Error string           `json:"error"`
	Kind  restro.ErrorKind `json:"kind"`
	Field string           `json:"field,omitempty"`
	Plan  tenant.Plan      `json:"required_plan,omitempty"`
}

func (a *API) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusFor(err)
	body := errorBody{Error: err.Error(), Kind: restro.Kind(err)}

	var ve restro.ValidationError
	if errors.As(err, &ve) {
		body.Field = ve.Field
	}
	var pe restro.PermissionError
	if errors.As(err, &pe) {
		body.Plan = pe.Required
	}

	if status >= http.StatusInternalServerError {
		a.logger.Error("api: request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", middleware.GetReqID(r.Context()),
			"error", err,
		)
	}
	writeJSON(w, status, body)
}

// StatusFor maps an engine error to an HTTP status code.
func StatusFor(err error) int {
	switch restro.Kind(err) {
	case restro.KindValidation:
		return http.StatusBadRequest
	case restro.KindNotFound:
		return http.StatusNotFound
	case restro.KindReadOnly, restro.KindPermissionDenied:
		return http.StatusForbidden
	case restro.KindTrialExpired:
		return http.StatusPaymentRequired
	case restro.KindInvalidState:
		return http.StatusConflict
	case restro.KindExternalUnavailable:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v) //nolint:errcheck // response already committed
}

package restro

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/xraph/restro/billing"
	"github.com/xraph/restro/entitlement"
	"github.com/xraph/restro/id"
	"github.com/xraph/restro/plugin"
	"github.com/xraph/restro/store"
	"github.com/xraph/restro/subscription"
	"github.com/xraph/restro/tenant"
	"github.com/xraph/restro/types"
)

// Engine owns the tenant-wide commands: provisioning, plan choice and
// billing events. Per-tenant operational commands run through a Session.
type Engine struct {
	store   store.Store
	plugins *plugin.Registry
	logger  *slog.Logger
	clock   Clock

	billing         billing.Processor
	simulateBilling bool
	trialDays       int
}

// New creates a new Engine over the canonical store s.
func New(s store.Store, opts ...Option) *Engine {
	e := &Engine{
		store:     s,
		plugins:   plugin.NewRegistry(),
		logger:    slog.Default(),
		clock:     SystemClock,
		trialDays: tenant.DefaultTrialDays,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Option configures an Engine instance.
type Option func(*Engine)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
		e.plugins.WithLogger(logger)
	}
}

// WithPlugin registers a plugin.
func WithPlugin(p plugin.Plugin) Option {
	return func(e *Engine) {
		_ = e.plugins.Register(p) //nolint:errcheck // best-effort plugin registration during init
	}
}

// WithClock sets the time source.
func WithClock(c Clock) Option {
	return func(e *Engine) { e.clock = c }
}

// WithBillingProcessor sets the processor that creates checkout sessions.
func WithBillingProcessor(p billing.Processor) Option {
	return func(e *Engine) { e.billing = p }
}

// WithSimulatedBilling lets plan choices succeed locally when the
// processor is missing or failing. Only for demo and test deployments.
func WithSimulatedBilling(enabled bool) Option {
	return func(e *Engine) { e.simulateBilling = enabled }
}

// WithTrialPeriod sets the trial length granted to new tenants.
func WithTrialPeriod(days int) Option {
	return func(e *Engine) {
		if days > 0 {
			e.trialDays = days
		}
	}
}

// Start migrates the store and initializes plugins.
func (e *Engine) Start(ctx context.Context) error {
	if err := e.store.Migrate(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrMigrationFailed, err)
	}

	e.plugins.EmitInit(ctx, e)

	e.logger.Info("restro started",
		"plugins", e.plugins.Count(),
		"trial_days", e.trialDays,
		"simulated_billing", e.simulateBilling,
	)

	return nil
}

// Stop shuts down plugins and closes the store.
func (e *Engine) Stop() error {
	ctx := context.Background()
	e.plugins.EmitShutdown(ctx)

	return e.store.Close()
}

// Store returns the canonical store.
func (e *Engine) Store() store.Store { return e.store }

// Plugins returns the plugin registry.
func (e *Engine) Plugins() *plugin.Registry { return e.plugins }

// Logger returns the engine logger.
func (e *Engine) Logger() *slog.Logger { return e.logger }

// Now reads the engine clock.
func (e *Engine) Now() time.Time { return e.clock.Now().UTC() }

// ──────────────────────────────────────────────────
// Tenants
// ──────────────────────────────────────────────────

// ProvisionTenant creates a signup tenant on a Pro trial.
func (e *Engine) ProvisionTenant(ctx context.Context, name string) (*tenant.Tenant, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalid("name", "is required")
	}

	now := e.Now()
	t := tenant.NewTrial(name, now, e.trialDays)
	t.Entity = types.NewEntity(now)

	return e.provision(ctx, t)
}

// ProvisionDemo creates a read-only Premium tenant.
func (e *Engine) ProvisionDemo(ctx context.Context, name string) (*tenant.Tenant, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalid("name", "is required")
	}

	t := tenant.NewDemo(name)
	t.Entity = types.NewEntity(e.Now())

	return e.provision(ctx, t)
}

func (e *Engine) provision(ctx context.Context, t *tenant.Tenant) (*tenant.Tenant, error) {
	if err := e.store.CreateTenant(ctx, t); err != nil {
		return nil, err
	}

	e.logger.Info("tenant provisioned",
		"tenant_id", t.ID.String(),
		"plan", t.Plan,
		"demo", t.IsDemo,
	)
	e.plugins.EmitTenantProvisioned(ctx, t.Clone())

	return t, nil
}

// Tenant retrieves a tenant by ID.
func (e *Engine) Tenant(ctx context.Context, tenantID id.TenantID) (*tenant.Tenant, error) {
	return e.store.GetTenant(ctx, tenantID)
}

// TrialStatus returns the trial countdown of the tenant at the engine's now.
func (e *Engine) TrialStatus(ctx context.Context, tenantID id.TenantID) (entitlement.TrialStatus, error) {
	t, err := e.store.GetTenant(ctx, tenantID)
	if err != nil {
		return entitlement.TrialStatus{}, err
	}
	return entitlement.Trial(t, e.Now()), nil
}

// Check evaluates a plan-gated feature for the tenant.
func (e *Engine) Check(ctx context.Context, tenantID id.TenantID, f entitlement.Feature) (entitlement.Result, error) {
	t, err := e.store.GetTenant(ctx, tenantID)
	if err != nil {
		return entitlement.Result{}, err
	}
	return entitlement.Check(t, f), nil
}

// ──────────────────────────────────────────────────
// Plans
// ──────────────────────────────────────────────────

// PlanChange is the outcome of ChoosePlan. Either the plan was applied
// (Starter, or a simulated payment) or a Checkout awaits the tenant and
// the plan changes when the processor reports the subscription.
type PlanChange struct {
	Tenant    *tenant.Tenant    `json:"tenant"`
	Checkout  *billing.Checkout `json:"checkout,omitempty"`
	Applied   bool              `json:"applied"`
	Simulated bool              `json:"simulated"`
}

// ChoosePlan is the plan-selection command. It stays available when the
// trial has expired. Paid plans go through the billing processor; the
// tenant's entitlement never changes on a failed or pending checkout
// unless simulated billing is enabled.
func (e *Engine) ChoosePlan(ctx context.Context, tenantID id.TenantID, plan tenant.Plan) (*PlanChange, error) {
	const op = "tenant.choose_plan"

	t, err := e.store.GetTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if entitlement.IsReadOnly(t) {
		return nil, e.refuse(ctx, tenantID, op, ErrReadOnly)
	}
	if !plan.Valid() {
		return nil, e.refuse(ctx, tenantID, op, invalid("plan", "unknown plan "+string(plan)))
	}

	if !billing.Paid(plan) {
		if err := e.applyPlan(ctx, t, plan); err != nil {
			return nil, err
		}
		return &PlanChange{Tenant: t, Applied: true}, nil
	}

	cause := errors.New("no billing processor configured")
	if e.billing != nil {
		checkout, err := e.billing.CreateCheckout(ctx, tenantID, plan)
		if err == nil {
			e.logger.Info("checkout created",
				"tenant_id", tenantID.String(),
				"plan", plan,
				"session_id", checkout.SessionID,
			)
			return &PlanChange{Tenant: t, Checkout: checkout}, nil
		}
		if errors.Is(err, billing.ErrUnsupportedPlan) {
			return nil, e.refuse(ctx, tenantID, op, invalid("plan", err.Error()))
		}
		cause = err
	}

	if !e.simulateBilling {
		e.logger.Warn("billing processor unavailable",
			"tenant_id", tenantID.String(),
			"plan", plan,
			"error", cause,
		)
		return nil, fmt.Errorf("%w: %w", ErrExternalUnavailable, cause)
	}

	e.logger.Info("simulating payment",
		"tenant_id", tenantID.String(),
		"plan", plan,
		"cause", cause,
	)
	if err := e.applyPlan(ctx, t, plan); err != nil {
		return nil, err
	}
	return &PlanChange{Tenant: t, Applied: true, Simulated: true}, nil
}

// SimulatePlan switches the tenant's plan without payment. Allowed for
// demo tenants, which use it to preview tiers, and when simulated billing
// is enabled.
func (e *Engine) SimulatePlan(ctx context.Context, tenantID id.TenantID, plan tenant.Plan) (*tenant.Tenant, error) {
	const op = "tenant.simulate_plan"

	t, err := e.store.GetTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if !t.IsDemo && !e.simulateBilling {
		return nil, e.refuse(ctx, tenantID, op, fmt.Errorf("%w: plan simulation is limited to demo tenants", ErrPermissionDenied))
	}
	if !plan.Valid() {
		return nil, e.refuse(ctx, tenantID, op, invalid("plan", "unknown plan "+string(plan)))
	}

	if t.IsDemo {
		// Demo tenants never carry a trial; only the tier moves.
		from := t.Plan
		t.Plan = plan
		t.Touch(e.Now())
		if err := e.store.UpdateTenant(ctx, t); err != nil {
			return nil, err
		}
		e.plugins.EmitPlanChanged(ctx, t.Clone(), from)
		return t, nil
	}

	if err := e.applyPlan(ctx, t, plan); err != nil {
		return nil, err
	}
	return t, nil
}

// applyPlan subscribes t to plan, resolving its trial.
func (e *Engine) applyPlan(ctx context.Context, t *tenant.Tenant, plan tenant.Plan) error {
	from := t.Plan
	t.Subscribe(plan)
	t.Touch(e.Now())

	if err := e.store.UpdateTenant(ctx, t); err != nil {
		return err
	}

	e.logger.Info("plan changed",
		"tenant_id", t.ID.String(),
		"from", from,
		"to", plan,
	)
	e.plugins.EmitPlanChanged(ctx, t.Clone(), from)
	return nil
}

// ──────────────────────────────────────────────────
// Billing events
// ──────────────────────────────────────────────────

// ApplySubscriptionEvent applies a processor notification. Active
// subscriptions set the plan and end the trial; cancellation reverts the
// tenant to Starter; other statuses are only recorded.
func (e *Engine) ApplySubscriptionEvent(ctx context.Context, ev *billing.Event) error {
	if ev == nil {
		return invalid("event", "is required")
	}

	var existing *subscription.Subscription
	if ev.SubscriptionID != "" {
		sub, err := e.store.GetSubscriptionByProvider(ctx, ev.SubscriptionID)
		switch {
		case err == nil:
			existing = sub
		case !IsNotFound(err):
			return err
		}
	}

	tenantID := ev.TenantID
	if tenantID.IsNil() && existing != nil {
		tenantID = existing.TenantID
	}
	if tenantID.IsNil() {
		return fmt.Errorf("%w: no tenant for provider subscription %q", ErrSubscriptionNotFound, ev.SubscriptionID)
	}

	plan := ev.Plan
	if plan == "" && existing != nil {
		plan = existing.Plan
	}

	t, err := e.store.GetTenant(ctx, tenantID)
	if err != nil {
		return err
	}

	switch {
	case ev.Type == billing.EventSubscriptionCanceled:
		if err := e.applyPlan(ctx, t, tenant.PlanStarter); err != nil {
			return err
		}
	case ev.Type == billing.EventCheckoutCompleted, ev.Status.Grants():
		if !plan.Valid() {
			return invalid("plan", "event carries no plan")
		}
		if err := e.applyPlan(ctx, t, plan); err != nil {
			return err
		}
	}

	if ev.SubscriptionID == "" {
		return nil
	}

	now := e.Now()
	sub := existing
	if sub == nil {
		sub = &subscription.Subscription{
			Entity:     types.NewEntity(now),
			ID:         id.NewSubscriptionID(),
			ProviderID: ev.SubscriptionID,
		}
	} else {
		sub.Touch(now)
	}
	sub.TenantID = tenantID
	if plan.Valid() {
		sub.Plan = plan
	}
	sub.Status = ev.Status
	if ev.PeriodStart != nil {
		sub.CurrentPeriodStart = ev.PeriodStart
	}
	if ev.PeriodEnd != nil {
		sub.CurrentPeriodEnd = ev.PeriodEnd
	}
	if ev.Type == billing.EventSubscriptionCanceled {
		canceled := now
		if ev.CanceledAt != nil {
			canceled = *ev.CanceledAt
		}
		sub.CanceledAt = &canceled
	}

	if err := e.store.SaveSubscription(ctx, sub); err != nil {
		return err
	}

	e.plugins.EmitSubscriptionEvent(ctx, sub)
	return nil
}

// Subscriptions lists the provider subscriptions recorded for a tenant.
func (e *Engine) Subscriptions(ctx context.Context, tenantID id.TenantID) ([]*subscription.Subscription, error) {
	return e.store.ListSubscriptions(ctx, tenantID)
}

// refuse logs a refused command, notifies plugins and returns err.
func (e *Engine) refuse(ctx context.Context, tenantID id.TenantID, op string, err error) error {
	e.logger.Debug("mutation refused",
		"tenant_id", tenantID.String(),
		"op", op,
		"error", err,
	)
	e.plugins.EmitMutationRefused(ctx, tenantID, op, err)
	return err
}

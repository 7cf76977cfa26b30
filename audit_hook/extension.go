// Package audithook bridges restaurant lifecycle events to an audit trail
// backend.
//
// It defines a local Recorder interface so the package does not depend on
// any particular audit store. Callers inject a RecorderFunc adapter at
// wiring time.
package audithook

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/xraph/restro"
	"github.com/xraph/restro/id"
	"github.com/xraph/restro/inventory"
	"github.com/xraph/restro/order"
	"github.com/xraph/restro/plugin"
	"github.com/xraph/restro/subscription"
	"github.com/xraph/restro/table"
	"github.com/xraph/restro/tenant"
)

// Compile-time interface checks.
var (
	_ plugin.Plugin                = (*Extension)(nil)
	_ plugin.OnTenantProvisioned   = (*Extension)(nil)
	_ plugin.OnPlanChanged         = (*Extension)(nil)
	_ plugin.OnSubscriptionEvent   = (*Extension)(nil)
	_ plugin.OnOrderCreated        = (*Extension)(nil)
	_ plugin.OnOrderUpdated        = (*Extension)(nil)
	_ plugin.OnOrderAccepted       = (*Extension)(nil)
	_ plugin.OnOrderRejected       = (*Extension)(nil)
	_ plugin.OnOrderRemoved        = (*Extension)(nil)
	_ plugin.OnIngredientCreated   = (*Extension)(nil)
	_ plugin.OnIngredientRestocked = (*Extension)(nil)
	_ plugin.OnIngredientDeleted   = (*Extension)(nil)
	_ plugin.OnTableReserved       = (*Extension)(nil)
	_ plugin.OnReservationCanceled = (*Extension)(nil)
	_ plugin.OnMutationRefused     = (*Extension)(nil)
)

// Recorder is the interface that audit backends must implement.
type Recorder interface {
	Record(ctx context.Context, event *AuditEvent) error
}

// AuditEvent is one entry of the audit trail.
type AuditEvent struct {
	Action     string         `json:"action"`
	Resource   string         `json:"resource"`
	Category   string         `json:"category"`
	ResourceID string         `json:"resource_id,omitempty"`
	TenantID   string         `json:"tenant_id,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	Outcome    string         `json:"outcome"`
	Severity   string         `json:"severity"`
	Reason     string         `json:"reason,omitempty"`
}

// RecorderFunc is an adapter to use a plain function as a Recorder.
type RecorderFunc func(ctx context.Context, event *AuditEvent) error

// Record implements Recorder.
func (f RecorderFunc) Record(ctx context.Context, event *AuditEvent) error {
	return f(ctx, event)
}

// Extension bridges engine lifecycle events to an audit trail backend.
type Extension struct {
	recorder Recorder
	enabled  map[string]bool // nil = all enabled
	logger   *slog.Logger
}

// New creates an Extension that emits audit events through the provided Recorder.
func New(r Recorder, opts ...Option) *Extension {
	e := &Extension{
		recorder: r,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Name implements plugin.Plugin.
func (e *Extension) Name() string { return "audit-hook" }

// ──────────────────────────────────────────────────
// Tenant and billing hooks
// ──────────────────────────────────────────────────

// OnTenantProvisioned implements plugin.OnTenantProvisioned.
func (e *Extension) OnTenantProvisioned(ctx context.Context, t *tenant.Tenant) error {
	return e.record(ctx, ActionTenantProvisioned, SeverityInfo, OutcomeSuccess,
		ResourceTenant, t.ID.String(), t.ID, CategoryAccount, nil,
		"plan", string(t.Plan),
		"demo", t.IsDemo,
	)
}

// OnPlanChanged implements plugin.OnPlanChanged. Moving to the same tier
// only resolves a trial.
func (e *Extension) OnPlanChanged(ctx context.Context, t *tenant.Tenant, from tenant.Plan) error {
	action := ActionTrialResolved
	switch {
	case t.Plan.Level() > from.Level():
		action = ActionPlanUpgraded
	case t.Plan.Level() < from.Level():
		action = ActionPlanDowngraded
	}
	return e.record(ctx, action, SeverityInfo, OutcomeSuccess,
		ResourceTenant, t.ID.String(), t.ID, CategoryBilling, nil,
		"from", string(from),
		"to", string(t.Plan),
	)
}

// OnSubscriptionEvent implements plugin.OnSubscriptionEvent.
func (e *Extension) OnSubscriptionEvent(ctx context.Context, sub *subscription.Subscription) error {
	action, severity := ActionSubscriptionRecorded, SeverityInfo
	if sub.Status == subscription.StatusCanceled {
		action, severity = ActionSubscriptionCanceled, SeverityWarning
	}
	return e.record(ctx, action, severity, OutcomeSuccess,
		ResourceSubscription, sub.ProviderID, sub.TenantID, CategoryBilling, nil,
		"plan", string(sub.Plan),
		"status", string(sub.Status),
	)
}

// ──────────────────────────────────────────────────
// Order hooks
// ──────────────────────────────────────────────────

// OnOrderCreated implements plugin.OnOrderCreated.
func (e *Extension) OnOrderCreated(ctx context.Context, o *order.Order) error {
	return e.recordOrder(ctx, ActionOrderCreated, SeverityInfo, o)
}

// OnOrderUpdated implements plugin.OnOrderUpdated.
func (e *Extension) OnOrderUpdated(ctx context.Context, o *order.Order) error {
	return e.recordOrder(ctx, ActionOrderUpdated, SeverityInfo, o)
}

// OnOrderAccepted implements plugin.OnOrderAccepted.
func (e *Extension) OnOrderAccepted(ctx context.Context, o *order.Order, eta string) error {
	return e.recordOrder(ctx, ActionOrderAccepted, SeverityInfo, o, "eta", eta)
}

// OnOrderRejected implements plugin.OnOrderRejected.
func (e *Extension) OnOrderRejected(ctx context.Context, o *order.Order) error {
	return e.recordOrder(ctx, ActionOrderRejected, SeverityWarning, o)
}

// OnOrderRemoved implements plugin.OnOrderRemoved.
func (e *Extension) OnOrderRemoved(ctx context.Context, o *order.Order) error {
	return e.recordOrder(ctx, ActionOrderRemoved, SeverityWarning, o)
}

func (e *Extension) recordOrder(ctx context.Context, action, severity string, o *order.Order, kv ...any) error {
	kv = append([]any{
		"type", string(o.Type),
		"status", string(o.Status),
		"items", len(o.Items),
		"total", o.TotalAmount.String(),
	}, kv...)
	return e.record(ctx, action, severity, OutcomeSuccess,
		ResourceOrder, o.ID.String(), o.TenantID, CategoryOperations, nil,
		kv...,
	)
}

// ──────────────────────────────────────────────────
// Inventory hooks
// ──────────────────────────────────────────────────

// OnIngredientCreated implements plugin.OnIngredientCreated.
func (e *Extension) OnIngredientCreated(ctx context.Context, ing *inventory.Ingredient) error {
	return e.record(ctx, ActionIngredientCreated, SeverityInfo, OutcomeSuccess,
		ResourceIngredient, ing.ID.String(), ing.TenantID, CategoryInventory, nil,
		"name", ing.Name,
		"stock", ing.CurrentStock.String(),
		"unit", string(ing.Unit),
	)
}

// OnIngredientRestocked implements plugin.OnIngredientRestocked.
func (e *Extension) OnIngredientRestocked(ctx context.Context, ing *inventory.Ingredient, qty decimal.Decimal) error {
	return e.record(ctx, ActionIngredientRestocked, SeverityInfo, OutcomeSuccess,
		ResourceIngredient, ing.ID.String(), ing.TenantID, CategoryInventory, nil,
		"added", qty.String(),
		"stock", ing.CurrentStock.String(),
		"status", string(ing.Status()),
	)
}

// OnIngredientDeleted implements plugin.OnIngredientDeleted.
func (e *Extension) OnIngredientDeleted(ctx context.Context, ing *inventory.Ingredient) error {
	return e.record(ctx, ActionIngredientDeleted, SeverityWarning, OutcomeSuccess,
		ResourceIngredient, ing.ID.String(), ing.TenantID, CategoryInventory, nil,
		"name", ing.Name,
	)
}

// ──────────────────────────────────────────────────
// Table hooks
// ──────────────────────────────────────────────────

// OnTableReserved implements plugin.OnTableReserved.
func (e *Extension) OnTableReserved(ctx context.Context, t *table.Table) error {
	kv := []any{"number", t.Number, "name", t.ReservationName}
	if t.ReservationTime != nil {
		kv = append(kv, "time", t.ReservationTime.UTC())
	}
	return e.record(ctx, ActionTableReserved, SeverityInfo, OutcomeSuccess,
		ResourceTable, t.ID.String(), t.TenantID, CategoryOperations, nil,
		kv...,
	)
}

// OnReservationCanceled implements plugin.OnReservationCanceled.
func (e *Extension) OnReservationCanceled(ctx context.Context, t *table.Table) error {
	return e.record(ctx, ActionReservationCanceled, SeverityInfo, OutcomeSuccess,
		ResourceTable, t.ID.String(), t.TenantID, CategoryOperations, nil,
		"number", t.Number,
	)
}

// ──────────────────────────────────────────────────
// Access hooks
// ──────────────────────────────────────────────────

// OnMutationRefused implements plugin.OnMutationRefused.
func (e *Extension) OnMutationRefused(ctx context.Context, tenantID id.TenantID, op string, err error) error {
	return e.record(ctx, ActionCommandRefused, SeverityWarning, OutcomeFailure,
		ResourceCommand, op, tenantID, CategoryAccess, err,
		"kind", string(restro.Kind(err)),
	)
}

// ──────────────────────────────────────────────────
// Internal helpers
// ──────────────────────────────────────────────────

// record builds and sends an audit event if the action is enabled.
func (e *Extension) record(
	ctx context.Context,
	action, severity, outcome string,
	resource, resourceID string,
	tenantID id.TenantID,
	category string,
	err error,
	kvPairs ...any,
) error {
	if e.enabled != nil && !e.enabled[action] {
		return nil
	}

	meta := make(map[string]any, len(kvPairs)/2+1)
	for i := 0; i+1 < len(kvPairs); i += 2 {
		key, ok := kvPairs[i].(string)
		if !ok {
			key = fmt.Sprintf("%v", kvPairs[i])
		}
		meta[key] = kvPairs[i+1]
	}

	var reason string
	if err != nil {
		reason = err.Error()
		meta["error"] = err.Error()
	}

	evt := &AuditEvent{
		Action:     action,
		Resource:   resource,
		Category:   category,
		ResourceID: resourceID,
		TenantID:   tenantID.String(),
		Metadata:   meta,
		Outcome:    outcome,
		Severity:   severity,
		Reason:     reason,
	}

	if recErr := e.recorder.Record(ctx, evt); recErr != nil {
		e.logger.Warn("audit_hook: failed to record audit event",
			"action", action,
			"resource_id", resourceID,
			"error", recErr,
		)
	}
	return nil
}

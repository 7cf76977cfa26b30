// Package observability provides a metrics extension for restro that records
// lifecycle event counts via a MetricFactory.
package observability

import (
	"context"

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

// Ensure MetricsExtension implements required interfaces.
var (
	_ plugin.Plugin                = (*MetricsExtension)(nil)
	_ plugin.OnInit                = (*MetricsExtension)(nil)
	_ plugin.OnTenantProvisioned   = (*MetricsExtension)(nil)
	_ plugin.OnPlanChanged         = (*MetricsExtension)(nil)
	_ plugin.OnSubscriptionEvent   = (*MetricsExtension)(nil)
	_ plugin.OnOrderCreated        = (*MetricsExtension)(nil)
	_ plugin.OnOrderUpdated        = (*MetricsExtension)(nil)
	_ plugin.OnOrderAccepted       = (*MetricsExtension)(nil)
	_ plugin.OnOrderRejected       = (*MetricsExtension)(nil)
	_ plugin.OnOrderRemoved        = (*MetricsExtension)(nil)
	_ plugin.OnIngredientCreated   = (*MetricsExtension)(nil)
	_ plugin.OnIngredientRestocked = (*MetricsExtension)(nil)
	_ plugin.OnIngredientDeleted   = (*MetricsExtension)(nil)
	_ plugin.OnTableReserved       = (*MetricsExtension)(nil)
	_ plugin.OnReservationCanceled = (*MetricsExtension)(nil)
	_ plugin.OnMutationRefused     = (*MetricsExtension)(nil)
)

// Counter interface for metric counters.
type Counter interface {
	Inc()
	Add(float64)
}

// Histogram interface for metric histograms.
type Histogram interface {
	Observe(float64)
}

// MetricFactory creates metrics.
type MetricFactory interface {
	Counter(name string) Counter
	Histogram(name string) Histogram
}

// MetricsExtension records system-wide lifecycle metrics.
// Register it as a restro plugin to track restaurant activity.
type MetricsExtension struct {
	factory MetricFactory

	// Tenant metrics
	TenantProvisioned Counter
	DemoProvisioned   Counter
	PlanUpgraded      Counter
	PlanDowngraded    Counter
	TrialResolved     Counter

	// Subscription metrics
	SubscriptionEvents   Counter
	SubscriptionCanceled Counter

	// Order metrics
	OrderCreated  Counter
	OrderUpdated  Counter
	OrderAccepted Counter
	OrderRejected Counter
	OrderRemoved  Counter
	OrderItems    Histogram
	OrderTotal    Histogram

	// Inventory metrics
	IngredientCreated   Counter
	IngredientRestocked Counter
	IngredientDeleted   Counter
	RestockQuantity     Histogram
	StockCritical       Counter

	// Table metrics
	TableReserved       Counter
	ReservationCanceled Counter

	// Refusal metrics
	RefusedReadOnly     Counter
	RefusedTrialExpired Counter
	RefusedPermission   Counter
	RefusedValidation   Counter
	RefusedOther        Counter
}

// NewMetricsExtension creates a MetricsExtension with the provided MetricFactory.
func NewMetricsExtension(factory MetricFactory) *MetricsExtension {
	return &MetricsExtension{
		factory: factory,

		TenantProvisioned: factory.Counter("restro.tenant.provisioned"),
		DemoProvisioned:   factory.Counter("restro.tenant.demo_provisioned"),
		PlanUpgraded:      factory.Counter("restro.plan.upgraded"),
		PlanDowngraded:    factory.Counter("restro.plan.downgraded"),
		TrialResolved:     factory.Counter("restro.trial.resolved"),

		SubscriptionEvents:   factory.Counter("restro.subscription.events"),
		SubscriptionCanceled: factory.Counter("restro.subscription.canceled"),

		OrderCreated:  factory.Counter("restro.order.created"),
		OrderUpdated:  factory.Counter("restro.order.updated"),
		OrderAccepted: factory.Counter("restro.order.accepted"),
		OrderRejected: factory.Counter("restro.order.rejected"),
		OrderRemoved:  factory.Counter("restro.order.removed"),
		OrderItems:    factory.Histogram("restro.order.items"),
		OrderTotal:    factory.Histogram("restro.order.total_amount"),

		IngredientCreated:   factory.Counter("restro.ingredient.created"),
		IngredientRestocked: factory.Counter("restro.ingredient.restocked"),
		IngredientDeleted:   factory.Counter("restro.ingredient.deleted"),
		RestockQuantity:     factory.Histogram("restro.ingredient.restock_quantity"),
		StockCritical:       factory.Counter("restro.ingredient.critical"),

		TableReserved:       factory.Counter("restro.table.reserved"),
		ReservationCanceled: factory.Counter("restro.table.reservation_canceled"),

		RefusedReadOnly:     factory.Counter("restro.refused.read_only"),
		RefusedTrialExpired: factory.Counter("restro.refused.trial_expired"),
		RefusedPermission:   factory.Counter("restro.refused.permission"),
		RefusedValidation:   factory.Counter("restro.refused.validation"),
		RefusedOther:        factory.Counter("restro.refused.other"),
	}
}

// Name implements plugin.Plugin.
func (m *MetricsExtension) Name() string { return "observability-metrics" }

// OnInit implements plugin.OnInit.
func (m *MetricsExtension) OnInit(_ context.Context, _ any) error {
	return nil
}

// ──────────────────────────────────────────────────
// Tenant hooks
// ──────────────────────────────────────────────────

// OnTenantProvisioned implements plugin.OnTenantProvisioned.
func (m *MetricsExtension) OnTenantProvisioned(_ context.Context, t *tenant.Tenant) error {
	if t.IsDemo {
		m.DemoProvisioned.Inc()
		return nil
	}
	m.TenantProvisioned.Inc()
	return nil
}

// OnPlanChanged implements plugin.OnPlanChanged.
func (m *MetricsExtension) OnPlanChanged(_ context.Context, t *tenant.Tenant, from tenant.Plan) error {
	switch {
	case t.Plan.Level() > from.Level():
		m.PlanUpgraded.Inc()
	case t.Plan.Level() < from.Level():
		m.PlanDowngraded.Inc()
	default:
		m.TrialResolved.Inc()
	}
	return nil
}

// OnSubscriptionEvent implements plugin.OnSubscriptionEvent.
func (m *MetricsExtension) OnSubscriptionEvent(_ context.Context, sub *subscription.Subscription) error {
	m.SubscriptionEvents.Inc()
	if sub.Status == subscription.StatusCanceled {
		m.SubscriptionCanceled.Inc()
	}
	return nil
}

// ──────────────────────────────────────────────────
// Order hooks
// ──────────────────────────────────────────────────

// OnOrderCreated implements plugin.OnOrderCreated.
func (m *MetricsExtension) OnOrderCreated(_ context.Context, o *order.Order) error {
	m.OrderCreated.Inc()
	m.OrderItems.Observe(float64(len(o.Items)))
	m.OrderTotal.Observe(float64(o.TotalAmount.Amount))
	return nil
}

// OnOrderUpdated implements plugin.OnOrderUpdated.
func (m *MetricsExtension) OnOrderUpdated(_ context.Context, _ *order.Order) error {
	m.OrderUpdated.Inc()
	return nil
}

// OnOrderAccepted implements plugin.OnOrderAccepted.
func (m *MetricsExtension) OnOrderAccepted(_ context.Context, _ *order.Order, _ string) error {
	m.OrderAccepted.Inc()
	return nil
}

// OnOrderRejected implements plugin.OnOrderRejected.
func (m *MetricsExtension) OnOrderRejected(_ context.Context, _ *order.Order) error {
	m.OrderRejected.Inc()
	return nil
}

// OnOrderRemoved implements plugin.OnOrderRemoved.
func (m *MetricsExtension) OnOrderRemoved(_ context.Context, _ *order.Order) error {
	m.OrderRemoved.Inc()
	return nil
}

// ──────────────────────────────────────────────────
// Inventory hooks
// ──────────────────────────────────────────────────

// OnIngredientCreated implements plugin.OnIngredientCreated.
func (m *MetricsExtension) OnIngredientCreated(_ context.Context, ing *inventory.Ingredient) error {
	m.IngredientCreated.Inc()
	if ing.IsCritical() {
		m.StockCritical.Inc()
	}
	return nil
}

// OnIngredientRestocked implements plugin.OnIngredientRestocked.
func (m *MetricsExtension) OnIngredientRestocked(_ context.Context, _ *inventory.Ingredient, qty decimal.Decimal) error {
	m.IngredientRestocked.Inc()
	m.RestockQuantity.Observe(qty.InexactFloat64())
	return nil
}

// OnIngredientDeleted implements plugin.OnIngredientDeleted.
func (m *MetricsExtension) OnIngredientDeleted(_ context.Context, _ *inventory.Ingredient) error {
	m.IngredientDeleted.Inc()
	return nil
}

// ──────────────────────────────────────────────────
// Table hooks
// ──────────────────────────────────────────────────

// OnTableReserved implements plugin.OnTableReserved.
func (m *MetricsExtension) OnTableReserved(_ context.Context, _ *table.Table) error {
	m.TableReserved.Inc()
	return nil
}

// OnReservationCanceled implements plugin.OnReservationCanceled.
func (m *MetricsExtension) OnReservationCanceled(_ context.Context, _ *table.Table) error {
	m.ReservationCanceled.Inc()
	return nil
}

// ──────────────────────────────────────────────────
// Refusal hooks
// ──────────────────────────────────────────────────

// OnMutationRefused implements plugin.OnMutationRefused.
func (m *MetricsExtension) OnMutationRefused(_ context.Context, _ id.TenantID, _ string, err error) error {
	switch restro.Kind(err) {
	case restro.KindReadOnly:
		m.RefusedReadOnly.Inc()
	case restro.KindTrialExpired:
		m.RefusedTrialExpired.Inc()
	case restro.KindPermissionDenied:
		m.RefusedPermission.Inc()
	case restro.KindValidation:
		m.RefusedValidation.Inc()
	default:
		m.RefusedOther.Inc()
	}
	return nil
}

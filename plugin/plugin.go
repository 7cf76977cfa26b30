// Package plugin provides the hook system of the restaurant engine.
// Plugins observe applied and refused commands; they never alter them.
package plugin

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/xraph/restro/id"
	"github.com/xraph/restro/inventory"
	"github.com/xraph/restro/order"
	"github.com/xraph/restro/subscription"
	"github.com/xraph/restro/table"
	"github.com/xraph/restro/tenant"
)

// Plugin is the base interface that all plugins must implement.
type Plugin interface {
	Name() string
}

// ──────────────────────────────────────────────────
// Lifecycle hooks
// ──────────────────────────────────────────────────

// OnInit is called when the engine starts.
type OnInit interface {
	Plugin
	OnInit(ctx context.Context, engine any) error
}

// OnShutdown is called when the engine stops.
type OnShutdown interface {
	Plugin
	OnShutdown(ctx context.Context) error
}

// ──────────────────────────────────────────────────
// Tenant and plan hooks
// ──────────────────────────────────────────────────

// OnTenantProvisioned is called after a tenant is stored.
type OnTenantProvisioned interface {
	Plugin
	OnTenantProvisioned(ctx context.Context, t *tenant.Tenant) error
}

// OnPlanChanged is called after a tenant's plan or trial changed.
type OnPlanChanged interface {
	Plugin
	OnPlanChanged(ctx context.Context, t *tenant.Tenant, from tenant.Plan) error
}

// OnSubscriptionEvent is called after a billing event was recorded.
type OnSubscriptionEvent interface {
	Plugin
	OnSubscriptionEvent(ctx context.Context, sub *subscription.Subscription) error
}

// ──────────────────────────────────────────────────
// Order hooks
// ──────────────────────────────────────────────────

// OnOrderCreated is called after an order is submitted.
type OnOrderCreated interface {
	Plugin
	OnOrderCreated(ctx context.Context, o *order.Order) error
}

// OnOrderUpdated is called after an edited order is saved.
type OnOrderUpdated interface {
	Plugin
	OnOrderUpdated(ctx context.Context, o *order.Order) error
}

// OnOrderAccepted is called after an order moves to PREPARING.
type OnOrderAccepted interface {
	Plugin
	OnOrderAccepted(ctx context.Context, o *order.Order, eta string) error
}

// OnOrderRejected is called after an order is cancelled.
type OnOrderRejected interface {
	Plugin
	OnOrderRejected(ctx context.Context, o *order.Order) error
}

// OnOrderRemoved is called after an order and its items are deleted.
type OnOrderRemoved interface {
	Plugin
	OnOrderRemoved(ctx context.Context, o *order.Order) error
}

// ──────────────────────────────────────────────────
// Inventory hooks
// ──────────────────────────────────────────────────

// OnIngredientCreated is called after an ingredient is created.
type OnIngredientCreated interface {
	Plugin
	OnIngredientCreated(ctx context.Context, ing *inventory.Ingredient) error
}

// OnIngredientRestocked is called after stock is added.
type OnIngredientRestocked interface {
	Plugin
	OnIngredientRestocked(ctx context.Context, ing *inventory.Ingredient, qty decimal.Decimal) error
}

// OnIngredientDeleted is called after an ingredient is deleted.
type OnIngredientDeleted interface {
	Plugin
	OnIngredientDeleted(ctx context.Context, ing *inventory.Ingredient) error
}

// ──────────────────────────────────────────────────
// Table hooks
// ──────────────────────────────────────────────────

// OnTableReserved is called after a table is reserved.
type OnTableReserved interface {
	Plugin
	OnTableReserved(ctx context.Context, t *table.Table) error
}

// OnReservationCanceled is called after a reservation is cancelled.
type OnReservationCanceled interface {
	Plugin
	OnReservationCanceled(ctx context.Context, t *table.Table) error
}

// ──────────────────────────────────────────────────
// Refusal hooks
// ──────────────────────────────────────────────────

// OnMutationRefused is called when a command is refused before it had any
// effect: read-only tenants, expired trials, validation and permission
// failures.
type OnMutationRefused interface {
	Plugin
	OnMutationRefused(ctx context.Context, tenantID id.TenantID, op string, err error) error
}

// defaultHookTimeout bounds a single hook call.
const defaultHookTimeout = 5 * time.Second

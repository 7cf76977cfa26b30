package plugin

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/xraph/restro/id"
	"github.com/xraph/restro/inventory"
	"github.com/xraph/restro/order"
	"github.com/xraph/restro/subscription"
	"github.com/xraph/restro/table"
	"github.com/xraph/restro/tenant"
)

// Registry manages all registered plugins and provides efficient dispatch.
// Hook implementations are discovered once at registration.
type Registry struct {
	mu      sync.RWMutex
	plugins []Plugin
	logger  *slog.Logger
	timeout time.Duration

	onInit                []OnInit
	onShutdown            []OnShutdown
	onTenantProvisioned   []OnTenantProvisioned
	onPlanChanged         []OnPlanChanged
	onSubscriptionEvent   []OnSubscriptionEvent
	onOrderCreated        []OnOrderCreated
	onOrderUpdated        []OnOrderUpdated
	onOrderAccepted       []OnOrderAccepted
	onOrderRejected       []OnOrderRejected
	onOrderRemoved        []OnOrderRemoved
	onIngredientCreated   []OnIngredientCreated
	onIngredientRestocked []OnIngredientRestocked
	onIngredientDeleted   []OnIngredientDeleted
	onTableReserved       []OnTableReserved
	onReservationCanceled []OnReservationCanceled
	onMutationRefused     []OnMutationRefused
}

// NewRegistry creates a new plugin registry.
func NewRegistry() *Registry {
	return &Registry{
		logger:  slog.Default(),
		timeout: defaultHookTimeout,
	}
}

// WithLogger sets the logger for the registry.
func (r *Registry) WithLogger(logger *slog.Logger) *Registry {
	r.logger = logger
	return r
}

// WithTimeout bounds every hook call.
func (r *Registry) WithTimeout(d time.Duration) *Registry {
	if d > 0 {
		r.timeout = d
	}
	return r
}

// Register adds a plugin to the registry and caches its interfaces.
func (r *Registry) Register(p Plugin) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.plugins {
		if existing.Name() == p.Name() {
			return fmt.Errorf("plugin: duplicate registration: %s", p.Name())
		}
	}

	r.plugins = append(r.plugins, p)

	if v, ok := p.(OnInit); ok {
		r.onInit = append(r.onInit, v)
	}
	if v, ok := p.(OnShutdown); ok {
		r.onShutdown = append(r.onShutdown, v)
	}
	if v, ok := p.(OnTenantProvisioned); ok {
		r.onTenantProvisioned = append(r.onTenantProvisioned, v)
	}
	if v, ok := p.(OnPlanChanged); ok {
		r.onPlanChanged = append(r.onPlanChanged, v)
	}
	if v, ok := p.(OnSubscriptionEvent); ok {
		r.onSubscriptionEvent = append(r.onSubscriptionEvent, v)
	}
	if v, ok := p.(OnOrderCreated); ok {
		r.onOrderCreated = append(r.onOrderCreated, v)
	}
	if v, ok := p.(OnOrderUpdated); ok {
		r.onOrderUpdated = append(r.onOrderUpdated, v)
	}
	if v, ok := p.(OnOrderAccepted); ok {
		r.onOrderAccepted = append(r.onOrderAccepted, v)
	}
	if v, ok := p.(OnOrderRejected); ok {
		r.onOrderRejected = append(r.onOrderRejected, v)
	}
	if v, ok := p.(OnOrderRemoved); ok {
		r.onOrderRemoved = append(r.onOrderRemoved, v)
	}
	if v, ok := p.(OnIngredientCreated); ok {
		r.onIngredientCreated = append(r.onIngredientCreated, v)
	}
	if v, ok := p.(OnIngredientRestocked); ok {
		r.onIngredientRestocked = append(r.onIngredientRestocked, v)
	}
	if v, ok := p.(OnIngredientDeleted); ok {
		r.onIngredientDeleted = append(r.onIngredientDeleted, v)
	}
	if v, ok := p.(OnTableReserved); ok {
		r.onTableReserved = append(r.onTableReserved, v)
	}
	if v, ok := p.(OnReservationCanceled); ok {
		r.onReservationCanceled = append(r.onReservationCanceled, v)
	}
	if v, ok := p.(OnMutationRefused); ok {
		r.onMutationRefused = append(r.onMutationRefused, v)
	}

	r.logger.Info("plugin registered",
		"name", p.Name(),
		"interfaces", implementedInterfaces(p),
	)

	return nil
}

var hookTypes = []struct {
	name string
	typ  reflect.Type
}{
	{"OnInit", reflect.TypeOf((*OnInit)(nil)).Elem()},
	{"OnShutdown", reflect.TypeOf((*OnShutdown)(nil)).Elem()},
	{"OnTenantProvisioned", reflect.TypeOf((*OnTenantProvisioned)(nil)).Elem()},
	{"OnPlanChanged", reflect.TypeOf((*OnPlanChanged)(nil)).Elem()},
	{"OnSubscriptionEvent", reflect.TypeOf((*OnSubscriptionEvent)(nil)).Elem()},
	{"OnOrderCreated", reflect.TypeOf((*OnOrderCreated)(nil)).Elem()},
	{"OnOrderUpdated", reflect.TypeOf((*OnOrderUpdated)(nil)).Elem()},
	{"OnOrderAccepted", reflect.TypeOf((*OnOrderAccepted)(nil)).Elem()},
	{"OnOrderRejected", reflect.TypeOf((*OnOrderRejected)(nil)).Elem()},
	{"OnOrderRemoved", reflect.TypeOf((*OnOrderRemoved)(nil)).Elem()},
	{"OnIngredientCreated", reflect.TypeOf((*OnIngredientCreated)(nil)).Elem()},
	{"OnIngredientRestocked", reflect.TypeOf((*OnIngredientRestocked)(nil)).Elem()},
	{"OnIngredientDeleted", reflect.TypeOf((*OnIngredientDeleted)(nil)).Elem()},
	{"OnTableReserved", reflect.TypeOf((*OnTableReserved)(nil)).Elem()},
	{"OnReservationCanceled", reflect.TypeOf((*OnReservationCanceled)(nil)).Elem()},
	{"OnMutationRefused", reflect.TypeOf((*OnMutationRefused)(nil)).Elem()},
}

// implementedInterfaces returns the names of the hooks p implements.
func implementedInterfaces(p Plugin) []string {
	var names []string
	v := reflect.TypeOf(p)
	for _, h := range hookTypes {
		if v.Implements(h.typ) {
			names = append(names, h.name)
		}
	}
	return names
}

// Get returns a plugin by name.
func (r *Registry) Get(name string) Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.plugins {
		if p.Name() == name {
			return p
		}
	}
	return nil
}

// List returns all registered plugins.
func (r *Registry) List() []Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Plugin, len(r.plugins))
	copy(result, r.plugins)
	return result
}

// Count returns the number of registered plugins.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.plugins)
}

// ──────────────────────────────────────────────────
// Event emission methods
// ──────────────────────────────────────────────────

// emit runs call for every hook in hooks, logging failures.
func emit[H Plugin](ctx context.Context, r *Registry, hook string, hooks []H, call func(H) error) {
	for _, h := range hooks {
		if err := r.callWithTimeout(ctx, h.Name(), func() error {
			return call(h)
		}); err != nil {
			r.logger.Warn("plugin "+hook+" failed",
				"plugin", h.Name(),
				"error", err,
			)
		}
	}
}

// snapshot copies a hook slice under the read lock.
func snapshot[H any](r *Registry, hooks *[]H) []H {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]H(nil), (*hooks)...)
}

// EmitInit calls OnInit for all plugins that implement it.
func (r *Registry) EmitInit(ctx context.Context, engine any) {
	emit(ctx, r, "OnInit", snapshot(r, &r.onInit), func(p OnInit) error {
		return p.OnInit(ctx, engine)
	})
}

// EmitShutdown calls OnShutdown for all plugins that implement it.
func (r *Registry) EmitShutdown(ctx context.Context) {
	emit(ctx, r, "OnShutdown", snapshot(r, &r.onShutdown), func(p OnShutdown) error {
		return p.OnShutdown(ctx)
	})
}

// EmitTenantProvisioned emits a tenant provisioned event.
func (r *Registry) EmitTenantProvisioned(ctx context.Context, t *tenant.Tenant) {
	emit(ctx, r, "OnTenantProvisioned", snapshot(r, &r.onTenantProvisioned), func(p OnTenantProvisioned) error {
		return p.OnTenantProvisioned(ctx, t)
	})
}

// EmitPlanChanged emits a plan changed event.
func (r *Registry) EmitPlanChanged(ctx context.Context, t *tenant.Tenant, from tenant.Plan) {
	emit(ctx, r, "OnPlanChanged", snapshot(r, &r.onPlanChanged), func(p OnPlanChanged) error {
		return p.OnPlanChanged(ctx, t, from)
	})
}

// EmitSubscriptionEvent emits a subscription event.
func (r *Registry) EmitSubscriptionEvent(ctx context.Context, sub *subscription.Subscription) {
	emit(ctx, r, "OnSubscriptionEvent", snapshot(r, &r.onSubscriptionEvent), func(p OnSubscriptionEvent) error {
		return p.OnSubscriptionEvent(ctx, sub)
	})
}

// EmitOrderCreated emits an order created event.
func (r *Registry) EmitOrderCreated(ctx context.Context, o *order.Order) {
	emit(ctx, r, "OnOrderCreated", snapshot(r, &r.onOrderCreated), func(p OnOrderCreated) error {
		return p.OnOrderCreated(ctx, o)
	})
}

// EmitOrderUpdated emits an order updated event.
func (r *Registry) EmitOrderUpdated(ctx context.Context, o *order.Order) {
	emit(ctx, r, "OnOrderUpdated", snapshot(r, &r.onOrderUpdated), func(p OnOrderUpdated) error {
		return p.OnOrderUpdated(ctx, o)
	})
}

// EmitOrderAccepted emits an order accepted event.
func (r *Registry) EmitOrderAccepted(ctx context.Context, o *order.Order, eta string) {
	emit(ctx, r, "OnOrderAccepted", snapshot(r, &r.onOrderAccepted), func(p OnOrderAccepted) error {
		return p.OnOrderAccepted(ctx, o, eta)
	})
}

// EmitOrderRejected emits an order rejected event.
func (r *Registry) EmitOrderRejected(ctx context.Context, o *order.Order) {
	emit(ctx, r, "OnOrderRejected", snapshot(r, &r.onOrderRejected), func(p OnOrderRejected) error {
		return p.OnOrderRejected(ctx, o)
	})
}

// EmitOrderRemoved emits an order removed event.
func (r *Registry) EmitOrderRemoved(ctx context.Context, o *order.Order) {
	emit(ctx, r, "OnOrderRemoved", snapshot(r, &r.onOrderRemoved), func(p OnOrderRemoved) error {
		return p.OnOrderRemoved(ctx, o)
	})
}

// EmitIngredientCreated emits an ingredient created event.
func (r *Registry) EmitIngredientCreated(ctx context.Context, ing *inventory.Ingredient) {
	emit(ctx, r, "OnIngredientCreated", snapshot(r, &r.onIngredientCreated), func(p OnIngredientCreated) error {
		return p.OnIngredientCreated(ctx, ing)
	})
}

// EmitIngredientRestocked emits an ingredient restocked event.
func (r *Registry) EmitIngredientRestocked(ctx context.Context, ing *inventory.Ingredient, qty decimal.Decimal) {
	emit(ctx, r, "OnIngredientRestocked", snapshot(r, &r.onIngredientRestocked), func(p OnIngredientRestocked) error {
		return p.OnIngredientRestocked(ctx, ing, qty)
	})
}

// EmitIngredientDeleted emits an ingredient deleted event.
func (r *Registry) EmitIngredientDeleted(ctx context.Context, ing *inventory.Ingredient) {
	emit(ctx, r, "OnIngredientDeleted", snapshot(r, &r.onIngredientDeleted), func(p OnIngredientDeleted) error {
		return p.OnIngredientDeleted(ctx, ing)
	})
}

// EmitTableReserved emits a table reserved event.
func (r *Registry) EmitTableReserved(ctx context.Context, t *table.Table) {
	emit(ctx, r, "OnTableReserved", snapshot(r, &r.onTableReserved), func(p OnTableReserved) error {
		return p.OnTableReserved(ctx, t)
	})
}

// EmitReservationCanceled emits a reservation canceled event.
func (r *Registry) EmitReservationCanceled(ctx context.Context, t *table.Table) {
	emit(ctx, r, "OnReservationCanceled", snapshot(r, &r.onReservationCanceled), func(p OnReservationCanceled) error {
		return p.OnReservationCanceled(ctx, t)
	})
}

// EmitMutationRefused emits a refused command event.
func (r *Registry) EmitMutationRefused(ctx context.Context, tenantID id.TenantID, op string, cause error) {
	emit(ctx, r, "OnMutationRefused", snapshot(r, &r.onMutationRefused), func(p OnMutationRefused) error {
		return p.OnMutationRefused(ctx, tenantID, op, cause)
	})
}

// callWithTimeout calls a plugin function with a timeout.
// Plugins must not block the command pipeline.
func (r *Registry) callWithTimeout(ctx context.Context, pluginName string, fn func() error) error {
	done := make(chan error, 1)

	go func() {
		done <- fn()
	}()

	timer := time.NewTimer(r.timeout)
	defer timer.Stop()

	select {
	case err := <-done:
		return err
	case <-timer.C:
		return fmt.Errorf("plugin timeout: %s", pluginName)
	case <-ctx.Done():
		return ctx.Err()
	}
}

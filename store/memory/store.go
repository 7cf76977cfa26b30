// Package memory is an in-process store backed by maps. Records are copied
// on the way in and out, so callers never share state with the store.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/xraph/restro"
	"github.com/xraph/restro/catalog"
	"github.com/xraph/restro/id"
	"github.com/xraph/restro/inventory"
	"github.com/xraph/restro/order"
	"github.com/xraph/restro/store"
	"github.com/xraph/restro/subscription"
	"github.com/xraph/restro/table"
	"github.com/xraph/restro/tenant"
)

// Compile-time interface check.
var _ store.Store = (*Store)(nil)

type Store struct {
	mu     sync.RWMutex
	closed bool
	seq    int64

	tenants       map[string]*tenant.Tenant
	subscriptions map[string]*subscription.Subscription // keyed by provider ID
	categories    map[string]*catalog.Category
	products      map[string]*catalog.Product
	orders        map[string]*order.Order
	ingredients   map[string]*inventory.Ingredient
	tables        map[string]*table.Table

	// insertion sequence per record key, for stable listing order
	inserted map[string]int64
}

func New() *Store {
	return &Store{
		tenants:       make(map[string]*tenant.Tenant),
		subscriptions: make(map[string]*subscription.Subscription),
		categories:    make(map[string]*catalog.Category),
		products:      make(map[string]*catalog.Product),
		orders:        make(map[string]*order.Order),
		ingredients:   make(map[string]*inventory.Ingredient),
		tables:        make(map[string]*table.Table),
		inserted:      make(map[string]int64),
	}
}

func (s *Store) stamp(key string) {
	s.seq++
	s.inserted[key] = s.seq
}

func sortInserted[T any](s *Store, items []T, key func(T) string) {
	sort.SliceStable(items, func(i, j int) bool {
		return s.inserted[key(items[i])] < s.inserted[key(items[j])]
	})
}

// ==================== Tenant Store ====================

func (s *Store) CreateTenant(_ context.Context, t *tenant.Tenant) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.tenants[t.ID.String()]; exists {
		return restro.ErrAlreadyExists
	}
	s.tenants[t.ID.String()] = t.Clone()
	return nil
}

func (s *Store) GetTenant(_ context.Context, tenantID id.TenantID) (*tenant.Tenant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if t, ok := s.tenants[tenantID.String()]; ok {
		return t.Clone(), nil
	}
	return nil, restro.ErrTenantNotFound
}

func (s *Store) UpdateTenant(_ context.Context, t *tenant.Tenant) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.tenants[t.ID.String()]; !exists {
		return restro.ErrTenantNotFound
	}
	s.tenants[t.ID.String()] = t.Clone()
	return nil
}

// ==================== Subscription Store ====================

func cloneSubscription(sub *subscription.Subscription) *subscription.Subscription {
	c := *sub
	c.CurrentPeriodStart = cloneTime(sub.CurrentPeriodStart)
	c.CurrentPeriodEnd = cloneTime(sub.CurrentPeriodEnd)
	c.CanceledAt = cloneTime(sub.CanceledAt)
	return &c
}

func (s *Store) SaveSubscription(_ context.Context, sub *subscription.Subscription) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.subscriptions[sub.ProviderID]; ok {
		// Upserts keep the original record identity.
		sub.ID = existing.ID
		sub.CreatedAt = existing.CreatedAt
	} else {
		s.stamp(sub.ProviderID)
	}
	s.subscriptions[sub.ProviderID] = cloneSubscription(sub)
	return nil
}

func (s *Store) GetSubscriptionByProvider(_ context.Context, providerID string) (*subscription.Subscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if sub, ok := s.subscriptions[providerID]; ok {
		return cloneSubscription(sub), nil
	}
	return nil, restro.ErrSubscriptionNotFound
}

func (s *Store) ListSubscriptions(_ context.Context, tenantID id.TenantID) ([]*subscription.Subscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*subscription.Subscription, 0)
	for _, sub := range s.subscriptions {
		if sub.TenantID == tenantID {
			result = append(result, cloneSubscription(sub))
		}
	}
	sortInserted(s, result, func(sub *subscription.Subscription) string { return sub.ProviderID })
	return result, nil
}

// ==================== Catalog Store ====================

func (s *Store) CreateCategory(_ context.Context, c *catalog.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.categories[c.ID.String()]; exists {
		return restro.ErrAlreadyExists
	}
	cp := *c
	s.categories[c.ID.String()] = &cp
	s.stamp(c.ID.String())
	return nil
}

func (s *Store) ListCategories(_ context.Context, tenantID id.TenantID) ([]*catalog.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*catalog.Category, 0)
	for _, c := range s.categories {
		if c.TenantID == tenantID {
			cp := *c
			result = append(result, &cp)
		}
	}
	sortInserted(s, result, func(c *catalog.Category) string { return c.ID.String() })
	return result, nil
}

func (s *Store) CreateProduct(_ context.Context, p *catalog.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.products[p.ID.String()]; exists {
		return restro.ErrAlreadyExists
	}
	cp := *p
	s.products[p.ID.String()] = &cp
	s.stamp(p.ID.String())
	return nil
}

func (s *Store) GetProduct(_ context.Context, productID id.ProductID) (*catalog.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if p, ok := s.products[productID.String()]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, restro.ErrProductNotFound
}

func (s *Store) ListProducts(_ context.Context, tenantID id.TenantID) ([]*catalog.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*catalog.Product, 0)
	for _, p := range s.products {
		if p.TenantID == tenantID {
			cp := *p
			result = append(result, &cp)
		}
	}
	sortInserted(s, result, func(p *catalog.Product) string { return p.ID.String() })
	return result, nil
}

// UpdateProduct replaces a product. The dashboard core never calls it;
// it exists for seeding and catalog tooling.
func (s *Store) UpdateProduct(_ context.Context, p *catalog.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.products[p.ID.String()]; !exists {
		return restro.ErrProductNotFound
	}
	cp := *p
	s.products[p.ID.String()] = &cp
	return nil
}

// DeleteProduct removes a product. Orders keep their item snapshots.
func (s *Store) DeleteProduct(_ context.Context, productID id.ProductID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.products[productID.String()]; !exists {
		return restro.ErrProductNotFound
	}
	delete(s.products, productID.String())
	delete(s.inserted, productID.String())
	return nil
}

// ==================== Order Store ====================

func (s *Store) CreateOrder(_ context.Context, o *order.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.orders[o.ID.String()]; exists {
		return restro.ErrAlreadyExists
	}
	s.orders[o.ID.String()] = o.Clone()
	s.stamp(o.ID.String())
	return nil
}

func (s *Store) GetOrder(_ context.Context, orderID id.OrderID) (*order.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if o, ok := s.orders[orderID.String()]; ok {
		return o.Clone(), nil
	}
	return nil, restro.ErrOrderNotFound
}

func (s *Store) ListOrders(_ context.Context, tenantID id.TenantID, opts order.ListOpts) ([]*order.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*order.Order, 0)
	for _, o := range s.orders {
		if o.TenantID != tenantID {
			continue
		}
		if opts.Status != "" && o.Status != opts.Status {
			continue
		}
		result = append(result, o.Clone())
	}

	sort.SliceStable(result, func(i, j int) bool {
		a, b := result[i], result[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return s.inserted[a.ID.String()] > s.inserted[b.ID.String()]
	})

	return paginate(result, opts.Offset, opts.Limit), nil
}

// UpdateOrder replaces the order together with its whole item set.
func (s *Store) UpdateOrder(_ context.Context, o *order.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.orders[o.ID.String()]; !exists {
		return restro.ErrOrderNotFound
	}
	s.orders[o.ID.String()] = o.Clone()
	return nil
}

// DeleteOrder removes the order and, with it, every item it owns.
func (s *Store) DeleteOrder(_ context.Context, orderID id.OrderID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.orders[orderID.String()]; !exists {
		return restro.ErrOrderNotFound
	}
	delete(s.orders, orderID.String())
	delete(s.inserted, orderID.String())
	return nil
}

// CountOrderItems counts stored items referencing orderID.
func (s *Store) CountOrderItems(orderID id.OrderID) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, o := range s.orders {
		for _, it := range o.Items {
			if it.OrderID == orderID {
				n++
			}
		}
	}
	return n
}

// ==================== Inventory Store ====================

func (s *Store) CreateIngredient(_ context.Context, ing *inventory.Ingredient) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.ingredients[ing.ID.String()]; exists {
		return restro.ErrAlreadyExists
	}
	s.ingredients[ing.ID.String()] = ing.Clone()
	s.stamp(ing.ID.String())
	return nil
}

func (s *Store) GetIngredient(_ context.Context, ingredientID id.IngredientID) (*inventory.Ingredient, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if ing, ok := s.ingredients[ingredientID.String()]; ok {
		return ing.Clone(), nil
	}
	return nil, restro.ErrIngredientNotFound
}

func (s *Store) ListIngredients(_ context.Context, tenantID id.TenantID) ([]*inventory.Ingredient, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*inventory.Ingredient, 0)
	for _, ing := range s.ingredients {
		if ing.TenantID == tenantID {
			result = append(result, ing.Clone())
		}
	}
	sortInserted(s, result, func(ing *inventory.Ingredient) string { return ing.ID.String() })
	return result, nil
}

func (s *Store) UpdateIngredient(_ context.Context, ing *inventory.Ingredient) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.ingredients[ing.ID.String()]; !exists {
		return restro.ErrIngredientNotFound
	}
	s.ingredients[ing.ID.String()] = ing.Clone()
	return nil
}

func (s *Store) DeleteIngredient(_ context.Context, ingredientID id.IngredientID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.ingredients[ingredientID.String()]; !exists {
		return restro.ErrIngredientNotFound
	}
	delete(s.ingredients, ingredientID.String())
	delete(s.inserted, ingredientID.String())
	return nil
}

// ==================== Table Store ====================

func (s *Store) CreateTable(_ context.Context, t *table.Table) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.tables[t.ID.String()]; exists {
		return restro.ErrAlreadyExists
	}
	s.tables[t.ID.String()] = t.Clone()
	s.stamp(t.ID.String())
	return nil
}

func (s *Store) GetTable(_ context.Context, tableID id.TableID) (*table.Table, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if t, ok := s.tables[tableID.String()]; ok {
		return t.Clone(), nil
	}
	return nil, restro.ErrTableNotFound
}

func (s *Store) ListTables(_ context.Context, tenantID id.TenantID) ([]*table.Table, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*table.Table, 0)
	for _, t := range s.tables {
		if t.TenantID == tenantID {
			result = append(result, t.Clone())
		}
	}
	sort.SliceStable(result, func(i, j int) bool { return result[i].Number < result[j].Number })
	return result, nil
}

func (s *Store) UpdateTable(_ context.Context, t *table.Table) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.tables[t.ID.String()]; !exists {
		return restro.ErrTableNotFound
	}
	s.tables[t.ID.String()] = t.Clone()
	return nil
}

// ==================== Core ====================

// Migrate is a no-op for the memory store.
func (s *Store) Migrate(_ context.Context) error { return nil }

func (s *Store) Ping(_ context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return restro.ErrStoreClosed
	}
	return nil
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func paginate[T any](items []T, offset, limit int) []T {
	start := offset
	if start > len(items) {
		start = len(items)
	}
	end := start + limit
	if limit == 0 || end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}

package restro

import (
	"context"
	"fmt"
	"strings"

	"github.com/xraph/restro/catalog"
	"github.com/xraph/restro/confirm"
	"github.com/xraph/restro/entitlement"
	"github.com/xraph/restro/id"
	"github.com/xraph/restro/order"
	"github.com/xraph/restro/table"
	"github.com/xraph/restro/tenant"
	"github.com/xraph/restro/types"
)

// ──────────────────────────────────────────────────
// Catalog reads
// ──────────────────────────────────────────────────

// Products lists the tenant's menu through filter.
func (s *Session) Products(ctx context.Context, filter catalog.Filter) ([]*catalog.Product, error) {
	if _, err := s.view(ctx); err != nil {
		return nil, err
	}
	if !filter.CategoryID.IsNil() {
		if err := s.category(ctx, filter.CategoryID); err != nil {
			return nil, err
		}
	}
	products, err := s.engine.store.ListProducts(ctx, s.tenantID)
	if err != nil {
		return nil, err
	}
	return filter.Apply(products), nil
}

// category checks that categoryID names one of the tenant's categories.
func (s *Session) category(ctx context.Context, categoryID id.CategoryID) error {
	categories, err := s.engine.store.ListCategories(ctx, s.tenantID)
	if err != nil {
		return err
	}
	for _, c := range categories {
		if c.ID == categoryID {
			return nil
		}
	}
	return ErrCategoryNotFound
}

// Categories lists the tenant's menu categories.
func (s *Session) Categories(ctx context.Context) ([]*catalog.Category, error) {
	if _, err := s.view(ctx); err != nil {
		return nil, err
	}
	return s.engine.store.ListCategories(ctx, s.tenantID)
}

func (s *Session) product(ctx context.Context, productID id.ProductID) (*catalog.Product, error) {
	p, err := s.engine.store.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !s.owned(p.TenantID) {
		return nil, ErrProductNotFound
	}
	return p, nil
}

// ──────────────────────────────────────────────────
// Cart
// ──────────────────────────────────────────────────

// AddToCart adds one unit of the product, merging with an existing line.
func (s *Session) AddToCart(ctx context.Context, productID id.ProductID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.view(ctx); err != nil {
		return err
	}
	p, err := s.product(ctx, productID)
	if err != nil {
		return err
	}
	if !p.IsAvailable {
		return invalid("product", p.Name+" is unavailable")
	}
	if err := s.checkCurrency(p); err != nil {
		return err
	}

	s.cart.Add(p)
	return nil
}

// RemoveFromCart drops the product's line.
func (s *Session) RemoveFromCart(productID id.ProductID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.Remove(productID)
}

// UpdateQuantity changes a line's quantity by delta, never below one.
func (s *Session) UpdateQuantity(productID id.ProductID, delta int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.UpdateQuantity(productID, delta)
}

// UpdateNote sets the kitchen note of a line.
func (s *Session) UpdateNote(productID id.ProductID, note string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.UpdateNote(productID, note)
}

// Cart returns the current lines.
func (s *Session) Cart() []order.Line {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.Lines()
}

// CartTotal is Σ price × quantity over the cart.
func (s *Session) CartTotal() types.Money {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.Total(s.currency)
}

// ClearCart empties the cart and leaves edit mode.
func (s *Session) ClearCart() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cart.Reset()
	s.editing = nil
}

// ──────────────────────────────────────────────────
// Editing
// ──────────────────────────────────────────────────

// BeginEdit loads a PENDING order into the cart. Items whose product no
// longer exists are dropped from the cart.
func (s *Session) BeginEdit(ctx context.Context, orderID id.OrderID) (*order.Order, error) {
	const op = "order.edit"

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.guard(ctx, op); err != nil {
		return nil, err
	}
	o, err := s.order(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !o.Editable() {
		return nil, s.refuse(ctx, op, fmt.Errorf("%w: order is %s", ErrInvalidTransition, o.Status))
	}

	products, err := s.engine.store.ListProducts(ctx, s.tenantID)
	if err != nil {
		return nil, err
	}
	byID := make(map[id.ProductID]*catalog.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	s.cart.Load(o.Items, func(pid id.ProductID) (*catalog.Product, bool) {
		p, ok := byID[pid]
		return p, ok
	})
	s.editing = o.Clone()

	return o, nil
}

// CancelEdit leaves edit mode and empties the cart.
func (s *Session) CancelEdit() {
	s.ClearCart()
}

// Editing returns the order being edited, or nil.
func (s *Session) Editing() *order.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.editing == nil {
		return nil
	}
	return s.editing.Clone()
}

// ──────────────────────────────────────────────────
// Submission
// ──────────────────────────────────────────────────

// SubmitRequest carries the order form.
type SubmitRequest struct {
	Type          order.Type
	TableID       id.TableID
	CustomerID    string
	CustomerName  string
	CustomerPhone string
	Address       string
	PaymentMethod order.PaymentMethod
}

// Submit turns the cart into an order, or saves the order being edited.
// Validation runs before anything is written. Item prices are snapshotted
// from the catalog at this point.
func (s *Session) Submit(ctx context.Context, req SubmitRequest) (*order.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	op := "order.submit"
	if s.editing != nil {
		op = "order.update"
	}

	t, err := s.guard(ctx, op)
	if err != nil {
		return nil, err
	}
	if err := s.validateSubmit(ctx, t, req); err != nil {
		return nil, s.refuse(ctx, op, err)
	}
	if err := s.repriceCart(ctx); err != nil {
		return nil, s.refuse(ctx, op, err)
	}

	if s.editing != nil {
		return s.saveEdit(ctx, op, req)
	}
	return s.createOrder(ctx, req)
}

func (s *Session) validateSubmit(ctx context.Context, t *tenant.Tenant, req SubmitRequest) error {
	if !req.Type.Valid() {
		return invalid("type", "unknown order type "+string(req.Type))
	}

	switch req.Type {
	case order.TypeDineIn:
		if req.TableID.IsNil() {
			return invalid("table", "select a table")
		}
	case order.TypeDelivery:
		if !entitlement.HasPermission(t, entitlement.FeatureDelivery.RequiredPlan()) {
			return PermissionError{Feature: entitlement.FeatureDelivery, Required: entitlement.FeatureDelivery.RequiredPlan()}
		}
		if blank(req.CustomerName) || blank(req.CustomerPhone) || blank(req.Address) {
			return invalid("customer", "delivery needs name, phone and address")
		}
	}

	if s.cart.IsEmpty() {
		return invalid("cart", "is empty")
	}

	if req.Type == order.TypeDineIn {
		tables, err := s.engine.store.ListTables(ctx, s.tenantID)
		if err != nil {
			return err
		}
		if !table.IsSelectable(tables, s.editingTable(), req.TableID) {
			return invalid("table", "table is not available")
		}
	}

	return nil
}

// repriceCart refreshes every line's product snapshot from the catalog.
func (s *Session) repriceCart(ctx context.Context) error {
	for _, l := range s.cart.Lines() {
		p, err := s.product(ctx, l.Product.ID)
		if IsNotFound(err) {
			return invalid("cart", l.Product.Name+" is no longer on the menu")
		}
		if err != nil {
			return err
		}
		if err := s.checkCurrency(p); err != nil {
			return err
		}
		s.cart.Reprice(p)
	}
	return nil
}

// checkCurrency refuses products priced outside the tenant's currency;
// cart totals cannot mix currencies.
func (s *Session) checkCurrency(p *catalog.Product) error {
	if p.Price.Currency != types.Zero(s.currency).Currency {
		return invalid("product", fmt.Sprintf("%s is priced in %s, not %s",
			p.Name, strings.ToUpper(p.Price.Currency), strings.ToUpper(s.currency)))
	}
	return nil
}

func (s *Session) createOrder(ctx context.Context, req SubmitRequest) (*order.Order, error) {
	now := s.engine.Now()
	o := &order.Order{
		Entity:        types.NewEntity(now),
		ID:            id.NewOrderID(),
		TenantID:      s.tenantID,
		Type:          req.Type,
		Status:        order.StatusPending,
		PaymentStatus: order.PaymentPending,
		PaymentMethod: req.PaymentMethod,
		TotalAmount:   types.Zero(s.currency),
	}
	applyForm(o, req)
	o.SetItems(s.cart.Items())

	if err := s.engine.store.CreateOrder(ctx, o); err != nil {
		return nil, err
	}

	s.cart.Reset()
	s.engine.logger.Info("order created",
		"tenant_id", s.tenantID.String(),
		"order_id", o.ID.String(),
		"type", o.Type,
		"total", o.TotalAmount.String(),
	)
	s.engine.plugins.EmitOrderCreated(ctx, o.Clone())

	return o, nil
}

// saveEdit replaces the edited order's items and form fields in one
// store write. Identity, creation time and payment state are kept.
func (s *Session) saveEdit(ctx context.Context, op string, req SubmitRequest) (*order.Order, error) {
	o, err := s.order(ctx, s.editing.ID)
	if err != nil {
		return nil, err
	}
	if !o.Editable() {
		return nil, s.refuse(ctx, op, fmt.Errorf("%w: order is %s", ErrInvalidTransition, o.Status))
	}

	o.Type = req.Type
	if req.PaymentMethod != "" {
		o.PaymentMethod = req.PaymentMethod
	}
	applyForm(o, req)
	o.SetItems(s.cart.Items())
	o.Touch(s.engine.Now())

	if err := s.engine.store.UpdateOrder(ctx, o); err != nil {
		return nil, err
	}

	s.cart.Reset()
	s.editing = nil
	s.engine.logger.Info("order updated",
		"tenant_id", s.tenantID.String(),
		"order_id", o.ID.String(),
		"total", o.TotalAmount.String(),
	)
	s.engine.plugins.EmitOrderUpdated(ctx, o.Clone())

	return o, nil
}

func applyForm(o *order.Order, req SubmitRequest) {
	o.TableID = id.Nil
	if req.Type == order.TypeDineIn {
		o.TableID = req.TableID
	}
	o.CustomerID = strings.TrimSpace(req.CustomerID)
	o.CustomerName = strings.TrimSpace(req.CustomerName)
	o.CustomerPhone = strings.TrimSpace(req.CustomerPhone)
	o.DeliveryAddress = ""
	if req.Type == order.TypeDelivery {
		o.DeliveryAddress = strings.TrimSpace(req.Address)
	}
}

func (s *Session) editingTable() *id.TableID {
	if s.editing == nil || s.editing.TableID.IsNil() {
		return nil
	}
	tid := s.editing.TableID
	return &tid
}

// ──────────────────────────────────────────────────
// Order management
// ──────────────────────────────────────────────────

// Accept moves a PENDING order to PREPARING. eta is the preparation
// estimate given to the customer.
func (s *Session) Accept(ctx context.Context, orderID id.OrderID, eta string) (*order.Order, error) {
	const op = "order.accept"

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.guard(ctx, op); err != nil {
		return nil, err
	}
	o, err := s.order(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.Status != order.StatusPending {
		return nil, s.refuse(ctx, op, fmt.Errorf("%w: order is %s", ErrInvalidTransition, o.Status))
	}
	eta = strings.TrimSpace(eta)
	if eta == "" {
		return nil, s.refuse(ctx, op, invalid("estimated_time", "is required"))
	}

	o.Status = order.StatusPreparing
	o.Touch(s.engine.Now())
	if err := s.engine.store.UpdateOrder(ctx, o); err != nil {
		return nil, err
	}

	s.engine.logger.Info("order accepted",
		"tenant_id", s.tenantID.String(),
		"order_id", o.ID.String(),
		"eta", eta,
	)
	s.engine.plugins.EmitOrderAccepted(ctx, o.Clone(), eta)

	return o, nil
}

// RequestReject asks for confirmation before cancelling a PENDING order.
func (s *Session) RequestReject(ctx context.Context, orderID id.OrderID) (confirm.Pending, error) {
	return s.requestOrderAction(ctx, "order.reject", confirm.ActionRejectOrder, orderID)
}

// RequestRemove asks for confirmation before deleting a PENDING order.
func (s *Session) RequestRemove(ctx context.Context, orderID id.OrderID) (confirm.Pending, error) {
	return s.requestOrderAction(ctx, "order.remove", confirm.ActionRemoveOrder, orderID)
}

func (s *Session) requestOrderAction(ctx context.Context, op string, action confirm.Action, orderID id.OrderID) (confirm.Pending, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.guard(ctx, op); err != nil {
		return confirm.Pending{}, err
	}
	o, err := s.order(ctx, orderID)
	if err != nil {
		return confirm.Pending{}, err
	}
	if !o.Editable() {
		return confirm.Pending{}, s.refuse(ctx, op, fmt.Errorf("%w: order is %s", ErrInvalidTransition, o.Status))
	}
	return s.request(action, o.ID), nil
}

func (s *Session) rejectOrder(ctx context.Context, orderID id.OrderID) error {
	const op = "order.reject"

	if _, err := s.guard(ctx, op); err != nil {
		return err
	}
	o, err := s.order(ctx, orderID)
	if err != nil {
		return err
	}
	if o.Status != order.StatusPending {
		return s.refuse(ctx, op, fmt.Errorf("%w: order is %s", ErrInvalidTransition, o.Status))
	}

	o.Status = order.StatusCancelled
	o.Touch(s.engine.Now())
	if err := s.engine.store.UpdateOrder(ctx, o); err != nil {
		return err
	}

	s.engine.logger.Info("order rejected",
		"tenant_id", s.tenantID.String(),
		"order_id", o.ID.String(),
	)
	s.engine.plugins.EmitOrderRejected(ctx, o.Clone())
	return nil
}

func (s *Session) removeOrder(ctx context.Context, orderID id.OrderID) error {
	const op = "order.remove"

	if _, err := s.guard(ctx, op); err != nil {
		return err
	}
	o, err := s.order(ctx, orderID)
	if err != nil {
		return err
	}
	if !o.Editable() {
		return s.refuse(ctx, op, fmt.Errorf("%w: order is %s", ErrInvalidTransition, o.Status))
	}

	if err := s.engine.store.DeleteOrder(ctx, o.ID); err != nil {
		return err
	}
	if s.editing != nil && s.editing.ID == o.ID {
		s.editing = nil
		s.cart.Reset()
	}

	s.engine.logger.Info("order removed",
		"tenant_id", s.tenantID.String(),
		"order_id", o.ID.String(),
	)
	s.engine.plugins.EmitOrderRemoved(ctx, o)
	return nil
}

// ──────────────────────────────────────────────────
// Order reads
// ──────────────────────────────────────────────────

// OrderQuery narrows Orders.
type OrderQuery struct {
	Status order.Status
	Range  order.DateRange
}

// Orders lists the tenant's orders, newest first.
func (s *Session) Orders(ctx context.Context, q OrderQuery) ([]*order.Order, error) {
	if _, err := s.view(ctx); err != nil {
		return nil, err
	}
	orders, err := s.engine.store.ListOrders(ctx, s.tenantID, order.ListOpts{Status: q.Status})
	if err != nil {
		return nil, err
	}
	return q.Range.Filter(orders), nil
}

// Order retrieves one of the tenant's orders.
func (s *Session) Order(ctx context.Context, orderID id.OrderID) (*order.Order, error) {
	if _, err := s.view(ctx); err != nil {
		return nil, err
	}
	return s.order(ctx, orderID)
}

// PendingCount counts orders waiting for acceptance.
func (s *Session) PendingCount(ctx context.Context) (int, error) {
	orders, err := s.Orders(ctx, OrderQuery{})
	if err != nil {
		return 0, err
	}
	return order.PendingCount(orders), nil
}

func (s *Session) order(ctx context.Context, orderID id.OrderID) (*order.Order, error) {
	o, err := s.engine.store.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !s.owned(o.TenantID) {
		return nil, ErrOrderNotFound
	}
	return o, nil
}

func blank(s string) bool { return strings.TrimSpace(s) == "" }

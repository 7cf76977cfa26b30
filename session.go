package restro

import (
	"context"
	"sync"

	"github.com/xraph/restro/confirm"
	"github.com/xraph/restro/entitlement"
	"github.com/xraph/restro/id"
	"github.com/xraph/restro/order"
	"github.com/xraph/restro/tenant"
)

// Session is one tenant's sequential command surface. It holds only
// transient state (the cart, the order being edited, pending
// confirmations and dismissed alerts); every entity it shows is read from
// the store on demand, and every mutation is one store call.
type Session struct {
	engine   *Engine
	tenantID id.TenantID
	currency string

	mu            sync.Mutex
	cart          *order.Cart
	editing       *order.Order
	confirmations *confirm.Book
	dismissed     map[id.IngredientID]struct{}
	alertsKey     string
}

// OpenSession starts a session for an existing tenant.
func (e *Engine) OpenSession(ctx context.Context, tenantID id.TenantID) (*Session, error) {
	t, err := e.store.GetTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	return &Session{
		engine:        e,
		tenantID:      t.ID,
		currency:      t.Currency,
		cart:          order.NewCart(),
		confirmations: confirm.NewBook(),
		dismissed:     make(map[id.IngredientID]struct{}),
	}, nil
}

// TenantID returns the session's tenant.
func (s *Session) TenantID() id.TenantID { return s.tenantID }

// Tenant reloads the session's tenant.
func (s *Session) Tenant(ctx context.Context) (*tenant.Tenant, error) {
	return s.engine.store.GetTenant(ctx, s.tenantID)
}

// TrialStatus returns the tenant's trial countdown.
func (s *Session) TrialStatus(ctx context.Context) (entitlement.TrialStatus, error) {
	return s.engine.TrialStatus(ctx, s.tenantID)
}

// HasPermission reports whether the tenant's plan reaches required.
func (s *Session) HasPermission(ctx context.Context, required tenant.Plan) (bool, error) {
	t, err := s.Tenant(ctx)
	if err != nil {
		return false, err
	}
	return entitlement.HasPermission(t, required), nil
}

// ──────────────────────────────────────────────────
// Access checks
// ──────────────────────────────────────────────────

// view loads the tenant for a read. Once the trial has expired the
// operational surface is closed.
func (s *Session) view(ctx context.Context) (*tenant.Tenant, error) {
	t, err := s.Tenant(ctx)
	if err != nil {
		return nil, err
	}
	if entitlement.IsLocked(t, s.engine.Now()) {
		return nil, ErrTrialExpired
	}
	return t, nil
}

// guard loads the tenant for a mutation and refuses read-only tenants,
// then expired trials. Nothing has been changed when it fails.
func (s *Session) guard(ctx context.Context, op string) (*tenant.Tenant, error) {
	t, err := s.Tenant(ctx)
	if err != nil {
		return nil, err
	}
	if entitlement.IsReadOnly(t) {
		return nil, s.refuse(ctx, op, ErrReadOnly)
	}
	if entitlement.IsLocked(t, s.engine.Now()) {
		return nil, s.refuse(ctx, op, ErrTrialExpired)
	}
	return t, nil
}

func (s *Session) refuse(ctx context.Context, op string, err error) error {
	return s.engine.refuse(ctx, s.tenantID, op, err)
}

// owned reports whether a loaded record belongs to the session tenant.
func (s *Session) owned(tenantID id.TenantID) bool {
	return tenantID == s.tenantID
}

// ──────────────────────────────────────────────────
// Confirmations
// ──────────────────────────────────────────────────

// Confirm performs the destructive command the token was issued for. The
// command's checks run again; the token is consumed either way.
func (s *Session) Confirm(ctx context.Context, token id.ConfirmationID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.confirmations.Take(token)
	if err != nil {
		return ErrConfirmationNotFound
	}

	switch p.Action {
	case confirm.ActionRejectOrder:
		return s.rejectOrder(ctx, p.Target)
	case confirm.ActionRemoveOrder:
		return s.removeOrder(ctx, p.Target)
	case confirm.ActionCancelReservation:
		return s.cancelReservation(ctx, p.Target)
	case confirm.ActionDeleteIngredient:
		return s.deleteIngredient(ctx, p.Target)
	default:
		return ErrConfirmationNotFound
	}
}

// Discard drops a pending confirmation without acting on it.
func (s *Session) Discard(token id.ConfirmationID) bool {
	return s.confirmations.Discard(token)
}

// PendingConfirmations returns the number of unconfirmed requests.
func (s *Session) PendingConfirmations() int {
	return s.confirmations.Len()
}

func (s *Session) request(action confirm.Action, target id.ID) confirm.Pending {
	return s.confirmations.Request(action, target, s.engine.Now())
}

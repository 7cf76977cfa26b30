// Package billing is the boundary to the payment processor: the outbound
// checkout request and the inbound subscription lifecycle events.
package billing

import (
	"context"
	"errors"

	"github.com/xraph/restro/id"
	"github.com/xraph/restro/tenant"
)

// Metadata keys carried on checkout sessions and subscriptions.
const (
	metadataTenant = "tenantId"
	metadataPlan   = "plan"
)

var (
	// ErrUnsupportedPlan is returned for plans that have no paid checkout.
	ErrUnsupportedPlan = errors.New("billing: plan has no checkout")
	// ErrIgnoredEvent marks provider events that carry nothing to apply.
	ErrIgnoredEvent = errors.New("billing: event ignored")
	// ErrInvalidSignature is returned when a webhook fails verification.
	ErrInvalidSignature = errors.New("billing: invalid webhook signature")
	// ErrNoSecret is returned when a webhook arrives and no signing secret
	// is configured.
	ErrNoSecret = errors.New("billing: webhook secret not configured")
)

// Checkout is a payment session the tenant is redirected to.
type Checkout struct {
	SessionID string `json:"session_id"`
	URL       string `json:"url"`
}

// Processor creates checkout sessions for paid plans. The plan takes
// effect later, when the processor reports the subscription.
type Processor interface {
	CreateCheckout(ctx context.Context, tenantID id.TenantID, plan tenant.Plan) (*Checkout, error)
}

// ProcessorFunc adapts a function to Processor.
type ProcessorFunc func(ctx context.Context, tenantID id.TenantID, plan tenant.Plan) (*Checkout, error)

func (f ProcessorFunc) CreateCheckout(ctx context.Context, tenantID id.TenantID, plan tenant.Plan) (*Checkout, error) {
	return f(ctx, tenantID, plan)
}

// Paid reports whether plan is sold through the processor.
func Paid(plan tenant.Plan) bool {
	return plan == tenant.PlanPro || plan == tenant.PlanPremium
}

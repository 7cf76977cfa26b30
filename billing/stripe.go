package billing

import (
	"context"
	"fmt"

	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/checkout/session"

	"github.com/xraph/restro/id"
	"github.com/xraph/restro/tenant"
)

// StripeConfig configures the Stripe checkout processor.
type StripeConfig struct {
	// SecretKey is the API key used to create checkout sessions.
	SecretKey string
	// Prices maps each paid plan to its recurring price ID.
	Prices map[tenant.Plan]string
	// SuccessURL and CancelURL are where the tenant lands afterwards.
	SuccessURL string
	CancelURL  string
}

// StripeProcessor creates subscription checkout sessions through Stripe.
type StripeProcessor struct {
	cfg    StripeConfig
	client *session.Client
}

// StripeOption configures a StripeProcessor.
type StripeOption func(*StripeProcessor)

// WithStripeBackend replaces the API backend, e.g. to target a local
// server.
func WithStripeBackend(b stripe.Backend) StripeOption {
	return func(p *StripeProcessor) { p.client.B = b }
}

// NewStripeProcessor returns a Processor backed by Stripe Checkout.
func NewStripeProcessor(cfg StripeConfig, opts ...StripeOption) *StripeProcessor {
	p := &StripeProcessor{
		cfg:    cfg,
		client: &session.Client{B: stripe.GetBackend(stripe.APIBackend), Key: cfg.SecretKey},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// CreateCheckout opens a subscription checkout for plan. The session
// carries the tenant as client reference and both tenant and plan as
// metadata, so the completion event can be mapped back.
func (p *StripeProcessor) CreateCheckout(ctx context.Context, tenantID id.TenantID, plan tenant.Plan) (*Checkout, error) {
	if !Paid(plan) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedPlan, plan)
	}
	price := p.cfg.Prices[plan]
	if price == "" {
		return nil, fmt.Errorf("%w: no price configured for %s", ErrUnsupportedPlan, plan)
	}

	metadata := map[string]string{
		metadataTenant: tenantID.String(),
		metadataPlan:   string(plan),
	}
	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		ClientReferenceID: stripe.String(tenantID.String()),
		SuccessURL:        stripe.String(p.cfg.SuccessURL),
		CancelURL:         stripe.String(p.cfg.CancelURL),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{Price: stripe.String(price), Quantity: stripe.Int64(1)},
		},
		Metadata: metadata,
		SubscriptionData: &stripe.CheckoutSessionSubscriptionDataParams{
			Metadata: metadata,
		},
	}
	params.Context = ctx

	cs, err := p.client.New(params)
	if err != nil {
		return nil, fmt.Errorf("billing: create checkout: %w", err)
	}
	return &Checkout{SessionID: cs.ID, URL: cs.URL}, nil
}

package billing

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/webhook"

	"github.com/xraph/restro/id"
	"github.com/xraph/restro/subscription"
	"github.com/xraph/restro/tenant"
)

// DefaultTolerance is the maximum age of a signed webhook.
const DefaultTolerance = webhook.DefaultTolerance

// EventType is a subscription lifecycle notification.
type EventType string

const (
	EventCheckoutCompleted    EventType = "checkout.completed"
	EventSubscriptionCreated  EventType = "subscription.created"
	EventSubscriptionUpdated  EventType = "subscription.updated"
	EventSubscriptionCanceled EventType = "subscription.canceled"
)

// providerTypes maps processor event names onto EventType.
var providerTypes = map[stripe.EventType]EventType{
	stripe.EventTypeCheckoutSessionCompleted:    EventCheckoutCompleted,
	stripe.EventTypeCustomerSubscriptionCreated: EventSubscriptionCreated,
	stripe.EventTypeCustomerSubscriptionUpdated: EventSubscriptionUpdated,
	stripe.EventTypeCustomerSubscriptionDeleted: EventSubscriptionCanceled,

	stripe.EventType(EventCheckoutCompleted):    EventCheckoutCompleted,
	stripe.EventType(EventSubscriptionCreated):  EventSubscriptionCreated,
	stripe.EventType(EventSubscriptionUpdated):  EventSubscriptionUpdated,
	stripe.EventType(EventSubscriptionCanceled): EventSubscriptionCanceled,
}

// Event is a decoded lifecycle notification. TenantID and Plan may be
// unset on subscription events; they are then taken from the stored
// subscription with the same SubscriptionID.
type Event struct {
	ID             string              `json:"id,omitempty"`
	Type           EventType           `json:"type"`
	TenantID       id.TenantID         `json:"tenant_id"`
	Plan           tenant.Plan         `json:"plan,omitempty"`
	SubscriptionID string              `json:"subscription_id,omitempty"`
	Status         subscription.Status `json:"status"`
	PeriodStart    *time.Time          `json:"period_start,omitempty"`
	PeriodEnd      *time.Time          `json:"period_end,omitempty"`
	CanceledAt     *time.Time          `json:"canceled_at,omitempty"`
}

// ConstructEvent verifies the signature header against payload and
// decodes the event. Verification failures wrap ErrInvalidSignature.
func ConstructEvent(payload []byte, header, secret string, tolerance time.Duration) (*Event, error) {
	se, err := webhook.ConstructEventWithOptions(payload, header, secret, webhook.ConstructEventOptions{
		Tolerance:                tolerance,
		IgnoreAPIVersionMismatch: true,
	})
	switch {
	case errors.Is(err, webhook.ErrNotSigned),
		errors.Is(err, webhook.ErrInvalidHeader),
		errors.Is(err, webhook.ErrNoValidSignature),
		errors.Is(err, webhook.ErrTooOld):
		return nil, fmt.Errorf("%w: %w", ErrInvalidSignature, err)
	case err != nil:
		return nil, fmt.Errorf("billing: decode event: %w", err)
	}
	return FromStripe(&se)
}

// DecodeEvent parses an unsigned processor event body. Event types with
// nothing to apply return ErrIgnoredEvent.
func DecodeEvent(body []byte) (*Event, error) {
	var se stripe.Event
	if err := json.Unmarshal(body, &se); err != nil {
		return nil, fmt.Errorf("billing: decode event: %w", err)
	}
	return FromStripe(&se)
}

// FromStripe maps a processor event onto Event.
func FromStripe(se *stripe.Event) (*Event, error) {
	typ, ok := providerTypes[se.Type]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrIgnoredEvent, se.Type)
	}
	if se.Data == nil || len(se.Data.Raw) == 0 {
		return nil, fmt.Errorf("billing: event %s has no object", se.ID)
	}

	ev := &Event{ID: se.ID, Type: typ}
	var metadata map[string]string

	switch typ {
	case EventCheckoutCompleted:
		var cs stripe.CheckoutSession
		if err := json.Unmarshal(se.Data.Raw, &cs); err != nil {
			return nil, fmt.Errorf("billing: decode checkout session: %w", err)
		}
		metadata = cs.Metadata
		if cs.Subscription != nil {
			ev.SubscriptionID = cs.Subscription.ID
		}
		ev.Status = subscription.StatusActive
		if cs.ClientReferenceID != "" {
			metadata = withTenant(metadata, cs.ClientReferenceID)
		}
	default:
		var sub stripe.Subscription
		if err := json.Unmarshal(se.Data.Raw, &sub); err != nil {
			return nil, fmt.Errorf("billing: decode subscription: %w", err)
		}
		metadata = sub.Metadata
		ev.SubscriptionID = sub.ID
		ev.PeriodStart = unixTime(sub.CurrentPeriodStart)
		ev.PeriodEnd = unixTime(sub.CurrentPeriodEnd)
		ev.CanceledAt = unixTime(sub.CanceledAt)
		if typ == EventSubscriptionCanceled {
			ev.Status = subscription.StatusCanceled
		} else {
			ev.Status = subscription.ParseStatus(string(sub.Status))
		}
	}

	if ref := metadata[metadataTenant]; ref != "" {
		tid, err := id.ParseTenantID(ref)
		if err != nil {
			return nil, fmt.Errorf("billing: tenant reference: %w", err)
		}
		ev.TenantID = tid
	}

	if raw := metadata[metadataPlan]; raw != "" {
		plan, ok := tenant.ParsePlan(raw)
		if !ok {
			return nil, fmt.Errorf("billing: unknown plan %q", raw)
		}
		ev.Plan = plan
	}

	if typ == EventCheckoutCompleted && (ev.TenantID.IsNil() || ev.Plan == "") {
		return nil, fmt.Errorf("billing: checkout event %s lacks tenant or plan", se.ID)
	}

	return ev, nil
}

// withTenant returns a copy of md carrying ref as the tenant reference.
func withTenant(md map[string]string, ref string) map[string]string {
	out := make(map[string]string, len(md)+1)
	for k, v := range md {
		out[k] = v
	}
	out[metadataTenant] = ref
	return out
}

func unixTime(sec int64) *time.Time {
	if sec <= 0 {
		return nil
	}
	t := time.Unix(sec, 0).UTC()
	return &t
}

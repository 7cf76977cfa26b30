package billing_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/xraph/restro/billing"
	"github.com/xraph/restro/id"
	"github.com/xraph/restro/subscription"
	"github.com/xraph/restro/tenant"
)

func TestDecodeCheckoutCompleted(t *testing.T) {
	tid := id.NewTenantID()
	body := fmt.Sprintf(`{
		"id": "evt_1",
		"type": "checkout.session.completed",
		"data": {"object": {
			"id": "cs_1",
			"client_reference_id": %q,
			"subscription": "sub_live_1",
			"metadata": {"plan": "premium"}
		}}
	}`, tid.String())

	ev, err := billing.DecodeEvent([]byte(body))
	if err != nil {
		t.Fatalf("DecodeEvent: %v", err)
	}
	if ev.Type != billing.EventCheckoutCompleted {
		t.Errorf("Type: got %s", ev.Type)
	}
	if ev.TenantID != tid {
		t.Errorf("TenantID: got %s, want %s", ev.TenantID, tid)
	}
	if ev.Plan != tenant.PlanPremium {
		t.Errorf("Plan: got %s, want PREMIUM", ev.Plan)
	}
	if ev.SubscriptionID != "sub_live_1" {
		t.Errorf("SubscriptionID: got %q", ev.SubscriptionID)
	}
	if ev.Status != subscription.StatusActive {
		t.Errorf("Status: got %s", ev.Status)
	}
}

func TestDecodeCheckoutExpandedSubscription(t *testing.T) {
	tid := id.NewTenantID()
	body := fmt.Sprintf(`{"id":"evt_3","type":"checkout.session.completed","data":{"object":{
		"id":"cs_3","subscription":{"id":"sub_live_3","object":"subscription","status":"active"},
		"metadata":{"plan":"PRO","tenantId":%q}
	}}}`, tid)

	ev, err := billing.DecodeEvent([]byte(body))
	if err != nil {
		t.Fatalf("DecodeEvent: %v", err)
	}
	if ev.SubscriptionID != "sub_live_3" {
		t.Errorf("SubscriptionID: got %q", ev.SubscriptionID)
	}
	if ev.TenantID != tid {
		t.Errorf("TenantID: got %s, want %s", ev.TenantID, tid)
	}
}

func TestDecodeSubscriptionEvents(t *testing.T) {
	tests := []struct {
		name       string
		typ        string
		status     string
		wantType   billing.EventType
		wantStatus subscription.Status
	}{
		{"created", "customer.subscription.created", "active", billing.EventSubscriptionCreated, subscription.StatusActive},
		{"updated past due", "customer.subscription.updated", "past_due", billing.EventSubscriptionUpdated, subscription.StatusPastDue},
		{"updated trialing", "customer.subscription.updated", "trialing", billing.EventSubscriptionUpdated, subscription.StatusActive},
		{"deleted", "customer.subscription.deleted", "active", billing.EventSubscriptionCanceled, subscription.StatusCanceled},
		{"short name", "subscription.updated", "incomplete", billing.EventSubscriptionUpdated, subscription.StatusIncomplete},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := fmt.Sprintf(`{"id":"evt","type":%q,"data":{"object":{
				"id":"sub_live_9","status":%q,
				"current_period_start":1767225600,"current_period_end":1769904000
			}}}`, tt.typ, tt.status)

			ev, err := billing.DecodeEvent([]byte(body))
			if err != nil {
				t.Fatalf("DecodeEvent: %v", err)
			}
			if ev.Type != tt.wantType {
				t.Errorf("Type: got %s, want %s", ev.Type, tt.wantType)
			}
			if ev.Status != tt.wantStatus {
				t.Errorf("Status: got %s, want %s", ev.Status, tt.wantStatus)
			}
			if ev.SubscriptionID != "sub_live_9" {
				t.Errorf("SubscriptionID: got %q", ev.SubscriptionID)
			}
			if !ev.TenantID.IsNil() {
				t.Errorf("TenantID: got %s, want nil", ev.TenantID)
			}
			if ev.PeriodEnd == nil || ev.PeriodEnd.Unix() != 1769904000 {
				t.Errorf("PeriodEnd: got %v", ev.PeriodEnd)
			}
		})
	}
}

func TestDecodeEventErrors(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		ignored bool
	}{
		{"not json", `{`, false},
		{"unhandled type", `{"type":"invoice.paid","data":{"object":{}}}`, true},
		{"checkout without plan", fmt.Sprintf(`{"type":"checkout.session.completed","data":{"object":{"client_reference_id":%q}}}`, id.NewTenantID()), false},
		{"bad tenant", `{"type":"customer.subscription.updated","data":{"object":{"metadata":{"tenantId":"ord_01h2xcejqtf2nbrexx3vqjhp41"}}}}`, false},
		{"bad plan", `{"type":"customer.subscription.updated","data":{"object":{"metadata":{"plan":"GOLD"}}}}`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := billing.DecodeEvent([]byte(tt.body))
			if err == nil {
				t.Fatal("expected error")
			}
			if got := errors.Is(err, billing.ErrIgnoredEvent); got != tt.ignored {
				t.Errorf("ignored: got %v, want %v (%v)", got, tt.ignored, err)
			}
		})
	}
}

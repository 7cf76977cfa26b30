// Package subscription records what the billing provider reports about a
// tenant's paid plan.
package subscription

import (
	"time"

	"github.com/xraph/restro/id"
	"github.com/xraph/restro/tenant"
	"github.com/xraph/restro/types"
)

type Status string

const (
	StatusActive     Status = "active"
	StatusPastDue    Status = "past_due"
	StatusCanceled   Status = "canceled"
	StatusIncomplete Status = "incomplete"
)

// ParseStatus maps a provider status string onto Status. Unknown values
// are treated as incomplete so they never grant access.
func ParseStatus(s string) Status {
	switch Status(s) {
	case StatusActive, StatusPastDue, StatusCanceled, StatusIncomplete:
		return Status(s)
	case "trialing":
		return StatusActive
	default:
		return StatusIncomplete
	}
}

// Grants reports whether a subscription in this status entitles the tenant
// to its plan.
func (s Status) Grants() bool { return s == StatusActive }

type Subscription struct {
	types.Entity
	ID                 id.SubscriptionID `json:"id"`
	TenantID           id.TenantID       `json:"tenant_id"`
	ProviderID         string            `json:"provider_id"`
	Plan               tenant.Plan       `json:"plan"`
	Status             Status            `json:"status"`
	CurrentPeriodStart *time.Time        `json:"current_period_start,omitempty"`
	CurrentPeriodEnd   *time.Time        `json:"current_period_end,omitempty"`
	CanceledAt         *time.Time        `json:"canceled_at,omitempty"`
}

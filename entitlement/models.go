// Package entitlement decides what a tenant may do: plan-tier permission
// checks, trial countdown, and read-only enforcement for demo tenants.
package entitlement

import (
	"time"

	"github.com/xraph/restro/tenant"
)

// Feature names a capability gated by plan tier.
type Feature string

const (
	FeatureDelivery    Feature = "delivery"
	FeatureStockAlerts Feature = "stock_alerts"
	FeatureExport      Feature = "csv_export"
	FeatureMultiBranch Feature = "multi_branch"
)

// RequiredPlan returns the lowest tier that unlocks f.
func (f Feature) RequiredPlan() tenant.Plan {
	switch f {
	case FeatureMultiBranch:
		return tenant.PlanPremium
	case FeatureDelivery, FeatureStockAlerts, FeatureExport:
		return tenant.PlanPro
	default:
		return tenant.PlanStarter
	}
}

// Label is the display name shown on upgrade prompts.
func (f Feature) Label() string {
	switch f {
	case FeatureDelivery:
		return "Delivery"
	case FeatureStockAlerts:
		return "Stock alerts"
	case FeatureExport:
		return "CSV export"
	case FeatureMultiBranch:
		return "Multi-branch"
	default:
		return string(f)
	}
}

// Result is the outcome of a feature check.
type Result struct {
	Allowed  bool        `json:"allowed"`
	Feature  Feature     `json:"feature"`
	Current  tenant.Plan `json:"current,omitempty"`
	Required tenant.Plan `json:"required"`
	Reason   string      `json:"reason,omitempty"`
}

// TrialStatus is the countdown of a tenant's trial. DaysRemaining is nil
// when the tenant has no trial (subscribed or demo).
type TrialStatus struct {
	DaysRemaining *int `json:"days_remaining"`
	IsExpired     bool `json:"is_expired"`
}

const day = 24 * time.Hour

// HasPermission reports whether t's plan ranks at or above required.
// A nil tenant has no permissions.
func HasPermission(t *tenant.Tenant, required tenant.Plan) bool {
	if t == nil {
		return false
	}
	return t.Plan.AtLeast(required)
}

// Check evaluates feature f for t.
func Check(t *tenant.Tenant, f Feature) Result {
	r := Result{Feature: f, Required: f.RequiredPlan()}
	switch {
	case t == nil:
		r.Reason = "no tenant"
	case HasPermission(t, r.Required):
		r.Allowed = true
		r.Current = t.Plan
	default:
		r.Current = t.Plan
		r.Reason = "upgrade required"
	}
	return r
}

// Trial computes the trial countdown at now. Days are rounded up, so a
// trial ending in six days and two hours has seven days remaining; the
// trial is expired once the count reaches zero.
func Trial(t *tenant.Tenant, now time.Time) TrialStatus {
	if t == nil || t.TrialEndsAt == nil {
		return TrialStatus{}
	}

	left := t.TrialEndsAt.Sub(now)
	days := int(left / day)
	if left%day > 0 {
		days++
	}

	return TrialStatus{DaysRemaining: &days, IsExpired: days <= 0}
}

// IsReadOnly reports whether every mutation by t must be refused.
func IsReadOnly(t *tenant.Tenant) bool {
	return t != nil && t.IsDemo
}

// IsLocked reports whether t's operational surface is closed at now:
// the trial has expired and only plan selection remains available.
func IsLocked(t *tenant.Tenant, now time.Time) bool {
	if t == nil || t.IsDemo {
		return false
	}
	return Trial(t, now).IsExpired
}

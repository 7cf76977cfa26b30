package entitlement_test

import (
	"testing"
	"time"

	"github.com/xraph/restro/entitlement"
	"github.com/xraph/restro/tenant"
)

func TestHasPermission(t *testing.T) {
	plans := tenant.Plans()
	for _, have := range plans {
		for _, need := range plans {
			tn := &tenant.Tenant{Plan: have}
			want := have.Level() >= need.Level()
			if got := entitlement.HasPermission(tn, need); got != want {
				t.Errorf("HasPermission(%s, %s): got %v, want %v", have, need, got, want)
			}
		}
	}

	for _, have := range plans {
		if !entitlement.HasPermission(&tenant.Tenant{Plan: have}, tenant.PlanStarter) {
			t.Errorf("HasPermission(%s, STARTER): got false, want true", have)
		}
		premium := entitlement.HasPermission(&tenant.Tenant{Plan: have}, tenant.PlanPremium)
		if premium != (have == tenant.PlanPremium) {
			t.Errorf("HasPermission(%s, PREMIUM): got %v", have, premium)
		}
	}
}

func TestHasPermissionNilTenant(t *testing.T) {
	if entitlement.HasPermission(nil, tenant.PlanStarter) {
		t.Error("nil tenant must have no permissions")
	}
	if r := entitlement.Check(nil, entitlement.FeatureDelivery); r.Allowed {
		t.Error("Check(nil): expected denied")
	}
}

func TestCheck(t *testing.T) {
	tests := []struct {
		name     string
		plan     tenant.Plan
		feature  entitlement.Feature
		allowed  bool
		required tenant.Plan
	}{
		{"starter delivery", tenant.PlanStarter, entitlement.FeatureDelivery, false, tenant.PlanPro},
		{"pro delivery", tenant.PlanPro, entitlement.FeatureDelivery, true, tenant.PlanPro},
		{"starter alerts", tenant.PlanStarter, entitlement.FeatureStockAlerts, false, tenant.PlanPro},
		{"pro export", tenant.PlanPro, entitlement.FeatureExport, true, tenant.PlanPro},
		{"pro multi-branch", tenant.PlanPro, entitlement.FeatureMultiBranch, false, tenant.PlanPremium},
		{"premium multi-branch", tenant.PlanPremium, entitlement.FeatureMultiBranch, true, tenant.PlanPremium},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := entitlement.Check(&tenant.Tenant{Plan: tt.plan}, tt.feature)
			if r.Allowed != tt.allowed {
				t.Errorf("Allowed: got %v, want %v", r.Allowed, tt.allowed)
			}
			if r.Required != tt.required {
				t.Errorf("Required: got %s, want %s", r.Required, tt.required)
			}
		})
	}
}

func TestTrial(t *testing.T) {
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	at := func(d time.Duration) *tenant.Tenant {
		ends := now.Add(d)
		return &tenant.Tenant{Plan: tenant.PlanPro, TrialEndsAt: &ends}
	}

	tests := []struct {
		name    string
		tenant  *tenant.Tenant
		days    *int
		expired bool
	}{
		{"no trial", &tenant.Tenant{Plan: tenant.PlanPro}, nil, false},
		{"ended yesterday", at(-24 * time.Hour), intp(-1), true},
		{"six days two hours", at(6*24*time.Hour + 2*time.Hour), intp(7), false},
		{"exactly seven days", at(7 * 24 * time.Hour), intp(7), false},
		{"one minute left", at(time.Minute), intp(1), false},
		{"ends now", at(0), intp(0), true},
		{"half a day ago", at(-12 * time.Hour), intp(0), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := entitlement.Trial(tt.tenant, now)
			if got.IsExpired != tt.expired {
				t.Errorf("IsExpired: got %v, want %v", got.IsExpired, tt.expired)
			}
			switch {
			case tt.days == nil && got.DaysRemaining != nil:
				t.Errorf("DaysRemaining: got %d, want nil", *got.DaysRemaining)
			case tt.days != nil && got.DaysRemaining == nil:
				t.Errorf("DaysRemaining: got nil, want %d", *tt.days)
			case tt.days != nil && *got.DaysRemaining != *tt.days:
				t.Errorf("DaysRemaining: got %d, want %d", *got.DaysRemaining, *tt.days)
			}
		})
	}
}

func TestReadOnlyAndLocked(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Hour)

	demo := tenant.NewDemo("demo")
	if !entitlement.IsReadOnly(demo) {
		t.Error("demo tenant must be read-only")
	}
	if entitlement.IsLocked(demo, now) {
		t.Error("demo tenant is never locked")
	}

	expired := &tenant.Tenant{Plan: tenant.PlanPro, TrialEndsAt: &past}
	if entitlement.IsReadOnly(expired) {
		t.Error("expired trial is not read-only")
	}
	if !entitlement.IsLocked(expired, now) {
		t.Error("expired trial must lock the dashboard")
	}

	expired.Subscribe(tenant.PlanStarter)
	if entitlement.IsLocked(expired, now) {
		t.Error("choosing a plan must unlock the dashboard")
	}
}

func intp(v int) *int { return &v }

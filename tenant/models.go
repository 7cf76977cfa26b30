// Package tenant models a restaurant account and its subscription tier.
package tenant

import (
	"strings"
	"time"

	"github.com/xraph/restro/id"
	"github.com/xraph/restro/types"
)

// Plan is a subscription tier. The set is closed: Starter, Pro, Premium.
type Plan string

const (
	PlanStarter Plan = "STARTER"
	PlanPro     Plan = "PRO"
	PlanPremium Plan = "PREMIUM"
)

// Plans lists every tier in ascending order.
func Plans() []Plan { return []Plan{PlanStarter, PlanPro, PlanPremium} }

// Level returns the position of the plan in the total order
// Starter(1) < Pro(2) < Premium(3). Unknown plans rank 0.
func (p Plan) Level() int {
	switch p {
	case PlanStarter:
		return 1
	case PlanPro:
		return 2
	case PlanPremium:
		return 3
	default:
		return 0
	}
}

// Valid reports whether p is one of the three known tiers.
func (p Plan) Valid() bool { return p.Level() > 0 }

// AtLeast reports whether p ranks at or above required.
func (p Plan) AtLeast(required Plan) bool {
	return p.Valid() && p.Level() >= required.Level()
}

// ParsePlan accepts a tier name in any letter case.
func ParsePlan(s string) (Plan, bool) {
	p := Plan(strings.ToUpper(strings.TrimSpace(s)))
	return p, p.Valid()
}

// DefaultTrialDays is the trial length granted on signup.
const DefaultTrialDays = 7

// Tenant is one restaurant account.
type Tenant struct {
	types.Entity
	ID          id.TenantID `json:"id"`
	Name        string      `json:"name"`
	Slug        string      `json:"slug,omitempty"`
	Currency    string      `json:"currency"`
	Plan        Plan        `json:"plan"`
	TrialEndsAt *time.Time  `json:"trial_ends_at,omitempty"`
	IsDemo      bool        `json:"is_demo"`
}

// NewTrial builds a signup tenant: Pro tier with a trial ending days after now.
func NewTrial(name string, now time.Time, days int) *Tenant {
	if days <= 0 {
		days = DefaultTrialDays
	}
	ends := now.UTC().AddDate(0, 0, days)
	return &Tenant{
		ID:          id.NewTenantID(),
		Name:        name,
		Slug:        Slugify(name),
		Currency:    types.DefaultCurrency,
		Plan:        PlanPro,
		TrialEndsAt: &ends,
	}
}

// NewDemo builds a read-only Premium tenant with no trial.
func NewDemo(name string) *Tenant {
	return &Tenant{
		ID:       id.NewTenantID(),
		Name:     name,
		Slug:     Slugify(name),
		Currency: types.DefaultCurrency,
		Plan:     PlanPremium,
		IsDemo:   true,
	}
}

// Subscribe moves the tenant to plan and resolves any running trial.
func (t *Tenant) Subscribe(plan Plan) {
	t.Plan = plan
	t.TrialEndsAt = nil
}

// Clone returns a copy that shares no pointers with t.
func (t *Tenant) Clone() *Tenant {
	c := *t
	if t.TrialEndsAt != nil {
		ends := *t.TrialEndsAt
		c.TrialEndsAt = &ends
	}
	return &c
}

// Slugify lowercases name and joins its words with dashes.
func Slugify(name string) string {
	fields := strings.FieldsFunc(strings.ToLower(name), func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	})
	return strings.Join(fields, "-")
}

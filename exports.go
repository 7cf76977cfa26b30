package restro

import (
	"github.com/xraph/restro/order"
	"github.com/xraph/restro/tenant"
	"github.com/xraph/restro/types"
)

// Re-export common types for convenience so users don't have to import the
// leaf packages for everyday values.

// Money is re-exported from types package.
type Money = types.Money

// Plan is re-exported from tenant package.
type Plan = tenant.Plan

// DateRange is re-exported from order package.
type DateRange = order.DateRange

// Re-export Money constructors
var (
	MZN  = types.MZN
	USD  = types.USD
	Zero = types.Zero
	Sum  = types.Sum
)

// Re-export plan tiers
const (
	PlanStarter = tenant.PlanStarter
	PlanPro     = tenant.PlanPro
	PlanPremium = tenant.PlanPremium
)

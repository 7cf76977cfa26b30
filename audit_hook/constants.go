package audithook

// Action constants for audit events.
const (
	// Tenant actions
	ActionTenantProvisioned = "tenant.provisioned"
	ActionPlanUpgraded      = "plan.upgraded"
	ActionPlanDowngraded    = "plan.downgraded"
	ActionTrialResolved     = "trial.resolved"

	// Subscription actions
	ActionSubscriptionRecorded = "subscription.recorded"
	ActionSubscriptionCanceled = "subscription.canceled"

	// Order actions
	ActionOrderCreated  = "order.created"
	ActionOrderUpdated  = "order.updated"
	ActionOrderAccepted = "order.accepted"
	ActionOrderRejected = "order.rejected"
	ActionOrderRemoved  = "order.removed"

	// Inventory actions
	ActionIngredientCreated   = "ingredient.created"
	ActionIngredientRestocked = "ingredient.restocked"
	ActionIngredientDeleted   = "ingredient.deleted"

	// Table actions
	ActionTableReserved       = "table.reserved"
	ActionReservationCanceled = "table.reservation_canceled"

	// Access actions
	ActionCommandRefused = "command.refused"
)

// Resource constants for audit events.
const (
	ResourceTenant       = "tenant"
	ResourceSubscription = "subscription"
	ResourceOrder        = "order"
	ResourceIngredient   = "ingredient"
	ResourceTable        = "table"
	ResourceCommand      = "command"
)

// Category constants for audit events.
const (
	CategoryAccount    = "account"
	CategoryBilling    = "billing"
	CategoryOperations = "operations"
	CategoryInventory  = "inventory"
	CategoryAccess     = "access"
)

// Severity levels for audit events.
const (
	SeverityInfo     = "info"
	SeverityWarning  = "warning"
	SeverityError    = "error"
	SeverityCritical = "critical"
)

// Outcome values for audit events.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

package extension

// Config holds the restro extension configuration.
// Fields can be set programmatically via Option functions or loaded from
// YAML configuration files (under "extensions.restro" or "restro" keys).
type Config struct {
	// DisableRoutes prevents HTTP route registration.
	DisableRoutes bool `json:"disable_routes" mapstructure:"disable_routes" yaml:"disable_routes"`

	// DisableMigrate prevents auto-migration on start.
	DisableMigrate bool `json:"disable_migrate" mapstructure:"disable_migrate" yaml:"disable_migrate"`

	// BasePath is the URL prefix for restro routes (default: "/restro").
	BasePath string `json:"base_path" mapstructure:"base_path" yaml:"base_path"`

	// StoreDriver selects the canonical store: memory, postgres, sqlite or
	// mongo. The database drivers use the grove.DB given with
	// WithGroveDatabase.
	StoreDriver string `json:"store_driver" mapstructure:"store_driver" yaml:"store_driver"`

	// TrialDays is the trial length granted to new tenants (default: 7).
	TrialDays int `json:"trial_days" mapstructure:"trial_days" yaml:"trial_days"`

	// SimulateBilling applies paid plans locally when the billing processor
	// is missing or failing. Demo and test deployments only.
	SimulateBilling bool `json:"simulate_billing" mapstructure:"simulate_billing" yaml:"simulate_billing"`

	// WebhookSecret verifies billing webhook signatures. Required while
	// routes and the webhook are enabled.
	WebhookSecret string `json:"webhook_secret" mapstructure:"webhook_secret" yaml:"webhook_secret"`

	// DisableWebhook leaves the billing webhook route unmounted.
	DisableWebhook bool `json:"disable_webhook" mapstructure:"disable_webhook" yaml:"disable_webhook"`

	// RequireConfig requires config to be present in YAML files.
	// If true and no config is found, Register returns an error.
	RequireConfig bool `json:"-" yaml:"-"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		BasePath:    "/restro",
		StoreDriver: DriverMemory,
		TrialDays:   7,
	}
}

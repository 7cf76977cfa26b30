package extension

import (
	"net/http"

	"github.com/xraph/grove"

	"github.com/xraph/restro"
	"github.com/xraph/restro/api"
	"github.com/xraph/restro/plugin"
	"github.com/xraph/restro/store"
)

// Option configures the restro Forge extension.
type Option func(*Extension)

// WithStore sets the store for the restro engine.
func WithStore(s store.Store) Option {
	return func(e *Extension) {
		e.store = s
	}
}

// WithGroveDatabase backs the engine with db. driver names the grove
// driver db was opened with: postgres, sqlite or mongo.
func WithGroveDatabase(driver string, db *grove.DB) Option {
	return func(e *Extension) {
		e.config.StoreDriver = driver
		e.groveDB = db
	}
}

// WithEngineOption passes a restro.Option through to the underlying engine.
func WithEngineOption(opt restro.Option) Option {
	return func(e *Extension) {
		e.engineOpts = append(e.engineOpts, opt)
	}
}

// WithPlugin registers a restro plugin.
func WithPlugin(p plugin.Plugin) Option {
	return func(e *Extension) {
		e.engineOpts = append(e.engineOpts, restro.WithPlugin(p))
	}
}

// WithAPIOption passes an api.Option through to the HTTP surface.
func WithAPIOption(opt api.Option) Option {
	return func(e *Extension) {
		e.apiOpts = append(e.apiOpts, opt)
	}
}

// WithMetricsHandler mounts h on the /metrics route.
func WithMetricsHandler(h http.Handler) Option {
	return WithAPIOption(api.WithMetrics(h))
}

// WithConfig sets the Forge extension configuration.
func WithConfig(cfg Config) Option {
	return func(e *Extension) { e.config = cfg }
}

// WithDisableRoutes prevents HTTP route registration.
func WithDisableRoutes() Option {
	return func(e *Extension) { e.config.DisableRoutes = true }
}

// WithDisableMigrate prevents auto-migration on start.
func WithDisableMigrate() Option {
	return func(e *Extension) { e.config.DisableMigrate = true }
}

// WithBasePath sets the URL prefix for restro routes.
func WithBasePath(path string) Option {
	return func(e *Extension) { e.config.BasePath = path }
}

// WithTrialDays sets the trial length granted to new tenants.
func WithTrialDays(days int) Option {
	return func(e *Extension) { e.config.TrialDays = days }
}

// WithSimulateBilling lets plan choices succeed without a processor.
func WithSimulateBilling() Option {
	return func(e *Extension) { e.config.SimulateBilling = true }
}

// WithWebhookSecret sets the billing webhook signing secret.
func WithWebhookSecret(secret string) Option {
	return func(e *Extension) { e.config.WebhookSecret = secret }
}

// WithDisableWebhook leaves the billing webhook route unmounted.
func WithDisableWebhook() Option {
	return func(e *Extension) { e.config.DisableWebhook = true }
}

// WithRequireConfig requires config to be present in YAML files.
// If true and no config is found, Register returns an error.
func WithRequireConfig(require bool) Option {
	return func(e *Extension) { e.config.RequireConfig = require }
}

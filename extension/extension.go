// Package extension provides the Forge extension adapter for restro.
//
// It implements the forge.Extension interface to integrate the restaurant
// engine into a Forge application with DI registration and lifecycle
// management.
//
// Configuration can be provided programmatically via Option functions
// or via YAML configuration files under "extensions.restro" or "restro" keys.
package extension

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/xraph/forge"
	"github.com/xraph/grove"
	"github.com/xraph/vessel"

	"github.com/xraph/restro"
	"github.com/xraph/restro/api"
	"github.com/xraph/restro/store"
)

// ExtensionName is the name registered with Forge.
const ExtensionName = "restro"

// ExtensionDescription is the human-readable description.
const ExtensionDescription = "Multi-tenant restaurant operations engine"

// ExtensionVersion is the semantic version.
const ExtensionVersion = "0.1.0"

// ErrWebhookSecretRequired is returned by Register when the billing
// webhook would be mounted without a signing secret.
var ErrWebhookSecretRequired = errors.New("restro: webhook_secret is required while routes are enabled (or set disable_webhook)")

// Ensure Extension implements forge.Extension at compile time.
var _ forge.Extension = (*Extension)(nil)

// Extension adapts restro as a Forge extension.
type Extension struct {
	*forge.BaseExtension

	config     Config
	engine     *restro.Engine
	store      store.Store
	groveDB    *grove.DB
	engineOpts []restro.Option
	apiOpts    []api.Option
}

// New creates a new restro Forge extension with the given options.
func New(opts ...Option) *Extension {
	e := &Extension{
		BaseExtension: forge.NewBaseExtension(ExtensionName, ExtensionVersion, ExtensionDescription),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Engine returns the underlying engine.
// This is nil until Register is called.
func (e *Extension) Engine() *restro.Engine { return e.engine }

// Config returns the resolved configuration.
func (e *Extension) Config() Config { return e.config }

// Register implements [forge.Extension]. It loads configuration,
// initializes the engine, and registers it in the DI container.
func (e *Extension) Register(fapp forge.App) error {
	if err := e.BaseExtension.Register(fapp); err != nil {
		return err
	}

	if err := e.loadConfiguration(); err != nil {
		return err
	}

	if err := e.build(); err != nil {
		return err
	}

	return vessel.Provide(fapp.Container(), func() (*restro.Engine, error) {
		return e.engine, nil
	})
}

// build creates the engine from the resolved config.
func (e *Extension) build() error {
	if !e.config.DisableRoutes && !e.config.DisableWebhook && e.config.WebhookSecret == "" {
		return ErrWebhookSecretRequired
	}
	// A store given programmatically wins over the configured driver.
	if e.store == nil {
		s, err := openStore(e.config.StoreDriver, e.groveDB)
		if err != nil {
			return err
		}
		e.store = s
	}
	e.engine = restro.New(e.store, e.buildEngineOpts()...)
	return nil
}

// Start implements [forge.Extension].
func (e *Extension) Start(ctx context.Context) error {
	if e.engine == nil {
		return errors.New("restro: extension not initialized")
	}

	if !e.config.DisableMigrate {
		if err := e.engine.Start(ctx); err != nil {
			return err
		}
	}

	e.MarkStarted()
	return nil
}

// Stop implements [forge.Extension].
func (e *Extension) Stop(_ context.Context) error {
	if e.engine != nil {
		if err := e.engine.Stop(); err != nil {
			e.MarkStopped()
			return err
		}
	}
	e.MarkStopped()
	return nil
}

// Health implements [forge.Extension].
func (e *Extension) Health(ctx context.Context) error {
	if e.store == nil {
		return errors.New("restro: store not initialized")
	}
	return e.store.Ping(ctx)
}

// Handler returns the HTTP surface mounted under BasePath, or nil when
// routes are disabled or the extension is not registered.
func (e *Extension) Handler() http.Handler {
	if e.engine == nil || e.config.DisableRoutes {
		return nil
	}

	opts := make([]api.Option, 0, len(e.apiOpts)+1)
	if e.config.DisableWebhook {
		opts = append(opts, api.WithoutWebhook())
	} else {
		opts = append(opts, api.WithWebhookSecret(e.config.WebhookSecret))
	}
	opts = append(opts, e.apiOpts...)

	r := chi.NewRouter()
	r.Mount(basePath(e.config.BasePath), api.New(e.engine, opts...).Routes())
	return r
}

func basePath(p string) string {
	p = "/" + strings.Trim(p, "/")
	if p == "/" {
		return DefaultConfig().BasePath
	}
	return p
}

// buildEngineOpts constructs restro.Option values from the resolved config.
func (e *Extension) buildEngineOpts() []restro.Option {
	opts := make([]restro.Option, 0, len(e.engineOpts)+2)

	// Apply config-derived options.
	if e.config.TrialDays > 0 {
		opts = append(opts, restro.WithTrialPeriod(e.config.TrialDays))
	}
	if e.config.SimulateBilling {
		opts = append(opts, restro.WithSimulatedBilling(true))
	}

	// Append any pass-through engine options.
	opts = append(opts, e.engineOpts...)

	return opts
}

// --- Config Loading ---

// loadConfiguration loads config from YAML files or programmatic sources.
func (e *Extension) loadConfiguration() error {
	programmaticConfig := e.config

	// Try loading from config file.
	fileConfig, configLoaded := e.tryLoadFromConfigFile()

	if !configLoaded {
		if programmaticConfig.RequireConfig {
			return errors.New("restro: configuration is required but not found in config files; " +
				"ensure 'extensions.restro' or 'restro' key exists in your config")
		}

		// Use programmatic config merged with defaults.
		e.config = mergeWithDefaults(programmaticConfig)
	} else {
		// Config loaded from YAML -- merge with programmatic options.
		e.config = mergeConfigurations(fileConfig, programmaticConfig)
	}

	e.Logger().Debug("restro: configuration loaded",
		forge.F("disable_routes", e.config.DisableRoutes),
		forge.F("disable_migrate", e.config.DisableMigrate),
		forge.F("base_path", e.config.BasePath),
		forge.F("store_driver", e.config.StoreDriver),
		forge.F("trial_days", e.config.TrialDays),
		forge.F("simulate_billing", e.config.SimulateBilling),
	)

	return nil
}

// tryLoadFromConfigFile attempts to load config from YAML files.
func (e *Extension) tryLoadFromConfigFile() (Config, bool) {
	cm := e.App().Config()
	var cfg Config

	for _, key := range []string{"extensions.restro", "restro"} {
		if !cm.IsSet(key) {
			continue
		}
		if err := cm.Bind(key, &cfg); err == nil {
			e.Logger().Debug("restro: loaded config from file",
				forge.F("key", key),
			)
			return cfg, true
		}
		e.Logger().Warn("restro: failed to bind config",
			forge.F("key", key),
			forge.F("error", "bind failed"),
		)
	}

	return Config{}, false
}

// mergeWithDefaults fills zero-valued fields with defaults.
func mergeWithDefaults(cfg Config) Config {
	defaults := DefaultConfig()
	if cfg.BasePath == "" {
		cfg.BasePath = defaults.BasePath
	}
	if cfg.TrialDays <= 0 {
		cfg.TrialDays = defaults.TrialDays
	}
	if cfg.StoreDriver == "" {
		cfg.StoreDriver = defaults.StoreDriver
	}
	return cfg
}

// mergeConfigurations merges YAML config with programmatic options.
// YAML config takes precedence for most fields; programmatic values fill gaps.
func mergeConfigurations(yamlConfig, programmaticConfig Config) Config {
	// Programmatic bool flags override when true.
	if programmaticConfig.DisableRoutes {
		yamlConfig.DisableRoutes = true
	}
	if programmaticConfig.DisableMigrate {
		yamlConfig.DisableMigrate = true
	}
	if programmaticConfig.SimulateBilling {
		yamlConfig.SimulateBilling = true
	}
	if programmaticConfig.DisableWebhook {
		yamlConfig.DisableWebhook = true
	}

	// String fields: YAML takes precedence.
	if yamlConfig.BasePath == "" && programmaticConfig.BasePath != "" {
		yamlConfig.BasePath = programmaticConfig.BasePath
	}
	if yamlConfig.StoreDriver == "" && programmaticConfig.StoreDriver != "" {
		yamlConfig.StoreDriver = programmaticConfig.StoreDriver
	}
	if yamlConfig.WebhookSecret == "" && programmaticConfig.WebhookSecret != "" {
		yamlConfig.WebhookSecret = programmaticConfig.WebhookSecret
	}

	if yamlConfig.TrialDays == 0 && programmaticConfig.TrialDays != 0 {
		yamlConfig.TrialDays = programmaticConfig.TrialDays
	}

	// Fill remaining zeros with defaults.
	return mergeWithDefaults(yamlConfig)
}

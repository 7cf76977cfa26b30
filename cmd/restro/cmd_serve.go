package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/xraph/restro"
	"github.com/xraph/restro/api"
	audithook "github.com/xraph/restro/audit_hook"
	"github.com/xraph/restro/billing"
	"github.com/xraph/restro/demo"
	"github.com/xraph/restro/dispatch"
	"github.com/xraph/restro/observability"
	"github.com/xraph/restro/store/memory"
	"github.com/xraph/restro/tenant"
)

type serveOptions struct {
	addr            string
	amqpURL         string
	webhook         bool
	webhookSecret   string
	stripeKey       string
	stripePrices    map[string]string
	checkoutSuccess string
	checkoutCancel  string
	trialDays       int
	simulateBilling bool
	demoName        string
}

var serveOpts serveOptions

// errNoWebhookSecret is returned when the billing webhook would be served
// without a way to verify the processor's signature.
var errNoWebhookSecret = errors.New("serve: --webhook-secret is required while the billing webhook is enabled (or pass --billing-webhook=false)")

// restro serve: start the HTTP API over an in-memory store.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API over an in-memory store seeded with a demo tenant",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return serve(ctx)
	},
}

func init() {
	f := serveCmd.Flags()
	f.StringVar(&serveOpts.addr, "addr", ":8080", "listen address")
	f.StringVar(&serveOpts.amqpURL, "amqp-url", "", "RabbitMQ URL for kitchen tickets (disabled when empty)")
	f.BoolVar(&serveOpts.webhook, "billing-webhook", true, "mount POST /billing/webhook")
	f.StringVar(&serveOpts.webhookSecret, "webhook-secret", "", "billing webhook signing secret (required with --billing-webhook)")
	f.StringVar(&serveOpts.stripeKey, "stripe-key", "", "Stripe secret key for plan checkout (disabled when empty)")
	f.StringToStringVar(&serveOpts.stripePrices, "stripe-price", nil, "Stripe price ID per paid plan, e.g. PRO=price_123")
	f.StringVar(&serveOpts.checkoutSuccess, "checkout-success-url", "http://localhost:8080/billing/success", "where Stripe sends the tenant after payment")
	f.StringVar(&serveOpts.checkoutCancel, "checkout-cancel-url", "http://localhost:8080/billing/cancel", "where Stripe sends the tenant on cancel")
	f.IntVar(&serveOpts.trialDays, "trial-days", 7, "trial length for new tenants")
	f.BoolVar(&serveOpts.simulateBilling, "simulate-billing", true, "apply paid plans without a billing processor")
	f.StringVar(&serveOpts.demoName, "demo", "Restaurante Villa Gourmet", "name of the seeded demo tenant")
}

// validate rejects option sets the server must not start with.
func (o serveOptions) validate() error {
	if o.webhook && o.webhookSecret == "" {
		return errNoWebhookSecret
	}
	for name := range o.stripePrices {
		if plan, ok := tenant.ParsePlan(name); !ok || !billing.Paid(plan) {
			return fmt.Errorf("serve: --stripe-price: %q is not a paid plan", name)
		}
	}
	return nil
}

// processor returns the Stripe checkout processor, or nil without a key.
func (o serveOptions) processor() billing.Processor {
	if o.stripeKey == "" {
		return nil
	}
	prices := make(map[tenant.Plan]string, len(o.stripePrices))
	for name, price := range o.stripePrices {
		plan, _ := tenant.ParsePlan(name)
		prices[plan] = price
	}
	return billing.NewStripeProcessor(billing.StripeConfig{
		SecretKey:  o.stripeKey,
		Prices:     prices,
		SuccessURL: o.checkoutSuccess,
		CancelURL:  o.checkoutCancel,
	})
}

func serve(ctx context.Context) error {
	if err := serveOpts.validate(); err != nil {
		return err
	}
	logger := newLogger()
	metrics := observability.NewPrometheusFactory()

	opts := []restro.Option{
		restro.WithLogger(logger),
		restro.WithTrialPeriod(serveOpts.trialDays),
		restro.WithSimulatedBilling(serveOpts.simulateBilling),
		restro.WithPlugin(observability.NewMetricsExtension(metrics)),
		restro.WithPlugin(audithook.New(audithook.RecorderFunc(func(_ context.Context, evt *audithook.AuditEvent) error {
			logger.Info("audit",
				"action", evt.Action,
				"tenant_id", evt.TenantID,
				"resource_id", evt.ResourceID,
				"outcome", evt.Outcome,
			)
			return nil
		}), audithook.WithLogger(logger))),
	}

	if proc := serveOpts.processor(); proc != nil {
		opts = append(opts, restro.WithBillingProcessor(proc))
	}

	if serveOpts.amqpURL != "" {
		pub, err := dispatch.DialAMQP(dispatch.AMQPConfig{URL: serveOpts.amqpURL})
		if err != nil {
			return err
		}
		if err := pub.DeclareTopology(dispatch.DefaultExchange); err != nil {
			_ = pub.Close()
			return err
		}
		opts = append(opts, restro.WithPlugin(dispatch.NewKitchenNotifier(pub, dispatch.WithLogger(logger))))
	}

	eng := restro.New(memory.New(), opts...)
	if err := eng.Start(ctx); err != nil {
		return err
	}
	defer func() {
		if err := eng.Stop(); err != nil {
			logger.Warn("engine stop failed", "error", err)
		}
	}()

	t, sum, err := demo.Provision(ctx, eng, serveOpts.demoName)
	if err != nil {
		return fmt.Errorf("seed demo tenant: %w", err)
	}
	logger.Info("demo tenant ready",
		"tenant_id", t.ID.String(),
		"products", sum.Products,
		"orders", sum.Orders,
	)

	apiOpts := []api.Option{api.WithLogger(logger), api.WithMetrics(metrics.Handler())}
	if serveOpts.webhook {
		apiOpts = append(apiOpts, api.WithWebhookSecret(serveOpts.webhookSecret))
	} else {
		apiOpts = append(apiOpts, api.WithoutWebhook())
	}

	srv := &http.Server{
		Addr:              serveOpts.addr,
		Handler:           api.New(eng, apiOpts...).Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", "addr", serveOpts.addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

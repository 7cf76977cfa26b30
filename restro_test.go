package restro_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xraph/restro"
	"github.com/xraph/restro/billing"
	"github.com/xraph/restro/catalog"
	"github.com/xraph/restro/demo"
	"github.com/xraph/restro/id"
	"github.com/xraph/restro/order"
	"github.com/xraph/restro/store/memory"
	"github.com/xraph/restro/subscription"
	"github.com/xraph/restro/tenant"
)

// ──────────────────────────────────────────────────
// Provisioning and trials
// ──────────────────────────────────────────────────

func TestProvisionTenantStartsTrial(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if f.tenant.Plan != tenant.PlanPro {
		t.Errorf("Plan: got %q, want %q", f.tenant.Plan, tenant.PlanPro)
	}
	require.NotNil(t, f.tenant.TrialEndsAt)
	assert.Equal(t, start.AddDate(0, 0, 7), *f.tenant.TrialEndsAt)

	tests := []struct {
		name    string
		advance time.Duration
		days    int
		expired bool
	}{
		{"at signup", 0, 7, false},
		{"partial day rounds up", 22 * time.Hour, 7, false},
		{"last day", 6*24*time.Hour + time.Hour, 1, false},
		{"after end", 24 * time.Hour, 0, true},
	}
	for _, tt := range tests {
		f.clock.Advance(tt.advance)
		st, err := f.sess.TrialStatus(ctx)
		require.NoError(t, err)
		require.NotNil(t, st.DaysRemaining, tt.name)
		if *st.DaysRemaining != tt.days || st.IsExpired != tt.expired {
			t.Errorf("%s: got %d/%v, want %d/%v", tt.name, *st.DaysRemaining, st.IsExpired, tt.days, tt.expired)
		}
	}
}

func TestProvisionRequiresName(t *testing.T) {
	eng := restro.New(memory.New())
	_, err := eng.ProvisionTenant(context.Background(), "  ")
	assert.ErrorIs(t, err, restro.ErrValidation)

	_, err = eng.ProvisionDemo(context.Background(), "")
	assert.ErrorIs(t, err, restro.ErrValidation)
}

func TestTrialPeriodOption(t *testing.T) {
	f := newFixture(t, restro.WithTrialPeriod(14))
	st, err := f.eng.TrialStatus(context.Background(), f.tenant.ID)
	require.NoError(t, err)
	require.NotNil(t, st.DaysRemaining)
	assert.Equal(t, 14, *st.DaysRemaining)
}

func TestExpiredTrialLocksOperations(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ingID := f.ingredient(t, "Arroz", "20", "5")

	f.clock.Advance(7*24*time.Hour + time.Second)

	_, err := f.sess.Orders(ctx, restro.OrderQuery{})
	assert.ErrorIs(t, err, restro.ErrTrialExpired)
	_, err = f.sess.Products(ctx, catalog.Filter{})
	assert.ErrorIs(t, err, restro.ErrTrialExpired)
	_, err = f.sess.Tables(ctx)
	assert.ErrorIs(t, err, restro.ErrTrialExpired)

	_, err = f.sess.Restock(ctx, ingID, "5")
	assert.Equal(t, restro.KindTrialExpired, restro.Kind(err))
	_, err = f.sess.Reserve(ctx, f.tables[1].ID, "Silva", start)
	assert.Equal(t, restro.KindTrialExpired, restro.Kind(err))

	ing, err := f.mem.GetIngredient(ctx, ingID)
	require.NoError(t, err)
	assert.Equal(t, "20", ing.CurrentStock.String())

	// Plan selection stays open and resolves the trial.
	change, err := f.eng.ChoosePlan(ctx, f.tenant.ID, tenant.PlanStarter)
	require.NoError(t, err)
	assert.True(t, change.Applied)
	assert.Nil(t, change.Tenant.TrialEndsAt)

	st, err := f.sess.TrialStatus(ctx)
	require.NoError(t, err)
	assert.Nil(t, st.DaysRemaining)
	assert.False(t, st.IsExpired)

	_, err = f.sess.Orders(ctx, restro.OrderQuery{})
	assert.NoError(t, err)
}

// ──────────────────────────────────────────────────
// Plans
// ──────────────────────────────────────────────────

func TestChoosePlan(t *testing.T) {
	down := billing.ProcessorFunc(func(context.Context, id.TenantID, tenant.Plan) (*billing.Checkout, error) {
		return nil, errors.New("connection refused")
	})
	unpriced := billing.ProcessorFunc(func(_ context.Context, _ id.TenantID, plan tenant.Plan) (*billing.Checkout, error) {
		return nil, fmt.Errorf("%w: no price configured for %s", billing.ErrUnsupportedPlan, plan)
	})
	up := billing.ProcessorFunc(func(_ context.Context, _ id.TenantID, plan tenant.Plan) (*billing.Checkout, error) {
		return &billing.Checkout{SessionID: "cs_test_1", URL: "https://pay.example/" + string(plan)}, nil
	})

	tests := []struct {
		name      string
		opts      []restro.Option
		plan      tenant.Plan
		wantKind  restro.ErrorKind
		applied   bool
		simulated bool
		checkout  bool
		wantPlan  tenant.Plan
	}{
		{name: "starter needs no processor", plan: tenant.PlanStarter, applied: true, wantPlan: tenant.PlanStarter},
		{name: "paid plan opens checkout", opts: []restro.Option{restro.WithBillingProcessor(up)}, plan: tenant.PlanPremium, checkout: true, wantPlan: tenant.PlanPro},
		{name: "no processor", plan: tenant.PlanPremium, wantKind: restro.KindExternalUnavailable, wantPlan: tenant.PlanPro},
		{name: "processor down", opts: []restro.Option{restro.WithBillingProcessor(down)}, plan: tenant.PlanPro, wantKind: restro.KindExternalUnavailable, wantPlan: tenant.PlanPro},
		{name: "simulated", opts: []restro.Option{restro.WithBillingProcessor(down), restro.WithSimulatedBilling(true)}, plan: tenant.PlanPremium, applied: true, simulated: true, wantPlan: tenant.PlanPremium},
		{name: "plan without price", opts: []restro.Option{restro.WithBillingProcessor(unpriced), restro.WithSimulatedBilling(true)}, plan: tenant.PlanPremium, wantKind: restro.KindValidation, wantPlan: tenant.PlanPro},
		{name: "unknown plan", plan: "GOLD", wantKind: restro.KindValidation, wantPlan: tenant.PlanPro},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, tt.opts...)
			ctx := context.Background()

			change, err := f.eng.ChoosePlan(ctx, f.tenant.ID, tt.plan)
			if tt.wantKind != "" {
				if got := restro.Kind(err); got != tt.wantKind {
					t.Errorf("Kind: got %q, want %q (err %v)", got, tt.wantKind, err)
				}
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.applied, change.Applied)
				assert.Equal(t, tt.simulated, change.Simulated)
				assert.Equal(t, tt.checkout, change.Checkout != nil)
			}

			stored, err := f.eng.Tenant(ctx, f.tenant.ID)
			require.NoError(t, err)
			if stored.Plan != tt.wantPlan {
				t.Errorf("Plan: got %q, want %q", stored.Plan, tt.wantPlan)
			}
			// The trial only ends when a plan is applied.
			assert.Equal(t, tt.applied, stored.TrialEndsAt == nil)
		})
	}
}

func TestSimulatePlan(t *testing.T) {
	ctx := context.Background()

	f := newFixture(t)
	_, err := f.eng.SimulatePlan(ctx, f.tenant.ID, tenant.PlanPremium)
	assert.ErrorIs(t, err, restro.ErrPermissionDenied)

	eng := restro.New(memory.New())
	dt, err := eng.ProvisionDemo(ctx, "Demo")
	require.NoError(t, err)

	got, err := eng.SimulatePlan(ctx, dt.ID, tenant.PlanStarter)
	require.NoError(t, err)
	assert.Equal(t, tenant.PlanStarter, got.Plan)
	assert.True(t, got.IsDemo)

	// The demo stays read-only through plan changes.
	_, err = eng.ChoosePlan(ctx, dt.ID, tenant.PlanPro)
	assert.ErrorIs(t, err, restro.ErrReadOnly)
}

// ──────────────────────────────────────────────────
// Subscription events
// ──────────────────────────────────────────────────

func TestApplySubscriptionEvent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.eng.ApplySubscriptionEvent(ctx, &billing.Event{
		Type:           billing.EventCheckoutCompleted,
		TenantID:       f.tenant.ID,
		Plan:           tenant.PlanPremium,
		SubscriptionID: "sub_123",
		Status:         subscription.StatusActive,
	}))

	tn, err := f.eng.Tenant(ctx, f.tenant.ID)
	require.NoError(t, err)
	assert.Equal(t, tenant.PlanPremium, tn.Plan)
	assert.Nil(t, tn.TrialEndsAt)

	// Later events carry only the provider subscription.
	require.NoError(t, f.eng.ApplySubscriptionEvent(ctx, &billing.Event{
		Type:           billing.EventSubscriptionUpdated,
		SubscriptionID: "sub_123",
		Status:         subscription.StatusPastDue,
	}))
	tn, err = f.eng.Tenant(ctx, f.tenant.ID)
	require.NoError(t, err)
	assert.Equal(t, tenant.PlanPremium, tn.Plan)

	subs, err := f.eng.Subscriptions(ctx, f.tenant.ID)
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, subscription.StatusPastDue, subs[0].Status)
	assert.Equal(t, tenant.PlanPremium, subs[0].Plan)

	require.NoError(t, f.eng.ApplySubscriptionEvent(ctx, &billing.Event{
		Type:           billing.EventSubscriptionCanceled,
		SubscriptionID: "sub_123",
		Status:         subscription.StatusCanceled,
	}))
	tn, err = f.eng.Tenant(ctx, f.tenant.ID)
	require.NoError(t, err)
	assert.Equal(t, tenant.PlanStarter, tn.Plan)

	subs, err = f.eng.Subscriptions(ctx, f.tenant.ID)
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.NotNil(t, subs[0].CanceledAt)
}

func TestApplySubscriptionEventUnknownSubscription(t *testing.T) {
	f := newFixture(t)
	err := f.eng.ApplySubscriptionEvent(context.Background(), &billing.Event{
		Type:           billing.EventSubscriptionCanceled,
		SubscriptionID: "sub_missing",
		Status:         subscription.StatusCanceled,
	})
	assert.ErrorIs(t, err, restro.ErrSubscriptionNotFound)
}

// ──────────────────────────────────────────────────
// Read-only demo
// ──────────────────────────────────────────────────

func TestDemoTenantIsReadOnly(t *testing.T) {
	ctx := context.Background()
	mem := memory.New()
	eng := restro.New(mem, restro.WithClock(restro.FixedClock(start)))

	dt, _, err := demo.Provision(ctx, eng, "Villa Gourmet")
	require.NoError(t, err)
	sess, err := eng.OpenSession(ctx, dt.ID)
	require.NoError(t, err)

	before := snapshot(t, sess)

	products, err := sess.Products(ctx, catalog.Filter{})
	require.NoError(t, err)
	ings, err := sess.Ingredients(ctx)
	require.NoError(t, err)
	tables, err := sess.Tables(ctx)
	require.NoError(t, err)
	pending, err := sess.Orders(ctx, restro.OrderQuery{Status: order.StatusPending})
	require.NoError(t, err)
	require.NotEmpty(t, pending)

	// Reads and cart building work.
	require.NoError(t, sess.AddToCart(ctx, products[0].ID))

	reserveAt := start.Add(2 * time.Hour)
	mutations := map[string]func() error{
		"submit": func() error {
			_, err := sess.Submit(ctx, restro.SubmitRequest{Type: order.TypeTakeaway})
			return err
		},
		"accept": func() error {
			_, err := sess.Accept(ctx, pending[0].ID, "20 min")
			return err
		},
		"reject": func() error {
			_, err := sess.RequestReject(ctx, pending[0].ID)
			return err
		},
		"remove": func() error {
			_, err := sess.RequestRemove(ctx, pending[0].ID)
			return err
		},
		"edit": func() error {
			_, err := sess.BeginEdit(ctx, pending[0].ID)
			return err
		},
		"create ingredient": func() error {
			_, err := sess.CreateIngredient(ctx, restro.IngredientInput{Name: "Sal", Stock: "1", MinAlert: "1", Cost: "1"})
			return err
		},
		"restock": func() error {
			_, err := sess.Restock(ctx, ings[0].ID, "5")
			return err
		},
		"delete ingredient": func() error {
			_, err := sess.RequestDeleteIngredient(ctx, ings[0].ID)
			return err
		},
		"reserve": func() error {
			_, err := sess.Reserve(ctx, tables[1].ID, "Silva", reserveAt)
			return err
		},
	}
	for name, fn := range mutations {
		if got := restro.Kind(fn()); got != restro.KindReadOnly {
			t.Errorf("%s: got kind %q, want %q", name, got, restro.KindReadOnly)
		}
	}

	assert.Equal(t, 0, sess.PendingConfirmations())
	assert.Equal(t, before, snapshot(t, sess))

	// Dismissing an alert does not touch stored state.
	alerts, err := sess.CriticalAlerts(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, alerts)
	require.NoError(t, sess.DismissAlert(ctx, alerts[0].ID))
	after, err := sess.CriticalAlerts(ctx)
	require.NoError(t, err)
	assert.Len(t, after, len(alerts)-1)
}

type state struct {
	Orders      any
	Ingredients any
	Tables      any
	Products    any
}

func snapshot(t *testing.T, sess *restro.Session) state {
	t.Helper()
	ctx := context.Background()
	orders, err := sess.Orders(ctx, restro.OrderQuery{})
	require.NoError(t, err)
	ings, err := sess.Ingredients(ctx)
	require.NoError(t, err)
	tables, err := sess.Tables(ctx)
	require.NoError(t, err)
	products, err := sess.Products(ctx, catalog.Filter{ShowUnavailable: true})
	require.NoError(t, err)
	return state{orders, ings, tables, products}
}

// ──────────────────────────────────────────────────
// Plugins
// ──────────────────────────────────────────────────

type refusalRecorder struct {
	mu   sync.Mutex
	ops  []string
	kind []restro.ErrorKind
}

func (r *refusalRecorder) Name() string { return "refusal-recorder" }

func (r *refusalRecorder) OnMutationRefused(_ context.Context, _ id.TenantID, op string, err error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ops = append(r.ops, op)
	r.kind = append(r.kind, restro.Kind(err))
	return nil
}

func TestPluginsObserveRefusals(t *testing.T) {
	rec := &refusalRecorder{}
	f := newFixture(t, restro.WithPlugin(rec))
	ctx := context.Background()

	_, err := f.sess.Submit(ctx, restro.SubmitRequest{Type: order.TypeTakeaway})
	require.Error(t, err)

	f.clock.Advance(8 * 24 * time.Hour)
	_, err = f.sess.CreateIngredient(ctx, restro.IngredientInput{Name: "Sal"})
	require.Error(t, err)

	rec.mu.Lock()
	defer rec.mu.Unlock()
	assert.Equal(t, []string{"order.submit", "ingredient.create"}, rec.ops)
	assert.Equal(t, []restro.ErrorKind{restro.KindValidation, restro.KindTrialExpired}, rec.kind)
}

package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xraph/restro"
	"github.com/xraph/restro/api"
	"github.com/xraph/restro/billing"
	"github.com/xraph/restro/id"
	"github.com/xraph/restro/store/memory"
	"github.com/xraph/restro/tenant"
)

var now = time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)

const webhookSecret = "whsec_test"

func newServer(t *testing.T, opts ...restro.Option) (*restro.Engine, http.Handler) {
	t.Helper()
	opts = append([]restro.Option{restro.WithClock(restro.FixedClock(now))}, opts...)
	eng := restro.New(memory.New(), opts...)
	require.NoError(t, eng.Start(context.Background()))
	return eng, api.New(eng, api.WithWebhookSecret(webhookSecret)).Routes()
}

// signed posts body to the billing webhook with a valid signature.
func signed(h http.Handler, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/billing/webhook", strings.NewReader(body))
	req.Header.Set(billing.SignatureHeader, billing.Sign([]byte(body), webhookSecret, time.Now()))
	h.ServeHTTP(rec, req)
	return rec
}

func do(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	_, h := newServer(t)

	rec := do(h, http.MethodGet, "/healthz", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestTrialStatus(t *testing.T) {
	eng, h := newServer(t)
	tn, err := eng.ProvisionTenant(context.Background(), "Piri Piri")
	require.NoError(t, err)

	rec := do(h, http.MethodGet, "/tenants/"+tn.ID.String()+"/trial", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"days_remaining":7,"is_expired":false}`, rec.Body.String())
}

func TestUnknownTenant(t *testing.T) {
	_, h := newServer(t)

	rec := do(h, http.MethodGet, "/tenants/"+id.NewTenantID().String()+"/trial", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(h, http.MethodGet, "/tenants/not-an-id/trial", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCheckoutPaidPlan(t *testing.T) {
	proc := billing.ProcessorFunc(func(_ context.Context, tenantID id.TenantID, plan tenant.Plan) (*billing.Checkout, error) {
		return &billing.Checkout{SessionID: "cs_1", URL: "https://pay.example/cs_1"}, nil
	})
	eng, h := newServer(t, restro.WithBillingProcessor(proc))
	tn, err := eng.ProvisionTenant(context.Background(), "Piri Piri")
	require.NoError(t, err)

	rec := do(h, http.MethodPost, "/tenants/"+tn.ID.String()+"/checkout", `{"plan":"premium"}`)

	require.Equal(t, http.StatusAccepted, rec.Code)
	var change restro.PlanChange
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &change))
	require.NotNil(t, change.Checkout)
	assert.Equal(t, "https://pay.example/cs_1", change.Checkout.URL)
	assert.False(t, change.Applied)

	stored, err := eng.Tenant(context.Background(), tn.ID)
	require.NoError(t, err)
	assert.Equal(t, tenant.PlanPro, stored.Plan)
}

func TestCheckoutProcessorDown(t *testing.T) {
	proc := billing.ProcessorFunc(func(context.Context, id.TenantID, tenant.Plan) (*billing.Checkout, error) {
		return nil, errors.New("connection refused")
	})
	eng, h := newServer(t, restro.WithBillingProcessor(proc))
	tn, err := eng.ProvisionTenant(context.Background(), "Piri Piri")
	require.NoError(t, err)

	rec := do(h, http.MethodPost, "/tenants/"+tn.ID.String()+"/checkout", `{"plan":"PRO"}`)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), `"kind":"EXTERNAL_UNAVAILABLE"`)
}

func TestCheckoutUnknownPlan(t *testing.T) {
	eng, h := newServer(t)
	tn, err := eng.ProvisionTenant(context.Background(), "Piri Piri")
	require.NoError(t, err)

	rec := do(h, http.MethodPost, "/tenants/"+tn.ID.String()+"/checkout", `{"plan":"gold"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"field":"plan"`)
}

func TestCheckoutDemoIsForbidden(t *testing.T) {
	eng, h := newServer(t)
	tn, err := eng.ProvisionDemo(context.Background(), "Demo")
	require.NoError(t, err)

	rec := do(h, http.MethodPost, "/tenants/"+tn.ID.String()+"/checkout", `{"plan":"STARTER"}`)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), `"kind":"READ_ONLY"`)
}

func TestExportIngredients(t *testing.T) {
	eng, h := newServer(t)
	ctx := context.Background()
	tn, err := eng.ProvisionTenant(ctx, "Piri Piri")
	require.NoError(t, err)
	sess, err := eng.OpenSession(ctx, tn.ID)
	require.NoError(t, err)
	_, err = sess.CreateIngredient(ctx, restro.IngredientInput{Name: "Farinha, tipo 1", Unit: "KG", Stock: "2", MinAlert: "10", Cost: "45.5"})
	require.NoError(t, err)

	rec := do(h, http.MethodGet, "/tenants/"+tn.ID.String()+"/export/ingredients", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `attachment; filename="restro_ingredients.csv"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t,
		"Item,CurrentStock,Unit,MinStock,UnitCost,Status\n\"Farinha, tipo 1\",2,KG,10,45.5,Low/Critical",
		rec.Body.String())
}

func TestExportErrors(t *testing.T) {
	eng, h := newServer(t)
	ctx := context.Background()
	tn, err := eng.ProvisionTenant(ctx, "Piri Piri")
	require.NoError(t, err)
	path := "/tenants/" + tn.ID.String() + "/export/"

	tests := []struct {
		name string
		path string
		want int
	}{
		{"unknown view", path + "customers", http.StatusBadRequest},
		{"empty view", path + "orders", http.StatusBadRequest},
		{"bad range", path + "orders?from=10-03-2024", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(h, http.MethodGet, tt.path, "")
			assert.Equal(t, tt.want, rec.Code)
		})
	}

	_, err = eng.ChoosePlan(ctx, tn.ID, tenant.PlanStarter)
	require.NoError(t, err)
	rec := do(h, http.MethodGet, path+"ingredients", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), `"required_plan":"PRO"`)
}

func checkoutEvent(tid id.TenantID, plan string) string {
	return fmt.Sprintf(`{
		"id": "evt_1",
		"type": "checkout.session.completed",
		"data": {"object": {
			"id": "cs_1",
			"client_reference_id": %q,
			"subscription": "sub_1",
			"metadata": {"plan": %q}
		}}
	}`, tid.String(), plan)
}

func TestBillingWebhookAppliesPlan(t *testing.T) {
	eng, h := newServer(t)
	ctx := context.Background()
	tn, err := eng.ProvisionTenant(ctx, "Piri Piri")
	require.NoError(t, err)

	rec := signed(h, checkoutEvent(tn.ID, "premium"))
	require.Equal(t, http.StatusOK, rec.Code)

	stored, err := eng.Tenant(ctx, tn.ID)
	require.NoError(t, err)
	assert.Equal(t, tenant.PlanPremium, stored.Plan)
	assert.Nil(t, stored.TrialEndsAt)
}

func TestBillingWebhookUnsignedKeepsPlan(t *testing.T) {
	eng := restro.New(memory.New(), restro.WithClock(restro.FixedClock(now)))
	require.NoError(t, eng.Start(context.Background()))
	ctx := context.Background()
	tn, err := eng.ProvisionTenant(ctx, "Piri Piri")
	require.NoError(t, err)
	_, err = eng.ChoosePlan(ctx, tn.ID, tenant.PlanStarter)
	require.NoError(t, err)

	tests := []struct {
		name string
		h    http.Handler
		want int
	}{
		{"no secret configured", api.New(eng).Routes(), http.StatusServiceUnavailable},
		{"secret configured", api.New(eng, api.WithWebhookSecret(webhookSecret)).Routes(), http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(tt.h, http.MethodPost, "/billing/webhook", checkoutEvent(tn.ID, "premium"))
			assert.Equal(t, tt.want, rec.Code)

			stored, err := eng.Tenant(ctx, tn.ID)
			require.NoError(t, err)
			assert.Equal(t, tenant.PlanStarter, stored.Plan)
		})
	}
}

func TestWithoutWebhook(t *testing.T) {
	eng, _ := newServer(t)
	h := api.New(eng, api.WithoutWebhook()).Routes()

	rec := do(h, http.MethodPost, "/billing/webhook", checkoutEvent(id.NewTenantID(), "pro"))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBillingWebhookUnknownTenant(t *testing.T) {
	_, h := newServer(t)

	rec := signed(h, checkoutEvent(id.NewTenantID(), "pro"))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{restro.ErrReadOnly, http.StatusForbidden},
		{restro.ErrTrialExpired, http.StatusPaymentRequired},
		{restro.ValidationError{Field: "eta", Message: "is required"}, http.StatusBadRequest},
		{restro.ErrOrderNotFound, http.StatusNotFound},
		{restro.ErrInvalidTransition, http.StatusConflict},
		{fmt.Errorf("%w: timeout", restro.ErrExternalUnavailable), http.StatusBadGateway},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := api.StatusFor(tt.err); got != tt.want {
			t.Errorf("StatusFor(%v): got %d, want %d", tt.err, got, tt.want)
		}
	}
}

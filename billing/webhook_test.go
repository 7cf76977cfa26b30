package billing_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xraph/restro/billing"
	"github.com/xraph/restro/id"
)

const secret = "whsec_test"

type recordingApplier struct {
	events []*billing.Event
	err    error
}

func (a *recordingApplier) ApplySubscriptionEvent(_ context.Context, ev *billing.Event) error {
	a.events = append(a.events, ev)
	return a.err
}

func checkoutBody(tid id.TenantID) string {
	return fmt.Sprintf(`{"id":"evt_1","object":"event","type":"checkout.session.completed","data":{"object":{
		"id":"cs_1","object":"checkout.session","client_reference_id":%q,"subscription":"sub_1","metadata":{"plan":"PRO"}}}}`, tid)
}

// post sends body to h, signed with key at ts unless key is empty.
func post(h http.Handler, body, key string, ts time.Time) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/billing/webhook", strings.NewReader(body))
	if key != "" {
		req.Header.Set(billing.SignatureHeader, billing.Sign([]byte(body), key, ts))
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestConstructEventSignature(t *testing.T) {
	now := time.Now()
	payload := []byte(checkoutBody(id.NewTenantID()))
	header := billing.Sign(payload, secret, now)

	ev, err := billing.ConstructEvent(payload, header, secret, billing.DefaultTolerance)
	require.NoError(t, err)
	assert.Equal(t, billing.EventCheckoutCompleted, ev.Type)

	tests := []struct {
		name    string
		payload []byte
		header  string
		secret  string
	}{
		{"wrong secret", payload, header, "whsec_other"},
		{"tampered body", []byte(strings.Replace(string(payload), "PRO", "PREMIUM", 1)), header, secret},
		{"too old", payload, billing.Sign(payload, secret, now.Add(-time.Hour)), secret},
		{"garbage header", payload, "garbage", secret},
		{"missing header", payload, "", secret},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := billing.ConstructEvent(tt.payload, tt.header, tt.secret, billing.DefaultTolerance)
			assert.ErrorIs(t, err, billing.ErrInvalidSignature)
		})
	}
}

func TestWebhookAppliesSignedEvent(t *testing.T) {
	tid := id.NewTenantID()
	applier := &recordingApplier{}
	h := billing.NewWebhookHandler(applier, billing.WithSecret(secret))

	rec := post(h, checkoutBody(tid), secret, time.Now())

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"received":true}`, rec.Body.String())
	require.Len(t, applier.events, 1)
	assert.Equal(t, tid, applier.events[0].TenantID)
}

func TestWebhookRefusesWithoutSecret(t *testing.T) {
	applier := &recordingApplier{}
	h := billing.NewWebhookHandler(applier)
	assert.False(t, h.Configured())

	// Neither an unsigned body nor one signed with some key is applied.
	for _, key := range []string{"", secret} {
		rec := post(h, checkoutBody(id.NewTenantID()), key, time.Now())
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	}
	assert.Empty(t, applier.events)
}

func TestWebhookSignatureRequired(t *testing.T) {
	applier := &recordingApplier{}
	h := billing.NewWebhookHandler(applier, billing.WithSecret(secret))
	body := checkoutBody(id.NewTenantID())

	tests := []struct {
		name string
		key  string
		ts   time.Time
	}{
		{"unsigned", "", time.Now()},
		{"wrong secret", "whsec_other", time.Now()},
		{"stale", secret, time.Now().Add(-time.Hour)},
	}
	for _, tt := range tests {
		rec := post(h, body, tt.key, tt.ts)
		assert.Equal(t, http.StatusBadRequest, rec.Code, tt.name)
	}
	assert.Empty(t, applier.events)

	rec := post(h, body, secret, time.Now())
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, applier.events, 1)
}

func TestWebhookToleranceOption(t *testing.T) {
	applier := &recordingApplier{}
	h := billing.NewWebhookHandler(applier, billing.WithSecret(secret), billing.WithTolerance(2*time.Hour))

	rec := post(h, checkoutBody(id.NewTenantID()), secret, time.Now().Add(-time.Hour))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, applier.events, 1)
}

func TestWebhookIgnoredAndFailed(t *testing.T) {
	applier := &recordingApplier{err: errors.New("boom")}
	h := billing.NewWebhookHandler(applier,
		billing.WithSecret(secret),
		billing.WithErrorStatus(func(error) int { return http.StatusNotFound }),
	)

	rec := post(h, `{"id":"evt_2","type":"invoice.paid","data":{"object":{}}}`, secret, time.Now())
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, applier.events)

	rec = post(h, checkoutBody(id.NewTenantID()), secret, time.Now())
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

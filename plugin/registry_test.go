package plugin_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xraph/restro/id"
	"github.com/xraph/restro/order"
	"github.com/xraph/restro/plugin"
)

type orderCounter struct {
	name    string
	created atomic.Int32
	refused atomic.Int32
	err     error
}

func (p *orderCounter) Name() string { return p.name }

func (p *orderCounter) OnOrderCreated(_ context.Context, _ *order.Order) error {
	p.created.Add(1)
	return p.err
}

func (p *orderCounter) OnMutationRefused(_ context.Context, _ id.TenantID, _ string, _ error) error {
	p.refused.Add(1)
	return nil
}

type slowPlugin struct{ done chan struct{} }

func (slowPlugin) Name() string { return "slow" }

func (p slowPlugin) OnOrderCreated(ctx context.Context, _ *order.Order) error {
	select {
	case <-p.done:
	case <-time.After(time.Second):
	}
	return nil
}

type namedOnly struct{ name string }

func (p namedOnly) Name() string { return p.name }

func quietRegistry() *plugin.Registry {
	return plugin.NewRegistry().WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestRegisterRejectsDuplicateNames(t *testing.T) {
	r := quietRegistry()

	require.NoError(t, r.Register(&orderCounter{name: "kitchen"}))
	err := r.Register(namedOnly{name: "kitchen"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate")

	assert.Equal(t, 1, r.Count())
	assert.NotNil(t, r.Get("kitchen"))
	assert.Nil(t, r.Get("missing"))
}

func TestEmitDispatchesOnlyToImplementers(t *testing.T) {
	r := quietRegistry()
	a := &orderCounter{name: "a"}
	b := &orderCounter{name: "b", err: errors.New("boom")}

	require.NoError(t, r.Register(a))
	require.NoError(t, r.Register(b))
	require.NoError(t, r.Register(namedOnly{name: "bystander"}))

	ctx := context.Background()
	r.EmitOrderCreated(ctx, &order.Order{ID: id.NewOrderID()})
	r.EmitMutationRefused(ctx, id.NewTenantID(), "order.submit", errors.New("read only"))

	assert.Equal(t, int32(1), a.created.Load())
	assert.Equal(t, int32(1), b.created.Load(), "a failing hook still runs")
	assert.Equal(t, int32(1), a.refused.Load())
	assert.Len(t, r.List(), 3)
}

func TestEmitTimesOutSlowHooks(t *testing.T) {
	r := quietRegistry().WithTimeout(20 * time.Millisecond)
	slow := slowPlugin{done: make(chan struct{})}
	defer close(slow.done)

	require.NoError(t, r.Register(slow))

	start := time.Now()
	r.EmitOrderCreated(context.Background(), &order.Order{ID: id.NewOrderID()})

	assert.Less(t, time.Since(start), 500*time.Millisecond)
}

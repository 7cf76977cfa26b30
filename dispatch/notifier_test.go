package dispatch_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xraph/restro/dispatch"
	"github.com/xraph/restro/id"
	"github.com/xraph/restro/order"
	"github.com/xraph/restro/types"
)

type message struct {
	exchange string
	key      string
	body     []byte
}

type fakePublisher struct {
	mu     sync.Mutex
	sent   []message
	err    error
	closed bool
}

func (p *fakePublisher) Publish(_ context.Context, exchange, key string, body []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.sent = append(p.sent, message{exchange: exchange, key: key, body: body})
	return nil
}

func (p *fakePublisher) Close() error {
	p.closed = true
	return nil
}

func sampleOrder() *order.Order {
	o := &order.Order{
		ID:       id.NewOrderID(),
		TenantID: id.NewTenantID(),
		Type:     order.TypeDineIn,
		Status:   order.StatusPreparing,
		TableID:  id.NewTableID(),
	}
	o.SetItems([]order.Item{
		{ProductID: id.NewProductID(), ProductName: "Frango à Zambeziana", Quantity: 2, UnitPrice: types.MZN(10000), Notes: "sem picante"},
		{ProductID: id.NewProductID(), ProductName: "2M", Quantity: 1, UnitPrice: types.MZN(5000)},
	})
	return o
}

func TestRoutingKey(t *testing.T) {
	tests := []struct {
		typ   order.Type
		event string
		want  string
	}{
		{order.TypeDineIn, dispatch.EventCreated, "kitchen.dine_in.created"},
		{order.TypeTakeaway, dispatch.EventAccepted, "kitchen.takeaway.accepted"},
		{order.TypeDelivery, dispatch.EventRemoved, "kitchen.delivery.removed"},
	}
	for _, tt := range tests {
		if got := dispatch.RoutingKey(tt.typ, tt.event); got != tt.want {
			t.Errorf("RoutingKey(%s, %s): got %q, want %q", tt.typ, tt.event, got, tt.want)
		}
	}
}

func TestAcceptedTicket(t *testing.T) {
	pub := &fakePublisher{}
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	n := dispatch.NewKitchenNotifier(pub, dispatch.WithClock(func() time.Time { return now }))
	o := sampleOrder()

	require.NoError(t, n.OnOrderAccepted(context.Background(), o, "20 min"))

	require.Len(t, pub.sent, 1)
	msg := pub.sent[0]
	assert.Equal(t, dispatch.DefaultExchange, msg.exchange)
	assert.Equal(t, "kitchen.dine_in.accepted", msg.key)

	var ticket dispatch.Ticket
	require.NoError(t, json.Unmarshal(msg.body, &ticket))
	assert.Equal(t, o.ID.String(), ticket.OrderID)
	assert.Equal(t, "20 min", ticket.ETA)
	assert.Equal(t, int64(25000), ticket.TotalAmount)
	assert.Equal(t, "mzn", ticket.Currency)
	assert.Equal(t, o.TableID.String(), ticket.TableID)
	assert.True(t, now.Equal(ticket.Timestamp))
	require.Len(t, ticket.Items, 2)
	assert.Equal(t, "sem picante", ticket.Items[0].Notes)
	assert.Equal(t, string(order.ItemQueued), ticket.Items[0].Status)
}

func TestCustomExchange(t *testing.T) {
	pub := &fakePublisher{}
	n := dispatch.NewKitchenNotifier(pub, dispatch.WithExchange("kitchen_events"))

	require.NoError(t, n.OnOrderRemoved(context.Background(), sampleOrder()))

	require.Len(t, pub.sent, 1)
	assert.Equal(t, "kitchen_events", pub.sent[0].exchange)
}

func TestPublishFailureDoesNotFailHook(t *testing.T) {
	pub := &fakePublisher{err: errors.New("broker unreachable")}
	n := dispatch.NewKitchenNotifier(pub)

	assert.NoError(t, n.OnOrderCreated(context.Background(), sampleOrder()))
	assert.Empty(t, pub.sent)
}

func TestShutdownClosesPublisher(t *testing.T) {
	pub := &fakePublisher{}
	n := dispatch.NewKitchenNotifier(pub)

	require.NoError(t, n.OnShutdown(context.Background()))
	assert.True(t, pub.closed)
}

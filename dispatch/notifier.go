package dispatch

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/xraph/restro/order"
	"github.com/xraph/restro/plugin"
)

// Compile-time interface checks.
var (
	_ plugin.Plugin          = (*KitchenNotifier)(nil)
	_ plugin.OnShutdown      = (*KitchenNotifier)(nil)
	_ plugin.OnOrderCreated  = (*KitchenNotifier)(nil)
	_ plugin.OnOrderUpdated  = (*KitchenNotifier)(nil)
	_ plugin.OnOrderAccepted = (*KitchenNotifier)(nil)
	_ plugin.OnOrderRejected = (*KitchenNotifier)(nil)
	_ plugin.OnOrderRemoved  = (*KitchenNotifier)(nil)
)

// Publisher sends one message to a broker exchange.
type Publisher interface {
	Publish(ctx context.Context, exchange, key string, body []byte) error
	Close() error
}

// DefaultExchange is the topic exchange kitchen tickets are published to.
const DefaultExchange = "orders_topic"

// KitchenNotifier is a plugin that publishes a Ticket for every order
// lifecycle event. Publish failures are logged and never fail the command.
type KitchenNotifier struct {
	pub      Publisher
	exchange string
	logger   *slog.Logger
	now      func() time.Time
}

// Option configures a KitchenNotifier.
type Option func(*KitchenNotifier)

// WithExchange overrides DefaultExchange.
func WithExchange(name string) Option {
	return func(n *KitchenNotifier) { n.exchange = name }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(n *KitchenNotifier) { n.logger = l }
}

// WithClock sets the source of ticket timestamps.
func WithClock(now func() time.Time) Option {
	return func(n *KitchenNotifier) { n.now = now }
}

// NewKitchenNotifier creates a notifier over pub.
func NewKitchenNotifier(pub Publisher, opts ...Option) *KitchenNotifier {
	n := &KitchenNotifier{
		pub:      pub,
		exchange: DefaultExchange,
		logger:   slog.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Name implements plugin.Plugin.
func (n *KitchenNotifier) Name() string { return "kitchen-dispatch" }

// OnShutdown implements plugin.OnShutdown.
func (n *KitchenNotifier) OnShutdown(_ context.Context) error {
	return n.pub.Close()
}

// OnOrderCreated implements plugin.OnOrderCreated.
func (n *KitchenNotifier) OnOrderCreated(ctx context.Context, o *order.Order) error {
	return n.send(ctx, EventCreated, o, "")
}

// OnOrderUpdated implements plugin.OnOrderUpdated.
func (n *KitchenNotifier) OnOrderUpdated(ctx context.Context, o *order.Order) error {
	return n.send(ctx, EventUpdated, o, "")
}

// OnOrderAccepted implements plugin.OnOrderAccepted.
func (n *KitchenNotifier) OnOrderAccepted(ctx context.Context, o *order.Order, eta string) error {
	return n.send(ctx, EventAccepted, o, eta)
}

// OnOrderRejected implements plugin.OnOrderRejected.
func (n *KitchenNotifier) OnOrderRejected(ctx context.Context, o *order.Order) error {
	return n.send(ctx, EventRejected, o, "")
}

// OnOrderRemoved implements plugin.OnOrderRemoved.
func (n *KitchenNotifier) OnOrderRemoved(ctx context.Context, o *order.Order) error {
	return n.send(ctx, EventRemoved, o, "")
}

func (n *KitchenNotifier) send(ctx context.Context, event string, o *order.Order, eta string) error {
	ticket := NewTicket(event, o, n.now())
	ticket.ETA = eta

	body, err := json.Marshal(ticket)
	if err != nil {
		return fmt.Errorf("dispatch: encode ticket: %w", err)
	}

	key := RoutingKey(o.Type, event)
	if err := n.pub.Publish(ctx, n.exchange, key, body); err != nil {
		n.logger.Warn("dispatch: failed to publish kitchen ticket",
			"order_id", ticket.OrderID,
			"routing_key", key,
			"error", err,
		)
		return nil
	}

	n.logger.Debug("dispatch: kitchen ticket published",
		"order_id", ticket.OrderID,
		"routing_key", key,
	)
	return nil
}

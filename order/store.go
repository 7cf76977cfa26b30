package order

import (
	"context"

	"github.com/xraph/restro/id"
)

// Store persists orders with their items embedded. UpdateOrder replaces
// the item set and DeleteOrder removes the items in the same operation.
type Store interface {
	CreateOrder(ctx context.Context, o *Order) error
	GetOrder(ctx context.Context, orderID id.OrderID) (*Order, error)
	ListOrders(ctx context.Context, tenantID id.TenantID, opts ListOpts) ([]*Order, error)
	UpdateOrder(ctx context.Context, o *Order) error
	DeleteOrder(ctx context.Context, orderID id.OrderID) error
}

// ListOpts narrows ListOrders. Results are newest first.
type ListOpts struct {
	Status Status
	Limit  int
	Offset int
}

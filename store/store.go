// Package store defines the canonical per-tenant store contract. Every
// backend implements all entity stores; the engine never keeps a second
// mutable copy of anything it reads from here.
package store

import (
	"context"

	"github.com/xraph/restro/catalog"
	"github.com/xraph/restro/inventory"
	"github.com/xraph/restro/order"
	"github.com/xraph/restro/subscription"
	"github.com/xraph/restro/table"
	"github.com/xraph/restro/tenant"
)

// Store is the unified storage interface for all restaurant entities.
type Store interface {
	tenant.Store
	subscription.Store
	catalog.Store
	order.Store
	inventory.Store
	table.Store

	// Core methods
	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}

package catalog

import (
	"context"

	"github.com/xraph/restro/id"
)

// Store exposes the catalog. Create methods exist for seeding and for the
// external catalog service; the dashboard core only reads.
type Store interface {
	CreateCategory(ctx context.Context, c *Category) error
	ListCategories(ctx context.Context, tenantID id.TenantID) ([]*Category, error)
	CreateProduct(ctx context.Context, p *Product) error
	GetProduct(ctx context.Context, productID id.ProductID) (*Product, error)
	ListProducts(ctx context.Context, tenantID id.TenantID) ([]*Product, error)
}

package tenant

import (
	"context"

	"github.com/xraph/restro/id"
)

type Store interface {
	CreateTenant(ctx context.Context, t *Tenant) error
	GetTenant(ctx context.Context, tenantID id.TenantID) (*Tenant, error)
	UpdateTenant(ctx context.Context, t *Tenant) error
}

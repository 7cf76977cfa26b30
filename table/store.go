package table

import (
	"context"

	"github.com/xraph/restro/id"
)

type Store interface {
	CreateTable(ctx context.Context, t *Table) error
	GetTable(ctx context.Context, tableID id.TableID) (*Table, error)
	ListTables(ctx context.Context, tenantID id.TenantID) ([]*Table, error)
	UpdateTable(ctx context.Context, t *Table) error
}

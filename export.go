package restro

import (
	"context"

	"github.com/xraph/restro/entitlement"
	"github.com/xraph/restro/export"
)

// Export renders a view of the tenant's data. The orders view honours rng;
// the other views ignore it. Export is a Pro feature.
func (s *Session) Export(ctx context.Context, view export.View, rng DateRange) (*export.Document, error) {
	t, err := s.view(ctx)
	if err != nil {
		return nil, err
	}
	if res := entitlement.Check(t, entitlement.FeatureExport); !res.Allowed {
		return nil, PermissionError{Feature: res.Feature, Required: res.Required}
	}

	var tbl export.Table
	switch view {
	case export.ViewOrders:
		orders, err := s.Orders(ctx, OrderQuery{Range: rng})
		if err != nil {
			return nil, err
		}
		tables, err := s.engine.store.ListTables(ctx, s.tenantID)
		if err != nil {
			return nil, err
		}
		tbl = export.Orders(orders, tables)
	case export.ViewProducts:
		products, err := s.engine.store.ListProducts(ctx, s.tenantID)
		if err != nil {
			return nil, err
		}
		categories, err := s.engine.store.ListCategories(ctx, s.tenantID)
		if err != nil {
			return nil, err
		}
		tbl = export.Products(products, categories)
	case export.ViewIngredients:
		ings, err := s.engine.store.ListIngredients(ctx, s.tenantID)
		if err != nil {
			return nil, err
		}
		tbl = export.Ingredients(ings)
	default:
		return nil, invalid("view", "unknown view "+string(view))
	}

	if len(tbl.Rows) == 0 {
		return nil, ErrNothingToExport
	}
	return tbl.Render(view), nil
}

// Package catalog is the read side of the menu. Products and categories
// are authored elsewhere; orders only need identity, name, price and
// availability.
package catalog

import (
	"strings"

	"github.com/xraph/restro/id"
	"github.com/xraph/restro/types"
)

type Category struct {
	types.Entity
	ID       id.CategoryID `json:"id"`
	TenantID id.TenantID   `json:"tenant_id"`
	Name     string        `json:"name"`
}

type Product struct {
	types.Entity
	ID                     id.ProductID  `json:"id"`
	TenantID               id.TenantID   `json:"tenant_id"`
	CategoryID             id.CategoryID `json:"category_id"`
	Name                   string        `json:"name"`
	Description            string        `json:"description,omitempty"`
	Price                  types.Money   `json:"price"`
	IsAvailable            bool          `json:"is_available"`
	PreparationTimeMinutes int           `json:"preparation_time_minutes"`
	ImageURL               string        `json:"image_url,omitempty"`
}

// Filter narrows a product listing. The zero value returns only
// available products of every category.
type Filter struct {
	ShowUnavailable bool
	CategoryID      id.CategoryID
	Search          string
}

// Match reports whether p passes the filter. Search is a case-insensitive
// substring match over name and description.
func (f Filter) Match(p *Product) bool {
	if !f.ShowUnavailable && !p.IsAvailable {
		return false
	}
	if !f.CategoryID.IsNil() && p.CategoryID != f.CategoryID {
		return false
	}
	if q := strings.ToLower(strings.TrimSpace(f.Search)); q != "" {
		if !strings.Contains(strings.ToLower(p.Name), q) &&
			!strings.Contains(strings.ToLower(p.Description), q) {
			return false
		}
	}
	return true
}

// Apply returns the products that pass the filter, keeping their order.
func (f Filter) Apply(products []*Product) []*Product {
	out := make([]*Product, 0, len(products))
	for _, p := range products {
		if f.Match(p) {
			out = append(out, p)
		}
	}
	return out
}

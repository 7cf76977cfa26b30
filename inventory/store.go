package inventory

import (
	"context"

	"github.com/xraph/restro/id"
)

type Store interface {
	CreateIngredient(ctx context.Context, ing *Ingredient) error
	GetIngredient(ctx context.Context, ingredientID id.IngredientID) (*Ingredient, error)
	ListIngredients(ctx context.Context, tenantID id.TenantID) ([]*Ingredient, error)
	UpdateIngredient(ctx context.Context, ing *Ingredient) error
	DeleteIngredient(ctx context.Context, ingredientID id.IngredientID) error
}

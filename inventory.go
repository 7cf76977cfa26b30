package restro

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/xraph/restro/confirm"
	"github.com/xraph/restro/entitlement"
	"github.com/xraph/restro/id"
	"github.com/xraph/restro/inventory"
	"github.com/xraph/restro/types"
)

// IngredientInput is the new-ingredient form. Quantities arrive as text
// and must parse as non-negative decimals.
type IngredientInput struct {
	Name     string
	Unit     string
	Stock    string
	MinAlert string
	Cost     string
}

// Ingredients lists the tenant's stock items.
func (s *Session) Ingredients(ctx context.Context) ([]*inventory.Ingredient, error) {
	if _, err := s.view(ctx); err != nil {
		return nil, err
	}
	return s.engine.store.ListIngredients(ctx, s.tenantID)
}

// Ingredient retrieves one stock item.
func (s *Session) Ingredient(ctx context.Context, ingredientID id.IngredientID) (*inventory.Ingredient, error) {
	if _, err := s.view(ctx); err != nil {
		return nil, err
	}
	return s.ingredient(ctx, ingredientID)
}

// CreateIngredient adds a stock item stamped as restocked now.
func (s *Session) CreateIngredient(ctx context.Context, in IngredientInput) (*inventory.Ingredient, error) {
	const op = "ingredient.create"

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.guard(ctx, op); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, s.refuse(ctx, op, invalid("name", "is required"))
	}
	unit, ok := inventory.ParseUnit(in.Unit)
	if !ok {
		return nil, s.refuse(ctx, op, invalid("unit", "unknown unit "+in.Unit))
	}

	var values [3]decimal.Decimal
	for i, f := range []struct{ field, raw string }{
		{"stock", in.Stock},
		{"min_alert", in.MinAlert},
		{"cost", in.Cost},
	} {
		v, err := parseQuantity(f.raw)
		if err != nil {
			return nil, s.refuse(ctx, op, invalid(f.field, "must be a number"))
		}
		if v.IsNegative() {
			return nil, s.refuse(ctx, op, invalid(f.field, "cannot be negative"))
		}
		values[i] = v
	}

	now := s.engine.Now()
	ing := &inventory.Ingredient{
		Entity:        types.NewEntity(now),
		ID:            id.NewIngredientID(),
		TenantID:      s.tenantID,
		Name:          name,
		Unit:          unit,
		CurrentStock:  values[0],
		MinStockAlert: values[1],
		CostPerUnit:   values[2],
		LastRestocked: now,
	}

	if err := s.engine.store.CreateIngredient(ctx, ing); err != nil {
		return nil, err
	}

	s.engine.logger.Info("ingredient created",
		"tenant_id", s.tenantID.String(),
		"ingredient_id", ing.ID.String(),
		"stock", ing.CurrentStock.String(),
	)
	s.engine.plugins.EmitIngredientCreated(ctx, ing.Clone())

	return ing, nil
}

// Restock adds qty to the ingredient's stock. qty must be positive.
func (s *Session) Restock(ctx context.Context, ingredientID id.IngredientID, qty string) (*inventory.Ingredient, error) {
	const op = "ingredient.restock"

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.guard(ctx, op); err != nil {
		return nil, err
	}

	amount, err := parseQuantity(qty)
	if err != nil || !amount.IsPositive() {
		return nil, s.refuse(ctx, op, invalid("quantity", "must be a number greater than zero"))
	}

	ing, err := s.ingredient(ctx, ingredientID)
	if err != nil {
		return nil, err
	}

	now := s.engine.Now()
	ing.CurrentStock = ing.CurrentStock.Add(amount)
	ing.LastRestocked = now
	ing.Touch(now)

	if err := s.engine.store.UpdateIngredient(ctx, ing); err != nil {
		return nil, err
	}

	s.engine.logger.Info("ingredient restocked",
		"tenant_id", s.tenantID.String(),
		"ingredient_id", ing.ID.String(),
		"added", amount.String(),
		"stock", ing.CurrentStock.String(),
	)
	s.engine.plugins.EmitIngredientRestocked(ctx, ing.Clone(), amount)

	return ing, nil
}

// RequestDeleteIngredient asks for confirmation before deleting a stock item.
func (s *Session) RequestDeleteIngredient(ctx context.Context, ingredientID id.IngredientID) (confirm.Pending, error) {
	const op = "ingredient.delete"

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.guard(ctx, op); err != nil {
		return confirm.Pending{}, err
	}
	ing, err := s.ingredient(ctx, ingredientID)
	if err != nil {
		return confirm.Pending{}, err
	}
	return s.request(confirm.ActionDeleteIngredient, ing.ID), nil
}

func (s *Session) deleteIngredient(ctx context.Context, ingredientID id.IngredientID) error {
	const op = "ingredient.delete"

	if _, err := s.guard(ctx, op); err != nil {
		return err
	}
	ing, err := s.ingredient(ctx, ingredientID)
	if err != nil {
		return err
	}
	if err := s.engine.store.DeleteIngredient(ctx, ing.ID); err != nil {
		return err
	}
	delete(s.dismissed, ing.ID)

	s.engine.logger.Info("ingredient deleted",
		"tenant_id", s.tenantID.String(),
		"ingredient_id", ing.ID.String(),
	)
	s.engine.plugins.EmitIngredientDeleted(ctx, ing)
	return nil
}

// Stats counts stock items per status.
func (s *Session) Stats(ctx context.Context) (inventory.Stats, error) {
	ings, err := s.Ingredients(ctx)
	if err != nil {
		return inventory.Stats{}, err
	}
	return inventory.Summarize(ings), nil
}

// ──────────────────────────────────────────────────
// Alerts
// ──────────────────────────────────────────────────

// CriticalAlerts lists the ingredients at or below their alert level,
// minus the ones dismissed in this session. Tenants below Pro get none.
// Dismissals are forgotten whenever the plan or any stock level changes.
func (s *Session) CriticalAlerts(ctx context.Context) ([]*inventory.Ingredient, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	critical, err := s.refreshAlerts(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]*inventory.Ingredient, 0, len(critical))
	for _, ing := range critical {
		if _, hidden := s.dismissed[ing.ID]; !hidden {
			out = append(out, ing)
		}
	}
	return out, nil
}

// DismissAlert hides an alert for the rest of the session. Stock is not
// touched, so the command is available to read-only tenants.
func (s *Session) DismissAlert(ctx context.Context, ingredientID id.IngredientID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.refreshAlerts(ctx); err != nil {
		return err
	}
	s.dismissed[ingredientID] = struct{}{}
	return nil
}

// refreshAlerts recomputes the critical list and resets dismissals when
// the inputs changed since the last computation.
func (s *Session) refreshAlerts(ctx context.Context) ([]*inventory.Ingredient, error) {
	t, err := s.view(ctx)
	if err != nil {
		return nil, err
	}
	ings, err := s.engine.store.ListIngredients(ctx, s.tenantID)
	if err != nil {
		return nil, err
	}

	key := string(t.Plan) + "|" + inventory.Fingerprint(ings)
	if key != s.alertsKey {
		s.alertsKey = key
		clear(s.dismissed)
	}

	if !entitlement.HasPermission(t, entitlement.FeatureStockAlerts.RequiredPlan()) {
		return []*inventory.Ingredient{}, nil
	}
	return inventory.Critical(ings), nil
}

func (s *Session) ingredient(ctx context.Context, ingredientID id.IngredientID) (*inventory.Ingredient, error) {
	ing, err := s.engine.store.GetIngredient(ctx, ingredientID)
	if err != nil {
		return nil, err
	}
	if !s.owned(ing.TenantID) {
		return nil, ErrIngredientNotFound
	}
	return ing, nil
}

// parseQuantity reads a decimal, accepting a comma as decimal separator.
func parseQuantity(raw string) (decimal.Decimal, error) {
	raw = strings.ReplaceAll(strings.TrimSpace(raw), ",", ".")
	return decimal.NewFromString(raw)
}

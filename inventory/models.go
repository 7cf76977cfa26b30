// Package inventory holds ingredient stock records and the pure rules
// classifying them against their alert thresholds.
package inventory

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/xraph/restro/id"
	"github.com/xraph/restro/types"
)

type Unit string

const (
	UnitKG   Unit = "KG"
	UnitL    Unit = "L"
	UnitUnit Unit = "UNIT"
	UnitPack Unit = "PACK"
)

// ParseUnit accepts a unit in any letter case. Empty input means KG.
func ParseUnit(s string) (Unit, bool) {
	u := Unit(strings.ToUpper(strings.TrimSpace(s)))
	switch u {
	case "":
		return UnitKG, true
	case UnitKG, UnitL, UnitUnit, UnitPack:
		return u, true
	}
	return u, false
}

// StockStatus classifies current stock against the minimum alert level.
type StockStatus string

const (
	StatusOK       StockStatus = "OK"
	StatusWarning  StockStatus = "WARNING"
	StatusCritical StockStatus = "CRITICAL"
)

// warningFactor is the multiple of the minimum below which stock warns.
var warningFactor = decimal.RequireFromString("1.5")

// Classify returns CRITICAL when current <= min, WARNING when
// current <= 1.5 × min, and OK otherwise. Both bounds are inclusive.
func Classify(current, min decimal.Decimal) StockStatus {
	switch {
	case current.LessThanOrEqual(min):
		return StatusCritical
	case current.LessThanOrEqual(min.Mul(warningFactor)):
		return StatusWarning
	default:
		return StatusOK
	}
}

type Ingredient struct {
	types.Entity
	ID            id.IngredientID `json:"id"`
	TenantID      id.TenantID     `json:"tenant_id"`
	Name          string          `json:"name"`
	Unit          Unit            `json:"unit"`
	CurrentStock  decimal.Decimal `json:"current_stock"`
	MinStockAlert decimal.Decimal `json:"min_stock_alert"`
	CostPerUnit   decimal.Decimal `json:"cost_per_unit"`
	LastRestocked time.Time       `json:"last_restocked"`
}

// Status classifies the ingredient's current stock.
func (i *Ingredient) Status() StockStatus {
	return Classify(i.CurrentStock, i.MinStockAlert)
}

// IsCritical reports whether stock is at or below the alert level.
func (i *Ingredient) IsCritical() bool {
	return i.Status() == StatusCritical
}

// Clone returns a copy of i.
func (i *Ingredient) Clone() *Ingredient {
	c := *i
	return &c
}

// Critical returns the ingredients at or below their alert level, in input order.
func Critical(ingredients []*Ingredient) []*Ingredient {
	out := make([]*Ingredient, 0)
	for _, ing := range ingredients {
		if ing.IsCritical() {
			out = append(out, ing)
		}
	}
	return out
}

// Stats counts ingredients per stock status.
type Stats struct {
	Total    int `json:"total"`
	OK       int `json:"ok"`
	Warning  int `json:"warning"`
	Critical int `json:"critical"`
}

// Summarize builds Stats over ingredients.
func Summarize(ingredients []*Ingredient) Stats {
	s := Stats{Total: len(ingredients)}
	for _, ing := range ingredients {
		switch ing.Status() {
		case StatusCritical:
			s.Critical++
		case StatusWarning:
			s.Warning++
		default:
			s.OK++
		}
	}
	return s
}

// Fingerprint identifies the alert-relevant state of an ingredient set:
// membership and stock levels. Two sets with equal fingerprints produce
// the same alerts.
func Fingerprint(ingredients []*Ingredient) string {
	parts := make([]string, len(ingredients))
	for i, ing := range ingredients {
		parts[i] = fmt.Sprintf("%s=%s/%s", ing.ID, ing.CurrentStock.String(), ing.MinStockAlert.String())
	}
	sort.Strings(parts)
	return strings.Join(parts, ";")
}

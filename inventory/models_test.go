package inventory_test

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/xraph/restro/id"
	"github.com/xraph/restro/inventory"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestClassify(t *testing.T) {
	tests := []struct {
		current, min string
		want         inventory.StockStatus
	}{
		{"5", "5", inventory.StatusCritical},
		{"4.99", "5", inventory.StatusCritical},
		{"0", "0", inventory.StatusCritical},
		{"5.01", "5", inventory.StatusWarning},
		{"7.5", "5", inventory.StatusWarning},
		{"7.51", "5", inventory.StatusOK},
		{"12", "5", inventory.StatusOK},
		{"0.1", "0", inventory.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.current+"/"+tt.min, func(t *testing.T) {
			if got := inventory.Classify(dec(tt.current), dec(tt.min)); got != tt.want {
				t.Errorf("Classify(%s, %s): got %s, want %s", tt.current, tt.min, got, tt.want)
			}
		})
	}
}

func TestParseUnit(t *testing.T) {
	tests := []struct {
		in   string
		want inventory.Unit
		ok   bool
	}{
		{"", inventory.UnitKG, true},
		{"kg", inventory.UnitKG, true},
		{"L", inventory.UnitL, true},
		{" pack ", inventory.UnitPack, true},
		{"unit", inventory.UnitUnit, true},
		{"crate", "CRATE", false},
	}
	for _, tt := range tests {
		got, ok := inventory.ParseUnit(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseUnit(%q): got %s %v, want %s %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestCriticalAndSummarize(t *testing.T) {
	ings := []*inventory.Ingredient{
		{ID: id.NewIngredientID(), Name: "Tomato", CurrentStock: dec("2"), MinStockAlert: dec("5")},
		{ID: id.NewIngredientID(), Name: "Rice", CurrentStock: dec("7"), MinStockAlert: dec("5")},
		{ID: id.NewIngredientID(), Name: "Oil", CurrentStock: dec("20"), MinStockAlert: dec("5")},
		{ID: id.NewIngredientID(), Name: "Salt", CurrentStock: dec("1"), MinStockAlert: dec("1")},
	}

	crit := inventory.Critical(ings)
	if len(crit) != 2 || crit[0].Name != "Tomato" || crit[1].Name != "Salt" {
		t.Errorf("Critical: got %d items", len(crit))
	}

	want := inventory.Stats{Total: 4, OK: 1, Warning: 1, Critical: 2}
	if got := inventory.Summarize(ings); got != want {
		t.Errorf("Summarize: got %+v, want %+v", got, want)
	}
}

func TestFingerprint(t *testing.T) {
	a := &inventory.Ingredient{ID: id.NewIngredientID(), CurrentStock: dec("2"), MinStockAlert: dec("5")}
	b := &inventory.Ingredient{ID: id.NewIngredientID(), CurrentStock: dec("9"), MinStockAlert: dec("5")}

	fp := inventory.Fingerprint([]*inventory.Ingredient{a, b})
	if got := inventory.Fingerprint([]*inventory.Ingredient{b, a}); got != fp {
		t.Error("fingerprint depends on order")
	}

	a2 := a.Clone()
	a2.CurrentStock = dec("12")
	if got := inventory.Fingerprint([]*inventory.Ingredient{a2, b}); got == fp {
		t.Error("fingerprint ignores stock changes")
	}
	if got := inventory.Fingerprint([]*inventory.Ingredient{a}); got == fp {
		t.Error("fingerprint ignores membership")
	}
}

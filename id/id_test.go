package id_test

import (
	"strings"
	"testing"

	"github.com/xraph/restro/id"
)

func TestConstructors(t *testing.T) {
	tests := []struct {
		name   string
		newFn  func() id.ID
		prefix string
	}{
		{"TenantID", id.NewTenantID, "tnt_"},
		{"CategoryID", id.NewCategoryID, "cat_"},
		{"ProductID", id.NewProductID, "prod_"},
		{"OrderID", id.NewOrderID, "ord_"},
		{"OrderItemID", id.NewOrderItemID, "oi_"},
		{"IngredientID", id.NewIngredientID, "ing_"},
		{"TableID", id.NewTableID, "tbl_"},
		{"SubscriptionID", id.NewSubscriptionID, "sub_"},
		{"ConfirmationID", id.NewConfirmationID, "cnf_"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.newFn().String()
			if !strings.HasPrefix(got, tt.prefix) {
				t.Errorf("expected prefix %q, got %q", tt.prefix, got)
			}
		})
	}
}

func TestNew(t *testing.T) {
	i := id.New(id.PrefixTenant)
	if i.IsNil() {
		t.Fatal("expected non-nil ID")
	}
	if i.Prefix() != id.PrefixTenant {
		t.Errorf("expected prefix %q, got %q", id.PrefixTenant, i.Prefix())
	}
}

func TestParseRoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		newFn   func() id.ID
		parseFn func(string) (id.ID, error)
	}{
		{"TenantID", id.NewTenantID, id.ParseTenantID},
		{"ProductID", id.NewProductID, id.ParseProductID},
		{"OrderID", id.NewOrderID, id.ParseOrderID},
		{"IngredientID", id.NewIngredientID, id.ParseIngredientID},
		{"TableID", id.NewTableID, id.ParseTableID},
		{"ConfirmationID", id.NewConfirmationID, id.ParseConfirmationID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			original := tt.newFn()
			parsed, err := tt.parseFn(original.String())
			if err != nil {
				t.Fatalf("parse failed: %v", err)
			}
			if parsed.String() != original.String() {
				t.Errorf("round-trip mismatch: %q != %q", parsed.String(), original.String())
			}
		})
	}
}

func TestCrossTypeRejection(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		parseFn func(string) (id.ID, error)
	}{
		{"ParseOrderID rejects oi_", id.NewOrderItemID().String(), id.ParseOrderID},
		{"ParseOrderItemID rejects ord_", id.NewOrderID().String(), id.ParseOrderItemID},
		{"ParseTableID rejects tnt_", id.NewTenantID().String(), id.ParseTableID},
		{"ParseTenantID rejects tbl_", id.NewTableID().String(), id.ParseTenantID},
		{"ParseIngredientID rejects prod_", id.NewProductID().String(), id.ParseIngredientID},
		{"ParseConfirmationID rejects ing_", id.NewIngredientID().String(), id.ParseConfirmationID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.parseFn(tt.input)
			if err == nil {
				t.Errorf("expected error for cross-type parse of %q, got nil", tt.input)
			}
		})
	}
}

func TestParseAny(t *testing.T) {
	ids := []id.ID{
		id.NewTenantID(),
		id.NewCategoryID(),
		id.NewOrderID(),
		id.NewOrderItemID(),
		id.NewTableID(),
		id.NewSubscriptionID(),
	}

	for _, i := range ids {
		t.Run(i.String(), func(t *testing.T) {
			parsed, err := id.ParseAny(i.String())
			if err != nil {
				t.Fatalf("ParseAny(%q) failed: %v", i.String(), err)
			}
			if parsed.String() != i.String() {
				t.Errorf("round-trip mismatch: %q != %q", parsed.String(), i.String())
			}
		})
	}
}

func TestParseWithPrefix(t *testing.T) {
	i := id.NewOrderID()
	parsed, err := id.ParseWithPrefix(i.String(), id.PrefixOrder)
	if err != nil {
		t.Fatalf("ParseWithPrefix failed: %v", err)
	}
	if parsed.String() != i.String() {
		t.Errorf("mismatch: %q != %q", parsed.String(), i.String())
	}

	_, err = id.ParseWithPrefix(i.String(), id.PrefixOrderItem)
	if err == nil {
		t.Error("expected error for wrong prefix")
	}
}

func TestParseEmpty(t *testing.T) {
	_, err := id.Parse("")
	if err == nil {
		t.Error("expected error for empty string")
	}
}

func TestNilID(t *testing.T) {
	var i id.ID
	if !i.IsNil() {
		t.Error("zero-value ID should be nil")
	}
	if i.String() != "" {
		t.Errorf("expected empty string, got %q", i.String())
	}
	if i.Prefix() != "" {
		t.Errorf("expected empty prefix, got %q", i.Prefix())
	}
}

func TestMarshalUnmarshalText(t *testing.T) {
	original := id.NewIngredientID()
	data, err := original.MarshalText()
	if err != nil {
		t.Fatalf("MarshalText failed: %v", err)
	}

	var restored id.ID
	if unmarshalErr := restored.UnmarshalText(data); unmarshalErr != nil {
		t.Fatalf("UnmarshalText failed: %v", unmarshalErr)
	}
	if restored.String() != original.String() {
		t.Errorf("mismatch: %q != %q", restored.String(), original.String())
	}

	// Nil round-trip.
	var nilID id.ID
	data, err = nilID.MarshalText()
	if err != nil {
		t.Fatalf("MarshalText(nil) failed: %v", err)
	}
	var restored2 id.ID
	if err := restored2.UnmarshalText(data); err != nil {
		t.Fatalf("UnmarshalText(nil) failed: %v", err)
	}
	if !restored2.IsNil() {
		t.Error("expected nil after round-trip of nil ID")
	}
}

func TestValueScan(t *testing.T) {
	original := id.NewSubscriptionID()
	val, err := original.Value()
	if err != nil {
		t.Fatalf("Value failed: %v", err)
	}

	var scanned id.ID
	if scanErr := scanned.Scan(val); scanErr != nil {
		t.Fatalf("Scan failed: %v", scanErr)
	}
	if scanned.String() != original.String() {
		t.Errorf("mismatch: %q != %q", scanned.String(), original.String())
	}

	// Nil round-trip.
	var nilID id.ID
	val, err = nilID.Value()
	if err != nil {
		t.Fatalf("Value(nil) failed: %v", err)
	}
	if val != nil {
		t.Errorf("expected nil value for nil ID, got %v", val)
	}

	var scanned2 id.ID
	if err := scanned2.Scan(nil); err != nil {
		t.Fatalf("Scan(nil) failed: %v", err)
	}
	if !scanned2.IsNil() {
		t.Error("expected nil after scan of nil")
	}
}

func TestUniqueness(t *testing.T) {
	a := id.NewOrderID()
	b := id.NewOrderID()
	if a.String() == b.String() {
		t.Errorf("two consecutive NewOrderID() calls returned the same ID: %q", a.String())
	}
}

func TestShort(t *testing.T) {
	o := id.NewOrderID()
	s := o.String()
	if got := o.Short(); got != s[len(s)-4:] {
		t.Errorf("Short: got %q, want %q", got, s[len(s)-4:])
	}
	if got := id.Nil.Short(); got != "" {
		t.Errorf("Short(nil): got %q, want empty", got)
	}
}

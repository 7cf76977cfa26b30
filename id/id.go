// Package id defines TypeID-based identity types for all restaurant entities.
//
// Every tenant-owned record uses a single ID struct with a prefix that identifies
// the entity type. IDs are K-sortable (UUIDv7-based), globally unique,
// and URL-safe in the format "prefix_suffix".
package id

import (
	"database/sql/driver"
	"fmt"

	"go.jetify.com/typeid/v2"
)

// Prefix identifies the entity type encoded in a TypeID.
type Prefix string

// Prefix constants for all restaurant entity types.
const (
	PrefixTenant       Prefix = "tnt"  // Restaurant account
	PrefixCategory     Prefix = "cat"  // Menu category
	PrefixProduct      Prefix = "prod" // Menu product
	PrefixOrder        Prefix = "ord"  // Customer order
	PrefixOrderItem    Prefix = "oi"   // Order line
	PrefixIngredient   Prefix = "ing"  // Stock item
	PrefixTable        Prefix = "tbl"  // Dining table
	PrefixSubscription Prefix = "sub"  // Billing subscription record
	PrefixConfirmation Prefix = "cnf"  // Pending destructive command
)

// ID is the primary identifier type for all restaurant entities.
// It wraps a TypeID providing a prefix-qualified, globally unique,
// sortable, URL-safe identifier in the format "prefix_suffix".
//
//nolint:recvcheck // Value receivers for read-only methods, pointer receivers for UnmarshalText/Scan.
type ID struct {
	inner typeid.TypeID
	valid bool
}

// Nil is the zero-value ID.
var Nil ID

// New generates a new globally unique ID with the given prefix.
// It panics if prefix is not a valid TypeID prefix (programming error).
func New(prefix Prefix) ID {
	tid, err := typeid.Generate(string(prefix))
	if err != nil {
		panic(fmt.Sprintf("id: invalid prefix %q: %v", prefix, err))
	}

	return ID{inner: tid, valid: true}
}

// Parse parses a TypeID string (e.g., "ord_01h2xcejqtf2nbrexx3vqjhp41")
// into an ID. Returns an error if the string is not valid.
func Parse(s string) (ID, error) {
	if s == "" {
		return Nil, fmt.Errorf("id: parse %q: empty string", s)
	}

	tid, err := typeid.Parse(s)
	if err != nil {
		return Nil, fmt.Errorf("id: parse %q: %w", s, err)
	}

	return ID{inner: tid, valid: true}, nil
}

// ParseWithPrefix parses a TypeID string and validates that its prefix
// matches the expected value.
func ParseWithPrefix(s string, expected Prefix) (ID, error) {
	parsed, err := Parse(s)
	if err != nil {
		return Nil, err
	}

	if parsed.Prefix() != expected {
		return Nil, fmt.Errorf("id: expected prefix %q, got %q", expected, parsed.Prefix())
	}

	return parsed, nil
}

// MustParse is like Parse but panics on error. Use for hardcoded ID values.
func MustParse(s string) ID {
	parsed, err := Parse(s)
	if err != nil {
		panic(fmt.Sprintf("id: must parse %q: %v", s, err))
	}

	return parsed
}

// MustParseWithPrefix is like ParseWithPrefix but panics on error.
func MustParseWithPrefix(s string, expected Prefix) ID {
	parsed, err := ParseWithPrefix(s, expected)
	if err != nil {
		panic(fmt.Sprintf("id: must parse with prefix %q: %v", expected, err))
	}

	return parsed
}

// ──────────────────────────────────────────────────
// Type aliases
// ──────────────────────────────────────────────────

// TenantID identifies a restaurant account (prefix: "tnt").
type TenantID = ID

// CategoryID identifies a menu category (prefix: "cat").
type CategoryID = ID

// ProductID identifies a menu product (prefix: "prod").
type ProductID = ID

// OrderID identifies an order (prefix: "ord").
type OrderID = ID

// OrderItemID identifies an order line (prefix: "oi").
type OrderItemID = ID

// IngredientID identifies a stock item (prefix: "ing").
type IngredientID = ID

// TableID identifies a dining table (prefix: "tbl").
type TableID = ID

// SubscriptionID identifies a subscription record (prefix: "sub").
type SubscriptionID = ID

// ConfirmationID identifies a pending confirmation token (prefix: "cnf").
type ConfirmationID = ID

// ──────────────────────────────────────────────────
// Convenience constructors
// ──────────────────────────────────────────────────

func NewTenantID() ID       { return New(PrefixTenant) }
func NewCategoryID() ID     { return New(PrefixCategory) }
func NewProductID() ID      { return New(PrefixProduct) }
func NewOrderID() ID        { return New(PrefixOrder) }
func NewOrderItemID() ID    { return New(PrefixOrderItem) }
func NewIngredientID() ID   { return New(PrefixIngredient) }
func NewTableID() ID        { return New(PrefixTable) }
func NewSubscriptionID() ID { return New(PrefixSubscription) }
func NewConfirmationID() ID { return New(PrefixConfirmation) }

// ──────────────────────────────────────────────────
// Convenience parsers
// ──────────────────────────────────────────────────

// ParseTenantID parses a string and validates the "tnt" prefix.
func ParseTenantID(s string) (ID, error) { return ParseWithPrefix(s, PrefixTenant) }

// ParseCategoryID parses a string and validates the "cat" prefix.
func ParseCategoryID(s string) (ID, error) { return ParseWithPrefix(s, PrefixCategory) }

// ParseProductID parses a string and validates the "prod" prefix.
func ParseProductID(s string) (ID, error) { return ParseWithPrefix(s, PrefixProduct) }

// ParseOrderID parses a string and validates the "ord" prefix.
func ParseOrderID(s string) (ID, error) { return ParseWithPrefix(s, PrefixOrder) }

// ParseOrderItemID parses a string and validates the "oi" prefix.
func ParseOrderItemID(s string) (ID, error) { return ParseWithPrefix(s, PrefixOrderItem) }

// ParseIngredientID parses a string and validates the "ing" prefix.
func ParseIngredientID(s string) (ID, error) { return ParseWithPrefix(s, PrefixIngredient) }

// ParseTableID parses a string and validates the "tbl" prefix.
func ParseTableID(s string) (ID, error) { return ParseWithPrefix(s, PrefixTable) }

// ParseSubscriptionID parses a string and validates the "sub" prefix.
func ParseSubscriptionID(s string) (ID, error) { return ParseWithPrefix(s, PrefixSubscription) }

// ParseConfirmationID parses a string and validates the "cnf" prefix.
func ParseConfirmationID(s string) (ID, error) { return ParseWithPrefix(s, PrefixConfirmation) }

// ParseAny parses a string into an ID without type checking the prefix.
func ParseAny(s string) (ID, error) { return Parse(s) }

// ──────────────────────────────────────────────────
// ID methods
// ──────────────────────────────────────────────────

// String returns the full TypeID string representation (prefix_suffix).
// Returns an empty string for the Nil ID.
func (i ID) String() string {
	if !i.valid {
		return ""
	}

	return i.inner.String()
}

// Prefix returns the prefix component of this ID.
func (i ID) Prefix() Prefix {
	if !i.valid {
		return ""
	}

	return Prefix(i.inner.Prefix())
}

// IsNil reports whether this ID is the zero value.
func (i ID) IsNil() bool {
	return !i.valid
}

// MarshalText implements encoding.TextMarshaler.
func (i ID) MarshalText() ([]byte, error) {
	if !i.valid {
		return []byte{}, nil
	}

	return []byte(i.inner.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (i *ID) UnmarshalText(data []byte) error {
	if len(data) == 0 {
		*i = Nil

		return nil
	}

	parsed, err := Parse(string(data))
	if err != nil {
		return err
	}

	*i = parsed

	return nil
}

// Value implements driver.Valuer for database storage.
// Returns nil for the Nil ID so that optional foreign key columns store NULL.
func (i ID) Value() (driver.Value, error) {
	if !i.valid {
		return nil, nil //nolint:nilnil // nil is the canonical NULL for driver.Valuer
	}

	return i.inner.String(), nil
}

// Scan implements sql.Scanner for database retrieval.
func (i *ID) Scan(src any) error {
	if src == nil {
		*i = Nil

		return nil
	}

	switch v := src.(type) {
	case string:
		if v == "" {
			*i = Nil

			return nil
		}

		return i.UnmarshalText([]byte(v))
	case []byte:
		if len(v) == 0 {
			*i = Nil

			return nil
		}

		return i.UnmarshalText(v)
	default:
		return fmt.Errorf("id: cannot scan %T into ID", src)
	}
}

// Short returns the last four characters of the ID, the code staff read
// out to customers and print on kitchen tickets.
func (i ID) Short() string {
	s := i.String()
	if len(s) <= 4 {
		return s
	}
	return s[len(s)-4:]
}

// Package order models customer orders, their price-snapshotted items, and
// the transient cart orders are built from.
package order

import (
	"time"

	"github.com/xraph/restro/id"
	"github.com/xraph/restro/types"
)

type Type string

const (
	TypeDineIn   Type = "DINE_IN"
	TypeTakeaway Type = "TAKEAWAY"
	TypeDelivery Type = "DELIVERY"
)

// Valid reports whether t is a known order type.
func (t Type) Valid() bool {
	switch t {
	case TypeDineIn, TypeTakeaway, TypeDelivery:
		return true
	}
	return false
}

// Status is the order lifecycle state:
// PENDING -> PREPARING -> READY -> DELIVERED, or PENDING -> CANCELLED.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusPreparing Status = "PREPARING"
	StatusReady     Status = "READY"
	StatusDelivered Status = "DELIVERED"
	StatusCancelled Status = "CANCELLED"
)

// IsTerminal reports whether no further transition leaves s.
func (s Status) IsTerminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// ItemStatus tracks a single line through the kitchen, independently of
// the order status.
type ItemStatus string

const (
	ItemQueued  ItemStatus = "QUEUED"
	ItemCooking ItemStatus = "COOKING"
	ItemDone    ItemStatus = "DONE"
)

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "PENDING"
	PaymentPaid    PaymentStatus = "PAID"
)

type PaymentMethod string

const (
	PaymentCash  PaymentMethod = "CASH"
	PaymentCard  PaymentMethod = "CARD"
	PaymentMpesa PaymentMethod = "MPESA"
	PaymentEmola PaymentMethod = "EMOLA"
)

// Item is one order line. UnitPrice is the product price captured when the
// line was created and is never recomputed from the catalog afterwards.
type Item struct {
	ID          id.OrderItemID `json:"id"`
	OrderID     id.OrderID     `json:"order_id"`
	ProductID   id.ProductID   `json:"product_id"`
	ProductName string         `json:"product_name"`
	Quantity    int            `json:"quantity"`
	UnitPrice   types.Money    `json:"unit_price"`
	Notes       string         `json:"notes,omitempty"`
	Status      ItemStatus     `json:"status"`
}

// LineTotal returns UnitPrice × Quantity.
func (i Item) LineTotal() types.Money {
	return i.UnitPrice.Multiply(int64(i.Quantity))
}

// Order is a customer order together with its items. Items are owned by the
// order: they are stored, replaced and deleted with it as one unit.
type Order struct {
	types.Entity
	ID              id.OrderID    `json:"id"`
	TenantID        id.TenantID   `json:"tenant_id"`
	Type            Type          `json:"type"`
	Status          Status        `json:"status"`
	PaymentStatus   PaymentStatus `json:"payment_status"`
	PaymentMethod   PaymentMethod `json:"payment_method,omitempty"`
	TotalAmount     types.Money   `json:"total_amount"`
	TableID         id.TableID    `json:"table_id,omitempty"`
	CustomerID      string        `json:"customer_id,omitempty"`
	CustomerName    string        `json:"customer_name,omitempty"`
	CustomerPhone   string        `json:"customer_phone,omitempty"`
	DeliveryAddress string        `json:"delivery_address,omitempty"`
	Items           []Item        `json:"items"`
}

// Editable reports whether the order may still be edited, accepted,
// rejected or removed.
func (o *Order) Editable() bool { return o.Status == StatusPending }

// ItemsTotal sums the line totals of the current items, in the order's
// currency or, when unset, the currency of the first item.
func (o *Order) ItemsTotal() types.Money {
	currency := o.TotalAmount.Currency
	if currency == "" && len(o.Items) > 0 {
		currency = o.Items[0].UnitPrice.Currency
	}
	total := types.Zero(currency)
	for _, it := range o.Items {
		total = total.Add(it.LineTotal())
	}
	return total
}

// SetItems replaces the item set, binds every item to this order, resets
// each to QUEUED and recomputes TotalAmount from the new set.
func (o *Order) SetItems(items []Item) {
	o.Items = make([]Item, len(items))
	for i, it := range items {
		it.OrderID = o.ID
		it.Status = ItemQueued
		if it.ID.IsNil() {
			it.ID = id.NewOrderItemID()
		}
		o.Items[i] = it
	}
	o.TotalAmount = o.ItemsTotal()
}

// Clone returns a deep copy of o.
func (o *Order) Clone() *Order {
	c := *o
	c.Items = append([]Item(nil), o.Items...)
	return &c
}

// DateRange selects orders by creation date. Bounds are inclusive calendar
// days in UTC; a zero bound is open.
type DateRange struct {
	From time.Time
	To   time.Time
}

// Contains reports whether t falls on a day inside the range.
func (r DateRange) Contains(t time.Time) bool {
	d := truncateDay(t)
	if !r.From.IsZero() && d.Before(truncateDay(r.From)) {
		return false
	}
	if !r.To.IsZero() && d.After(truncateDay(r.To)) {
		return false
	}
	return true
}

// Filter returns the orders created inside the range.
func (r DateRange) Filter(orders []*Order) []*Order {
	out := make([]*Order, 0, len(orders))
	for _, o := range orders {
		if r.Contains(o.CreatedAt) {
			out = append(out, o)
		}
	}
	return out
}

// PendingCount counts orders waiting for acceptance.
func PendingCount(orders []*Order) int {
	n := 0
	for _, o := range orders {
		if o.Status == StatusPending {
			n++
		}
	}
	return n
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

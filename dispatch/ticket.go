// Package dispatch forwards order lifecycle events to the kitchen as JSON
// tickets over a message broker.
package dispatch

import (
	"strings"
	"time"

	"github.com/xraph/restro/order"
)

// Event names used in routing keys.
const (
	EventCreated  = "created"
	EventUpdated  = "updated"
	EventAccepted = "accepted"
	EventRejected = "rejected"
	EventRemoved  = "removed"
)

// TicketItem is one line on a kitchen ticket.
type TicketItem struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	Notes     string `json:"notes,omitempty"`
	Status    string `json:"status"`
}

// Ticket is the message body published for an order event.
type Ticket struct {
	Event           string       `json:"event"`
	OrderID         string       `json:"order_id"`
	TenantID        string       `json:"tenant_id"`
	OrderType       string       `json:"order_type"`
	Status          string       `json:"status"`
	TableID         string       `json:"table_id,omitempty"`
	CustomerName    string       `json:"customer_name,omitempty"`
	DeliveryAddress string       `json:"delivery_address,omitempty"`
	ETA             string       `json:"eta,omitempty"`
	TotalAmount     int64        `json:"total_amount"`
	Currency        string       `json:"currency"`
	Items           []TicketItem `json:"items"`
	Timestamp       time.Time    `json:"timestamp"`
}

// NewTicket builds the ticket for event on o.
func NewTicket(event string, o *order.Order, now time.Time) Ticket {
	t := Ticket{
		Event:           event,
		OrderID:         o.ID.String(),
		TenantID:        o.TenantID.String(),
		OrderType:       string(o.Type),
		Status:          string(o.Status),
		TableID:         o.TableID.String(),
		CustomerName:    o.CustomerName,
		DeliveryAddress: o.DeliveryAddress,
		TotalAmount:     o.TotalAmount.Amount,
		Currency:        o.TotalAmount.Currency,
		Items:           make([]TicketItem, 0, len(o.Items)),
		Timestamp:       now.UTC(),
	}
	for _, it := range o.Items {
		t.Items = append(t.Items, TicketItem{
			ProductID: it.ProductID.String(),
			Name:      it.ProductName,
			Quantity:  it.Quantity,
			Notes:     it.Notes,
			Status:    string(it.Status),
		})
	}
	return t
}

// RoutingKey returns kitchen.<type>.<event>, e.g. kitchen.dine_in.created.
func RoutingKey(t order.Type, event string) string {
	return "kitchen." + strings.ToLower(string(t)) + "." + event
}

package order

import (
	"github.com/xraph/restro/catalog"
	"github.com/xraph/restro/id"
	"github.com/xraph/restro/types"
)

// Line is one cart entry. Product is the catalog snapshot taken when the
// line was added or last repriced.
type Line struct {
	Product  catalog.Product
	Quantity int
	Note     string
}

// Cart accumulates lines before an order is submitted. It holds at most one
// line per product and keeps lines in insertion order.
type Cart struct {
	lines []*Line
}

// NewCart returns an empty cart.
func NewCart() *Cart { return &Cart{} }

func (c *Cart) find(productID id.ProductID) int {
	for i, l := range c.lines {
		if l.Product.ID == productID {
			return i
		}
	}
	return -1
}

// Add increments the product's quantity, or appends a new line with
// quantity 1 and an empty note.
func (c *Cart) Add(p *catalog.Product) {
	if i := c.find(p.ID); i >= 0 {
		c.lines[i].Quantity++
		return
	}
	c.lines = append(c.lines, &Line{Product: *p, Quantity: 1})
}

// Remove drops the product's line. It reports whether a line existed.
func (c *Cart) Remove(productID id.ProductID) bool {
	i := c.find(productID)
	if i < 0 {
		return false
	}
	c.lines = append(c.lines[:i], c.lines[i+1:]...)
	return true
}

// UpdateQuantity adds delta to the line's quantity, never going below 1.
// Removing a line takes an explicit Remove.
func (c *Cart) UpdateQuantity(productID id.ProductID, delta int) bool {
	i := c.find(productID)
	if i < 0 {
		return false
	}
	c.lines[i].Quantity = max(1, c.lines[i].Quantity+delta)
	return true
}

// UpdateNote sets the kitchen note of the line.
func (c *Cart) UpdateNote(productID id.ProductID, note string) bool {
	i := c.find(productID)
	if i < 0 {
		return false
	}
	c.lines[i].Note = note
	return true
}

// Reprice replaces the product snapshot of the line.
func (c *Cart) Reprice(p *catalog.Product) bool {
	i := c.find(p.ID)
	if i < 0 {
		return false
	}
	c.lines[i].Product = *p
	return true
}

// Lines returns a copy of the lines in insertion order.
func (c *Cart) Lines() []Line {
	out := make([]Line, len(c.lines))
	for i, l := range c.lines {
		out[i] = *l
	}
	return out
}

// Len returns the number of lines.
func (c *Cart) Len() int { return len(c.lines) }

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool { return len(c.lines) == 0 }

// Total is Σ price × quantity over the lines, recomputed on every call.
func (c *Cart) Total(currency string) types.Money {
	total := types.Zero(currency)
	for _, l := range c.lines {
		total = total.Add(l.Product.Price.Multiply(int64(l.Quantity)))
	}
	return total
}

// Reset empties the cart.
func (c *Cart) Reset() { c.lines = nil }

// Load replaces the cart contents with lines rebuilt from order items.
// Items whose product lookup reports ok == false are dropped.
func (c *Cart) Load(items []Item, lookup func(id.ProductID) (*catalog.Product, bool)) {
	c.lines = c.lines[:0]
	for _, it := range items {
		p, ok := lookup(it.ProductID)
		if !ok {
			continue
		}
		if i := c.find(p.ID); i >= 0 {
			c.lines[i].Quantity += it.Quantity
			continue
		}
		c.lines = append(c.lines, &Line{Product: *p, Quantity: it.Quantity, Note: it.Notes})
	}
}

// Items converts the lines into fresh QUEUED order items priced at the
// lines' product snapshots.
func (c *Cart) Items() []Item {
	items := make([]Item, len(c.lines))
	for i, l := range c.lines {
		items[i] = Item{
			ID:          id.NewOrderItemID(),
			ProductID:   l.Product.ID,
			ProductName: l.Product.Name,
			Quantity:    l.Quantity,
			UnitPrice:   l.Product.Price,
			Notes:       l.Note,
			Status:      ItemQueued,
		}
	}
	return items
}

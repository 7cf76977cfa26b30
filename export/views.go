package export

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/xraph/restro/catalog"
	"github.com/xraph/restro/id"
	"github.com/xraph/restro/inventory"
	"github.com/xraph/restro/order"
	"github.com/xraph/restro/table"
)

// View names an exportable list.
type View string

const (
	ViewOrders      View = "orders"
	ViewProducts    View = "products"
	ViewIngredients View = "ingredients"
)

// ParseView accepts a view name in any letter case.
func ParseView(s string) (View, bool) {
	v := View(strings.ToLower(strings.TrimSpace(s)))
	switch v {
	case ViewOrders, ViewProducts, ViewIngredients:
		return v, true
	}
	return v, false
}

// Filename is the download name of the view.
func (v View) Filename() string {
	return "restro_" + string(v) + ".csv"
}

// Document is a rendered view.
type Document struct {
	View     View   `json:"view"`
	Filename string `json:"filename"`
	Rows     int    `json:"rows"`
	Content  string `json:"content"`
}

// Table is a view before encoding.
type Table struct {
	Headers []string
	Rows    [][]string
}

// Render encodes t as the document for view.
func (t Table) Render(view View) *Document {
	return &Document{
		View:     view,
		Filename: view.Filename(),
		Rows:     len(t.Rows),
		Content:  Encode(t.Headers, t.Rows),
	}
}

// Orders lays out orders. The party column shows the table number for
// dine-in orders and the customer otherwise.
func Orders(orders []*order.Order, tables []*table.Table) Table {
	numbers := make(map[id.TableID]int, len(tables))
	for _, t := range tables {
		numbers[t.ID] = t.Number
	}

	out := Table{Headers: []string{"ID", "Type", "Status", "Table/Customer", "Total", "Date"}}
	for _, o := range orders {
		out.Rows = append(out.Rows, []string{
			o.ID.String(),
			string(o.Type),
			string(o.Status),
			party(o, numbers),
			o.TotalAmount.FormatMajor(),
			o.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return out
}

func party(o *order.Order, numbers map[id.TableID]int) string {
	if !o.TableID.IsNil() {
		if n, ok := numbers[o.TableID]; ok {
			return fmt.Sprintf("Table %d", n)
		}
		return "Table ?"
	}
	switch {
	case o.CustomerName != "":
		return o.CustomerName
	case o.CustomerID != "":
		return o.CustomerID
	default:
		return "N/A"
	}
}

// Products lays out the menu.
func Products(products []*catalog.Product, categories []*catalog.Category) Table {
	names := make(map[id.CategoryID]string, len(categories))
	for _, c := range categories {
		names[c.ID] = c.Name
	}

	out := Table{Headers: []string{"Name", "Category", "Price", "Available", "PrepTimeMinutes"}}
	for _, p := range products {
		category, ok := names[p.CategoryID]
		if !ok {
			category = "N/A"
		}
		available := "No"
		if p.IsAvailable {
			available = "Yes"
		}
		out.Rows = append(out.Rows, []string{
			p.Name,
			category,
			p.Price.FormatMajor(),
			available,
			strconv.Itoa(p.PreparationTimeMinutes),
		})
	}
	return out
}

// Ingredients lays out the stock list.
func Ingredients(ings []*inventory.Ingredient) Table {
	out := Table{Headers: []string{"Item", "CurrentStock", "Unit", "MinStock", "UnitCost", "Status"}}
	for _, ing := range ings {
		status := "Normal"
		if ing.Status() != inventory.StatusOK {
			status = "Low/Critical"
		}
		out.Rows = append(out.Rows, []string{
			ing.Name,
			ing.CurrentStock.String(),
			string(ing.Unit),
			ing.MinStockAlert.String(),
			ing.CostPerUnit.String(),
			status,
		})
	}
	return out
}

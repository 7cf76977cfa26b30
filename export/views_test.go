package export_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/xraph/restro/catalog"
	"github.com/xraph/restro/export"
	"github.com/xraph/restro/id"
	"github.com/xraph/restro/inventory"
	"github.com/xraph/restro/order"
	"github.com/xraph/restro/table"
	"github.com/xraph/restro/types"
)

func TestOrdersView(t *testing.T) {
	created := time.Date(2026, 2, 14, 20, 15, 0, 0, time.UTC)
	t1 := &table.Table{ID: id.NewTableID(), Number: 4}

	dineIn := &order.Order{ID: id.NewOrderID(), Type: order.TypeDineIn, Status: order.StatusPending,
		TableID: t1.ID, TotalAmount: types.MZN(25000), Entity: types.NewEntity(created)}
	takeaway := &order.Order{ID: id.NewOrderID(), Type: order.TypeTakeaway, Status: order.StatusPreparing,
		CustomerName: "Silva, Ana", TotalAmount: types.MZN(9950), Entity: types.NewEntity(created)}
	anonymous := &order.Order{ID: id.NewOrderID(), Type: order.TypeTakeaway, Status: order.StatusCancelled,
		TotalAmount: types.MZN(100), Entity: types.NewEntity(created)}

	doc := export.Orders([]*order.Order{dineIn, takeaway, anonymous}, []*table.Table{t1}).Render(export.ViewOrders)

	want := "ID,Type,Status,Table/Customer,Total,Date\n" +
		dineIn.ID.String() + ",DINE_IN,PENDING,Table 4,250.00,2026-02-14T20:15:00Z\n" +
		takeaway.ID.String() + ",TAKEAWAY,PREPARING,\"Silva, Ana\",99.50,2026-02-14T20:15:00Z\n" +
		anonymous.ID.String() + ",TAKEAWAY,CANCELLED,N/A,1.00,2026-02-14T20:15:00Z"
	if doc.Content != want {
		t.Errorf("Content:\ngot  %q\nwant %q", doc.Content, want)
	}
	if doc.Rows != 3 || doc.Filename != "restro_orders.csv" {
		t.Errorf("Document: got rows=%d filename=%q", doc.Rows, doc.Filename)
	}
}

func TestProductsView(t *testing.T) {
	cat := &catalog.Category{ID: id.NewCategoryID(), Name: "Bebidas"}
	products := []*catalog.Product{
		{Name: "Sumo", CategoryID: cat.ID, Price: types.MZN(7500), IsAvailable: true, PreparationTimeMinutes: 2},
		{Name: "Prato \"do dia\"", CategoryID: id.NewCategoryID(), Price: types.MZN(45000), PreparationTimeMinutes: 25},
	}

	tbl := export.Products(products, []*catalog.Category{cat})
	got := export.Encode(tbl.Headers, tbl.Rows)
	want := "Name,Category,Price,Available,PrepTimeMinutes\n" +
		"Sumo,Bebidas,75.00,Yes,2\n" +
		"\"Prato \"\"do dia\"\"\",N/A,450.00,No,25"
	if got != want {
		t.Errorf("Products:\ngot  %q\nwant %q", got, want)
	}
}

func TestIngredientsView(t *testing.T) {
	ings := []*inventory.Ingredient{
		{Name: "Arroz", Unit: inventory.UnitKG, CurrentStock: decimal.RequireFromString("12"),
			MinStockAlert: decimal.RequireFromString("5"), CostPerUnit: decimal.RequireFromString("85.5")},
		{Name: "Óleo", Unit: inventory.UnitL, CurrentStock: decimal.RequireFromString("7.5"),
			MinStockAlert: decimal.RequireFromString("5"), CostPerUnit: decimal.RequireFromString("120")},
	}

	tbl := export.Ingredients(ings)
	got := export.Encode(tbl.Headers, tbl.Rows)
	want := "Item,CurrentStock,Unit,MinStock,UnitCost,Status\n" +
		"Arroz,12,KG,5,85.5,Normal\n" +
		"Óleo,7.5,L,5,120,Low/Critical"
	if got != want {
		t.Errorf("Ingredients:\ngot  %q\nwant %q", got, want)
	}
}

func TestParseView(t *testing.T) {
	if v, ok := export.ParseView(" Orders "); !ok || v != export.ViewOrders {
		t.Errorf("ParseView(Orders): got %q %v", v, ok)
	}
	if _, ok := export.ParseView("tables"); ok {
		t.Error("ParseView(tables): want not ok")
	}
}

// Package demo seeds a tenant with a small Mozambican restaurant: menu,
// tables, stock and a few orders in flight. Demo tenants are read-only,
// so seeding writes to the store directly.
package demo

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/xraph/restro"
	"github.com/xraph/restro/catalog"
	"github.com/xraph/restro/id"
	"github.com/xraph/restro/inventory"
	"github.com/xraph/restro/order"
	"github.com/xraph/restro/store"
	"github.com/xraph/restro/table"
	"github.com/xraph/restro/tenant"
	"github.com/xraph/restro/types"
)

// Summary counts what Seed wrote.
type Summary struct {
	Categories  int `json:"categories"`
	Products    int `json:"products"`
	Ingredients int `json:"ingredients"`
	Tables      int `json:"tables"`
	Orders      int `json:"orders"`
}

type productSeed struct {
	category    int
	name        string
	description string
	price       int64
	available   bool
	prepMinutes int
}

type ingredientSeed struct {
	name  string
	unit  inventory.Unit
	stock string
	min   string
	cost  string
}

type tableSeed struct {
	number   int
	capacity int
	status   table.Status
	name     string
	at       time.Duration
}

type lineSeed struct {
	product  int
	quantity int
	status   order.ItemStatus
}

type orderSeed struct {
	typ      order.Type
	status   order.Status
	payment  order.PaymentStatus
	method   order.PaymentMethod
	table    int
	customer string
	phone    string
	address  string
	age      time.Duration
	lines    []lineSeed
}

var categories = []string{
	"Entradas & Petiscos",
	"Pratos Típicos",
	"Grelhados & Mariscos",
	"Bebidas",
	"Sobremesas",
}

var products = []productSeed{
	{0, "Chamuças (Carne/Frango)", "Chamuças crocantes com recheio caseiro.", 5000, true, 5},
	{0, "Rissóis de Camarão", "Massa leve recheada com camarão cremoso.", 6000, true, 5},
	{0, "Mandioca Frita", "Mandioca macia por dentro e crocante por fora.", 15000, true, 10},
	{1, "Matapa com Caranguejo", "Folhas de mandioca, amendoim, leite de coco e caranguejo.", 55000, true, 40},
	{1, "Frango à Zambeziana", "Frango grelhado com molho de leite de coco.", 65000, true, 45},
	{1, "Mucapata", "Feijão soroco, arroz e coco.", 45000, false, 50},
	{2, "Camarão Grelhado (500g)", "Camarão tigre com molho de limão e alho.", 120000, true, 25},
	{2, "Peixe Vermelho Grelhado", "Peixe fresco grelhado na brasa.", 80000, true, 30},
	{3, "Cerveja 2M", "Cerveja nacional lager, 330ml.", 8000, true, 2},
	{3, "Laurentina Preta", "Cerveja preta, sabor intenso.", 9000, true, 2},
	{3, "Coca-Cola", "Lata 330ml.", 6000, true, 2},
	{4, "Bolo de Mandioca", "Fatia de bolo tradicional com coco.", 15000, true, 2},
}

var ingredients = []ingredientSeed{
	{"Carne Bovina", inventory.UnitKG, "15.5", "5", "450"},
	{"Arroz Basmati", inventory.UnitKG, "40", "10", "90"},
	{"Cerveja 2M", inventory.UnitUnit, "120", "24", "50"},
	{"Amendoim", inventory.UnitKG, "15", "4", "80"},
	{"Folha de Mandioca", inventory.UnitKG, "3.5", "3", "30"},
	{"Cebola", inventory.UnitKG, "6", "5", "45"},
	{"Óleo de Cozinha", inventory.UnitL, "5.5", "5", "120"},
	{"Tomate", inventory.UnitKG, "2", "5", "60"},
	{"Coca-Cola Lata", inventory.UnitUnit, "8", "20", "35"},
	{"Camarão Tigre", inventory.UnitKG, "1.5", "2", "800"},
}

var tables = []tableSeed{
	{1, 4, table.StatusOccupied, "", 0},
	{2, 2, table.StatusAvailable, "", 0},
	{3, 6, table.StatusReserved, "Grupo Aniversário", 10 * time.Hour},
	{4, 4, table.StatusAvailable, "", 0},
	{5, 2, table.StatusAvailable, "", 0},
}

var orders = []orderSeed{
	{
		typ: order.TypeDineIn, status: order.StatusPreparing, payment: order.PaymentPending, method: order.PaymentMpesa,
		table: 1, customer: "Família Santos", age: time.Hour,
		lines: []lineSeed{{4, 2, order.ItemDone}, {8, 1, order.ItemDone}},
	},
	{
		typ: order.TypeDelivery, status: order.StatusPreparing, payment: order.PaymentPending, method: order.PaymentCash,
		table: -1, customer: "Maria Langa", phone: "841234567", address: "Av. 24 de Julho, Tete", age: 20 * time.Minute,
		lines: []lineSeed{{3, 1, order.ItemCooking}, {10, 1, order.ItemDone}},
	},
	{
		typ: order.TypeTakeaway, status: order.StatusPending, payment: order.PaymentPaid, method: order.PaymentCard,
		table: -1, age: 5 * time.Minute,
		lines: []lineSeed{{10, 1, order.ItemQueued}},
	},
}

// Seed writes the demo dataset for tenantID, stamped relative to now.
func Seed(ctx context.Context, s store.Store, tenantID id.TenantID, now time.Time) (*Summary, error) {
	now = now.UTC()
	sum := &Summary{}

	catIDs := make([]id.CategoryID, len(categories))
	for i, name := range categories {
		c := &catalog.Category{
			Entity:   types.NewEntity(now),
			ID:       id.NewCategoryID(),
			TenantID: tenantID,
			Name:     name,
		}
		if err := s.CreateCategory(ctx, c); err != nil {
			return nil, fmt.Errorf("demo: category %q: %w", name, err)
		}
		catIDs[i] = c.ID
		sum.Categories++
	}

	prods := make([]*catalog.Product, len(products))
	for i, ps := range products {
		p := &catalog.Product{
			Entity:                 types.NewEntity(now),
			ID:                     id.NewProductID(),
			TenantID:               tenantID,
			CategoryID:             catIDs[ps.category],
			Name:                   ps.name,
			Description:            ps.description,
			Price:                  types.MZN(ps.price),
			IsAvailable:            ps.available,
			PreparationTimeMinutes: ps.prepMinutes,
		}
		if err := s.CreateProduct(ctx, p); err != nil {
			return nil, fmt.Errorf("demo: product %q: %w", ps.name, err)
		}
		prods[i] = p
		sum.Products++
	}

	restocked := now.Add(-24 * time.Hour)
	for _, is := range ingredients {
		ing := &inventory.Ingredient{
			Entity:        types.NewEntity(now),
			ID:            id.NewIngredientID(),
			TenantID:      tenantID,
			Name:          is.name,
			Unit:          is.unit,
			CurrentStock:  decimal.RequireFromString(is.stock),
			MinStockAlert: decimal.RequireFromString(is.min),
			CostPerUnit:   decimal.RequireFromString(is.cost),
			LastRestocked: restocked,
		}
		if err := s.CreateIngredient(ctx, ing); err != nil {
			return nil, fmt.Errorf("demo: ingredient %q: %w", is.name, err)
		}
		sum.Ingredients++
	}

	tableIDs := make(map[int]id.TableID, len(tables))
	for _, ts := range tables {
		t := &table.Table{
			Entity:   types.NewEntity(now),
			ID:       id.NewTableID(),
			TenantID: tenantID,
			Number:   ts.number,
			Capacity: ts.capacity,
			Status:   ts.status,
		}
		if ts.status == table.StatusReserved {
			at := now.Add(ts.at)
			t.ReservationName = ts.name
			t.ReservationTime = &at
		}
		if err := s.CreateTable(ctx, t); err != nil {
			return nil, fmt.Errorf("demo: table %d: %w", ts.number, err)
		}
		tableIDs[ts.number] = t.ID
		sum.Tables++
	}

	for i, src := range orders {
		created := now.Add(-src.age)
		o := &order.Order{
			Entity:          types.NewEntity(created),
			ID:              id.NewOrderID(),
			TenantID:        tenantID,
			Type:            src.typ,
			Status:          src.status,
			PaymentStatus:   src.payment,
			PaymentMethod:   src.method,
			TotalAmount:     types.Zero(types.DefaultCurrency),
			CustomerName:    src.customer,
			CustomerPhone:   src.phone,
			DeliveryAddress: src.address,
		}
		if src.table > 0 {
			o.TableID = tableIDs[src.table]
		}

		items := make([]order.Item, len(src.lines))
		for j, ls := range src.lines {
			p := prods[ls.product]
			items[j] = order.Item{
				ProductID:   p.ID,
				ProductName: p.Name,
				Quantity:    ls.quantity,
				UnitPrice:   p.Price,
			}
		}
		o.SetItems(items)
		// Seeded orders are already in the kitchen.
		for j, ls := range src.lines {
			o.Items[j].Status = ls.status
		}

		if err := s.CreateOrder(ctx, o); err != nil {
			return nil, fmt.Errorf("demo: order %d: %w", i+1, err)
		}
		sum.Orders++
	}

	return sum, nil
}

// Provision creates a read-only demo tenant on eng and seeds it.
func Provision(ctx context.Context, eng *restro.Engine, name string) (*tenant.Tenant, *Summary, error) {
	t, err := eng.ProvisionDemo(ctx, name)
	if err != nil {
		return nil, nil, err
	}
	sum, err := Seed(ctx, eng.Store(), t.ID, eng.Now())
	if err != nil {
		return nil, nil, err
	}
	return t, sum, nil
}

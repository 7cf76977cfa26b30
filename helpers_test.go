package restro_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/xraph/restro"
	"github.com/xraph/restro/catalog"
	"github.com/xraph/restro/id"
	"github.com/xraph/restro/order"
	"github.com/xraph/restro/store/memory"
	"github.com/xraph/restro/table"
	"github.com/xraph/restro/tenant"
	"github.com/xraph/restro/types"
)

var start = time.Date(2025, 2, 19, 10, 0, 0, 0, time.UTC)

// testClock is a settable Clock.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type fixture struct {
	eng    *restro.Engine
	mem    *memory.Store
	clock  *testClock
	tenant *tenant.Tenant
	sess   *restro.Session

	frango   *catalog.Product
	sumo     *catalog.Product
	mucapata *catalog.Product
	tables   map[int]*table.Table
}

// newFixture provisions a trial tenant with a small menu and four tables:
// T1 to T3 available, T4 occupied.
func newFixture(t *testing.T, opts ...restro.Option) *fixture {
	t.Helper()
	ctx := context.Background()

	f := &fixture{
		mem:    memory.New(),
		clock:  &testClock{now: start},
		tables: make(map[int]*table.Table),
	}
	f.eng = restro.New(f.mem, append([]restro.Option{restro.WithClock(f.clock)}, opts...)...)

	tn, err := f.eng.ProvisionTenant(ctx, "Villa Gourmet")
	require.NoError(t, err)
	f.tenant = tn

	cat := &catalog.Category{Entity: types.NewEntity(start), ID: id.NewCategoryID(), TenantID: tn.ID, Name: "Pratos"}
	require.NoError(t, f.mem.CreateCategory(ctx, cat))

	f.frango = f.product(t, cat.ID, "Frango, grelhado", 10000, true)
	f.sumo = f.product(t, cat.ID, "Sumo de Manga", 5000, true)
	f.mucapata = f.product(t, cat.ID, "Mucapata", 15000, false)

	for n := 1; n <= 4; n++ {
		status := table.StatusAvailable
		if n == 4 {
			status = table.StatusOccupied
		}
		tb := &table.Table{
			Entity:   types.NewEntity(start),
			ID:       id.NewTableID(),
			TenantID: tn.ID,
			Number:   n,
			Capacity: 4,
			Status:   status,
		}
		require.NoError(t, f.mem.CreateTable(ctx, tb))
		f.tables[n] = tb
	}

	f.sess, err = f.eng.OpenSession(ctx, tn.ID)
	require.NoError(t, err)
	return f
}

func (f *fixture) product(t *testing.T, categoryID id.CategoryID, name string, price int64, available bool) *catalog.Product {
	t.Helper()
	p := &catalog.Product{
		Entity:                 types.NewEntity(start),
		ID:                     id.NewProductID(),
		TenantID:               f.tenant.ID,
		CategoryID:             categoryID,
		Name:                   name,
		Price:                  types.MZN(price),
		IsAvailable:            available,
		PreparationTimeMinutes: 15,
	}
	require.NoError(t, f.mem.CreateProduct(context.Background(), p))
	return p
}

// setTableStatus changes a table behind the session's back.
func (f *fixture) setTableStatus(t *testing.T, n int, status table.Status) {
	t.Helper()
	ctx := context.Background()
	tb, err := f.mem.GetTable(ctx, f.tables[n].ID)
	require.NoError(t, err)
	tb.Status = status
	require.NoError(t, f.mem.UpdateTable(ctx, tb))
}

// dineIn submits the given products, one unit each, at table n.
func (f *fixture) dineIn(t *testing.T, n int, products ...*catalog.Product) *order.Order {
	t.Helper()
	ctx := context.Background()
	for _, p := range products {
		require.NoError(t, f.sess.AddToCart(ctx, p.ID))
	}
	o, err := f.sess.Submit(ctx, restro.SubmitRequest{Type: order.TypeDineIn, TableID: f.tables[n].ID})
	require.NoError(t, err)
	return o
}

// ingredient creates a stock item through the session.
func (f *fixture) ingredient(t *testing.T, name, stock, minAlert string) id.IngredientID {
	t.Helper()
	ing, err := f.sess.CreateIngredient(context.Background(), restro.IngredientInput{
		Name:     name,
		Unit:     "KG",
		Stock:    stock,
		MinAlert: minAlert,
		Cost:     "100",
	})
	require.NoError(t, err)
	return ing.ID
}

package demo_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xraph/restro"
	"github.com/xraph/restro/catalog"
	"github.com/xraph/restro/demo"
	"github.com/xraph/restro/order"
	"github.com/xraph/restro/store/memory"
	"github.com/xraph/restro/table"
	"github.com/xraph/restro/types"
)

var now = time.Date(2025, 2, 19, 10, 0, 0, 0, time.UTC)

func provision(t *testing.T) (*restro.Engine, *restro.Session) {
	t.Helper()
	ctx := context.Background()
	eng := restro.New(memory.New(), restro.WithClock(restro.FixedClock(now)))
	tn, sum, err := demo.Provision(ctx, eng, "Villa Gourmet")
	require.NoError(t, err)
	assert.Equal(t, &demo.Summary{Categories: 5, Products: 12, Ingredients: 10, Tables: 5, Orders: 3}, sum)

	sess, err := eng.OpenSession(ctx, tn.ID)
	require.NoError(t, err)
	return eng, sess
}

func TestSeedStockLevels(t *testing.T) {
	_, sess := provision(t)

	stats, err := sess.Stats(context.Background())
	require.NoError(t, err)
	if stats.OK != 4 || stats.Warning != 3 || stats.Critical != 3 {
		t.Errorf("Stats: got %+v, want 4 ok, 3 warning, 3 critical", stats)
	}

	alerts, err := sess.CriticalAlerts(context.Background())
	require.NoError(t, err)
	assert.Len(t, alerts, 3)
}

func TestSeedOrders(t *testing.T) {
	_, sess := provision(t)

	orders, err := sess.Orders(context.Background(), restro.OrderQuery{})
	require.NoError(t, err)
	require.Len(t, orders, 3)

	// Newest first.
	assert.Equal(t, order.TypeTakeaway, orders[0].Type)
	assert.Equal(t, order.TypeDineIn, orders[2].Type)
	assert.Equal(t, types.MZN(138000), orders[2].TotalAmount)
	assert.Equal(t, order.ItemDone, orders[2].Items[0].Status)

	pending, err := sess.PendingCount(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, pending)
}

func TestSeedTables(t *testing.T) {
	_, sess := provision(t)

	tables, err := sess.Tables(context.Background())
	require.NoError(t, err)
	require.Len(t, tables, 5)
	for _, tb := range tables {
		assert.True(t, tb.Consistent(), "table %d", tb.Number)
	}
	assert.Equal(t, table.StatusOccupied, tables[0].Status)
	assert.Equal(t, "Grupo Aniversário", tables[2].ReservationName)

	selectable, err := sess.SelectableTables(context.Background())
	require.NoError(t, err)
	assert.Len(t, selectable, 3)
}

func TestSeedCatalog(t *testing.T) {
	_, sess := provision(t)
	ctx := context.Background()

	available, err := sess.Products(ctx, catalog.Filter{})
	require.NoError(t, err)
	assert.Len(t, available, 11)

	all, err := sess.Products(ctx, catalog.Filter{ShowUnavailable: true, Search: "CERVEJA"})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestDemoTenantIsReadOnly(t *testing.T) {
	eng, sess := provision(t)
	ctx := context.Background()

	products, err := sess.Products(ctx, catalog.Filter{})
	require.NoError(t, err)
	require.NoError(t, sess.AddToCart(ctx, products[0].ID))

	_, err = sess.Submit(ctx, restro.SubmitRequest{Type: order.TypeTakeaway})
	assert.True(t, restro.IsReadOnly(err), "Submit: got %v", err)

	orders, err := eng.Store().ListOrders(ctx, sess.TenantID(), order.ListOpts{})
	require.NoError(t, err)
	assert.Len(t, orders, 3)
}

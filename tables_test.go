package restro_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xraph/restro"
	"github.com/xraph/restro/id"
	"github.com/xraph/restro/table"
)

func TestReserveAndCancel(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	when := start.Add(9 * time.Hour)

	tb, err := f.sess.Reserve(ctx, f.tables[2].ID, " Família Silva ", when)
	require.NoError(t, err)
	assert.Equal(t, table.StatusReserved, tb.Status)
	assert.Equal(t, "Família Silva", tb.ReservationName)
	require.NotNil(t, tb.ReservationTime)
	assert.Equal(t, when, *tb.ReservationTime)
	assert.True(t, tb.Consistent())

	selectable, err := f.sess.SelectableTables(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 3}, numbers(selectable))

	// A reserved table cannot be booked twice.
	_, err = f.sess.Reserve(ctx, f.tables[2].ID, "Costa", when)
	assert.Equal(t, restro.KindInvalidState, restro.Kind(err))

	p, err := f.sess.RequestCancelReservation(ctx, f.tables[2].ID)
	require.NoError(t, err)
	require.NoError(t, f.sess.Confirm(ctx, p.Token))

	tables, err := f.sess.Tables(ctx)
	require.NoError(t, err)
	for _, tb := range tables {
		if !tb.Consistent() {
			t.Errorf("table %d: inconsistent reservation fields %+v", tb.Number, tb)
		}
	}
	assert.Equal(t, table.StatusAvailable, tables[1].Status)
	assert.Empty(t, tables[1].ReservationName)
}

func TestReserveValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	when := start.Add(time.Hour)

	tests := []struct {
		name    string
		tableID id.TableID
		who     string
		when    time.Time
		kind    restro.ErrorKind
	}{
		{"missing name", f.tables[1].ID, "  ", when, restro.KindValidation},
		{"missing time", f.tables[1].ID, "Silva", time.Time{}, restro.KindValidation},
		{"occupied", f.tables[4].ID, "Silva", when, restro.KindInvalidState},
		{"unknown table", id.NewTableID(), "Silva", when, restro.KindNotFound},
	}
	for _, tt := range tests {
		_, err := f.sess.Reserve(ctx, tt.tableID, tt.who, tt.when)
		if got := restro.Kind(err); got != tt.kind {
			t.Errorf("%s: got %q, want %q (err %v)", tt.name, got, tt.kind, err)
		}
	}

	tables, err := f.sess.Tables(ctx)
	require.NoError(t, err)
	for _, tb := range tables {
		assert.Empty(t, tb.ReservationName, "table %d", tb.Number)
	}
}

func TestCancelReservationRequiresReservedTable(t *testing.T) {
	f := newFixture(t)
	_, err := f.sess.RequestCancelReservation(context.Background(), f.tables[1].ID)
	assert.Equal(t, restro.KindInvalidState, restro.Kind(err))
	assert.Equal(t, 0, f.sess.PendingConfirmations())
}

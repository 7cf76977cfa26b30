package table_test

import (
	"errors"
	"testing"
	"time"

	"github.com/xraph/restro/id"
	"github.com/xraph/restro/table"
)

func TestReserve(t *testing.T) {
	when := time.Date(2026, 3, 1, 19, 30, 0, 0, time.UTC)

	tests := []struct {
		name    string
		status  table.Status
		who     string
		when    time.Time
		wantErr error
	}{
		{"available", table.StatusAvailable, "Ana", when, nil},
		{"missing name", table.StatusAvailable, "  ", when, table.ErrMissingName},
		{"missing time", table.StatusAvailable, "Ana", time.Time{}, table.ErrMissingTime},
		{"occupied", table.StatusOccupied, "Ana", when, table.ErrNotAvailable},
		{"already reserved", table.StatusReserved, "Ana", when, table.ErrNotAvailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tb := &table.Table{ID: id.NewTableID(), Status: tt.status}
			if tt.status == table.StatusReserved {
				w := when
				tb.ReservationName, tb.ReservationTime = "Rui", &w
			}
			before := tb.Clone()

			err := tb.Reserve(tt.who, tt.when)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Reserve: got %v, want %v", err, tt.wantErr)
			}
			if err != nil {
				if tb.Status != before.Status || tb.ReservationName != before.ReservationName {
					t.Error("refused reserve mutated the table")
				}
				return
			}
			if tb.Status != table.StatusReserved {
				t.Errorf("Status: got %s, want RESERVED", tb.Status)
			}
			if tb.ReservationName != "Ana" || tb.ReservationTime == nil || !tb.ReservationTime.Equal(when) {
				t.Errorf("reservation: got %q %v", tb.ReservationName, tb.ReservationTime)
			}
			if !tb.Consistent() {
				t.Error("reserved table is inconsistent")
			}
		})
	}
}

func TestCancelReservation(t *testing.T) {
	tb := &table.Table{ID: id.NewTableID(), Status: table.StatusAvailable}
	if err := tb.CancelReservation(); !errors.Is(err, table.ErrNotReserved) {
		t.Fatalf("cancel on available: got %v", err)
	}

	if err := tb.Reserve("Ana", time.Now()); err != nil {
		t.Fatal(err)
	}
	if err := tb.CancelReservation(); err != nil {
		t.Fatalf("CancelReservation: %v", err)
	}
	if tb.Status != table.StatusAvailable {
		t.Errorf("Status: got %s, want AVAILABLE", tb.Status)
	}
	if tb.ReservationName != "" || tb.ReservationTime != nil {
		t.Error("reservation fields not cleared")
	}
	if !tb.Consistent() {
		t.Error("available table is inconsistent")
	}
}

func TestSelectable(t *testing.T) {
	t1 := &table.Table{ID: id.NewTableID(), Number: 1, Status: table.StatusOccupied}
	t2 := &table.Table{ID: id.NewTableID(), Number: 2, Status: table.StatusAvailable}
	t3 := &table.Table{ID: id.NewTableID(), Number: 3, Status: table.StatusReserved}
	all := []*table.Table{t1, t2, t3}

	got := table.Selectable(all, nil)
	if len(got) != 1 || got[0].Number != 2 {
		t.Errorf("Selectable(nil): got %d tables", len(got))
	}

	got = table.Selectable(all, &t1.ID)
	if len(got) != 2 || got[0].Number != 1 || got[1].Number != 2 {
		t.Errorf("Selectable(t1): got %d tables", len(got))
	}

	if !table.IsSelectable(all, &t1.ID, t1.ID) {
		t.Error("editing table should be selectable")
	}
	if table.IsSelectable(all, nil, t3.ID) {
		t.Error("reserved table should not be selectable")
	}
}

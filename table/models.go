// Package table tracks dining tables and their reservation state.
package table

import (
	"errors"
	"strings"
	"time"

	"github.com/xraph/restro/id"
	"github.com/xraph/restro/types"
)

type Status string

const (
	StatusAvailable Status = "AVAILABLE"
	StatusOccupied  Status = "OCCUPIED"
	StatusReserved  Status = "RESERVED"
)

// Transition errors. The root package maps them onto its taxonomy.
var (
	ErrNotAvailable = errors.New("table: not available")
	ErrNotReserved  = errors.New("table: not reserved")
	ErrMissingName  = errors.New("table: reservation name is required")
	ErrMissingTime  = errors.New("table: reservation time is required")
)

type Table struct {
	types.Entity
	ID              id.TableID  `json:"id"`
	TenantID        id.TenantID `json:"tenant_id"`
	Number          int         `json:"number"`
	Capacity        int         `json:"capacity"`
	Status          Status      `json:"status"`
	ReservationName string      `json:"reservation_name,omitempty"`
	ReservationTime *time.Time  `json:"reservation_time,omitempty"`
}

// Reserve moves an AVAILABLE table to RESERVED under name at when.
func (t *Table) Reserve(name string, when time.Time) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrMissingName
	}
	if when.IsZero() {
		return ErrMissingTime
	}
	if t.Status != StatusAvailable {
		return ErrNotAvailable
	}
	w := when.UTC()
	t.Status = StatusReserved
	t.ReservationName = name
	t.ReservationTime = &w
	return nil
}

// CancelReservation returns a RESERVED table to AVAILABLE and clears
// the reservation fields.
func (t *Table) CancelReservation() error {
	if t.Status != StatusReserved {
		return ErrNotReserved
	}
	t.Status = StatusAvailable
	t.ReservationName = ""
	t.ReservationTime = nil
	return nil
}

// Consistent reports whether the reservation fields are set exactly
// when the table is RESERVED.
func (t *Table) Consistent() bool {
	hasReservation := t.ReservationName != "" && t.ReservationTime != nil
	empty := t.ReservationName == "" && t.ReservationTime == nil
	if t.Status == StatusReserved {
		return hasReservation
	}
	return empty
}

// Clone returns a deep copy of t.
func (t *Table) Clone() *Table {
	c := *t
	if t.ReservationTime != nil {
		rt := *t.ReservationTime
		c.ReservationTime = &rt
	}
	return &c
}

// Selectable returns the AVAILABLE tables plus the table assigned to the
// order being edited, if any. Input order is kept.
func Selectable(tables []*Table, editing *id.TableID) []*Table {
	out := make([]*Table, 0, len(tables))
	for _, t := range tables {
		if t.Status == StatusAvailable || (editing != nil && t.ID == *editing) {
			out = append(out, t)
		}
	}
	return out
}

// IsSelectable reports whether tableID is among Selectable(tables, editing).
func IsSelectable(tables []*Table, editing *id.TableID, tableID id.TableID) bool {
	for _, t := range Selectable(tables, editing) {
		if t.ID == tableID {
			return true
		}
	}
	return false
}

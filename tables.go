package restro

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/xraph/restro/confirm"
	"github.com/xraph/restro/id"
	"github.com/xraph/restro/table"
)

// Tables lists the tenant's dining tables.
func (s *Session) Tables(ctx context.Context) ([]*table.Table, error) {
	if _, err := s.view(ctx); err != nil {
		return nil, err
	}
	return s.engine.store.ListTables(ctx, s.tenantID)
}

// SelectableTables returns the tables an order may be placed at: the
// available ones plus, while editing, the edited order's own table.
func (s *Session) SelectableTables(ctx context.Context) ([]*table.Table, error) {
	tables, err := s.Tables(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return table.Selectable(tables, s.editingTable()), nil
}

// Reserve books an available table under name at when.
func (s *Session) Reserve(ctx context.Context, tableID id.TableID, name string, when time.Time) (*table.Table, error) {
	const op = "table.reserve"

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.guard(ctx, op); err != nil {
		return nil, err
	}
	if blank(name) {
		return nil, s.refuse(ctx, op, invalid("reservation_name", "is required"))
	}
	if when.IsZero() {
		return nil, s.refuse(ctx, op, invalid("reservation_time", "is required"))
	}

	t, err := s.table(ctx, tableID)
	if err != nil {
		return nil, err
	}
	if err := t.Reserve(name, when); err != nil {
		return nil, s.refuse(ctx, op, tableError(err))
	}
	t.Touch(s.engine.Now())

	if err := s.engine.store.UpdateTable(ctx, t); err != nil {
		return nil, err
	}

	s.engine.logger.Info("table reserved",
		"tenant_id", s.tenantID.String(),
		"table", t.Number,
		"name", t.ReservationName,
	)
	s.engine.plugins.EmitTableReserved(ctx, t.Clone())

	return t, nil
}

// RequestCancelReservation asks for confirmation before freeing a
// reserved table.
func (s *Session) RequestCancelReservation(ctx context.Context, tableID id.TableID) (confirm.Pending, error) {
	const op = "table.cancel_reservation"

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.guard(ctx, op); err != nil {
		return confirm.Pending{}, err
	}
	t, err := s.table(ctx, tableID)
	if err != nil {
		return confirm.Pending{}, err
	}
	if t.Status != table.StatusReserved {
		return confirm.Pending{}, s.refuse(ctx, op, tableError(table.ErrNotReserved))
	}
	return s.request(confirm.ActionCancelReservation, t.ID), nil
}

func (s *Session) cancelReservation(ctx context.Context, tableID id.TableID) error {
	const op = "table.cancel_reservation"

	if _, err := s.guard(ctx, op); err != nil {
		return err
	}
	t, err := s.table(ctx, tableID)
	if err != nil {
		return err
	}
	if err := t.CancelReservation(); err != nil {
		return s.refuse(ctx, op, tableError(err))
	}
	t.Touch(s.engine.Now())

	if err := s.engine.store.UpdateTable(ctx, t); err != nil {
		return err
	}

	s.engine.logger.Info("reservation canceled",
		"tenant_id", s.tenantID.String(),
		"table", t.Number,
	)
	s.engine.plugins.EmitReservationCanceled(ctx, t.Clone())
	return nil
}

func (s *Session) table(ctx context.Context, tableID id.TableID) (*table.Table, error) {
	t, err := s.engine.store.GetTable(ctx, tableID)
	if err != nil {
		return nil, err
	}
	if !s.owned(t.TenantID) {
		return nil, ErrTableNotFound
	}
	return t, nil
}

// tableError maps table transition errors onto the error taxonomy.
func tableError(err error) error {
	switch {
	case errors.Is(err, table.ErrMissingName):
		return invalid("reservation_name", "is required")
	case errors.Is(err, table.ErrMissingTime):
		return invalid("reservation_time", "is required")
	default:
		return fmt.Errorf("%w: %w", ErrInvalidTransition, err)
	}
}

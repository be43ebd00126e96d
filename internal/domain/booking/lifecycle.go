package booking

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/nathanael250/travooz-hms-sub004/internal/domain/audit"
	"github.com/nathanael250/travooz-hms-sub004/internal/domain/inventory"
)

// transition locks the booking, validates from -> to, runs apply and saves.
// apply sees the locked booking and may mutate it.
func (s *Service) transition(ctx context.Context, op string, bookingID int64, to Status, actorID int64, apply func(tx *gorm.DB, b *Booking, fx *effects) error) (*Booking, error) {
	var (
		out  *Booking
		from Status
	)
	fx := &effects{}
	err := s.inTx(ctx, func(tx *gorm.DB) error {
		store := NewStore(tx)
		b, err := store.LockBooking(ctx, bookingID)
		if err != nil {
			return err
		}
		from = b.Status
		if err := checkTransition(from, to); err != nil {
			return err
		}
		if err := apply(tx, b, fx); err != nil {
			return err
		}

		b.Status = to
		if err := store.SaveBooking(ctx, b); err != nil {
			return err
		}

		fx.record(audit.Entry{
			ActorID:      actorID,
			Action:       "booking." + string(to),
			ResourceType: "booking",
			ResourceID:   b.ID,
			Before:       map[string]any{"status": from},
			After:        map[string]any{"status": to, "total_amount": b.TotalAmount},
		})
		out = b
		return nil
	})
	if err != nil {
		return nil, s.fail(op, err)
	}

	s.metrics.Transition(string(from), string(to))
	s.flush(ctx, fx)
	return out, nil
}

// ConfirmBooking moves pending -> confirmed after re-validating that the
// held unit is still free. A booking without an active assignment gets one.
func (s *Service) ConfirmBooking(ctx context.Context, bookingID, actorID int64) (*Booking, error) {
	return s.transition(ctx, "confirm_booking", bookingID, StatusConfirmed, actorID, func(tx *gorm.DB, b *Booking, fx *effects) error {
		store := NewStore(tx)
		rb, err := store.GetRoomBooking(ctx, b.ID)
		if err != nil {
			return err
		}
		active, err := store.ActiveAssignment(ctx, b.ID)
		if err != nil {
			return err
		}

		if active != nil {
			if _, err := holdUnit(ctx, tx, active.RoomUnitID, rb.CheckInDate, rb.CheckOutDate, b.ID); err != nil {
				return err
			}
		} else {
			q := AvailabilityQuery{CheckIn: rb.CheckInDate, CheckOut: rb.CheckOutDate, RoomTypeID: rb.RoomTypeID}
			unit, err := reserveUnit(ctx, tx, q, nil, b.ID)
			if err != nil {
				return err
			}
			if err := store.CreateAssignment(ctx, newAssignment(b.ID, unit.ID, rb, actorID, s.now())); err != nil {
				return err
			}
			rb.RoomUnitID = unit.ID
			if err := store.SaveRoomBooking(ctx, rb); err != nil {
				return err
			}
		}

		now := s.now().UTC()
		b.ConfirmedAt = &now
		return nil
	})
}

// CheckIn moves confirmed -> checked_in. The assigned unit must be ready
// (available) and becomes occupied.
func (s *Service) CheckIn(ctx context.Context, bookingID, actorID int64, notes string) (*Booking, error) {
	return s.transition(ctx, "check_in", bookingID, StatusCheckedIn, actorID, func(tx *gorm.DB, b *Booking, fx *effects) error {
		store := NewStore(tx)
		active, err := store.ActiveAssignment(ctx, b.ID)
		if err != nil {
			return err
		}
		if active == nil || active.Status != AssignmentAssigned {
			return fmt.Errorf("%w: booking %d has no assigned room", ErrInvalidState, b.ID)
		}

		unit, err := lockUnit(ctx, tx, active.RoomUnitID)
		if err != nil {
			return err
		}
		if unit.Status != inventory.UnitAvailable {
			return fmt.Errorf("%w: unit %s is %s", ErrUnitUnavailable, unit.UnitNumber, unit.Status)
		}

		now := s.now().UTC()
		active.Status = AssignmentCheckedIn
		active.CheckedInAt = &now
		active.Notes = appendNote(active.Notes, notes)
		if err := store.SaveAssignment(ctx, active); err != nil {
			return err
		}
		if err := s.setUnitStatus(ctx, tx, unit, inventory.UnitOccupied, b.ID, "check-in", fx); err != nil {
			return err
		}

		b.CheckedInAt = &now
		return nil
	})
}

// CheckOut moves checked_in -> checked_out. Final charges are appended and
// totals recomputed before the unit is handed to housekeeping.
func (s *Service) CheckOut(ctx context.Context, bookingID, actorID int64, finalCharges []ChargeInput, roomCondition string) (*Booking, error) {
	roomCondition = strings.TrimSpace(roomCondition)
	if len(roomCondition) > 255 {
		return nil, s.fail("check_out", invalid("room_condition", "must be at most 255 characters"))
	}
	for i, c := range finalCharges {
		if err := validateCharge(c, fmt.Sprintf("final_charges[%d].", i)); err != nil {
			return nil, s.fail("check_out", err)
		}
	}

	return s.transition(ctx, "check_out", bookingID, StatusCheckedOut, actorID, func(tx *gorm.DB, b *Booking, fx *effects) error {
		store := NewStore(tx)
		active, err := store.ActiveAssignment(ctx, b.ID)
		if err != nil {
			return err
		}
		if active == nil || active.Status != AssignmentCheckedIn {
			return fmt.Errorf("%w: booking %d has no checked-in room", ErrInvalidState, b.ID)
		}

		now := s.now().UTC()
		for _, in := range finalCharges {
			c := newCharge(b.ID, in, actorID, now)
			if err := store.AppendCharge(ctx, &c); err != nil {
				return err
			}
		}
		if _, err := refreshTotals(ctx, store, b); err != nil {
			return err
		}

		active.Status = AssignmentCheckedOut
		active.CheckedOutAt = &now
		active.CheckoutCondition = roomCondition
		if err := store.SaveAssignment(ctx, active); err != nil {
			return err
		}

		unit, err := lockUnit(ctx, tx, active.RoomUnitID)
		if err != nil {
			return err
		}
		if err := s.setUnitStatus(ctx, tx, unit, inventory.UnitCleaning, b.ID, "check-out", fx); err != nil {
			return err
		}

		b.CompletedAt = &now
		return nil
	})
}

// CancelBooking moves pending or confirmed -> cancelled and releases the
// held unit. A reason is required.
func (s *Service) CancelBooking(ctx context.Context, bookingID int64, reason string, actorID int64) (*Booking, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, s.fail("cancel_booking", invalid("reason", "is required"))
	}
	if len(reason) > 255 {
		return nil, s.fail("cancel_booking", invalid("reason", "must be at most 255 characters"))
	}

	return s.transition(ctx, "cancel_booking", bookingID, StatusCancelled, actorID, func(tx *gorm.DB, b *Booking, fx *effects) error {
		store := NewStore(tx)
		active, err := store.ActiveAssignment(ctx, b.ID)
		if err != nil {
			return err
		}

		now := s.now().UTC()
		if active != nil {
			if active.Status == AssignmentCheckedIn {
				return fmt.Errorf("%w: guest is checked in to the room", ErrInvalidState)
			}
			active.Status = AssignmentReleased
			active.ReleasedAt = &now
			active.Notes = appendNote(active.Notes, "cancelled: "+reason)
			if err := store.SaveAssignment(ctx, active); err != nil {
				return err
			}
			if err := s.releaseUnitIfIdle(ctx, tx, active.RoomUnitID, b.ID, fx); err != nil {
				return err
			}
		}

		b.CancelledAt = &now
		b.CancelReason = reason
		return nil
	})
}

// releaseUnitIfIdle returns an occupied unit to available when nobody is
// checked in to it any more. Other statuses are left to housekeeping.
func (s *Service) releaseUnitIfIdle(ctx context.Context, tx *gorm.DB, unitID, bookingID int64, fx *effects) error {
	unit, err := lockUnit(ctx, tx, unitID)
	if err != nil {
		return err
	}
	if unit.Status != inventory.UnitOccupied {
		return nil
	}
	n, err := NewStore(tx).CountCheckedIn(ctx, unit.ID)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	return s.setUnitStatus(ctx, tx, unit, inventory.UnitAvailable, bookingID, "released", fx)
}

func appendNote(existing, note string) string {
	note = strings.TrimSpace(note)
	switch {
	case note == "":
		return existing
	case existing == "":
		return note
	default:
		return existing + "\n" + note
	}
}

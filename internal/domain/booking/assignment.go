package booking

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/nathanael250/travooz-hms-sub004/internal/domain/audit"
)

// ReassignRoom moves a not-yet-arrived booking to newUnitID. The current
// assignment is released and a fresh one created, so the history keeps both.
func (s *Service) ReassignRoom(ctx context.Context, bookingID, newUnitID, actorID int64) (*RoomAssignment, error) {
	const op = "reassign_room"

	if newUnitID <= 0 {
		return nil, s.fail(op, invalid("room_unit_id", "must be positive"))
	}

	var out *RoomAssignment
	fx := &effects{}
	err := s.inTx(ctx, func(tx *gorm.DB) error {
		store := NewStore(tx)
		b, err := store.LockBooking(ctx, bookingID)
		if err != nil {
			return err
		}
		if !b.Status.AllowsReassignment() {
			return fmt.Errorf("%w: booking %d is %s", ErrInvalidState, b.ID, b.Status)
		}

		rb, err := store.GetRoomBooking(ctx, b.ID)
		if err != nil {
			return err
		}
		current, err := store.ActiveAssignment(ctx, b.ID)
		if err != nil {
			return err
		}
		if current != nil && current.RoomUnitID == newUnitID {
			return invalid("room_unit_id", "booking is already assigned to this unit")
		}

		unit, err := holdUnit(ctx, tx, newUnitID, rb.CheckInDate, rb.CheckOutDate, b.ID)
		if err != nil {
			return err
		}

		now := s.now().UTC()
		if current != nil {
			current.Status = AssignmentReleased
			current.ReleasedAt = &now
			current.Notes = appendNote(current.Notes, fmt.Sprintf("reassigned to unit %s", unit.UnitNumber))
			if err := store.SaveAssignment(ctx, current); err != nil {
				return err
			}
		}

		a := newAssignment(b.ID, unit.ID, rb, actorID, now)
		if err := store.CreateAssignment(ctx, a); err != nil {
			return err
		}

		previous := rb.RoomUnitID
		rb.RoomUnitID = unit.ID
		if err := store.SaveRoomBooking(ctx, rb); err != nil {
			return err
		}

		fx.record(audit.Entry{
			ActorID:      actorID,
			Action:       "booking.room_reassigned",
			ResourceType: "booking",
			ResourceID:   b.ID,
			Before:       map[string]any{"room_unit_id": previous},
			After:        map[string]any{"room_unit_id": unit.ID, "assignment_id": a.ID},
		})
		out = a
		return nil
	})
	if err != nil {
		return nil, s.fail(op, err)
	}

	s.flush(ctx, fx)
	s.log.Info("booking_room_reassigned",
		zap.Int64("booking_id", bookingID),
		zap.Int64("room_unit_id", out.RoomUnitID),
	)
	return out, nil
}

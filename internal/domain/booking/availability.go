package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/nathanael250/travooz-hms-sub004/internal/domain/inventory"
)

const maxStayNights = 365

type AvailabilityQuery struct {
	CheckIn    time.Time
	CheckOut   time.Time
	RoomTypeID *int64
	HomestayID *int64
}

func (q AvailabilityQuery) normalize() (AvailabilityQuery, error) {
	if q.CheckIn.IsZero() {
		return q, invalid("check_in_date", "is required")
	}
	if q.CheckOut.IsZero() {
		return q, invalid("check_out_date", "is required")
	}
	q.CheckIn = calendarDate(q.CheckIn)
	q.CheckOut = calendarDate(q.CheckOut)
	if !q.CheckOut.After(q.CheckIn) {
		return q, invalid("check_out_date", "must be after check_in_date")
	}
	if q.CheckOut.After(q.CheckIn.AddDate(0, 0, maxStayNights)) {
		return q, invalid("check_out_date", fmt.Sprintf("stay cannot exceed %d nights", maxStayNights))
	}
	return q, nil
}

// ResolveAvailability lists units that are bookable and free for the whole
// half-open window [CheckIn, CheckOut). The result is advisory; commit-time
// checks in createBooking and friends are authoritative.
func (s *Service) ResolveAvailability(ctx context.Context, q AvailabilityQuery) ([]inventory.Unit, error) {
	q, err := q.normalize()
	if err != nil {
		return nil, s.fail("resolve_availability", err)
	}

	start := s.now()
	units, err := findAvailableUnits(ctx, s.db, q, 0)
	s.metrics.ObserveAvailability(s.now().Sub(start))
	if err != nil {
		return nil, s.fail("resolve_availability", fmt.Errorf("%w: resolve availability: %w", ErrPersistence, err))
	}
	return units, nil
}

func findAvailableUnits(ctx context.Context, db *gorm.DB, q AvailabilityQuery, excludeBookingID int64) ([]inventory.Unit, error) {
	busy := db.Session(&gorm.Session{NewDB: true}).
		Model(&RoomAssignment{}).
		Select("1").
		Where("room_assignments.room_unit_id = room_inventory.id").
		Where("room_assignments.status IN ?", activeAssignmentStatuses).
		Where("room_assignments.check_in_date < ? AND room_assignments.check_out_date > ?", q.CheckOut, q.CheckIn)
	if excludeBookingID > 0 {
		busy = busy.Where("room_assignments.booking_id <> ?", excludeBookingID)
	}

	query := db.WithContext(ctx).
		Model(&inventory.Unit{}).
		Where("room_inventory.status NOT IN ?", inventory.NonBookableStatuses).
		Where("NOT EXISTS (?)", busy)
	if q.RoomTypeID != nil {
		query = query.Where("room_inventory.room_type_id = ?", *q.RoomTypeID)
	}
	if q.HomestayID != nil {
		query = query.Joins("JOIN room_types ON room_types.id = room_inventory.room_type_id").
			Where("room_types.homestay_id = ?", *q.HomestayID)
	}

	var units []inventory.Unit
	if err := query.Order("room_inventory.unit_number ASC").Find(&units).Error; err != nil {
		return nil, err
	}
	return units, nil
}

// lockUnit takes the row lock on a unit inside tx.
func lockUnit(ctx context.Context, tx *gorm.DB, unitID int64) (*inventory.Unit, error) {
	u, err := inventory.NewRepository(tx).LockUnit(ctx, unitID)
	if errors.Is(err, inventory.ErrUnitNotFound) {
		return nil, notFound("room unit", unitID)
	}
	return u, err
}

// holdUnit locks unitID and re-checks it against the window with a fresh
// statement, so a competing transaction that committed while we waited for
// the lock is visible.
func holdUnit(ctx context.Context, tx *gorm.DB, unitID int64, checkIn, checkOut time.Time, excludeBookingID int64) (*inventory.Unit, error) {
	u, err := lockUnit(ctx, tx, unitID)
	if err != nil {
		return nil, err
	}
	if !u.Status.Bookable() {
		return nil, fmt.Errorf("%w: unit %s is %s", ErrUnitUnavailable, u.UnitNumber, u.Status)
	}

	n, err := NewStore(tx).CountConflicts(ctx, u.ID, checkIn, checkOut, excludeBookingID)
	if err != nil {
		return nil, err
	}
	if n > 0 {
		return nil, fmt.Errorf("%w: unit %s is assigned for overlapping dates", ErrUnitUnavailable, u.UnitNumber)
	}
	return u, nil
}

// reserveUnit picks and locks a unit for q. A requested unit must itself be
// free; otherwise the first free candidate wins.
func reserveUnit(ctx context.Context, tx *gorm.DB, q AvailabilityQuery, requested *int64, excludeBookingID int64) (*inventory.Unit, error) {
	if requested != nil {
		u, err := holdUnit(ctx, tx, *requested, q.CheckIn, q.CheckOut, excludeBookingID)
		if err != nil {
			return nil, err
		}
		if q.RoomTypeID != nil && u.RoomTypeID != *q.RoomTypeID {
			return nil, invalid("room_unit_id", "unit does not belong to the requested room type")
		}
		if q.HomestayID != nil {
			rt, err := inventory.NewRepository(tx).GetRoomType(ctx, u.RoomTypeID)
			if err != nil {
				return nil, err
			}
			if rt.HomestayID == nil || *rt.HomestayID != *q.HomestayID {
				return nil, invalid("room_unit_id", "unit does not belong to the requested homestay")
			}
		}
		return u, nil
	}

	candidates, err := findAvailableUnits(ctx, tx, q, excludeBookingID)
	if err != nil {
		return nil, err
	}
	for _, c := range candidates {
		u, err := holdUnit(ctx, tx, c.ID, q.CheckIn, q.CheckOut, excludeBookingID)
		if err == nil {
			return u, nil
		}
		if !errors.Is(err, ErrUnitUnavailable) {
			return nil, err
		}
	}
	return nil, ErrNoAvailability
}

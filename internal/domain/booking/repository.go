package booking

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store is the gorm access layer for bookings and their child rows. It is
// bound to whatever handle it was built with, usually a transaction.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) GetBooking(ctx context.Context, id int64) (*Booking, error) {
	var b Booking
	if err := s.db.WithContext(ctx).First(&b, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("booking", id)
		}
		return nil, err
	}
	return &b, nil
}

// LockBooking reads the booking FOR UPDATE. Every lifecycle operation starts
// here so concurrent transitions on the same booking serialize.
func (s *Store) LockBooking(ctx context.Context, id int64) (*Booking, error) {
	var b Booking
	err := s.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&b, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("booking", id)
		}
		return nil, err
	}
	return &b, nil
}

func (s *Store) ReferenceExists(ctx context.Context, code string) (bool, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&Booking{}).Where("reference_code = ?", code).Count(&n).Error
	return n > 0, err
}

func (s *Store) CreateBooking(ctx context.Context, b *Booking) error {
	return s.db.WithContext(ctx).Create(b).Error
}

func (s *Store) SaveBooking(ctx context.Context, b *Booking) error {
	return s.db.WithContext(ctx).Save(b).Error
}

func (s *Store) GetRoomBooking(ctx context.Context, bookingID int64) (*RoomBooking, error) {
	var rb RoomBooking
	if err := s.db.WithContext(ctx).Where("booking_id = ?", bookingID).First(&rb).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("room booking for booking", bookingID)
		}
		return nil, err
	}
	return &rb, nil
}

func (s *Store) CreateRoomBooking(ctx context.Context, rb *RoomBooking) error {
	return s.db.WithContext(ctx).Create(rb).Error
}

func (s *Store) SaveRoomBooking(ctx context.Context, rb *RoomBooking) error {
	return s.db.WithContext(ctx).Save(rb).Error
}

func (s *Store) AppendCharge(ctx context.Context, c *BookingCharge) error {
	return s.db.WithContext(ctx).Create(c).Error
}

func (s *Store) ListCharges(ctx context.Context, bookingID int64) ([]BookingCharge, error) {
	var out []BookingCharge
	err := s.db.WithContext(ctx).
		Where("booking_id = ?", bookingID).
		Order("charged_at ASC, id ASC").
		Find(&out).Error
	return out, err
}

func (s *Store) SumCharges(ctx context.Context, bookingID int64) (float64, error) {
	var sum float64
	err := s.db.WithContext(ctx).
		Model(&BookingCharge{}).
		Where("booking_id = ?", bookingID).
		Select("COALESCE(SUM(total_amount), 0)").
		Scan(&sum).Error
	return round2(sum), err
}

// ActiveAssignment returns the booking's assigned or checked-in assignment,
// or nil when it has none.
func (s *Store) ActiveAssignment(ctx context.Context, bookingID int64) (*RoomAssignment, error) {
	var a RoomAssignment
	err := s.db.WithContext(ctx).
		Where("booking_id = ? AND status IN ?", bookingID, activeAssignmentStatuses).
		Order("id DESC").
		First(&a).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

func (s *Store) CreateAssignment(ctx context.Context, a *RoomAssignment) error {
	return s.db.WithContext(ctx).Create(a).Error
}

func (s *Store) SaveAssignment(ctx context.Context, a *RoomAssignment) error {
	return s.db.WithContext(ctx).Save(a).Error
}

func (s *Store) ListAssignments(ctx context.Context, bookingID int64) ([]RoomAssignment, error) {
	var out []RoomAssignment
	err := s.db.WithContext(ctx).
		Where("booking_id = ?", bookingID).
		Order("assigned_at ASC, id ASC").
		Find(&out).Error
	return out, err
}

// CountConflicts counts active assignments on unitID whose half-open window
// overlaps [checkIn, checkOut). Assignments of excludeBookingID are ignored.
func (s *Store) CountConflicts(ctx context.Context, unitID int64, checkIn, checkOut time.Time, excludeBookingID int64) (int64, error) {
	q := s.db.WithContext(ctx).
		Model(&RoomAssignment{}).
		Where("room_unit_id = ?", unitID).
		Where("status IN ?", activeAssignmentStatuses).
		Where("check_in_date < ? AND check_out_date > ?", checkOut, checkIn)
	if excludeBookingID > 0 {
		q = q.Where("booking_id <> ?", excludeBookingID)
	}

	var n int64
	err := q.Count(&n).Error
	return n, err
}

// CountCheckedIn counts guests currently in unitID.
func (s *Store) CountCheckedIn(ctx context.Context, unitID int64) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).
		Model(&RoomAssignment{}).
		Where("room_unit_id = ? AND status = ?", unitID, AssignmentCheckedIn).
		Count(&n).Error
	return n, err
}

package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/nathanael250/travooz-hms-sub004/internal/domain/audit"
	"github.com/nathanael250/travooz-hms-sub004/internal/domain/guest"
	"github.com/nathanael250/travooz-hms-sub004/internal/domain/inventory"
	"github.com/nathanael250/travooz-hms-sub004/internal/pkg/dberr"
	"github.com/nathanael250/travooz-hms-sub004/internal/pkg/metrics"
	"github.com/nathanael250/travooz-hms-sub004/internal/pkg/validator"
)

// Service orchestrates bookings, their ledger and room assignments. Every
// mutating operation runs in one database transaction; unit status events
// and audit rows are emitted only after commit.
type Service struct {
	db        *gorm.DB
	refs      *ReferenceGenerator
	publisher StatusPublisher
	audit     AuditRecorder
	metrics   *metrics.Metrics
	log       *zap.Logger
	now       func() time.Time
}

type Option func(*Service)

func WithPublisher(p StatusPublisher) Option {
	return func(s *Service) { s.publisher = p }
}

func WithAudit(a AuditRecorder) Option {
	return func(s *Service) { s.audit = a }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithReferenceAttempts(n int) Option {
	return func(s *Service) { s.refs = NewReferenceGenerator(n) }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(db *gorm.DB, log *zap.Logger, opts ...Option) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Service{
		db:   db,
		refs: NewReferenceGenerator(DefaultReferenceAttempts),
		log:  log,
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// effects collects what must happen once the transaction has committed.
type effects struct {
	events []inventory.UnitStatusEvent
	audits []audit.Entry
}

func (fx *effects) unitChanged(ev inventory.UnitStatusEvent) {
	fx.events = append(fx.events, ev)
}

func (fx *effects) record(e audit.Entry) {
	fx.audits = append(fx.audits, e)
}

func (s *Service) flush(ctx context.Context, fx *effects) {
	for _, ev := range fx.events {
		s.metrics.UnitStatusChanged(string(ev.To))
		if s.publisher == nil {
			continue
		}
		if err := s.publisher.PublishUnitStatus(ctx, ev); err != nil {
			s.log.Warn("unit_status_publish_failed",
				zap.Int64("unit_id", ev.UnitID),
				zap.String("status", string(ev.To)),
				zap.Error(err),
			)
		}
	}
	if s.audit == nil {
		return
	}
	for _, e := range fx.audits {
		s.audit.Record(ctx, e)
	}
}

// inTx runs fn in a transaction and folds driver errors into the package's
// error kinds.
func (s *Service) inTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	err := s.db.WithContext(ctx).Transaction(fn)
	if err == nil || isDomainError(err) {
		return err
	}
	if dberr.IsExclusionViolation(err) || dberr.IsConflict(err) {
		return fmt.Errorf("%w: concurrent assignment: %v", ErrUnitUnavailable, err)
	}
	return fmt.Errorf("%w: %w", ErrPersistence, err)
}

func (s *Service) fail(op string, err error) error {
	s.metrics.Failure(op, errorKind(err))
	if errors.Is(err, ErrPersistence) {
		s.log.Error("booking_operation_failed", zap.String("op", op), zap.Error(err))
	} else {
		s.log.Debug("booking_operation_rejected", zap.String("op", op), zap.Error(err))
	}
	return err
}

// setUnitStatus changes an already locked unit and queues the event.
func (s *Service) setUnitStatus(ctx context.Context, tx *gorm.DB, u *inventory.Unit, to inventory.UnitStatus, bookingID int64, reason string, fx *effects) error {
	if u.Status == to {
		return nil
	}
	from := u.Status
	if err := inventory.NewRepository(tx).UpdateStatus(ctx, u.ID, to); err != nil {
		return err
	}
	u.Status = to

	ev := inventory.NewStatusEvent(u, from, reason, s.now())
	ev.BookingID = &bookingID
	fx.unitChanged(ev)
	return nil
}

func validateCreate(req *CreateBookingRequest) error {
	req.Guest.Email = guest.NormalizeEmail(req.Guest.Email)
	if errs := validator.Validate(req); errs != nil {
		field, tag := validator.First(errs)
		return invalid(field, "failed "+tag+" check")
	}
	if req.ServiceType == "" {
		req.ServiceType = ServiceRoom
	}
	for i, c := range req.ExtraCharges {
		if err := validateCharge(c, fmt.Sprintf("extra_charges[%d].", i)); err != nil {
			return err
		}
	}
	if req.RoomUnitID != nil && *req.RoomUnitID <= 0 {
		return invalid("room_unit_id", "must be positive")
	}
	return nil
}

func newAssignment(bookingID, unitID int64, rb *RoomBooking, actorID int64, at time.Time) *RoomAssignment {
	return &RoomAssignment{
		BookingID:    bookingID,
		RoomUnitID:   unitID,
		CheckInDate:  rb.CheckInDate,
		CheckOutDate: rb.CheckOutDate,
		Status:       AssignmentAssigned,
		AssignedBy:   actorID,
		AssignedAt:   at.UTC(),
	}
}

// CreateBooking reserves a unit and writes the booking, its room booking,
// guest link, initial charges and assignment atomically.
func (s *Service) CreateBooking(ctx context.Context, req CreateBookingRequest) (*BookingSummary, error) {
	const op = "create_booking"

	if err := validateCreate(&req); err != nil {
		return nil, s.fail(op, err)
	}
	q, err := AvailabilityQuery{
		CheckIn:    req.CheckIn,
		CheckOut:   req.CheckOut,
		RoomTypeID: req.RoomTypeID,
		HomestayID: req.HomestayID,
	}.normalize()
	if err != nil {
		return nil, s.fail(op, err)
	}

	var summary *BookingSummary
	fx := &effects{}
	err = s.inTx(ctx, func(tx *gorm.DB) error {
		store := NewStore(tx)
		now := s.now().UTC()

		unit, err := reserveUnit(ctx, tx, q, req.RoomUnitID, 0)
		if err != nil {
			return err
		}

		rate := req.RatePerNight
		if rate == 0 {
			rt, err := inventory.NewRepository(tx).GetRoomType(ctx, unit.RoomTypeID)
			if err != nil {
				return err
			}
			rate = rt.BasePrice
		}

		rb := &RoomBooking{
			RoomTypeID:        req.RoomTypeID,
			RoomUnitID:        unit.ID,
			CheckInDate:       q.CheckIn,
			CheckOutDate:      q.CheckOut,
			Nights:            nightsBetween(q.CheckIn, q.CheckOut),
			Adults:            req.Adults,
			Children:          req.Children,
			RatePerNight:      rate,
			TaxRate:           req.TaxRate,
			ServiceChargeRate: req.ServiceChargeRate,
			Discount:          round2(req.Discount),
			DepositAmount:     round2(req.DepositAmount),
		}
		if rb.RoomTypeID == nil {
			rb.RoomTypeID = &unit.RoomTypeID
		}

		charges := make([]BookingCharge, 0, len(req.ExtraCharges))
		for _, in := range req.ExtraCharges {
			c := newCharge(0, in, req.CreatedBy, now)
			rb.ExtraCharges += c.TotalAmount
			charges = append(charges, c)
		}
		rb.recompute()
		if rb.FinalAmount < 0 {
			return invalid("discount", "exceeds the booking total")
		}
		if rb.DepositAmount > rb.FinalAmount {
			return invalid("deposit_amount", "exceeds the final amount")
		}

		code, err := s.refs.Generate(ctx, store.ReferenceExists)
		if err != nil {
			return err
		}

		b := &Booking{
			ReferenceCode:   code,
			ServiceType:     req.ServiceType,
			Status:          StatusPending,
			PaymentStatus:   paymentStatusFor(rb.DepositAmount),
			TotalAmount:     rb.FinalAmount,
			SpecialRequests: strings.TrimSpace(req.SpecialRequests),
			CreatedBy:       req.CreatedBy,
		}
		if err := store.CreateBooking(ctx, b); err != nil {
			return err
		}

		rb.BookingID = b.ID
		if err := store.CreateRoomBooking(ctx, rb); err != nil {
			return err
		}

		guests := guest.NewRepository(tx)
		profile, err := guests.FindOrCreate(ctx, guest.Contact{
			FullName:    req.Guest.FullName,
			Email:       req.Guest.Email,
			Phone:       req.Guest.Phone,
			Nationality: req.Guest.Nationality,
		})
		if err != nil {
			return err
		}
		if err := guests.Link(ctx, b.ID, profile.ID, true); err != nil {
			return err
		}

		for i := range charges {
			charges[i].BookingID = b.ID
			if err := store.AppendCharge(ctx, &charges[i]); err != nil {
				return err
			}
		}

		a := newAssignment(b.ID, unit.ID, rb, req.CreatedBy, now)
		if err := store.CreateAssignment(ctx, a); err != nil {
			return err
		}

		summary = &BookingSummary{
			BookingID:     b.ID,
			RoomBookingID: rb.ID,
			GuestID:       profile.ID,
			ReferenceCode: b.ReferenceCode,
			Status:        b.Status,
			PaymentStatus: b.PaymentStatus,
			RoomUnitID:    unit.ID,
			UnitNumber:    unit.UnitNumber,
			AssignmentID:  a.ID,
			CheckInDate:   rb.CheckInDate,
			CheckOutDate:  rb.CheckOutDate,
			Nights:        rb.Nights,
			FinalAmount:   rb.FinalAmount,
		}
		fx.record(audit.Entry{
			ActorID:      req.CreatedBy,
			Action:       "booking.created",
			ResourceType: "booking",
			ResourceID:   b.ID,
			After:        summary,
		})
		return nil
	})
	if err != nil {
		return nil, s.fail(op, err)
	}

	s.metrics.BookingCreated()
	s.flush(ctx, fx)
	s.log.Info("booking_created",
		zap.Int64("booking_id", summary.BookingID),
		zap.String("reference", summary.ReferenceCode),
		zap.Int64("room_unit_id", summary.RoomUnitID),
	)
	return summary, nil
}

func (s *Service) GetBooking(ctx context.Context, bookingID int64) (*BookingDetails, error) {
	store := NewStore(s.db)

	b, err := store.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, s.readErr("get_booking", err)
	}
	rb, err := store.GetRoomBooking(ctx, bookingID)
	if err != nil {
		return nil, s.readErr("get_booking", err)
	}
	active, err := store.ActiveAssignment(ctx, bookingID)
	if err != nil {
		return nil, s.readErr("get_booking", err)
	}
	guests, err := guest.NewRepository(s.db).ListForBooking(ctx, bookingID)
	if err != nil {
		return nil, s.readErr("get_booking", err)
	}
	charges, err := store.ListCharges(ctx, bookingID)
	if err != nil {
		return nil, s.readErr("get_booking", err)
	}

	return &BookingDetails{
		Booking:     *b,
		RoomBooking: *rb,
		Assignment:  active,
		Guests:      guests,
		Charges:     charges,
	}, nil
}

// AssignmentHistory returns every assignment the booking ever had, oldest first.
func (s *Service) AssignmentHistory(ctx context.Context, bookingID int64) ([]RoomAssignment, error) {
	store := NewStore(s.db)
	if _, err := store.GetBooking(ctx, bookingID); err != nil {
		return nil, s.readErr("assignment_history", err)
	}
	out, err := store.ListAssignments(ctx, bookingID)
	if err != nil {
		return nil, s.readErr("assignment_history", err)
	}
	return out, nil
}

func (s *Service) readErr(op string, err error) error {
	if isDomainError(err) {
		return s.fail(op, err)
	}
	return s.fail(op, fmt.Errorf("%w: %w", ErrPersistence, err))
}
